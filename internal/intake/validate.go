package intake

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"camp-registration-backend/internal/apperr"
)

const (
	msgContactMissing = "Por favor, completa todos los datos de contacto obligatorios."
	msgGuardians      = "Debes indicar el nombre y apellidos de madre/tutora y padre/tutor."
	msgEmail          = "El correo electrónico indicado no es válido."
	msgOrigin         = "La procedencia seleccionada no es válida."
	msgCamperCount    = "Debes inscribir al menos un acampado y como máximo dos."
	msgCamperName     = "Faltan nombre y apellidos del acampado."
	msgCourse         = "El curso seleccionado no es válido."
	msgAllergies      = "Las alergias indicadas no son válidas."
	msgMedical        = "Falta la información médica obligatoria."
)

type consentRule struct {
	code    string
	message string
}

var consentRules = map[string]consentRule{
	"consent_health": {
		code:    "Tratamiento_datos_salud",
		message: "Para poder realizar la inscripción es obligatorio autorizar el tratamiento de datos de salud y la atención sanitaria en caso de urgencia.",
	},
	"consent_privacy_read": {
		code:    "confirmacion_leido",
		message: "Debes confirmar que has leído y comprendido la información sobre protección de datos para continuar con la inscripción.",
	},
	"consent_rules": {
		code:    "confirmacion_normativa",
		message: "Debes confirmar que has leído y aceptas la normativa de la actividad para poder realizar la inscripción.",
	},
}

// Validator checks submissions against the configured origin allow-list and
// course enumeration.
type Validator struct {
	validate *validator.Validate
}

// NewValidator builds a Validator for the given allow-lists.
func NewValidator(origins, courses []string) *Validator {
	v := validator.New()

	// Report fields by their JSON name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("origin", oneOf(origins))
	_ = v.RegisterValidation("course", oneOf(courses))

	return &Validator{validate: v}
}

func oneOf(allowed []string) validator.Func {
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}
	return func(fl validator.FieldLevel) bool {
		_, ok := set[fl.Field().String()]
		return ok
	}
}

// Validate reports the first rule the submission breaks, in field order, as
// an invalid *apperr.Error. Call Normalize first so blank values are caught.
func (v *Validator) Validate(s *Submission) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Invalid("invalid_body", "Datos enviados no válidos.")
	}
	return rejection(verrs[0])
}

// Prepare normalizes, validates and canonicalizes the allergy lists of s.
// s is left untouched past normalization when it is rejected.
func (v *Validator) Prepare(s *Submission) error {
	Normalize(s)
	if err := v.Validate(s); err != nil {
		return err
	}
	for i := range s.Kids {
		s.Kids[i].Allergies = NormalizeAllergies(s.Kids[i].Allergies, s.Kids[i].AllergyOther)
	}
	return nil
}

func rejection(fe validator.FieldError) *apperr.Error {
	field := fe.Field()

	switch field {
	case "email":
		if fe.Tag() == "email" {
			return apperr.Invalid("invalid_email", msgEmail)
		}
		return apperr.Invalid("missing_field:email", msgContactMissing)
	case "parent_name_mother", "parent_name_father":
		return apperr.Invalid("missing_field:"+field, msgGuardians)
	case "phones":
		return apperr.Invalid("missing_field:phones", msgContactMissing)
	case "origin":
		if fe.Tag() == "required" {
			return apperr.Invalid("missing_field:origin", msgContactMissing)
		}
		return apperr.Invalid("invalid_origin", msgOrigin)
	case "kids":
		return apperr.Invalid("invalid_camper_count", msgCamperCount)
	}

	if rule, ok := consentRules[field]; ok {
		return apperr.Invalid("missing_consent:"+rule.code, rule.message)
	}

	code, msg := camperRejection(field)
	if n := camperIndex(fe.Namespace()); n > 0 {
		msg += " (acampado " + strconv.Itoa(n) + ")"
	}
	return apperr.Invalid(code, msg)
}

func camperRejection(field string) (string, string) {
	switch field {
	case "camper_name", "camper_surname":
		return "camper_name_missing", msgCamperName
	case "course":
		return "invalid_course", msgCourse
	case "allergies":
		return "invalid_allergies", msgAllergies
	case "medical_notes":
		return "medical_notes_missing", msgMedical
	}
	return "invalid_field:" + field, "Datos enviados no válidos."
}

// camperIndex returns the 1-based camper position in a namespace such as
// "Submission.kids[1].course", or 0 when there is none.
func camperIndex(ns string) int {
	start := strings.Index(ns, "kids[")
	if start < 0 {
		return 0
	}
	rest := ns[start+len("kids["):]
	end := strings.IndexByte(rest, ']')
	if end < 0 {
		return 0
	}
	i, err := strconv.Atoi(rest[:end])
	if err != nil {
		return 0
	}
	return i + 1
}
