package notification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"camp-registration-backend/internal/model"
)

// Email is a rendered message with plain-text and HTML bodies.
type Email struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers a rendered Email.
type Mailer interface {
	Send(ctx context.Context, e Email) error
}

// EmailNotifier renders confirmations and hands them to a Mailer.
type EmailNotifier struct {
	mailer Mailer
}

// NewEmailNotifier creates a notifier backed by m.
func NewEmailNotifier(m Mailer) *EmailNotifier {
	return &EmailNotifier{mailer: m}
}

// NotifyAdmission implements Notifier.
func (n *EmailNotifier) NotifyAdmission(ctx context.Context, c Confirmation) error {
	e, err := Render(c)
	if err != nil {
		return err
	}
	if err := n.mailer.Send(ctx, e); err != nil {
		return fmt.Errorf("send confirmation for group %s: %w", c.GroupID, err)
	}
	return nil
}

var htmlBody = template.Must(template.New("confirmation").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
	<p>{{.Greeting}}</p>
	<p>Hemos recibido la inscripción de la procedencia <strong>{{.Origin}}</strong>:</p>
	<ul>{{range .Campers}}
		<li>{{.}}</li>{{end}}
	</ul>
	<p><strong>{{.Outcome}}</strong></p>
	<p style="font-size: 12px; color: #666;">Referencia: {{.GroupID}}</p>
	<p style="font-size: 12px; color: #666;">Este es un correo automático. Por favor, no respondas a este mensaje.</p>
</body>
</html>
`))

// Render builds the confirmation e-mail for c.
func Render(c Confirmation) (Email, error) {
	subject, outcome := "Inscripción confirmada", "Las plazas han quedado reservadas."
	if c.Status == model.StatusWaitlist {
		subject = "Inscripción en lista de espera"
		outcome = "El cupo está completo. La inscripción se ha añadido a la lista de espera y os avisaremos si queda alguna plaza libre."
	}

	greeting := greet(c.Guardians)
	data := struct {
		Greeting string
		Origin   string
		Campers  []string
		Outcome  string
		GroupID  string
	}{greeting, c.Origin, c.Campers, outcome, c.GroupID.String()}

	var html bytes.Buffer
	if err := htmlBody.Execute(&html, data); err != nil {
		return Email{}, fmt.Errorf("render confirmation: %w", err)
	}

	var text strings.Builder
	text.WriteString(greeting + "\n\n")
	fmt.Fprintf(&text, "Hemos recibido la inscripción de la procedencia %s:\n", c.Origin)
	for _, name := range c.Campers {
		fmt.Fprintf(&text, "- %s\n", name)
	}
	fmt.Fprintf(&text, "\n%s\n\nReferencia: %s\n\n---\nEste es un correo automático. Por favor, no respondas a este mensaje.\n", outcome, c.GroupID)

	return Email{
		To:      c.Email,
		Subject: subject,
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}

// greet addresses the guardians by name, falling back to a bare "Hola,".
func greet(guardians []string) string {
	names := make([]string, 0, len(guardians))
	for _, g := range guardians {
		if g = strings.TrimSpace(g); g != "" {
			names = append(names, g)
		}
	}
	if len(names) == 0 {
		return "Hola,"
	}
	return "Hola, " + strings.Join(names, " y ") + ","
}
