package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"camp-registration-backend/internal/apperr"
	"camp-registration-backend/internal/intake"
)

var emptyBody = []byte("{}")

// PostReservation handles POST /api/reservations.
func (h *Handler) PostReservation(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"error":       "body_too_large",
				"userMessage": "Los datos enviados son demasiado grandes.",
			})
			return
		}
		abortWithError(c, apperr.Invalid("invalid_body", "Datos enviados no válidos."))
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		body = emptyBody
	}
	// BindBody decodes the first JSON value only; reject anything after it.
	if !json.Valid(body) {
		abortWithError(c, apperr.Invalid("invalid_body", "Datos enviados no válidos."))
		return
	}

	var sub intake.Submission
	if err := binding.JSON.BindBody(body, &sub); err != nil {
		abortWithError(c, apperr.Invalid("invalid_body", "Datos enviados no válidos."))
		return
	}

	res, err := h.service.Submit(c.Request.Context(), &sub)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"status":   res.Status,
		"message":  res.Message,
		"group_id": res.GroupID,
	})
}
