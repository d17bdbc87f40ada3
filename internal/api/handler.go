package api

import (
	"github.com/gin-gonic/gin"

	"camp-registration-backend/internal/admission"
	"camp-registration-backend/internal/apperr"
	"camp-registration-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	service *admission.Service
	store   store.Store
	origins []string
}

// NewHandler creates a new API handler. s may be nil when no database is
// configured.
func NewHandler(svc *admission.Service, s store.Store, origins []string) *Handler {
	return &Handler{
		service: svc,
		store:   s,
		origins: origins,
	}
}

// abortWithError renders err as {error, userMessage}. Server-side failures
// are attached to the context for the request log.
func abortWithError(c *gin.Context, err error) {
	ae := apperr.As(err)
	if ae.Kind == apperr.KindInternal {
		_ = c.Error(ae)
	}
	c.AbortWithStatusJSON(ae.HTTPStatus(), gin.H{
		"error":       ae.Code,
		"userMessage": ae.UserMessage,
	})
}
