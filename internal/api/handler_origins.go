package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"camp-registration-backend/internal/apperr"
)

// OriginAvailability is the advisory availability of one origin. The
// admission decision is always taken against live counts.
type OriginAvailability struct {
	Origin     string `json:"origin"`
	Configured bool   `json:"configured"`
	Enabled    bool   `json:"enabled"`
	MaxSlots   int    `json:"maxSlots"`
	Reserved   int64  `json:"reserved"`
	Free       int64  `json:"free"`
}

// GetOrigins handles GET /api/origins.
func (h *Handler) GetOrigins(c *gin.Context) {
	if h.store == nil {
		abortWithError(c, apperr.Internal("server_not_configured", "Error interno del servidor. Inténtalo más tarde.", nil))
		return
	}

	ctx := c.Request.Context()
	quotas, err := h.store.ListQuotas(ctx)
	if err != nil {
		abortWithError(c, apperr.Internal("availability_failed", "No se pudo comprobar la disponibilidad de plazas.", err))
		return
	}
	reserved, err := h.store.ReservedByOrigin(ctx)
	if err != nil {
		abortWithError(c, apperr.Internal("availability_failed", "No se pudo comprobar la disponibilidad de plazas.", err))
		return
	}

	byOrigin := make(map[string]int, len(quotas))
	for i, q := range quotas {
		byOrigin[q.Origin] = i
	}

	responses := make([]OriginAvailability, 0, len(h.origins))
	for _, origin := range h.origins {
		a := OriginAvailability{Origin: origin, Reserved: reserved[origin]}
		if i, ok := byOrigin[origin]; ok {
			q := quotas[i]
			a.Configured = true
			a.Enabled = q.Enabled
			a.MaxSlots = q.MaxSlots
			a.Free = max(int64(q.MaxSlots)-a.Reserved, 0)
		}
		responses = append(responses, a)
	}
	c.JSON(http.StatusOK, responses)
}

// GetHealth handles GET /healthz.
func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": h.store != nil,
	})
}
