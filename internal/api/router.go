package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"camp-registration-backend/config"
	"camp-registration-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg *config.ServerConfig, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(mw.RequestID(), mw.Logger(logger), gin.Recovery())
	if len(cfg.CORSAllowOrigins) > 0 {
		cc := cors.DefaultConfig()
		cc.AllowOrigins = cfg.CORSAllowOrigins
		cc.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
		cc.AllowHeaders = append(cc.AllowHeaders, "X-Request-ID")
		cc.ExposeHeaders = []string{"X-Request-ID"}
		r.Use(cors.New(cc))
	}

	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error":       "method_not_allowed",
			"userMessage": "Método no permitido.",
		})
	})
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	})

	// Availability is advisory; admissions never read the cache.
	cacheStore := cache.New(cfg.CacheTTL(), 2*cfg.CacheTTL())
	caching := mw.Cache(cacheStore, cfg.CacheTTL())

	r.GET("/healthz", h.GetHealth)

	api := r.Group("/api")
	api.Use(mw.BodyLimit(cfg.BodyLimitBytes))
	{
		// POST /api/reservations
		api.POST("/reservations", h.PostReservation)

		// GET /api/origins
		api.GET("/origins", caching, h.GetOrigins)
	}

	return r
}
