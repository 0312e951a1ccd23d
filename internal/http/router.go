package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/productivityhub/backend/internal/http/handlers"
	httpMW "github.com/productivityhub/backend/internal/http/middleware"
	"github.com/productivityhub/backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler    *httpH.HealthHandler
	ContactHandler   *httpH.ContactHandler
	TagHandler       *httpH.TagHandler
	SelectionHandler *httpH.SelectionHandler
	DedupHandler     *httpH.DedupHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("productivityhub-backend"))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			api.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Contacts
		if cfg.ContactHandler != nil {
			api.GET("/contacts", cfg.ContactHandler.ListContacts)
			api.POST("/contacts", cfg.ContactHandler.CreateContact)
			api.GET("/contacts/:id", cfg.ContactHandler.GetContact)
			api.PATCH("/contacts/:id", cfg.ContactHandler.UpdateContact)
			api.DELETE("/contacts/:id", cfg.ContactHandler.DeleteContact)
			api.PUT("/contacts/:id/tags", cfg.ContactHandler.ReplaceContactTags)
			api.GET("/contacts/:id/history", cfg.ContactHandler.ListContactHistory)
		}

		// Tags
		if cfg.TagHandler != nil {
			api.GET("/tags", cfg.TagHandler.ListTags)
			api.POST("/tags", cfg.TagHandler.CreateTag)
		}

		// Selections
		if cfg.SelectionHandler != nil {
			api.POST("/selections", cfg.SelectionHandler.CreateSelection)
		}

		// Dedup
		if cfg.DedupHandler != nil {
			api.POST("/contacts/dedup/preview", cfg.DedupHandler.Preview)
			api.POST("/contacts/dedup/merge", cfg.DedupHandler.Merge)
		}
	}

	return r
}
