package app

import (
	"github.com/gin-gonic/gin"

	"github.com/productivityhub/backend/internal/http"
	httpH "github.com/productivityhub/backend/internal/http/handlers"
	httpMW "github.com/productivityhub/backend/internal/http/middleware"
	"github.com/productivityhub/backend/internal/pkg/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health    *httpH.HealthHandler
	Contact   *httpH.ContactHandler
	Tag       *httpH.TagHandler
	Selection *httpH.SelectionHandler
	Dedup     *httpH.DedupHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:    httpH.NewHealthHandler(),
		Contact:   httpH.NewContactHandler(log, services.Contact),
		Tag:       httpH.NewTagHandler(log, services.Tag),
		Selection: httpH.NewSelectionHandler(log, services.Selection),
		Dedup:     httpH.NewDedupHandler(log, services.Dedup),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireRouter(log *logger.Logger, handlers Handlers, middleware Middleware) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log:              log,
		AuthMiddleware:   middleware.Auth,
		HealthHandler:    handlers.Health,
		ContactHandler:   handlers.Contact,
		TagHandler:       handlers.Tag,
		SelectionHandler: handlers.Selection,
		DedupHandler:     handlers.Dedup,
	})
}
