package http

import (
	"github.com/gin-gonic/gin"

	"invprov/internal/interfaces/http/handlers"
	provisioninghandlers "invprov/internal/interfaces/http/handlers/provisioning"
	"invprov/internal/interfaces/http/middleware"
	"invprov/internal/interfaces/http/routes"
	"invprov/internal/shared/logger"
)

// Router represents the HTTP router configuration
type Router struct {
	engine              *gin.Engine
	provisioningHandler *provisioninghandlers.Handler
	healthHandler       *handlers.HealthHandler
	log                 logger.Interface
}

func NewRouter(provisioningHandler *provisioninghandlers.Handler, healthHandler *handlers.HealthHandler, log logger.Interface) *Router {
	return &Router{
		engine:              gin.New(),
		provisioningHandler: provisioningHandler,
		healthHandler:       healthHandler,
		log:                 log,
	}
}

// SetupRoutes configures all HTTP routes
func (r *Router) SetupRoutes() {
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.Logger(r.log))
	r.engine.Use(middleware.Recovery(r.log))
	r.engine.Use(middleware.ErrorHandler(r.log))

	r.engine.GET("/health", r.healthHandler.HealthCheck)

	api := r.engine.Group("/api/v1")
	routes.SetupProvisioningRoutes(api, &routes.ProvisioningRouteConfig{
		Handler: r.provisioningHandler,
	})
}

// GetEngine returns the Gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
