package routes

import (
	"github.com/gin-gonic/gin"

	provisioninghandlers "invprov/internal/interfaces/http/handlers/provisioning"
)

type ProvisioningRouteConfig struct {
	Handler *provisioninghandlers.Handler
}

func SetupProvisioningRoutes(api *gin.RouterGroup, config *ProvisioningRouteConfig) {
	services := api.Group("/services")
	{
		services.POST("", config.Handler.CreateService)

		// Action endpoints before the bare parameterized ones
		services.PUT("/:name/status", config.Handler.ChangeStatus)
		services.POST("/:name/transfer", config.Handler.TransferAccount)

		services.GET("/:name", config.Handler.GetService)
		services.PATCH("/:name", config.Handler.ModifyService)
		services.DELETE("/:name", config.Handler.DeleteService)
	}

	api.POST("/subscribers/:name/rename", config.Handler.RenameSubscriber)
	api.POST("/vlans", config.Handler.AllocateVLAN)
	api.POST("/inventory/seed", config.Handler.SeedInventory)
}
