package server

import (
	"github.com/buildlane/ifcbridge/internal/server/middleware"
	"github.com/buildlane/ifcbridge/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Element extraction routes
	apiRoutes.POST("/extract-building-elements", routes.ExtractBuildingElementsHandler)
	apiRoutes.POST("/elements-info", routes.ElementsInfoHandler)
	apiRoutes.POST("/property-values", routes.PropertyValuesHandler)
	apiRoutes.POST("/model-info", routes.ModelInfoHandler)

	// Storey split routes
	apiRoutes.POST("/split-by-storey", routes.SplitByStoreyHandler)
	apiRoutes.POST("/split-jobs", routes.CreateSplitJobHandler)
	apiRoutes.GET("/split-jobs/:id", routes.GetSplitJobHandler)
}
