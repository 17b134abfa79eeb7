package server

import (
	"github.com/labstack/echo/v4"

	"github.com/prolong-bio/prolong/internal/server/routes"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api")

	// Query routes
	apiRoutes.POST("/query/rag", routes.QueryRAGHandler)
	apiRoutes.POST("/query/rag-general", routes.QueryRAGGeneralHandler)

	// Theory routes
	apiRoutes.GET("/theories", routes.ListTheoriesHandler)
	apiRoutes.GET("/theories/search", routes.SearchTheoriesHandler)
	apiRoutes.GET("/theories/:id", routes.GetTheoryHandler)

	// Protein routes
	apiRoutes.GET("/proteins/genage", routes.ListGenAgeProteinsHandler)
	apiRoutes.GET("/proteins/:symbol", routes.GetProteinHandler)
	apiRoutes.POST("/proteins/:symbol/predict-function", routes.PredictFunctionHandler)

	// Stats routes
	apiRoutes.GET("/stats/vector-store", routes.DatabaseStatsHandler)
	apiRoutes.GET("/stats/theories", routes.TheoryStatsHandler)
	apiRoutes.GET("/stats/genage-categories", routes.GenAgeCategoryStatsHandler)
	apiRoutes.GET("/stats/model", routes.ModelMetricsHandler)
}
