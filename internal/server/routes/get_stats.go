package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/prolong-bio/prolong/internal/server/middleware"
	"github.com/prolong-bio/prolong/pkg/logger"
)

// DatabaseStatsHandler returns the indexed-corpus summary.
func DatabaseStatsHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App

	dbStats, err := app.Stats.Database(c.Request().Context())
	if err != nil {
		logger.Error("database stats failed", "err", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: "Internal server error"})
	}
	return c.JSON(http.StatusOK, dbStats)
}

// TheoryStatsHandler returns chunk coverage per aging theory.
func TheoryStatsHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App

	counts, err := app.Stats.TheoryDistribution(c.Request().Context())
	if err != nil {
		logger.Error("theory stats failed", "err", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: "Internal server error"})
	}
	return c.JSON(http.StatusOK, counts)
}

// GenAgeCategoryStatsHandler returns the GenAge evidence-category
// distribution.
func GenAgeCategoryStatsHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	return c.JSON(http.StatusOK, app.Stats.CategoryDistribution())
}

// ModelMetricsHandler returns the accumulated model token and timing metrics.
func ModelMetricsHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	return c.JSON(http.StatusOK, app.AiClient.GetMetrics())
}
