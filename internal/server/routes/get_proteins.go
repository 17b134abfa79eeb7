package routes

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/prolong-bio/prolong/internal/server/middleware"
	"github.com/prolong-bio/prolong/pkg/logger"
)

type proteinsResponse struct {
	Symbols []string `json:"symbols"`
	Count   int      `json:"count"`
}

// ListGenAgeProteinsHandler returns all GenAge protein symbols.
func ListGenAgeProteinsHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App

	symbols := app.Vocab.Proteins.Symbols()
	return c.JSON(http.StatusOK, proteinsResponse{Symbols: symbols, Count: len(symbols)})
}

// GetProteinHandler returns the GenAge record and corpus coverage for one
// protein symbol.
func GetProteinHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App

	symbol := strings.TrimSpace(c.Param("symbol"))
	proteinStats, ok, err := app.Stats.Protein(c.Request().Context(), symbol)
	if !ok {
		return c.JSON(http.StatusNotFound, errorResponse{Message: "Unknown protein: " + strings.ToUpper(symbol)})
	}
	if err != nil {
		logger.Error("protein stats failed", "symbol", symbol, "err", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: "Internal server error"})
	}
	return c.JSON(http.StatusOK, proteinStats)
}
