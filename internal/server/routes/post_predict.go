package routes

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/prolong-bio/prolong/internal/server/middleware"
	"github.com/prolong-bio/prolong/pkg/engine"
	"github.com/prolong-bio/prolong/pkg/logger"
)

// PredictFunctionHandler generates a structured function and aging-role
// prediction for a GenAge protein.
func PredictFunctionHandler(c echo.Context) error {
	symbol := strings.TrimSpace(c.Param("symbol"))
	if symbol == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "Protein symbol is required"})
	}

	app := c.(*middleware.AppContext).App
	if _, ok := app.Vocab.Proteins.GetBySymbol(symbol); !ok {
		return c.JSON(http.StatusNotFound, errorResponse{Message: "Unknown protein: " + strings.ToUpper(symbol)})
	}

	prediction, err := app.Engine.PredictFunction(c.Request().Context(), symbol)
	if err != nil {
		var synthErr *engine.SynthesisError
		if errors.As(err, &synthErr) {
			logger.Error("function prediction failed", "symbol", symbol, "err", err)
			return c.JSON(http.StatusBadGateway, errorResponse{Message: "Prediction backend unavailable"})
		}
		logger.Error("function prediction failed", "symbol", symbol, "err", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: "Internal server error"})
	}
	return c.JSON(http.StatusOK, prediction)
}
