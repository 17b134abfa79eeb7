package routes

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/prolong-bio/prolong/internal/server/middleware"
	"github.com/prolong-bio/prolong/pkg/vocab"
)

type theoriesResponse struct {
	Theories []vocab.Theory `json:"theories"`
	Count    int            `json:"count"`
}

// ListTheoriesHandler returns all aging theories. An optional ?q= parameter
// filters by label or term substring.
func ListTheoriesHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App

	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		results := app.Vocab.Theories.Search(q)
		if results == nil {
			results = []vocab.Theory{}
		}
		return c.JSON(http.StatusOK, theoriesResponse{Theories: results, Count: len(results)})
	}

	all := app.Vocab.Theories.All()
	return c.JSON(http.StatusOK, theoriesResponse{Theories: all, Count: len(all)})
}

// SearchTheoriesHandler searches theories by label or term substring.
func SearchTheoriesHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App

	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "Query parameter q is required"})
	}
	results := app.Vocab.Theories.Search(q)
	if results == nil {
		results = []vocab.Theory{}
	}
	return c.JSON(http.StatusOK, theoriesResponse{Theories: results, Count: len(results)})
}

// GetTheoryHandler returns one aging theory by id.
func GetTheoryHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App

	id := strings.TrimSpace(c.Param("id"))
	theory, ok := app.Vocab.Theories.GetByID(id)
	if !ok {
		return c.JSON(http.StatusNotFound, errorResponse{Message: "Unknown theory: " + id})
	}
	return c.JSON(http.StatusOK, theory)
}
