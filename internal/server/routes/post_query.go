package routes

import (
	"errors"
	"net/http"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/prolong-bio/prolong/internal/server/middleware"
	"github.com/prolong-bio/prolong/pkg/common"
	"github.com/prolong-bio/prolong/pkg/engine"
	"github.com/prolong-bio/prolong/pkg/logger"
	"github.com/prolong-bio/prolong/pkg/store"
)

type queryBody struct {
	Query      string   `json:"query" validate:"required"`
	Protein    string   `json:"protein"`
	Theories   []string `json:"theories"`
	TopK       *int     `json:"top_k"`
	Synthesize *bool    `json:"synthesize"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// transportChunkChars caps passage text on the wire. The full text already
// went into synthesis; clients only need a preview.
const transportChunkChars = 500

// toQuery applies the request defaults: top_k falls back to the store
// default, synthesis defaults to on.
func (b *queryBody) toQuery() common.Query {
	q := common.Query{
		Text:       b.Query,
		Protein:    b.Protein,
		Theories:   b.Theories,
		TopK:       store.DefaultSearchLimit,
		Synthesize: true,
	}
	if b.TopK != nil {
		q.TopK = *b.TopK
	}
	if b.Synthesize != nil {
		q.Synthesize = *b.Synthesize
	}
	return q
}

// QueryRAGHandler runs a filtered retrieval query against the paper corpus.
func QueryRAGHandler(c echo.Context) error {
	return runQuery(c, false)
}

// QueryRAGGeneralHandler runs a general query. Filters in the body are
// ignored so the whole corpus is searched.
func QueryRAGGeneralHandler(c echo.Context) error {
	return runQuery(c, true)
}

func runQuery(c echo.Context, general bool) error {
	data := new(queryBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "Invalid request body"})
	}

	q := data.toQuery()
	if general {
		q.Protein = ""
		q.Theories = nil
	}

	app := c.(*middleware.AppContext).App
	resp, err := app.Engine.Query(c.Request().Context(), q)
	if err != nil {
		if errors.Is(err, engine.ErrEmptyQuery) {
			return c.JSON(http.StatusBadRequest, errorResponse{Message: "Query text is required"})
		}
		var retrievalErr *engine.RetrievalError
		if errors.As(err, &retrievalErr) {
			logger.Error("retrieval failed", "stage", retrievalErr.Stage, "err", err)
			return c.JSON(http.StatusBadGateway, errorResponse{Message: "Retrieval backend unavailable"})
		}
		logger.Error("query failed", "err", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: "Internal server error"})
	}

	for i := range resp.Passages {
		resp.Passages[i].Text = truncateText(resp.Passages[i].Text, transportChunkChars)
	}
	return c.JSON(http.StatusOK, resp)
}

// truncateText cuts s to at most limit bytes, backing up to the nearest rune
// boundary so a multi-byte character is never split.
func truncateText(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
