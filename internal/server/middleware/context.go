package middleware

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"

	"github.com/prolong-bio/prolong/internal/stats"
	"github.com/prolong-bio/prolong/pkg/ai"
	"github.com/prolong-bio/prolong/pkg/engine"
	"github.com/prolong-bio/prolong/pkg/store"
	"github.com/prolong-bio/prolong/pkg/vocab"
)

// App bundles the process-wide dependencies handlers need. DBConn is nil when
// the server runs on the in-memory store.
type App struct {
	DBConn   *pgxpool.Pool
	Store    store.ChunkStore
	AiClient ai.Client
	Engine   *engine.Engine
	Stats    *stats.Service
	Vocab    *vocab.Vocabulary
}

// AppContext wraps the echo context with the application dependencies.
type AppContext struct {
	echo.Context
	App *App
}

// AppContextMiddleware injects the App into every request context.
func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			return next(&AppContext{c, app})
		}
	}
}
