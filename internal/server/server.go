package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mid "github.com/prolong-bio/prolong/internal/server/middleware"
	"github.com/prolong-bio/prolong/internal/stats"
	"github.com/prolong-bio/prolong/internal/util"
	"github.com/prolong-bio/prolong/pkg/ai"
	oai "github.com/prolong-bio/prolong/pkg/ai/ollama"
	gai "github.com/prolong-bio/prolong/pkg/ai/openai"
	"github.com/prolong-bio/prolong/pkg/engine"
	"github.com/prolong-bio/prolong/pkg/logger"
	"github.com/prolong-bio/prolong/pkg/store"
	"github.com/prolong-bio/prolong/pkg/store/memory"
	pgstore "github.com/prolong-bio/prolong/pkg/store/pgx"
	"github.com/prolong-bio/prolong/pkg/vocab"

	"github.com/go-playground/validator"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

func Init() {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	v, err := vocab.Global(vocab.LoadParams{
		GenAgePath:   util.GetEnvString("GENAGE_DATA_PATH", "data/genage_human.json"),
		TheoriesPath: util.GetEnvString("THEORIES_DATA_PATH", "data/aging_theories.json"),
	})
	if err != nil {
		logger.Fatal("Failed to load vocabulary data", "err", err)
	}
	logger.Info("Vocabulary loaded", "proteins", v.Proteins.Count(), "theories", v.Theories.Count())

	var (
		chunkStore store.ChunkStore
		conn       *pgxpool.Pool
	)
	databaseURL := util.GetEnv("DATABASE_URL")
	if databaseURL != "" {
		runMigrations(databaseURL)

		poolCfg, err := pgxpool.ParseConfig(databaseURL)
		if err != nil {
			logger.Fatal("Failed to parse database config", "err", err)
		}
		poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			return pgxvec.RegisterTypes(ctx, conn)
		}
		conn, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			logger.Fatal("Failed to connect to database", "err", err)
		}
		defer conn.Close()
		chunkStore = pgstore.NewChunkStorage(conn)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory chunk store")
		chunkStore = memory.NewChunkStorage()
	}

	aiClient := newAiClient()
	queryEngine := engine.NewEngine(engine.NewEngineParams{
		Config:   engine.DefaultConfig(),
		Store:    chunkStore,
		AiClient: aiClient,
		Vocab:    v,
	})

	app := &mid.App{
		DBConn:   conn,
		Store:    chunkStore,
		AiClient: aiClient,
		Engine:   queryEngine,
		Stats:    stats.NewService(chunkStore, v),
		Vocab:    v,
	}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			logger.Debug("request", "method", values.Method, "uri", values.URI, "status", values.Status)
			return nil
		},
	}))

	RegisterRoutes(e)

	go func() {
		port := util.GetEnv("PORT")
		if port == "" {
			port = "8080"
		}
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}

// newAiClient selects the model backend from AI_ADAPTER. The default is any
// OpenAI-compatible endpoint; "ollama" targets a local Ollama server.
func newAiClient() ai.Client {
	switch util.GetEnv("AI_ADAPTER") {
	case "ollama":
		client, err := oai.NewClient(oai.NewClientParams{
			ChatModel:      util.GetEnv("AI_CHAT_MODEL"),
			EmbeddingModel: util.GetEnv("AI_EMBED_MODEL"),

			BaseURL: util.GetEnv("AI_CHAT_URL"),
			ApiKey:  util.GetEnv("AI_CHAT_KEY"),

			MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 4)),
		})
		if err != nil {
			logger.Fatal("Failed to create Ollama client", "err", err)
		}
		return client
	default:
		return gai.NewClient(gai.NewClientParams{
			ChatModel:      util.GetEnv("AI_CHAT_MODEL"),
			EmbeddingModel: util.GetEnv("AI_EMBED_MODEL"),

			ChatURL:      util.GetEnv("AI_CHAT_URL"),
			ChatKey:      util.GetEnv("AI_CHAT_KEY"),
			EmbeddingURL: util.GetEnv("AI_EMBED_URL"),
			EmbeddingKey: util.GetEnv("AI_EMBED_KEY"),

			MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 4)),
		})
	}
}

func runMigrations(databaseURL string) {
	migrationsPath := util.GetEnvString("MIGRATIONS_PATH", "migrations")
	m, err := migrate.New("file://"+migrationsPath, databaseURL)
	if err != nil {
		logger.Fatal("Failed to initialize migrations", "err", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Fatal("Failed to run migrations", "err", err)
	}
	logger.Info("Database migrations applied")
}
