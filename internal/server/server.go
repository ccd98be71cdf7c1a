package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/prepwise/prepwise/config"
	"github.com/prepwise/prepwise/internal/llm"
	"github.com/prepwise/prepwise/internal/quiz"
	"github.com/prepwise/prepwise/internal/report"
	"github.com/prepwise/prepwise/internal/store"
	"github.com/prepwise/prepwise/internal/telemetry"
	"github.com/prepwise/prepwise/tools/websearch"
)

// Run wires the full service and serves HTTP until the process exits.
func Run(cfg *config.Config) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	// Unified HTTP error handler with structured JSON and logging
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Cookie"},
		AllowCredentials: true,
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(200, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	ctx := context.Background()

	// Tracing must be installed before the orchestrator grabs its tracer,
	// otherwise the pipeline spans go to the global no-op provider.
	tracing, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("telemetry setup: %w", err)
	}
	defer func() {
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(shutCtx); err != nil {
			baseLogger.Printf("telemetry shutdown: %v", err)
		}
	}()

	provider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		return err
	}
	searcher, err := websearch.NewSearcher(websearch.Provider(cfg.Search.Provider), cfg.Search.APIKey())
	if err != nil {
		return err
	}

	orchLogger := log.New(log.Writer(), "[ORCH] ", log.LstdFlags)
	orch := report.NewOrchestrator(
		report.NewPlanner(provider, cfg.LLM.Routing.ModelFor("planning"), nil),
		report.NewDispatcher(searcher, 4, cfg.Search.Timeout, nil),
		report.NewSynthesizer(provider, cfg.LLM.Routing.ModelFor("synthesis"), nil),
		orchLogger,
	)

	generator := quiz.NewGenerator(provider, cfg.LLM.Routing.ModelFor("generation"), nil)

	// Quiz sessions go to Redis when configured so multiple instances can
	// share them; otherwise an in-process store serves single-node runs.
	var sessions quiz.Store
	if cfg.Storage.Redis.Host != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", cfg.Storage.Redis.Host, cfg.Storage.Redis.Port),
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis connection failed (%s:%s): %w", cfg.Storage.Redis.Host, cfg.Storage.Redis.Port, err)
		}
		sessions = quiz.NewRedisStore(rdb)
		baseLogger.Printf("quiz sessions backed by redis at %s:%s", cfg.Storage.Redis.Host, cfg.Storage.Redis.Port)
	} else {
		sessions = quiz.NewMemoryStore()
		baseLogger.Printf("quiz sessions in memory (no redis configured)")
	}

	// Report archive is optional: without Postgres the service still serves
	// quizzes and reports, it just keeps nothing.
	var archive *store.Store
	if dsn, err := cfg.Storage.Postgres.DSN(); err == nil {
		if mErr := Migrate("file://migrations", dsn, "up", 0); mErr != nil {
			baseLogger.Printf("migrations: %v", mErr)
		}
		archive, err = store.NewWithDSN(ctx, dsn)
		if err != nil {
			return fmt.Errorf("postgres connection failed: %w", err)
		}
	} else {
		baseLogger.Printf("report archive disabled: %v", err)
	}

	h := &Handler{
		Cfg:       cfg,
		Logger:    baseLogger,
		Orch:      orch,
		Generator: generator,
		Sessions:  sessions,
		Archive:   archive,
	}
	h.Register(e.Group("/api"))

	addr := cfg.Server.Address
	if addr == "" {
		addr = ":8090"
	}
	log.Printf("listening on %s", addr)
	return e.Start(addr)
}
