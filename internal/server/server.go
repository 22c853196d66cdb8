// Package server exposes the HTTP API: asynchronous generation jobs,
// template metadata, document lookups, batch runs, health and metrics.
package server

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sopforge/config"
	"sopforge/internal/artifacts"
	"sopforge/internal/core"
	"sopforge/internal/generator"
	"sopforge/internal/jobs"
	"sopforge/internal/pipeline"
)

// Server is the HTTP API server.
type Server struct {
	echo      *echo.Echo
	cfg       *config.Config
	assembler *generator.Assembler
	renderer  pipeline.DocumentRenderer
	store     *artifacts.FS
	index     *artifacts.Index
	orch      *pipeline.Orchestrator
	jobs      *jobs.Store
	providers []string
	logger    *slog.Logger
}

// Options wire the server.
type Options struct {
	Config    *config.Config
	Assembler *generator.Assembler
	Renderer  pipeline.DocumentRenderer
	Store     *artifacts.FS
	Index     *artifacts.Index
	Orch      *pipeline.Orchestrator

	// Providers lists the enabled provider names for the health endpoint.
	Providers []string
	Logger    *slog.Logger
}

// New builds the server and registers routes and middleware.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:      e,
		cfg:       opts.Config,
		assembler: opts.Assembler,
		renderer:  opts.Renderer,
		store:     opts.Store,
		index:     opts.Index,
		orch:      opts.Orch,
		jobs:      jobs.NewStore(),
		providers: opts.Providers,
		logger:    opts.Logger,
	}

	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("1M"))
	e.Use(s.requestLogger())
	if opts.Config.Server.MasterKey != "" {
		e.Use(s.masterKeyAuth())
	}

	s.routes()
	return s
}

// routes registers all endpoints.
func (s *Server) routes() {
	e := s.echo

	e.GET("/health", s.handleHealth)
	if s.cfg.Metrics.Enabled {
		e.GET(s.cfg.Metrics.Endpoint, echo.WrapHandler(promhttp.Handler()))
	}

	v1 := e.Group("/v1")
	v1.POST("/generations", s.handleCreateGeneration)
	v1.GET("/generations", s.handleListGenerations)
	v1.GET("/generations/:id", s.handleGetGeneration)
	v1.DELETE("/generations/:id", s.handleCancelGeneration)

	v1.GET("/templates", s.handleListTemplates)
	v1.GET("/templates/:type", s.handleGetTemplate)

	v1.GET("/documents", s.handleListDocuments)
	v1.GET("/documents/:id", s.handleGetDocument)

	v1.POST("/batches", s.handleCreateBatch)
	v1.GET("/batches", s.handleListBatches)
	v1.GET("/batches/:id", s.handleGetBatch)
}

// requestLogger logs one line per request through slog.
func (s *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency)
			return nil
		},
	})
}

// authSkipPaths are reachable without the master key.
var authSkipPaths = map[string]bool{
	"/health": true,
}

// masterKeyAuth requires the configured master key as a bearer token on
// every route except health and metrics.
func (s *Server) masterKeyAuth() echo.MiddlewareFunc {
	key := []byte(s.cfg.Server.MasterKey)
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		Skipper: func(c echo.Context) bool {
			if authSkipPaths[c.Path()] {
				return true
			}
			return s.cfg.Metrics.Enabled && c.Path() == s.cfg.Metrics.Endpoint
		},
		Validator: func(auth string, c echo.Context) (bool, error) {
			return subtle.ConstantTimeCompare([]byte(auth), key) == 1, nil
		},
		ErrorHandler: func(err error, c echo.Context) error {
			return s.writeError(c, core.NewAuthenticationError("", "invalid or missing API key"))
		},
	})
}

// writeError renders a ProviderError (or wraps anything else) as the wire
// error envelope.
func (s *Server) writeError(c echo.Context, err error) error {
	perr, ok := core.AsProviderError(err)
	if !ok {
		perr = core.NewProviderError("", http.StatusInternalServerError, err.Error(), err)
	}
	return c.JSON(perr.HTTPStatusCode(), perr.ToJSON())
}

// Start begins serving on the configured port. Blocks until shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "port", s.cfg.Server.Port)
	return s.echo.Start(":" + s.cfg.Server.Port)
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.echo.Shutdown(shutdownCtx)
}

// Handler exposes the underlying handler for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}
