// Package app is the application bootstrap and dependency injection root.
// It holds the shared infrastructure (DB pool, Redis client, Echo instance)
// and wires the tags, products, collections and posts plugins together.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/keyxmakerx/tagboard/internal/apperror"
	"github.com/keyxmakerx/tagboard/internal/config"
	"github.com/keyxmakerx/tagboard/internal/middleware"
	"github.com/keyxmakerx/tagboard/internal/plugins/collections"
	"github.com/keyxmakerx/tagboard/internal/plugins/posts"
	"github.com/keyxmakerx/tagboard/internal/templates/pages"
)

// App holds all shared dependencies and the Echo HTTP server instance.
// Created once at startup in main.go.
type App struct {
	Config *config.Config

	// DB is the MariaDB connection pool shared by all plugins.
	DB *sql.DB

	// Redis backs the preview cache and the API rate limiter.
	Redis *redis.Client

	Echo *echo.Echo

	// Set by RegisterRoutes.
	refresh *collections.RefreshWorker
	posts   posts.PostService
}

// New creates an App and configures the Echo server with global
// middleware and error handling.
func New(cfg *config.Config, db *sql.DB, rdb *redis.Client) *App {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// c.RealIP() must return the client address, not the proxy's, because
	// the rate limiter keys on it.
	middleware.TrustedProxies(e, middleware.DefaultTrustedProxies)

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
		Echo:   e,
	}

	app.setupMiddleware()
	e.HTTPErrorHandler = app.errorHandler

	return app
}

// setupMiddleware registers global middleware. Order matters: recovery is
// outermost so it catches panics from everything below it.
func (a *App) setupMiddleware() {
	a.Echo.Use(middleware.Recovery())
	a.Echo.Use(middleware.RequestLogger())
	a.Echo.Use(middleware.SecurityHeaders())

	// The admin SPA is served from BaseURL and calls the API cross-origin
	// in development.
	a.Echo.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: []string{a.Config.BaseURL},
	}))

	a.Echo.Use(middleware.Environment(a.Config.Env))
}

// errorHandler maps AppErrors to HTTP responses: JSON for /api requests,
// an HTML error page for everything else.
func (a *App) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "an unexpected error occurred"

	var appErr *apperror.AppError
	var echoErr *echo.HTTPError
	switch {
	case errors.As(err, &appErr):
		code = appErr.Code
		message = appErr.Message
		if appErr.Internal != nil {
			slog.Error("internal error",
				slog.String("type", appErr.Type),
				slog.String("message", appErr.Message),
				slog.Any("internal", appErr.Internal),
				slog.String("path", c.Request().URL.Path),
			)
		}
	case errors.As(err, &echoErr):
		// Router 404/405 and body-limit 413.
		code = echoErr.Code
		if msg, ok := echoErr.Message.(string); ok {
			message = msg
		} else {
			message = defaultErrorMessage(code)
		}
	default:
		slog.Error("unhandled error",
			slog.Any("error", err),
			slog.String("path", c.Request().URL.Path),
		)
	}

	if isAPIRequest(c) {
		if err := c.JSON(code, map[string]string{
			"error":   http.StatusText(code),
			"message": message,
		}); err != nil {
			slog.Warn("writing error response", slog.Any("error", err))
		}
		return
	}

	if err := middleware.Render(c, code, pages.ErrorPage(code, message)); err != nil {
		slog.Warn("rendering error page", slog.Any("error", err))
	}
}

// defaultErrorMessage returns a message for Echo errors that carry none.
func defaultErrorMessage(code int) string {
	switch code {
	case http.StatusNotFound:
		return "the requested resource does not exist"
	case http.StatusMethodNotAllowed:
		return "this method is not allowed here"
	case http.StatusRequestEntityTooLarge:
		return "the uploaded file is too large"
	case http.StatusTooManyRequests:
		return "too many requests, please slow down"
	default:
		return strings.ToLower(http.StatusText(code))
	}
}

func isAPIRequest(c echo.Context) bool {
	return strings.HasPrefix(c.Request().URL.Path, "/api/")
}

// SeedDemo fills an empty feed with the demo posts.
func (a *App) SeedDemo(ctx context.Context) error {
	if a.posts == nil {
		return errors.New("routes not registered")
	}
	if _, err := a.posts.SeedDemo(ctx); err != nil {
		return fmt.Errorf("seeding demo posts: %w", err)
	}
	return nil
}

// RunWorkers blocks running background jobs until ctx is canceled.
func (a *App) RunWorkers(ctx context.Context) {
	if a.refresh == nil {
		return
	}
	a.refresh.Run(ctx)
}

// Start begins listening for HTTP requests on the configured port.
func (a *App) Start() error {
	addr := fmt.Sprintf(":%d", a.Config.Port)
	slog.Info("starting Tagboard server",
		slog.String("addr", addr),
		slog.String("env", a.Config.Env),
	)
	return a.Echo.Start(addr)
}
