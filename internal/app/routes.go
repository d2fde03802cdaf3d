package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/tagboard/internal/middleware"
	"github.com/keyxmakerx/tagboard/internal/plugins/audit"
	"github.com/keyxmakerx/tagboard/internal/plugins/collections"
	"github.com/keyxmakerx/tagboard/internal/plugins/posts"
	"github.com/keyxmakerx/tagboard/internal/plugins/products"
	"github.com/keyxmakerx/tagboard/internal/plugins/tags"
	"github.com/keyxmakerx/tagboard/internal/templates/pages"
)

// RegisterRoutes wires every plugin and mounts its routes. This is the
// single place where plugins meet: products look tags up through the tags
// service, collections evaluate rules against the products catalog, and
// the audit middleware observes every API mutation.
func (a *App) RegisterRoutes() {
	e := a.Echo
	cfg := a.Config

	e.GET("/", func(c echo.Context) error {
		return middleware.Render(c, http.StatusOK, pages.Landing())
	})
	e.GET("/healthz", a.health)

	auditService := audit.NewAuditService(audit.NewAuditRepository(a.DB))

	api := e.Group("/api/v1",
		middleware.NewRateLimiter(a.Redis, cfg.Limits.RateLimitRequests, cfg.Limits.RateLimitWindow).Middleware(),
		middleware.ResolveActor(),
		audit.Record(auditService),
	)
	audit.RegisterRoutes(api, audit.NewHandler(auditService))

	tagService := tags.NewTagService(tags.NewTagRepository(a.DB))
	tags.RegisterRoutes(api, tags.NewHandler(tagService))

	productService := products.NewProductService(products.NewProductRepository(a.DB), tagService)
	products.RegisterRoutes(api, products.NewHandler(productService))

	collectionService := collections.NewCollectionService(
		collections.NewCollectionRepository(a.DB),
		productService,
		collections.NewRedisPreviewCache(a.Redis, cfg.Catalog.PreviewCacheTTL),
		cfg.Catalog.RefreshConcurrency,
	)
	collections.RegisterRoutes(api, collections.NewHandler(collectionService, cfg.Limits.MaxUploadSize))
	a.refresh = collections.NewRefreshWorker(collectionService, cfg.Catalog.RefreshInterval)

	a.posts = posts.NewPostService(posts.NewPostRepository(a.DB))
	posts.RegisterRoutes(api, posts.NewHandler(a.posts))
}

// health reports 503 when MariaDB or Redis does not answer a ping.
func (a *App) health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"database": "ok", "redis": "ok"}
	code := http.StatusOK
	if err := a.DB.PingContext(ctx); err != nil {
		slog.Error("health check: database ping failed", slog.Any("error", err))
		status["database"] = "unavailable"
		code = http.StatusServiceUnavailable
	}
	if err := a.Redis.Ping(ctx).Err(); err != nil {
		slog.Error("health check: redis ping failed", slog.Any("error", err))
		status["redis"] = "unavailable"
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, status)
}
