package middleware

import (
	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/tagboard/internal/templates/layouts"
)

// Render writes a templ component as the HTML response body. The acting
// admin is copied into the render context for the page header.
func Render(c echo.Context, statusCode int, component templ.Component) error {
	ctx := c.Request().Context()
	if actor := Actor(c); actor != "" {
		ctx = layouts.WithActor(ctx, actor)
	}
	if env, ok := c.Get(envContextKey).(string); ok {
		ctx = layouts.WithEnv(ctx, env)
	}

	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(statusCode)
	return component.Render(ctx, c.Response().Writer)
}

const envContextKey = "tagboard.env"

// Environment exposes the runtime environment to rendered pages.
func Environment(env string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(envContextKey, env)
			return next(c)
		}
	}
}
