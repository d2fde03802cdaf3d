package audit

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/tagboard/internal/middleware"
)

// Record logs every successful request whose route maps to an Action. It
// must run after middleware.ResolveActor. Path parameters other than :id
// are kept as details, e.g. the tag id of a product assignment.
func Record(service AuditService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := next(c); err != nil {
				return err
			}

			action, ok := ActionFor(c.Request().Method, c.Path())
			if !ok || c.Response().Status >= http.StatusBadRequest {
				return nil
			}

			entry := &Entry{
				Actor:        middleware.Actor(c),
				Action:       action,
				ResourceType: action.ResourceType(),
				ResourceID:   c.Param("id"),
				Details:      pathDetails(c),
			}
			// The response is already written; the entry outlives a
			// client disconnect. Errors are logged by the service.
			_ = service.Log(context.WithoutCancel(c.Request().Context()), entry)
			return nil
		}
	}
}

func pathDetails(c echo.Context) map[string]string {
	var details map[string]string
	values := c.ParamValues()
	for i, name := range c.ParamNames() {
		if name == "id" || i >= len(values) {
			continue
		}
		if details == nil {
			details = make(map[string]string)
		}
		details[name] = values[i]
	}
	return details
}
