package middleware

import (
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
)

// ActorHeader carries the acting admin's display name. It is set by the
// fronting proxy after it authenticates the user.
const ActorHeader = "X-Admin-User"

// actorContextKey stores the resolved actor on the echo context.
const actorContextKey = "tagboard.actor"

// DefaultActor is recorded as UpdatedBy when no actor header is present.
const DefaultActor = "system"

const maxActorLength = 100

// ResolveActor copies the actor header into the echo context, trimmed and
// truncated to fit the updated_by columns.
func ResolveActor() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(actorContextKey, normalizeActor(c.Request().Header.Get(ActorHeader)))
			return next(c)
		}
	}
}

// Actor returns the acting admin for the request, or "" outside the API group.
func Actor(c echo.Context) string {
	actor, _ := c.Get(actorContextKey).(string)
	return actor
}

func normalizeActor(raw string) string {
	actor := strings.TrimSpace(raw)
	if actor == "" || !utf8.ValidString(actor) {
		return DefaultActor
	}
	if utf8.RuneCountInString(actor) > maxActorLength {
		actor = string([]rune(actor)[:maxActorLength])
	}
	return actor
}
