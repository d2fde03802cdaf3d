// Package layouts holds the HTML shell shared by Tagboard's server-rendered
// pages and the context helpers that feed it. Only plain values are stored
// in the context so this package imports nothing from the plugins.
package layouts

import "context"

type ctxKey string

const (
	keyActor ctxKey = "layout_actor"
	keyEnv   ctxKey = "layout_env"
)

// WithActor stores the acting admin's display name for the page header.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, keyActor, actor)
}

// Actor returns the display name set by WithActor, or "".
func Actor(ctx context.Context) string {
	v, _ := ctx.Value(keyActor).(string)
	return v
}

// WithEnv stores the runtime environment so non-production pages can say so.
func WithEnv(ctx context.Context, env string) context.Context {
	return context.WithValue(ctx, keyEnv, env)
}

// Env returns the environment set by WithEnv, or "".
func Env(ctx context.Context) string {
	v, _ := ctx.Value(keyEnv).(string)
	return v
}
