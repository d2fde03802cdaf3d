package pages

import (
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/keyxmakerx/tagboard/internal/templates/layouts"
)

func render(t *testing.T, ctx context.Context, c templ.Component) string {
	t.Helper()
	var b strings.Builder
	if err := c.Render(ctx, &b); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return b.String()
}

func TestErrorPage_EscapesMessage(t *testing.T) {
	html := render(t, context.Background(), ErrorPage(404, `<script>alert("x")</script>`))

	if strings.Contains(html, "<script>") {
		t.Errorf("ErrorPage did not escape message: %s", html)
	}
	if !strings.Contains(html, "404 Not Found") {
		t.Errorf("ErrorPage missing status line: %s", html)
	}
}

func TestLanding_ShowsActorAndEnv(t *testing.T) {
	ctx := layouts.WithActor(context.Background(), "Анна М.")
	ctx = layouts.WithEnv(ctx, "development")
	html := render(t, ctx, Landing())

	for _, want := range []string{"Анна М.", "development", "/api/v1/collections"} {
		if !strings.Contains(html, want) {
			t.Errorf("Landing missing %q", want)
		}
	}

	prod := render(t, layouts.WithEnv(context.Background(), "production"), Landing())
	if strings.Contains(prod, `class="env"`) {
		t.Error("Landing shows environment badge in production")
	}
}
