package layouts

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

const baseStyle = `body{font-family:system-ui,sans-serif;margin:0;background:#f6f7f9;color:#1f2937}` +
	`header{display:flex;justify-content:space-between;padding:12px 24px;background:#111827;color:#f9fafb}` +
	`main{max-width:720px;margin:48px auto;padding:0 24px}` +
	`code{background:#e5e7eb;padding:1px 4px;border-radius:3px}` +
	`.env{background:#f59e0b;color:#111827;padding:2px 8px;border-radius:3px;font-size:12px}`

// Base wraps body in the console's HTML shell.
func Base(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<!DOCTYPE html><html lang="ru"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>%s · Tagboard</title><style>%s</style></head><body><header><strong>Tagboard</strong><span>`,
			templ.EscapeString(title), baseStyle,
		); err != nil {
			return err
		}
		if env := Env(ctx); env != "" && env != "production" && env != "prod" {
			if _, err := fmt.Fprintf(w, `<span class="env">%s</span> `, templ.EscapeString(env)); err != nil {
				return err
			}
		}
		if actor := Actor(ctx); actor != "" {
			if _, err := io.WriteString(w, templ.EscapeString(actor)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</span></header><main>`); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}
