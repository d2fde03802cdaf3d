// Package pages contains the few HTML pages the server renders itself. The
// admin UI is a separate client of the JSON API.
package pages

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/a-h/templ"

	"github.com/keyxmakerx/tagboard/internal/templates/layouts"
)

// ErrorPage renders a status code and a client-safe message.
func ErrorPage(code int, message string) templ.Component {
	body := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<h1>%d %s</h1><p>%s</p><p><a href="/">Back to start</a></p>`,
			code, templ.EscapeString(http.StatusText(code)), templ.EscapeString(message))
		return err
	})
	return layouts.Base(http.StatusText(code), body)
}

// apiSections lists the resources shown on the landing page.
var apiSections = []struct{ Path, Summary string }{
	{"/api/v1/tags", "tags: create, archive, restore, duplicate"},
	{"/api/v1/products", "catalog, tag assignment with SPU/SKU sync, XLSX export"},
	{"/api/v1/collections", "manual and tag-rule collections, preview, CSV/XLSX import"},
	{"/api/v1/posts", "news feed posts, comments and reactions"},
	{"/api/v1/audit", "who changed what, newest first"},
	{"/healthz", "database and cache health"},
}

// Landing is served at "/" as a pointer to the API.
func Landing() templ.Component {
	body := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<h1>Tagboard</h1><p>Merchandising console API.</p><ul>`); err != nil {
			return err
		}
		for _, s := range apiSections {
			if _, err := fmt.Fprintf(w, `<li><code>%s</code> %s</li>`,
				templ.EscapeString(s.Path), templ.EscapeString(s.Summary)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</ul>`)
		return err
	})
	return layouts.Base("Start", body)
}
