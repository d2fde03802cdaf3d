// Package sanitize cleans admin-entered text before it is stored. Post
// bodies keep safe formatting; comments, tag descriptions and other short
// fields are reduced to plain text.
package sanitize

import (
	"html"
	"net/url"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	richPolicy   *bluemonday.Policy
	strictPolicy *bluemonday.Policy
	policyOnce   sync.Once
)

func policies() (*bluemonday.Policy, *bluemonday.Policy) {
	policyOnce.Do(func() {
		richPolicy = bluemonday.UGCPolicy()
		richPolicy.AllowAttrs("class").OnElements("span", "p", "code", "pre")
		richPolicy.RequireNoFollowOnLinks(true)
		richPolicy.AddTargetBlankToFullyQualifiedLinks(true)

		strictPolicy = bluemonday.StrictPolicy()
	})
	return richPolicy, strictPolicy
}

// HTML strips scripts, event handlers and javascript: URLs from post text
// while keeping paragraphs, lists, links and emphasis.
func HTML(input string) string {
	if input == "" {
		return ""
	}
	rich, _ := policies()
	return strings.TrimSpace(rich.Sanitize(input))
}

// Text removes all markup and returns trimmed plain text. Entities produced
// by the policy are decoded so "Кофе & чай" round-trips unchanged.
func Text(input string) string {
	if input == "" {
		return ""
	}
	_, strict := policies()
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(input)))
}

// URL returns raw when it is an absolute http(s) URL or a site-relative
// path, and "" otherwise. Used for post images and author avatars.
func URL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}
