package sanitize

import (
	"strings"
	"testing"
)

func TestHTML(t *testing.T) {
	in := `<p onclick="steal()">Скидки <strong>до 50%</strong></p><script>alert(1)</script><a href="javascript:alert(1)">x</a>`
	got := HTML(in)

	for _, banned := range []string{"<script", "onclick", "javascript:"} {
		if strings.Contains(got, banned) {
			t.Errorf("HTML() kept %q: %s", banned, got)
		}
	}
	if !strings.Contains(got, "<strong>до 50%</strong>") {
		t.Errorf("HTML() dropped safe formatting: %s", got)
	}
}

func TestText(t *testing.T) {
	tests := map[string]string{
		"  Отличная подборка!  ":         "Отличная подборка!",
		"<b>bold</b> move":               "bold move",
		"<script>alert(1)</script>":      "",
		"Кофе & чай":                     "Кофе & чай",
		`<img src=x onerror="alert(1)">`: "",
	}
	for in, want := range tests {
		if got := Text(in); got != want {
			t.Errorf("Text(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestURL(t *testing.T) {
	tests := map[string]string{
		"https://cdn.example.com/a.png": "https://cdn.example.com/a.png",
		"/static/avatar.png":            "/static/avatar.png",
		"//evil.example.com/x.png":      "",
		"javascript:alert(1)":           "",
		"data:image/png;base64,AAAA":    "",
		"":                              "",
	}
	for in, want := range tests {
		if got := URL(in); got != want {
			t.Errorf("URL(%q) = %q, want %q", in, got, want)
		}
	}
}
