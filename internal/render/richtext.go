package render

import (
	"bytes"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// Raw HTML in markdown is dropped by goldmark (WithUnsafe is not set) and
// whatever survives is filtered again by the UGC policy.
var (
	markdown = goldmark.New(
		goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
		goldmark.WithRendererOptions(
			goldmarkHTML.WithHardWraps(),
		),
	)
	policy = bluemonday.UGCPolicy()
)

// RichText converts untrusted markdown into sanitized HTML.
func RichText(src string) string {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return Escape(src)
	}
	return strings.TrimSpace(policy.Sanitize(buf.String()))
}

// Escape makes untrusted plain text safe to render as trusted markup.
func Escape(s string) string {
	return html.EscapeString(s)
}

// SafeHref keeps http(s), mailto, tel and site-relative links and drops
// anything else. Attribute escaping is left to the templates.
func SafeHref(s string) string {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	switch {
	case s == "":
		return ""
	case strings.HasPrefix(lower, "https://"), strings.HasPrefix(lower, "http://"),
		strings.HasPrefix(lower, "mailto:"), strings.HasPrefix(lower, "tel:"):
		return s
	case strings.HasPrefix(s, "//"), strings.HasPrefix(s, "/\\"):
		// Browsers read both as scheme-relative links to another host.
		return ""
	case strings.HasPrefix(s, "/"), strings.HasPrefix(s, "#"):
		return s
	default:
		return ""
	}
}
