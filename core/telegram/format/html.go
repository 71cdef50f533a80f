package format

import (
	"html"
	"strings"
)

// EscapeHTML escapes text for use inside Telegram HTML-mode messages.
func EscapeHTML(text string) string {
	return html.EscapeString(text)
}

// NormalizeURL makes a URL acceptable for Telegram inline buttons.
// Returns "" when the value cannot be normalized into a valid link.
func NormalizeURL(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return ""
	}
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	if strings.HasPrefix(u, "telegra.ph/") || strings.HasPrefix(u, "www.") {
		return "https://" + u
	}
	if strings.Contains(u, ".") && !strings.Contains(u, " ") {
		return "https://" + u
	}
	return ""
}
