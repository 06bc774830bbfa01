// Package sanitize holds pure helpers for neutralizing untrusted visitor
// input before it is stored or displayed. Every function is total: it always
// returns a string, possibly empty, and never fails.
package sanitize

import (
	"strings"
	"unicode/utf8"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
)

// EscapeHTML replaces the characters & < > " ' / with their HTML entity
// equivalents.
func EscapeHTML(text string) string {
	return htmlEscaper.Replace(text)
}

// SanitizeComment fully escapes comment text. There is no tag allow-list:
// comment content is rendered as pre-escaped plain text, never as raw HTML.
func SanitizeComment(content string) string {
	return EscapeHTML(content)
}

// safeURLPrefixes are the only schemes/prefixes a visitor-supplied URL may
// carry. Anything else with a ':' (javascript:, data:, vbscript:, ...) is
// rejected outright.
var safeURLPrefixes = []string{"http://", "https://", "mailto:", "/", "#"}

// SanitizeURL returns the trimmed URL if it is safe to link to, else "".
// The prefix check runs on a lower-cased copy; the returned value keeps the
// original casing.
func SanitizeURL(url string) string {
	trimmed := strings.TrimSpace(url)
	if trimmed == "" {
		return ""
	}

	lower := strings.ToLower(trimmed)
	for _, prefix := range safeURLPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return trimmed
		}
	}
	// No scheme at all means a relative path, which is fine.
	if !strings.Contains(lower, ":") {
		return trimmed
	}

	return ""
}

var filenameIllegal = strings.NewReplacer(
	"/", "_",
	`\`, "_",
	"<", "_",
	">", "_",
	":", "_",
	`"`, "_",
	"|", "_",
	"?", "_",
	"*", "_",
)

// SanitizeFilename strips path traversal sequences, replaces path separators
// and illegal filesystem characters with '_', collapses whitespace to '_',
// and truncates to at most 255 bytes without splitting a multi-byte rune.
func SanitizeFilename(name string) string {
	if name == "" {
		return ""
	}

	cleaned := strings.ReplaceAll(name, "..", "")
	cleaned = filenameIllegal.Replace(cleaned)
	cleaned = strings.Join(strings.Fields(cleaned), "_")

	if len(cleaned) > 255 {
		cut := 255
		for cut > 0 && !utf8.RuneStart(cleaned[cut]) {
			cut--
		}
		cleaned = cleaned[:cut]
	}
	return cleaned
}
