// Package format builds Telegram HTML fragments.
package format

import (
	"html"
	"strings"
	"unicode/utf8"
)

// Escape makes s safe for Telegram's HTML parse mode.
func Escape(s string) string {
	return html.EscapeString(s)
}

func Bold(s string) string { return "<b>" + Escape(s) + "</b>" }
func Code(s string) string { return "<code>" + Escape(s) + "</code>" }

// Link renders an anchor; an empty href yields the escaped label alone.
func Link(label, href string) string {
	if strings.TrimSpace(href) == "" {
		return Escape(label)
	}
	return `<a href="` + Escape(href) + `">` + Escape(label) + "</a>"
}

// Truncate cuts s to at most max runes, appending an ellipsis when cut.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	if max == 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}

// FirstLine returns the first non-blank line of s, trimmed.
func FirstLine(s string) string {
	for line := range strings.SplitSeq(s, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			return t
		}
	}
	return ""
}
