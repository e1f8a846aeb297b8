package ui

import (
	"fmt"
	"strings"
)

// ANSI256 color codes.
const (
	colorAccent   = 74  // blue: IDs
	colorCategory = 179 // amber: categories, choirs, committees
	colorMuted    = 245 // gray: dates, pagination
	colorError    = 167 // red
)

var noColor bool

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}

func paint(code int, s string) string {
	if noColor || s == "" {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", code, s)
}

// RenderID returns an item ID in the accent color.
func RenderID(s string) string { return paint(colorAccent, s) }

// RenderCategory returns a category label in the category color.
func RenderCategory(s string) string { return paint(colorCategory, s) }

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string { return paint(colorMuted, s) }

// RenderError returns s in the error color.
func RenderError(s string) string { return paint(colorError, s) }

// RenderBold returns s in bold.
func RenderBold(s string) string {
	if noColor || s == "" {
		return s
	}
	return "\x1b[1m" + s + "\x1b[0m"
}

// PageSummary describes a listing page, e.g. "page 2 of 5 (43 items)".
// An empty listing reads "no items".
func PageSummary(page, totalPages, totalItems int) string {
	if totalItems == 0 {
		return "no items"
	}
	noun := "items"
	if totalItems == 1 {
		noun = "item"
	}
	return fmt.Sprintf("page %d of %d (%d %s)", page, totalPages, totalItems, noun)
}

// Truncate shortens s to at most width runes, ending with "…" when cut.
// A width below 1 leaves s unchanged.
func Truncate(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if width < 1 {
		return s
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}
