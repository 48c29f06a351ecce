// Package sanitize cleans free text before it is stored. Lead names and
// comment bodies arrive from phone typists and pasted spreadsheets, so
// markup in them is never legitimate and is stripped outright.
package sanitize

import (
	"regexp"
	"strings"
)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// StripHTML removes markup from a string so it is safe to render as plain
// text. Entities are decoded between two stripping passes because an
// encoded tag only becomes a real one after decoding.
func StripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	result = strings.ReplaceAll(result, "&lt;", "<")
	result = strings.ReplaceAll(result, "&gt;", ">")
	result = strings.ReplaceAll(result, "&amp;", "&")
	result = strings.ReplaceAll(result, "&quot;", "\"")
	result = strings.ReplaceAll(result, "&#39;", "'")
	result = htmlTagRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// Text is the canonical cleanup for user supplied fields such as lead
// names and comment bodies.
func Text(s string) string {
	return StripHTML(s)
}

// TextPtr applies Text to optional fields, preserving nil.
func TextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	result := Text(*s)
	return &result
}
