package util

import "strings"

// TruncateString truncates a string to maxRunes characters (rune-based, not byte-based)
// If truncated, appends "..." to the result
func TruncateString(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}

// Normalize performs basic string normalization (lowercase + trim)
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CollapseWhitespace replaces every whitespace run (NBSP included) with a
// single space and trims the ends.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Slugify converts a name to a file-name friendly slug.
func Slugify(name string) string {
	name = Normalize(name)
	var builder strings.Builder
	lastDash := false
	for _, r := range name {
		switch {
		case r == ' ' || r == '-' || r == '_' || r == '/' || r == '\\':
			if !lastDash && builder.Len() > 0 {
				builder.WriteRune('-')
				lastDash = true
			}
		case r == '\'' || r == '.' || r == '!' || r == '?' || r == ':' || r == '"':
			continue
		default:
			builder.WriteRune(r)
			lastDash = false
		}
	}
	return strings.TrimSuffix(builder.String(), "-")
}
