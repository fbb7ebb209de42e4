package ai

import (
	"strings"

	"github.com/kapu/wiki-tweets-go/internal/constants"
)

// SplitSnippets splits raw backend output on the snippet delimiter, trimming
// each segment and dropping empty ones.
func SplitSnippets(raw string) []string {
	parts := strings.Split(raw, constants.GeneratorConfig.SnippetDelimiter)
	snippets := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			snippets = append(snippets, trimmed)
		}
	}
	return snippets
}
