package domain

import "strings"

// Group ties an identifier found in paths or markup to its display label.
type Group struct {
	Identifier string
	Label      string
}

// KnownGroups is checked in order; the first match wins.
var KnownGroups = []Group{
	{Identifier: "hinatazaka", Label: "Hinatazaka46"},
	{Identifier: "nogizaka", Label: "Nogizaka46"},
	{Identifier: "sakurazaka", Label: "Sakurazaka46"},
}

// InferGroup searches the file path first and the infobox markup second.
func InferGroup(path, infoboxHTML string) string {
	for _, source := range []string{path, infoboxHTML} {
		lower := strings.ToLower(source)
		for _, g := range KnownGroups {
			if strings.Contains(lower, g.Identifier) {
				return g.Label
			}
		}
	}
	return ""
}
