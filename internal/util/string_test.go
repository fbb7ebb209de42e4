package util

import "testing"

func TestCollapseWhitespace(t *testing.T) {
	tests := map[string]string{
		"  March 3,\n\t 2000  ": "March 3, 2000",
		"Tokyo, Japan":     "Tokyo, Japan",
		"":                      "",
		"   ":                   "",
	}
	for input, want := range tests {
		if got := CollapseWhitespace(input); got != want {
			t.Fatalf("CollapseWhitespace(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Kosaka Nao":          "kosaka-nao",
		"Hinatazaka46 Wiki":   "hinatazaka46-wiki",
		"Kona_Konoka / Intro": "kona-konoka-intro",
		"Don't Stop!":         "dont-stop",
	}
	for input, want := range tests {
		if got := Slugify(input); got != want {
			t.Fatalf("Slugify(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestTruncateString(t *testing.T) {
	if got := TruncateString("日向坂46のメンバー", 4); got != "日向坂4..." {
		t.Fatalf("unexpected truncation: %q", got)
	}
	if got := TruncateString("short", 10); got != "short" {
		t.Fatalf("unexpected truncation: %q", got)
	}
}
