package ai

import (
	"strings"
	"testing"

	"github.com/kapu/wiki-tweets-go/internal/domain"
)

func TestTemplateSnippetsEmptyProfileProducesIntroOnly(t *testing.T) {
	snippets := TemplateSnippets(&domain.MemberProfile{})
	if len(snippets) != 1 {
		t.Fatalf("expected intro only, got %d: %v", len(snippets), snippets)
	}

	if got := TemplateSnippets(nil); len(got) != 1 {
		t.Fatalf("nil profile should produce intro only, got %v", got)
	}
}

func TestTemplateSnippetsNameAndBirthday(t *testing.T) {
	profile := &domain.MemberProfile{Name: "Kona Konoka", Birthday: "March 3, 2000", Group: "Hinatazaka46"}

	snippets := TemplateSnippets(profile)
	if len(snippets) != 2 {
		t.Fatalf("expected 2 snippets, got %d: %v", len(snippets), snippets)
	}
	if !strings.Contains(snippets[0], "Kona Konoka") || !strings.Contains(snippets[0], "Hinatazaka46") {
		t.Fatalf("intro missing name or group: %q", snippets[0])
	}
	if !strings.Contains(snippets[1], "March 3, 2000") {
		t.Fatalf("birthday snippet missing date: %q", snippets[1])
	}
}

func TestTemplateSnippetsCapsAtFive(t *testing.T) {
	profile := &domain.MemberProfile{
		Name:       "Kona Konoka",
		NameJP:     "木野花",
		Birthday:   "March 3, 2000",
		Birthplace: "Tokyo",
		Nickname:   "Konochan",
		Height:     "158 cm",
		Zodiac:     "Pisces",
		BloodType:  "A",
		Generation: "4th",
	}

	snippets := TemplateSnippets(profile)
	if len(snippets) != 5 {
		t.Fatalf("expected 5 snippets, got %d", len(snippets))
	}
	for _, s := range snippets {
		if strings.Contains(s, "Pisces") {
			t.Fatalf("zodiac snippet should have been truncated: %v", snippets)
		}
	}
	if !strings.Contains(snippets[0], "木野花") || !strings.Contains(snippets[0], "4th") {
		t.Fatalf("intro should use localized name and generation: %q", snippets[0])
	}
}

func TestTemplateSnippetsZodiacNeedsBloodType(t *testing.T) {
	snippets := TemplateSnippets(&domain.MemberProfile{Name: "A", Zodiac: "Pisces"})
	if len(snippets) != 1 {
		t.Fatalf("zodiac alone should not produce a snippet: %v", snippets)
	}

	snippets = TemplateSnippets(&domain.MemberProfile{Name: "A", Zodiac: "Pisces", BloodType: "O"})
	if len(snippets) != 2 || !strings.Contains(snippets[1], "Pisces") || !strings.Contains(snippets[1], "O") {
		t.Fatalf("unexpected zodiac snippet: %v", snippets)
	}
}
