package ai

import (
	"fmt"
	"strings"

	"github.com/kapu/wiki-tweets-go/internal/constants"
	"github.com/kapu/wiki-tweets-go/internal/domain"
)

// TemplateSnippets builds snippets from whichever profile fields are set.
// The introduction is always produced.
func TemplateSnippets(profile *domain.MemberProfile) []string {
	if profile == nil {
		profile = &domain.MemberProfile{}
	}
	name := profile.DisplayName()

	var intro strings.Builder
	intro.WriteString("【メンバー紹介】")
	intro.WriteString(name)
	if profile.Group != "" {
		fmt.Fprintf(&intro, "は%sのメンバー", profile.Group)
	}
	if profile.Generation != "" {
		fmt.Fprintf(&intro, "（%s）", profile.Generation)
	}
	intro.WriteString("です！これからも応援よろしくお願いします✨")

	snippets := []string{intro.String()}

	if profile.Birthday != "" {
		snippets = append(snippets, fmt.Sprintf("🎂 %sの誕生日は%s！みんなでお祝いしましょう〜", name, profile.Birthday))
	}
	if profile.Birthplace != "" {
		snippets = append(snippets, fmt.Sprintf("📍 %sの出身地は%s。いつか訪れてみたいですね！", name, profile.Birthplace))
	}
	if profile.Nickname != "" {
		snippets = append(snippets, fmt.Sprintf("💫 知ってた？%sのニックネームは「%s」。かわいいですよね！", name, profile.Nickname))
	}
	if profile.Height != "" {
		snippets = append(snippets, fmt.Sprintf("📏 %sの身長は%s。ステージでの存在感は抜群です！", name, profile.Height))
	}
	if profile.Zodiac != "" && profile.BloodType != "" {
		snippets = append(snippets, fmt.Sprintf("⭐ %sは%s、血液型は%s型。あなたとの相性は？", name, profile.Zodiac, profile.BloodType))
	}

	if limit := constants.GeneratorConfig.MaxTemplateSnippets; len(snippets) > limit {
		snippets = snippets[:limit]
	}
	return snippets
}
