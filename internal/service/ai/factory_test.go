package ai

import (
	"context"
	"strings"
	"testing"

	"github.com/kapu/wiki-tweets-go/internal/config"
)

func TestBuildProvidersRespectsConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := &config.Config{
		Script:    config.ScriptConfig{Dir: t.TempDir(), Command: "sh", Entry: "gen.sh"},
		OpenAI:    config.OpenAIConfig{APIKey: "sk-test"},
		Anthropic: config.AnthropicConfig{APIKey: "ak-test"},
		Generator: config.GeneratorConfig{Disabled: []string{"anthropic"}},
	}

	names := make([]string, 0)
	for _, p := range BuildProviders(context.Background(), cfg, nil) {
		names = append(names, p.Name())
	}
	if got := strings.Join(names, ","); got != "script,openai,ollama" {
		t.Fatalf("providers = %s", got)
	}
}

func TestBuildProvidersTemplateOnly(t *testing.T) {
	cfg := &config.Config{
		OpenAI:    config.OpenAIConfig{APIKey: "sk-test"},
		Generator: config.GeneratorConfig{TemplateOnly: true},
	}
	if providers := BuildProviders(context.Background(), cfg, nil); len(providers) != 0 {
		t.Fatalf("template-only mode should configure no providers, got %d", len(providers))
	}
}

func TestBuildProvidersDisableAll(t *testing.T) {
	cfg := &config.Config{
		OpenAI:    config.OpenAIConfig{APIKey: "sk-test"},
		Generator: config.GeneratorConfig{Disabled: []string{"all"}},
	}
	if providers := BuildProviders(context.Background(), cfg, nil); len(providers) != 0 {
		t.Fatalf("expected no providers, got %d", len(providers))
	}
}
