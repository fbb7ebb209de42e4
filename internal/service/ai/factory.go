package ai

import (
	"context"

	"go.uber.org/zap"

	"github.com/kapu/wiki-tweets-go/internal/config"
)

// BuildProviders assembles the configured providers in cascade order.
func BuildProviders(ctx context.Context, cfg *config.Config, logger *zap.Logger) []Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	gen := cfg.Generator
	if gen.TemplateOnly {
		logger.Info("Template-only mode, skipping text generation providers")
		return nil
	}

	providers := make([]Provider, 0, 6)
	add := func(name string, p Provider) {
		providers = append(providers, p)
		logger.Debug("Provider enabled", zap.String("provider", name))
	}

	if !gen.IsDisabled(ProviderScript) {
		if p := NewScriptProvider(cfg.Script, logger); p != nil {
			add(ProviderScript, p)
		}
	}

	if !gen.IsDisabled(ProviderVertex) {
		creds, err := ResolveVertexCredentials(ctx, cfg.Vertex)
		if err != nil {
			logger.Info("Vertex provider unavailable", zap.Error(err))
		} else {
			logger.Info("Vertex credentials loaded", zap.String("source", creds.Source))
			add(ProviderVertex, NewVertexProvider(creds, cfg.Vertex, logger))
		}
	}

	if !gen.IsDisabled(ProviderGemini) {
		p, err := NewGeminiProvider(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, "", logger)
		if err != nil {
			logger.Warn("Gemini provider unavailable", zap.Error(err))
		} else if p != nil {
			add(ProviderGemini, p)
		}
	}

	if !gen.IsDisabled(ProviderAnthropic) {
		if p := NewAnthropicProvider(cfg.Anthropic.APIKey, cfg.Anthropic.Model, "", logger); p != nil {
			add(ProviderAnthropic, p)
		}
	}

	if !gen.IsDisabled(ProviderOpenAI) {
		if p := NewOpenAIProvider(cfg.OpenAI.APIKey, cfg.OpenAI.Model, "", logger); p != nil {
			add(ProviderOpenAI, p)
		}
	}

	if !gen.IsDisabled(ProviderOllama) {
		add(ProviderOllama, NewOllamaProvider(cfg.Ollama, logger))
	}

	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name())
	}
	logger.Info("Text generation providers configured", zap.Strings("providers", names))

	return providers
}
