package ai

import "context"

// Provider names, also accepted by GENERATOR_DISABLE.
const (
	ProviderScript    = "script"
	ProviderVertex    = "vertex"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderOllama    = "ollama"
	ProviderTemplate  = "template"
	ProviderCache     = "cache"
)

// Provider is one text generation backend of the cascade.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (ProviderResult, error)
}

type ProviderResult struct {
	Text  string
	Model string
}

// GenerateMetadata contains metadata about the generation
type GenerateMetadata struct {
	Provider     string
	Model        string
	UsedFallback bool
	FromCache    bool
}
