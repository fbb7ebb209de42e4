package ai

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/kapu/wiki-tweets-go/internal/constants"
	"github.com/kapu/wiki-tweets-go/pkg/errors"
)

// AnthropicProvider wraps the Anthropic messages API.
type AnthropicProvider struct {
	client *anthropic.Client
	model  string
	logger *zap.Logger
}

func NewAnthropicProvider(apiKey, model, baseURL string, logger *zap.Logger) *AnthropicProvider {
	if apiKey == "" {
		return nil
	}
	if model == "" {
		model = constants.ModelDefaults.Anthropic
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(constants.GeneratorConfig.NetworkTimeout),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	client := anthropic.NewClient(opts...)
	return &AnthropicProvider{client: &client, model: model, logger: logger}
}

func (a *AnthropicProvider) Name() string {
	return ProviderAnthropic
}

func (a *AnthropicProvider) Generate(ctx context.Context, prompt string) (ProviderResult, error) {
	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(constants.GeneratorConfig.MaxOutputTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return ProviderResult{}, errors.NewProviderError("anthropic generation failed", ProviderAnthropic, "generate", err)
	}

	var texts []string
	for _, block := range msg.Content {
		if block.Type == "text" && block.Text != "" {
			texts = append(texts, block.Text)
		}
	}
	text := strings.Join(texts, "")
	if text == "" {
		return ProviderResult{}, errors.NewProviderError("empty response from Anthropic", ProviderAnthropic, "generate", nil)
	}

	a.logger.Debug("Anthropic response received",
		zap.Int("length", len(text)),
		zap.Int64("input_tokens", msg.Usage.InputTokens),
		zap.Int64("output_tokens", msg.Usage.OutputTokens),
	)
	return ProviderResult{Text: text, Model: a.model}, nil
}
