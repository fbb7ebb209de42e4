package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/wiki-tweets-go/internal/domain"
	"github.com/kapu/wiki-tweets-go/internal/prompt"
	"github.com/kapu/wiki-tweets-go/internal/util"
)

const snippetCacheKeyPrefix = "wikitweets:snippets:"

// SnippetCache stores generated snippets. Implementations absorb their own errors.
type SnippetCache interface {
	GetSnippets(ctx context.Context, key string) ([]string, bool)
	SetSnippets(ctx context.Context, key string, snippets []string)
}

// Cascade tries each provider in order and falls back to the template
// generator, so Generate always returns at least one snippet.
type Cascade struct {
	providers []Provider
	breakers  map[string]*util.CircuitBreaker
	prompts   *prompt.PromptBuilder
	cache     SnippetCache
	logger    *zap.Logger
}

type CascadeOption func(*Cascade)

// WithSnippetCache enables snippet caching keyed by the rendered prompt.
func WithSnippetCache(cache SnippetCache) CascadeOption {
	return func(c *Cascade) {
		c.cache = cache
	}
}

// WithCircuitBreakers gates every provider behind its own breaker. A
// threshold of zero disables gating.
func WithCircuitBreakers(threshold int, reset time.Duration) CascadeOption {
	return func(c *Cascade) {
		for _, p := range c.providers {
			c.breakers[p.Name()] = util.NewCircuitBreaker(p.Name(), threshold, reset, c.logger)
		}
	}
}

func NewCascade(providers []Provider, prompts *prompt.PromptBuilder, logger *zap.Logger, opts ...CascadeOption) *Cascade {
	if logger == nil {
		logger = zap.NewNop()
	}
	if prompts == nil {
		prompts = prompt.DefaultPromptBuilder()
	}

	c := &Cascade{
		providers: providers,
		breakers:  make(map[string]*util.CircuitBreaker),
		prompts:   prompts,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ProviderNames returns the configured providers in cascade order.
func (c *Cascade) ProviderNames() []string {
	names := make([]string, 0, len(c.providers))
	for _, p := range c.providers {
		names = append(names, p.Name())
	}
	return names
}

// Generate never returns an error; backend failures fall through to the
// next provider and finally to the template generator.
func (c *Cascade) Generate(ctx context.Context, profile *domain.MemberProfile) ([]string, *GenerateMetadata) {
	if len(c.providers) == 0 {
		return c.templateResult(profile)
	}

	text, err := c.prompts.BuildSnippetPrompt(profile)
	if err != nil {
		c.logger.Warn("Failed to build snippet prompt", zap.Error(err))
		return c.templateResult(profile)
	}

	cacheKey := snippetCacheKey(text)
	if c.cache != nil {
		if cached, ok := c.cache.GetSnippets(ctx, cacheKey); ok && len(cached) > 0 {
			c.logger.Debug("Snippet cache hit", zap.String("key", cacheKey))
			return cached, &GenerateMetadata{Provider: ProviderCache, FromCache: true}
		}
	}

	_, snippets, metadata, err := c.runProviders(ctx, text)
	if err != nil {
		c.logger.Info("All providers failed, using template", zap.Error(err))
		return c.templateResult(profile)
	}

	if c.cache != nil {
		c.cache.SetSnippets(ctx, cacheKey, snippets)
	}
	return snippets, metadata
}

// GenerateFromPrompt runs only the configured providers, without template
// fallback or caching.
func (c *Cascade) GenerateFromPrompt(ctx context.Context, text string) (string, []string, *GenerateMetadata, error) {
	return c.runProviders(ctx, text)
}

func (c *Cascade) runProviders(ctx context.Context, text string) (string, []string, *GenerateMetadata, error) {
	var lastErr error
	attempted := 0

	for i, p := range c.providers {
		if err := ctx.Err(); err != nil {
			return "", nil, nil, err
		}

		name := p.Name()
		breaker := c.breakers[name]
		if !breaker.CanExecute() {
			c.logger.Debug("Provider skipped, circuit open", zap.String("provider", name))
			continue
		}

		attempted++
		c.logger.Info("Generating snippets", zap.String("provider", name))

		result, err := p.Generate(ctx, text)
		if err == nil {
			snippets := SplitSnippets(result.Text)
			if len(snippets) > 0 {
				breaker.RecordSuccess()
				return result.Text, snippets, &GenerateMetadata{
					Provider:     name,
					Model:        result.Model,
					UsedFallback: i > 0,
				}, nil
			}
			err = fmt.Errorf("%s returned no snippets", name)
		}

		breaker.RecordFailure()
		lastErr = err
		c.logger.Warn("Provider failed", zap.String("provider", name), zap.Error(err))
	}

	if lastErr == nil {
		if attempted == 0 && len(c.providers) > 0 {
			lastErr = fmt.Errorf("all providers are temporarily disabled")
		} else {
			lastErr = fmt.Errorf("no text generation provider configured")
		}
	}
	return "", nil, nil, lastErr
}

func (c *Cascade) templateResult(profile *domain.MemberProfile) ([]string, *GenerateMetadata) {
	c.logger.Info("Generating snippets", zap.String("provider", ProviderTemplate))
	return TemplateSnippets(profile), &GenerateMetadata{
		Provider:     ProviderTemplate,
		UsedFallback: true,
	}
}

func snippetCacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return snippetCacheKeyPrefix + hex.EncodeToString(sum[:])
}
