package app

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/kapu/wiki-tweets-go/internal/config"
	"github.com/kapu/wiki-tweets-go/internal/constants"
	"github.com/kapu/wiki-tweets-go/internal/prompt"
	"github.com/kapu/wiki-tweets-go/internal/server"
	"github.com/kapu/wiki-tweets-go/internal/service/ai"
	"github.com/kapu/wiki-tweets-go/internal/service/batch"
	"github.com/kapu/wiki-tweets-go/internal/service/cache"
	"github.com/kapu/wiki-tweets-go/internal/service/database"
	"github.com/kapu/wiki-tweets-go/internal/service/wiki"
)

// Container bundles the assembled services used by the CLI and the HTTP server.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	Extractor *wiki.Extractor
	Prompts   *prompt.PromptBuilder
	Cascade   *ai.Cascade
	Processor *batch.Processor

	// Optional backends. Nil when not configured or unreachable.
	Cache *cache.CacheService
	Posts *database.PostRepository

	closers []func()
}

// Build assembles every service. Redis and Postgres are optional: a failure to
// reach them is logged and the run continues without them.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	prompts := prompt.NewPromptBuilder()
	if cfg.Generator.PromptFile != "" {
		if err := prompts.LoadSnippetTemplateFile(cfg.Generator.PromptFile); err != nil {
			return nil, fmt.Errorf("failed to load prompt file: %w", err)
		}
		logger.Info("Custom prompt template loaded", zap.String("file", cfg.Generator.PromptFile))
	}

	var cascadeOpts []ai.CascadeOption
	cascadeOpts = append(cascadeOpts, ai.WithCircuitBreakers(cfg.Generator.BreakerThreshold, cfg.Generator.BreakerReset))

	var cacheSvc *cache.CacheService
	if cfg.Redis.Enabled() {
		cacheSvc, err = cache.NewCacheService(cache.CacheConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.TTL,
		}, logger)
		if err != nil {
			logger.Warn("Snippet cache unavailable, continuing without it", zap.Error(err))
			cacheSvc, err = nil, nil
		} else {
			svc := cacheSvc
			closers = append(closers, func() { _ = svc.Close() })
			cascadeOpts = append(cascadeOpts, ai.WithSnippetCache(svc))
		}
	}

	var batchOpts []batch.Option
	batchOpts = append(batchOpts,
		batch.WithExtension(cfg.Batch.Extension),
		batch.WithDefaultGroup(cfg.Batch.DefaultGroup),
	)

	var posts *database.PostRepository
	if cfg.Postgres.Enabled() {
		posts, err = buildPostRepository(ctx, cfg.Postgres, logger, &closers)
		if err != nil {
			logger.Warn("Post archive unavailable, continuing without it", zap.Error(err))
			posts, err = nil, nil
		} else {
			batchOpts = append(batchOpts, batch.WithSink(posts))
		}
	}

	providers := ai.BuildProviders(ctx, cfg, logger)
	cascade := ai.NewCascade(providers, prompts, logger, cascadeOpts...)

	extractor := wiki.NewExtractor(cfg.Batch.MaxDocumentBytes, logger)
	processor := batch.NewProcessor(extractor, cascade, logger, batchOpts...)

	return &Container{
		Config:    cfg,
		Logger:    logger,
		Extractor: extractor,
		Prompts:   prompts,
		Cascade:   cascade,
		Processor: processor,
		Cache:     cacheSvc,
		Posts:     posts,
		closers:   closers,
	}, nil
}

func buildPostRepository(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger, closers *[]func()) (*database.PostRepository, error) {
	pg, err := database.NewPostgresService(database.PostgresConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		User:     cfg.User,
		Password: cfg.Password,
		Database: cfg.Database,
	}, logger)
	if err != nil {
		return nil, err
	}

	repo := database.NewPostRepository(pg, logger)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = pg.Close()
		return nil, err
	}

	*closers = append(*closers, func() { _ = pg.Close() })
	return repo, nil
}

// NewHTTPServer wires the generation endpoints onto a server listening on addr.
func (c *Container) NewHTTPServer(addr string) *server.Server {
	if addr == "" {
		addr = c.Config.Server.Addr
	}
	return server.New(addr, c.Handler(), c.Logger)
}

// Handler exposes the HTTP handler without starting a listener.
func (c *Container) Handler() http.Handler {
	return server.NewHandler(server.Deps{
		Generator:    c.Cascade,
		Prompts:      c.Prompts,
		Logger:       c.Logger,
		MaxBodyBytes: constants.ServerConfig.MaxBodyBytes,
	})
}

// Close releases optional backends in reverse order of creation.
func (c *Container) Close() {
	if c == nil {
		return
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
