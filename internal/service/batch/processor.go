package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kapu/wiki-tweets-go/internal/constants"
	"github.com/kapu/wiki-tweets-go/internal/domain"
	"github.com/kapu/wiki-tweets-go/internal/service/ai"
	"github.com/kapu/wiki-tweets-go/internal/util"
)

type ProfileExtractor interface {
	Extract(path string) (*domain.MemberProfile, error)
}

type SnippetGenerator interface {
	Generate(ctx context.Context, profile *domain.MemberProfile) ([]string, *ai.GenerateMetadata)
}

// PostSink receives the posts of a completed run.
type PostSink interface {
	SavePosts(ctx context.Context, runID string, posts []domain.Post) error
}

// RunResult summarizes one batch run.
type RunResult struct {
	RunID      string
	Posts      []domain.Post
	Documents  int
	Skipped    int
	Failed     int
	OutputPath string
}

// Processor converts a folder of wiki pages into one JSON file of posts.
// Documents are processed sequentially.
type Processor struct {
	extractor    ProfileExtractor
	generator    SnippetGenerator
	sink         PostSink
	extension    string
	defaultGroup string
	logger       *zap.Logger
}

type Option func(*Processor)

func WithSink(sink PostSink) Option {
	return func(p *Processor) {
		p.sink = sink
	}
}

func WithExtension(ext string) Option {
	return func(p *Processor) {
		if ext == "" {
			return
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		p.extension = ext
	}
}

func WithDefaultGroup(group string) Option {
	return func(p *Processor) {
		if group != "" {
			p.defaultGroup = group
		}
	}
}

func NewProcessor(extractor ProfileExtractor, generator SnippetGenerator, logger *zap.Logger, opts ...Option) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Processor{
		extractor:    extractor,
		generator:    generator,
		extension:    constants.BatchConfig.DefaultExtension,
		defaultGroup: constants.BatchConfig.DefaultGroup,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ListDocuments returns matching files under root in lexical walk order.
// Only a failure to read root itself is returned as an error.
func (p *Processor) ListDocuments(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			p.logger.Warn("Skipping unreadable path", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), p.extension) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate %s: %w", root, err)
	}
	return files, nil
}

// Run processes every document under root and writes the posts to
// <root>/<outputName>.
func (p *Processor) Run(ctx context.Context, root, outputName string) ([]domain.Post, error) {
	result, err := p.RunDetailed(ctx, root, outputName)
	if result == nil {
		return nil, err
	}
	return result.Posts, err
}

func (p *Processor) RunDetailed(ctx context.Context, root, outputName string) (*RunResult, error) {
	files, err := p.ListDocuments(root)
	if err != nil {
		return nil, err
	}

	result := &RunResult{
		RunID: uuid.NewString(),
		Posts: []domain.Post{},
	}

	if len(files) == 0 {
		p.logger.Warn("No documents found", zap.String("root", root), zap.String("extension", p.extension))
		return result, nil
	}

	p.logger.Info("Documents found",
		zap.String("root", root),
		zap.Int("count", len(files)),
		zap.String("run_id", result.RunID),
	)

	counter := domain.NewPostCounter()
	var runErr error

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("Batch interrupted", zap.Int("processed", result.Documents), zap.Error(err))
			runErr = err
			break
		}

		result.Documents++
		posts, skipped, err := p.processDocument(ctx, file, counter, result.Posts)
		switch {
		case err != nil:
			result.Failed++
			p.logger.Error("Document failed", zap.String("file", file), zap.Error(err))
		case skipped:
			result.Skipped++
		default:
			result.Posts = posts
		}
	}

	if outputName == "" {
		outputName = constants.BatchConfig.DefaultOutputFile
	}
	result.OutputPath = outputName
	if !filepath.IsAbs(outputName) {
		result.OutputPath = filepath.Join(root, outputName)
	}

	if err := WritePosts(result.OutputPath, result.Posts); err != nil {
		return result, err
	}

	if p.sink != nil && len(result.Posts) > 0 {
		if err := p.sink.SavePosts(ctx, result.RunID, result.Posts); err != nil {
			p.logger.Error("Failed to persist posts", zap.String("run_id", result.RunID), zap.Error(err))
		}
	}

	p.logger.Info("Batch completed",
		zap.String("output", result.OutputPath),
		zap.Int("documents", result.Documents),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
		zap.Int("posts", len(result.Posts)),
	)

	return result, runErr
}

// processDocument recovers from panics so a single bad document cannot abort
// the batch. posts is only meaningful when err is nil and skipped is false.
func (p *Processor) processDocument(ctx context.Context, file string, counter *domain.PostCounter, posts []domain.Post) (out []domain.Post, skipped bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing %s: %v", file, r)
		}
	}()

	p.logger.Info("Processing document", zap.String("file", filepath.Base(file)))

	profile, err := p.extractor.Extract(file)
	if err != nil {
		return nil, false, err
	}
	if !profile.HasName() {
		p.logger.Info("Skipping document without a name", zap.String("file", file))
		return nil, true, nil
	}

	p.logger.Info("Member extracted",
		zap.String("name", profile.Name),
		zap.String("name_jp", profile.NameJP),
		zap.String("group", profile.Group),
	)

	snippets, meta := p.generator.Generate(ctx, profile)

	group := profile.Group
	if group == "" {
		group = p.defaultGroup
	}

	fields := []zap.Field{zap.String("name", profile.Name), zap.Int("snippets", len(snippets))}
	if meta != nil {
		fields = append(fields, zap.String("provider", meta.Provider), zap.Bool("from_cache", meta.FromCache))
	}
	p.logger.Info("Snippets generated", fields...)

	return counter.Append(posts, group, snippets), false, nil
}

// ProcessFile extracts and generates for a single document without writing output.
func (p *Processor) ProcessFile(ctx context.Context, file string) (*domain.MemberProfile, []string, *ai.GenerateMetadata, error) {
	profile, err := p.extractor.Extract(file)
	if err != nil {
		return nil, nil, nil, err
	}
	if !profile.HasName() {
		return profile, nil, nil, nil
	}
	snippets, meta := p.generator.Generate(ctx, profile)
	return profile, snippets, meta, nil
}

// PreviewEntry is one parsed document of a preview.
type PreviewEntry struct {
	Path    string
	Profile *domain.MemberProfile
	Err     error
}

type PreviewResult struct {
	Total   int
	Entries []PreviewEntry
}

// Preview parses at most limit documents without generating anything.
func (p *Processor) Preview(ctx context.Context, root string, limit int) (*PreviewResult, error) {
	files, err := p.ListDocuments(root)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = constants.BatchConfig.PreviewLimit
	}

	result := &PreviewResult{Total: len(files)}
	for i, file := range files {
		if i >= limit || ctx.Err() != nil {
			break
		}
		profile, err := p.extractor.Extract(file)
		result.Entries = append(result.Entries, PreviewEntry{Path: file, Profile: profile, Err: err})
	}
	return result, nil
}

// WritePosts writes posts as an indented JSON array, keeping Unicode and
// HTML characters unescaped.
func WritePosts(path string, posts []domain.Post) error {
	if posts == nil {
		posts = []domain.Post{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(posts); err != nil {
		return fmt.Errorf("failed to encode posts: %w", err)
	}

	if err := util.WriteFileAtomic(path, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
