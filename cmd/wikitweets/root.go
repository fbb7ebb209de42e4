package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kapu/wiki-tweets-go/internal/app"
	"github.com/kapu/wiki-tweets-go/internal/config"
	"github.com/kapu/wiki-tweets-go/internal/constants"
	"github.com/kapu/wiki-tweets-go/internal/domain"
	"github.com/kapu/wiki-tweets-go/internal/util"
)

const buildTimeout = 30 * time.Second

type rootOptions struct {
	output       string
	single       string
	preview      bool
	templateOnly bool
	apiKey       string
	promptFile   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "wikitweets [dir]",
		Short: "Turn fan-wiki member pages into short social media posts",
		Long: `Turn fan-wiki member pages into short social media posts.

Every page with the configured extension under dir (default ".") is parsed
into a member profile, handed to the first working text generator, and the
resulting posts are written as one JSON array.

Examples:
  wikitweets ./pages
  wikitweets ./pages -o posts.json --template-only
  wikitweets --single ./pages/kosaka-nao.html
  wikitweets ./pages --preview`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			return runRoot(cmd, opts, root)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.output, "output", "o", constants.BatchConfig.DefaultOutputFile, "output file name, relative to dir unless absolute")
	flags.StringVar(&opts.single, "single", "", "process a single page and print the result")
	flags.BoolVar(&opts.preview, "preview", false, "only parse pages, do not generate posts")
	flags.BoolVar(&opts.templateOnly, "template-only", false, "skip all text generators and use the built-in templates")
	flags.StringVar(&opts.apiKey, "api-key", "", "Anthropic API key (overrides ANTHROPIC_API_KEY)")
	flags.StringVar(&opts.promptFile, "prompt-file", "", "custom snippet prompt template (YAML or text/template)")

	cmd.AddCommand(newServeCmd())
	return cmd
}

// setup loads configuration, applies flag overrides, and assembles services.
func setup(opts *rootOptions) (*app.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts != nil {
		applyOverrides(cfg, opts)
	}

	logger, err := util.NewLogger(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), buildTimeout)
	defer cancel()

	container, err := app.Build(ctx, cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("failed to assemble services: %w", err)
	}
	return container, nil
}

func applyOverrides(cfg *config.Config, opts *rootOptions) {
	if opts.templateOnly {
		cfg.Generator.TemplateOnly = true
	}
	if opts.apiKey != "" {
		cfg.Anthropic.APIKey = opts.apiKey
	}
	if opts.promptFile != "" {
		cfg.Generator.PromptFile = opts.promptFile
	}
	if opts.output != "" {
		cfg.Batch.OutputFile = opts.output
	}
}

func runRoot(cmd *cobra.Command, opts *rootOptions, root string) error {
	container, err := setup(opts)
	if err != nil {
		return err
	}
	defer container.Close()
	defer func() { _ = container.Logger.Sync() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	switch {
	case opts.single != "":
		return runSingle(ctx, out, container, opts.single, opts.preview)
	case opts.preview:
		return runPreview(ctx, out, container, root)
	default:
		return runBatch(ctx, out, container, root)
	}
}

func runSingle(ctx context.Context, out io.Writer, container *app.Container, file string, previewOnly bool) error {
	if previewOnly {
		profile, err := container.Extractor.Extract(file)
		if err != nil {
			printError(out, "%s: %v", file, err)
			return nil
		}
		printProfile(out, file, profile.Fields())
		return nil
	}

	profile, snippets, meta, err := container.Processor.ProcessFile(ctx, file)
	if err != nil {
		printError(out, "%s: %v", file, err)
		return nil
	}
	printProfile(out, file, profile.Fields())
	if !profile.HasName() {
		printWarning(out, "no member name found, nothing to generate")
		return nil
	}

	provider := "unknown"
	if meta != nil {
		provider = meta.Provider
	}
	printStep(out, "Generated %d posts via %s", len(snippets), provider)
	for i, snippet := range snippets {
		fmt.Fprintf(out, "\n%s\n%s\n", colorize(colorBold, fmt.Sprintf("[%d]", i+1)), snippet)
	}
	return nil
}

func printProfile(out io.Writer, file string, fields []domain.ProfileField) {
	printStep(out, "%s", filepath.Base(file))
	if len(fields) == 0 {
		printWarning(out, "no profile fields found")
		return
	}
	for _, f := range fields {
		printStatus(out, f.Label, "%s", f.Value)
	}
}

func runPreview(ctx context.Context, out io.Writer, container *app.Container, root string) error {
	result, err := container.Processor.Preview(ctx, root, constants.BatchConfig.PreviewLimit)
	if err != nil {
		return err
	}
	if result.Total == 0 {
		printWarning(out, "no %s files found in %s", container.Config.Batch.Extension, root)
		return nil
	}

	printStep(out, "%d pages found in %s", result.Total, root)
	for _, entry := range result.Entries {
		name := filepath.Base(entry.Path)
		if entry.Err != nil {
			printError(out, "%s: %v", name, entry.Err)
			continue
		}
		p := entry.Profile
		fmt.Fprintf(out, "  %s  %s / %s / %s\n", name, orDash(p.Name), orDash(p.NameJP), orDash(p.Birthday))
	}
	if more := result.Total - len(result.Entries); more > 0 {
		fmt.Fprintf(out, "  ... %d more\n", more)
	}
	return nil
}

func runBatch(ctx context.Context, out io.Writer, container *app.Container, root string) error {
	result, err := container.Processor.RunDetailed(ctx, root, container.Config.Batch.OutputFile)
	if result != nil && result.OutputPath != "" {
		printSuccess(out, "%d posts written to %s", len(result.Posts), result.OutputPath)
		printStatus(out, "Documents", "%d", result.Documents)
		printStatus(out, "Skipped", "%d", result.Skipped)
		printStatus(out, "Failed", "%d", result.Failed)
		printStatus(out, "Run", "%s", result.RunID)
	} else if result != nil && err == nil {
		printWarning(out, "no %s files found in %s", container.Config.Batch.Extension, root)
	}
	if err != nil {
		container.Logger.Error("Batch failed", zap.Error(err))
		return err
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
