package ai

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/wiki-tweets-go/internal/config"
	"github.com/kapu/wiki-tweets-go/internal/constants"
	"github.com/kapu/wiki-tweets-go/pkg/errors"
)

// ScriptProvider delegates generation to an external helper script that
// prints snippets to stdout.
type ScriptProvider struct {
	dir     string
	command string
	entry   string
	timeout time.Duration
	logger  *zap.Logger
}

func NewScriptProvider(cfg config.ScriptConfig, logger *zap.Logger) *ScriptProvider {
	if cfg.Dir == "" {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScriptProvider{
		dir:     cfg.Dir,
		command: cfg.Command,
		entry:   cfg.Entry,
		timeout: constants.GeneratorConfig.ProcessTimeout,
		logger:  logger,
	}
}

func (s *ScriptProvider) Name() string {
	return ProviderScript
}

func (s *ScriptProvider) Generate(ctx context.Context, prompt string) (ProviderResult, error) {
	if info, err := os.Stat(s.dir); err != nil || !info.IsDir() {
		return ProviderResult{}, errors.NewProviderError(
			fmt.Sprintf("script directory %s not found", s.dir), ProviderScript, "stat", err)
	}

	entry := s.entry
	if !filepath.IsAbs(entry) {
		entry = filepath.Join(s.dir, entry)
	}
	if _, err := os.Stat(entry); err != nil {
		return ProviderResult{}, errors.NewProviderError("script entry not found", ProviderScript, "stat", err)
	}

	s.logger.Debug("Running generator script",
		zap.String("dir", s.dir),
		zap.String("command", s.command),
		zap.String("entry", s.entry),
	)

	out, err := runProcess(ctx, s.dir, s.command, []string{s.entry, prompt}, s.timeout)
	if err != nil {
		return ProviderResult{}, errors.NewProviderError("script generation failed", ProviderScript, "run", err)
	}
	return ProviderResult{Text: out, Model: s.entry}, nil
}

// OllamaProvider runs a local model through the ollama CLI.
type OllamaProvider struct {
	bin     string
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

func NewOllamaProvider(cfg config.OllamaConfig, logger *zap.Logger) *OllamaProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	bin := cfg.Bin
	if bin == "" {
		bin = "ollama"
	}
	model := cfg.Model
	if model == "" {
		model = constants.ModelDefaults.Ollama
	}
	return &OllamaProvider{
		bin:     bin,
		model:   model,
		timeout: constants.GeneratorConfig.ProcessTimeout,
		logger:  logger,
	}
}

func (o *OllamaProvider) Name() string {
	return ProviderOllama
}

func (o *OllamaProvider) Generate(ctx context.Context, prompt string) (ProviderResult, error) {
	bin, err := exec.LookPath(o.bin)
	if err != nil {
		return ProviderResult{}, errors.NewProviderError("ollama executable not found", ProviderOllama, "lookup", err)
	}

	o.logger.Debug("Running local model", zap.String("bin", bin), zap.String("model", o.model))

	out, err := runProcess(ctx, "", bin, []string{"run", o.model, prompt}, o.timeout)
	if err != nil {
		return ProviderResult{}, errors.NewProviderError("local model generation failed", ProviderOllama, "run", err)
	}
	return ProviderResult{Text: out, Model: o.model}, nil
}
