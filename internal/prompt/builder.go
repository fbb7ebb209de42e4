package prompt

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/kapu/wiki-tweets-go/internal/constants"
	"github.com/kapu/wiki-tweets-go/internal/domain"
)

//go:embed templates/*.yaml
var templateFS embed.FS

type TemplateName string

const (
	TemplateSnippetPrompt TemplateName = "snippet_prompt.yaml"
	TemplateHTMLPrompt    TemplateName = "html_prompt.yaml"
)

// HTMLPlaceholder is replaced by the uploaded page in HTML prompts.
const HTMLPlaceholder = "{html_content}"

// PromptSpec is the on-disk shape of a prompt template.
type PromptSpec struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Placeholder string `yaml:"placeholder"`
	Template    string `yaml:"template"`
}

type snippetTemplateData struct {
	ProfileJSON string
	Delimiter   string
}

type PromptBuilder struct {
	mu        sync.RWMutex
	templates map[TemplateName]*template.Template
	specs     map[TemplateName]PromptSpec
	override  *template.Template
}

var (
	defaultBuilderOnce sync.Once
	defaultBuilder     *PromptBuilder
)

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{
		templates: make(map[TemplateName]*template.Template),
		specs:     make(map[TemplateName]PromptSpec),
	}
}

func DefaultPromptBuilder() *PromptBuilder {
	defaultBuilderOnce.Do(func() {
		defaultBuilder = NewPromptBuilder()
	})
	return defaultBuilder
}

// LoadSnippetTemplateFile replaces the embedded snippet template. The file may
// be a YAML prompt spec or a plain text/template body.
func (pb *PromptBuilder) LoadSnippetTemplateFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read prompt file %s: %w", path, err)
	}

	body := string(content)
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		spec, err := parseSpec(content)
		if err != nil {
			return fmt.Errorf("parse prompt file %s: %w", path, err)
		}
		body = spec.Template
	}
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("prompt file %s has no template", path)
	}

	tmpl, err := template.New(filepath.Base(path)).Parse(body)
	if err != nil {
		return fmt.Errorf("parse prompt template %s: %w", path, err)
	}

	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.override = tmpl
	return nil
}

// BuildSnippetPrompt renders the instructions followed by an indented JSON
// dump of the profile.
func (pb *PromptBuilder) BuildSnippetPrompt(profile *domain.MemberProfile) (string, error) {
	var dump bytes.Buffer
	enc := json.NewEncoder(&dump)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(profile); err != nil {
		return "", fmt.Errorf("encode profile: %w", err)
	}

	data := snippetTemplateData{
		ProfileJSON: strings.TrimRight(dump.String(), "\n"),
		Delimiter:   constants.GeneratorConfig.SnippetDelimiter,
	}

	pb.mu.RLock()
	override := pb.override
	pb.mu.RUnlock()
	if override != nil {
		return execute(override, data)
	}

	return pb.Render(TemplateSnippetPrompt, data)
}

// BuildHTMLPrompt substitutes the page into custom, or into the embedded
// HTML prompt when custom is blank.
func (pb *PromptBuilder) BuildHTMLPrompt(custom, htmlContent string) (string, error) {
	body := custom
	placeholder := HTMLPlaceholder
	if strings.TrimSpace(body) == "" {
		spec, err := pb.getSpec(TemplateHTMLPrompt)
		if err != nil {
			return "", err
		}
		body = spec.Template
		if spec.Placeholder != "" {
			placeholder = spec.Placeholder
		}
	}

	if !strings.Contains(body, placeholder) {
		return body + "\n\n" + htmlContent, nil
	}
	return strings.Replace(body, placeholder, htmlContent, 1), nil
}

// DefaultHTMLPrompt returns the embedded HTML prompt with its placeholder intact.
func (pb *PromptBuilder) DefaultHTMLPrompt() (string, error) {
	spec, err := pb.getSpec(TemplateHTMLPrompt)
	if err != nil {
		return "", err
	}
	return spec.Template, nil
}

func (pb *PromptBuilder) Render(name TemplateName, data any) (string, error) {
	tmpl, err := pb.getTemplate(name)
	if err != nil {
		return "", err
	}

	out, err := execute(tmpl, data)
	if err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	return out, nil
}

func (pb *PromptBuilder) getTemplate(name TemplateName) (*template.Template, error) {
	pb.mu.RLock()
	if tmpl, ok := pb.templates[name]; ok {
		pb.mu.RUnlock()
		return tmpl, nil
	}
	pb.mu.RUnlock()

	spec, err := pb.getSpec(name)
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New(string(name)).Parse(spec.Template)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template %s: %w", name, err)
	}

	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.templates[name] = tmpl

	return tmpl, nil
}

func (pb *PromptBuilder) getSpec(name TemplateName) (PromptSpec, error) {
	pb.mu.RLock()
	if spec, ok := pb.specs[name]; ok {
		pb.mu.RUnlock()
		return spec, nil
	}
	pb.mu.RUnlock()

	filename := filepath.ToSlash(filepath.Join("templates", string(name)))
	content, err := templateFS.ReadFile(filename)
	if err != nil {
		return PromptSpec{}, fmt.Errorf("load prompt template %s: %w", name, err)
	}

	spec, err := parseSpec(content)
	if err != nil {
		return PromptSpec{}, fmt.Errorf("parse prompt spec %s: %w", name, err)
	}

	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.specs[name] = spec

	return spec, nil
}

func parseSpec(content []byte) (PromptSpec, error) {
	var spec PromptSpec
	if err := yaml.Unmarshal(content, &spec); err != nil {
		return PromptSpec{}, err
	}
	if strings.TrimSpace(spec.Template) == "" {
		return PromptSpec{}, fmt.Errorf("empty template")
	}
	return spec, nil
}

func execute(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
