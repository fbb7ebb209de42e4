package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"

	"github.com/kapu/wiki-tweets-go/internal/config"
	"github.com/kapu/wiki-tweets-go/internal/constants"
	"github.com/kapu/wiki-tweets-go/pkg/errors"
)

const (
	defaultCredentialFile = "credential.json"
	gcloudADCPath         = ".config/gcloud/application_default_credentials.json"
	googleTokenURI        = "https://oauth2.googleapis.com/token"
)

// VertexCredentials is a resolved credential source.
type VertexCredentials struct {
	ProjectID   string
	TokenSource oauth2.TokenSource
	Source      string
}

// CredentialCandidates lists credential files in lookup order.
func CredentialCandidates(cfg config.VertexConfig) []string {
	candidates := make([]string, 0, 3)
	if cfg.CredentialsFile != "" {
		candidates = append(candidates, cfg.CredentialsFile)
	}
	candidates = append(candidates, defaultCredentialFile)
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, gcloudADCPath))
	}
	return candidates
}

// ResolveVertexCredentials uses the inline service account when configured,
// otherwise the first candidate file that exists. Later candidates are not
// consulted when the first one found is unusable.
func ResolveVertexCredentials(ctx context.Context, cfg config.VertexConfig) (*VertexCredentials, error) {
	if cfg.HasInlineCredentials() {
		data, err := inlineServiceAccountJSON(cfg)
		if err != nil {
			return nil, err
		}
		return credentialsFromJSON(ctx, data, cfg.ProjectID, "environment")
	}

	for _, path := range CredentialCandidates(cfg) {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.NewProviderError("read credential file", ProviderVertex, "credentials", err)
		}
		return credentialsFromJSON(ctx, data, cfg.ProjectID, path)
	}

	return nil, errors.NewProviderError("no Vertex credentials found", ProviderVertex, "credentials", nil)
}

func inlineServiceAccountJSON(cfg config.VertexConfig) ([]byte, error) {
	account := map[string]string{
		"type":         "service_account",
		"project_id":   cfg.ProjectID,
		"client_email": cfg.ClientEmail,
		"private_key":  strings.ReplaceAll(cfg.PrivateKey, `\n`, "\n"),
		"token_uri":    googleTokenURI,
	}
	data, err := json.Marshal(account)
	if err != nil {
		return nil, errors.NewProviderError("encode inline credentials", ProviderVertex, "credentials", err)
	}
	return data, nil
}

func credentialsFromJSON(ctx context.Context, data []byte, projectOverride, source string) (*VertexCredentials, error) {
	creds, err := google.CredentialsFromJSON(ctx, data, constants.VertexConfig.Scope)
	if err != nil {
		return nil, errors.NewProviderError("parse credentials from "+source, ProviderVertex, "credentials", err)
	}

	projectID := creds.ProjectID
	if projectOverride != "" {
		projectID = projectOverride
	}
	if projectID == "" {
		return nil, errors.NewProviderError("credentials from "+source+" carry no project id", ProviderVertex, "credentials", nil)
	}

	return &VertexCredentials{
		ProjectID:   projectID,
		TokenSource: creds.TokenSource,
		Source:      source,
	}, nil
}

// VertexProvider calls the Vertex AI generateContent REST endpoint, trying
// each configured model until one answers with HTTP 200.
type VertexProvider struct {
	projectID   string
	location    string
	models      []string
	tokenSource oauth2.TokenSource
	baseURL     string
	httpClient  *http.Client
	timeout     time.Duration
	logger      *zap.Logger
}

type vertexGenerationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float32 `json:"temperature"`
}

type vertexRequest struct {
	Contents         []*genai.Content       `json:"contents"`
	GenerationConfig vertexGenerationConfig `json:"generationConfig"`
}

func NewVertexProvider(creds *VertexCredentials, cfg config.VertexConfig, logger *zap.Logger) *VertexProvider {
	location := cfg.Location
	if location == "" {
		location = constants.VertexConfig.Location
	}
	models := cfg.Models
	if len(models) == 0 {
		models = constants.VertexConfig.Models
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &VertexProvider{
		projectID:   creds.ProjectID,
		location:    location,
		models:      models,
		tokenSource: creds.TokenSource,
		baseURL:     fmt.Sprintf("https://%s-aiplatform.googleapis.com", location),
		httpClient:  &http.Client{},
		timeout:     constants.GeneratorConfig.NetworkTimeout,
		logger:      logger,
	}
}

func (v *VertexProvider) Name() string {
	return ProviderVertex
}

func (v *VertexProvider) Generate(ctx context.Context, prompt string) (ProviderResult, error) {
	token, err := v.tokenSource.Token()
	if err != nil {
		return ProviderResult{}, errors.NewProviderError("obtain access token", ProviderVertex, "token", err)
	}

	body, err := json.Marshal(vertexRequest{
		Contents: []*genai.Content{
			{Role: "user", Parts: []*genai.Part{{Text: prompt}}},
		},
		GenerationConfig: vertexGenerationConfig{
			MaxOutputTokens: constants.GeneratorConfig.MaxOutputTokens,
			Temperature:     constants.GeneratorConfig.Temperature,
		},
	})
	if err != nil {
		return ProviderResult{}, errors.NewProviderError("encode request", ProviderVertex, "encode", err)
	}

	var lastErr error
	for _, model := range v.models {
		text, err := v.generateWithModel(ctx, model, token.AccessToken, body)
		if err == nil {
			return ProviderResult{Text: text, Model: model}, nil
		}
		lastErr = err
		v.logger.Debug("Vertex model failed", zap.String("model", model), zap.Error(err))
	}

	return ProviderResult{}, errors.NewProviderError("all Vertex models failed", ProviderVertex, "generate", lastErr)
}

func (v *VertexProvider) generateWithModel(ctx context.Context, model, accessToken string, body []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/v1/projects/%s/locations/%s/publishers/google/models/%s:generateContent",
		v.baseURL, v.projectID, v.location, model)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := googleapi.CheckResponse(resp); err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var parsed genai.GenerateContentResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	text := extractTextFromGeminiResponse(&parsed)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty response from %s", model)
	}
	return text, nil
}
