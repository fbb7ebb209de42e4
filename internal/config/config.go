package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kapu/wiki-tweets-go/internal/constants"
	"github.com/kapu/wiki-tweets-go/pkg/errors"
)

type Config struct {
	Batch     BatchConfig
	Generator GeneratorConfig
	Script    ScriptConfig
	Vertex    VertexConfig
	Gemini    GeminiConfig
	Anthropic AnthropicConfig
	OpenAI    OpenAIConfig
	Ollama    OllamaConfig
	Redis     RedisConfig
	Postgres  PostgresConfig
	Server    ServerConfig
	Logging   LoggingConfig
}

type BatchConfig struct {
	OutputFile       string
	Extension        string
	DefaultGroup     string
	MaxDocumentBytes int64
}

type GeneratorConfig struct {
	Disabled         []string
	TemplateOnly     bool
	PromptFile       string
	BreakerThreshold int
	BreakerReset     time.Duration
}

// ScriptConfig points at the external helper script. An empty Dir disables it.
type ScriptConfig struct {
	Dir     string
	Command string
	Entry   string
}

// VertexConfig holds the Vertex AI REST settings. ProjectID, ClientEmail and
// PrivateKey together form an inline service account that takes precedence
// over credential files.
type VertexConfig struct {
	CredentialsFile string
	ProjectID       string
	ClientEmail     string
	PrivateKey      string
	Location        string
	Models          []string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

type OpenAIConfig struct {
	APIKey string
	Model  string
}

type OllamaConfig struct {
	Bin   string
	Model string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type ServerConfig struct {
	Addr string
}

type LoggingConfig struct {
	Level string
	File  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Batch: BatchConfig{
			OutputFile:       getEnv("BATCH_OUTPUT_FILE", constants.BatchConfig.DefaultOutputFile),
			Extension:        getEnv("BATCH_EXTENSION", constants.BatchConfig.DefaultExtension),
			DefaultGroup:     getEnv("BATCH_DEFAULT_GROUP", constants.BatchConfig.DefaultGroup),
			MaxDocumentBytes: getEnvInt64("BATCH_MAX_DOCUMENT_BYTES", constants.BatchConfig.MaxDocumentBytes),
		},
		Generator: GeneratorConfig{
			Disabled:         parseCommaSeparated(strings.ToLower(getEnv("GENERATOR_DISABLE", ""))),
			TemplateOnly:     getEnvBool("GENERATOR_TEMPLATE_ONLY", false),
			PromptFile:       getEnv("GENERATOR_PROMPT_FILE", ""),
			BreakerThreshold: getEnvInt("GENERATOR_BREAKER_THRESHOLD", constants.CircuitBreakerConfig.FailureThreshold),
			BreakerReset:     getEnvDuration("GENERATOR_BREAKER_RESET", constants.CircuitBreakerConfig.ResetTimeout),
		},
		Script: ScriptConfig{
			Dir:     getEnv("SCRIPT_DIR", ""),
			Command: getEnv("SCRIPT_COMMAND", "node"),
			Entry:   getEnv("SCRIPT_ENTRY", "index.js"),
		},
		Vertex: VertexConfig{
			CredentialsFile: getEnv("VERTEX_CREDENTIALS_FILE", ""),
			ProjectID:       getEnv("GOOGLE_PROJECT_ID", getEnv("VERTEX_PROJECT_ID", "")),
			ClientEmail:     getEnv("GOOGLE_CLIENT_EMAIL", ""),
			PrivateKey:      getEnv("GOOGLE_PRIVATE_KEY", ""),
			Location:        getEnv("VERTEX_LOCATION", constants.VertexConfig.Location),
			Models:          parseCommaSeparated(getEnv("VERTEX_MODELS", strings.Join(constants.VertexConfig.Models, ","))),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", constants.ModelDefaults.Gemini),
		},
		Anthropic: AnthropicConfig{
			APIKey: getEnv("ANTHROPIC_API_KEY", ""),
			Model:  getEnv("ANTHROPIC_MODEL", constants.ModelDefaults.Anthropic),
		},
		OpenAI: OpenAIConfig{
			APIKey: getEnv("OPENAI_API_KEY", ""),
			Model:  getEnv("OPENAI_MODEL", constants.ModelDefaults.OpenAI),
		},
		Ollama: OllamaConfig{
			Bin:   getEnv("OLLAMA_BIN", "ollama"),
			Model: getEnv("OLLAMA_MODEL", constants.ModelDefaults.Ollama),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      getEnvDuration("CACHE_TTL", constants.CacheTTL.Snippets),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", ""),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "wikitweets"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Database: getEnv("POSTGRES_DB", "wikitweets"),
		},
		Server: ServerConfig{
			Addr: getEnv("SERVER_ADDR", constants.ServerConfig.DefaultAddr),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Batch.Extension) == "" {
		return errors.NewValidationError("BATCH_EXTENSION must not be empty", "BATCH_EXTENSION", c.Batch.Extension)
	}
	if !strings.HasPrefix(c.Batch.Extension, ".") {
		c.Batch.Extension = "." + c.Batch.Extension
	}
	if c.Batch.OutputFile == "" {
		return errors.NewValidationError("BATCH_OUTPUT_FILE must not be empty", "BATCH_OUTPUT_FILE", c.Batch.OutputFile)
	}
	if c.Batch.MaxDocumentBytes <= 0 {
		return errors.NewValidationError("BATCH_MAX_DOCUMENT_BYTES must be positive", "BATCH_MAX_DOCUMENT_BYTES", c.Batch.MaxDocumentBytes)
	}
	if c.Generator.BreakerThreshold < 0 {
		return errors.NewValidationError("GENERATOR_BREAKER_THRESHOLD must not be negative", "GENERATOR_BREAKER_THRESHOLD", c.Generator.BreakerThreshold)
	}
	if c.Generator.BreakerReset < 0 {
		return errors.NewValidationError("GENERATOR_BREAKER_RESET must not be negative", "GENERATOR_BREAKER_RESET", c.Generator.BreakerReset)
	}
	if c.Redis.Enabled() && (c.Redis.Port <= 0 || c.Redis.Port > 65535) {
		return errors.NewValidationError("REDIS_PORT out of range", "REDIS_PORT", c.Redis.Port)
	}
	if c.Postgres.Enabled() && (c.Postgres.Port <= 0 || c.Postgres.Port > 65535) {
		return errors.NewValidationError("POSTGRES_PORT out of range", "POSTGRES_PORT", c.Postgres.Port)
	}
	return nil
}

// HasInlineCredentials reports whether a service account was supplied through
// the environment instead of a credential file.
func (v VertexConfig) HasInlineCredentials() bool {
	return v.ProjectID != "" && v.ClientEmail != "" && v.PrivateKey != ""
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.Host) != ""
}

func (p PostgresConfig) Enabled() bool {
	return strings.TrimSpace(p.Host) != ""
}

// IsDisabled reports whether a provider was switched off via GENERATOR_DISABLE.
func (g GeneratorConfig) IsDisabled(provider string) bool {
	name := strings.ToLower(strings.TrimSpace(provider))
	for _, disabled := range g.Disabled {
		if disabled == name || disabled == "all" {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func parseCommaSeparated(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
