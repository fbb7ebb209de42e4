package constants

import "time"

var GeneratorConfig = struct {
	SnippetDelimiter    string
	MaxTemplateSnippets int
	ProcessTimeout      time.Duration
	NetworkTimeout      time.Duration
	MaxOutputTokens     int
	Temperature         float32
	StderrPreviewRunes  int
}{
	SnippetDelimiter:    "---",
	MaxTemplateSnippets: 5,
	ProcessTimeout:      120 * time.Second, // script / local model process
	NetworkTimeout:      60 * time.Second,  // per HTTP attempt
	MaxOutputTokens:     1024,
	Temperature:         0.8,
	StderrPreviewRunes:  200,
}

var BatchConfig = struct {
	DefaultOutputFile string
	DefaultExtension  string
	DefaultGroup      string
	PreviewLimit      int
	MaxDocumentBytes  int64
}{
	DefaultOutputFile: "tweets_output.json",
	DefaultExtension:  ".html",
	DefaultGroup:      "Hinatazaka46",
	PreviewLimit:      5,
	MaxDocumentBytes:  20 << 20, // 20 MiB
}

var CircuitBreakerConfig = struct {
	FailureThreshold int
	ResetTimeout     time.Duration
}{
	FailureThreshold: 3,               // 3 consecutive failures skip the backend
	ResetTimeout:     5 * time.Minute, // then one trial call after 5 minutes
}

var VertexConfig = struct {
	Location string
	Scope    string
	Models   []string
}{
	Location: "asia-northeast1",
	Scope:    "https://www.googleapis.com/auth/cloud-platform",
	Models:   []string{"gemini-2.5-flash", "gemini-1.5-flash", "gemini-1.5-pro"},
}

var ModelDefaults = struct {
	Gemini    string
	Anthropic string
	OpenAI    string
	Ollama    string
}{
	Gemini:    "gemini-2.5-flash",
	Anthropic: "claude-sonnet-4-20250514",
	OpenAI:    "gpt-4o-mini",
	Ollama:    "llama3.2",
}

var CacheTTL = struct {
	Snippets time.Duration
}{
	Snippets: 24 * time.Hour,
}

var ServerConfig = struct {
	DefaultAddr     string
	ReadTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
}{
	DefaultAddr:     ":8080",
	ReadTimeout:     30 * time.Second,
	ShutdownTimeout: 10 * time.Second,
	MaxBodyBytes:    20 << 20,
}
