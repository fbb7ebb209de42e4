package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kapu/wiki-tweets-go/internal/constants"
	"github.com/kapu/wiki-tweets-go/internal/prompt"
	"github.com/kapu/wiki-tweets-go/internal/service/ai"
)

// PromptGenerator runs a fully rendered prompt through the AI providers.
type PromptGenerator interface {
	GenerateFromPrompt(ctx context.Context, prompt string) (string, []string, *ai.GenerateMetadata, error)
}

type Deps struct {
	Generator    PromptGenerator
	Prompts      *prompt.PromptBuilder
	Logger       *zap.Logger
	MaxBodyBytes int64
}

type GenerateRequest struct {
	HTMLContent string `json:"htmlContent"`
	Prompt      string `json:"prompt,omitempty"`
}

type GenerateResponse struct {
	Success     bool     `json:"success"`
	Tweets      []string `json:"tweets,omitempty"`
	RawResponse string   `json:"raw_response,omitempty"`
	Provider    string   `json:"provider,omitempty"`
	Error       string   `json:"error,omitempty"`
}

func NewHandler(deps Deps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Prompts == nil {
		deps.Prompts = prompt.DefaultPromptBuilder()
	}
	if deps.MaxBodyBytes <= 0 {
		deps.MaxBodyBytes = constants.ServerConfig.MaxBodyBytes
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(deps.Logger))

	r.Get("/healthz", handleHealth)
	r.Post("/api/generate", handleGenerate(deps))
	r.Get("/api/ws", handleWebSocket(deps))

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleGenerate(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, deps.MaxBodyBytes)
		defer r.Body.Close()

		var req GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, GenerateResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
			return
		}

		resp, status := generate(r.Context(), deps, req)
		writeJSON(w, status, resp)
	}
}

// generate is shared by the HTTP and WebSocket endpoints.
func generate(ctx context.Context, deps Deps, req GenerateRequest) (GenerateResponse, int) {
	if strings.TrimSpace(req.HTMLContent) == "" {
		return GenerateResponse{Error: "htmlContent is required"}, http.StatusBadRequest
	}

	finalPrompt, err := deps.Prompts.BuildHTMLPrompt(req.Prompt, req.HTMLContent)
	if err != nil {
		deps.Logger.Error("Failed to build HTML prompt", zap.Error(err))
		return GenerateResponse{Error: err.Error()}, http.StatusInternalServerError
	}

	deps.Logger.Info("Generating snippets from page",
		zap.Int("html_length", len(req.HTMLContent)),
		zap.Int("prompt_length", len(finalPrompt)),
	)

	raw, tweets, meta, err := deps.Generator.GenerateFromPrompt(ctx, finalPrompt)
	if err != nil {
		deps.Logger.Warn("Generation failed", zap.Error(err))
		return GenerateResponse{Error: err.Error()}, http.StatusInternalServerError
	}

	resp := GenerateResponse{
		Success:     true,
		Tweets:      tweets,
		RawResponse: raw,
	}
	if meta != nil {
		resp.Provider = meta.Provider
	}
	return resp, http.StatusOK
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("HTTP request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
