package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type wsRequest struct {
	Filename    string `json:"filename"`
	HTMLContent string `json:"htmlContent"`
	Prompt      string `json:"prompt,omitempty"`
}

type wsResponse struct {
	Filename string   `json:"filename"`
	Success  bool     `json:"success"`
	Tweets   []string `json:"tweets"`
	Provider string   `json:"provider,omitempty"`
	Error    string   `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// handleWebSocket answers each page frame in order on the same connection.
func handleWebSocket(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			deps.Logger.Warn("WebSocket upgrade failed", zap.Error(err))
			return
		}
		defer conn.Close()

		conn.SetReadLimit(deps.MaxBodyBytes)
		deps.Logger.Info("WebSocket client connected", zap.String("remote", r.RemoteAddr))

		for {
			msgType, data, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					deps.Logger.Warn("WebSocket read failed", zap.Error(err))
				}
				return
			}
			if msgType != websocket.TextMessage {
				continue
			}

			var req wsRequest
			resp := wsResponse{Tweets: []string{}}
			if err := json.Unmarshal(data, &req); err != nil {
				resp.Error = "invalid message: " + err.Error()
			} else {
				resp.Filename = req.Filename
				out, _ := generate(r.Context(), deps, GenerateRequest{HTMLContent: req.HTMLContent, Prompt: req.Prompt})
				resp.Success = out.Success
				resp.Error = out.Error
				resp.Provider = out.Provider
				if out.Tweets != nil {
					resp.Tweets = out.Tweets
				}
			}

			if err := conn.WriteJSON(resp); err != nil {
				deps.Logger.Warn("WebSocket write failed", zap.Error(err))
				return
			}
		}
	}
}
