package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"blogstream-backend/internal/models"
	"blogstream-backend/internal/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const wsWriteWait = 10 * time.Second

type StreamHandler struct {
	blog blogGenerator
}

func NewStreamHandler(blog blogGenerator) *StreamHandler {
	return &StreamHandler{blog: blog}
}

// HandleWebSocket reads one {"prompt": ...} frame and answers with one text
// frame per stream chunk, then closes the connection.
func (h *StreamHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	var req models.GenerateRequest
	if err := conn.ReadJSON(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		h.rejectPrompt(conn)
		return
	}
	conn.SetReadDeadline(time.Time{})

	ctx := r.Context()
	emit := func(chunk string) error {
		conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		return conn.WriteMessage(websocket.TextMessage, []byte(chunk))
	}

	if err := h.blog.Generate(ctx, req.Prompt, emit); err != nil {
		if errors.Is(err, services.ErrEmptyPrompt) {
			h.rejectPrompt(conn)
			return
		}
		log.Printf("WebSocket generate ended early: %v", err)
		return
	}

	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"),
		time.Now().Add(wsWriteWait))
}

func (h *StreamHandler) rejectPrompt(conn *websocket.Conn) {
	data, _ := json.Marshal(errorResp(noPromptMessage))
	conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	conn.WriteMessage(websocket.TextMessage, data)
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, noPromptMessage),
		time.Now().Add(wsWriteWait))
}
