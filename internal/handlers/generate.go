package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"blogstream-backend/internal/middleware"
	"blogstream-backend/internal/models"
	"blogstream-backend/internal/services"
)

const maxRequestBytes = 1 << 20

type GenerateHandler struct {
	blog blogGenerator
}

func NewGenerateHandler(blog blogGenerator) *GenerateHandler {
	return &GenerateHandler{blog: blog}
}

// Generate streams the post as text/plain, flushing after every chunk.
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)

	var req models.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp(noPromptMessage))
		return
	}

	flusher, _ := w.(http.Flusher)
	started := false

	emit := func(chunk string) error {
		if !started {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Header().Set("Cache-Control", "no-cache")
			w.Header().Set("X-Accel-Buffering", "no")
			w.WriteHeader(http.StatusOK)
			started = true
		}
		if _, err := fmt.Fprint(w, chunk); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return r.Context().Err()
	}

	err := h.blog.Generate(r.Context(), req.Prompt, emit)
	switch {
	case errors.Is(err, services.ErrEmptyPrompt):
		writeJSON(w, http.StatusBadRequest, errorResp(noPromptMessage))
		return
	case err != nil:
		log.Printf("[%s] generate stream ended early: %v", middleware.GetRequestID(r.Context()), err)
	}

	// A stream with no chunks is still a successful, empty post
	if !started {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
	}
}
