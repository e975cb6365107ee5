package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"blogstream-backend/internal/models"
	"blogstream-backend/internal/services"
)

const noPromptMessage = "No prompt provided"

// blogGenerator is the part of services.BlogService the handlers use.
type blogGenerator interface {
	Generate(ctx context.Context, prompt string, emit services.EmitFunc) error
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(message string) models.ErrorResponse {
	return models.ErrorResponse{Error: message}
}
