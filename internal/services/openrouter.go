package services

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"blogstream-backend/internal/models"
)

// OpenRouterProvider streams completions from an OpenAI-compatible
// chat/completions endpoint.
type OpenRouterProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

type chatCompletionRequest struct {
	Model    string               `json:"model"`
	Messages []models.ChatMessage `json:"messages"`
	Stream   bool                 `json:"stream"`
}

type chatCompletionChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error"`
}

func NewOpenRouterProvider(apiKey, model, baseURL string) *OpenRouterProvider {
	return &OpenRouterProvider{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		// No overall timeout: a long post can legitimately stream for minutes.
		// Cancellation comes from the request context.
		client: &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				ResponseHeaderTimeout: 60 * time.Second,
			},
		},
	}
}

func (o *OpenRouterProvider) ModelName() string {
	return o.model
}

// StreamChat opens a streaming completion and relays each content delta.
func (o *OpenRouterProvider) StreamChat(ctx context.Context, messages []models.ChatMessage) (<-chan models.StreamChunk, error) {
	jsonBody, err := json.Marshal(chatCompletionRequest{
		Model:    o.model,
		Messages: messages,
		Stream:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	chunks := make(chan models.StreamChunk)

	go func() {
		defer close(chunks)
		defer resp.Body.Close()

		send := func(c models.StreamChunk) bool {
			select {
			case chunks <- c:
				return true
			case <-ctx.Done():
				return false
			}
		}

		reader := bufio.NewReader(resp.Body)
		for {
			line, err := reader.ReadString('\n')
			if err != nil && err != io.EOF {
				send(models.StreamChunk{Err: fmt.Errorf("error reading stream: %w", err)})
				return
			}

			trimmed := strings.TrimSpace(line)
			// SSE format: data: {...}. Comment lines (": keep-alive") and blanks are skipped.
			if strings.HasPrefix(trimmed, "data:") {
				data := strings.TrimSpace(strings.TrimPrefix(trimmed, "data:"))
				if data == "[DONE]" {
					return
				}

				var chunk chatCompletionChunk
				if jsonErr := json.Unmarshal([]byte(data), &chunk); jsonErr != nil {
					send(models.StreamChunk{Err: fmt.Errorf("malformed stream chunk: %w", jsonErr)})
					return
				}
				if chunk.Error != nil {
					send(models.StreamChunk{Err: fmt.Errorf("OpenRouter API error: %s", chunk.Error.Message)})
					return
				}

				if len(chunk.Choices) > 0 {
					if content := chunk.Choices[0].Delta.Content; content != "" {
						if !send(models.StreamChunk{Text: content}) {
							return
						}
					}
				}
			}

			if err == io.EOF {
				return
			}
		}
	}()

	return chunks, nil
}
