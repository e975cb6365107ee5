package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"blogstream-backend/internal/models"
)

// GeminiProvider streams completions through the Gemini SDK.
type GeminiProvider struct {
	client    *genai.Client
	modelName string
}

func NewGeminiProvider(apiKey, modelName string) (*GeminiProvider, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client:    client,
		modelName: modelName,
	}, nil
}

func (g *GeminiProvider) Close() {
	g.client.Close()
}

func (g *GeminiProvider) ModelName() string {
	return g.modelName
}

// StreamChat maps system messages to the model's system instruction and the
// remaining messages to chat history, then streams the reply to the last one.
func (g *GeminiProvider) StreamChat(ctx context.Context, messages []models.ChatMessage) (<-chan models.StreamChunk, error) {
	system, history, last, err := geminiContents(messages)
	if err != nil {
		return nil, err
	}

	model := g.client.GenerativeModel(g.modelName)
	model.SetTemperature(0.7)
	model.SystemInstruction = system

	session := model.StartChat()
	session.History = history

	iter := session.SendMessageStream(ctx, last.Parts...)

	chunks := make(chan models.StreamChunk)

	go func() {
		defer close(chunks)

		for {
			resp, err := iter.Next()
			if err == iterator.Done {
				return
			}
			if err != nil {
				select {
				case chunks <- models.StreamChunk{Err: fmt.Errorf("Gemini API error: %w", err)}:
				case <-ctx.Done():
				}
				return
			}

			text := extractText(resp)
			if text == "" {
				continue
			}
			select {
			case chunks <- models.StreamChunk{Text: text}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return chunks, nil
}

// geminiContents splits a conversation into the system instruction, the chat
// history and the message to send. Gemini calls the assistant role "model".
func geminiContents(messages []models.ChatMessage) (system *genai.Content, history []*genai.Content, last *genai.Content, err error) {
	var instructions []string
	var contents []*genai.Content
	for _, m := range messages {
		switch m.Role {
		case models.RoleSystem:
			instructions = append(instructions, m.Content)
		case models.RoleAssistant:
			contents = append(contents, &genai.Content{Role: "model", Parts: []genai.Part{genai.Text(m.Content)}})
		default:
			contents = append(contents, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(m.Content)}})
		}
	}
	if len(contents) == 0 {
		return nil, nil, nil, errors.New("no user message to send")
	}
	if len(instructions) > 0 {
		system = &genai.Content{Parts: []genai.Part{genai.Text(strings.Join(instructions, "\n\n"))}}
	}
	return system, contents[:len(contents)-1], contents[len(contents)-1], nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
