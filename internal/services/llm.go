package services

import (
	"context"

	"blogstream-backend/internal/models"
)

// BlogSystemPrompt is the fixed instruction sent ahead of every user prompt.
// The trailing JSON object it asks for is what ExtractDirective looks for.
const BlogSystemPrompt = "You are a creative blog writer. Write a comprehensive, engaging, and well-structured blog post based on the given topic. " +
	"Include an introduction, several main body paragraphs, and a conclusion. " +
	"Use catchy headings (`##`), markdown for **bold** and *italic*, short paragraphs, and bullet points. " +
	"Use emojis 🎯 to make it more engaging. Focus on clear, concise writing.\n\n" +
	"After the conclusion, on its own final line, output a JSON object naming 1 to 5 short image search keywords " +
	"that fit the post, exactly in this form: {\"images\": [\"keyword one\", \"keyword two\"]}. " +
	"Do not wrap it in a code block and do not write anything after it."

// LLMProvider streams chat completions from a language model backend.
//
// StreamChat returns an error when the request cannot be started (bad status,
// network failure). Failures after the first token arrive as a StreamChunk
// with Err set, after which the channel is closed. The channel is also closed
// when ctx is canceled.
type LLMProvider interface {
	StreamChat(ctx context.Context, messages []models.ChatMessage) (<-chan models.StreamChunk, error)
	ModelName() string
}

// buildConversation returns the two-message conversation for a prompt.
func buildConversation(prompt string) []models.ChatMessage {
	return []models.ChatMessage{
		{Role: models.RoleSystem, Content: BlogSystemPrompt},
		{Role: models.RoleUser, Content: prompt},
	}
}
