package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"
)

const (
	ImageJSONStart = "<!--IMAGE_JSON_START-->"
	ImageJSONEnd   = "<!--IMAGE_JSON_END-->"

	// ErrorPrefix starts every in-band error line written to the stream.
	ErrorPrefix = "**Error:**"
)

var ErrEmptyPrompt = errors.New("no prompt provided")

// EmitFunc delivers one chunk to the caller. A non-nil error means the
// caller is gone and generation should stop.
type EmitFunc func(chunk string) error

// BlogService streams a blog post from the model and appends image URLs
// for the keywords the model names at the end of the post.
type BlogService struct {
	llm              LLMProvider
	images           ImageResolver
	imageConcurrency int
}

func NewBlogService(llm LLMProvider, images ImageResolver, imageConcurrency int) *BlogService {
	if imageConcurrency < 1 {
		imageConcurrency = 1
	}
	return &BlogService{
		llm:              llm,
		images:           images,
		imageConcurrency: imageConcurrency,
	}
}

// Generate runs one request end to end. Model failures are written to the
// stream as an error line and are not returned; only ErrEmptyPrompt and
// emit failures are.
func (s *BlogService) Generate(ctx context.Context, prompt string, emit EmitFunc) error {
	if strings.TrimSpace(prompt) == "" {
		return ErrEmptyPrompt
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Printf("🤖 Requesting blog content from %s...", s.llm.ModelName())
	text, err := s.relayTokens(ctx, prompt, emit)
	if err != nil {
		var emitErr *emitError
		if errors.As(err, &emitErr) {
			return emitErr.err
		}
		log.Printf("Error in blog stream: %v", err)
		return emit(fmt.Sprintf("\n%s An issue occurred during blog generation. Details: %v", ErrorPrefix, err))
	}

	directive, ok := ExtractDirective(text)
	if !ok || len(directive.Images) == 0 {
		log.Println("No image keywords in generated post")
		return nil
	}

	log.Printf("🖼️ Extracted keywords: %v", directive.Images)
	urls := s.resolveImages(ctx, directive.Images)
	log.Printf("✅ Resolved %d of %d images", len(urls), len(directive.Images))

	return emit(FormatImageChunk(urls))
}

type emitError struct{ err error }

func (e *emitError) Error() string { return e.err.Error() }

// relayTokens forwards every non-empty token as it arrives and returns the
// concatenated text once the stream drains.
func (s *BlogService) relayTokens(ctx context.Context, prompt string, emit EmitFunc) (string, error) {
	stream, err := s.llm.StreamChat(ctx, buildConversation(prompt))
	if err != nil {
		return "", err
	}

	var full strings.Builder
	for chunk := range stream {
		if chunk.Err != nil {
			return full.String(), chunk.Err
		}
		if chunk.Text == "" {
			continue
		}
		full.WriteString(chunk.Text)
		if err := emit(chunk.Text); err != nil {
			return full.String(), &emitError{err: err}
		}
	}

	// Canceled by the caller: nobody is left to read an error line
	if err := ctx.Err(); err != nil {
		return full.String(), &emitError{err: err}
	}
	return full.String(), nil
}

// resolveImages looks up one image per keyword. The result keeps keyword
// order and omits keywords with no image.
func (s *BlogService) resolveImages(ctx context.Context, keywords []string) []string {
	found := make([]string, len(keywords))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.imageConcurrency)
	for i, kw := range keywords {
		i, kw := i, kw
		g.Go(func() error {
			if urls := s.images.SearchImages(gctx, kw, 1); len(urls) > 0 {
				found[i] = urls[0]
			} else {
				log.Printf("Failed to fetch image for %q", kw)
			}
			return nil
		})
	}
	g.Wait()

	urls := make([]string, 0, len(keywords))
	for _, u := range found {
		if u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// FormatImageChunk wraps the URL list in the sentinel markers clients strip
// from the rendered post.
func FormatImageChunk(urls []string) string {
	if urls == nil {
		urls = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.Encode(urls)
	return ImageJSONStart + strings.TrimSuffix(buf.String(), "\n") + ImageJSONEnd
}
