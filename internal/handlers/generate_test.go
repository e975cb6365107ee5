package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"blogstream-backend/internal/models"
	"blogstream-backend/internal/services"
)

type fakeProvider struct {
	tokens []string
	calls  int
}

func (f *fakeProvider) ModelName() string { return "fake" }

func (f *fakeProvider) StreamChat(ctx context.Context, messages []models.ChatMessage) (<-chan models.StreamChunk, error) {
	f.calls++
	ch := make(chan models.StreamChunk, len(f.tokens))
	for _, tok := range f.tokens {
		ch <- models.StreamChunk{Text: tok}
	}
	close(ch)
	return ch, nil
}

type fakeImages struct {
	urls  map[string]string
	calls int
}

func (f *fakeImages) SearchImages(ctx context.Context, keyword string, count int) []string {
	f.calls++
	if u, ok := f.urls[keyword]; ok {
		return []string{u}
	}
	return []string{}
}

func newTestBlogService(tokens []string, urls map[string]string) (*services.BlogService, *fakeProvider, *fakeImages) {
	provider := &fakeProvider{tokens: tokens}
	images := &fakeImages{urls: urls}
	return services.NewBlogService(provider, images, 1), provider, images
}

func TestGenerateHandler_EmptyPrompt(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty prompt", `{"prompt": ""}`},
		{"whitespace prompt", `{"prompt": "   "}`},
		{"missing prompt", `{}`},
		{"invalid json", `{"prompt":`},
		{"empty body", ``},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, provider, images := newTestBlogService([]string{"x"}, nil)
			h := NewGenerateHandler(svc)

			req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()
			h.Generate(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
			}

			var body map[string]string
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode error body: %v", err)
			}
			if body["error"] != "No prompt provided" {
				t.Errorf("expected error 'No prompt provided', got %q", body["error"])
			}
			if provider.calls != 0 || images.calls != 0 {
				t.Errorf("expected no upstream calls, got provider=%d images=%d", provider.calls, images.calls)
			}
		})
	}
}

func TestGenerateHandler_StreamsPostAndImages(t *testing.T) {
	svc, _, _ := newTestBlogService(
		[]string{"## Hello\n\n", "world\n", "{\"images\": [\"ai\", \"missing\"]}"},
		map[string]string{"ai": "http://x/img.jpg"},
	)
	h := NewGenerateHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(`{"prompt": "the future of AI"}`))
	rr := httptest.NewRecorder()
	h.Generate(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("expected text/plain, got %q", ct)
	}

	expected := "## Hello\n\nworld\n{\"images\": [\"ai\", \"missing\"]}" +
		"<!--IMAGE_JSON_START-->[\"http://x/img.jpg\"]<!--IMAGE_JSON_END-->"
	if rr.Body.String() != expected {
		t.Fatalf("unexpected body %q", rr.Body.String())
	}
	if !rr.Flushed {
		t.Errorf("expected the response to be flushed while streaming")
	}
}

func TestGenerateHandler_NoDirective(t *testing.T) {
	svc, _, images := newTestBlogService([]string{"## Post\n\n", "Body only."}, nil)

	rr := httptest.NewRecorder()
	NewGenerateHandler(svc).Generate(rr, httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(`{"prompt": "p"}`)))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if rr.Body.String() != "## Post\n\nBody only." {
		t.Fatalf("unexpected body %q", rr.Body.String())
	}
	if images.calls != 0 {
		t.Errorf("expected no image lookups, got %d", images.calls)
	}
}

func TestGenerateHandler_EmptyStream(t *testing.T) {
	svc, _, _ := newTestBlogService(nil, nil)

	rr := httptest.NewRecorder()
	NewGenerateHandler(svc).Generate(rr, httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(`{"prompt": "p"}`)))

	if rr.Code != http.StatusOK || rr.Body.Len() != 0 {
		t.Fatalf("expected empty 200 response, got %d %q", rr.Code, rr.Body.String())
	}
}

func TestGenerateHandler_OversizedBody(t *testing.T) {
	svc, provider, _ := newTestBlogService([]string{"x"}, nil)

	body := `{"prompt": "` + strings.Repeat("a", maxRequestBytes) + `"}`
	rr := httptest.NewRecorder()
	NewGenerateHandler(svc).Generate(rr, httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(body)))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
	if provider.calls != 0 {
		t.Errorf("expected no provider call for an oversized body, got %d", provider.calls)
	}
}
