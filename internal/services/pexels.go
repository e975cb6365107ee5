package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ImageResolver looks up image URLs for a search keyword.
// Implementations never fail: any problem yields an empty list.
type ImageResolver interface {
	SearchImages(ctx context.Context, keyword string, count int) []string
}

// PexelsClient queries the Pexels photo search API.
type PexelsClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

type pexelsSearchResponse struct {
	Photos []struct {
		Src struct {
			Large  string `json:"large"`
			Medium string `json:"medium"`
		} `json:"src"`
	} `json:"photos"`
}

func NewPexelsClient(apiKey, baseURL string) *PexelsClient {
	if apiKey == "" {
		log.Println("PEXELS_API_KEY not set, image lookups will return no results")
	}
	return &PexelsClient{
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// SearchImages returns up to count landscape photo URLs for keyword,
// preferring the large rendition and falling back to medium.
func (p *PexelsClient) SearchImages(ctx context.Context, keyword string, count int) []string {
	if p.apiKey == "" || count <= 0 || strings.TrimSpace(keyword) == "" {
		return []string{}
	}

	urls, err := p.search(ctx, keyword, count)
	if err != nil {
		log.Printf("Error fetching image from Pexels for query %q: %v", keyword, err)
		return []string{}
	}
	return urls
}

func (p *PexelsClient) search(ctx context.Context, keyword string, count int) ([]string, error) {
	params := url.Values{}
	params.Set("query", keyword)
	params.Set("per_page", strconv.Itoa(count))
	params.Set("orientation", "landscape")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var data pexelsSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	urls := make([]string, 0, count)
	for _, photo := range data.Photos {
		if len(urls) == count {
			break
		}
		switch {
		case photo.Src.Large != "":
			urls = append(urls, photo.Src.Large)
		case photo.Src.Medium != "":
			urls = append(urls, photo.Src.Medium)
		}
	}
	return urls, nil
}
