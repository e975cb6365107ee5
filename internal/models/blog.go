package models

// GenerateRequest is the payload sent to the generate endpoint.
type GenerateRequest struct {
	Prompt string `json:"prompt"`
}

// ImageDirective is the JSON object the model appends to the end of a post
// naming the image search keywords.
type ImageDirective struct {
	Images []string `json:"images"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
