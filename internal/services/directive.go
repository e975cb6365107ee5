package services

import (
	"encoding/json"
	"log"
	"regexp"
	"strings"

	"blogstream-backend/internal/models"
)

// directiveMarker matches the opening of an {"images": ...} object.
var directiveMarker = regexp.MustCompile(`\{\s*"images"`)

// ExtractDirective finds the last {"images": [...]} object in text.
// It reports false when the marker is missing, the object never closes,
// or the JSON does not parse. Blank keywords are dropped.
func ExtractDirective(text string) (*models.ImageDirective, bool) {
	matches := directiveMarker.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return nil, false
	}
	start := matches[len(matches)-1][0]

	end := matchingBrace(text, start)
	if end < 0 {
		log.Printf("Image directive at offset %d is not closed before end of text, ignoring", start)
		return nil, false
	}

	var directive models.ImageDirective
	if err := json.Unmarshal([]byte(text[start:end+1]), &directive); err != nil {
		log.Printf("Image directive at offset %d is malformed: %v", start, err)
		return nil, false
	}

	keywords := make([]string, 0, len(directive.Images))
	for _, kw := range directive.Images {
		if kw = strings.TrimSpace(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	directive.Images = keywords

	return &directive, true
}

// matchingBrace returns the index of the brace closing the one at open,
// or -1. Braces inside JSON string literals do not count.
func matchingBrace(text string, open int) int {
	depth := 0
	inString := false
	escaped := false

	for i := open; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
