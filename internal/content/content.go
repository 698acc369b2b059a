// Package content loads the site's content document: it fetches it, falls
// back to the embedded copy, resolves {{ }} tokens and selects pages.
package content

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/alexraskin/schoolsite/internal/models"
)

//go:embed fallback.json
var fallbackJSON []byte

// Decode parses raw JSON, resolves its placeholders against itself, and
// returns the typed, validated document.
func Decode(raw []byte) (*models.Document, error) {
	var tree any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("failed to parse content document: %w", err)
	}
	if _, ok := tree.(map[string]any); !ok {
		return nil, fmt.Errorf("failed to parse content document: top level is %T, want object", tree)
	}

	resolved, err := json.Marshal(ResolvePlaceholders(tree))
	if err != nil {
		return nil, fmt.Errorf("failed to encode resolved document: %w", err)
	}

	var doc models.Document
	if err := json.Unmarshal(resolved, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode content document: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Fallback returns a fresh copy of the embedded default document.
func Fallback() (*models.Document, error) {
	doc, err := Decode(fallbackJSON)
	if err != nil {
		return nil, fmt.Errorf("embedded fallback document: %w", err)
	}
	return doc, nil
}

// SelectPage returns the page stored under key, or the home page when there
// is none.
func SelectPage(doc *models.Document, key string) *models.Page {
	if page, ok := doc.Pages[key]; ok && page != nil {
		return page
	}
	return doc.Pages[models.HomeKey]
}
