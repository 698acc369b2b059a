package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/alexraskin/schoolsite/internal/models"
)

// Source records where a loaded document came from.
type Source string

const (
	SourceRemote   Source = "remote"
	SourceFallback Source = "fallback"
)

// maxDocumentSize caps the content document body.
const maxDocumentSize = 4 << 20

var ErrFetch = errors.New("content fetch failed")

type Fetcher struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

func NewFetcher(url string, client *http.Client, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{url: url, client: client, logger: logger}
}

// Fetch makes a single attempt at the content URL and falls back to the
// embedded document on any failure. The error is non-nil only if the
// fallback itself cannot be decoded.
func (f *Fetcher) Fetch(ctx context.Context) (*models.Document, Source, error) {
	doc, err := f.fetch(ctx)
	if err == nil {
		return doc, SourceRemote, nil
	}
	f.logger.Warn("Using fallback content", "url", f.url, "error", err)

	doc, err = Fallback()
	if err != nil {
		return nil, SourceFallback, err
	}
	return doc, SourceFallback, nil
}

func (f *Fetcher) fetch(ctx context.Context) (*models.Document, error) {
	if f.url == "" {
		return nil, fmt.Errorf("%w: no content url configured", ErrFetch)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	res, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrFetch, res.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	doc, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	return doc, nil
}
