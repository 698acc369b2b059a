// Package site wires the content pipeline for a single page request:
// fetch (or fall back), resolve tokens, merge remote overrides.
package site

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/alexraskin/schoolsite/internal/content"
	"github.com/alexraskin/schoolsite/internal/models"
	"github.com/alexraskin/schoolsite/internal/overrides"
)

var tracer = otel.Tracer("github.com/alexraskin/schoolsite/internal/site")

// Result is one loaded document and how it was produced.
type Result struct {
	Document  *models.Document
	Source    content.Source
	Overrides bool
}

type Loader struct {
	fetcher *content.Fetcher
	merger  *overrides.Merger
}

func NewLoader(fetcher *content.Fetcher, merger *overrides.Merger) *Loader {
	return &Loader{fetcher: fetcher, merger: merger}
}

// Load builds a fresh document. Nothing is cached between calls.
func (l *Loader) Load(ctx context.Context) (*Result, error) {
	ctx, span := tracer.Start(ctx, "site.Load")
	defer span.End()

	doc, src, err := l.fetcher.Fetch(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "no content")
		return nil, err
	}
	span.SetAttributes(attribute.String("content.source", string(src)))

	doc, applied := l.merger.Merge(ctx, doc)
	span.SetAttributes(attribute.Bool("overrides.applied", applied))

	return &Result{Document: doc, Source: src, Overrides: applied}, nil
}

// Page loads the document and selects the page for key.
func (l *Loader) Page(ctx context.Context, key string) (*Result, *models.Page, error) {
	res, err := l.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	return res, content.SelectPage(res.Document, key), nil
}
