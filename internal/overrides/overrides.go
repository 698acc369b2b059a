// Package overrides merges rows from the hosted table store into a content
// document.
//
// Reads for the five tables run concurrently. A table that fails to load
// contributes nothing and the others still apply; a response that cannot be
// decoded aborts the whole merge. Applying a pull never mutates the document
// it was given: it works on a copy and returns the original on any failure.
package overrides

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/alexraskin/schoolsite/internal/database"
	"github.com/alexraskin/schoolsite/internal/models"
)

var tracer = otel.Tracer("github.com/alexraskin/schoolsite/internal/overrides")

// Pull is one snapshot of the five override tables.
type Pull struct {
	Announcements []models.Announcement
	Downloads     []models.Download
	Cards         []models.Card
	HeroNotices   []models.HeroNotice
	Settings      models.SiteSettings
}

type Merger struct {
	db     database.Database
	logger *slog.Logger
}

// NewMerger returns a Merger over db. A nil db disables overrides.
func NewMerger(db database.Database, logger *slog.Logger) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Merger{db: db, logger: logger}
}

func (m *Merger) Enabled() bool {
	return m != nil && m.db != nil
}

// Merge pulls the override tables and applies them to doc. It returns doc
// itself, unmodified, when overrides are disabled or anything goes wrong;
// the bool reports whether a merged copy was returned.
func (m *Merger) Merge(ctx context.Context, doc *models.Document) (*models.Document, bool) {
	if !m.Enabled() {
		return doc, false
	}
	ctx, span := tracer.Start(ctx, "overrides.Merge")
	defer span.End()

	pull, err := m.Pull(ctx)
	if err != nil {
		m.logger.Error("Failed to pull remote overrides", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "pull failed")
		return doc, false
	}

	merged, err := Apply(doc, pull)
	if err != nil {
		m.logger.Error("Failed to apply remote overrides", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "apply failed")
		return doc, false
	}
	return merged, true
}

// Pull reads all five tables concurrently and waits for every read to settle.
func (m *Merger) Pull(ctx context.Context) (*Pull, error) {
	var (
		p        Pull
		settings []models.SiteSetting
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(m.read(gctx, database.TableAnnouncements, func(ctx context.Context) error {
		rows, err := m.db.GetAnnouncements(ctx)
		p.Announcements = validRows(m.logger, database.TableAnnouncements, rows)
		return err
	}))
	g.Go(m.read(gctx, database.TableDownloads, func(ctx context.Context) error {
		rows, err := m.db.GetDownloads(ctx)
		p.Downloads = validRows(m.logger, database.TableDownloads, rows)
		return err
	}))
	g.Go(m.read(gctx, database.TableCards, func(ctx context.Context) error {
		rows, err := m.db.GetCards(ctx)
		p.Cards = validRows(m.logger, database.TableCards, rows)
		return err
	}))
	g.Go(m.read(gctx, database.TableHeroNotices, func(ctx context.Context) error {
		rows, err := m.db.GetHeroNotices(ctx)
		p.HeroNotices = validRows(m.logger, database.TableHeroNotices, rows)
		return err
	}))
	g.Go(m.read(gctx, database.TableSiteSettings, func(ctx context.Context) error {
		rows, err := m.db.GetSiteSettings(ctx)
		settings = validRows(m.logger, database.TableSiteSettings, rows)
		return err
	}))
	if err := g.Wait(); err != nil {
		return nil, err
	}
	p.Settings = models.Settings(settings)
	return &p, nil
}

// read wraps one table read. Failures are isolated to the table unless the
// response was malformed, which fails the group.
func (m *Merger) read(ctx context.Context, table string, fn func(context.Context) error) func() error {
	return func() error {
		ctx, span := tracer.Start(ctx, "overrides.read",
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(attribute.String("table", table)),
		)
		defer span.End()

		err := fn(ctx)
		if err == nil {
			return nil
		}
		span.RecordError(err)
		if errors.Is(err, database.ErrMalformedResponse) {
			span.SetStatus(codes.Error, "malformed response")
			return err
		}
		m.logger.Warn("Remote table unavailable, skipping", "table", table, "error", err)
		return nil
	}
}

func validRows[T interface{ Validate() error }](logger *slog.Logger, table string, rows []T) []T {
	out := make([]T, 0, len(rows))
	for i, row := range rows {
		if err := row.Validate(); err != nil {
			logger.Warn("Dropping invalid remote row", "table", table, "index", i, "error", err)
			continue
		}
		out = append(out, row)
	}
	return out
}
