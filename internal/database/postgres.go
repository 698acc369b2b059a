package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alexraskin/schoolsite/internal/models"
)

// postgres reads the same tables directly, for deployments that can reach
// the backing database.
type postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(ctx context.Context, dbURL string) (Database, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute
	config.HealthCheckPeriod = 1 * time.Minute
	config.ConnConfig.ConnectTimeout = 10 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &postgres{db: pool}, nil
}

func (d *postgres) Close() {
	d.db.Close()
}

func (d *postgres) GetAnnouncements(ctx context.Context) ([]models.Announcement, error) {
	rows, err := d.db.Query(ctx, `SELECT title, COALESCE(body, ''), COALESCE(date::text, ''), COALESCE(tag, ''), is_active, sort_order
		FROM announcements WHERE is_active ORDER BY sort_order ASC`)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", TableAnnouncements, err)
	}
	return collect(rows, TableAnnouncements, func(row pgx.CollectableRow) (models.Announcement, error) {
		var a models.Announcement
		err := row.Scan(&a.Title, &a.Body, &a.Date, &a.Tag, &a.IsActive, &a.SortOrder)
		return a, err
	})
}

func (d *postgres) GetDownloads(ctx context.Context) ([]models.Download, error) {
	rows, err := d.db.Query(ctx, `SELECT section, title, COALESCE(description, ''), url, COALESCE(file_type, ''), is_active, sort_order
		FROM downloads WHERE is_active ORDER BY sort_order ASC`)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", TableDownloads, err)
	}
	return collect(rows, TableDownloads, func(row pgx.CollectableRow) (models.Download, error) {
		var dl models.Download
		err := row.Scan(&dl.Section, &dl.Title, &dl.Description, &dl.URL, &dl.FileType, &dl.IsActive, &dl.SortOrder)
		return dl, err
	})
}

func (d *postgres) GetCards(ctx context.Context) ([]models.Card, error) {
	rows, err := d.db.Query(ctx, `SELECT page_key, COALESCE(section_key, ''), title, COALESCE(body, ''), COALESCE(href, ''),
		COALESCE(link_label, ''), COALESCE(icon, ''), COALESCE(image, ''), is_active, sort_order
		FROM cards WHERE is_active ORDER BY sort_order ASC`)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", TableCards, err)
	}
	return collect(rows, TableCards, func(row pgx.CollectableRow) (models.Card, error) {
		var c models.Card
		err := row.Scan(&c.PageKey, &c.SectionKey, &c.Title, &c.Body, &c.Href, &c.LinkLabel, &c.Icon, &c.Image, &c.IsActive, &c.SortOrder)
		return c, err
	})
}

func (d *postgres) GetHeroNotices(ctx context.Context) ([]models.HeroNotice, error) {
	rows, err := d.db.Query(ctx, `SELECT page_key, COALESCE(title, ''), COALESCE(body, ''), COALESCE(link_label, ''),
		COALESCE(link_href, ''), is_active, sort_order
		FROM hero_notices ORDER BY sort_order ASC`)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", TableHeroNotices, err)
	}
	return collect(rows, TableHeroNotices, func(row pgx.CollectableRow) (models.HeroNotice, error) {
		var n models.HeroNotice
		err := row.Scan(&n.PageKey, &n.Title, &n.Body, &n.LinkLabel, &n.LinkHref, &n.IsActive, &n.SortOrder)
		return n, err
	})
}

func (d *postgres) GetSiteSettings(ctx context.Context) ([]models.SiteSetting, error) {
	rows, err := d.db.Query(ctx, `SELECT key, COALESCE(value, ''), is_active, sort_order
		FROM site_settings WHERE is_active ORDER BY sort_order ASC`)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", TableSiteSettings, err)
	}
	return collect(rows, TableSiteSettings, func(row pgx.CollectableRow) (models.SiteSetting, error) {
		var s models.SiteSetting
		err := row.Scan(&s.Key, &s.Value, &s.IsActive, &s.SortOrder)
		return s, err
	})
}

// collect scans every row; a scan failure means the table shape does not
// match and is reported as a malformed response.
func collect[T any](rows pgx.Rows, table string, fn pgx.RowToFunc[T]) ([]T, error) {
	out, err := pgx.CollectRows(rows, fn)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w: %w", table, ErrMalformedResponse, err)
	}
	return out, nil
}
