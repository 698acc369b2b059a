package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexraskin/schoolsite/internal/models"
)

// Table names in the hosted store.
const (
	TableAnnouncements = "announcements"
	TableDownloads     = "downloads"
	TableCards         = "cards"
	TableHeroNotices   = "hero_notices"
	TableSiteSettings  = "site_settings"
)

// ErrMalformedResponse is returned when a table read succeeded but its body
// could not be decoded.
var ErrMalformedResponse = errors.New("malformed table response")

// StatusError is returned by the REST store for an error response.
type StatusError struct {
	Table      string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("read %s: status %d", e.Table, e.StatusCode)
	}
	return fmt.Sprintf("read %s: status %d: %s", e.Table, e.StatusCode, e.Message)
}

// Database reads the remote override tables. Active-row filtering and
// sort_order ordering happen in the store.
type Database interface {
	Close()
	GetAnnouncements(ctx context.Context) ([]models.Announcement, error)
	GetDownloads(ctx context.Context) ([]models.Download, error)
	GetCards(ctx context.Context) ([]models.Card, error)
	GetHeroNotices(ctx context.Context) ([]models.HeroNotice, error)
	GetSiteSettings(ctx context.Context) ([]models.SiteSetting, error)
}

// Options selects a backend. DatabaseURL wins over the REST pair; with
// neither set, Open returns a nil Database and overrides stay off.
type Options struct {
	DatabaseURL string
	RESTURL     string
	RESTKey     string
}

func Open(ctx context.Context, opts Options) (Database, error) {
	switch {
	case opts.DatabaseURL != "":
		return NewPostgres(ctx, opts.DatabaseURL)
	case opts.RESTURL != "" && opts.RESTKey != "":
		return NewREST(opts.RESTURL, opts.RESTKey, nil), nil
	default:
		return nil, nil
	}
}
