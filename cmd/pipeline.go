package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alexraskin/schoolsite/internal/config"
	"github.com/alexraskin/schoolsite/internal/content"
	"github.com/alexraskin/schoolsite/internal/database"
	"github.com/alexraskin/schoolsite/internal/overrides"
	"github.com/alexraskin/schoolsite/internal/site"
)

// newLoader builds the page pipeline. The returned close func releases the
// override store, if one is configured.
func newLoader(ctx context.Context, cfg config.Config, contentURL string) (*site.Loader, func(), error) {
	db, err := database.Open(ctx, database.Options{
		DatabaseURL: cfg.DatabaseURL,
		RESTURL:     cfg.SupabaseURL,
		RESTKey:     cfg.SupabaseAnonKey,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open override store: %w", err)
	}

	closeFn := func() {}
	if db != nil {
		closeFn = db.Close
	} else {
		slog.Info("Remote overrides disabled")
	}

	loader := site.NewLoader(
		content.NewFetcher(contentURL, nil, slog.Default()),
		overrides.NewMerger(db, slog.Default()),
	)
	return loader, closeFn, nil
}
