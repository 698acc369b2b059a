package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/alexraskin/schoolsite/internal/config"
	"github.com/alexraskin/schoolsite/internal/models"
	"github.com/alexraskin/schoolsite/internal/render"
)

func newRenderCommand() *cobra.Command {
	var contentURL string

	cmd := &cobra.Command{
		Use:   "render [page]",
		Short: "Render one page to stdout",
		Long: `Render runs a single content load (fetch, fallback, overrides) and
writes the resulting page HTML to stdout. Unknown page keys render home.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if contentURL == "" {
				contentURL = cfg.ResolvedContentURL()
			}
			key := models.HomeKey
			if len(args) == 1 {
				key = args[0]
			}

			loader, closeStore, err := newLoader(cmd.Context(), cfg, contentURL)
			if err != nil {
				return err
			}
			defer closeStore()

			res, page, err := loader.Page(cmd.Context(), key)
			if err != nil {
				return err
			}
			slog.Info("Loaded content", slog.String("source", string(res.Source)), slog.Bool("overrides", res.Overrides), slog.String("page", page.Key))

			renderer, err := render.New()
			if err != nil {
				return err
			}
			return renderer.Page(cmd.OutOrStdout(), res.Document, page)
		},
	}
	cmd.Flags().StringVar(&contentURL, "content", "", "Content document URL (default CONTENT_URL)")

	return cmd
}
