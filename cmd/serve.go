package cmd

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexraskin/schoolsite/internal/config"
	"github.com/alexraskin/schoolsite/internal/mail"
	"github.com/alexraskin/schoolsite/internal/render"
	"github.com/alexraskin/schoolsite/internal/rewrite"
	"github.com/alexraskin/schoolsite/internal/telemetry"
	"github.com/alexraskin/schoolsite/server"
)

func newServeCommand(app App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), app)
		},
	}
}

func runServe(ctx context.Context, app App) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	shutdownTracing, err := telemetry.Setup(ctx, "schoolsite", app.Version, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			slog.Error("Failed to flush traces", "error", err)
		}
	}()

	tmpl, err := template.New("").ParseFS(app.Templates, "templates/*.html")
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}

	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	loader, closeStore, err := newLoader(startCtx, cfg, cfg.ResolvedContentURL())
	if err != nil {
		return err
	}
	defer closeStore()

	renderer, err := render.New()
	if err != nil {
		return err
	}

	rewriter, err := newRewriter(startCtx, cfg.AI)
	if err != nil {
		return err
	}

	mailer := mail.NewClient(cfg.Mail.APIKey, cfg.Mail.APIURL, cfg.Mail.From, nil)
	if !mailer.Configured() {
		slog.Warn("Email endpoints will return errors until RESEND_API_KEY is set")
	}

	srv := server.NewServer(app.Version, cfg, http.FS(app.Static), tmpl.ExecuteTemplate, loader, renderer, mailer, rewriter)

	go srv.Start()

	slog.Info("Started server", slog.String("listen_addr", ":"+cfg.Port), slog.String("content_url", cfg.ResolvedContentURL()), slog.Bool("tracing", cfg.Telemetry.Enabled && cfg.Telemetry.Endpoint != ""))
	si := make(chan os.Signal, 1)
	signal.Notify(si, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-si
	slog.Info("Shutting down server")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	return srv.Close(shutdownCtx)
}

func newRewriter(ctx context.Context, cfg config.AI) (*rewrite.Router, error) {
	var openai, gemini rewrite.Provider
	if cfg.OpenAIKey != "" {
		openai = rewrite.NewOpenAI(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, nil)
	}
	if cfg.GeminiKey != "" {
		g, err := rewrite.NewGemini(ctx, cfg.GeminiKey, cfg.GeminiBaseURL, cfg.GeminiModel, nil)
		if err != nil {
			return nil, err
		}
		gemini = g
	}
	if openai == nil && gemini == nil {
		slog.Warn("No AI provider configured, rewrite endpoint disabled")
	}
	return rewrite.NewRouter(openai, gemini, config.UpstreamTimeout, slog.Default()), nil
}
