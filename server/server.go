package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/alexraskin/schoolsite/internal/config"
	"github.com/alexraskin/schoolsite/internal/mail"
	"github.com/alexraskin/schoolsite/internal/render"
	"github.com/alexraskin/schoolsite/internal/rewrite"
	"github.com/alexraskin/schoolsite/internal/site"
)

type ExecuteTemplateFunc func(wr io.Writer, name string, data any) error

type Server struct {
	version         string
	cfg             config.Config
	server          *http.Server
	assets          http.FileSystem
	tmplFunc        ExecuteTemplateFunc
	sessions        map[string]session
	sessionsMu      sync.RWMutex
	loader          *site.Loader
	renderer        *render.Renderer
	mailer          *mail.Client
	rewriter        *rewrite.Router
	upstreamTimeout time.Duration
}

func NewServer(
	version string,
	cfg config.Config,
	assets http.FileSystem,
	tmplFunc ExecuteTemplateFunc,
	loader *site.Loader,
	renderer *render.Renderer,
	mailer *mail.Client,
	rewriter *rewrite.Router,
) *Server {

	s := &Server{
		version:         version,
		cfg:             cfg,
		assets:          assets,
		tmplFunc:        tmplFunc,
		sessions:        make(map[string]session),
		sessionsMu:      sync.RWMutex{},
		loader:          loader,
		renderer:        renderer,
		mailer:          mailer,
		rewriter:        rewriter,
		upstreamTimeout: config.UpstreamTimeout,
	}

	s.server = &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: s.Routes(),
	}

	return s
}

func (s *Server) Start() {
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		panic(err)
	}
}

// Close stops accepting connections and waits for in-flight requests
// until ctx is done.
func (s *Server) Close(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

func FormatBuildVersion(version string) string {
	return fmt.Sprintf("Go Version: %s\nVersion: %s\nOS/Arch: %s/%s", runtime.Version(), version, runtime.GOOS, runtime.GOARCH)
}
