package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))
	r.Use(httprate.Limit(500, time.Minute))
	r.Use(middleware.Heartbeat("/health"))
	r.Use(s.cacheControl)

	r.Mount("/static", http.FileServer(s.assets))

	r.Handle("/robots.txt", s.serveFile("static/robots.txt"))
	r.Get("/content/site.json", s.HandleContentDocument)

	r.Route("/api", func(r chi.Router) {
		r.Use(httprate.LimitByIP(20, time.Minute))
		r.HandleFunc("/contact", s.HandleContact)
		r.HandleFunc("/admissions", s.HandleAdmissions)
		r.With(s.RequireAdminAPI).HandleFunc("/rewrite", s.HandleRewrite)
	})

	r.Get("/admin/login", s.HandleLoginPage)
	r.Post("/admin/login", s.HandleLogin)
	r.Get("/admin/logout", s.HandleLogout)

	r.Group(func(r chi.Router) {
		r.Use(s.RequireAuth)
		r.Get("/admin", s.HandleAdmin)
	})

	r.Get("/", s.HandlePage)
	r.Get("/{page}", s.HandlePage)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/", http.StatusMovedPermanently)
	})

	return r
}
