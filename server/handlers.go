package server

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/alexraskin/schoolsite/internal/models"
)

func (s *Server) renderError(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.tmplFunc(w, "error.html", nil); err != nil {
		slog.Error("Failed to render error template", "error", err)
	}
}

// HandlePage renders / and /{page}. Unknown keys render the home page.
func (s *Server) HandlePage(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "page")
	if key == "" {
		key = models.HomeKey
	}

	res, page, err := s.loader.Page(r.Context(), key)
	if err != nil {
		slog.Error("Failed to load content", "page", key, "error", err)
		s.renderError(w, http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := s.renderer.Page(&buf, res.Document, page); err != nil {
		slog.Error("Failed to render page", "page", page.Key, "error", err)
		s.renderError(w, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// HandleContentDocument publishes the editable content document from the
// content directory. A missing file is a 404, which makes page loads use
// the built-in fallback document.
func (s *Server) HandleContentDocument(w http.ResponseWriter, r *http.Request) {
	path := filepath.Join(s.cfg.ContentDir, "site.json")
	if _, err := os.Stat(path); err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	http.ServeFile(w, r, path)
}

func (s *Server) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	token := s.getSessionFromRequest(r)
	if s.validateSession(token) {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmplFunc(w, "login.html", models.LoginPageData{}); err != nil {
		slog.Error("Failed to render login template", "error", err)
	}
}

func (s *Server) HandleLogin(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	if !s.checkCredentials(email, password) {
		slog.Warn("Rejected admin login", "email", email)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		data := models.LoginPageData{Email: email, Error: "Invalid email or password"}
		if s.cfg.AdminPasswordHash == "" {
			data.Error = "Admin login is not configured"
		}
		if err := s.tmplFunc(w, "login.html", data); err != nil {
			slog.Error("Failed to render login template", "error", err)
		}
		return
	}

	token := s.createSession(strings.ToLower(email))
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   int(sessionTTL.Seconds()),
		SameSite: http.SameSiteStrictMode,
	})

	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (s *Server) checkCredentials(email, password string) bool {
	if s.cfg.AdminPasswordHash == "" || password == "" || !s.cfg.IsAdmin(email) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminPasswordHash), []byte(password)) == nil
}

func (s *Server) HandleLogout(w http.ResponseWriter, r *http.Request) {
	token := s.getSessionFromRequest(r)
	s.deleteSession(token)

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleAdmin shows what a page request would see right now.
func (s *Server) HandleAdmin(w http.ResponseWriter, r *http.Request) {
	data := models.AdminPageData{
		Email:   s.sessionEmail(s.getSessionFromRequest(r)),
		Version: s.version,
	}

	res, err := s.loader.Load(r.Context())
	if err != nil {
		slog.Error("Failed to load content", "error", err)
		data.Error = "Content could not be loaded"
	} else {
		data.SchoolName = res.Document.School.Name
		data.Source = string(res.Source)
		data.Overrides = res.Overrides
		data.Pages = summarize(res.Document)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmplFunc(w, "admin.html", data); err != nil {
		slog.Error("Failed to render admin template", "error", err)
	}
}

func summarize(doc *models.Document) []models.PageSummary {
	pages := make([]models.PageSummary, 0, len(doc.Pages))
	for key, p := range doc.Pages {
		pages = append(pages, models.PageSummary{
			Key:       key,
			Title:     p.MetaTitle,
			NavLabel:  p.NavLabel,
			InNav:     p.Nav,
			Sections:  len(p.Sections),
			HasNotice: p.Hero != nil && p.Hero.Notice != nil,
		})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Key < pages[j].Key })
	return pages
}

func (s *Server) serveFile(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file, err := s.assets.Open(path)
		if err != nil {
			http.Error(w, "File not found", http.StatusNotFound)
			return
		}
		defer func() { _ = file.Close() }()
		_, _ = io.Copy(w, file)
	}
}

func (s *Server) cacheControl(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/static/") {
			w.Header().Set("Cache-Control", "public, max-age=86400")
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		next.ServeHTTP(w, r)
	})
}
