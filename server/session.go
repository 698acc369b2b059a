package server

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"
)

const (
	sessionCookie = "session"
	sessionTTL    = 24 * time.Hour
)

type session struct {
	email   string
	expires time.Time
}

func (s *Server) createSession(email string) string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		panic("failed to generate session token: " + err.Error())
	}
	token := hex.EncodeToString(bytes)

	s.sessionsMu.Lock()
	s.sessions[token] = session{email: email, expires: time.Now().Add(sessionTTL)}
	s.sessionsMu.Unlock()

	return token
}

// sessionEmail returns the admin behind token, or "" for a missing or
// expired session.
func (s *Server) sessionEmail(token string) string {
	s.sessionsMu.RLock()
	sess, exists := s.sessions[token]
	s.sessionsMu.RUnlock()

	if !exists {
		return ""
	}

	if time.Now().After(sess.expires) {
		s.sessionsMu.Lock()
		delete(s.sessions, token)
		s.sessionsMu.Unlock()
		return ""
	}

	return sess.email
}

func (s *Server) validateSession(token string) bool {
	return s.sessionEmail(token) != ""
}

func (s *Server) deleteSession(token string) {
	s.sessionsMu.Lock()
	delete(s.sessions, token)
	s.sessionsMu.Unlock()
}

func (s *Server) getSessionFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (s *Server) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := s.getSessionFromRequest(r)
		if !s.validateSession(token) {
			http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdminAPI guards JSON endpoints once admin login is configured.
func (s *Server) RequireAdminAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.AdminPasswordHash == "" {
			next.ServeHTTP(w, r)
			return
		}
		if !s.validateSession(s.getSessionFromRequest(r)) {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
