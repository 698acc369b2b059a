package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alexraskin/schoolsite/internal/mail"
	"github.com/alexraskin/schoolsite/internal/models"
	"github.com/alexraskin/schoolsite/internal/rewrite"
	"github.com/alexraskin/schoolsite/internal/upstream"
)

const maxRequestBody = 64 << 10

type sendResponse struct {
	OK bool   `json:"ok"`
	ID string `json:"id,omitempty"`
}

type rewriteResponse struct {
	Response string `json:"response"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(v)
}

func allowPost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodPost {
		return true
	}
	w.Header().Set("Allow", http.MethodPost)
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	return false
}

// upstreamStatus maps a failed outbound call onto a response status.
func upstreamStatus(err error) int {
	switch {
	case errors.Is(err, upstream.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, upstream.ErrUnreachable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) HandleContact(w http.ResponseWriter, r *http.Request) {
	serveEnquiry[mail.Contact](s, w, r, "contact", s.cfg.Mail.ContactTo)
}

func (s *Server) HandleAdmissions(w http.ResponseWriter, r *http.Request) {
	serveEnquiry[mail.Admissions](s, w, r, "admissions", s.cfg.Mail.AdmissionsTo)
}

func serveEnquiry[T mail.Enquiry](s *Server, w http.ResponseWriter, r *http.Request, kind, to string) {
	if !allowPost(w, r) {
		return
	}

	var form T
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if form.Honeypot() {
		slog.Info("Dropped honeypot submission", "form", kind)
		writeJSON(w, http.StatusOK, sendResponse{OK: true})
		return
	}

	if err := form.Validate(); err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	if !s.mailer.Configured() || to == "" {
		slog.Error("Email is not configured", "form", kind)
		writeError(w, http.StatusInternalServerError, "Email service is not configured")
		return
	}

	msg, err := form.Compose(to)
	if err != nil {
		slog.Error("Failed to build email", "form", kind, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to send email")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.upstreamTimeout)
	defer cancel()

	id, err := s.mailer.Send(ctx, msg)
	if err != nil {
		status := upstreamStatus(err)
		slog.Error("Failed to send email", "form", kind, "status", status, "error", err)
		switch status {
		case http.StatusGatewayTimeout:
			writeError(w, status, "Email service timed out")
		case http.StatusBadGateway:
			writeError(w, status, "Email service is unreachable")
		default:
			writeError(w, status, "Failed to send email")
		}
		return
	}

	slog.Info("Sent enquiry email", "form", kind, "id", id)
	writeJSON(w, http.StatusOK, sendResponse{OK: true, ID: id})
}

func (s *Server) HandleRewrite(w http.ResponseWriter, r *http.Request) {
	if !allowPost(w, r) {
		return
	}

	var req rewrite.Request
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	out, err := s.rewriter.Rewrite(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, rewrite.ErrEmptyInput):
			writeError(w, http.StatusBadRequest, "Input text is required")
		case errors.Is(err, rewrite.ErrGeminiNotConfigured),
			errors.Is(err, rewrite.ErrOpenAINotConfigured),
			errors.Is(err, rewrite.ErrNoProviderConfigured):
			writeError(w, http.StatusInternalServerError, err.Error())
		default:
			status := upstreamStatus(err)
			switch status {
			case http.StatusGatewayTimeout:
				writeError(w, status, "AI provider timed out")
			case http.StatusBadGateway:
				writeError(w, status, "AI provider is unreachable")
			default:
				writeError(w, status, "AI provider request failed")
			}
		}
		return
	}

	writeJSON(w, http.StatusOK, rewriteResponse{Response: out})
}
