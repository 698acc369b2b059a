// Package rewrite polishes short pieces of site copy with a hosted
// completion model. Two providers are supported and chosen per request.
package rewrite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alexraskin/schoolsite/internal/upstream"
)

const (
	ChoiceOpenAI = "openai"
	ChoiceGemini = "gemini"
)

const systemPrompt = `You edit copy for a secondary school website. Rewrite the text you are given so it is clear, warm and professional for parents and students. Keep every fact, date and name unchanged. Reply with the rewritten text only.`

var (
	ErrEmptyInput           = errors.New("input is required")
	ErrGeminiNotConfigured  = errors.New("Gemini API key is not configured")
	ErrOpenAINotConfigured  = errors.New("OpenAI API key is not configured")
	ErrNoProviderConfigured = errors.New("no AI provider is configured")
)

// Provider is one hosted completion API.
type Provider interface {
	Name() string
	Complete(ctx context.Context, system, prompt string) (string, error)
}

type Request struct {
	Input            string `json:"input"`
	RefinementPrompt string `json:"refinementPrompt"`
	ModelChoice      string `json:"modelChoice"`
}

type Router struct {
	openai  Provider
	gemini  Provider
	timeout time.Duration
	logger  *slog.Logger
}

// NewRouter builds a router. A nil provider counts as not configured.
func NewRouter(openai, gemini Provider, timeout time.Duration, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{openai: openai, gemini: gemini, timeout: timeout, logger: logger}
}

// Select picks the provider for a model choice.
func (r *Router) Select(choice string) (Provider, error) {
	choice = strings.ToLower(strings.TrimSpace(choice))
	if choice == ChoiceGemini {
		if r.gemini == nil {
			return nil, ErrGeminiNotConfigured
		}
		return r.gemini, nil
	}
	if r.openai != nil {
		return r.openai, nil
	}
	if choice == "" {
		if r.gemini != nil {
			return r.gemini, nil
		}
		return nil, ErrNoProviderConfigured
	}
	return nil, ErrOpenAINotConfigured
}

// Rewrite runs req against the selected provider under the router's
// deadline. Deadline and transport failures wrap upstream.ErrTimeout and
// upstream.ErrUnreachable.
func (r *Router) Rewrite(ctx context.Context, req Request) (string, error) {
	input := strings.TrimSpace(req.Input)
	if input == "" {
		return "", ErrEmptyInput
	}
	provider, err := r.Select(req.ModelChoice)
	if err != nil {
		return "", err
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := provider.Complete(ctx, systemPrompt, Prompt(input, req.RefinementPrompt))
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", upstream.ErrTimeout, err)
		}
		r.logger.Error("Rewrite failed", slog.String("provider", provider.Name()), "error", err)
		return "", fmt.Errorf("%s: %w", provider.Name(), upstream.Classify(err))
	}
	r.logger.Debug("Rewrite done", slog.String("provider", provider.Name()), slog.Duration("took", time.Since(start)))
	return strings.TrimSpace(out), nil
}

// Prompt is the user turn sent to the provider.
func Prompt(input, refinement string) string {
	refinement = strings.TrimSpace(refinement)
	if refinement == "" {
		return input
	}
	return input + "\n\nAdditional instructions: " + refinement
}
