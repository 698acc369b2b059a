package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// UpstreamTimeout bounds each outbound mail or AI call.
const UpstreamTimeout = 20 * time.Second

type Config struct {
	Port       string `env:"PORT" envDefault:"8080"`
	ContentURL string `env:"CONTENT_URL"`
	ContentDir string `env:"CONTENT_DIR" envDefault:"content"`

	SupabaseURL     string `env:"SUPABASE_URL"`
	SupabaseAnonKey string `env:"SUPABASE_ANON_KEY"`
	DatabaseURL     string `env:"DATABASE_URL"`

	Mail      Mail
	AI        AI
	Telemetry Telemetry

	AdminEmails       []string `env:"ADMIN_EMAILS" envSeparator:","`
	AdminPasswordHash string   `env:"ADMIN_PASSWORD_HASH"`
}

type Mail struct {
	APIKey       string `env:"RESEND_API_KEY"`
	APIURL       string `env:"RESEND_API_URL" envDefault:"https://api.resend.com"`
	From         string `env:"MAIL_FROM" envDefault:"Website <no-reply@example.com>"`
	ContactTo    string `env:"CONTACT_TO_EMAIL"`
	AdmissionsTo string `env:"ADMISSIONS_TO_EMAIL"`
}

type AI struct {
	OpenAIKey     string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1/"`
	OpenAIModel   string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	GeminiKey     string `env:"GEMINI_API_KEY"`
	GeminiBaseURL string `env:"GEMINI_BASE_URL"`
	GeminiModel   string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
}

// Telemetry enables OTLP trace export when Endpoint is set.
type Telemetry struct {
	Endpoint string `env:"OTEL_ENDPOINT"`
	Enabled  bool   `env:"OTEL_ENABLED" envDefault:"true"`
}

// Load reads the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := parse(&cfg); err != nil {
		return cfg, err
	}
	cfg.AdminEmails = normalizeEmails(cfg.AdminEmails)
	return cfg, nil
}

func parse(v any) error {
	if err := env.Parse(v); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// ResolvedContentURL is the content document URL, defaulting to the copy
// this server publishes under /content/site.json.
func (c Config) ResolvedContentURL() string {
	if c.ContentURL != "" {
		return c.ContentURL
	}
	return "http://127.0.0.1:" + c.Port + "/content/site.json"
}

// IsAdmin reports whether email is on the admin allow-list.
func (c Config) IsAdmin(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	for _, allowed := range c.AdminEmails {
		if allowed == email {
			return true
		}
	}
	return false
}

func normalizeEmails(in []string) []string {
	out := make([]string, 0, len(in))
	for _, e := range in {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}
