package rewrite

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alexraskin/schoolsite/internal/upstream"
)

type fakeProvider struct {
	name   string
	out    string
	err    error
	block  bool
	calls  int
	prompt string
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Complete(ctx context.Context, system, prompt string) (string, error) {
	f.calls++
	f.prompt = prompt
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.out, f.err
}

func TestSelect(t *testing.T) {
	oa := &fakeProvider{name: ChoiceOpenAI}
	gm := &fakeProvider{name: ChoiceGemini}

	tests := []struct {
		name    string
		openai  Provider
		gemini  Provider
		choice  string
		want    string
		wantErr error
	}{
		{name: "gemini without key despite openai", openai: oa, choice: "gemini", wantErr: ErrGeminiNotConfigured},
		{name: "gemini", openai: oa, gemini: gm, choice: "gemini", want: ChoiceGemini},
		{name: "gemini case insensitive", gemini: gm, choice: " Gemini ", want: ChoiceGemini},
		{name: "default prefers openai", openai: oa, gemini: gm, want: ChoiceOpenAI},
		{name: "default falls back to gemini", gemini: gm, want: ChoiceGemini},
		{name: "openai choice without key", gemini: gm, choice: "openai", wantErr: ErrOpenAINotConfigured},
		{name: "unknown choice uses openai", openai: oa, choice: "gpt-4o", want: ChoiceOpenAI},
		{name: "nothing configured", wantErr: ErrNoProviderConfigured},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRouter(tt.openai, tt.gemini, time.Second, nil)
			p, err := r.Select(tt.choice)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Select failed: %v", err)
			}
			if p.Name() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, p.Name())
			}
		})
	}
}

func TestRewrite(t *testing.T) {
	oa := &fakeProvider{name: ChoiceOpenAI, out: "  Polished.\n"}
	r := NewRouter(oa, nil, time.Second, nil)

	got, err := r.Rewrite(context.Background(), Request{Input: " rough text ", RefinementPrompt: "shorter"})
	if err != nil {
		t.Fatalf("Rewrite failed: %v", err)
	}
	if got != "Polished." {
		t.Errorf("expected trimmed output, got %q", got)
	}
	if oa.prompt != "rough text\n\nAdditional instructions: shorter" {
		t.Errorf("unexpected prompt %q", oa.prompt)
	}
}

func TestRewriteEmptyInput(t *testing.T) {
	oa := &fakeProvider{name: ChoiceOpenAI}
	r := NewRouter(oa, nil, time.Second, nil)
	if _, err := r.Rewrite(context.Background(), Request{Input: "   "}); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
	if oa.calls != 0 {
		t.Error("provider should not be called for empty input")
	}
}

func TestRewriteTimeout(t *testing.T) {
	r := NewRouter(&fakeProvider{name: ChoiceOpenAI, block: true}, nil, 10*time.Millisecond, nil)
	_, err := r.Rewrite(context.Background(), Request{Input: "x"})
	if !errors.Is(err, upstream.ErrTimeout) {
		t.Errorf("expected timeout, got %v", err)
	}
}

func TestRewriteProviderError(t *testing.T) {
	boom := errors.New("rate limited")
	r := NewRouter(nil, &fakeProvider{name: ChoiceGemini, err: boom}, time.Second, nil)
	_, err := r.Rewrite(context.Background(), Request{Input: "x"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected provider error, got %v", err)
	}
	if errors.Is(err, upstream.ErrTimeout) || errors.Is(err, upstream.ErrUnreachable) {
		t.Errorf("provider error should not be classified as transport failure: %v", err)
	}
}

func TestRewriteLogsErrorKey(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	r := NewRouter(nil, &fakeProvider{name: ChoiceGemini, err: errors.New("quota exceeded")}, time.Second, logger)
	if _, err := r.Rewrite(context.Background(), Request{Input: "x"}); err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(buf.String(), `error="quota exceeded"`) {
		t.Errorf("expected failure logged under the error key, got %q", buf.String())
	}
}

func TestOpenAIProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("unexpected authorization %q", auth)
		}
		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.Model != "gpt-test" || len(body.Messages) != 2 || body.Messages[1].Content != "hello" {
			t.Errorf("unexpected body %+v", body)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-test","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Hello there."}}]}`))
	}))
	defer srv.Close()

	p := NewOpenAI("sk-test", srv.URL+"/", "gpt-test", srv.Client())
	got, err := p.Complete(context.Background(), "system", "hello")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got != "Hello there." {
		t.Errorf("unexpected completion %q", got)
	}
}

func TestOpenAIProviderUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	r := NewRouter(NewOpenAI("sk-test", url+"/", "gpt-test", nil), nil, time.Second, nil)
	_, err := r.Rewrite(context.Background(), Request{Input: "x"})
	if !errors.Is(err, upstream.ErrUnreachable) {
		t.Errorf("expected unreachable, got %v", err)
	}
}

func TestGeminiProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "models/gemini-test:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Gemini says hi."}]}}]}`))
	}))
	defer srv.Close()

	p, err := NewGemini(context.Background(), "g-test", srv.URL+"/", "gemini-test", srv.Client())
	if err != nil {
		t.Fatalf("NewGemini failed: %v", err)
	}
	got, err := p.Complete(context.Background(), "system", "hello")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got != "Gemini says hi." {
		t.Errorf("unexpected completion %q", got)
	}
}
