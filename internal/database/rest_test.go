package database

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRESTRequestShape(t *testing.T) {
	var (
		path, apikey, auth string
		query              map[string]string
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		apikey = r.Header.Get("apikey")
		auth = r.Header.Get("Authorization")
		query = map[string]string{}
		for k := range r.URL.Query() {
			query[k] = r.URL.Query().Get(k)
		}
		_, _ = w.Write([]byte(`[{"title":"Open day","body":"Come along","date":"2026-10-01","tag":"Events","is_active":true,"sort_order":1}]`))
	}))
	defer ts.Close()

	db := NewREST(ts.URL+"/", "anon-key", ts.Client())
	rows, err := db.GetAnnouncements(context.Background())
	if err != nil {
		t.Fatalf("GetAnnouncements failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Title != "Open day" || rows[0].SortOrder != 1 {
		t.Errorf("unexpected rows: %+v", rows)
	}
	if path != "/rest/v1/announcements" {
		t.Errorf("expected table path, got %q", path)
	}
	if apikey != "anon-key" {
		t.Errorf("expected apikey header, got %q", apikey)
	}
	if auth != "Bearer anon-key" {
		t.Errorf("expected bearer auth, got %q", auth)
	}
	if query["is_active"] != "eq.true" {
		t.Errorf("expected active filter, got %q", query["is_active"])
	}
	if query["order"] != "sort_order.asc.nullslast" {
		t.Errorf("expected sort order, got %q", query["order"])
	}
	if query["select"] != restColumns[TableAnnouncements] {
		t.Errorf("expected column selection, got %q", query["select"])
	}
}

func TestRESTHeroNoticesUnfiltered(t *testing.T) {
	var hasFilter bool
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hasFilter = r.URL.Query().Has("is_active")
		_, _ = w.Write([]byte(`[{"page_key":"home","is_active":false}]`))
	}))
	defer ts.Close()

	rows, err := NewREST(ts.URL, "k", ts.Client()).GetHeroNotices(context.Background())
	if err != nil {
		t.Fatalf("GetHeroNotices failed: %v", err)
	}
	if hasFilter {
		t.Error("expected hero notices to be read without an is_active filter")
	}
	if len(rows) != 1 || rows[0].IsActive {
		t.Errorf("unexpected rows: %+v", rows)
	}
}

func TestRESTStatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	_, err := NewREST(ts.URL, "k", ts.Client()).GetCards(context.Background())
	var serr *StatusError
	if !errors.As(err, &serr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if serr.StatusCode != http.StatusUnauthorized || serr.Table != TableCards {
		t.Errorf("unexpected status error: %+v", serr)
	}
	if errors.Is(err, ErrMalformedResponse) {
		t.Error("status errors must not be reported as malformed")
	}
}

func TestRESTErrorMessage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":"42P01","message":"relation \"public.cards\" does not exist"}`))
	}))
	defer ts.Close()

	_, err := NewREST(ts.URL, "k", ts.Client()).GetCards(context.Background())
	var serr *StatusError
	if !errors.As(err, &serr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if serr.StatusCode != http.StatusNotFound || !strings.Contains(serr.Message, "42P01") {
		t.Errorf("unexpected status error: %+v", serr)
	}
}

func TestRESTHonoursContext(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewREST(ts.URL, "k", ts.Client()).GetAnnouncements(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if errors.Is(err, ErrMalformedResponse) {
		t.Error("transport errors must not be reported as malformed")
	}

	cancelled, stop := context.WithCancel(context.Background())
	stop()
	if _, err := NewREST(ts.URL, "k", ts.Client()).GetCards(cancelled); !errors.Is(err, context.Canceled) {
		t.Errorf("expected cancelled read to fail before the request, got %v", err)
	}
}

func TestRESTMalformedBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message": "not a list"`))
	}))
	defer ts.Close()

	_, err := NewREST(ts.URL, "k", ts.Client()).GetSiteSettings(context.Background())
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestOpenWithoutConfig(t *testing.T) {
	db, err := Open(context.Background(), Options{RESTURL: "https://example.supabase.co"})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if db != nil {
		t.Error("expected no database when the access key is missing")
	}
}

func TestOpenREST(t *testing.T) {
	db, err := Open(context.Background(), Options{RESTURL: "https://example.supabase.co", RESTKey: "k"})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, ok := db.(*rest); !ok {
		t.Errorf("expected REST database, got %T", db)
	}
}
