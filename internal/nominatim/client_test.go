package nominatim

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"toolbox-mcp/internal/toolerr"
)

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("q") != "Seoul" || q.Get("format") != "json" || q.Get("limit") != "1" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		if r.Header.Get("User-Agent") != DefaultUserAgent {
			t.Errorf("unexpected user agent %q", r.Header.Get("User-Agent"))
		}
		_, _ = w.Write([]byte(`[{"lat":"37.5666791","lon":"126.9782914","display_name":"Seoul, South Korea"}]`))
	}))
	defer srv.Close()

	c := New(srv.URL, "", srv.Client())
	place, found, err := c.Search(context.Background(), "Seoul")
	if err != nil || !found {
		t.Fatalf("Search() = %v, found=%v", err, found)
	}
	if place.Latitude != 37.5666791 || place.Longitude != 126.9782914 || place.DisplayName != "Seoul, South Korea" {
		t.Fatalf("unexpected place %#v", place)
	}
}

func TestSearchEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, found, err := New(srv.URL, "", srv.Client()).Search(context.Background(), "nowhere")
	if err != nil || found {
		t.Fatalf("expected not found without error, got found=%v err=%v", found, err)
	}
}

func TestSearchStatusFault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, _, err := New(srv.URL, "", srv.Client()).Search(context.Background(), "x")
	var tf *toolerr.TransportFault
	if !errors.As(err, &tf) || tf.Status != http.StatusTooManyRequests {
		t.Fatalf("expected transport fault with 429, got %v", err)
	}
}

func TestSearchBadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error":"oops"}`))
	}))
	defer srv.Close()

	_, _, err := New(srv.URL, "", srv.Client()).Search(context.Background(), "x")
	var tf *toolerr.TransportFault
	if !errors.As(err, &tf) {
		t.Fatalf("expected transport fault, got %v", err)
	}
}

func TestSearchRateLimited(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(srv.URL, "", srv.Client())
	c.Limiter = rate.NewLimiter(rate.Every(time.Hour), 1)
	if _, _, err := c.Search(context.Background(), "first"); err != nil {
		t.Fatalf("first Search() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, _, err := c.Search(ctx, "second"); err == nil {
		t.Fatal("expected the second call to be held back by the limiter")
	}
	if calls != 1 {
		t.Fatalf("expected 1 upstream call, got %d", calls)
	}
}
