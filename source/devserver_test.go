package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pithecene-io/facet/manifest"
)

func TestDevServerSource_Fetch(t *testing.T) {
	body := `{"entrypoints": {"app": {"assets": {"js": [{"src": "/app.js", "integrity": ""}]}}}}`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/manifest.json" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(body))
	}))
	defer ts.Close()

	src, err := NewDevServerSource(DevServerConfig{URL: ts.URL, Filename: "manifest.json"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer func() { _ = src.Close() }()

	got, err := src.Fetch(t.Context())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(got) != body {
		t.Errorf("unexpected body: %s", got)
	}
}

func TestDevServerSource_TrailingSlash(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/manifest.json" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	src, err := NewDevServerSource(DevServerConfig{URL: ts.URL + "/", Filename: "manifest.json"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer func() { _ = src.Close() }()

	if _, err := src.Fetch(t.Context()); err != nil {
		t.Fatalf("fetch: %v", err)
	}
}

func TestDevServerSource_NonSuccessStatus(t *testing.T) {
	tests := []struct {
		code     int
		wantKind error
	}{
		{404, manifest.ErrNotFound},
		{500, manifest.ErrUnavailable},
		{503, manifest.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.code)
			}))
			defer ts.Close()

			src, err := NewDevServerSource(DevServerConfig{URL: ts.URL, Filename: "manifest.json"})
			if err != nil {
				t.Fatalf("new: %v", err)
			}
			defer func() { _ = src.Close() }()

			_, err = src.Fetch(t.Context())
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.wantKind) {
				t.Errorf("expected %v, got %v", tt.wantKind, err)
			}

			var statusErr *StatusError
			if !errors.As(err, &statusErr) {
				t.Fatal("expected StatusError in chain")
			}
			if statusErr.Code != tt.code {
				t.Errorf("expected code %d, got %d", tt.code, statusErr.Code)
			}
		})
	}
}

func TestDevServerSource_ConnectionRefused(t *testing.T) {
	src, err := NewDevServerSource(DevServerConfig{
		URL:      "http://127.0.0.1:1",
		Filename: "manifest.json",
		Timeout:  time.Second,
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer func() { _ = src.Close() }()

	_, err = src.Fetch(t.Context())
	if err == nil {
		t.Fatal("expected error for unreachable server")
	}
	if !errors.Is(err, manifest.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestDevServerSource_ContextCanceled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(5 * time.Second)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	src, err := NewDevServerSource(DevServerConfig{URL: ts.URL, Filename: "manifest.json"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer func() { _ = src.Close() }()

	ctx, cancel := context.WithTimeout(t.Context(), 100*time.Millisecond)
	defer cancel()

	if _, err := src.Fetch(ctx); err == nil {
		t.Fatal("expected error on canceled context")
	}
}

func TestNewDevServerSource_RequiresURL(t *testing.T) {
	if _, err := NewDevServerSource(DevServerConfig{Filename: "manifest.json"}); err == nil {
		t.Fatal("expected error for empty URL")
	}
}

func TestNewDevServerSource_RequiresFilename(t *testing.T) {
	if _, err := NewDevServerSource(DevServerConfig{URL: "http://localhost:8080"}); err == nil {
		t.Fatal("expected error for empty filename")
	}
}
