package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pithecene-io/facet/iox"
	"github.com/pithecene-io/facet/manifest"
)

// DefaultTimeout is the default per-fetch HTTP timeout.
const DefaultTimeout = 10 * time.Second

// DevServerConfig configures a dev server source.
type DevServerConfig struct {
	// URL is the dev server base URL (required), e.g. http://localhost:8080.
	URL string
	// Filename is the manifest filename appended to the URL (required).
	Filename string
	// Timeout is the per-request timeout (default 10s).
	Timeout time.Duration
}

// DevServerSource fetches the manifest from a running development asset
// server. Every Fetch is a fresh GET — the dev server rebuilds the manifest
// continuously, so nothing is cached here.
type DevServerSource struct {
	url    string
	client *http.Client
}

// NewDevServerSource creates a dev server source from the given config.
// Returns an error if the URL or filename is empty.
func NewDevServerSource(cfg DevServerConfig) (*DevServerSource, error) {
	if cfg.URL == "" {
		return nil, errors.New("dev server source requires a URL")
	}
	if cfg.Filename == "" {
		return nil, errors.New("dev server source requires a manifest filename")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &DevServerSource{
		url:    strings.TrimRight(cfg.URL, "/") + "/" + cfg.Filename,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Fetch performs a single GET and returns the body on 2xx.
// Non-2xx responses return a fetch error wrapping StatusError; the loader
// treats these as retryable.
func (s *DevServerSource) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, manifest.WrapFetchError(err, s.url)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		iox.DrainClose(resp.Body)
		return nil, manifest.WrapFetchError(&StatusError{Code: resp.StatusCode}, s.url)
	}

	defer iox.DiscardClose(resp.Body)
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, manifest.WrapFetchError(err, s.url)
	}
	return body, nil
}

// Name returns the manifest URL.
func (s *DevServerSource) Name() string { return s.url }

// Close releases idle connections.
func (s *DevServerSource) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

// Verify DevServerSource implements Source.
var _ Source = (*DevServerSource)(nil)
