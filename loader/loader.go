// Package loader resolves the build-time asset manifest for a
// server-rendered application.
//
// In file mode the manifest is read, parsed, and indexed once at
// construction and held for process lifetime. In dev mode every load
// fetches a fresh manifest from the development asset server, retrying
// with backoff until the upstream build tool has produced a valid one.
package loader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pithecene-io/facet/log"
	"github.com/pithecene-io/facet/manifest"
	"github.com/pithecene-io/facet/source"
	"github.com/pithecene-io/facet/types"
)

// DevBundleSrc is the synthetic script the dev server serves for hot reload.
// Injected into an entrypoint's JS list when Config.InjectDevBundle is set.
const DevBundleSrc = "webpack-dev-server.js"

// Defaults for the dev-mode retry loop.
const (
	// DefaultInitialBackoff is the wait before the first retry.
	DefaultInitialBackoff = 1000 * time.Millisecond
	// DefaultBackoffMultiplier grows the wait between successive retries
	// within one Load call.
	DefaultBackoffMultiplier = 1.5
	// DefaultMaxInvalid is the consecutive invalid-manifest ceiling. The
	// cause of an invalid manifest is a build-tool race, not a permanent
	// error, so the ceiling is set high enough to never trip in practice.
	DefaultMaxInvalid = 600
)

// Config configures a Loader. Mode selection is explicit: a non-empty
// DevServerURL selects dev mode, otherwise the manifest is resolved from
// Source (when set) or from a file under ResolveFrom.
type Config struct {
	// DevServerURL is the development asset server base URL. When set, the
	// loader polls {DevServerURL}/{filename} instead of reading a file.
	DevServerURL string
	// InjectDevBundle appends the dev server's hot-reload script to
	// resolved entrypoints. Dev mode only.
	InjectDevBundle bool
	// ResolveFrom overrides the manifest directory in file mode. Empty
	// walks up from the executable to the client build output directory.
	ResolveFrom string
	// Source overrides the manifest source entirely (S3, cached S3).
	// Ignored in dev mode.
	Source source.Source
	// Timeout is the per-fetch timeout in dev mode.
	Timeout time.Duration
	// InitialBackoff is the first retry delay (default 1s).
	InitialBackoff time.Duration
	// BackoffMultiplier grows the delay per retry (default 1.5).
	BackoffMultiplier float64
	// MaxInvalid is the consecutive invalid-manifest ceiling (default 600).
	MaxInvalid int
	// Logger receives retry warnings. Defaults to a stderr logger.
	Logger *log.Logger
}

// EntrypointFunc resolves one named entrypoint. In dev mode each call
// fetches a fresh manifest with full retry semantics; in file mode it
// returns the construction-time result. A nil Entrypoint with nil error
// means the manifest has no such entrypoint.
type EntrypointFunc func(ctx context.Context) (*types.Entrypoint, error)

// Loader produces Manifests and per-entrypoint accessors from one source.
type Loader struct {
	filename string
	cfg      Config
	src      source.Source
	dev      bool
	logger   *log.Logger

	// File-mode cache, immutable after New.
	cached *types.Manifest
	index  *manifest.Index

	// Dev-mode consecutive invalid-manifest counter. Guarded since
	// concurrent Load calls each run their own retry loop.
	mu           sync.Mutex
	invalid      int
	lastAttempts int
}

// New creates a Loader for the named manifest file.
//
// File mode reads and indexes the manifest eagerly; any failure there is
// fatal for the process (the manifest is required to render anything) and
// is returned as an error. Dev mode defers all I/O to Load.
func New(ctx context.Context, filename string, cfg Config) (*Loader, error) {
	if filename == "" {
		return nil, errors.New("loader requires a manifest filename")
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = DefaultInitialBackoff
	}
	if cfg.BackoffMultiplier <= 1 {
		cfg.BackoffMultiplier = DefaultBackoffMultiplier
	}
	if cfg.MaxInvalid <= 0 {
		cfg.MaxInvalid = DefaultMaxInvalid
	}

	if cfg.DevServerURL != "" {
		src, err := source.NewDevServerSource(source.DevServerConfig{
			URL:      cfg.DevServerURL,
			Filename: filename,
			Timeout:  cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		if cfg.Logger == nil {
			cfg.Logger = log.New("dev", filename)
		}
		return &Loader{filename: filename, cfg: cfg, src: src, dev: true, logger: cfg.Logger}, nil
	}

	src := cfg.Source
	if src == nil {
		dir := cfg.ResolveFrom
		if dir == "" {
			located, err := source.DefaultManifestDir()
			if err != nil {
				return nil, err
			}
			dir = located
		}
		src = source.NewFileSource(dir, filename)
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New("file", filename)
	}

	l := &Loader{filename: filename, cfg: cfg, src: src, logger: cfg.Logger}

	data, err := src.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	m, err := manifest.Parse(data)
	if err != nil {
		return nil, err
	}
	l.cached = m
	l.index = manifest.NewIndex(m)

	l.logger.Info("manifest loaded", map[string]any{
		"source":      src.Name(),
		"entrypoints": l.index.Len(),
	})
	return l, nil
}

// Load returns the manifest.
//
// File mode returns the cached manifest immediately; repeated calls return
// the identical instance with no further I/O. Dev mode runs a fresh
// fetch-and-retry cycle: transport failures and non-2xx statuses are
// retried indefinitely, invalid manifests are retried until the
// consecutive-invalid ceiling, and the backoff grows by the configured
// multiplier within this one invocation. Context cancellation aborts the
// cycle.
func (l *Loader) Load(ctx context.Context) (*types.Manifest, error) {
	if !l.dev {
		return l.cached, nil
	}
	return l.poll(ctx)
}

func (l *Loader) poll(ctx context.Context) (*types.Manifest, error) {
	backoff := l.cfg.InitialBackoff

	for attempt := 1; ; attempt++ {
		m, err := l.fetchOnce(ctx)
		if err == nil {
			l.resetInvalid()
			l.mu.Lock()
			l.lastAttempts = attempt
			l.mu.Unlock()
			return m, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("manifest load aborted: %w", ctxErr)
		}

		if errors.Is(err, manifest.ErrMalformed) || errors.Is(err, manifest.ErrNotReady) {
			if n := l.bumpInvalid(); n > l.cfg.MaxInvalid {
				return nil, fmt.Errorf("manifest invalid after %d consecutive fetches: %w", n, err)
			}
		}

		l.logger.Warn("manifest not available, retrying", map[string]any{
			"source":     l.src.Name(),
			"attempt":    attempt,
			"backoff_ms": backoff.Milliseconds(),
			"error":      err.Error(),
		})

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("manifest load aborted: %w", ctx.Err())
		case <-time.After(backoff):
		}
		backoff = time.Duration(float64(backoff) * l.cfg.BackoffMultiplier)
	}
}

// fetchOnce performs one fetch-parse-validate pass.
func (l *Loader) fetchOnce(ctx context.Context) (*types.Manifest, error) {
	data, err := l.src.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	m, err := manifest.Parse(data)
	if err != nil {
		return nil, err
	}
	if err := manifest.CheckReady(m); err != nil {
		return nil, err
	}
	return m, nil
}

// EntrypointLoader returns an accessor for the named entrypoint.
//
// File mode resolves against the construction-time index, so the accessor
// never performs I/O. Dev mode accessors run a full Load (with retry) and
// re-index on every call; when InjectDevBundle is set and the entrypoint
// exists, the dev server's hot-reload script is appended to its JS list.
func (l *Loader) EntrypointLoader(name string) (EntrypointFunc, error) {
	if l.dev {
		return func(ctx context.Context) (*types.Entrypoint, error) {
			m, err := l.Load(ctx)
			if err != nil {
				return nil, err
			}
			ep := manifest.NewIndex(m).Get(name)
			if ep != nil && l.cfg.InjectDevBundle {
				ep.JS = append(ep.JS, types.Asset{Src: DevBundleSrc, Integrity: ""})
			}
			return ep, nil
		}, nil
	}

	if l.index == nil {
		return nil, fmt.Errorf("entrypoint %q requested before a manifest was loaded", name)
	}
	ep := l.index.Get(name)
	return func(context.Context) (*types.Entrypoint, error) {
		return ep, nil
	}, nil
}

// Dev reports whether the loader polls a dev server.
func (l *Loader) Dev() bool { return l.dev }

// LastAttempts reports how many fetches the most recent successful Load
// took. File mode is always 1.
func (l *Loader) LastAttempts() int {
	if !l.dev {
		return 1
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastAttempts
}

// SourceName describes the backing manifest source.
func (l *Loader) SourceName() string { return l.src.Name() }

// Close releases the underlying source.
func (l *Loader) Close() error { return l.src.Close() }

func (l *Loader) bumpInvalid() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.invalid++
	return l.invalid
}

func (l *Loader) resetInvalid() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.invalid = 0
}
