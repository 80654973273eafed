package loader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pithecene-io/facet/log"
	"github.com/pithecene-io/facet/types"
)

const validManifest = `{
	"static/js/app.js": {"src": "/static/js/app.js", "integrity": "sha384-app"},
	"entrypoints": {
		"app": {
			"assets": {
				"js": [
					{"src": "/static/js/runtime.js", "integrity": "sha384-runtime"},
					{"src": "/static/js/app.js", "integrity": "sha384-app"}
				],
				"css": [
					{"src": "/static/css/app.css", "integrity": "sha384-css"}
				]
			}
		}
	}
}`

const notReadyManifest = `{"entrypoints": {"app": {"assets": {"js": []}}}}`

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "manifest.json"), []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return dir
}

func fileLoader(t *testing.T, content string) *Loader {
	t.Helper()
	dir := writeManifest(t, content)
	l, err := New(t.Context(), "manifest.json", Config{ResolveFrom: dir, Logger: log.Nop()})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l
}

// devResponses serves a scripted sequence of responses, repeating the last
// one once the script is exhausted.
type devResponses struct {
	mu      sync.Mutex
	script  []func(w http.ResponseWriter)
	fetches atomic.Int32
	times   []time.Time
}

func (d *devResponses) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		d.mu.Lock()
		n := int(d.fetches.Add(1)) - 1
		d.times = append(d.times, time.Now())
		i := n
		if i >= len(d.script) {
			i = len(d.script) - 1
		}
		respond := d.script[i]
		d.mu.Unlock()
		respond(w)
	}
}

func serveBody(body string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) { _, _ = w.Write([]byte(body)) }
}

func serveStatus(code int) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) { w.WriteHeader(code) }
}

func devLoader(t *testing.T, url string, cfg Config) *Loader {
	t.Helper()
	cfg.DevServerURL = url
	if cfg.InitialBackoff == 0 {
		cfg.InitialBackoff = 10 * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Nop()
	}
	l, err := New(t.Context(), "manifest.json", cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestFileMode_LoadIsIdempotent(t *testing.T) {
	dir := writeManifest(t, validManifest)
	l, err := New(t.Context(), "manifest.json", Config{ResolveFrom: dir, Logger: log.Nop()})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer func() { _ = l.Close() }()

	// Remove the file: subsequent loads must come from the cache.
	if err := os.Remove(filepath.Join(dir, "manifest.json")); err != nil {
		t.Fatalf("remove: %v", err)
	}

	first, err := l.Load(t.Context())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	second, err := l.Load(t.Context())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if first != second {
		t.Error("expected identical cached manifest instance")
	}
	if len(first.EntrypointNames) != 1 || first.EntrypointNames[0] != "app" {
		t.Errorf("unexpected entrypoints: %v", first.EntrypointNames)
	}
}

func TestFileMode_EntrypointLoader(t *testing.T) {
	l := fileLoader(t, validManifest)

	resolve, err := l.EntrypointLoader("app")
	if err != nil {
		t.Fatalf("entrypoint loader: %v", err)
	}

	ep, err := resolve(t.Context())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if ep == nil {
		t.Fatal("expected entrypoint")
	}
	if len(ep.JS) != 2 {
		t.Fatalf("expected 2 js assets, got %d", len(ep.JS))
	}
	if ep.JS[0].Src != "/static/js/runtime.js" {
		t.Errorf("expected runtime chunk first, got %s", ep.JS[0].Src)
	}
	if len(ep.CSS) != 1 {
		t.Errorf("expected 1 css asset, got %d", len(ep.CSS))
	}
}

func TestFileMode_UnknownEntrypointResolvesNil(t *testing.T) {
	l := fileLoader(t, validManifest)

	resolve, err := l.EntrypointLoader("no-such-entrypoint")
	if err != nil {
		t.Fatalf("entrypoint loader: %v", err)
	}

	ep, err := resolve(t.Context())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if ep != nil {
		t.Errorf("expected nil entrypoint, got %+v", ep)
	}
}

func TestFileMode_MissingManifestIsFatal(t *testing.T) {
	_, err := New(t.Context(), "manifest.json", Config{ResolveFrom: t.TempDir(), Logger: log.Nop()})
	if err == nil {
		t.Fatal("expected error for missing manifest")
	}
}

func TestFileMode_CorruptManifestIsFatal(t *testing.T) {
	dir := writeManifest(t, `{not json`)
	_, err := New(t.Context(), "manifest.json", Config{ResolveFrom: dir, Logger: log.Nop()})
	if err == nil {
		t.Fatal("expected error for corrupt manifest")
	}
}

func TestFileMode_NoDevBundleInjection(t *testing.T) {
	dir := writeManifest(t, validManifest)
	l, err := New(t.Context(), "manifest.json", Config{
		ResolveFrom:     dir,
		InjectDevBundle: true,
		Logger:          log.Nop(),
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer func() { _ = l.Close() }()

	resolve, err := l.EntrypointLoader("app")
	if err != nil {
		t.Fatalf("entrypoint loader: %v", err)
	}
	ep, err := resolve(t.Context())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	for _, a := range ep.JS {
		if a.Src == DevBundleSrc {
			t.Error("dev bundle must not be injected in file mode")
		}
	}
}

func TestDevMode_RetriesUntilValid(t *testing.T) {
	responses := &devResponses{script: []func(http.ResponseWriter){
		serveBody(notReadyManifest),
		serveBody(notReadyManifest),
		serveBody(validManifest),
	}}
	ts := httptest.NewServer(responses.handler())
	defer ts.Close()

	l := devLoader(t, ts.URL, Config{})

	m, err := l.Load(t.Context())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := responses.fetches.Load(); got != 3 {
		t.Errorf("expected 3 fetches, got %d", got)
	}
	if len(m.EntrypointNames) != 1 || m.EntrypointNames[0] != "app" {
		t.Errorf("unexpected manifest: %v", m.EntrypointNames)
	}
}

func TestDevMode_BackoffGrows(t *testing.T) {
	responses := &devResponses{script: []func(http.ResponseWriter){
		serveBody(notReadyManifest),
		serveBody(notReadyManifest),
		serveBody(validManifest),
	}}
	ts := httptest.NewServer(responses.handler())
	defer ts.Close()

	l := devLoader(t, ts.URL, Config{InitialBackoff: 50 * time.Millisecond})

	if _, err := l.Load(t.Context()); err != nil {
		t.Fatalf("load: %v", err)
	}

	responses.mu.Lock()
	times := responses.times
	responses.mu.Unlock()

	if len(times) != 3 {
		t.Fatalf("expected 3 fetch timestamps, got %d", len(times))
	}

	firstGap := times[1].Sub(times[0])
	secondGap := times[2].Sub(times[1])

	if firstGap < 50*time.Millisecond {
		t.Errorf("first gap %v shorter than initial backoff", firstGap)
	}
	// Second delay is initial × 1.5
	if secondGap < 75*time.Millisecond {
		t.Errorf("second gap %v shorter than multiplied backoff", secondGap)
	}
}

func TestDevMode_RetriesHTTPFailures(t *testing.T) {
	// HTTP failures retry without touching the invalid-manifest counter:
	// MaxInvalid of 1 must not trip on status errors.
	responses := &devResponses{script: []func(http.ResponseWriter){
		serveStatus(http.StatusNotFound),
		serveStatus(http.StatusInternalServerError),
		serveStatus(http.StatusBadGateway),
		serveBody(validManifest),
	}}
	ts := httptest.NewServer(responses.handler())
	defer ts.Close()

	l := devLoader(t, ts.URL, Config{MaxInvalid: 1})

	if _, err := l.Load(t.Context()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := responses.fetches.Load(); got != 4 {
		t.Errorf("expected 4 fetches, got %d", got)
	}
}

func TestDevMode_InvalidCeilingIsFatal(t *testing.T) {
	responses := &devResponses{script: []func(http.ResponseWriter){
		serveBody(notReadyManifest),
	}}
	ts := httptest.NewServer(responses.handler())
	defer ts.Close()

	l := devLoader(t, ts.URL, Config{MaxInvalid: 2})

	_, err := l.Load(t.Context())
	if err == nil {
		t.Fatal("expected error after exceeding invalid-manifest ceiling")
	}
	// ceiling 2: two counted invalids, the third trips
	if got := responses.fetches.Load(); got != 3 {
		t.Errorf("expected 3 fetches, got %d", got)
	}
}

func TestDevMode_MalformedCountsTowardCeiling(t *testing.T) {
	responses := &devResponses{script: []func(http.ResponseWriter){
		serveBody(`{broken`),
	}}
	ts := httptest.NewServer(responses.handler())
	defer ts.Close()

	l := devLoader(t, ts.URL, Config{MaxInvalid: 1})

	if _, err := l.Load(t.Context()); err == nil {
		t.Fatal("expected error for persistently malformed manifest")
	}
}

func TestDevMode_CounterResetsOnSuccess(t *testing.T) {
	responses := &devResponses{script: []func(http.ResponseWriter){
		serveBody(notReadyManifest),
		serveBody(notReadyManifest),
		serveBody(validManifest),
	}}
	ts := httptest.NewServer(responses.handler())
	defer ts.Close()

	l := devLoader(t, ts.URL, Config{MaxInvalid: 2})

	// First load consumes the two invalid responses without tripping.
	if _, err := l.Load(t.Context()); err != nil {
		t.Fatalf("first load: %v", err)
	}
	// Counter reset: a later load sees the valid manifest immediately.
	if _, err := l.Load(t.Context()); err != nil {
		t.Fatalf("second load: %v", err)
	}
}

func TestDevMode_NoCachingBetweenLoads(t *testing.T) {
	responses := &devResponses{script: []func(http.ResponseWriter){
		serveBody(validManifest),
	}}
	ts := httptest.NewServer(responses.handler())
	defer ts.Close()

	l := devLoader(t, ts.URL, Config{})

	for range 3 {
		if _, err := l.Load(t.Context()); err != nil {
			t.Fatalf("load: %v", err)
		}
	}
	if got := responses.fetches.Load(); got != 3 {
		t.Errorf("expected one fetch per load, got %d", got)
	}
}

func TestDevMode_InjectDevBundle(t *testing.T) {
	responses := &devResponses{script: []func(http.ResponseWriter){
		serveBody(validManifest),
	}}
	ts := httptest.NewServer(responses.handler())
	defer ts.Close()

	l := devLoader(t, ts.URL, Config{InjectDevBundle: true})

	resolve, err := l.EntrypointLoader("app")
	if err != nil {
		t.Fatalf("entrypoint loader: %v", err)
	}
	ep, err := resolve(t.Context())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if ep == nil {
		t.Fatal("expected entrypoint")
	}

	last := ep.JS[len(ep.JS)-1]
	if last.Src != DevBundleSrc {
		t.Errorf("expected dev bundle appended last, got %s", last.Src)
	}
	if last.Integrity != "" {
		t.Errorf("dev bundle integrity must be empty, got %s", last.Integrity)
	}
	if len(ep.JS) != 3 {
		t.Errorf("expected 2 manifest assets plus dev bundle, got %d", len(ep.JS))
	}
}

func TestDevMode_NoInjectionForUnknownEntrypoint(t *testing.T) {
	responses := &devResponses{script: []func(http.ResponseWriter){
		serveBody(validManifest),
	}}
	ts := httptest.NewServer(responses.handler())
	defer ts.Close()

	l := devLoader(t, ts.URL, Config{InjectDevBundle: true})

	resolve, err := l.EntrypointLoader("no-such-entrypoint")
	if err != nil {
		t.Fatalf("entrypoint loader: %v", err)
	}
	ep, err := resolve(t.Context())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if ep != nil {
		t.Errorf("expected nil for unknown entrypoint, got %+v", ep)
	}
}

func TestDevMode_ContextCancelAbortsRetry(t *testing.T) {
	responses := &devResponses{script: []func(http.ResponseWriter){
		serveBody(notReadyManifest),
	}}
	ts := httptest.NewServer(responses.handler())
	defer ts.Close()

	l := devLoader(t, ts.URL, Config{InitialBackoff: 10 * time.Second})

	ctx, cancel := context.WithTimeout(t.Context(), 100*time.Millisecond)
	defer cancel()

	_, err := l.Load(ctx)
	if err == nil {
		t.Fatal("expected error on canceled context")
	}
}

func TestNew_RequiresFilename(t *testing.T) {
	_, err := New(t.Context(), "", Config{ResolveFrom: t.TempDir()})
	if err == nil {
		t.Fatal("expected error for empty filename")
	}
}

func TestNew_DefaultsApplied(t *testing.T) {
	l := fileLoader(t, validManifest)

	if l.cfg.InitialBackoff != DefaultInitialBackoff {
		t.Errorf("expected default initial backoff, got %v", l.cfg.InitialBackoff)
	}
	if l.cfg.BackoffMultiplier != DefaultBackoffMultiplier {
		t.Errorf("expected default multiplier, got %v", l.cfg.BackoffMultiplier)
	}
	if l.cfg.MaxInvalid != DefaultMaxInvalid {
		t.Errorf("expected default ceiling, got %d", l.cfg.MaxInvalid)
	}
	if l.Dev() {
		t.Error("expected file mode")
	}
}

func TestDevMode_ConcurrentLoads(t *testing.T) {
	responses := &devResponses{script: []func(http.ResponseWriter){
		serveBody(validManifest),
	}}
	ts := httptest.NewServer(responses.handler())
	defer ts.Close()

	l := devLoader(t, ts.URL, Config{})

	var wg sync.WaitGroup
	errs := make([]error, 4)
	results := make([]*types.Manifest, 4)
	for i := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = l.Load(t.Context())
		}()
	}
	wg.Wait()

	for i := range 4 {
		if errs[i] != nil {
			t.Fatalf("load %d: %v", i, errs[i])
		}
		if results[i] == nil {
			t.Fatalf("load %d: nil manifest", i)
		}
	}
	// Each caller drives its own fetch — no de-duplication.
	if got := responses.fetches.Load(); got != 4 {
		t.Errorf("expected 4 fetches, got %d", got)
	}
}
