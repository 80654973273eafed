package cache

import (
	"context"

	"github.com/pithecene-io/facet/log"
	"github.com/pithecene-io/facet/source"
)

// CachingSource wraps a manifest source with a shared cache.
//
// Cache failures are never fatal: a broken cache degrades to fetching from
// the wrapped source, with a warning. Dev-mode sources must not be wrapped
// (dev resolution is deliberately uncached).
type CachingSource struct {
	inner  source.Source
	cache  Cache
	key    string
	logger *log.Logger
}

// WrapSource layers cache in front of inner, keyed by the manifest filename.
func WrapSource(inner source.Source, cache Cache, filename string, logger *log.Logger) *CachingSource {
	if logger == nil {
		logger = log.Nop()
	}
	return &CachingSource{inner: inner, cache: cache, key: filename, logger: logger}
}

// Fetch serves from the cache when possible, falling through to the
// wrapped source on a miss and writing the result back.
func (s *CachingSource) Fetch(ctx context.Context) ([]byte, error) {
	entry, ok, err := s.cache.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn("manifest cache read failed", map[string]any{
			"key":   s.key,
			"error": err.Error(),
		})
	}
	if ok {
		return entry.Body, nil
	}

	body, err := s.inner.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Put(ctx, s.key, NewEntry(body, s.inner.Name())); err != nil {
		s.logger.Warn("manifest cache write failed", map[string]any{
			"key":   s.key,
			"error": err.Error(),
		})
	}
	return body, nil
}

// Name describes the wrapped source.
func (s *CachingSource) Name() string { return s.inner.Name() + " (cached)" }

// Close closes the cache and the wrapped source.
func (s *CachingSource) Close() error {
	cacheErr := s.cache.Close()
	if err := s.inner.Close(); err != nil {
		return err
	}
	return cacheErr
}

// Verify CachingSource implements source.Source.
var _ source.Source = (*CachingSource)(nil)
