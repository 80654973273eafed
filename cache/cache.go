// Package cache provides a shared manifest cache for multi-replica
// deployments. Replicas that resolve the manifest from S3 at startup hit
// the cache first, so one fetch serves the whole fleet until the TTL
// rolls the deploy forward.
package cache

import (
	"context"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Cache stores raw manifest bodies keyed by manifest filename.
type Cache interface {
	// Get returns the cached entry for key. ok is false on a miss.
	Get(ctx context.Context, key string) (*Entry, bool, error)

	// Put stores an entry under key.
	Put(ctx context.Context, key string, entry *Entry) error

	// Close releases cache resources.
	Close() error
}

// Entry is the cached envelope: the raw manifest body plus provenance.
// Encoded with msgpack — the body is opaque bytes, and entries are read
// on every cold start, so the compact binary form is worth it.
type Entry struct {
	// Body is the raw manifest JSON.
	Body []byte `msgpack:"body"`
	// Source names the origin the body was fetched from.
	Source string `msgpack:"source"`
	// FetchedAt is the fetch time in Unix milliseconds.
	FetchedAt int64 `msgpack:"fetched_at"`
}

// NewEntry builds an entry stamped with the current time.
func NewEntry(body []byte, sourceName string) *Entry {
	return &Entry{
		Body:      body,
		Source:    sourceName,
		FetchedAt: time.Now().UnixMilli(),
	}
}

// Encode serializes the entry.
func (e *Entry) Encode() ([]byte, error) {
	return msgpack.Marshal(e)
}

// DecodeEntry deserializes an entry.
func DecodeEntry(data []byte) (*Entry, error) {
	var e Entry
	if err := msgpack.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
