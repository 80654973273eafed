// Package notify defines the readiness notification boundary.
//
// Notifiers publish manifest readiness events to downstream systems, so
// deploy tooling and health dashboards can react when a replica has
// resolved a servable manifest. The loader owns notifier lifecycle;
// users provide configuration only.
package notify

import (
	"context"
	"time"

	"github.com/pithecene-io/facet/types"
)

// ManifestReadyEvent is the payload published when a manifest resolves
// to a servable state.
type ManifestReadyEvent struct {
	EventType   string   `json:"event_type"` // always "manifest_ready"
	Filename    string   `json:"filename"`
	Source      string   `json:"source"`
	Mode        string   `json:"mode"` // file, dev, or s3
	Entrypoints []string `json:"entrypoints"`
	AssetCount  int      `json:"asset_count"`
	Version     string   `json:"version"`
	Timestamp   string   `json:"timestamp"` // ISO 8601
	// Attempts is the number of fetches it took to reach readiness.
	// Always 1 in file mode.
	Attempts int `json:"attempts"`
}

// EventTypeManifestReady is the event_type value for readiness events.
const EventTypeManifestReady = "manifest_ready"

// NewManifestReadyEvent builds a readiness event from a resolved manifest,
// stamped with the current time.
func NewManifestReadyEvent(m *types.Manifest, filename, sourceName, mode string, attempts int) *ManifestReadyEvent {
	return &ManifestReadyEvent{
		EventType:   EventTypeManifestReady,
		Filename:    filename,
		Source:      sourceName,
		Mode:        mode,
		Entrypoints: m.EntrypointNames,
		AssetCount:  m.AssetCount(),
		Version:     types.Version,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Attempts:    attempts,
	}
}

// Notifier publishes manifest readiness events to a downstream system.
// Implementations must be safe for single-use per resolution.
type Notifier interface {
	// Publish sends a readiness event to the downstream system.
	// Must respect context cancellation and deadlines.
	Publish(ctx context.Context, event *ManifestReadyEvent) error

	// Close releases notifier resources.
	Close() error
}
