package manifest

import (
	"fmt"

	"github.com/pithecene-io/facet/types"
)

// CheckReady validates that a manifest is usable for resolution.
//
// A manifest is ready when its entrypoint section is non-empty and the
// first entrypoint in source order has a non-empty JS asset list. While the
// upstream build tool is still writing output, the dev server serves a
// manifest that fails this check; callers treat ErrNotReady as retryable.
//
// Returns nil when ready, or an ErrNotReady-classified error naming the
// failing condition.
func CheckReady(m *types.Manifest) error {
	name, raw, ok := m.First()
	if !ok {
		return NewError(ErrNotReady, "validate", "", fmt.Errorf("no entrypoints"))
	}
	if len(raw.Assets[types.GroupJS]) == 0 {
		return NewError(ErrNotReady, "validate", "", fmt.Errorf("entrypoint %q has no js assets", name))
	}
	return nil
}
