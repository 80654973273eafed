package manifest

import (
	"slices"

	"github.com/pithecene-io/facet/types"
)

// Index is the per-manifest entrypoint lookup, built once by grouping each
// raw entrypoint's asset groups into the normalized {js, css} shape.
type Index struct {
	byName map[string]*types.Entrypoint
	names  []string
}

// NewIndex builds an Index from a parsed manifest.
func NewIndex(m *types.Manifest) *Index {
	idx := &Index{
		byName: make(map[string]*types.Entrypoint, len(m.Entrypoints)),
		names:  slices.Clone(m.EntrypointNames),
	}
	for name, raw := range m.Entrypoints {
		idx.byName[name] = Normalize(raw)
	}
	return idx
}

// Get returns the entrypoint for name, or nil if the manifest has no such
// entrypoint. Absence is a normal outcome (e.g. optional stylesheet
// entrypoints), not an error.
func (idx *Index) Get(name string) *types.Entrypoint {
	return idx.byName[name]
}

// Names returns the entrypoint names in manifest source order.
func (idx *Index) Names() []string {
	return slices.Clone(idx.names)
}

// Len returns the number of indexed entrypoints.
func (idx *Index) Len() int {
	return len(idx.byName)
}

// Normalize converts a raw entrypoint descriptor into the {js, css} view.
// Asset ordering within each group is preserved. Groups other than js and
// css are dropped; nothing downstream consumes them.
func Normalize(raw types.RawEntrypoint) *types.Entrypoint {
	return &types.Entrypoint{
		JS:  slices.Clone(raw.Assets[types.GroupJS]),
		CSS: slices.Clone(raw.Assets[types.GroupCSS]),
	}
}
