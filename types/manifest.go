//nolint:revive // types is a common Go package naming convention
package types

// Asset group names used in the manifest's entrypoint section.
const (
	GroupJS  = "js"
	GroupCSS = "css"
)

// Asset is a single emitted file reference with its subresource-integrity
// hash. Integrity may be empty for assets served by the dev server.
type Asset struct {
	Src       string `json:"src"`
	Integrity string `json:"integrity"`
}

// Entrypoint is the normalized view of one entrypoint: the ordered JS and
// CSS asset lists a page needs. Ordering is preserved from the manifest.
type Entrypoint struct {
	JS  []Asset `json:"js"`
	CSS []Asset `json:"css"`
}

// RawEntrypoint is the wire shape of one entry under the reserved
// "entrypoints" key. Assets is keyed by group name ("js", "css", and any
// other groups the build tool emits).
type RawEntrypoint struct {
	Assets map[string][]Asset `json:"assets"`
}

// Manifest is the parsed build-tool output: a mapping from emitted file
// paths to assets, plus the entrypoint section.
//
// EntrypointNames preserves the JSON object key order of the entrypoints
// section. The first name is the readiness probe used during dev-server
// polling, so source order matters.
type Manifest struct {
	Files           map[string]Asset
	EntrypointNames []string
	Entrypoints     map[string]RawEntrypoint
}

// First returns the first entrypoint in manifest source order.
// ok is false when the manifest has no entrypoints.
func (m *Manifest) First() (name string, raw RawEntrypoint, ok bool) {
	if len(m.EntrypointNames) == 0 {
		return "", RawEntrypoint{}, false
	}
	name = m.EntrypointNames[0]
	return name, m.Entrypoints[name], true
}

// AssetCount returns the total number of assets across all entrypoint
// groups. Used for reporting, not resolution.
func (m *Manifest) AssetCount() int {
	n := 0
	for _, raw := range m.Entrypoints {
		for _, group := range raw.Assets {
			n += len(group)
		}
	}
	return n
}
