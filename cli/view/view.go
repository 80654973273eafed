// Package view defines the response payloads shared by CLI rendering
// and TUI mode. TUI views render the same payloads as json/table/yaml
// output; there is no TUI-exclusive data.
package view

import "github.com/pithecene-io/facet/types"

// AssetView is one asset row in resolve and inspect output.
type AssetView struct {
	Src       string `json:"src"`
	Integrity string `json:"integrity,omitempty"`
	Group     string `json:"group"`
}

// EntrypointView is the deep view of a single entrypoint.
type EntrypointView struct {
	Name   string      `json:"name"`
	JS     []AssetView `json:"js"`
	CSS    []AssetView `json:"css"`
	Ready  bool        `json:"ready"`
	Source string      `json:"source"`
}

// ManifestSummary is the deep view of a resolved manifest.
type ManifestSummary struct {
	Filename    string   `json:"filename"`
	Source      string   `json:"source"`
	Mode        string   `json:"mode"`
	Entrypoints []string `json:"entrypoints"`
	FileCount   int      `json:"file_count"`
	AssetCount  int      `json:"asset_count"`
	Ready       bool     `json:"ready"`
}

// EntrypointRow is the thin list row for list entrypoints.
type EntrypointRow struct {
	Name     string `json:"name"`
	JSCount  int    `json:"js_count"`
	CSSCount int    `json:"css_count"`
}

// ResolveResponse is the resolve command payload when not emitting tags.
type ResolveResponse struct {
	Entrypoint string      `json:"entrypoint"`
	Source     string      `json:"source"`
	Assets     []AssetView `json:"assets"`
}

// WaitReport is the wait command payload.
type WaitReport struct {
	Filename    string   `json:"filename"`
	Source      string   `json:"source"`
	Attempts    int      `json:"attempts"`
	ElapsedMs   int64    `json:"elapsed_ms"`
	Entrypoints []string `json:"entrypoints"`
}

// NewEntrypointView builds an entrypoint view from a resolved entrypoint.
func NewEntrypointView(name string, ep *types.Entrypoint, sourceName string) *EntrypointView {
	v := &EntrypointView{
		Name:   name,
		JS:     []AssetView{},
		CSS:    []AssetView{},
		Source: sourceName,
	}
	if ep == nil {
		return v
	}
	for _, a := range ep.JS {
		v.JS = append(v.JS, AssetView{Src: a.Src, Integrity: a.Integrity, Group: types.GroupJS})
	}
	for _, a := range ep.CSS {
		v.CSS = append(v.CSS, AssetView{Src: a.Src, Integrity: a.Integrity, Group: types.GroupCSS})
	}
	v.Ready = len(v.JS) > 0
	return v
}

// NewManifestSummary builds a manifest summary.
func NewManifestSummary(m *types.Manifest, filename, sourceName, mode string, ready bool) *ManifestSummary {
	return &ManifestSummary{
		Filename:    filename,
		Source:      sourceName,
		Mode:        mode,
		Entrypoints: m.EntrypointNames,
		FileCount:   len(m.Files),
		AssetCount:  m.AssetCount(),
		Ready:       ready,
	}
}
