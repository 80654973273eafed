// Package tags renders resolved entrypoints as HTML asset tags.
//
// Server templates embed the output directly, so every attribute value is
// HTML-escaped. Assets without an integrity hash (the dev-server bundle)
// are emitted without integrity or crossorigin attributes, since browsers
// refuse to load a subresource whose integrity attribute is empty.
package tags

import (
	"html"
	"strings"

	"github.com/pithecene-io/facet/types"
)

// Options controls tag rendering.
type Options struct {
	// Defer adds the defer attribute to script tags.
	Defer bool
	// Indent is prepended to every tag line. Empty means no indentation.
	Indent string
}

// Scripts renders the entrypoint's js assets as <script> tags, one per
// line, in manifest order.
func Scripts(ep *types.Entrypoint, opts Options) string {
	if ep == nil {
		return ""
	}
	var b strings.Builder
	for _, a := range ep.JS {
		writeScript(&b, a, opts)
	}
	return b.String()
}

// Styles renders the entrypoint's css assets as <link> tags, one per
// line, in manifest order.
func Styles(ep *types.Entrypoint, opts Options) string {
	if ep == nil {
		return ""
	}
	var b strings.Builder
	for _, a := range ep.CSS {
		writeLink(&b, a, opts)
	}
	return b.String()
}

// Render renders styles followed by scripts, the order templates want
// them in a <head> block.
func Render(ep *types.Entrypoint, opts Options) string {
	return Styles(ep, opts) + Scripts(ep, opts)
}

func writeScript(b *strings.Builder, a types.Asset, opts Options) {
	b.WriteString(opts.Indent)
	b.WriteString(`<script src="`)
	b.WriteString(html.EscapeString(a.Src))
	b.WriteString(`"`)
	writeIntegrity(b, a)
	if opts.Defer {
		b.WriteString(` defer`)
	}
	b.WriteString("></script>\n")
}

func writeLink(b *strings.Builder, a types.Asset, opts Options) {
	b.WriteString(opts.Indent)
	b.WriteString(`<link rel="stylesheet" href="`)
	b.WriteString(html.EscapeString(a.Src))
	b.WriteString(`"`)
	writeIntegrity(b, a)
	b.WriteString(">\n")
}

func writeIntegrity(b *strings.Builder, a types.Asset) {
	if a.Integrity == "" {
		return
	}
	b.WriteString(` integrity="`)
	b.WriteString(html.EscapeString(a.Integrity))
	b.WriteString(`" crossorigin="anonymous"`)
}
