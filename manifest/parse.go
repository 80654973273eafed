package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/pithecene-io/facet/types"
)

// EntrypointsKey is the reserved top-level key holding the entrypoint section.
const EntrypointsKey = "entrypoints"

// Parse decodes raw manifest JSON into a types.Manifest.
//
// The top level must be a JSON object. Every key except "entrypoints" maps
// an emitted file path to its {src, integrity} pair. The entrypoints section
// is decoded with a token walk so its object key order survives: the first
// entrypoint in source order is the dev-server readiness probe.
func Parse(data []byte) (*types.Manifest, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	if err := expectDelim(dec, '{'); err != nil {
		return nil, WrapParseError(err, "")
	}

	m := &types.Manifest{
		Files:       make(map[string]types.Asset),
		Entrypoints: make(map[string]types.RawEntrypoint),
	}

	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return nil, WrapParseError(err, "")
		}

		if key == EntrypointsKey {
			if err := parseEntrypoints(dec, m); err != nil {
				return nil, WrapParseError(err, "")
			}
			continue
		}

		var asset types.Asset
		if err := dec.Decode(&asset); err != nil {
			return nil, WrapParseError(fmt.Errorf("file entry %q: %w", key, err), "")
		}
		m.Files[key] = asset
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, WrapParseError(err, "")
	}

	// The object must be the whole document.
	if _, err := dec.Token(); err != io.EOF {
		return nil, WrapParseError(errors.New("trailing data after manifest object"), "")
	}

	return m, nil
}

// parseEntrypoints walks the entrypoints object, recording key order.
func parseEntrypoints(dec *json.Decoder, m *types.Manifest) error {
	if err := expectDelim(dec, '{'); err != nil {
		return fmt.Errorf("entrypoints: %w", err)
	}

	for dec.More() {
		name, err := readKey(dec)
		if err != nil {
			return fmt.Errorf("entrypoints: %w", err)
		}

		var raw types.RawEntrypoint
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("entrypoint %q: %w", name, err)
		}

		if _, dup := m.Entrypoints[name]; !dup {
			m.EntrypointNames = append(m.EntrypointNames, name)
		}
		m.Entrypoints[name] = raw
	}

	return expectDelim(dec, '}')
}

// readKey reads an object key token.
func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}
	return key, nil
}

// expectDelim reads one token and requires it to be the given delimiter.
func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}
