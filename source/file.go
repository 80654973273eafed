package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pithecene-io/facet/manifest"
)

// BuildOutputDir is the client build output directory relative to the
// repository root, as produced by the upstream build tool.
var BuildOutputDir = filepath.Join("client", "dist", "static")

// maxWalkUp bounds the upward search for the build output directory.
const maxWalkUp = 8

// FileSource reads the manifest from a directory on disk.
type FileSource struct {
	path string
}

// NewFileSource creates a file source for dir/filename.
func NewFileSource(dir, filename string) *FileSource {
	return &FileSource{path: filepath.Join(dir, filename)}
}

// Fetch reads the manifest file. Context is accepted for interface
// symmetry; a local read is not cancellable.
func (s *FileSource) Fetch(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, manifest.WrapReadError(err, s.path)
	}
	return data, nil
}

// Name returns the manifest path.
func (s *FileSource) Name() string { return "file:" + s.path }

// Close releases source resources.
func (s *FileSource) Close() error { return nil }

// DefaultManifestDir locates the client build output directory by walking
// up from the installed binary's directory. The server binary is deployed
// several levels below the repository root, so the walk is bounded rather
// than fixed-depth.
func DefaultManifestDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	return findBuildOutput(filepath.Dir(exe))
}

// findBuildOutput walks up from start looking for BuildOutputDir.
func findBuildOutput(start string) (string, error) {
	dir := start
	for range maxWalkUp {
		candidate := filepath.Join(dir, BuildOutputDir)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", manifest.NewError(manifest.ErrNotFound, "locate", start,
		fmt.Errorf("no %s directory above %s", BuildOutputDir, start))
}

// Verify FileSource implements Source.
var _ Source = (*FileSource)(nil)
