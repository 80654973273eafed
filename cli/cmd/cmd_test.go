package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/facet/manifest"
	"github.com/pithecene-io/facet/types"
)

func TestReadOnlyFlags_IncludesTUI(t *testing.T) {
	flags := ReadOnlyFlags()

	hasTUI := false
	for _, f := range flags {
		if f.Names()[0] == "tui" {
			hasTUI = true
			break
		}
	}

	if !hasTUI {
		t.Error("ReadOnlyFlags should include --tui flag for explicit error handling")
	}
}

// runSetup parses args through a throwaway app and captures the setup.
func runSetup(t *testing.T, args ...string) *setup {
	t.Helper()
	var s *setup
	app := &cli.App{
		Flags: ReadOnlyFlags(),
		Action: func(c *cli.Context) error {
			var err error
			s, err = loadSetup(c)
			return err
		},
	}
	if err := app.Run(append([]string{"facet"}, args...)); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return s
}

func TestLoadSetup_Defaults(t *testing.T) {
	s := runSetup(t)

	if s.filename != DefaultFilename {
		t.Errorf("expected default filename, got %s", s.filename)
	}
	if s.mode != "file" {
		t.Errorf("expected file mode, got %s", s.mode)
	}
}

func TestLoadSetup_DevServerFlagSelectsDevMode(t *testing.T) {
	s := runSetup(t, "--dev-server", "http://localhost:8080", "--inject-bundle")

	if s.mode != "dev" {
		t.Errorf("expected dev mode, got %s", s.mode)
	}
	if !s.cfg.DevServer.InjectBundle {
		t.Error("expected inject_bundle set")
	}
}

func TestLoadSetup_S3FlagSelectsS3Mode(t *testing.T) {
	s := runSetup(t, "--s3", "s3://assets-prod/releases/current")

	if s.mode != "s3" {
		t.Errorf("expected s3 mode, got %s", s.mode)
	}
	if s.cfg.S3.Bucket != "assets-prod" {
		t.Errorf("expected bucket assets-prod, got %s", s.cfg.S3.Bucket)
	}
	if s.cfg.S3.Prefix != "releases/current" {
		t.Errorf("expected prefix releases/current, got %s", s.cfg.S3.Prefix)
	}
}

func TestLoadSetup_FlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "facet.yaml")
	content := "filename: from-config.json\nresolve_from: /srv/config\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	s := runSetup(t, "--config", path, "--manifest", "from-flag.json")

	if s.filename != "from-flag.json" {
		t.Errorf("flag should override config filename, got %s", s.filename)
	}
	if s.cfg.ResolveFrom != "/srv/config" {
		t.Errorf("config resolve_from should survive, got %s", s.cfg.ResolveFrom)
	}
}

func TestLoadSetup_RejectsConflictingModes(t *testing.T) {
	var setupErr error
	app := &cli.App{
		Flags: ReadOnlyFlags(),
		Action: func(c *cli.Context) error {
			_, setupErr = loadSetup(c)
			return nil
		},
	}
	args := []string{"facet", "--dev-server", "http://localhost:8080", "--s3", "s3://bucket"}
	if err := app.Run(args); err != nil {
		t.Fatalf("run: %v", err)
	}
	if setupErr == nil {
		t.Fatal("expected error for dev-server + s3")
	}
}

func TestManifestExit_Codes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", manifest.NewError(manifest.ErrNotFound, "read", "file:x", nil), exitManifestBad},
		{"malformed", manifest.NewError(manifest.ErrMalformed, "parse", "file:x", nil), exitManifestBad},
		{"not ready", manifest.NewError(manifest.ErrNotReady, "check", "dev:x", nil), exitManifestBad},
		{"unavailable", manifest.NewError(manifest.ErrUnavailable, "fetch", "dev:x", nil), exitManifestBad},
		{"other", errors.New("boom"), exitResolveFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := manifestExit(tt.err)
			var coder cli.ExitCoder
			if !errors.As(err, &coder) {
				t.Fatalf("expected ExitCoder, got %v", err)
			}
			if coder.ExitCode() != tt.want {
				t.Errorf("exit code = %d, want %d", coder.ExitCode(), tt.want)
			}
		})
	}
}

func TestManifestExit_NilError(t *testing.T) {
	if err := manifestExit(nil); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestAssetViews_OrderAndGroups(t *testing.T) {
	ep := &types.Entrypoint{
		JS: []types.Asset{
			{Src: "/static/runtime.js", Integrity: "sha384-AAA"},
			{Src: "/static/app.js", Integrity: "sha384-BBB"},
		},
		CSS: []types.Asset{
			{Src: "/static/app.css", Integrity: "sha384-CCC"},
		},
	}

	views := assetViews(ep)
	if len(views) != 3 {
		t.Fatalf("expected 3 assets, got %d", len(views))
	}
	if views[0].Src != "/static/runtime.js" || views[0].Group != types.GroupJS {
		t.Errorf("unexpected first asset: %+v", views[0])
	}
	if views[2].Group != types.GroupCSS {
		t.Errorf("expected css last: %+v", views[2])
	}
}

func TestGroupForPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"app.js", types.GroupJS},
		{"app.css", types.GroupCSS},
		{"logo.svg", "other"},
	}

	for _, tt := range tests {
		if got := groupForPath(tt.path); got != tt.want {
			t.Errorf("groupForPath(%q) = %s, want %s", tt.path, got, tt.want)
		}
	}
}

func TestSetupNewNotifier_NoneConfigured(t *testing.T) {
	s := runSetup(t)
	n, err := s.newNotifier()
	if err != nil {
		t.Fatalf("newNotifier: %v", err)
	}
	if n != nil {
		t.Error("expected nil notifier when none configured")
	}
}
