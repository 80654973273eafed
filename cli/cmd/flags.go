// Package cmd provides CLI commands for the facet binary.
package cmd

import "github.com/urfave/cli/v2"

// Shared flags for all commands.
var (
	// ConfigFlag points at the facet.yaml config file.
	ConfigFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to facet.yaml",
		Value:   "facet.yaml",
	}

	// FormatFlag selects output format: json, table, yaml.
	FormatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: json, table, yaml",
	}

	// NoColorFlag disables colored output.
	NoColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable colored output",
	}

	// TUIFlag enables Bubble Tea interactive mode.
	// Only valid for inspect subcommands and watch.
	TUIFlag = &cli.BoolFlag{
		Name:  "tui",
		Usage: "Enable interactive TUI mode (inspect only)",
	}
)

// Source selection flags, shared by every command that resolves a manifest.
var (
	manifestFlag = &cli.StringFlag{
		Name:  "manifest",
		Usage: "Manifest filename",
	}
	resolveFromFlag = &cli.StringFlag{
		Name:  "resolve-from",
		Usage: "Directory holding the manifest (file mode)",
	}
	devServerFlag = &cli.StringFlag{
		Name:  "dev-server",
		Usage: "Dev asset server base URL (enables dev mode)",
	}
	injectBundleFlag = &cli.BoolFlag{
		Name:  "inject-bundle",
		Usage: "Append the dev server hot-reload script to resolved entrypoints",
	}
	s3Flag = &cli.StringFlag{
		Name:  "s3",
		Usage: "S3 manifest location as s3://bucket/prefix",
	}
	cacheURLFlag = &cli.StringFlag{
		Name:  "cache-url",
		Usage: "Redis URL for the shared manifest cache (S3 source only)",
	}
)

// ReadOnlyFlags returns the shared flags for all read-only commands.
// Includes --tui so that unsupported commands can provide explicit error
// messages instead of generic "flag not defined" errors.
func ReadOnlyFlags() []cli.Flag {
	return []cli.Flag{
		ConfigFlag,
		FormatFlag,
		NoColorFlag,
		TUIFlag,
		manifestFlag,
		resolveFromFlag,
		devServerFlag,
		injectBundleFlag,
		s3Flag,
		cacheURLFlag,
	}
}

// TUIReadOnlyFlags returns flags for commands that support TUI mode.
// This is an alias for ReadOnlyFlags, kept for documentation clarity.
func TUIReadOnlyFlags() []cli.Flag {
	return ReadOnlyFlags()
}
