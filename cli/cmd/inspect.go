package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/facet/cli/render"
	"github.com/pithecene-io/facet/cli/view"
	"github.com/pithecene-io/facet/manifest"
)

// InspectCommand returns the inspect command with subcommands.
// Inspect returns a deep view of a single entity.
func InspectCommand() *cli.Command {
	return &cli.Command{
		Name:  "inspect",
		Usage: "Inspect the manifest or a single entrypoint",
		Subcommands: []*cli.Command{
			inspectManifestCommand(),
			inspectEntrypointCommand(),
		},
	}
}

func inspectManifestCommand() *cli.Command {
	return &cli.Command{
		Name:   "manifest",
		Usage:  "Inspect the resolved manifest",
		Flags:  TUIReadOnlyFlags(),
		Action: inspectManifestAction,
	}
}

func inspectManifestAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	s, err := loadSetup(c)
	if err != nil {
		return cli.Exit(err.Error(), exitResolveFail)
	}

	l, err := s.newLoader(c.Context)
	if err != nil {
		return manifestExit(err)
	}
	defer func() { _ = l.Close() }()

	m, err := l.Load(c.Context)
	if err != nil {
		return manifestExit(err)
	}

	ready := manifest.CheckReady(m) == nil
	summary := view.NewManifestSummary(m, s.filename, l.SourceName(), s.mode, ready)

	if c.Bool("tui") {
		return r.RenderTUI("inspect_manifest", summary)
	}
	return r.Render(summary)
}

func inspectEntrypointCommand() *cli.Command {
	return &cli.Command{
		Name:      "entrypoint",
		Usage:     "Inspect an entrypoint by name",
		ArgsUsage: "<name>",
		Flags:     TUIReadOnlyFlags(),
		Action:    inspectEntrypointAction,
	}
}

func inspectEntrypointAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("entrypoint name required", exitResolveFail)
	}
	name := c.Args().First()

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	s, err := loadSetup(c)
	if err != nil {
		return cli.Exit(err.Error(), exitResolveFail)
	}

	l, err := s.newLoader(c.Context)
	if err != nil {
		return manifestExit(err)
	}
	defer func() { _ = l.Close() }()

	fn, err := l.EntrypointLoader(name)
	if err != nil {
		return manifestExit(err)
	}
	ep, err := fn(c.Context)
	if err != nil {
		return manifestExit(err)
	}
	if ep == nil {
		return cli.Exit(fmt.Sprintf("entrypoint not found: %s", name), exitResolveFail)
	}

	v := view.NewEntrypointView(name, ep, l.SourceName())

	if c.Bool("tui") {
		return r.RenderTUI("inspect_entrypoint", v)
	}
	return r.Render(v)
}
