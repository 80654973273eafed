package cmd

import (
	"sort"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/facet/cli/render"
	"github.com/pithecene-io/facet/cli/view"
	"github.com/pithecene-io/facet/manifest"
	"github.com/pithecene-io/facet/types"
)

// ListCommand returns the list command with subcommands.
// List returns thin slices, not inspect-level detail.
func ListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List entrypoints or assets",
		Subcommands: []*cli.Command{
			listEntrypointsCommand(),
			listAssetsCommand(),
		},
	}
}

func listEntrypointsCommand() *cli.Command {
	return &cli.Command{
		Name:   "entrypoints",
		Usage:  "List entrypoints in manifest order",
		Flags:  ReadOnlyFlags(),
		Action: listEntrypointsAction,
	}
}

func listEntrypointsAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for list commands", exitResolveFail)
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

	rows := make([]view.EntrypointRow, 0, len(m.EntrypointNames))
	for _, name := range m.EntrypointNames {
		ep := manifest.Normalize(m.Entrypoints[name])
		rows = append(rows, view.EntrypointRow{
			Name:     name,
			JSCount:  len(ep.JS),
			CSSCount: len(ep.CSS),
		})
	}
	return r.Render(rows)
}

func listAssetsCommand() *cli.Command {
	return &cli.Command{
		Name:   "assets",
		Usage:  "List manifest file assets",
		Flags:  ReadOnlyFlags(),
		Action: listAssetsAction,
	}
}

func listAssetsAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for list commands", exitResolveFail)
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

	// Files is a map; sort by logical path for stable output.
	paths := make([]string, 0, len(m.Files))
	for p := range m.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	rows := make([]view.AssetView, 0, len(paths))
	for _, p := range paths {
		a := m.Files[p]
		rows = append(rows, view.AssetView{
			Src:       a.Src,
			Integrity: a.Integrity,
			Group:     groupForPath(p),
		})
	}
	return r.Render(rows)
}

// groupForPath classifies a manifest file key by extension.
func groupForPath(p string) string {
	switch {
	case strings.HasSuffix(p, ".js"):
		return types.GroupJS
	case strings.HasSuffix(p, ".css"):
		return types.GroupCSS
	default:
		return "other"
	}
}
