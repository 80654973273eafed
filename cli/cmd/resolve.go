package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/facet/cli/render"
	"github.com/pithecene-io/facet/cli/view"
	"github.com/pithecene-io/facet/tags"
	"github.com/pithecene-io/facet/types"
)

// ResolveCommand returns the resolve command.
// Resolve looks up one entrypoint and prints its assets, either as a view
// payload or as ready-to-embed HTML tags.
func ResolveCommand() *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "Resolve an entrypoint to its assets",
		ArgsUsage: "<entrypoint>",
		Flags: append(ReadOnlyFlags(),
			&cli.BoolFlag{
				Name:  "tags",
				Usage: "Emit HTML script/link tags instead of structured output",
			},
			&cli.BoolFlag{
				Name:  "defer",
				Usage: "Add the defer attribute to script tags (with --tags)",
			},
		),
		Action: resolveAction,
	}
}

func resolveAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("entrypoint name required", exitResolveFail)
	}
	name := c.Args().First()

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for resolve", exitResolveFail)
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

	if c.Bool("tags") {
		fmt.Fprint(c.App.Writer, tags.Render(ep, tags.Options{Defer: c.Bool("defer")}))
		return nil
	}

	resp := &view.ResolveResponse{
		Entrypoint: name,
		Source:     l.SourceName(),
		Assets:     assetViews(ep),
	}
	return r.Render(resp)
}

// assetViews flattens an entrypoint into ordered rows, js before css.
func assetViews(ep *types.Entrypoint) []view.AssetView {
	out := make([]view.AssetView, 0, len(ep.JS)+len(ep.CSS))
	for _, a := range ep.JS {
		out = append(out, view.AssetView{Src: a.Src, Integrity: a.Integrity, Group: types.GroupJS})
	}
	for _, a := range ep.CSS {
		out = append(out, view.AssetView{Src: a.Src, Integrity: a.Integrity, Group: types.GroupCSS})
	}
	return out
}
