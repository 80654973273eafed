package cmd

import (
	"context"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/facet/cli/tui"
	"github.com/pithecene-io/facet/cli/view"
	"github.com/pithecene-io/facet/manifest"
)

// WatchCommand returns the watch command.
// Watch is a live TUI over the manifest: it re-resolves on an interval
// and shows readiness, entrypoints, and asset counts as they change.
func WatchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Watch manifest readiness live (TUI)",
		Flags: append(ReadOnlyFlags(),
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "Poll interval",
				Value: time.Second,
			},
		),
		Action: watchAction,
	}
}

func watchAction(c *cli.Context) error {
	s, err := loadSetup(c)
	if err != nil {
		return cli.Exit(err.Error(), exitResolveFail)
	}

	l, err := s.newLoader(c.Context)
	if err != nil {
		return manifestExit(err)
	}
	defer func() { _ = l.Close() }()

	interval := c.Duration("interval")
	fetch := func(ctx context.Context) (*view.ManifestSummary, error) {
		// Bound each poll so a dev-mode retry loop cannot stall the TUI.
		ctx, cancel := context.WithTimeout(ctx, 2*interval)
		defer cancel()
		m, err := l.Load(ctx)
		if err != nil {
			return nil, err
		}
		ready := manifest.CheckReady(m) == nil
		return view.NewManifestSummary(m, s.filename, l.SourceName(), s.mode, ready), nil
	}

	return tui.RunWatchTUI(fetch, interval)
}
