package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/facet/cli/render"
	"github.com/pithecene-io/facet/cli/view"
	"github.com/pithecene-io/facet/notify"
	"github.com/pithecene-io/facet/types"
)

// WaitCommand returns the wait command.
// Wait blocks until the manifest resolves to a servable state, then
// prints a report. With --notify it also publishes the configured
// readiness event, which makes it usable as a deploy gate.
func WaitCommand() *cli.Command {
	return &cli.Command{
		Name:  "wait",
		Usage: "Block until the manifest is servable",
		Flags: append(ReadOnlyFlags(),
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Give up after this long (0 = wait forever)",
			},
			&cli.BoolFlag{
				Name:  "notify",
				Usage: "Publish the configured readiness event once servable",
			},
		),
		Action: waitAction,
	}
}

func waitAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for wait", exitResolveFail)
	}

	s, err := loadSetup(c)
	if err != nil {
		return cli.Exit(err.Error(), exitResolveFail)
	}

	ctx := c.Context
	if d := c.Duration("timeout"); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	start := time.Now()

	l, err := s.newLoader(ctx)
	if err != nil {
		return manifestExit(err)
	}
	defer func() { _ = l.Close() }()

	m, err := l.Load(ctx)
	if err != nil {
		return manifestExit(err)
	}

	report := &view.WaitReport{
		Filename:    s.filename,
		Source:      l.SourceName(),
		Attempts:    l.LastAttempts(),
		ElapsedMs:   time.Since(start).Milliseconds(),
		Entrypoints: m.EntrypointNames,
	}

	if c.Bool("notify") {
		if err := s.publishReady(ctx, m, l.SourceName(), report.Attempts); err != nil {
			// The manifest is servable; a failed notification should not
			// flip the deploy gate.
			fmt.Fprintf(os.Stderr, "Warning: readiness notification failed: %v\n", err)
		}
	}

	return r.Render(report)
}

// publishReady sends the readiness event through the configured notifier.
// No configured notifier is an error here: the user asked for --notify.
func (s *setup) publishReady(ctx context.Context, m *types.Manifest, sourceName string, attempts int) error {
	n, err := s.newNotifier()
	if err != nil {
		return err
	}
	if n == nil {
		return fmt.Errorf("--notify requires a notify section in the config")
	}
	defer func() { _ = n.Close() }()

	event := notify.NewManifestReadyEvent(m, s.filename, sourceName, s.mode, attempts)
	return n.Publish(ctx, event)
}
