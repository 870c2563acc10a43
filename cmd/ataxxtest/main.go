package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ataxxtest/harness/internal/tlog"
)

func main() {
	app := &cli.App{
		Name:      "ataxxtest",
		Usage:     "black-box test harness for Ataxx-playing programs",
		ArgsUsage: "SCRIPT...",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "print each program's protocol trace after its test finishes",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	paths := c.Args().Slice()
	if len(paths) == 0 {
		return cli.Exit("Usage: ataxxtest [ --verbose | -v ] SCRIPT ...", 1)
	}

	// The structured logger and the user-facing prose must not share a
	// stream: zap's ioCore flushes synchronously, so a JSON line would
	// otherwise land between a "<basename>: " prefix and its outcome,
	// breaking spec.md §6.2's line format. User-facing output goes to
	// stderr per §6.2; the structured log goes to stdout.
	logger := tlog.NewLogger(os.Stdout)
	s := runDriver(context.Background(), os.Stderr, logger, paths, c.Bool("verbose"))
	_ = logger.Sync()

	if code := s.exitCode(); code != 0 {
		os.Exit(code)
	}
	return nil
}
