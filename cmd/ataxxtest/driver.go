// Package main is the ataxxtest CLI: it drives one Match per test file
// named on the command line and reports pass/fail/error per spec.md §6.2.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ataxxtest/harness"
	"github.com/ataxxtest/harness/engine"
	"github.com/ataxxtest/harness/internal/tlog"
)

// summary tallies the Test Driver's pass/fail/error counts across every
// test file, per spec.md §6.2's reporting contract.
type summary struct {
	tests    int
	errors   int // ERROR-classified Matches
	problems int // FAIL-classified Matches
}

func (s summary) passed() int { return s.tests - s.errors - s.problems }

// exitCode mirrors the original driver's sys.exit(0 if err_count +
// problem_count == 0 else 1).
func (s summary) exitCode() int {
	if s.errors+s.problems == 0 {
		return 0
	}
	return 1
}

// runDriver runs every named test file as a Match and reports its
// outcome to out, one line per file, then a final summary block. out
// carries only the user-facing prose of spec.md §6.2; logger must be
// wired to a separate sink (main wires it to stdout, out to stderr) so
// its synchronously-flushed JSON lines never interleave with an
// in-progress "<basename>: " line.
func runDriver(ctx context.Context, out io.Writer, logger *tlog.Logger, paths []string, verbose bool) summary {
	var s summary
	s.tests = len(paths)

	for _, path := range paths {
		name := filepath.Base(path)
		fmt.Fprintf(out, "%s: ", name)

		text, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(out, "FAIL (%v)\n", err)
			logger.TestResult(name, string(harness.FAIL), err.Error())
			s.problems++
			continue
		}

		match := engine.NewMatch(string(text))
		if verbose {
			match.WithWorkerLogs()
		}

		outcome, detail := match.Run(ctx)
		logger.TestResult(name, string(outcome), detail)

		switch outcome {
		case harness.OK:
			fmt.Fprintln(out, "OK")
		case harness.ERROR:
			fmt.Fprintf(out, "%s (%s)\n", outcome, detail)
			s.errors++
		default:
			fmt.Fprintf(out, "%s (%s)\n", outcome, detail)
			s.problems++
		}

		if verbose {
			for _, w := range match.Workers() {
				w.Log().Flush(out)
			}
		}
	}

	fmt.Fprintf(out, "\nSummary:\n%4d tests\n%4d passed\n%4d errors\n%4d problematic tests\n",
		s.tests, s.passed(), s.errors, s.problems)
	return s
}
