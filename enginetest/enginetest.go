package enginetest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ataxxtest/harness"
)

// PlayerScript writes body as an executable POSIX shell script to a
// temp file and returns its path, suitable as the first line of a
// Worker's Script (spec.md §6.1's whitespace-split argv: a single path
// token needs no quoting). body is typically a short loop of
// `read`/`printf` lines mimicking a scripted Ataxx player's stdout
// protocol (spec.md §6.3). The file is removed automatically at the end
// of the test.
func PlayerScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "player.sh")
	contents := "#!/bin/sh\n" + body + "\n"
	err := os.WriteFile(path, []byte(contents), 0o755)
	require.NoError(t, err, "write player script")
	return path
}

// AssertOutcome fails t unless msg has the expected outcome, and (when
// wantDetail is non-empty) the detail contains wantDetail as a substring.
func AssertOutcome(t *testing.T, msg harness.TerminationMessage, wantOutcome harness.Outcome, wantDetail string) {
	t.Helper()
	require.Equal(t, wantOutcome, msg.Outcome, "%s: detail %q", msg.Title, msg.Detail)
	if wantDetail != "" {
		assert.Contains(t, msg.Detail, wantDetail, "%s: unexpected detail", msg.Title)
	}
}
