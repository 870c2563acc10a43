package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ataxxtest/harness"
	"github.com/ataxxtest/harness/enginetest"
)

const exitCleanly = "cat >/dev/null\nexit 0\n"

func TestWorkerEmptyScriptFailsWithoutSpawning(t *testing.T) {
	w := newWorkerShell("Prog1", NewScript(nil, 0), resolveOptions(), nil)
	msg := w.spawn()
	require.NotNil(t, msg, "expected a termination message for an empty script")
	enginetest.AssertOutcome(t, *msg, harness.FAIL, "No command found")
}

func TestWorkerBadCommandFails(t *testing.T) {
	player := enginetest.PlayerScript(t, "printf 'Red wins.\\n'\n"+exitCleanly)
	w := newWorkerShell("Prog1", NewScript([]string{player, "@bogus"}, 0), resolveOptions(), nil)
	require.Nil(t, w.spawn())
	enginetest.AssertOutcome(t, w.Run(), harness.FAIL, "bad command in script")
}

func TestWorkerSelfPlayOK(t *testing.T) {
	player := enginetest.PlayerScript(t,
		"printf 'Red moves b2-c3.\\n'\nprintf 'Blue moves f6-e5.\\n'\nprintf 'Red wins.\\n'\n"+exitCleanly)
	w := newWorkerShell("Prog1", NewScript([]string{player, "@red..."}, 0), resolveOptions(), nil)
	require.Nil(t, w.spawn())
	enginetest.AssertOutcome(t, w.Run(), harness.OK, "")
}

func TestWorkerSelfPlayEndPatternMismatch(t *testing.T) {
	player := enginetest.PlayerScript(t, "printf 'Red wins.\\n'\n"+exitCleanly)
	w := newWorkerShell("Prog1", NewScript([]string{player, "@red... Draw\\."}, 0), resolveOptions(), nil)
	require.Nil(t, w.spawn())
	enginetest.AssertOutcome(t, w.Run(), harness.ERROR, "outcome does not match end pattern")
}

func TestWorkerOutputMatchLiteral(t *testing.T) {
	// The line must contain one of the reader pump's "interesting"
	// keywords (spec.md §4.1) or it is filtered out before the
	// interpreter ever sees it.
	player := enginetest.PlayerScript(t, "printf 'Red moves b2-c3.\\n'\n"+exitCleanly)
	w := newWorkerShell("Prog1", NewScript([]string{player, "@<Red moves b2-c3."}, 0), resolveOptions(), nil)
	require.Nil(t, w.spawn())
	enginetest.AssertOutcome(t, w.Run(), harness.OK, "")
}

func TestWorkerOutputMatchReportsUncaughtException(t *testing.T) {
	// No colon in the line: outputPrefix's "PREFIX:" stripping is greedy
	// and would otherwise eat the "Exception in thread" keyword along
	// with everything before a trailing colon.
	player := enginetest.PlayerScript(t, "printf 'Uncaught Exception in thread occurred\\n'\n"+exitCleanly)
	w := newWorkerShell("Prog1", NewScript([]string{player, "@?Exception.*"}, 0), resolveOptions(WithOpLimit(time.Second)), nil)
	require.Nil(t, w.spawn())
	enginetest.AssertOutcome(t, w.Run(), harness.ERROR, "uncaught exception occurred")
}

func TestWorkerGetMoveTimesOut(t *testing.T) {
	player := enginetest.PlayerScript(t, "sleep 5\n"+exitCleanly)
	w := newWorkerShell("Prog1", NewScript([]string{player, "@red..."}, 0), resolveOptions(WithOpLimit(50*time.Millisecond)), nil)
	require.Nil(t, w.spawn())
	enginetest.AssertOutcome(t, w.Run(), harness.ERROR, "timed out waiting for my red move")
}
