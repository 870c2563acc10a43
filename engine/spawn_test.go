package engine

import (
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpawnProcessRejectsEmptyArgv(t *testing.T) {
	_, _, _, err := spawnProcess(nil)
	assert.Error(t, err, "expected an error for empty argv")
}

func TestSpawnProcessStartsAndPipesWork(t *testing.T) {
	cmd, stdin, stdout, err := spawnProcess([]string{"cat"})
	require.NoError(t, err)
	defer killProcess(cmd)

	_, err = stdin.Write([]byte("hello\n"))
	require.NoError(t, err)

	buf := make([]byte, 6)
	_, err = stdout.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(buf))
}

func TestSplitArgvWhitespaceSplits(t *testing.T) {
	argv := splitArgv("  ./player.sh  --flag  value ")
	assert.Equal(t, []string{"./player.sh", "--flag", "value"}, argv)
}

func TestKillProcessIsNilSafe(t *testing.T) {
	killProcess(nil)
	killProcess(&exec.Cmd{})
}

func TestExitCodeExtractsNonZero(t *testing.T) {
	cmd := exec.Command("sh", "-c", "exit 3")
	err := cmd.Run()
	code, ok := exitCode(err)
	require.True(t, ok)
	assert.Equal(t, 3, code)
}

func TestExitCodeNilIsZero(t *testing.T) {
	code, ok := exitCode(nil)
	require.True(t, ok)
	assert.Equal(t, 0, code)
}

func TestExitCodeNonExitErrorIsUnknown(t *testing.T) {
	_, ok := exitCode(errors.New("not an exit error"))
	assert.False(t, ok, "expected ok=false for a non-ExitError")
}

func TestWaitExitTimesOutOnSlowProcess(t *testing.T) {
	cmd, _, _, err := spawnProcess([]string{"sleep", "5"})
	require.NoError(t, err)
	defer killProcess(cmd)

	_, exited := waitExit(cmd, 50*time.Millisecond)
	assert.False(t, exited, "expected waitExit to time out on a slow process")
}
