package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveOptionsDefaults(t *testing.T) {
	o := resolveOptions()
	assert.Equal(t, defaultStdinQueue, o.StdinQueue)
	assert.Equal(t, defaultStdoutQueue, o.StdoutQueue)
	assert.Equal(t, defaultOpLimit, o.OpLimit)
	assert.Equal(t, defaultTotalTime, o.TotalTime)
	assert.Equal(t, defaultCleanupWait, o.CleanupWait)
}

func TestResolveOptionsAppliesOverrides(t *testing.T) {
	o := resolveOptions(WithOpLimit(5*time.Second), WithQueueCapacities(1, 2, 3, 4))
	assert.Equal(t, 5*time.Second, o.OpLimit)
	assert.Equal(t, 1, o.StdinQueue)
	assert.Equal(t, 2, o.StdoutQueue)
	assert.Equal(t, 3, o.PeerQueue)
	assert.Equal(t, 4, o.TermQueue)
}

func TestResolveOptionsIgnoresNonPositiveOverrides(t *testing.T) {
	o := resolveOptions(WithOpLimit(-1), WithQueueCapacities(0, -5, 0, 0))
	assert.Equal(t, defaultOpLimit, o.OpLimit, "negative duration override must be ignored")
	assert.Equal(t, defaultStdinQueue, o.StdinQueue, "non-positive queue overrides must be ignored")
	assert.Equal(t, defaultStdoutQueue, o.StdoutQueue)
}
