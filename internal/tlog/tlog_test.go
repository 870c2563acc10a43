package tlog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkerLogFlushBracketsWithRules(t *testing.T) {
	l := NewWorkerLog("Prog1")
	l.Logf("* %s", "command one")
	l.Logf("< %s", "output line")

	var buf bytes.Buffer
	l.Flush(&buf)

	out := buf.String()
	assert.Contains(t, out, "Log for Prog1")
	assert.Contains(t, out, "command one")
	assert.Contains(t, out, "output line")
	assert.Equal(t, 3, strings.Count(out, "-----"))
}

func TestWorkerLogNilReceiverIsNoop(t *testing.T) {
	var l *WorkerLog
	l.Logf("should not panic")

	var buf bytes.Buffer
	l.Flush(&buf)
	assert.Zero(t, buf.Len(), "flushing a nil WorkerLog must write nothing")
}

func TestLoggerTestResultWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)
	logger.TestResult("sample.test", "OK", "")
	_ = logger.Sync()

	out := buf.String()
	assert.Contains(t, out, `"test":"sample.test"`)
	assert.Contains(t, out, `"outcome":"OK"`)
}
