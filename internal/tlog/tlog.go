// Package tlog provides the harness's two logging surfaces: a
// zap-backed structured Logger for driver-level events, and a
// per-Worker verbose trace buffer flushed on demand. Grounded on
// quarry's log package (log/logger.go): same JSON-encoder-over-a-
// configurable-writer construction, generalized from quarry's run-id
// context fields to the harness's test-name/worker-title fields.
package tlog

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the driver-level structured logger: one line per test file
// processed, with the outcome and any failure detail as fields.
type Logger struct {
	zap *zap.Logger
}

// NewLogger builds a Logger writing JSON lines to w.
func NewLogger(w io.Writer) *Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:     "timestamp",
		LevelKey:    "level",
		MessageKey:  "message",
		EncodeTime:  zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel: zapcore.LowercaseLevelEncoder,
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(w),
		zapcore.InfoLevel,
	)
	return &Logger{zap: zap.New(core)}
}

// WithOutput returns a Logger writing to a different destination,
// keeping the same encoder configuration.
func (l *Logger) WithOutput(w io.Writer) *Logger {
	return NewLogger(w)
}

// TestResult logs one test file's outcome.
func (l *Logger) TestResult(name, outcome, detail string) {
	fields := []zap.Field{zap.String("test", name), zap.String("outcome", outcome)}
	if detail != "" {
		fields = append(fields, zap.String("detail", detail))
	}
	l.zap.Info("test finished", fields...)
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error { return l.zap.Sync() }

// WorkerLog buffers a single Worker's verbose protocol trace (every
// send/receive and dispatched command) in memory. One is created only
// in verbose mode, and the driver then flushes it to stderr, bracketed
// by "-----" rules.
type WorkerLog struct {
	title string
	mu    sync.Mutex
	buf   bytes.Buffer
}

// NewWorkerLog creates an empty trace buffer for the given Worker title.
func NewWorkerLog(title string) *WorkerLog {
	return &WorkerLog{title: title}
}

// Logf appends one formatted trace line. Safe to call on a nil receiver
// (logging is a no-op when verbose mode is off and no WorkerLog was
// constructed).
func (l *WorkerLog) Logf(format string, a ...any) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(&l.buf, format, a...)
	l.buf.WriteByte('\n')
}

// Flush writes the buffered trace to w, bracketed by "-----" rules.
func (l *WorkerLog) Flush(w io.Writer) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(w, "\n-----\nLog for %s\n-----\n%s-----\n", l.title, l.buf.String())
}
