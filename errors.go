package harness

import "errors"

// Sentinel errors distinguished by a Worker's script interpreter.
//
// ErrTestFail corresponds to the original test harness's test_fail
// exception: a script-author or assertion failure. ErrTestError
// corresponds to test_err: an environmental or tested-program failure.
// Both are wrapped by *engine.InterpreterError, which attaches the
// script line number at which the failure occurred; callers distinguish
// the two kinds with errors.Is against these sentinels.
var (
	// ErrTestFail indicates a FAIL-classified interpreter failure.
	ErrTestFail = errors.New("harness: test failure")

	// ErrTestError indicates an ERROR-classified interpreter failure.
	ErrTestError = errors.New("harness: test error")
)
