// Package enginetest provides shared test infrastructure for the engine
// package's tests: a builder for tiny shell-script "player" subprocesses
// and assertion helpers for the termination messages a Worker or Match
// produces. Worker and Match each have one production implementation,
// so there is no Run*Tests-per-backend compliance suite to run here the
// way clitest.RunBackendTests runs one per CLI backend — but every
// engine test needs a disposable subprocess and a termination-message
// assertion, so that shared plumbing lives here instead of being
// duplicated across worker_test.go, match_test.go, and cmd/ataxxtest's
// driver_test.go.
package enginetest
