package engine

import "time"

// Default engine configuration values, per spec.md §5 (queue capacities)
// and §4.2/§4.3 (timeouts).
const (
	defaultStdinQueue  = 500
	defaultStdoutQueue = 500
	defaultPeerQueue   = 4
	defaultTermQueue   = 8

	defaultOpLimit     = 10 * time.Second
	defaultTotalTime   = 120 * time.Second
	defaultCleanupWait = 2 * time.Second
)

// Options holds resolved construction-time configuration for a Match.
// Use NewMatch with Option functions to customize these values; tests
// override them to exercise timeout and backpressure paths without
// waiting on real wall-clock defaults.
type Options struct {
	// StdinQueue is the buffer capacity of each Worker's input queue.
	StdinQueue int

	// StdoutQueue is the buffer capacity of each Worker's output queue.
	StdoutQueue int

	// PeerQueue is the buffer capacity of each Worker's peer-receive queue.
	PeerQueue int

	// TermQueue is the buffer capacity of the Match's termination channel.
	TermQueue int

	// OpLimit is the default per-operation timeout, mutable per-Worker
	// by the script's `@time` directive.
	OpLimit time.Duration

	// TotalTime is the default match deadline, overridden by a
	// `total-time` directive found in the test file text.
	TotalTime time.Duration

	// CleanupWait is the grace period granted to the second Worker of a
	// two-Worker Match after the first posts its termination message.
	CleanupWait time.Duration
}

// Option configures a Match at construction time.
type Option func(*Options)

// WithOpLimit sets the default per-operation timeout. Values <= 0 are ignored.
func WithOpLimit(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.OpLimit = d
		}
	}
}

// WithTotalTime sets the default match deadline. Values <= 0 are ignored.
func WithTotalTime(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.TotalTime = d
		}
	}
}

// WithCleanupWait sets the second-Worker grace period. Values <= 0 are ignored.
func WithCleanupWait(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.CleanupWait = d
		}
	}
}

// WithQueueCapacities overrides the stdin/stdout/peer/termination queue
// sizes. Values <= 0 leave the corresponding default untouched; this
// exists primarily so tests can shrink the peer queue below its spec
// default of 4 to exercise the "other program blocked" error cheaply.
func WithQueueCapacities(stdin, stdout, peer, term int) Option {
	return func(o *Options) {
		if stdin > 0 {
			o.StdinQueue = stdin
		}
		if stdout > 0 {
			o.StdoutQueue = stdout
		}
		if peer > 0 {
			o.PeerQueue = peer
		}
		if term > 0 {
			o.TermQueue = term
		}
	}
}

func resolveOptions(opts ...Option) Options {
	o := Options{
		StdinQueue:  defaultStdinQueue,
		StdoutQueue: defaultStdoutQueue,
		PeerQueue:   defaultPeerQueue,
		TermQueue:   defaultTermQueue,
		OpLimit:     defaultOpLimit,
		TotalTime:   defaultTotalTime,
		CleanupWait: defaultCleanupWait,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
