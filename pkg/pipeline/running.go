package pipeline

import "sync/atomic"

// Running is the shared cooperative-cancellation flag. The orchestrator
// sets it before workers start and clears it to request shutdown; every
// worker re-checks it at the head of each loop iteration. There is no
// mid-iteration preemption.
type Running struct {
	flag atomic.Bool
}

// NewRunning returns a cleared flag.
func NewRunning() *Running {
	return &Running{}
}

// Set signals workers to run.
func (r *Running) Set() {
	r.flag.Store(true)
}

// Clear signals workers to exit at their next loop head.
func (r *Running) Clear() {
	r.flag.Store(false)
}

// IsSet reports whether workers should keep running.
func (r *Running) IsSet() bool {
	return r.flag.Load()
}
