// Package gate implements the generation busy gate.
//
// The gate guards a single-concurrency external generation resource. It is
// read by every upstream producer and written only by the generation
// gateway: Close before the external call, Open after it on every path,
// success or failure. An unmatched Close would pause the pipeline forever,
// so callers must pair Close with a deferred Open.
package gate

import "sync/atomic"

// Gate is a shared open/closed flag. Closed means the generation resource
// is in use and upstream stages must pause.
type Gate struct {
	open     atomic.Bool
	closures atomic.Uint64
	reopens  atomic.Uint64
}

// New returns a gate in the Closed state. The orchestrator opens it once
// all workers are running.
func New() *Gate {
	return &Gate{}
}

// IsOpen reports whether the generation resource is available.
func (g *Gate) IsOpen() bool {
	return g.open.Load()
}

// Close marks the resource busy. Only the generation gateway calls this.
func (g *Gate) Close() {
	g.open.Store(false)
	g.closures.Add(1)
}

// Open marks the resource available again.
func (g *Gate) Open() {
	g.open.Store(true)
	g.reopens.Add(1)
}

// Closures returns how many times the gate has been closed.
func (g *Gate) Closures() uint64 {
	return g.closures.Load()
}

// Reopens returns how many times the gate has been opened.
func (g *Gate) Reopens() uint64 {
	return g.reopens.Load()
}
