// Package mode holds the shared production-mode register.
//
// The register is written by exactly one stage (the validator) and read by
// every upstream producer. Readers may observe a stale value for one
// iteration after a toggle; that staleness is tolerated by the pipeline.
package mode

import "sync/atomic"

// Mode identifies which of the two production modes an item belongs to.
type Mode int32

const (
	// Script produces runnable script artifacts.
	Script Mode = iota
	// Content produces narrative text content.
	Content
)

// String returns the mode's directory-safe name.
func (m Mode) String() string {
	switch m {
	case Script:
		return "script"
	case Content:
		return "content"
	default:
		return "unknown"
	}
}

// Other returns the opposite mode.
func (m Mode) Other() Mode {
	if m == Script {
		return Content
	}
	return Script
}

// Valid reports whether m is one of the two known modes.
func (m Mode) Valid() bool {
	return m == Script || m == Content
}

// Register is the shared mode cell. Single writer, many readers, no
// synchronization beyond the atomic scalar.
type Register struct {
	v atomic.Int32
}

// NewRegister returns a register starting in the given mode.
func NewRegister(initial Mode) *Register {
	r := &Register{}
	r.v.Store(int32(initial))
	return r
}

// Load returns the current mode.
func (r *Register) Load() Mode {
	return Mode(r.v.Load())
}

// Toggle flips the register to the opposite mode and returns the new value.
// Only the validator calls this.
func (r *Register) Toggle() Mode {
	next := r.Load().Other()
	r.v.Store(int32(next))
	return next
}
