package pipeline

import (
	"time"

	"github.com/zen-systems/pulseforge/pkg/gate"
	"github.com/zen-systems/pulseforge/pkg/item"
	"github.com/zen-systems/pulseforge/pkg/queue"
	"github.com/zen-systems/pulseforge/pkg/refine"
	"go.uber.org/zap"
)

// Filter turns raw payloads into deduplicated candidate-element sets using
// the mode-specific extraction heuristic.
type Filter struct {
	in        *queue.Queue[item.WorkItem]
	out       *queue.Queue[item.WorkItem]
	busy      *gate.Gate
	running   *Running
	poll      time.Duration
	gatePause time.Duration
	log       *zap.Logger
}

// NewFilter wires a filter stage.
func NewFilter(in, out *queue.Queue[item.WorkItem], busy *gate.Gate, running *Running, poll, gatePause time.Duration, log *zap.Logger) *Filter {
	return &Filter{in: in, out: out, busy: busy, running: running, poll: poll, gatePause: gatePause, log: log}
}

// Step processes at most one inbound item.
func (f *Filter) Step() {
	if !f.busy.IsOpen() {
		time.Sleep(f.gatePause)
		return
	}

	it, ok := f.in.TryPop()
	if !ok {
		time.Sleep(f.poll)
		return
	}

	if !it.Mode.Valid() {
		// Recoverable: Extract falls back to a single truncated sample.
		f.log.Warn("unknown mode tag on inbound item", zap.String("id", it.ID), zap.Int32("mode", int32(it.Mode)))
	}

	it.Elements = refine.Extract(it.Mode, it.Raw)
	it.Raw = ""

	if err := f.out.Push(it); err != nil {
		f.log.Error("outbound queue closed, halting", zap.Error(err))
		f.running.Clear()
		return
	}
	f.log.Info("filtered raw block",
		zap.String("id", it.ID),
		zap.Int("elements", len(it.Elements)),
		zap.Stringer("mode", it.Mode))
}
