package pipeline

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/zen-systems/pulseforge/pkg/gate"
	"github.com/zen-systems/pulseforge/pkg/item"
	"github.com/zen-systems/pulseforge/pkg/queue"
	"github.com/zen-systems/pulseforge/pkg/refine"
	"go.uber.org/zap"
)

// Synthesizer reduces candidate-element sets to small synthesized keyword
// sets via the mode-specific combination heuristic, and reports what it
// synthesized on the relay side channel.
type Synthesizer struct {
	in        *queue.Queue[item.WorkItem]
	out       *queue.Queue[item.WorkItem]
	relay     *queue.Queue[item.Relay]
	busy      *gate.Gate
	running   *Running
	poll      time.Duration
	gatePause time.Duration
	rng       *rand.Rand
	log       *zap.Logger
}

// NewSynthesizer wires a synthesizer stage.
func NewSynthesizer(in, out *queue.Queue[item.WorkItem], relay *queue.Queue[item.Relay], busy *gate.Gate, running *Running, poll, gatePause time.Duration, log *zap.Logger) *Synthesizer {
	return &Synthesizer{
		in:        in,
		out:       out,
		relay:     relay,
		busy:      busy,
		running:   running,
		poll:      poll,
		gatePause: gatePause,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		log:       log,
	}
}

// Step processes at most one inbound item.
func (s *Synthesizer) Step() {
	if !s.busy.IsOpen() {
		time.Sleep(s.gatePause)
		return
	}

	it, ok := s.in.TryPop()
	if !ok {
		time.Sleep(s.poll)
		return
	}

	if len(it.Elements) == 0 {
		s.log.Warn("no candidate elements, using placeholder", zap.String("id", it.ID), zap.Stringer("mode", it.Mode))
	}
	it.Elements = refine.Combine(it.Mode, it.Elements, s.rng)

	// Best-effort side channel; a full or closed relay never blocks the
	// data path.
	_ = s.relay.Push(item.Relay{
		Source: "synthesizer",
		Note:   fmt.Sprintf("synthesized %s keywords: %v", it.Mode, it.Elements),
	})

	if err := s.out.Push(it); err != nil {
		s.log.Error("outbound queue closed, halting", zap.Error(err))
		s.running.Clear()
		return
	}
	s.log.Info("synthesized keywords",
		zap.String("id", it.ID),
		zap.Strings("keywords", it.Elements),
		zap.Stringer("mode", it.Mode))
}
