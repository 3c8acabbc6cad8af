package pipeline

import (
	"time"

	"github.com/zen-systems/pulseforge/pkg/archive"
	"github.com/zen-systems/pulseforge/pkg/item"
	"github.com/zen-systems/pulseforge/pkg/queue"
	"go.uber.org/zap"
)

// Persistor writes generated content into the active artifact tree and
// forwards {path, mode} to the validator. It doubles as a message relay:
// notes from upstream stages are logged, validation outcomes are forwarded
// to the gateway's feedback queue.
type Persistor struct {
	in       *queue.Queue[item.WorkItem]
	out      *queue.Queue[item.WorkItem]
	relay    *queue.Queue[item.Relay]
	feedback *queue.Queue[item.Outcome]
	store    *archive.Store
	running  *Running
	poll     time.Duration
	log      *zap.Logger
}

// NewPersistor wires a persistor stage.
func NewPersistor(in, out *queue.Queue[item.WorkItem], relay *queue.Queue[item.Relay], feedback *queue.Queue[item.Outcome], store *archive.Store, running *Running, poll time.Duration, log *zap.Logger) *Persistor {
	return &Persistor{in: in, out: out, relay: relay, feedback: feedback, store: store, running: running, poll: poll, log: log}
}

// Step relays pending messages, then persists at most one inbound item.
func (p *Persistor) Step() {
	relayed := p.drainRelay()

	it, ok := p.in.TryPop()
	if !ok {
		if !relayed {
			time.Sleep(p.poll)
		}
		return
	}

	path, err := p.store.PlaceActive(it.Mode, it.Content)
	if err != nil {
		// Persist failures drop the item; the cycle continues.
		p.log.Error("persist failed, dropping item", zap.String("id", it.ID), zap.Error(err))
		return
	}

	it.Path = path
	it.Content = ""
	if err := p.out.Push(it); err != nil {
		p.log.Error("outbound queue closed, halting", zap.Error(err))
		p.running.Clear()
		return
	}
	p.log.Info("persisted artifact",
		zap.String("id", it.ID),
		zap.String("path", path),
		zap.Stringer("mode", it.Mode))
}

// drainRelay empties the relay queue, routing outcomes onward to the
// gateway and logging plain notes. Returns true if anything was relayed.
func (p *Persistor) drainRelay() bool {
	relayed := false
	for {
		msg, ok := p.relay.TryPop()
		if !ok {
			return relayed
		}
		relayed = true

		if msg.Outcome != nil {
			if err := p.feedback.Push(*msg.Outcome); err != nil {
				p.log.Warn("feedback queue closed, dropping outcome", zap.Error(err))
			}
			continue
		}
		p.log.Info("relay note", zap.String("source", msg.Source), zap.String("note", msg.Note))
	}
}
