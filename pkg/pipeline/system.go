package pipeline

import (
	"fmt"
	"sync"
	"time"

	"github.com/zen-systems/pulseforge/pkg/adapter"
	"github.com/zen-systems/pulseforge/pkg/archive"
	"github.com/zen-systems/pulseforge/pkg/config"
	"github.com/zen-systems/pulseforge/pkg/gate"
	"github.com/zen-systems/pulseforge/pkg/item"
	"github.com/zen-systems/pulseforge/pkg/metrics"
	"github.com/zen-systems/pulseforge/pkg/mode"
	"github.com/zen-systems/pulseforge/pkg/queue"
	"github.com/zen-systems/pulseforge/pkg/sandbox"
	"go.uber.org/zap"
)

// statusPollInterval paces the orchestrator's idle loop.
const statusPollInterval = 100 * time.Millisecond

// System owns the whole pipeline: the shared mode register and busy gate,
// the point-to-point queues, and one pinned worker per stage.
type System struct {
	cfg      *config.Config
	log      *zap.Logger
	provider adapter.Adapter
	store    *archive.Store

	modes   *mode.Register
	busy    *gate.Gate
	running *Running

	rawQ      *queue.Queue[item.WorkItem]
	elementQ  *queue.Queue[item.WorkItem]
	keywordQ  *queue.Queue[item.WorkItem]
	contentQ  *queue.Queue[item.WorkItem]
	pathQ     *queue.Queue[item.WorkItem]
	relayQ    *queue.Queue[item.Relay]
	feedbackQ *queue.Queue[item.Outcome]
	statusQ   *queue.Queue[item.ModeSwitch]

	workers []*Worker
}

// NewSystem builds the pipeline. Workers are created but not started;
// Run starts and joins them.
func NewSystem(cfg *config.Config, provider adapter.Adapter, store *archive.Store, log *zap.Logger) (*System, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if provider == nil {
		return nil, fmt.Errorf("generation provider is required")
	}
	if store == nil {
		return nil, fmt.Errorf("artifact store is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	s := &System{
		cfg:      cfg,
		log:      log,
		provider: provider,
		store:    store,
		modes:    mode.NewRegister(mode.Script),
		busy:     gate.New(),
		running:  NewRunning(),

		rawQ:      queue.New[item.WorkItem](),
		elementQ:  queue.New[item.WorkItem](),
		keywordQ:  queue.New[item.WorkItem](),
		contentQ:  queue.New[item.WorkItem](),
		pathQ:     queue.New[item.WorkItem](),
		relayQ:    queue.New[item.Relay](),
		feedbackQ: queue.New[item.Outcome](),
		statusQ:   queue.New[item.ModeSwitch](),
	}

	generator := NewGenerator(s.rawQ, s.modes, s.busy, s.running,
		cfg.RawBlockSize, cfg.GenerateInterval, cfg.GatePause, log.Named("generator"))
	filter := NewFilter(s.rawQ, s.elementQ, s.busy, s.running,
		cfg.PollInterval, cfg.GatePause, log.Named("filter"))
	synthesizer := NewSynthesizer(s.elementQ, s.keywordQ, s.relayQ, s.busy, s.running,
		cfg.PollInterval, cfg.GatePause, log.Named("synthesizer"))
	gateway := NewGateway(s.keywordQ, s.contentQ, s.feedbackQ, s.busy,
		provider, cfg.Model, cfg.GenerateTimeout, s.running, cfg.PollInterval, log.Named("gateway"))
	persistor := NewPersistor(s.contentQ, s.pathQ, s.relayQ, s.feedbackQ, store, s.running,
		cfg.PollInterval, log.Named("persistor"))
	validator := NewValidator(s.pathQ, s.relayQ, s.statusQ, s.modes, store,
		sandbox.NewRunner(cfg.Interpreter, cfg.SandboxTimeout), s.running,
		cfg.PollInterval, log.Named("validator"))

	s.workers = []*Worker{
		{Name: "generator", CPU: 0, Log: log.Named("generator"), Step: generator.Step},
		{Name: "filter", CPU: 1, Log: log.Named("filter"), Step: filter.Step},
		{Name: "synthesizer", CPU: 2, Log: log.Named("synthesizer"), Step: synthesizer.Step},
		{Name: "gateway", CPU: 3, Log: log.Named("gateway"), Step: gateway.Step},
		{Name: "persistor", CPU: 4, Log: log.Named("persistor"), Step: persistor.Step},
		{Name: "validator", CPU: 5, Log: log.Named("validator"), Step: validator.Step},
	}
	return s, nil
}

// Mode returns the shared mode register.
func (s *System) Mode() *mode.Register {
	return s.modes
}

// Gate returns the shared busy gate.
func (s *System) Gate() *gate.Gate {
	return s.busy
}

// Run executes the pipeline for the given wall-clock duration, then shuts
// it down: cooperative signal, bounded grace period, and abandonment of any
// worker that failed to exit (process exit reclaims it).
func (s *System) Run(duration time.Duration) error {
	metrics.Serve(s.cfg.MetricsAddr, func(err error) {
		s.log.Warn("metrics listener failed", zap.Error(err))
	})

	s.running.Set()

	var wg sync.WaitGroup
	for _, w := range s.workers {
		wg.Add(1)
		go w.Run(s.running, &wg)
	}

	// Workers are live; release the pipeline.
	s.busy.Open()
	s.log.Info("all workers running", zap.Duration("duration", duration))

	deadline := time.Now().Add(duration)
	for s.running.IsSet() && time.Now().Before(deadline) {
		if sw, ok := s.statusQ.TryPop(); ok {
			s.log.Info("cycle advanced",
				zap.Stringer("from", sw.From),
				zap.Stringer("to", sw.To),
				zap.String("status", string(sw.Status)))
			continue
		}
		time.Sleep(statusPollInterval)
	}

	return s.shutdown(&wg)
}

func (s *System) shutdown(wg *sync.WaitGroup) error {
	s.log.Info("shutting down workers")
	s.running.Clear()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.log.Info("all workers exited cleanly")
	case <-time.After(s.cfg.ShutdownGrace):
		for _, w := range s.workers {
			if !w.Finished() {
				s.log.Warn("worker did not exit within grace period, abandoning", zap.String("worker", w.Name))
			}
		}
	}

	for _, q := range []interface{ Close() }{
		s.rawQ, s.elementQ, s.keywordQ, s.contentQ, s.pathQ, s.relayQ, s.feedbackQ, s.statusQ,
	} {
		q.Close()
	}

	s.log.Info("pipeline stopped")
	return nil
}
