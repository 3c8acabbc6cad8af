package pipeline

import (
	"context"
	"time"

	"github.com/zen-systems/pulseforge/pkg/adapter"
	"github.com/zen-systems/pulseforge/pkg/gate"
	"github.com/zen-systems/pulseforge/pkg/item"
	"github.com/zen-systems/pulseforge/pkg/metrics"
	"github.com/zen-systems/pulseforge/pkg/mode"
	"github.com/zen-systems/pulseforge/pkg/prompt"
	"github.com/zen-systems/pulseforge/pkg/queue"
	"github.com/zen-systems/pulseforge/pkg/refine"
	"go.uber.org/zap"
)

// feedbackState is the gateway-local record of the most recent validation.
// It is mutated only by draining the feedback queue at the top of each work
// cycle and read at prompt-build time; last write wins.
type feedbackState struct {
	lastStatus item.Status
	lastError  string
	addendum   string
}

func (f *feedbackState) apply(o item.Outcome) {
	f.lastStatus = o.Status
	f.lastError = o.ErrorDetail
	if o.Status == item.StatusUnstable {
		f.addendum = prompt.CorrectiveAddendum(o.ErrorDetail)
	} else {
		f.addendum = ""
	}
}

// Gateway drives the single-concurrency external generation resource. It is
// the only writer of the busy gate and deliberately ignores the gate pause
// itself; if it paused on the gate it closed, nothing would ever reopen it.
type Gateway struct {
	in       *queue.Queue[item.WorkItem]
	out      *queue.Queue[item.WorkItem]
	feedback *queue.Queue[item.Outcome]
	busy     *gate.Gate
	provider adapter.Adapter
	model    string
	timeout  time.Duration
	running  *Running
	poll     time.Duration
	log      *zap.Logger

	feed feedbackState
}

// NewGateway wires the generation gateway stage.
func NewGateway(in, out *queue.Queue[item.WorkItem], feedback *queue.Queue[item.Outcome], busy *gate.Gate, provider adapter.Adapter, model string, timeout time.Duration, running *Running, poll time.Duration, log *zap.Logger) *Gateway {
	return &Gateway{
		in:       in,
		out:      out,
		feedback: feedback,
		busy:     busy,
		provider: provider,
		model:    model,
		timeout:  timeout,
		running:  running,
		poll:     poll,
		log:      log,
	}
}

// Step drains pending feedback, then processes at most one inbound item.
func (g *Gateway) Step() {
	g.drainFeedback()

	it, ok := g.in.TryPop()
	if !ok {
		time.Sleep(g.poll)
		return
	}

	if !it.Mode.Valid() {
		g.log.Warn("unknown mode tag, skipping generation", zap.String("id", it.ID), zap.Int32("mode", int32(it.Mode)))
		return
	}

	content, err := g.generate(it)
	if err != nil {
		// All generation failures collapse to "no content produced".
		metrics.GenerationFailures.WithLabelValues(it.Mode.String()).Inc()
		g.log.Error("generation produced no content",
			zap.String("id", it.ID),
			zap.Stringer("mode", it.Mode),
			zap.Bool("transient", adapter.IsTransient(err)),
			zap.Error(err))
		return
	}

	it.Content = content
	it.Elements = nil
	if err := g.out.Push(it); err != nil {
		g.log.Error("outbound queue closed, halting", zap.Error(err))
		g.running.Clear()
		return
	}
	g.log.Info("generated content",
		zap.String("id", it.ID),
		zap.Int("bytes", len(content)),
		zap.Stringer("mode", it.Mode))
}

// generate performs exactly one gated external call. The gate closes before
// the call and reopens on every exit path; an unmatched close would pause
// the pipeline permanently.
func (g *Gateway) generate(it item.WorkItem) (string, error) {
	p := prompt.ForMode(it.Mode, it.Elements, g.feed.addendum)

	g.busy.Close()
	metrics.GateClosures.Inc()
	defer g.busy.Open()

	ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
	defer cancel()

	text, err := g.provider.Generate(ctx, g.model, p)
	if err != nil {
		return "", err
	}

	if it.Mode == mode.Script {
		if body, ok := refine.CodeFence(text); ok {
			return body, nil
		}
		g.log.Warn("no fenced code block in response, using full content", zap.String("id", it.ID))
	}
	return text, nil
}

func (g *Gateway) drainFeedback() {
	for {
		o, ok := g.feedback.TryPop()
		if !ok {
			return
		}
		g.feed.apply(o)
		g.log.Info("applied validation feedback",
			zap.String("status", string(o.Status)),
			zap.String("error", o.ErrorDetail))
	}
}
