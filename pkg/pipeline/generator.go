package pipeline

import (
	"math/rand"
	"time"

	"github.com/zen-systems/pulseforge/pkg/gate"
	"github.com/zen-systems/pulseforge/pkg/item"
	"github.com/zen-systems/pulseforge/pkg/metrics"
	"github.com/zen-systems/pulseforge/pkg/mode"
	"github.com/zen-systems/pulseforge/pkg/queue"
	"go.uber.org/zap"
)

const rawAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789" +
	"!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~ "

// Generator produces one fixed-size block of raw material per cadence
// interval, tagged with the mode current at creation time. It runs ahead of
// downstream consumption on purpose; the queues are unbounded.
type Generator struct {
	out       *queue.Queue[item.WorkItem]
	modes     *mode.Register
	busy      *gate.Gate
	running   *Running
	blockSize int
	interval  time.Duration
	gatePause time.Duration
	rng       *rand.Rand
	log       *zap.Logger
}

// NewGenerator wires a generator stage.
func NewGenerator(out *queue.Queue[item.WorkItem], modes *mode.Register, busy *gate.Gate, running *Running, blockSize int, interval, gatePause time.Duration, log *zap.Logger) *Generator {
	return &Generator{
		out:       out,
		modes:     modes,
		busy:      busy,
		running:   running,
		blockSize: blockSize,
		interval:  interval,
		gatePause: gatePause,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		log:       log,
	}
}

// Step performs one generation cycle.
func (g *Generator) Step() {
	if !g.busy.IsOpen() {
		time.Sleep(g.gatePause)
		return
	}

	m := g.modes.Load()
	it := item.NewWorkItem(m, g.randomBlock())
	if err := g.out.Push(it); err != nil {
		// A closed queue is unrecoverable; stop the pipeline.
		g.log.Error("outbound queue closed, halting", zap.Error(err))
		g.running.Clear()
		return
	}

	metrics.ItemsGenerated.WithLabelValues(m.String()).Inc()
	g.log.Info("generated raw block",
		zap.String("id", it.ID),
		zap.Int("bytes", g.blockSize),
		zap.Stringer("mode", m))

	time.Sleep(g.interval)
}

func (g *Generator) randomBlock() string {
	b := make([]byte, g.blockSize)
	for i := range b {
		b[i] = rawAlphabet[g.rng.Intn(len(rawAlphabet))]
	}
	return string(b)
}
