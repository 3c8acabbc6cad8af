package pipeline

import (
	"strings"
	"testing"
	"time"

	"github.com/zen-systems/pulseforge/pkg/archive"
	"github.com/zen-systems/pulseforge/pkg/gate"
	"github.com/zen-systems/pulseforge/pkg/item"
	"github.com/zen-systems/pulseforge/pkg/mode"
	"github.com/zen-systems/pulseforge/pkg/queue"
	"go.uber.org/zap"
)

func TestGeneratorRespectsClosedGate(t *testing.T) {
	out := queue.New[item.WorkItem]()
	busy := gate.New() // starts closed
	g := NewGenerator(out, mode.NewRegister(mode.Script), busy, NewRunning(),
		64, time.Millisecond, time.Millisecond, zap.NewNop())

	g.Step()
	if out.Len() != 0 {
		t.Fatalf("generator must not produce while the gate is closed")
	}

	busy.Open()
	g.Step()
	it, ok := out.TryPop()
	if !ok {
		t.Fatalf("generator must produce while the gate is open")
	}
	if len(it.Raw) != 64 {
		t.Fatalf("raw block size = %d, want 64", len(it.Raw))
	}
	if it.Mode != mode.Script {
		t.Fatalf("item mode = %s, want the register's value", it.Mode)
	}
	if it.ID == "" {
		t.Fatalf("item must carry an id")
	}
}

func TestGeneratorTagsCurrentMode(t *testing.T) {
	out := queue.New[item.WorkItem]()
	busy := gate.New()
	busy.Open()
	reg := mode.NewRegister(mode.Content)
	g := NewGenerator(out, reg, busy, NewRunning(), 16, time.Millisecond, time.Millisecond, zap.NewNop())

	g.Step()
	it, _ := out.TryPop()
	if it.Mode != mode.Content {
		t.Fatalf("item mode = %s, want content", it.Mode)
	}
}

func TestFilterExtractsAndClearsRaw(t *testing.T) {
	in := queue.New[item.WorkItem]()
	out := queue.New[item.WorkItem]()
	busy := gate.New()
	busy.Open()
	f := NewFilter(in, out, busy, NewRunning(), time.Millisecond, time.Millisecond, zap.NewNop())

	in.Push(item.WorkItem{ID: "t1", Mode: mode.Script, Raw: "alpha beta.alpha_gamma"})
	f.Step()

	it, ok := out.TryPop()
	if !ok {
		t.Fatalf("expected forwarded item")
	}
	if it.Raw != "" {
		t.Fatalf("raw payload must be cleared after extraction")
	}
	if len(it.Elements) != 3 {
		t.Fatalf("elements = %v, want 3 unique tokens", it.Elements)
	}
}

func TestFilterUnknownModeRecovers(t *testing.T) {
	in := queue.New[item.WorkItem]()
	out := queue.New[item.WorkItem]()
	busy := gate.New()
	busy.Open()
	f := NewFilter(in, out, busy, NewRunning(), time.Millisecond, time.Millisecond, zap.NewNop())

	in.Push(item.WorkItem{ID: "t1", Mode: mode.Mode(99), Raw: strings.Repeat("z", 300)})
	f.Step()

	it, ok := out.TryPop()
	if !ok {
		t.Fatalf("unknown mode is recoverable, the item must still be forwarded")
	}
	if len(it.Elements) != 1 || len(it.Elements[0]) != 100 {
		t.Fatalf("expected a single truncated sample, got %v", it.Elements)
	}
}

func TestSynthesizerEmitsRelayNote(t *testing.T) {
	in := queue.New[item.WorkItem]()
	out := queue.New[item.WorkItem]()
	relay := queue.New[item.Relay]()
	busy := gate.New()
	busy.Open()
	s := NewSynthesizer(in, out, relay, busy, NewRunning(), time.Millisecond, time.Millisecond, zap.NewNop())

	in.Push(item.WorkItem{ID: "t1", Mode: mode.Content, Elements: []string{"digital", "marketing"}})
	s.Step()

	it, ok := out.TryPop()
	if !ok {
		t.Fatalf("expected forwarded item")
	}
	if len(it.Elements) != 1 || it.Elements[0] != "digital marketing" {
		t.Fatalf("keywords = %v", it.Elements)
	}

	note, ok := relay.TryPop()
	if !ok {
		t.Fatalf("expected a relay note")
	}
	if note.Source != "synthesizer" || note.Outcome != nil {
		t.Fatalf("unexpected relay message: %+v", note)
	}
}

func TestSynthesizerEmptyInputPlaceholder(t *testing.T) {
	in := queue.New[item.WorkItem]()
	out := queue.New[item.WorkItem]()
	relay := queue.New[item.Relay]()
	busy := gate.New()
	busy.Open()
	s := NewSynthesizer(in, out, relay, busy, NewRunning(), time.Millisecond, time.Millisecond, zap.NewNop())

	in.Push(item.WorkItem{ID: "t1", Mode: mode.Script})
	s.Step()

	it, ok := out.TryPop()
	if !ok {
		t.Fatalf("expected forwarded item")
	}
	if len(it.Elements) != 1 || it.Elements[0] != "basic_script_idea" {
		t.Fatalf("empty input must yield the placeholder, got %v", it.Elements)
	}
}

func TestPersistorWritesAndForwards(t *testing.T) {
	store, err := archive.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	in := queue.New[item.WorkItem]()
	out := queue.New[item.WorkItem]()
	relay := queue.New[item.Relay]()
	feedback := queue.New[item.Outcome]()
	p := NewPersistor(in, out, relay, feedback, store, NewRunning(), time.Millisecond, zap.NewNop())

	in.Push(item.WorkItem{ID: "t1", Mode: mode.Content, Content: "hello"})
	p.Step()

	it, ok := out.TryPop()
	if !ok {
		t.Fatalf("expected forwarded item")
	}
	if it.Path == "" || it.Content != "" {
		t.Fatalf("persistor must swap content for a path: %+v", it)
	}
}

func TestPersistorRelaysOutcomes(t *testing.T) {
	store, err := archive.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	in := queue.New[item.WorkItem]()
	out := queue.New[item.WorkItem]()
	relay := queue.New[item.Relay]()
	feedback := queue.New[item.Outcome]()
	p := NewPersistor(in, out, relay, feedback, store, NewRunning(), time.Millisecond, zap.NewNop())

	o := item.Outcome{Status: item.StatusUnstable, ErrorDetail: "NameError", Mode: mode.Script}
	relay.Push(item.Relay{Source: "validator", Outcome: &o})
	relay.Push(item.Relay{Source: "synthesizer", Note: "synthesized script keywords"})
	p.Step()

	got, ok := feedback.TryPop()
	if !ok {
		t.Fatalf("outcome must be forwarded to the gateway feedback queue")
	}
	if got.ErrorDetail != "NameError" {
		t.Fatalf("outcome = %+v", got)
	}
	if _, ok := feedback.TryPop(); ok {
		t.Fatalf("plain notes must not reach the feedback queue")
	}
}
