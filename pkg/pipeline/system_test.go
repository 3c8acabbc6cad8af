package pipeline

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/zen-systems/pulseforge/pkg/adapter"
	"github.com/zen-systems/pulseforge/pkg/archive"
	"github.com/zen-systems/pulseforge/pkg/config"
	"go.uber.org/zap"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Provider:         "mock",
		Model:            "mock-1",
		DataDir:          t.TempDir(),
		Interpreter:      "sh",
		GenerateTimeout:  time.Second,
		SandboxTimeout:   2 * time.Second,
		PollInterval:     2 * time.Millisecond,
		GatePause:        2 * time.Millisecond,
		GenerateInterval: 2 * time.Millisecond,
		ShutdownGrace:    2 * time.Second,
		RawBlockSize:     64,
	}
}

func TestNewSystemRequiresCollaborators(t *testing.T) {
	cfg := testConfig(t)
	store, err := archive.NewStore(cfg.DataDir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	provider := adapter.NewMockAdapter()

	if _, err := NewSystem(nil, provider, store, nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
	if _, err := NewSystem(cfg, nil, store, nil); err == nil {
		t.Fatalf("expected error for nil provider")
	}
	if _, err := NewSystem(cfg, provider, nil, nil); err == nil {
		t.Fatalf("expected error for nil store")
	}
	if _, err := NewSystem(cfg, provider, store, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSystemRunsFullCycles(t *testing.T) {
	if testing.Short() {
		t.Skip("end-to-end run")
	}

	cfg := testConfig(t)
	store, err := archive.NewStore(cfg.DataDir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	// The fenced block is extracted in script mode and runs clean under
	// sh; in content mode the full text is kept, which is non-empty. Both
	// modes therefore validate stable and the mode keeps toggling.
	provider := adapter.NewMockAdapterWithResponses(nil, "```\nexit 0\n```")

	sys, err := NewSystem(cfg, provider, store, zap.NewNop())
	if err != nil {
		t.Fatalf("new system: %v", err)
	}

	start := time.Now()
	if err := sys.Run(600 * time.Millisecond); err != nil {
		t.Fatalf("run: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 600*time.Millisecond+cfg.ShutdownGrace+time.Second {
		t.Fatalf("run took %v, shutdown did not respect the grace bound", elapsed)
	}

	if provider.Calls() == 0 {
		t.Fatalf("no generation calls reached the provider")
	}

	// Every closure is paired with a reopen; the extra reopen is the
	// orchestrator releasing the pipeline at startup.
	g := sys.Gate()
	if !g.IsOpen() {
		t.Fatalf("gate must be open after shutdown")
	}
	if g.Reopens() != g.Closures()+1 {
		t.Fatalf("reopens = %d, closures = %d, want reopens = closures + 1", g.Reopens(), g.Closures())
	}

	archived := 0
	for _, dir := range []string{"stable_script", "stable_content"} {
		entries, err := os.ReadDir(filepath.Join(cfg.DataDir, "archive", dir))
		if err != nil {
			t.Fatalf("read %s: %v", dir, err)
		}
		archived += len(entries)
	}
	if archived == 0 {
		t.Fatalf("no artifacts reached the stable archive")
	}
}
