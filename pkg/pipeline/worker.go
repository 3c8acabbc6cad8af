package pipeline

import (
	"runtime"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Worker is the shared stage skeleton: a named loop bound to a dedicated
// execution unit that performs one Step per iteration while the running
// flag is set. Steps do their own bounded sleeps (empty-queue poll, gate
// pause), so every worker periodically returns to the loop head where
// cancellation is observed.
type Worker struct {
	Name string
	CPU  int
	Log  *zap.Logger
	Step func()

	finished atomic.Bool
}

// Run executes the worker loop. CPU pinning is best-effort: a failure is
// logged and the worker proceeds unpinned.
func (w *Worker) Run(running *Running, wg *sync.WaitGroup) {
	defer wg.Done()
	defer w.finished.Store(true)

	runtime.LockOSThread()
	if err := pinToCPU(w.CPU); err != nil {
		w.Log.Warn("cpu pinning failed", zap.Int("cpu", w.CPU), zap.Error(err))
	} else {
		w.Log.Info("pinned to execution unit", zap.Int("cpu", w.CPU))
	}

	w.Log.Info("worker started")
	for running.IsSet() {
		w.Step()
	}
	w.Log.Info("worker shut down")
}

// Finished reports whether the worker loop has returned.
func (w *Worker) Finished() bool {
	return w.finished.Load()
}
