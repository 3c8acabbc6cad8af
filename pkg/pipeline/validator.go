package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/zen-systems/pulseforge/pkg/archive"
	"github.com/zen-systems/pulseforge/pkg/item"
	"github.com/zen-systems/pulseforge/pkg/metrics"
	"github.com/zen-systems/pulseforge/pkg/mode"
	"github.com/zen-systems/pulseforge/pkg/queue"
	"github.com/zen-systems/pulseforge/pkg/sandbox"
	"go.uber.org/zap"
)

// Validator checks each persisted artifact, emits exactly one outcome per
// artifact, archives it by (mode, status), and advances the global mode.
// Validation is not gated: it never touches the generation resource.
type Validator struct {
	in      *queue.Queue[item.WorkItem]
	relay   *queue.Queue[item.Relay]
	status  *queue.Queue[item.ModeSwitch]
	modes   *mode.Register
	store   *archive.Store
	runner  *sandbox.Runner
	running *Running
	poll    time.Duration
	log     *zap.Logger
}

// NewValidator wires a validator stage.
func NewValidator(in *queue.Queue[item.WorkItem], relay *queue.Queue[item.Relay], status *queue.Queue[item.ModeSwitch], modes *mode.Register, store *archive.Store, runner *sandbox.Runner, running *Running, poll time.Duration, log *zap.Logger) *Validator {
	return &Validator{in: in, relay: relay, status: status, modes: modes, store: store, runner: runner, running: running, poll: poll, log: log}
}

// Step validates at most one inbound artifact.
func (v *Validator) Step() {
	it, ok := v.in.TryPop()
	if !ok {
		time.Sleep(v.poll)
		return
	}

	st, detail := v.check(it)
	metrics.Validations.WithLabelValues(it.Mode.String(), string(st)).Inc()
	v.log.Info("validated artifact",
		zap.String("id", it.ID),
		zap.String("path", it.Path),
		zap.Stringer("mode", it.Mode),
		zap.String("status", string(st)),
		zap.String("error", detail))

	outcome := item.Outcome{
		Status:      st,
		ErrorDetail: detail,
		Mode:        it.Mode,
		Path:        it.Path,
		Observed:    time.Now().UTC(),
	}
	if err := v.relay.Push(item.Relay{Source: "validator", Outcome: &outcome}); err != nil {
		v.log.Warn("relay queue closed, dropping outcome", zap.Error(err))
	}

	if dest, err := v.store.Archive(it.Path, it.Mode, st); err != nil {
		// Never retried, never fatal.
		metrics.ArchiveFailures.Inc()
		v.log.Error("archive failed", zap.String("path", it.Path), zap.Error(err))
	} else {
		v.log.Info("archived artifact", zap.String("dest", dest), zap.String("status", string(st)))
	}

	v.advanceMode(st)
}

// advanceMode toggles the global mode for any recognized status. Both
// stable and unstable outcomes advance the cycle so the pipeline never
// stalls retrying one mode.
func (v *Validator) advanceMode(st item.Status) {
	switch st {
	case item.StatusStable, item.StatusUnstable:
		from := v.modes.Load()
		to := v.modes.Toggle()
		_ = v.status.Push(item.ModeSwitch{From: from, To: to, Status: st, At: time.Now().UTC()})
		v.log.Info("mode switched", zap.Stringer("from", from), zap.Stringer("to", to), zap.String("status", string(st)))
	default:
		v.log.Warn("unrecognized validation status, leaving mode unchanged", zap.String("status", string(st)))
	}
}

// check dispatches to the mode-specific validation.
func (v *Validator) check(it item.WorkItem) (item.Status, string) {
	switch it.Mode {
	case mode.Script:
		return v.checkScript(it.Path)
	case mode.Content:
		return v.checkContent(it.Path)
	default:
		return item.StatusUnstable, fmt.Sprintf("unknown mode tag: %d", it.Mode)
	}
}

// checkScript runs the artifact in the sandbox. Exit 0 means stable;
// nonzero exit or timeout means unstable with the captured error text.
func (v *Validator) checkScript(path string) (item.Status, string) {
	res, err := v.runner.Run(context.Background(), path)
	if err != nil {
		return item.StatusUnstable, fmt.Sprintf("execution error: %v", err)
	}
	if res.TimedOut {
		return item.StatusUnstable, "script timed out"
	}
	if res.ExitCode != 0 {
		detail := strings.TrimSpace(res.Stderr)
		if detail == "" {
			detail = "no specific error output"
		}
		return item.StatusUnstable, detail
	}
	return item.StatusStable, ""
}

// checkContent accepts any persisted content that is non-empty after
// trimming.
func (v *Validator) checkContent(path string) (item.Status, string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return item.StatusUnstable, fmt.Sprintf("file read error: %v", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return item.StatusUnstable, "content is empty"
	}
	return item.StatusStable, ""
}
