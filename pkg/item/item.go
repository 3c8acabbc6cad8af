// Package item defines the messages that flow between pipeline stages.
package item

import (
	"time"

	"github.com/google/uuid"
	"github.com/zen-systems/pulseforge/pkg/mode"
)

// WorkItem is the unit of work flowing forward through the pipeline. The
// Mode tag records which production mode created the item and is carried
// unchanged end to end, so a late stage routes correctly even after the
// global mode has advanced. Each stage reshapes the payload fields: the
// generator fills Raw, the filter and synthesizer fill Elements, the
// gateway fills Content, and the persistor fills Path.
type WorkItem struct {
	ID       string
	Mode     mode.Mode
	Raw      string
	Elements []string
	Content  string
	Path     string
	Created  time.Time
}

// NewWorkItem creates a tagged item holding raw generated material.
func NewWorkItem(m mode.Mode, raw string) WorkItem {
	return WorkItem{
		ID:      uuid.NewString(),
		Mode:    m,
		Raw:     raw,
		Created: time.Now().UTC(),
	}
}

// Status classifies a validated artifact.
type Status string

const (
	StatusStable   Status = "stable"
	StatusUnstable Status = "unstable"
	StatusUnknown  Status = "unknown"
)

// Outcome is the validator's verdict on one artifact. Exactly one outcome
// is produced per artifact and fed back to the generation gateway.
type Outcome struct {
	Status      Status
	ErrorDetail string
	Mode        mode.Mode
	Path        string
	Observed    time.Time
}

// Relay is a message carried through the persistor's relay channel: either
// a plain log note from an upstream stage or a validation outcome destined
// for the gateway. Exactly one of Note and Outcome is set.
type Relay struct {
	Source  string
	Note    string
	Outcome *Outcome
}

// ModeSwitch announces a mode transition to the orchestrator.
type ModeSwitch struct {
	From   mode.Mode
	To     mode.Mode
	Status Status
	At     time.Time
}
