// Package adapter is the boundary to the external generation service. The
// pipeline only cares about success, failure and timeout; everything else
// about the provider is opaque.
package adapter

import "context"

// Adapter defines the interface for generation providers.
type Adapter interface {
	// Generate sends a prompt to the model and returns the generated text.
	// An empty response is an error; callers never see partial content.
	Generate(ctx context.Context, model string, prompt string) (string, error)

	// Name returns the adapter's identifier.
	Name() string

	// Models returns the list of supported models.
	Models() []string
}
