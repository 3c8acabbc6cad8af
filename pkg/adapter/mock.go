package adapter

import (
	"context"
	"fmt"
	"sync"
)

// MockAdapter returns scripted responses for local runs and tests. It also
// supports fault injection so the gate reopen-on-failure contract can be
// exercised without a live provider.
type MockAdapter struct {
	mu              sync.Mutex
	responses       map[string]string
	defaultResponse string
	queued          []queuedResult
	calls           int
}

type queuedResult struct {
	text string
	err  error
}

// NewMockAdapter creates a mock adapter with a default response.
func NewMockAdapter() *MockAdapter {
	return &MockAdapter{
		responses:       make(map[string]string),
		defaultResponse: "mock response:",
	}
}

// NewMockAdapterWithResponses creates a mock adapter with predefined
// per-prompt responses.
func NewMockAdapterWithResponses(responses map[string]string, defaultResponse string) *MockAdapter {
	if defaultResponse == "" {
		defaultResponse = "mock response:"
	}
	return &MockAdapter{responses: responses, defaultResponse: defaultResponse}
}

// QueueResponse enqueues a response returned ahead of the prompt map, in
// FIFO order.
func (a *MockAdapter) QueueResponse(text string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.queued = append(a.queued, queuedResult{text: text})
}

// QueueError enqueues a generation failure.
func (a *MockAdapter) QueueError(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.queued = append(a.queued, queuedResult{err: err})
}

// Calls returns how many generations have been attempted.
func (a *MockAdapter) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

// Name returns the adapter identifier.
func (a *MockAdapter) Name() string {
	return "mock"
}

// Models returns the list of supported mock models.
func (a *MockAdapter) Models() []string {
	return []string{"mock-1"}
}

// Generate returns the next queued result, a per-prompt response, or the
// default response echoing the prompt.
func (a *MockAdapter) Generate(_ context.Context, model string, prompt string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++

	if len(a.queued) > 0 {
		next := a.queued[0]
		a.queued = a.queued[1:]
		return next.text, next.err
	}
	if response, ok := a.responses[prompt]; ok {
		return response, nil
	}
	return fmt.Sprintf("%s\n%s", a.defaultResponse, prompt), nil
}
