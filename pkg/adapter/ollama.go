package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OllamaAdapter talks to a local Ollama server over its native generate
// endpoint. This is the default provider: a single-concurrency local
// resource, which is exactly what the busy gate protects.
type OllamaAdapter struct {
	baseURL string
	client  *http.Client
}

// NewOllamaAdapter creates an adapter for the given base URL,
// e.g. http://localhost:11434. The timeout bounds one full generation.
func NewOllamaAdapter(baseURL string, timeout time.Duration) *OllamaAdapter {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &OllamaAdapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Name returns the adapter identifier.
func (a *OllamaAdapter) Name() string {
	return "ollama"
}

// Models returns the default local models.
func (a *OllamaAdapter) Models() []string {
	return []string{"tinydolphin:latest"}
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// Generate sends a non-streaming generate request and returns the text.
func (a *OllamaAdapter) Generate(ctx context.Context, model string, prompt string) (string, error) {
	body, err := json.Marshal(ollamaRequest{Model: model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", fmt.Errorf("encode ollama request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", &Error{Temporary: true, Err: fmt.Errorf("ollama request failed: %w", err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{Temporary: true, Err: fmt.Errorf("read ollama response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &Error{Status: resp.StatusCode, Err: fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))}
	}

	var parsed ollamaResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", &Error{Err: fmt.Errorf("decode ollama response: %w", err)}
	}
	if parsed.Error != "" {
		return "", &Error{Err: fmt.Errorf("ollama error: %s", parsed.Error)}
	}

	text := strings.TrimSpace(parsed.Response)
	if text == "" {
		return "", &Error{Err: fmt.Errorf("ollama returned empty response for model %s", model)}
	}
	return text, nil
}
