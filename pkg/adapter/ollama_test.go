package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestOllamaGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Stream {
			t.Errorf("requests must be non-streaming")
		}
		if req.Model != "tinydolphin:latest" {
			t.Errorf("model = %q", req.Model)
		}
		json.NewEncoder(w).Encode(ollamaResponse{Response: "  generated text  "})
	}))
	defer srv.Close()

	a := NewOllamaAdapter(srv.URL, time.Second)
	got, err := a.Generate(context.Background(), "tinydolphin:latest", "hello")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got != "generated text" {
		t.Fatalf("got %q", got)
	}
}

func TestOllamaEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaResponse{Response: "   "})
	}))
	defer srv.Close()

	a := NewOllamaAdapter(srv.URL, time.Second)
	if _, err := a.Generate(context.Background(), "m", "p"); err == nil {
		t.Fatalf("empty response must be an error")
	}
}

func TestOllamaServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := NewOllamaAdapter(srv.URL, time.Second)
	_, err := a.Generate(context.Background(), "m", "p")
	if err == nil {
		t.Fatalf("expected error for 500")
	}
	var provErr *Error
	if !errors.As(err, &provErr) || provErr.Status != http.StatusInternalServerError {
		t.Fatalf("expected status-carrying error, got %v", err)
	}
	if !IsTransient(err) {
		t.Fatalf("5xx should classify as transient")
	}
}

func TestOllamaMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	a := NewOllamaAdapter(srv.URL, time.Second)
	if _, err := a.Generate(context.Background(), "m", "p"); err == nil {
		t.Fatalf("malformed body must be an error")
	}
}

func TestOllamaConnectionRefused(t *testing.T) {
	// Reserve a port, then close it so the connection is refused.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	a := NewOllamaAdapter(url, time.Second)
	_, err := a.Generate(context.Background(), "m", "p")
	if err == nil {
		t.Fatalf("expected connection error")
	}
	if !IsTransient(err) {
		t.Fatalf("connection failure should classify as transient: %v", err)
	}
}

func TestOllamaDefaults(t *testing.T) {
	a := NewOllamaAdapter("", 0)
	if a.baseURL != "http://localhost:11434" {
		t.Fatalf("base url = %q", a.baseURL)
	}
	if a.Name() != "ollama" {
		t.Fatalf("name = %q", a.Name())
	}
}
