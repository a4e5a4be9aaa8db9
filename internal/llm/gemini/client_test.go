package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"adscript/internal/llm"
)

func candidate(texts ...string) map[string]any {
	parts := make([]map[string]any, len(texts))
	for i, text := range texts {
		parts[i] = map[string]any{"text": text}
	}
	return map[string]any{
		"candidates": []map[string]any{
			{
				"content":      map[string]any{"role": "model", "parts": parts},
				"finishReason": "STOP",
			},
		},
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(context.Background(), Options{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}

func TestComplete(t *testing.T) {
	var calls int32
	var lastBody map[string]any

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if !strings.Contains(r.URL.Path, DefaultModel+":generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if atomic.AddInt32(&calls, 1) == 1 {
			lastBody = body
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(candidate("台本", "の続き"))
	})

	got, err := client.Complete(context.Background(), llm.Request{
		System:          "system prompt",
		Prompt:          "user prompt",
		Temperature:     0.5,
		TopP:            0.95,
		MaxOutputTokens: 2048,
		Completions:     2,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if len(got) != 2 || got[0] != "台本の続き" || got[1] != "台本の続き" {
		t.Errorf("Complete() = %q", got)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("calls = %d, want one per completion", calls)
	}

	if lastBody == nil {
		t.Fatal("no request captured")
	}
	if _, ok := lastBody["systemInstruction"]; !ok {
		t.Error("request missing systemInstruction")
	}
	config, _ := lastBody["generationConfig"].(map[string]any)
	if config["temperature"] != 0.5 {
		t.Errorf("temperature = %v, want 0.5", config["temperature"])
	}
	if config["maxOutputTokens"] != float64(2048) {
		t.Errorf("maxOutputTokens = %v, want 2048", config["maxOutputTokens"])
	}
	thinking, _ := config["thinkingConfig"].(map[string]any)
	if thinking["thinkingBudget"] != float64(0) {
		t.Errorf("thinkingConfig = %v, want thinkingBudget 0", config["thinkingConfig"])
	}
}

func TestCompleteRejectsTruncatedOutput(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		resp := candidate("(0-5s) こんにちは！寝返りうて")
		resp["candidates"].([]map[string]any)[0]["finishReason"] = "MAX_TOKENS"
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})

	got, err := client.Complete(context.Background(), llm.Request{Prompt: "p", Completions: 1, MaxOutputTokens: 10})
	if !errors.Is(err, llm.ErrTruncated) {
		t.Fatalf("Complete() = %q, %v, want ErrTruncated", got, err)
	}
}

func TestCompleteErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "quotaExceeded",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				fmt.Fprint(w, `{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`)
			},
		},
		{
			name: "noCandidates",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, `{"candidates":[]}`)
			},
		},
		{
			name: "emptyText",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(candidate("  "))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)
			_, err := client.Complete(context.Background(), llm.Request{Prompt: "p", Completions: 1, MaxOutputTokens: 10})
			if err == nil {
				t.Error("Complete() expected error")
			}
		})
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(context.Background(), Options{}); err == nil {
		t.Error("NewClient() should fail without an API key")
	}
}
