package glossary

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOllamaClientComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		var payload struct {
			Model  string `json:"model"`
			Prompt string `json:"prompt"`
			Stream bool   `json:"stream"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		if payload.Model != "llama3.2" {
			t.Fatalf("expected model llama3.2, got %s", payload.Model)
		}
		if !strings.Contains(payload.Prompt, "Term: escrow") {
			t.Fatalf("prompt missing term: %s", payload.Prompt)
		}
		if payload.Stream {
			t.Fatal("expected streaming to be disabled")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":"{\"term\":\"escrow\",\"definition\":\"Money held by a third party.\",\"category\":\"Finance\"}","done":true}`))
	}))
	defer server.Close()

	client := &ollamaClient{
		host:   server.URL,
		model:  "llama3.2",
		client: server.Client(),
	}

	raw, err := client.Complete(context.Background(), buildExplainPrompt("escrow", ""))
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	rec, ok := parseExplanation("escrow", raw)
	if !ok {
		t.Fatalf("response did not parse: %s", raw)
	}
	if rec.Category != CategoryFinance {
		t.Fatalf("unexpected category: %s", rec.Category)
	}
}

func TestOllamaClientSurfacesAPIErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := &ollamaClient{
		host:   server.URL,
		model:  "llama3.2",
		client: server.Client(),
	}

	_, err := client.Complete(context.Background(), "prompt")
	if err == nil {
		t.Fatal("expected an error for a 404 response")
	}
	if !strings.Contains(err.Error(), "model not found") {
		t.Fatalf("error should carry the API body, got: %v", err)
	}
}

func TestOllamaClientRejectsEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":"","done":true}`))
	}))
	defer server.Close()

	client := &ollamaClient{
		host:   server.URL,
		model:  "llama3.2",
		client: server.Client(),
	}

	if _, err := client.Complete(context.Background(), "prompt"); err == nil {
		t.Fatal("expected an error for an empty response")
	}
}

func TestOpenAIClientComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Fatalf("unexpected auth header: %s", got)
		}
		var payload struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		if payload.Model != "gpt-4o-mini" {
			t.Fatalf("expected model gpt-4o-mini, got %s", payload.Model)
		}
		if len(payload.Messages) != 2 || payload.Messages[0].Role != "system" {
			t.Fatalf("unexpected message layout: %+v", payload.Messages)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"[\"escrow\",\"lien\"]"}}]}`))
	}))
	defer server.Close()

	client := &openAIClient{
		apiKey: "test-key",
		model:  "gpt-4o-mini",
		base:   server.URL,
		client: server.Client(),
	}

	raw, err := client.Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	terms, ok := parseTermList(raw)
	if !ok || len(terms) != 2 {
		t.Fatalf("unexpected term list: %v (ok=%v)", terms, ok)
	}
}

func TestOpenAIClientRejectsEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client := &openAIClient{
		apiKey: "test-key",
		model:  "gpt-4o-mini",
		base:   server.URL,
		client: server.Client(),
	}

	if _, err := client.Complete(context.Background(), "prompt"); err == nil {
		t.Fatal("expected an error for empty choices")
	}
}
