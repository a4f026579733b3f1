// Package glossary holds the term-explanation core: the persistent cache
// store, the provider clients, and the cache-first request coordinator.
package glossary

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	defaultOllamaModel = "llama3.2"
	defaultOpenAIModel = "gpt-4o-mini"
	defaultOpenAIBase  = "https://api.openai.com/v1"

	// Detection prompts carry at most this much leading document text.
	maxDetectContextChars = 1000
	// Explanation prompts carry a bounded snippet of surrounding text, and
	// the same bound applies to the snippet stored on the record.
	maxContextSnippetChars = 240
)

const defaultHTTPTimeout = 2 * time.Minute

// Config describes how to build a provider client.
type Config struct {
	Model      string
	Endpoint   string
	HTTPClient *http.Client
}

// Client is the narrow completion contract with the external explanation
// provider. The coordinator owns prompting and response parsing; a client
// only ships text out and back.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
}

// NewFromEnv inspects CLI arguments & environment variables to build a
// client. OPENAI_API_KEY selects OpenAI; otherwise Ollama is assumed.
func NewFromEnv(cfg Config) (Client, error) {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		model := cfg.Model
		if model == "" {
			if env := os.Getenv("OPENAI_MODEL"); env != "" {
				model = env
			} else {
				model = defaultOpenAIModel
			}
		}
		base := cfg.Endpoint
		if base == "" {
			base = defaultOpenAIBase
		}
		return &openAIClient{
			apiKey: key,
			model:  model,
			base:   strings.TrimRight(base, "/"),
			client: pickHTTPClient(cfg.HTTPClient),
		}, nil
	}

	host := cfg.Endpoint
	if host == "" {
		if env := os.Getenv("OLLAMA_HOST"); env != "" {
			host = strings.TrimRight(env, "/")
		} else {
			host = "http://localhost:11434"
		}
	}
	model := cfg.Model
	if model == "" {
		if env := os.Getenv("OLLAMA_MODEL"); env != "" {
			model = env
		} else {
			model = defaultOllamaModel
		}
	}
	return &ollamaClient{
		host:   host,
		model:  model,
		client: pickHTTPClient(cfg.HTTPClient),
	}, nil
}

func pickHTTPClient(custom *http.Client) *http.Client {
	if custom != nil {
		return custom
	}
	// Local models often need well over a minute; callers cancel via context.
	return &http.Client{Timeout: defaultHTTPTimeout}
}
