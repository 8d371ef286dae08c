package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const (
	defaultOllamaURL   = "http://127.0.0.1:11434"
	defaultOllamaModel = "gemma2:9b-instruct-q4_K_S"
	defaultRetries     = 2
	defaultBackoff     = 600 * time.Millisecond
)

// OllamaOption configures the Ollama client.
type OllamaOption func(*ollamaClient)

// WithBaseURL overrides the default Ollama base URL.
func WithBaseURL(url string) OllamaOption {
	return func(c *ollamaClient) {
		c.baseURL = url
	}
}

// WithModel overrides the default model.
func WithModel(model string) OllamaOption {
	return func(c *ollamaClient) {
		c.model = model
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) OllamaOption {
	return func(c *ollamaClient) {
		c.http = hc
	}
}

// WithRetries sets the number of retry attempts on transport errors.
func WithRetries(n int) OllamaOption {
	return func(c *ollamaClient) {
		c.retries = n
	}
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(rps float64) OllamaOption {
	return func(c *ollamaClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

type ollamaClient struct {
	baseURL string
	model   string
	http    *http.Client
	retries int
	backoff time.Duration
	limiter *rate.Limiter
}

// NewOllama creates a client for a local Ollama server.
func NewOllama(opts ...OllamaOption) Client {
	c := &ollamaClient{
		baseURL: defaultOllamaURL,
		model:   defaultOllamaModel,
		retries: defaultRetries,
		backoff: defaultBackoff,
		http: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  map[string]any  `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
}

func (c *ollamaClient) Chat(ctx context.Context, req ChatRequest) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", eris.Wrap(err, "ollama: rate limit wait")
		}
	}

	var messages []ollamaMessage
	if req.System != "" {
		messages = append(messages, ollamaMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, ollamaMessage{Role: "user", Content: req.Prompt})

	options := map[string]any{}
	if req.Temperature != nil {
		options["temperature"] = *req.Temperature
	}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}

	body, err := json.Marshal(ollamaChatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   false,
		Options:  options,
	})
	if err != nil {
		return "", eris.Wrap(err, "ollama: marshal request")
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", eris.Wrap(ctx.Err(), "ollama: canceled")
			case <-time.After(c.backoff * time.Duration(attempt)):
			}
		}

		text, err := c.doChat(ctx, body)
		if err == nil {
			return text, nil
		}
		lastErr = err
	}
	return "", lastErr
}

func (c *ollamaClient) doChat(ctx context.Context, body []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", eris.Wrap(err, "ollama: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", eris.Wrap(err, "ollama: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", eris.Wrap(err, "ollama: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return "", eris.Errorf("ollama: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result ollamaChatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", eris.Wrap(err, "ollama: unmarshal response")
	}
	return result.Message.Content, nil
}
