// Package genai is a minimal Gemini generateContent client.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/huyvu15/Agentic-search-company/internal/common/httpclient"
)

var (
	ErrModelCall    = errors.New("MODEL_CALL_FAILED")
	ErrModelTimeout = errors.New("MODEL_TIMEOUT")
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

type Config struct {
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// Client talks to the Gemini REST API. One instance is created at process
// start and shared; every call is stateless.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	maxRetries int
	client     httpclient.Doer
}

func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxRetries: cfg.MaxRetries,
		client:     httpclient.New(timeout),
	}
}

// WithDoer replaces the underlying HTTP client. Used by tests.
func (c *Client) WithDoer(doer httpclient.Doer) *Client {
	c.client = doer
	return c
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends a single-shot prompt and returns the generated text.
func (c *Client) Complete(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error) {
	return c.generate(ctx, []content{{Role: "user", Parts: []part{{Text: prompt}}}}, temperature, maxTokens)
}

func (c *Client) generate(ctx context.Context, contents []content, temperature float64, maxTokens int) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: missing API key", ErrModelCall)
	}
	if c.model == "" {
		return "", fmt.Errorf("%w: missing model", ErrModelCall)
	}

	body, err := json.Marshal(generateRequest{
		Contents: contents,
		GenerationConfig: generationConfig{
			Temperature:     temperature,
			MaxOutputTokens: maxTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrModelCall, err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ErrModelTimeout
			}
		}

		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if reqErr != nil {
			return "", fmt.Errorf("%w: %v", ErrModelCall, reqErr)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", c.apiKey)

		resp, lastErr = c.client.Do(req)

		if ctx.Err() != nil ||
			errors.Is(lastErr, context.DeadlineExceeded) ||
			errors.Is(lastErr, context.Canceled) {
			return "", ErrModelTimeout
		}

		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			resp.Body.Close()
			// 4xx other than 429 will not get better on retry.
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return "", fmt.Errorf("%w: status %d", ErrModelCall, resp.StatusCode)
			}
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}
	}

	if lastErr != nil {
		if errors.Is(lastErr, context.DeadlineExceeded) {
			return "", ErrModelTimeout
		}
		return "", fmt.Errorf("%w: %v", ErrModelCall, lastErr)
	}
	if resp == nil {
		return "", fmt.Errorf("%w: no successful response after retries", ErrModelCall)
	}
	defer resp.Body.Close()

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: decode error: %v", ErrModelCall, err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("%w: api error %d: %s", ErrModelCall, parsed.Error.Code, parsed.Error.Message)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: response had no candidates", ErrModelCall)
	}

	var sb strings.Builder
	for _, p := range parsed.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("%w: response was empty", ErrModelCall)
	}
	return text, nil
}

// ModelName returns the configured model identifier.
func (c *Client) ModelName() string {
	return c.model
}

// HasAPIKey reports whether an API key was configured.
func (c *Client) HasAPIKey() bool {
	return c.apiKey != ""
}
