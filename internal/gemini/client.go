// Package gemini sends prompts to a remote text-generation API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel    = "gemini-2.0-flash"

	maxErrorBody = 512
)

var (
	// ErrMissingAPIKey is returned before any network I/O when no key is set.
	ErrMissingAPIKey = errors.New("API key is not set")
	// ErrUnexpectedResponse is returned when the reply has no text part.
	ErrUnexpectedResponse = errors.New("unexpected response structure from Gemini API")
)

// RemoteCallError describes a failed request to the remote model.
type RemoteCallError struct {
	// StatusCode is zero when no HTTP response was received.
	StatusCode int
	Status     string
	Body       string
	Err        error
}

func (e *RemoteCallError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("API request failed: %s: %s", e.Status, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("API request failed: %s", e.Status)
	default:
		return e.Err.Error()
	}
}

func (e *RemoteCallError) Unwrap() error { return e.Err }

// Generator produces a text reply for a prompt. It makes a single attempt.
type Generator interface {
	Generate(ctx context.Context, apiKey, prompt string) (string, error)
}

// GenerationConfig holds the static sampling parameters sent with every request.
type GenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// DefaultGenerationConfig returns the parameters used when none are configured.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Temperature:     0.7,
		TopK:            40,
		TopP:            0.95,
		MaxOutputTokens: 2048,
	}
}

// Client calls the generateContent method of the Gemini REST API.
type Client struct {
	endpoint   string
	model      string
	generation GenerationConfig
	client     *http.Client
}

// New creates a client. Empty endpoint and model fall back to the defaults.
func New(endpoint, model string, generation GenerationConfig, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		model:      model,
		generation: generation,
		client:     &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content *struct {
			Parts []struct {
				Text *string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate sends the prompt and returns the text of the first candidate.
func (c *Client) Generate(ctx context.Context, apiKey, prompt string) (string, error) {
	if apiKey == "" {
		return "", &RemoteCallError{Err: ErrMissingAPIKey}
	}

	data, err := json.Marshal(generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: c.generation,
	})
	if err != nil {
		return "", &RemoteCallError{Err: fmt.Errorf("failed to encode request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.requestURL(apiKey), bytes.NewReader(data))
	if err != nil {
		return "", &RemoteCallError{Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	slog.Debug("gemini request", "model", c.model, "prompt_bytes", len(prompt))
	start := time.Now()

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", &RemoteCallError{Err: redactKey(err, apiKey)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &RemoteCallError{StatusCode: resp.StatusCode, Status: resp.Status, Err: err}
	}
	slog.Debug("gemini response", "status", resp.StatusCode, "bytes", len(body), "elapsed", time.Since(start))

	if resp.StatusCode/100 != 2 {
		return "", &RemoteCallError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       excerpt(body),
			Err:        fmt.Errorf("status %d", resp.StatusCode),
		}
	}

	return extractText(body)
}

func (c *Client) requestURL(apiKey string) string {
	q := url.Values{}
	q.Set("key", apiKey)
	return fmt.Sprintf("%s/models/%s:generateContent?%s", c.endpoint, url.PathEscape(c.model), q.Encode())
}

// extractText reads candidates[0].content.parts[0].text.
func extractText(body []byte) (string, error) {
	var result generateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", &RemoteCallError{Err: fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)}
	}
	if len(result.Candidates) == 0 ||
		result.Candidates[0].Content == nil ||
		len(result.Candidates[0].Content.Parts) == 0 ||
		result.Candidates[0].Content.Parts[0].Text == nil {
		return "", &RemoteCallError{Err: ErrUnexpectedResponse}
	}
	return *result.Candidates[0].Content.Parts[0].Text, nil
}

func excerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody] + "..."
	}
	return s
}

// redactKey keeps the API key out of transport errors, which embed the URL.
func redactKey(err error, apiKey string) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}
	u := strings.ReplaceAll(urlErr.URL, url.QueryEscape(apiKey), "REDACTED")
	return fmt.Errorf("%s %s: %w", urlErr.Op, u, urlErr.Err)
}
