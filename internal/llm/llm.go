// Package llm wraps the Gemini completion API behind a plain
// prompt-in/text-out client. The pipeline never sends concurrent requests;
// the model backend is treated as a shared, rate-limited resource.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash-preview-05-20"

// ErrEmptyResponse is returned when the model replies with no text. For the
// selection prompt an empty reply means "nothing relevant", so callers
// branch on it with errors.Is rather than treating it as a request failure.
var ErrEmptyResponse = errors.New("empty response from model")

// Client is a Gemini completion client.
type Client struct {
	modelName string
	timeout   time.Duration
	gClient   *genai.Client
}

// NewClient creates a Gemini client. The API key comes from configuration,
// never read from the environment here.
func NewClient(ctx context.Context, apiKey, modelName string, timeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	gClient, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Client{modelName: modelName, timeout: timeout, gClient: gClient}, nil
}

// Complete sends one plain-text prompt and returns the model's text reply.
// One attempt, fixed timeout, no retries: a failure is final for the item
// being processed.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	model := c.gClient.GenerativeModel(c.modelName)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.gClient.Close()
}

// responseText flattens the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return strings.TrimSpace(b.String())
}
