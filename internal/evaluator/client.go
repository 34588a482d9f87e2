// Package evaluator calls the external text-generation collaborator that
// scores essays. The collaborator returns an opaque block of natural-language
// text; everything structured about it is someone else's job (see
// internal/feedback).
package evaluator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"bandcheck/pkg/platform/sentinel"
)

const (
	// DefaultModel matches the model the service was tuned against.
	DefaultModel = "gemini-2.0-flash"

	// DefaultTimeout bounds one evaluation call. The collaborator can be
	// slow on long essays; timeout surfaces as an analysis failure rather
	// than hanging a worker.
	DefaultTimeout = 60 * time.Second
)

// promptTemplate fixes the evaluation instructions: the four criteria, the
// per-line response format the extractor expects, whole-number bands, and the
// request to omit the final band-prediction sentence.
const promptTemplate = `You are an IELTS examiner. Evaluate the following essay using the 4 IELTS writing criteria:
- Task Achievement
- Vocabulary
- Grammatical Range & Accuracy
- Coherence & Cohesion

Return the band score and one-sentence comment for each component on a separate line, like:
Task Achievement: 7 - Good understanding but lacks detail.
Vocabulary: 8 - Rich vocabulary with only a few inaccuracies.
Grammatical Range & Accuracy: 7 - Some errors affect clarity.
Coherence & Cohesion: 8 - Well structured with logical flow.
Remember that the band score should be a whole number not half number for each component. Give some mistake examples in the comment.

Then give a brief overall impression summarizing the band scores and comments. Note: Do not include the band prediction sentence and avoid AI biased assessment.

Essay:
%s`

// Client evaluates essays through the Gemini API.
type Client struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

type Option func(*Client)

func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// NewClient creates a Gemini-backed evaluator.
func NewClient(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("evaluator API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create evaluator client: %w", err)
	}

	c := &Client{
		client:  client,
		model:   DefaultModel,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Evaluate submits the essay and returns the collaborator's raw text. Any
// transport failure, timeout, or empty response wraps sentinel.ErrUnavailable
// so the orchestration layer can translate it uniformly.
func (c *Client) Evaluate(ctx context.Context, essay string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	contents := []*genai.Content{
		genai.NewContentFromText(fmt.Sprintf(promptTemplate, essay), genai.RoleUser),
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("%w: empty evaluator response", sentinel.ErrUnavailable)
	}
	return text, nil
}
