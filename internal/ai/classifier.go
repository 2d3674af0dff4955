package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Result is the raw classifier outcome before display normalization.
type Result struct {
	Status  string   `json:"fact_check_status"`
	Score   *float64 `json:"credibility_score"`
	Summary string   `json:"summary"`
}

const requestTimeout = 30 * time.Second

const systemPrompt = `You are a strict fact-checker for a social app.

Return ONLY a JSON object with fields:
  credibility_score (number), fact_check_status (string), summary (string, <=200 chars).

SCORING RULES (mandatory):
- verified    => credibility_score MUST be 5
- misleading  => credibility_score MUST be 3
- outdated    => credibility_score MUST be 2
- unverified  => credibility_score MUST be 1
- debunked    => credibility_score MUST be 0

STATUS RULES:
- "verified" only if reliable sources clearly support the claim.
- "debunked" if reliable sources clearly contradict the claim.
- "outdated" if it used to be true but is no longer true.
- "misleading" if partly true but missing key context.
- "unverified" if sources are insufficient, conflicting, or not reputable.`

// DisabledClassifier is used when no API key is configured. Every call fails,
// which the pipeline treats like any other classifier outage: posts keep
// their Pending verdict.
type DisabledClassifier struct{}

func (DisabledClassifier) Classify(context.Context, string) (Result, error) {
	return Result{}, fmt.Errorf("credibility classifier is not configured")
}

// OpenAIClassifier calls the OpenAI chat API to fact-check post content.
// Calls are rate limited so a burst of posts cannot exhaust the API budget.
type OpenAIClassifier struct {
	client  *openai.Client
	model   string
	limiter *rate.Limiter
}

// NewOpenAIClassifier creates a classifier with the given model and a
// sustained requests-per-second budget.
func NewOpenAIClassifier(apiKey, model string, rps float64) (*OpenAIClassifier, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	if rps <= 0 {
		rps = 1
	}
	return &OpenAIClassifier{
		client:  openai.NewClient(apiKey),
		model:   model,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}, nil
}

// Classify fact-checks the given text. The caller treats any error as a
// transient analysis failure; the post stays Pending.
func (c *OpenAIClassifier) Classify(ctx context.Context, text string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return Result{}, fmt.Errorf("classifier rate limit wait: %v", err)
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Claim: %s", text)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("classifier request failed: %v", err)
	}
	if len(resp.Choices) == 0 {
		return Result{}, fmt.Errorf("classifier returned no choices")
	}

	var result Result
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &result); err != nil {
		return Result{}, fmt.Errorf("classifier returned malformed JSON: %v", err)
	}

	logrus.WithFields(logrus.Fields{
		"status": result.Status,
		"model":  c.model,
	}).Info("Credibility check completed")
	return result, nil
}
