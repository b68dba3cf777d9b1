package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClassifier scores sentiment with the OpenAI Chat Completions API.
// It implements firehose.Classifier and is only wired in when an API key is
// configured; ingestion otherwise falls back to the lexicon heuristic.
type OpenAIClassifier struct {
	client *openai.Client
	model  string
}

type Config struct {
	APIKey  string
	Model   string
	BaseURL string // optional
}

func NewOpenAI(cfg Config) *OpenAIClassifier {
	var c *openai.Client
	if cfg.BaseURL != "" {
		cc := openai.DefaultConfig(cfg.APIKey)
		cc.BaseURL = cfg.BaseURL
		c = openai.NewClientWithConfig(cc)
	} else {
		c = openai.NewClient(cfg.APIKey)
	}
	model := cfg.Model
	if model == "" {
		panic("OpenAI model must be specified")
	}
	return &OpenAIClassifier{client: c, model: model}
}

type verdict struct {
	Polarity     float64 `json:"polarity"`
	Subjectivity float64 `json:"subjectivity"`
}

const classifyPrompt = `You score the sentiment of short social media posts.
Respond with only a JSON object: {"polarity": p, "subjectivity": s} where
p is in [-1,1] (negative to positive) and s is in [0,1] (objective to
subjective). No prose.`

func (o *OpenAIClassifier) Classify(ctx context.Context, text string) (float64, float64, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, 0, nil
	}
	if len([]rune(text)) > 1000 {
		text = string([]rune(text)[:1000])
	}
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: classifyPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0,
	})
	if err != nil {
		return 0, 0, err
	}
	if len(resp.Choices) == 0 {
		return 0, 0, fmt.Errorf("openai: empty response")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.Trim(content, "` \n")
	var v verdict
	if err := json.Unmarshal([]byte(content), &v); err != nil {
		return 0, 0, fmt.Errorf("openai: parse verdict: %w", err)
	}
	return clamp(v.Polarity, -1, 1), clamp(v.Subjectivity, 0, 1), nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
