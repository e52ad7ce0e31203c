// Package ai wraps the hosted language-model API behind the two statement
// entry points the show controller consumes.
package ai

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"

	"github.com/duetcast/duetcast/store"
)

// Config holds the statement generator configuration.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL: "https://api.openai.com/v1",
		APIKey:  "",
		Model:   "gpt-4o-mini",
		Timeout: 30 * time.Second,
	}
}

// Generator produces persona-flavored debate statements. Failures carry no
// retry contract here: the show controller substitutes fallback text and the
// protocol continues, so retrying would only stall the turn clock.
type Generator struct {
	client *openai.Client
	config *Config
}

// NewGenerator creates a statement generator against an OpenAI-compatible API.
func NewGenerator(cfg *Config) *Generator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &Generator{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
	}
}

// Opening produces the opening statement for a persona on a topic.
func (g *Generator) Opening(ctx context.Context, topic string, persona store.Persona) (string, error) {
	return g.complete(ctx, openingPrompt(topic, persona))
}

// Reply produces a persona's response to the opponent's last statement.
func (g *Generator) Reply(ctx context.Context, topic string, persona store.Persona, previous string) (string, error) {
	return g.complete(ctx, replyPrompt(topic, persona, previous))
}

func (g *Generator) complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.config.Timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: g.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", errors.Wrap(err, "failed to complete chat")
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", errors.New("empty chat response")
	}
	return resp.Choices[0].Message.Content, nil
}
