// Package llm wraps the OpenAI chat-completion API behind the ChatModel
// boundary: one synchronous call, bounded output, no retries.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	contractx "github.com/chatcart/chatcart/chat/contract"
)

type Config struct {
	APIKey      string        `split_words:"true" required:"true"`
	BaseURL     string        `split_words:"true"`
	Model       string        `split_words:"true" default:"gpt-4o-mini"`
	Temperature float64       `split_words:"true" default:"0.7"`
	MaxTokens   int64         `split_words:"true" default:"300"`
	Timeout     time.Duration `split_words:"true" default:"30s"`
}

// Client is the production ChatModel implementation.
type Client struct {
	api         openaisdk.Client
	model       string
	temperature float64
	maxTokens   int64
}

var _ contractx.ChatModel = (*Client)(nil)

func NewClient(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: llm api key is required", contractx.ErrValidation)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if trimmed := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); trimmed != "" {
		opts = append(opts, option.WithBaseURL(trimmed))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	return &Client{
		api:         openaisdk.NewClient(opts...),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

func MustNew(cfg Config) *Client {
	client, err := NewClient(cfg)
	if err != nil {
		panic(err)
	}
	return client
}

// Complete sends the ordered turn sequence and returns the assistant reply.
func (c *Client) Complete(ctx context.Context, turns []contractx.Turn) (string, error) {
	if len(turns) == 0 {
		return "", fmt.Errorf("%w: empty message sequence", contractx.ErrValidation)
	}

	messages, err := toMessageParams(turns)
	if err != nil {
		return "", err
	}

	completion, err := c.api.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model:       openaisdk.ChatModel(c.model),
		Messages:    messages,
		Temperature: openaisdk.Float(c.temperature),
		MaxTokens:   openaisdk.Int(c.maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("%w: chat completion: %v", contractx.ErrUpstream, err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: chat completion returned no choices", contractx.ErrUpstream)
	}

	return completion.Choices[0].Message.Content, nil
}

func toMessageParams(turns []contractx.Turn) ([]openaisdk.ChatCompletionMessageParamUnion, error) {
	messages := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(turns))
	for _, turn := range turns {
		switch turn.Role {
		case contractx.RoleSystem:
			messages = append(messages, openaisdk.SystemMessage(turn.Content))
		case contractx.RoleUser:
			messages = append(messages, openaisdk.UserMessage(turn.Content))
		case contractx.RoleAssistant:
			messages = append(messages, openaisdk.AssistantMessage(turn.Content))
		default:
			return nil, fmt.Errorf("%w: unknown role %q", contractx.ErrValidation, turn.Role)
		}
	}
	return messages, nil
}
