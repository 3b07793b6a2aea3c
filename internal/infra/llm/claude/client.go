package claude

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/yanqian/faq-relay/internal/domain/completion"
	"github.com/yanqian/faq-relay/pkg/metrics"
)

const defaultMaxTokens = 1024

// Client sends completions to the Anthropic Messages API.
type Client struct {
	client anthropic.Client
	model  string
}

var _ completion.Client = (*Client)(nil)

// NewClient builds a Claude backend. baseURL is optional.
func NewClient(apiKey, baseURL, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("anthropic api key cannot be empty")
	}
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("anthropic model cannot be empty")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if strings.TrimSpace(baseURL) != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Client{
		client: anthropic.NewClient(opts...),
		model:  model,
	}, nil
}

// Complete implements completion.Client. A reply without text blocks yields
// empty Text; only a failed call is an error.
func (c *Client) Complete(ctx context.Context, req completion.Request) (completion.Response, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   int64(maxTokens),
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt))},
		Temperature: anthropic.Float(float64(req.Temperature)),
	}
	if strings.TrimSpace(req.System) != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return completion.Response{}, fmt.Errorf("claude messages call: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	prompt := int(resp.Usage.InputTokens)
	output := int(resp.Usage.OutputTokens)
	return completion.Response{
		Text: text.String(),
		Usage: metrics.TokenUsage{
			PromptTokens:     prompt,
			CompletionTokens: output,
			TotalTokens:      prompt + output,
		},
	}, nil
}
