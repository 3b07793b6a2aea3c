package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/yanqian/faq-relay/internal/domain/completion"
	"github.com/yanqian/faq-relay/pkg/metrics"
)

// Client sends completions to the Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

var _ completion.Client = (*Client)(nil)

// NewClient builds a Gemini backend. baseURL is optional.
func NewClient(ctx context.Context, apiKey, baseURL, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini api key cannot be empty")
	}
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("gemini model cannot be empty")
	}
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if strings.TrimSpace(baseURL) != "" {
		cc.HTTPOptions.BaseURL = baseURL
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("init genai client: %w", err)
	}
	return &Client{client: client, model: model}, nil
}

// Complete implements completion.Client. A reply without text parts yields
// empty Text; only a failed call is an error.
func (c *Client) Complete(ctx context.Context, req completion.Request) (completion.Response, error) {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	if strings.TrimSpace(req.System) != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	contents := []*genai.Content{genai.NewContentFromText(req.Prompt, genai.RoleUser)}
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return completion.Response{}, fmt.Errorf("gemini generate content: %w", err)
	}

	var text strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					text.WriteString(part.Text)
				}
			}
			if text.Len() > 0 {
				break
			}
		}
	}

	out := completion.Response{Text: text.String()}
	if resp == nil {
		return out, nil
	}
	if meta := resp.UsageMetadata; meta != nil {
		out.Usage = metrics.TokenUsage{
			PromptTokens:     int(meta.PromptTokenCount),
			CompletionTokens: int(meta.CandidatesTokenCount),
			TotalTokens:      int(meta.TotalTokenCount),
		}
	}
	return out, nil
}
