package completion

import (
	"context"

	"github.com/yanqian/faq-relay/pkg/metrics"
)

// Request is a single-turn completion: a system framing plus one user prompt.
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float32
}

// Response is the text produced for a Request.
type Response struct {
	Text  string
	Usage metrics.TokenUsage
}

// Client is the capability every hosted model backend provides.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, req Request) (Response, error)

// Complete implements Client.
func (f ClientFunc) Complete(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}
