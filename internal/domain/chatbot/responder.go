package chatbot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yanqian/faq-relay/internal/domain/completion"
	"github.com/yanqian/faq-relay/internal/domain/faq"
)

const (
	defaultChatPrompt    = "Respond to this in a conversational tone: %s"
	defaultChatMaxTokens = 150
)

// Responder produces free-form conversational replies.
type Responder struct {
	cfg    Config
	client completion.Client
	logger *slog.Logger
}

// NewResponder builds the free-form responder.
func NewResponder(cfg Config, client completion.Client, logger *slog.Logger) *Responder {
	return &Responder{cfg: cfg, client: client, logger: logger.With("component", "chatbot.responder")}
}

// Respond never returns an empty string; failures become the apology string.
func (r *Responder) Respond(ctx context.Context, text string) string {
	if r.client == nil {
		r.logger.Error("chat completion unavailable", "error", "completion client not configured")
		return faq.ApologyAnswer
	}
	template := r.cfg.Prompt
	if !strings.Contains(template, "%s") {
		template = defaultChatPrompt
	}
	maxTokens := r.cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultChatMaxTokens
	}
	resp, err := r.client.Complete(ctx, completion.Request{
		Prompt:      fmt.Sprintf(template, text),
		MaxTokens:   maxTokens,
		Temperature: r.cfg.Temperature,
	})
	if err != nil {
		r.logger.Error("chat completion failed", "error", err)
		return faq.ApologyAnswer
	}
	reply := strings.TrimSpace(resp.Text)
	if reply == "" {
		return faq.ApologyAnswer
	}
	return reply
}
