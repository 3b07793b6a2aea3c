package faq

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yanqian/faq-relay/internal/domain/completion"
	apperrors "github.com/yanqian/faq-relay/pkg/errors"
	"github.com/yanqian/faq-relay/pkg/metrics"
)

const (
	answerLabel            = "Answer:"
	defaultMaxAnswerTokens = 300
)

// DefaultInstruction frames the completion service as a strict FAQ matcher.
const DefaultInstruction = "You answer employee questions using only the FAQ document you are given. " +
	"Match the question to the FAQ even when it is paraphrased or only partially overlaps with an FAQ question. " +
	"When an FAQ answer covers several topics, return only the part that answers the question. " +
	"If nothing in the FAQ answers the question, reply with exactly: " + NotFoundAnswer

// TokenCounter estimates how many model tokens a text costs.
type TokenCounter interface {
	Count(text string) int
}

// Resolver runs the delegated semantic strategy against a completion backend.
type Resolver struct {
	cfg     Config
	client  completion.Client
	counter TokenCounter
	logger  *slog.Logger
}

// NewResolver builds a resolver. counter may be nil.
func NewResolver(cfg Config, client completion.Client, counter TokenCounter, logger *slog.Logger) *Resolver {
	return &Resolver{
		cfg:     cfg,
		client:  client,
		counter: counter,
		logger:  logger.With("component", "faq.resolver"),
	}
}

// ResolveSemantic never returns an empty string. A failed completion call
// yields ApologyAnswer; a model that finds nothing yields NotFoundAnswer.
func (r *Resolver) ResolveSemantic(ctx context.Context, query, document string) string {
	answer, _, _ := r.resolveSemantic(ctx, query, document)
	return answer
}

func (r *Resolver) resolveSemantic(ctx context.Context, query, document string) (string, metrics.TokenUsage, error) {
	req := r.buildRequest(query, document)
	estimate := r.countTokens(req.System + req.Prompt)

	if r.client == nil {
		err := apperrors.Wrap(apperrors.CodeLLM, "completion client not configured", nil)
		r.logger.Error("faq semantic lookup failed", "error", err)
		return ApologyAnswer, metrics.TokenUsage{}, err
	}

	resp, err := r.client.Complete(ctx, req)
	if err != nil {
		r.logger.Error("faq semantic lookup failed", "error", err, "prompt_tokens", estimate)
		return ApologyAnswer, metrics.TokenUsage{}, apperrors.Wrap(apperrors.CodeLLM, "completion request failed", err)
	}

	usage := resp.Usage.WithEstimatedPrompt(estimate)
	r.logger.Debug("faq semantic lookup completed", "prompt_tokens", usage.PromptTokens, "completion_tokens", usage.CompletionTokens)
	return cleanAnswer(resp.Text), usage, nil
}

func (r *Resolver) buildRequest(query, document string) completion.Request {
	instruction := strings.TrimSpace(r.cfg.Prompt)
	if instruction == "" {
		instruction = DefaultInstruction
	}
	maxTokens := r.cfg.MaxAnswerTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxAnswerTokens
	}
	return completion.Request{
		System:      instruction,
		Prompt:      fmt.Sprintf("FAQ document:\n%s\n\nQuestion: %s", document, query),
		MaxTokens:   maxTokens,
		Temperature: r.cfg.Temperature,
	}
}

func (r *Resolver) countTokens(text string) int {
	if r.counter == nil {
		return 0
	}
	return r.counter.Count(text)
}

// cleanAnswer strips a leading "Answer:" label and surrounding whitespace and
// substitutes NotFoundAnswer for an empty result.
func cleanAnswer(raw string) string {
	answer := strings.TrimSpace(raw)
	answer = strings.TrimSpace(strings.TrimPrefix(answer, answerLabel))
	if answer == "" {
		return NotFoundAnswer
	}
	return answer
}
