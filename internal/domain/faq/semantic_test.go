package faq

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/faq-relay/internal/domain/completion"
	"github.com/yanqian/faq-relay/pkg/logger"
	"github.com/yanqian/faq-relay/pkg/metrics"
)

type stubCompleter struct {
	text    string
	usage   metrics.TokenUsage
	err     error
	calls   int
	lastReq completion.Request
}

func (s *stubCompleter) Complete(_ context.Context, req completion.Request) (completion.Response, error) {
	s.calls++
	s.lastReq = req
	if s.err != nil {
		return completion.Response{}, s.err
	}
	return completion.Response{Text: s.text, Usage: s.usage}, nil
}

type fixedCounter int

func (c fixedCounter) Count(string) int { return int(c) }

func newTestResolver(client completion.Client) *Resolver {
	cfg := Config{MaxAnswerTokens: 120, Temperature: 0}
	return NewResolver(cfg, client, fixedCounter(42), logger.Discard())
}

func TestResolveSemanticStripsAnswerLabel(t *testing.T) {
	client := &stubCompleter{text: "Answer: We close at 9pm."}
	got := newTestResolver(client).ResolveSemantic(context.Background(), "when do you close", sampleDocument)
	require.Equal(t, "We close at 9pm.", got)
}

func TestResolveSemanticBuildsRequest(t *testing.T) {
	client := &stubCompleter{text: "We are open 9am to 6pm."}
	resolver := newTestResolver(client)

	_ = resolver.ResolveSemantic(context.Background(), "opening times?", sampleDocument)

	require.Equal(t, 1, client.calls)
	require.Equal(t, DefaultInstruction, client.lastReq.System)
	require.Contains(t, client.lastReq.System, NotFoundAnswer)
	require.Contains(t, client.lastReq.Prompt, sampleDocument)
	require.Contains(t, client.lastReq.Prompt, "Question: opening times?")
	require.Equal(t, 120, client.lastReq.MaxTokens)
	require.Zero(t, client.lastReq.Temperature)
}

func TestResolveSemanticUsesConfiguredPrompt(t *testing.T) {
	client := &stubCompleter{text: "ok"}
	resolver := NewResolver(Config{Prompt: "  custom framing  "}, client, nil, logger.Discard())

	_ = resolver.ResolveSemantic(context.Background(), "q", "doc")

	require.Equal(t, "custom framing", client.lastReq.System)
	require.Equal(t, defaultMaxAnswerTokens, client.lastReq.MaxTokens)
}

func TestResolveSemanticEmptyOutputBecomesSentinel(t *testing.T) {
	for _, raw := range []string{"", "   \n", "Answer:", "  Answer:   "} {
		client := &stubCompleter{text: raw}
		got := newTestResolver(client).ResolveSemantic(context.Background(), "q", sampleDocument)
		require.Equal(t, NotFoundAnswer, got, "raw %q", raw)
	}
}

func TestResolveSemanticPassesModelSentinelThrough(t *testing.T) {
	client := &stubCompleter{text: NotFoundAnswer}
	got := newTestResolver(client).ResolveSemantic(context.Background(), "dress code", sampleDocument)
	require.Equal(t, NotFoundAnswer, got)
}

func TestResolveSemanticTransportFailureReturnsApology(t *testing.T) {
	client := &stubCompleter{err: errors.New("429 quota exceeded")}
	resolver := newTestResolver(client)

	first := resolver.ResolveSemantic(context.Background(), "hours", sampleDocument)
	second := resolver.ResolveSemantic(context.Background(), "hours", sampleDocument)

	require.Equal(t, ApologyAnswer, first)
	require.Equal(t, first, second)
	require.NotEqual(t, NotFoundAnswer, first)
}

func TestResolveSemanticWithoutClientReturnsApology(t *testing.T) {
	resolver := NewResolver(Config{}, nil, nil, logger.Discard())
	require.Equal(t, ApologyAnswer, resolver.ResolveSemantic(context.Background(), "hours", sampleDocument))
}

func TestResolveSemanticEstimatesPromptTokens(t *testing.T) {
	client := &stubCompleter{text: "yes", usage: metrics.TokenUsage{CompletionTokens: 3}}
	_, usage, err := newTestResolver(client).resolveSemantic(context.Background(), "q", "doc")
	require.NoError(t, err)
	require.Equal(t, metrics.TokenUsage{PromptTokens: 42, CompletionTokens: 3, TotalTokens: 45}, usage)
}

func TestCleanAnswer(t *testing.T) {
	tests := map[string]string{
		"Answer: Bring your badge.":   "Bring your badge.",
		"  Bring your badge.  ":       "Bring your badge.",
		"The Answer: is on the wiki.": "The Answer: is on the wiki.",
		"answer: lower case label":    "answer: lower case label",
	}
	for raw, want := range tests {
		require.Equal(t, want, cleanAnswer(raw), "raw %q", raw)
	}
}
