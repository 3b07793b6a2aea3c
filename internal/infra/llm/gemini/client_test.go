package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/faq-relay/internal/domain/completion"
	"github.com/yanqian/faq-relay/internal/domain/faq"
	"github.com/yanqian/faq-relay/pkg/logger"
)

const testModel = "gemini-2.0-flash"

func newTestClient(t *testing.T, status int, body string, captured *map[string]any) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, testModel+":generateContent"), r.URL.Path)
		if captured != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(context.Background(), "gm-test", srv.URL, testModel)
	require.NoError(t, err)
	return client
}

func TestCompleteReturnsTextAndUsage(t *testing.T) {
	var captured map[string]any
	client := newTestClient(t, http.StatusOK, `{
		"candidates": [{"content": {"role": "model", "parts": [{"text": "Answer: "}, {"text": "Monday"}]}, "finishReason": "STOP"}],
		"usageMetadata": {"promptTokenCount": 12, "candidatesTokenCount": 3, "totalTokenCount": 15}
	}`, &captured)

	resp, err := client.Complete(context.Background(), completion.Request{
		System:    "be terse",
		Prompt:    "when?",
		MaxTokens: 300,
	})
	require.NoError(t, err)
	require.Equal(t, "Answer: Monday", resp.Text)
	require.Equal(t, 12, resp.Usage.PromptTokens)
	require.Equal(t, 15, resp.Usage.TotalTokens)

	require.Contains(t, captured, "systemInstruction")
	generation, ok := captured["generationConfig"].(map[string]any)
	require.True(t, ok)
	require.EqualValues(t, 300, generation["maxOutputTokens"])
	require.Contains(t, generation, "temperature")
}

func TestCompleteWithoutTextIsNotAnError(t *testing.T) {
	client := newTestClient(t, http.StatusOK, `{
		"candidates": [{"content": {"role": "model", "parts": []}, "finishReason": "STOP"}],
		"usageMetadata": {"promptTokenCount": 9, "totalTokenCount": 9}
	}`, nil)

	resp, err := client.Complete(context.Background(), completion.Request{Prompt: "when?"})
	require.NoError(t, err)
	require.Empty(t, resp.Text)

	resolver := faq.NewResolver(faq.Config{MaxAnswerTokens: 50}, client, nil, logger.Discard())
	require.Equal(t, faq.NotFoundAnswer, resolver.ResolveSemantic(context.Background(), "when?", "Q\nA"))
}

func TestCompleteSurfacesAPIError(t *testing.T) {
	client := newTestClient(t, http.StatusBadRequest,
		`{"error": {"code": 400, "message": "API key not valid", "status": "INVALID_ARGUMENT"}}`, nil)

	_, err := client.Complete(context.Background(), completion.Request{Prompt: "when?"})
	require.Error(t, err)

	resolver := faq.NewResolver(faq.Config{MaxAnswerTokens: 50}, client, nil, logger.Discard())
	require.Equal(t, faq.ApologyAnswer, resolver.ResolveSemantic(context.Background(), "when?", "Q\nA"))
}

func TestNewClientValidatesInput(t *testing.T) {
	_, err := NewClient(context.Background(), "", "", testModel)
	require.Error(t, err)
	_, err = NewClient(context.Background(), "gm-test", "", "")
	require.Error(t, err)
}
