package tokenizer

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/yanqian/faq-relay/internal/domain/faq"
)

const fallbackEncoding = "cl100k_base"

// Counter counts prompt tokens with the BPE encoding of the configured model.
// The encoding is resolved once, either by Warm or by the first Count; when
// it cannot be loaded the counter falls back to a word based estimate.
type Counter struct {
	model  string
	logger *slog.Logger

	forModel func(model string) (*tiktoken.Tiktoken, error)
	byName   func(name string) (*tiktoken.Tiktoken, error)

	once sync.Once
	enc  *tiktoken.Tiktoken
}

var _ faq.TokenCounter = (*Counter)(nil)

// NewCounter builds a counter for the given model name.
func NewCounter(model string, logger *slog.Logger) *Counter {
	return &Counter{
		model:    model,
		logger:   logger.With("component", "tokenizer"),
		forModel: tiktoken.EncodingForModel,
		byName:   tiktoken.GetEncoding,
	}
}

// Warm resolves the encoding ahead of the first request. The BPE ranks may
// be downloaded, so callers usually run it in the background at startup.
func (c *Counter) Warm() {
	c.once.Do(c.load)
}

// Count returns the number of tokens in text.
func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}
	c.once.Do(c.load)
	if c.enc == nil {
		return EstimateWords(text)
	}
	return len(c.enc.Encode(text, nil, nil))
}

func (c *Counter) load() {
	enc, err := c.forModel(c.model)
	if err == nil {
		c.enc = enc
		return
	}
	enc, fallbackErr := c.byName(fallbackEncoding)
	if fallbackErr != nil {
		c.logger.Warn("token encoding unavailable, estimating from words", "model", c.model, "error", fallbackErr)
		return
	}
	c.logger.Debug("model has no known encoding, using default", "model", c.model, "encoding", fallbackEncoding)
	c.enc = enc
}

// EstimateWords approximates token count at four tokens per three words.
func EstimateWords(text string) int {
	words := len(strings.Fields(text))
	return (words*4 + 2) / 3
}
