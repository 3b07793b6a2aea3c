package faq

import (
	"time"

	"github.com/yanqian/faq-relay/pkg/metrics"
)

// Fixed user-facing strings. NotFoundAnswer is the single canonical "no match" value.
const (
	NotFoundAnswer      = "Sorry, I can't find the answer to that."
	ApologyAnswer       = "I'm sorry, but I encountered an error while looking that up. Please try again later."
	NotConfiguredAnswer = "The FAQ document isn't available right now. Please let an administrator know."
)

// Strategy identifies how a question is matched against the FAQ document.
type Strategy string

const (
	// StrategySemantic delegates matching and extraction to the completion service.
	StrategySemantic Strategy = "semantic"
	// StrategyLiteral scans the document for the first line containing the question.
	StrategyLiteral Strategy = "literal"
)

// Outcome classifies a resolution for logging and the audit trail.
type Outcome string

const (
	OutcomeAnswered      Outcome = "answered"
	OutcomeNotFound      Outcome = "not_found"
	OutcomeFailed        Outcome = "failed"
	OutcomeNotConfigured Outcome = "not_configured"
)

// Request encapsulates a FAQ question.
type Request struct {
	Question string   `json:"question"`
	Strategy Strategy `json:"strategy"`
}

// Response is returned to the chat dispatcher and the HTTP transport.
type Response struct {
	Question   string              `json:"question"`
	Answer     string              `json:"answer"`
	Strategy   Strategy            `json:"strategy"`
	Outcome    Outcome             `json:"outcome"`
	Document   string              `json:"document,omitempty"`
	DurationMs int64               `json:"durationMs,omitempty"`
	TokenUsage *metrics.TokenUsage `json:"tokenUsage,omitempty"`
}

// TrendingQuery represents a frequently asked question.
type TrendingQuery struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// QueryRecord is one row of the query audit trail.
type QueryRecord struct {
	ID        int64     `json:"id"`
	Question  string    `json:"question"`
	Strategy  Strategy  `json:"strategy"`
	Outcome   Outcome   `json:"outcome"`
	CreatedAt time.Time `json:"createdAt"`
}
