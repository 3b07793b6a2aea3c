package faq

import "context"

// Store keeps per-question counters for the trending list.
type Store interface {
	IncrementQuery(ctx context.Context, canonical, display string) error
	TopQueries(ctx context.Context, limit int) ([]TrendingQuery, error)
}

// QueryLog is the append-only audit trail of resolved questions.
type QueryLog interface {
	Append(ctx context.Context, record QueryRecord) (QueryRecord, error)
	Recent(ctx context.Context, limit int) ([]QueryRecord, error)
}
