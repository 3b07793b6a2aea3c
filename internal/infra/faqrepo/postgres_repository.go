package faqrepo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/faq-relay/internal/domain/faq"
)

const schema = `
CREATE TABLE IF NOT EXISTS faq_queries (
	id         BIGSERIAL PRIMARY KEY,
	question   TEXT NOT NULL,
	strategy   TEXT NOT NULL,
	outcome    TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS faq_queries_created_at_idx ON faq_queries (created_at DESC);
`

// PostgresRepository implements faq.QueryLog using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema creates the audit table when it does not exist.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure faq_queries schema: %w", err)
	}
	return nil
}

// Append inserts one audit row.
func (r *PostgresRepository) Append(ctx context.Context, record faq.QueryRecord) (faq.QueryRecord, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO faq_queries (question, strategy, outcome)
		VALUES ($1, $2, $3)
		RETURNING id, question, strategy, outcome, created_at
	`, record.Question, string(record.Strategy), string(record.Outcome))
	return scanQueryRecord(row)
}

// Recent returns the newest rows first.
func (r *PostgresRepository) Recent(ctx context.Context, limit int) ([]faq.QueryRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, question, strategy, outcome, created_at
		FROM faq_queries
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (faq.QueryRecord, error) {
		return scanQueryRecord(row)
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQueryRecord(row rowScanner) (faq.QueryRecord, error) {
	var (
		record   faq.QueryRecord
		strategy string
		outcome  string
	)
	if err := row.Scan(&record.ID, &record.Question, &strategy, &outcome, &record.CreatedAt); err != nil {
		return faq.QueryRecord{}, err
	}
	record.Strategy = faq.Strategy(strategy)
	record.Outcome = faq.Outcome(outcome)
	record.CreatedAt = record.CreatedAt.UTC()
	return record, nil
}

var _ faq.QueryLog = (*PostgresRepository)(nil)
