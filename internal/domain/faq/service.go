package faq

import (
	"context"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/yanqian/faq-relay/pkg/errors"
)

const previewLength = 500

// Service exposes FAQ answering to the chat dispatcher and the HTTP API.
type Service interface {
	Load(ctx context.Context, source DocumentSource) (Document, error)
	Ready() bool
	Answer(ctx context.Context, req Request) (Response, error)
	Trending(ctx context.Context) ([]TrendingQuery, error)
	History(ctx context.Context, limit int) ([]QueryRecord, error)
}

type service struct {
	cfg      Config
	holder   *DocumentHolder
	resolver *Resolver
	store    Store
	queryLog QueryLog
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires up the FAQ domain.
func NewService(cfg Config, holder *DocumentHolder, resolver *Resolver, store Store, queryLog QueryLog, logger *slog.Logger) Service {
	return &service{
		cfg:      cfg,
		holder:   holder,
		resolver: resolver,
		store:    store,
		queryLog: queryLog,
		logger:   logger.With("component", "faq.service"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Load(ctx context.Context, source DocumentSource) (Document, error) {
	if source == nil {
		return Document{}, apperrors.Wrap(apperrors.CodeNotConfigured, "no faq document source configured", nil)
	}
	doc, found, err := source.Load(ctx)
	if err != nil {
		return Document{}, err
	}
	if !found {
		return Document{}, ErrDocumentNotFound
	}
	if doc.LoadedAt.IsZero() {
		doc.LoadedAt = s.now()
	}
	if err := s.holder.Set(doc); err != nil {
		return Document{}, err
	}
	s.logger.Info("faq document loaded", "name", doc.Name, "source_id", doc.SourceID, "bytes", len(doc.Content))
	s.logger.Debug("faq document preview", "content", preview(doc.Content, previewLength))
	return doc, nil
}

func (s *service) Ready() bool {
	_, ok := s.holder.Get()
	return ok
}

func (s *service) Answer(ctx context.Context, req Request) (Response, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return Response{}, apperrors.Wrap(apperrors.CodeInvalidInput, "question cannot be empty", nil)
	}
	strategy := sanitizeStrategy(req.Strategy)
	start := time.Now()

	doc, ok := s.holder.Get()
	if !ok {
		s.logger.Warn("faq question received without a loaded document", "strategy", strategy)
		return Response{
			Question: question,
			Answer:   NotConfiguredAnswer,
			Strategy: strategy,
			Outcome:  OutcomeNotConfigured,
		}, nil
	}

	resp := Response{
		Question: question,
		Strategy: strategy,
		Document: doc.Name,
	}
	switch strategy {
	case StrategyLiteral:
		resp.Answer = ResolveLiteral(question, doc.Content)
		resp.Outcome = classify(resp.Answer, nil)
	default:
		answer, usage, err := s.resolver.resolveSemantic(ctx, question, doc.Content)
		resp.Answer = answer
		resp.Outcome = classify(answer, err)
		if !usage.IsZero() {
			resp.TokenUsage = &usage
		}
	}
	resp.DurationMs = time.Since(start).Milliseconds()

	s.record(ctx, question, strategy, resp.Outcome)
	s.logger.Info("faq question resolved", "strategy", strategy, "outcome", resp.Outcome, "duration_ms", resp.DurationMs)
	return resp, nil
}

func (s *service) Trending(ctx context.Context) ([]TrendingQuery, error) {
	recs, err := s.store.TopQueries(ctx, s.cfg.TopRecommendations)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeFAQ, "failed to load trending queries", err)
	}
	return recs, nil
}

func (s *service) History(ctx context.Context, limit int) ([]QueryRecord, error) {
	if limit <= 0 || (s.cfg.HistoryLimit > 0 && limit > s.cfg.HistoryLimit) {
		limit = s.cfg.HistoryLimit
	}
	records, err := s.queryLog.Recent(ctx, limit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeFAQ, "failed to load query history", err)
	}
	return records, nil
}

// record is best effort; a failing store never changes the answer.
func (s *service) record(ctx context.Context, question string, strategy Strategy, outcome Outcome) {
	if key := canonicalQuestion(question); key != "" {
		if err := s.store.IncrementQuery(ctx, key, question); err != nil {
			s.logger.Warn("faq trending increment failed", "error", err)
		}
	}
	_, err := s.queryLog.Append(ctx, QueryRecord{
		Question:  question,
		Strategy:  strategy,
		Outcome:   outcome,
		CreatedAt: s.now(),
	})
	if err != nil {
		s.logger.Warn("faq query log append failed", "error", err)
	}
}

func classify(answer string, err error) Outcome {
	switch {
	case err != nil:
		return OutcomeFailed
	case answer == NotFoundAnswer:
		return OutcomeNotFound
	default:
		return OutcomeAnswered
	}
}

func sanitizeStrategy(strategy Strategy) Strategy {
	switch strategy {
	case StrategyLiteral, StrategySemantic:
		return strategy
	default:
		return StrategySemantic
	}
}

func preview(content string, limit int) string {
	runes := []rune(content)
	if len(runes) <= limit {
		return content
	}
	return string(runes[:limit])
}
