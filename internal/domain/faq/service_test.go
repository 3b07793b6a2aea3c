package faq

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/faq-relay/pkg/errors"
	"github.com/yanqian/faq-relay/pkg/logger"
)

type fakeStore struct {
	counts map[string]int64
	err    error
}

func (s *fakeStore) IncrementQuery(_ context.Context, canonical, _ string) error {
	if s.err != nil {
		return s.err
	}
	if s.counts == nil {
		s.counts = make(map[string]int64)
	}
	s.counts[canonical]++
	return nil
}

func (s *fakeStore) TopQueries(_ context.Context, limit int) ([]TrendingQuery, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]TrendingQuery, 0, len(s.counts))
	for q, c := range s.counts {
		out = append(out, TrendingQuery{Query: q, Count: c})
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeQueryLog struct {
	records   []QueryRecord
	err       error
	lastLimit int
}

func (l *fakeQueryLog) Append(_ context.Context, record QueryRecord) (QueryRecord, error) {
	if l.err != nil {
		return QueryRecord{}, l.err
	}
	record.ID = int64(len(l.records) + 1)
	l.records = append(l.records, record)
	return record, nil
}

func (l *fakeQueryLog) Recent(_ context.Context, limit int) ([]QueryRecord, error) {
	l.lastLimit = limit
	if l.err != nil {
		return nil, l.err
	}
	return l.records, nil
}

type staticSource struct {
	doc   Document
	found bool
	err   error
}

func (s staticSource) Load(context.Context) (Document, bool, error) {
	return s.doc, s.found, s.err
}

type serviceFixture struct {
	svc    Service
	holder *DocumentHolder
	client *stubCompleter
	store  *fakeStore
	log    *fakeQueryLog
}

func newServiceFixture(t *testing.T) serviceFixture {
	t.Helper()
	client := &stubCompleter{text: "Answer: Submit it in the HR portal."}
	holder := NewDocumentHolder()
	store := &fakeStore{}
	queryLog := &fakeQueryLog{}
	resolver := newTestResolver(client)
	svc := NewService(Config{TopRecommendations: 5, HistoryLimit: 20}, holder, resolver, store, queryLog, logger.Discard())
	return serviceFixture{svc: svc, holder: holder, client: client, store: store, log: queryLog}
}

func (f serviceFixture) load(t *testing.T) {
	t.Helper()
	_, err := f.svc.Load(context.Background(), staticSource{doc: Document{Name: "Employee FAQ", Content: sampleDocument}, found: true})
	require.NoError(t, err)
}

func TestServiceLoadPopulatesHolderOnce(t *testing.T) {
	f := newServiceFixture(t)
	require.False(t, f.svc.Ready())

	f.load(t)
	require.True(t, f.svc.Ready())
	doc, ok := f.holder.Get()
	require.True(t, ok)
	require.Equal(t, "Employee FAQ", doc.Name)
	require.False(t, doc.LoadedAt.IsZero())

	_, err := f.svc.Load(context.Background(), staticSource{doc: Document{Content: "other"}, found: true})
	require.ErrorIs(t, err, ErrDocumentAlreadyLoaded)
	doc, _ = f.holder.Get()
	require.Equal(t, sampleDocument, doc.Content)
}

func TestServiceLoadReportsAbsentDocument(t *testing.T) {
	f := newServiceFixture(t)
	_, err := f.svc.Load(context.Background(), staticSource{found: false})
	require.ErrorIs(t, err, ErrDocumentNotFound)
	require.False(t, f.svc.Ready())
}

func TestServiceLoadPropagatesSourceError(t *testing.T) {
	f := newServiceFixture(t)
	cause := apperrors.Wrap(apperrors.CodeSourceAuth, "token rejected", nil)
	_, err := f.svc.Load(context.Background(), staticSource{err: cause})
	require.True(t, apperrors.IsCode(err, apperrors.CodeSourceAuth))

	_, err = f.svc.Load(context.Background(), nil)
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotConfigured))
}

func TestServiceAnswerWithoutDocument(t *testing.T) {
	f := newServiceFixture(t)
	resp, err := f.svc.Answer(context.Background(), Request{Question: "hours?"})
	require.NoError(t, err)
	require.Equal(t, NotConfiguredAnswer, resp.Answer)
	require.Equal(t, OutcomeNotConfigured, resp.Outcome)
	require.Zero(t, f.client.calls)
	require.Empty(t, f.log.records)
}

func TestServiceAnswerRejectsEmptyQuestion(t *testing.T) {
	f := newServiceFixture(t)
	f.load(t)
	_, err := f.svc.Answer(context.Background(), Request{Question: "   "})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestServiceAnswerLiteral(t *testing.T) {
	f := newServiceFixture(t)
	f.load(t)

	resp, err := f.svc.Answer(context.Background(), Request{Question: "  office HOURS ", Strategy: StrategyLiteral})
	require.NoError(t, err)
	require.Equal(t, "We are open 9am to 6pm, Monday to Friday.", resp.Answer)
	require.Equal(t, StrategyLiteral, resp.Strategy)
	require.Equal(t, OutcomeAnswered, resp.Outcome)
	require.Equal(t, "Employee FAQ", resp.Document)
	require.Nil(t, resp.TokenUsage)
	require.Zero(t, f.client.calls)

	require.Len(t, f.log.records, 1)
	require.Equal(t, "office HOURS", f.log.records[0].Question)
	require.Equal(t, int64(1), f.store.counts["office hours"])
}

func TestServiceAnswerLiteralNotFound(t *testing.T) {
	f := newServiceFixture(t)
	f.load(t)

	resp, err := f.svc.Answer(context.Background(), Request{Question: "dress code", Strategy: StrategyLiteral})
	require.NoError(t, err)
	require.Equal(t, NotFoundAnswer, resp.Answer)
	require.Equal(t, OutcomeNotFound, resp.Outcome)
}

func TestServiceAnswerDefaultsToSemantic(t *testing.T) {
	f := newServiceFixture(t)
	f.load(t)

	resp, err := f.svc.Answer(context.Background(), Request{Question: "how do I take time off", Strategy: "fuzzy"})
	require.NoError(t, err)
	require.Equal(t, StrategySemantic, resp.Strategy)
	require.Equal(t, "Submit it in the HR portal.", resp.Answer)
	require.Equal(t, OutcomeAnswered, resp.Outcome)
	require.NotNil(t, resp.TokenUsage)
	require.Equal(t, 42, resp.TokenUsage.PromptTokens)
	require.Equal(t, 1, f.client.calls)
}

func TestServiceAnswerSemanticFailure(t *testing.T) {
	f := newServiceFixture(t)
	f.load(t)
	f.client.err = errors.New("connection reset")

	resp, err := f.svc.Answer(context.Background(), Request{Question: "hours"})
	require.NoError(t, err)
	require.Equal(t, ApologyAnswer, resp.Answer)
	require.Equal(t, OutcomeFailed, resp.Outcome)
	require.Equal(t, OutcomeFailed, f.log.records[0].Outcome)
}

func TestServiceAnswerIgnoresRecordingFailures(t *testing.T) {
	f := newServiceFixture(t)
	f.load(t)
	f.store.err = errors.New("valkey down")
	f.log.err = errors.New("postgres down")

	resp, err := f.svc.Answer(context.Background(), Request{Question: "pto", Strategy: StrategyLiteral})
	require.NoError(t, err)
	require.Equal(t, OutcomeAnswered, resp.Outcome)
}

func TestServiceTrendingAndHistory(t *testing.T) {
	f := newServiceFixture(t)
	f.load(t)
	for i := 0; i < 3; i++ {
		_, err := f.svc.Answer(context.Background(), Request{Question: "PTO?", Strategy: StrategyLiteral})
		require.NoError(t, err)
	}

	trending, err := f.svc.Trending(context.Background())
	require.NoError(t, err)
	require.Equal(t, []TrendingQuery{{Query: "pto", Count: 3}}, trending)

	history, err := f.svc.History(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, history, 3)
	require.Equal(t, 20, f.log.lastLimit)

	_, err = f.svc.History(context.Background(), 500)
	require.NoError(t, err)
	require.Equal(t, 20, f.log.lastLimit)

	f.store.err = errors.New("boom")
	_, err = f.svc.Trending(context.Background())
	require.True(t, apperrors.IsCode(err, apperrors.CodeFAQ))
}

func TestDocumentHolderConcurrentReads(t *testing.T) {
	holder := NewDocumentHolder()
	require.NoError(t, holder.Set(Document{Content: sampleDocument, LoadedAt: time.Now()}))

	done := make(chan string, 8)
	for i := 0; i < cap(done); i++ {
		go func() {
			doc, _ := holder.Get()
			done <- ResolveLiteral("pto", doc.Content)
		}()
	}
	for i := 0; i < cap(done); i++ {
		require.Equal(t, "Submit a request in the HR portal at least two weeks ahead.", <-done)
	}
}

func TestPreviewTruncatesByRune(t *testing.T) {
	require.Equal(t, "héll", preview("héllo", 4))
	require.Equal(t, "short", preview("short", 500))
}
