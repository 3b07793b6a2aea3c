package faqstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/faq-relay/internal/domain/faq"
)

const defaultTopLimit = 10

// ValkeyStore keeps trending counters in a sorted set so they survive restarts
// and are shared between replicas.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "faq"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

// IncrementQuery implements faq.Store.
func (s *ValkeyStore) IncrementQuery(ctx context.Context, canonical, display string) error {
	if canonical == "" {
		return nil
	}
	cmds := valkey.Commands{
		s.client.B().Zincrby().Key(s.trendingKey()).Increment(1).Member(canonical).Build(),
	}
	if display != "" {
		cmds = append(cmds, s.client.B().Set().Key(s.displayKey(canonical)).Value(display).Nx().Build())
	}
	results := s.client.DoMulti(ctx, cmds...)
	if err := results[0].Error(); err != nil {
		return fmt.Errorf("increment trending: %w", err)
	}
	// SET NX answers nil when the display string already exists.
	if len(results) > 1 {
		if err := results[1].Error(); err != nil && !valkey.IsValkeyNil(err) {
			return fmt.Errorf("store display: %w", err)
		}
	}
	return nil
}

// TopQueries implements faq.Store.
func (s *ValkeyStore) TopQueries(ctx context.Context, limit int) ([]faq.TrendingQuery, error) {
	if limit <= 0 {
		limit = defaultTopLimit
	}
	resp := s.client.Do(ctx, s.client.B().Zrevrange().Key(s.trendingKey()).Start(0).Stop(int64(limit-1)).Withscores().Build())
	raw, err := resp.ToAny()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, err
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("unexpected ZREVRANGE reply %T", raw)
	}
	members, scores, err := parseScored(items)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}

	displays := s.fetchDisplays(ctx, members)
	out := make([]faq.TrendingQuery, len(members))
	for i := range members {
		out[i] = faq.TrendingQuery{Query: displays[i], Count: int64(scores[i])}
	}
	return out, nil
}

// parseScored accepts both RESP3 [member, score] pairs and the flat RESP2
// layout. Nil members are skipped.
func parseScored(items []any) ([]string, []float64, error) {
	var (
		members []string
		scores  []float64
	)
	for i := 0; i < len(items); {
		var memberVal, scoreVal any
		if pair, ok := items[i].([]any); ok {
			if len(pair) != 2 {
				return nil, nil, fmt.Errorf("scored pair has %d elements", len(pair))
			}
			memberVal, scoreVal = pair[0], pair[1]
			i++
		} else {
			if i+1 >= len(items) {
				return nil, nil, errors.New("scored reply has a member without a score")
			}
			memberVal, scoreVal = items[i], items[i+1]
			i += 2
		}
		if _, isErr := memberVal.(error); isErr || memberVal == nil {
			continue
		}
		member, ok := memberVal.(string)
		if !ok {
			return nil, nil, fmt.Errorf("unexpected member type %T", memberVal)
		}
		score, err := scoreValue(scoreVal)
		if err != nil {
			return nil, nil, err
		}
		members = append(members, member)
		scores = append(scores, score)
	}
	return members, scores, nil
}

func scoreValue(v any) (float64, error) {
	switch score := v.(type) {
	case float64:
		return score, nil
	case int64:
		return float64(score), nil
	case string:
		return strconv.ParseFloat(score, 64)
	default:
		return 0, fmt.Errorf("unexpected score type %T", v)
	}
}

// fetchDisplays resolves display strings in one MGET; missing ones fall back to the canonical form.
func (s *ValkeyStore) fetchDisplays(ctx context.Context, members []string) []string {
	out := append([]string(nil), members...)
	keys := make([]string, len(members))
	for i, member := range members {
		keys[i] = s.displayKey(member)
	}
	arr, err := s.client.Do(ctx, s.client.B().Mget().Key(keys...).Build()).ToArray()
	if err != nil {
		return out
	}
	for i, msg := range arr {
		if i >= len(out) {
			break
		}
		if display, err := msg.ToString(); err == nil && display != "" {
			out[i] = display
		}
	}
	return out
}

func (s *ValkeyStore) trendingKey() string {
	return fmt.Sprintf("%s:trending", s.prefix)
}

func (s *ValkeyStore) displayKey(canonical string) string {
	return fmt.Sprintf("%s:display:%s", s.prefix, canonical)
}

var _ faq.Store = (*ValkeyStore)(nil)
