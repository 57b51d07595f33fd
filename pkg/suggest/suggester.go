package suggest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mercator-hq/tessera/pkg/dataset"
	"mercator-hq/tessera/pkg/rules"
)

// Suggester proposes rules for a dataset summary.
type Suggester interface {
	Suggest(ctx context.Context, s dataset.Summary) ([]rules.Rule, error)
}

// SuggesterFunc adapts a function to the Suggester interface.
type SuggesterFunc func(ctx context.Context, s dataset.Summary) ([]rules.Rule, error)

// Suggest implements Suggester.
func (f SuggesterFunc) Suggest(ctx context.Context, s dataset.Summary) ([]rules.Rule, error) {
	return f(ctx, s)
}

// Heuristic proposes rules from the shape of the data alone. Suggested rules
// are inactive until a user enables them.
type Heuristic struct {
	now func() time.Time
}

// NewHeuristic creates the heuristic suggester.
func NewHeuristic() *Heuristic {
	return &Heuristic{now: time.Now}
}

// Suggest implements Suggester. It proposes:
//   - a co-run rule per category holding two or more tasks
//   - a load limit of three quarters of capacity per worker group
//   - a one-slot common window per client group
func (h *Heuristic) Suggest(ctx context.Context, s dataset.Summary) ([]rules.Rule, error) {
	created := h.now().UTC().Truncate(time.Second)
	var out []rules.Rule
	add := func(name, description string, spec rules.Spec) {
		out = append(out, rules.Rule{
			ID:          uuid.NewString(),
			Name:        name,
			Description: description,
			IsActive:    false,
			Priority:    len(out) + 1,
			CreatedAt:   created,
			Spec:        spec,
		})
	}

	for _, category := range s.Categories {
		ids := s.TasksByCategory[category]
		if len(ids) < 2 {
			continue
		}
		add(fmt.Sprintf("Co-run %s tasks", category),
			fmt.Sprintf("Schedule the %d %s tasks together", len(ids), category),
			rules.CoRun{TaskIDs: append([]string(nil), ids...)})
	}

	for _, group := range s.WorkerGroups {
		capacity := s.GroupCapacity[group]
		if capacity < 1 {
			continue
		}
		limit := max(1, capacity*3/4)
		add(fmt.Sprintf("Limit %s load", group),
			fmt.Sprintf("Keep %s at or below %d of its %d slots per phase", group, limit, capacity),
			rules.LoadLimit{WorkerGroup: group, MaxSlotsPerPhase: limit})
	}

	if len(s.Phases) > 0 {
		for _, group := range s.ClientGroups {
			add(fmt.Sprintf("Align %s slots", group),
				fmt.Sprintf("Give %s clients at least one common slot", group),
				rules.SlotRestriction{ClientGroup: group, MinCommonSlots: 1})
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CacheObserver receives cache lookups made by a memoized suggester.
// *metrics.Collector satisfies it.
type CacheObserver interface {
	RecordCacheHit(cacheName string)
	RecordCacheMiss(cacheName string)
}

// MemoOption configures Memoize.
type MemoOption func(*memoized)

// WithObserver reports hits and misses to o under the cache name "suggest".
func WithObserver(o CacheObserver) MemoOption {
	return func(m *memoized) {
		m.observer = o
	}
}

// Memoize wraps s so results are cached in c by summary key for ttl. Cache
// failures are logged and fall through to s.
func Memoize(s Suggester, c Cache, ttl time.Duration, opts ...MemoOption) Suggester {
	m := &memoized{
		next:   s,
		cache:  c,
		ttl:    ttl,
		logger: slog.Default().With("component", "suggest"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type memoized struct {
	next     Suggester
	cache    Cache
	ttl      time.Duration
	logger   *slog.Logger
	observer CacheObserver
}

func (m *memoized) Suggest(ctx context.Context, s dataset.Summary) ([]rules.Rule, error) {
	key := Key(s)

	cached, ok, err := m.cache.Get(ctx, key)
	if err != nil {
		m.logger.Warn("suggestion cache read failed", "key", key, "error", err)
	} else if ok {
		m.logger.Debug("suggestion cache hit", "key", key, "rules", len(cached))
		if m.observer != nil {
			m.observer.RecordCacheHit("suggest")
		}
		return cached, nil
	}
	if m.observer != nil {
		m.observer.RecordCacheMiss("suggest")
	}

	out, err := m.next.Suggest(ctx, s)
	if err != nil {
		return nil, err
	}
	if err := m.cache.Put(ctx, key, out, m.ttl); err != nil {
		m.logger.Warn("suggestion cache write failed", "key", key, "error", err)
	}
	return out, nil
}
