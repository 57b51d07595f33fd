package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Config contains configuration for history retention.
type Config struct {
	// RetentionDays is the number of days to keep run records.
	// 0 keeps records forever.
	RetentionDays int

	// PruneSchedule is a cron expression for scheduled pruning.
	// Example: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string

	// MaxRecords caps the number of stored records. 0 means unlimited.
	MaxRecords int64
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays: 30,
		PruneSchedule: "0 3 * * *",
		MaxRecords:    1000,
	}
}

// Validate checks the retention configuration.
func (c *Config) Validate() error {
	if c.RetentionDays < 0 {
		return fmt.Errorf("retention_days must be >= 0, got %d", c.RetentionDays)
	}
	if c.MaxRecords < 0 {
		return fmt.Errorf("max_records must be >= 0, got %d", c.MaxRecords)
	}
	return nil
}

// Pruner enforces retention on a Store.
type Pruner struct {
	store  Store
	config *Config
	logger *slog.Logger
	now    func() time.Time

	onPruned func(deleted int64)
}

// NewPruner creates a pruner for store.
func NewPruner(store Store, config *Config) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}
	return &Pruner{
		store:  store,
		config: config,
		logger: slog.Default().With("component", "history.pruner"),
		now:    time.Now,
	}
}

// OnPruned registers fn to be called after every Prune that deleted
// records. *metrics.Collector's RecordHistoryPruned fits.
func (p *Pruner) OnPruned(fn func(deleted int64)) {
	p.onPruned = fn
}

// Prune removes records older than RetentionDays, then the oldest records
// beyond MaxRecords. It returns the total number of records deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var total int64

	if p.config.RetentionDays > 0 {
		cutoff := p.now().AddDate(0, 0, -p.config.RetentionDays)
		deleted, err := p.store.DeleteBefore(ctx, cutoff)
		if err != nil {
			return total, fmt.Errorf("age-based pruning failed: %w", err)
		}
		total += deleted
		p.logger.Debug("age-based pruning completed",
			"cutoff", cutoff,
			"deleted", deleted,
		)
	}

	if p.config.MaxRecords > 0 {
		deleted, err := p.pruneByCount(ctx)
		if err != nil {
			return total, fmt.Errorf("count-based pruning failed: %w", err)
		}
		total += deleted
	}

	if total > 0 {
		p.logger.Info("history pruned", "deleted", total)
		if p.onPruned != nil {
			p.onPruned(total)
		}
	}
	return total, nil
}

func (p *Pruner) pruneByCount(ctx context.Context) (int64, error) {
	count, err := p.store.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count <= p.config.MaxRecords {
		p.logger.Debug("record count within limit",
			"current", count,
			"max", p.config.MaxRecords,
		)
		return 0, nil
	}

	excess := count - p.config.MaxRecords
	p.logger.Info("record count exceeds limit, pruning oldest",
		"current_count", count,
		"max_records", p.config.MaxRecords,
		"to_delete", excess,
	)
	return p.store.DeleteOldest(ctx, excess)
}
