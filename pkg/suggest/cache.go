package suggest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"mercator-hq/tessera/pkg/dataset"
	"mercator-hq/tessera/pkg/rules"
)

// Cache stores rule suggestions by dataset summary key.
//
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the cached suggestions for key. The boolean is false when
	// the key is absent or its entry has expired.
	Get(ctx context.Context, key string) ([]rules.Rule, bool, error)

	// Put stores suggestions under key. A ttl <= 0 never expires.
	Put(ctx context.Context, key string, value []rules.Rule, ttl time.Duration) error

	// Clear removes every entry.
	Clear(ctx context.Context) error

	// Close releases resources held by the cache.
	Close() error
}

// Key returns the content hash of a dataset summary. Equal summaries produce
// equal keys.
func Key(s dataset.Summary) string {
	// Summary holds only strings, ints and maps of them; Marshal cannot fail
	// and sorts map keys.
	data, _ := json.Marshal(s)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
