package service

import (
	"context"
	"encoding/json"
	"time"

	"pharmacare/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const statsCacheTTL = 2 * time.Minute

// countsCache memoises inventory counts per pharmacy and day. A nil client
// disables caching.
type countsCache struct {
	rdb *redis.Client
}

func countsKey(pharmacyID uuid.UUID, today time.Time) string {
	return "inventory:counts:" + pharmacyID.String() + ":" + today.Format(dateLayout)
}

func (c countsCache) get(ctx context.Context, pharmacyID uuid.UUID, today time.Time) (*repository.InventoryCounts, bool) {
	if c.rdb == nil {
		return nil, false
	}
	b, err := c.rdb.Get(ctx, countsKey(pharmacyID, today)).Bytes()
	if err != nil {
		return nil, false
	}
	var counts repository.InventoryCounts
	if json.Unmarshal(b, &counts) != nil {
		return nil, false
	}
	return &counts, true
}

func (c countsCache) put(pharmacyID uuid.UUID, today time.Time, counts *repository.InventoryCounts) {
	if c.rdb == nil {
		return
	}
	b, err := json.Marshal(counts)
	if err != nil {
		return
	}
	// Best-effort: cache write failure is non-fatal
	_ = c.rdb.Set(context.Background(), countsKey(pharmacyID, today), b, statsCacheTTL).Err()
}

// invalidate drops today's entry after any stock write.
func (c countsCache) invalidate(pharmacyID uuid.UUID) {
	if c.rdb == nil {
		return
	}
	key := countsKey(pharmacyID, time.Now().UTC())
	if err := c.rdb.Del(context.Background(), key).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("inventory counts cache invalidation failed")
	}
}
