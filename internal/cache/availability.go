// Package cache keeps availability projections in Redis.  Entries are
// addressed by a per-(space, date) generation; a booking write bumps the
// generation instead of deleting keys, so a projection computed while the
// write was in flight lands under a generation nobody reads any more.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/private-dining-reservation/internal/booking"
	"github.com/iliyamo/private-dining-reservation/internal/config"
	"github.com/iliyamo/private-dining-reservation/internal/model"
)

// minGenerationTTL keeps generation counters alive well past any slot
// entry, so a counter never resets while entries of an older generation
// are still readable.
const minGenerationTTL = 24 * time.Hour

// AvailabilityCache implements booking.AvailabilityCache on Redis.  Every
// Redis failure is logged at debug and treated as a miss.
type AvailabilityCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	genTTL time.Duration
	logger *log.Logger
}

var _ booking.AvailabilityCache = (*AvailabilityCache)(nil)

// NewAvailabilityCache returns nil when caching is disabled or Redis is
// unavailable; callers leave the service without a cache in that case.
func NewAvailabilityCache(cfg config.CacheConfig, rdb *redis.Client, logger *log.Logger) *AvailabilityCache {
	if !cfg.Enabled || rdb == nil {
		return nil
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if logger == nil {
		logger = log.New("cache")
	}
	return &AvailabilityCache{
		rdb:    rdb,
		prefix: cfg.Prefix,
		ttl:    ttl,
		genTTL: max(minGenerationTTL, 10*ttl),
		logger: logger,
	}
}

func (c *AvailabilityCache) generationKey(spaceID uint64, date model.Date) string {
	return fmt.Sprintf("%s:gen:%d:%s", c.prefix, spaceID, date)
}

func (c *AvailabilityCache) slotsKey(spaceID uint64, date model.Date, generation int64) string {
	return fmt.Sprintf("%s:slots:%d:%s:%d", c.prefix, spaceID, date, generation)
}

func (c *AvailabilityCache) Get(ctx context.Context, spaceID uint64, date model.Date) ([]booking.SlotAvailability, int64, bool) {
	if c == nil {
		return nil, 0, false
	}
	gen, err := c.rdb.Get(ctx, c.generationKey(spaceID, date)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.debugf("read generation %d/%s: %v", spaceID, date, err)
		return nil, 0, false
	}
	bs, err := c.rdb.Get(ctx, c.slotsKey(spaceID, date, gen)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.debugf("read slots %d/%s: %v", spaceID, date, err)
		}
		return nil, gen, false
	}
	var slots []booking.SlotAvailability
	if err := json.Unmarshal(bs, &slots); err != nil {
		c.debugf("decode slots %d/%s: %v", spaceID, date, err)
		return nil, gen, false
	}
	return slots, gen, true
}

func (c *AvailabilityCache) Put(ctx context.Context, spaceID uint64, date model.Date, generation int64, slots []booking.SlotAvailability) {
	if c == nil {
		return
	}
	bs, err := json.Marshal(slots)
	if err != nil {
		c.debugf("encode slots %d/%s: %v", spaceID, date, err)
		return
	}
	if err := c.rdb.SetEx(ctx, c.slotsKey(spaceID, date, generation), bs, c.ttl).Err(); err != nil {
		c.debugf("store slots %d/%s: %v", spaceID, date, err)
	}
}

func (c *AvailabilityCache) Invalidate(ctx context.Context, spaceID uint64, date model.Date) {
	if c == nil {
		return
	}
	key := c.generationKey(spaceID, date)
	pipe := c.rdb.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, c.genTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		// The old projection survives at most one TTL.
		c.logger.Warnf("invalidate availability %d/%s: %v", spaceID, date, err)
	}
}

func (c *AvailabilityCache) debugf(format string, args ...any) {
	c.logger.Debugf("[cache] "+format, args...)
}
