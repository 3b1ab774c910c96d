package cache

import (
	"context"
	"testing"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/private-dining-reservation/internal/booking"
	"github.com/iliyamo/private-dining-reservation/internal/config"
	"github.com/iliyamo/private-dining-reservation/internal/model"
)

var day = model.MustDate("2026-03-09")

func quietLogger() *log.Logger {
	l := log.New("cache-test")
	l.SetLevel(log.OFF)
	return l
}

// unreachable returns a client whose every command fails fast.
func unreachable(t *testing.T) *redis.Client {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestNewAvailabilityCacheDisabled(t *testing.T) {
	if c := NewAvailabilityCache(config.CacheConfig{Enabled: false}, unreachable(t), nil); c != nil {
		t.Fatal("disabled config produced a cache")
	}
	if c := NewAvailabilityCache(config.CacheConfig{Enabled: true}, nil, nil); c != nil {
		t.Fatal("nil client produced a cache")
	}
}

func TestNilCacheIsAMiss(t *testing.T) {
	var c *AvailabilityCache
	ctx := context.Background()
	if _, _, ok := c.Get(ctx, 10, day); ok {
		t.Fatal("nil cache reported a hit")
	}
	c.Put(ctx, 10, day, 0, nil)
	c.Invalidate(ctx, 10, day)
}

func TestKeys(t *testing.T) {
	c := NewAvailabilityCache(config.CacheConfig{Enabled: true, Prefix: "avail"}, unreachable(t), quietLogger())
	if got := c.generationKey(10, day); got != "avail:gen:10:2026-03-09" {
		t.Fatalf("generation key = %q", got)
	}
	if got := c.slotsKey(10, day, 4); got != "avail:slots:10:2026-03-09:4" {
		t.Fatalf("slots key = %q", got)
	}
	if c.ttl != 30*time.Second || c.genTTL != minGenerationTTL {
		t.Fatalf("ttl = %s, generation ttl = %s", c.ttl, c.genTTL)
	}
}

func TestRedisFailuresAreMisses(t *testing.T) {
	c := NewAvailabilityCache(config.CacheConfig{Enabled: true, TTL: time.Minute, Prefix: "avail"}, unreachable(t), quietLogger())
	ctx := context.Background()
	slots := []booking.SlotAvailability{{SlotStart: model.MustTimeOfDay("18:00"), SlotEnd: model.MustTimeOfDay("19:30"), AvailableCapacity: 9, Status: booking.SlotAvailable}}

	c.Put(ctx, 10, day, 0, slots)
	if _, _, ok := c.Get(ctx, 10, day); ok {
		t.Fatal("unreachable redis reported a hit")
	}
	c.Invalidate(ctx, 10, day)
}
