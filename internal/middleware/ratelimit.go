package middleware

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/private-dining-reservation/internal/config"
)

// takeScript refills a bucket by whole intervals and takes one token in a
// single round trip, so two requests racing for the last token cannot both
// get it.  Replies {allowed, tokens_left, retry_after_ms}.
var takeScript = redis.NewScript(`
local now      = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill   = tonumber(ARGV[3])
local every    = tonumber(ARGV[4])
local ttl_ms   = tonumber(ARGV[5])

local tokens = tonumber(redis.call('HGET', KEYS[1], 'tokens'))
local since  = tonumber(redis.call('HGET', KEYS[1], 'since'))
if tokens == nil or since == nil then
	tokens, since = capacity, now
end

local ticks = math.floor(math.max(0, now - since) / every)
if ticks > 0 then
	tokens = math.min(capacity, tokens + ticks * refill)
	since = since + ticks * every
end

local allowed, wait = 0, 0
if tokens >= 1 then
	allowed, tokens = 1, tokens - 1
else
	wait = math.max(0, every - (now - since))
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'since', since)
redis.call('PEXPIRE', KEYS[1], ttl_ms)
return {allowed, tokens, wait}
`)

// bucket is the shape of one family of token buckets.  Scope keeps the
// Redis keys of different families apart.
type bucket struct {
	scope    string
	capacity int
	refill   int
	every    time.Duration
}

type decision struct {
	allowed    bool
	remaining  int64
	retryAfter time.Duration
}

// NewTokenBucket rate-limits the API per key.  Booking attempts draw from
// their own, tighter bucket so a client probing for a free table cannot
// drain the slots while staying under the general limit.  With limiting
// disabled or no Redis client it passes everything through, and a Redis
// error lets the single request through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, logger *log.Logger) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	if logger == nil {
		logger = log.New("ratelimit")
	}
	general := bucket{scope: "api", capacity: cfg.Capacity, refill: cfg.RefillTokens, every: cfg.RefillInterval}
	booking := bucket{scope: "book", capacity: cfg.BookingCapacity, refill: 1, every: cfg.BookingRefillInterval}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			b := general
			if isBookingAttempt(c) {
				b = booking
			}
			key := buildRateKey(cfg, b.scope, c)
			d, err := take(c.Request().Context(), rdb, key, b, cfg.TTL, time.Now())
			if err != nil {
				logger.Warnf("ratelimit %s: %v", key, err)
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(b.capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(d.remaining, 10))
			if cfg.Debug {
				h.Set("X-RateLimit-Key", key)
			}
			if !d.allowed {
				if cfg.Debug {
					logger.Debugf("ratelimit %s: blocked for %s", key, d.retryAfter)
				}
				return tooManyRequests(c, d)
			}
			return next(c)
		}
	}
}

// take runs the bucket script for key.
func take(ctx context.Context, rdb redis.Scripter, key string, b bucket, ttl time.Duration, now time.Time) (decision, error) {
	reply, err := takeScript.Run(ctx, rdb, []string{key},
		now.UnixMilli(), b.capacity, b.refill, b.every.Milliseconds(), ttl.Milliseconds()).Result()
	if err != nil {
		return decision{}, err
	}
	d, ok := parseDecision(reply)
	if !ok {
		return decision{}, errUnexpectedReply
	}
	return d, nil
}

var errUnexpectedReply = errors.New("unexpected rate limit script reply")

func parseDecision(reply any) (decision, bool) {
	vals, ok := reply.([]any)
	if !ok || len(vals) != 3 {
		return decision{}, false
	}
	return decision{
		allowed:    asInt64(vals[0]) == 1,
		remaining:  asInt64(vals[1]),
		retryAfter: time.Duration(asInt64(vals[2])) * time.Millisecond,
	}, true
}

func tooManyRequests(c echo.Context, d decision) error {
	secs := int(math.Ceil(d.retryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
	return c.JSON(http.StatusTooManyRequests, echo.Map{
		"error":       "rate limit exceeded",
		"code":        "TOO_MANY_REQUESTS",
		"retry_after": secs,
	})
}

// asInt64 reads an integer reply.  Redis turns Lua numbers into integers,
// but a string reply still parses.
func asInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		n, _ := strconv.ParseInt(t, 10, 64)
		return n
	}
	return 0
}

func isBookingAttempt(c echo.Context) bool {
	return c.Request().Method == http.MethodPost && strings.HasSuffix(c.Path(), "/spaces/:id/reservations")
}

// buildRateKey joins the prefix, the bucket scope and the parts selected
// by the strategy.  The route is the registered path, so /v1/spaces/1 and
// /v1/spaces/2 share a bucket.
func buildRateKey(cfg config.RateLimitConfig, scope string, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	route := c.Request().Method + " " + c.Path()

	parts := []string{cfg.Prefix, scope}
	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip":
		parts = append(parts, "ip", ip)
	case "route":
		parts = append(parts, "route", route)
	default:
		parts = append(parts, "ip", ip, "route", route)
	}
	return strings.Join(parts, ":")
}
