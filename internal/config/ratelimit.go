package config

import (
	"os"
	"strconv"
	"time"
)

// RateLimitConfig shapes the Redis token buckets in front of /v1.  Each
// key (by KeyStrategy: "ip", "route" or "ip_route") holds up to Capacity
// tokens and regains RefillTokens every RefillInterval.  Booking attempts
// use a separate bucket of BookingCapacity tokens that regains one token
// every BookingRefillInterval.
type RateLimitConfig struct {
	Enabled               bool
	Capacity              int
	RefillTokens          int
	RefillInterval        time.Duration
	BookingCapacity       int
	BookingRefillInterval time.Duration
	TTL                   time.Duration
	KeyStrategy           string
	Prefix                string
	Debug                 bool
}

// LoadRateLimitConfig reads RATE_LIMIT_* variables.  RATE_LIMIT_BURST and
// RATE_LIMIT_REFILL_EVERY are shorthands that override the long forms.
func LoadRateLimitConfig() RateLimitConfig {
	def := RateLimitConfig{
		Enabled:               envBool("RATE_LIMIT_ENABLED", true),
		Capacity:              envInt("RATE_LIMIT_CAPACITY", 60),
		RefillTokens:          envInt("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval:        envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
		BookingCapacity:       envInt("RATE_LIMIT_BOOKING_BURST", 10),
		BookingRefillInterval: envDur("RATE_LIMIT_BOOKING_REFILL_EVERY", 6*time.Second),
		TTL:                   envDur("RATE_LIMIT_TTL", 10*time.Minute),
		KeyStrategy:           envStr("RATE_LIMIT_KEY_STRATEGY", "ip_route"),
		Prefix:                envStr("RATE_LIMIT_PREFIX", "rl"),
		Debug:                 envBool("RATE_LIMIT_DEBUG", false),
	}
	if b := envInt("RATE_LIMIT_BURST", -1); b > 0 {
		def.Capacity = b
	}
	if every := envDur("RATE_LIMIT_REFILL_EVERY", 0); every > 0 {
		def.RefillTokens = 1
		def.RefillInterval = every
	}
	switch def.KeyStrategy {
	case "ip", "route", "ip_route":
	default:
		def.KeyStrategy = "ip_route"
	}
	def.Capacity = max(def.Capacity, 1)
	def.RefillTokens = max(def.RefillTokens, 1)
	if def.RefillInterval <= 0 {
		def.RefillInterval = time.Second
	}
	def.BookingCapacity = max(def.BookingCapacity, 1)
	if def.BookingRefillInterval <= 0 {
		def.BookingRefillInterval = 6 * time.Second
	}
	// A bucket must outlive a few refills or an idle client would come
	// back to a full burst every time.
	def.TTL = max(def.TTL, 5*def.RefillInterval, 5*def.BookingRefillInterval)
	return def
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	if n, err := strconv.Atoi(os.Getenv(k)); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	if dur, err := time.ParseDuration(os.Getenv(k)); err == nil {
		return dur
	}
	return d
}
