// Package middleware holds echo middleware shared by the API routes.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/seat-lock-reservation/internal/config"
)

// RequesterHeader optionally identifies the caller for requester-based
// rate limit keys.  It is not authentication.
const RequesterHeader = "X-Requester-ID"

// RateLimitedKind is the error value of a throttled response.  It sits
// next to the reservation failure kinds in the same response shape but
// is produced before any reservation runs.
const RateLimitedKind = "RATE_LIMITED"

// gcraScript keeps one theoretical arrival time (TAT) per key, in ms.
// ARGV: now_ms, emission_ms, burst, ttl_ms.  A request is admitted while
// the TAT is less than burst emissions ahead of now.
// Returns {allowed, remaining, retry_after_ms}.
var gcraScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local emission = tonumber(ARGV[2])
local burst = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local tat = tonumber(redis.call('GET', KEYS[1]))
if tat == nil or tat < now then
	tat = now
end

local allow_at = tat + emission - burst * emission
if now < allow_at then
	return {0, 0, allow_at - now}
end

tat = tat + emission
redis.call('SET', KEYS[1], tat, 'PX', ttl)
return {1, math.floor((now - (tat - burst * emission)) / emission), 0}
`)

// bucket holds the limiter parameters derived from the config.
type bucket struct {
	emission int64 // ms between tokens
	burst    int64
	ttl      int64 // ms, never shorter than a full refill
}

func newBucket(cfg config.RateLimitConfig) bucket {
	b := bucket{burst: int64(cfg.Capacity)}
	b.emission = cfg.RefillInterval.Milliseconds() / int64(cfg.RefillTokens)
	if b.emission < 1 {
		b.emission = 1
	}
	if b.burst < 1 {
		b.burst = 1
	}
	b.ttl = cfg.TTL.Milliseconds()
	if full := b.burst * b.emission; b.ttl < full {
		b.ttl = full
	}
	return b
}

// NewTokenBucket limits requests with a Redis GCRA bucket: Capacity
// requests at once, refilled at RefillTokens per RefillInterval.  It is
// a pass-through when disabled or when rdb is nil, and fails open on
// Redis errors so a limiter outage never blocks bookings.  Throttled
// calls get 429 in the reservation API failure shape.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	b := newBucket(cfg)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := buildRateKey(cfg, c)
			res, err := gcraScript.Run(c.Request().Context(), rdb, []string{key},
				time.Now().UnixMilli(), b.emission, b.burst, b.ttl).Int64Slice()
			if err != nil || len(res) != 3 {
				if cfg.Debug {
					c.Logger().Warnf("[ratelimit] key=%s result=%v err=%v", key, res, err)
				}
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(res[1], 10))
			if res[0] == 1 {
				return next(c)
			}

			// round up so clients never retry early
			secs := (res[2] + 999) / 1000
			h.Set("Retry-After", strconv.FormatInt(secs, 10))
			if cfg.Debug {
				c.Logger().Infof("[ratelimit] block key=%s retry=%dms", key, res[2])
			}
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"success":     false,
				"error":       RateLimitedKind,
				"message":     "rate limit exceeded, retry later",
				"retry_after": secs,
			})
		}
	}
}

func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
	parts := []string{cfg.Prefix}
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	requester := requesterID(c)
	route := c.Request().Method + " " + c.Path()

	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip":
		parts = append(parts, "ip", ip)
	case "requester":
		parts = append(parts, "req", requester)
	case "route":
		parts = append(parts, "route", route)
	case "requester_route":
		parts = append(parts, "req", requester, "route", route)
	default:
		parts = append(parts, "ip", ip, "route", route)
	}
	return strings.Join(parts, ":")
}

func requesterID(c echo.Context) string {
	if v := strings.TrimSpace(c.Request().Header.Get(RequesterHeader)); v != "" {
		return v
	}
	return "anon"
}
