package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/InkyWorld/goit-web-hw-14/internal/core/port"
)

// IdentifierFunc extracts the identifier used to scope rate limits (e.g., client IP).
type IdentifierFunc func(*gin.Context) (string, bool)

// RateLimitRule configures a sliding-window limit for a particular identifier.
type RateLimitRule struct {
	Name       string
	Limit      int
	Window     time.Duration
	Identifier IdentifierFunc
}

// RateLimiter enforces sliding-window rules backed by a port.RateLimitStore.
// Store failures fail open.
type RateLimiter struct {
	store  port.RateLimitStore
	logger *zap.Logger
	now    func() time.Time
}

type ruleResult struct {
	allowed    bool
	limit      int
	remaining  int
	reset      time.Time
	retryAfter time.Duration
}

// RateLimitResponse is the 429 body.
type RateLimitResponse struct {
	Detail     string `json:"detail"`
	RetryAfter int    `json:"retry_after"`
	TraceID    string `json:"trace_id,omitempty"`
}

// NewRateLimiter builds a reusable rate limiter middleware helper.
func NewRateLimiter(store port.RateLimitStore, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RateLimiter{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock allows injection of a custom clock (primarily for testing).
func (rl *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	if now != nil {
		rl.now = now
	}
	return rl
}

// ClientIPIdentifier builds an IdentifierFunc using the request's client IP.
func ClientIPIdentifier() IdentifierFunc {
	return func(c *gin.Context) (string, bool) {
		ip := c.ClientIP()
		if ip == "" {
			return "", false
		}
		return ip, true
	}
}

// PrincipalIdentifier scopes limits to the authenticated user, falling back
// to the client IP for anonymous requests.
func PrincipalIdentifier() IdentifierFunc {
	byIP := ClientIPIdentifier()
	return func(c *gin.Context) (string, bool) {
		if id, ok := GetAuthenticatedUserID(c); ok && id != 0 {
			return "user:" + strconv.FormatInt(id, 10), true
		}
		ip, ok := byIP(c)
		if !ok {
			return "", false
		}
		return "ip:" + ip, true
	}
}

// RateLimit returns a Gin middleware enforcing the provided rules.
func (rl *RateLimiter) RateLimit(rules ...RateLimitRule) gin.HandlerFunc {
	filtered := make([]RateLimitRule, 0, len(rules))
	for _, rule := range rules {
		if rule.Identifier == nil || rule.Limit <= 0 || rule.Window <= 0 {
			continue
		}
		if rule.Name == "" {
			rule.Name = "default"
		}
		filtered = append(filtered, rule)
	}

	return func(c *gin.Context) {
		if len(filtered) == 0 || rl == nil || rl.store == nil {
			c.Next()
			return
		}

		now := rl.now()
		var best *ruleResult

		for _, rule := range filtered {
			identifier, ok := rule.Identifier(c)
			if !ok || identifier == "" {
				continue
			}

			res, err := rl.evaluate(c, rule, rule.Name+":"+identifier, now)
			if err != nil {
				rl.logger.Warn("rate limit check failed", zap.String("rule", rule.Name), zap.Error(err))
				continue
			}

			if !res.allowed {
				rl.applyHeaders(c, res)
				rl.reject(c, res)
				return
			}

			if best == nil || res.remaining < best.remaining ||
				(res.remaining == best.remaining && res.reset.Before(best.reset)) {
				snapshot := res
				best = &snapshot
			}
		}

		if best != nil {
			rl.applyHeaders(c, *best)
		}

		c.Next()
	}
}

func (rl *RateLimiter) evaluate(c *gin.Context, rule RateLimitRule, key string, now time.Time) (ruleResult, error) {
	ctx := c.Request.Context()

	if err := rl.store.TrimWindow(ctx, key, rule.Window, now); err != nil {
		return ruleResult{}, err
	}

	count, err := rl.store.CountAttempts(ctx, key, rule.Window, now)
	if err != nil {
		return ruleResult{}, err
	}

	oldest, hasAttempts, err := rl.store.OldestAttempt(ctx, key, rule.Window, now)
	if err != nil {
		return ruleResult{}, err
	}

	result := ruleResult{
		allowed: true,
		limit:   rule.Limit,
		reset:   now.Add(rule.Window),
	}
	if hasAttempts {
		result.reset = oldest.Add(rule.Window)
	}
	result.retryAfter = max(result.reset.Sub(now), 0)

	if count >= rule.Limit {
		result.allowed = false
		return result, nil
	}

	if err := rl.store.RecordAttempt(ctx, key, now); err != nil {
		return ruleResult{}, err
	}
	result.remaining = max(rule.Limit-count-1, 0)

	return result, nil
}

func (rl *RateLimiter) applyHeaders(c *gin.Context, res ruleResult) {
	headers := c.Writer.Header()
	headers.Set("X-RateLimit-Limit", strconv.Itoa(res.limit))
	headers.Set("X-RateLimit-Remaining", strconv.Itoa(res.remaining))
	headers.Set("X-RateLimit-Reset", strconv.FormatInt(res.reset.Unix(), 10))

	if !res.allowed {
		headers.Set("Retry-After", strconv.Itoa(retrySeconds(res.retryAfter)))
	}
}

func (rl *RateLimiter) reject(c *gin.Context, res ruleResult) {
	seconds := retrySeconds(res.retryAfter)
	c.AbortWithStatusJSON(http.StatusTooManyRequests, RateLimitResponse{
		Detail:     fmt.Sprintf("Too many requests. Try again in %d seconds.", seconds),
		RetryAfter: seconds,
		TraceID:    GetTraceID(c),
	})
}

func retrySeconds(d time.Duration) int {
	return max(int(math.Ceil(d.Seconds())), 0)
}
