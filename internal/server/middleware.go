package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"pet-auction/internal/auth"
	"pet-auction/services/bidding/helpers"
	"pet-auction/utils"
)

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	fields := map[string]any{
		"method":  c.Request.Method,
		"path":    c.Request.URL.Path,
		"status":  c.Writer.Status(),
		"latency": time.Since(start).String(),
	}
	if userID := helpers.CurrentUser(c); userID != "" {
		fields["user_id"] = userID
	}
	utils.Info("HTTP Request", fields)
}

// TokenVerifier validates bearer tokens
type TokenVerifier interface {
	ValidateToken(token string) (*auth.Claims, error)
}

var (
	errMissingToken = errors.New("authorization header required")
	errBadScheme    = errors.New("authorization header must use the Bearer scheme")
	errAdminOnly    = errors.New("admin role required")
	errRateLimited  = errors.New("rate limit exceeded")
)

// JWTAuth rejects requests without a valid bearer token and stores the
// caller's id and role on the context
func JWTAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			unauthorized(c, errMissingToken)
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			unauthorized(c, errBadScheme)
			return
		}

		claims, err := verifier.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			unauthorized(c, err)
			return
		}

		c.Set(helpers.UserIDKey, claims.Subject)
		c.Set(helpers.RoleKey, claims.Role)
		c.Next()
	}
}

func unauthorized(c *gin.Context, err error) {
	utils.JSONErrorWithDetails(c, http.StatusUnauthorized, err, "unauthorized", map[string]any{
		"code":      "UNAUTHORIZED",
		"retryable": false,
	})
	utils.Warn("auth: request rejected", map[string]any{
		"path":  c.Request.URL.Path,
		"error": err.Error(),
	})
	c.Abort()
}

// RequireAdmin only lets admin tokens through. It must run after JWTAuth.
func RequireAdmin(c *gin.Context) {
	if c.GetString(helpers.RoleKey) != auth.RoleAdmin {
		utils.JSONErrorWithDetails(c, http.StatusForbidden, errAdminOnly, "not authorized", map[string]any{
			"code":      "NOT_AUTHORIZED",
			"retryable": false,
		})
		c.Abort()
		return
	}
	c.Next()
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles requests per authenticated user, falling back to
// the client IP for anonymous callers
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	idle     time.Duration
	now      func() time.Time
}

// NewRateLimiter allows perMinute requests per caller per minute.
// Zero disables limiting.
func NewRateLimiter(perMinute int) *RateLimiter {
	limit := rate.Inf
	burst := 1
	if perMinute > 0 {
		limit = rate.Limit(float64(perMinute) / 60.0)
		burst = perMinute
	}
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		burst:    burst,
		idle:     3 * time.Minute,
		now:      time.Now,
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = rl.now()
	return v.limiter
}

// Middleware returns the gin handler enforcing the limit
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := helpers.CurrentUser(c)
		if key == "" {
			key = c.ClientIP()
		}

		if !rl.limiter(key).AllowN(rl.now(), 1) {
			utils.JSONErrorWithDetails(c, http.StatusTooManyRequests, errRateLimited, "rate limit exceeded, try again later", map[string]any{
				"code":      "RATE_LIMITED",
				"retryable": true,
			})
			utils.Warn("ratelimit: request rejected", map[string]any{"key": key, "path": c.FullPath()})
			c.Abort()
			return
		}
		c.Next()
	}
}

// Cleanup forgets callers idle for longer than the idle window
func (rl *RateLimiter) Cleanup() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	cutoff := rl.now().Add(-rl.idle)
	for key, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, key)
			removed++
		}
	}
	return removed
}

// Run calls Cleanup every minute until ctx is done
func (rl *RateLimiter) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := rl.Cleanup(); n > 0 {
				utils.Debug("ratelimit: visitors evicted", map[string]any{"count": n})
			}
		}
	}
}
