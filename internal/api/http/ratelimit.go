package http

import (
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/spec-kit/notes-service/internal/persistence"
	apperrors "github.com/spec-kit/notes-service/pkg/util"
)

const loginRateLimitWindow = time.Minute

// LoginLimiter bounds login attempts per client IP. When Redis is available
// it uses a fixed INCR/EXPIRE window so the limit holds across replicas;
// otherwise it falls back to per-IP in-process limiters.
type LoginLimiter struct {
	redis  *persistence.Redis
	limit  int
	logger *zap.Logger

	mu    sync.Mutex
	local map[string]*rate.Limiter
}

// NewLoginLimiter builds a limiter allowing perMinute attempts per IP.
func NewLoginLimiter(redis *persistence.Redis, perMinute int, logger *zap.Logger) *LoginLimiter {
	if perMinute <= 0 {
		perMinute = 5
	}
	return &LoginLimiter{
		redis:  redis,
		limit:  perMinute,
		logger: logger,
		local:  make(map[string]*rate.Limiter),
	}
}

// Handle rejects requests over the limit with 429 and a Retry-After hint.
func (l *LoginLimiter) Handle(c *fiber.Ctx) error {
	if !l.allow(c) {
		c.Set("Retry-After", fmt.Sprintf("%d", int(loginRateLimitWindow.Seconds())))
		l.logger.Warn("login rate limit exceeded",
			zap.String("ip", c.IP()),
			zap.String("path", c.Path()))
		return apperrors.NewTooManyRequests("too many login attempts, please try again later")
	}
	return c.Next()
}

func (l *LoginLimiter) allow(c *fiber.Ctx) bool {
	ip := c.IP()
	if l.redis != nil && l.redis.Client != nil {
		allowed, err := l.allowRedis(c, ip)
		if err == nil {
			return allowed
		}
		l.logger.Warn("redis rate limit check failed, using local limiter", zap.Error(err))
	}
	return l.allowLocal(ip)
}

func (l *LoginLimiter) allowRedis(c *fiber.Ctx, ip string) (bool, error) {
	ctx := c.UserContext()
	key := "login_rl:" + ip

	count, err := l.redis.Client.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := l.redis.Client.Expire(ctx, key, loginRateLimitWindow).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(l.limit), nil
}

func (l *LoginLimiter) allowLocal(ip string) bool {
	l.mu.Lock()
	limiter, ok := l.local[ip]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(loginRateLimitWindow/time.Duration(l.limit)), l.limit)
		l.local[ip] = limiter
	}
	l.mu.Unlock()
	return limiter.Allow()
}
