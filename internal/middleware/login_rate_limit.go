package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const (
	loginRatePrefix      = "rl:login:"
	loginRateWindow      = time.Minute
	defaultLoginsPerWin  = 5
	loginRateCallTimeout = time.Second
)

// LoginRateLimit counts login attempts per phone number (per client IP when
// the body carries none) in fixed one-minute windows and answers 429 with
// Retry-After once the limit is passed. It complements the account lockout:
// the lockout guards one account, the limiter slows guessing across many.
// Without Redis, or when Redis fails, attempts are let through.
func LoginRateLimit(cache *redis.Client, perMinute int, logger *slog.Logger) fiber.Handler {
	return loginRateLimit(cache, perMinute, logger, time.Now)
}

func loginRateLimit(cache *redis.Client, perMinute int, logger *slog.Logger, now func() time.Time) fiber.Handler {
	if perMinute <= 0 {
		perMinute = defaultLoginsPerWin
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}

		window := now().Truncate(loginRateWindow)
		key := loginRatePrefix + loginSubject(c) + ":" + strconv.FormatInt(window.Unix(), 10)

		ctx, cancel := context.WithTimeout(c.UserContext(), loginRateCallTimeout)
		defer cancel()
		var attempts *redis.IntCmd
		_, err := cache.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			attempts = pipe.Incr(ctx, key)
			pipe.Expire(ctx, key, 2*loginRateWindow)
			return nil
		})
		if err != nil {
			logger.Warn("login rate limit skipped", slog.Any("error", err))
			return c.Next()
		}

		if attempts.Val() > int64(perMinute) {
			retryAfter := window.Add(loginRateWindow).Sub(now())
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(retryAfter.Seconds())+1))
			return fiber.NewError(http.StatusTooManyRequests, "too many login attempts, try again later")
		}
		return c.Next()
	}
}

func loginSubject(c *fiber.Ctx) string {
	var req struct {
		Phone string `json:"phone"`
	}
	if err := c.BodyParser(&req); err == nil {
		if phone := strings.TrimSpace(req.Phone); phone != "" {
			return "phone:" + phone
		}
	}
	return "ip:" + c.IP()
}
