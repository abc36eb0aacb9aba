package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/siaga-app/siaga/internal/logging"
)

func TestLoginRateLimitPerPhone(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	now := time.Date(2026, 10, 16, 9, 0, 15, 0, time.UTC)
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logging.Discard())})
	app.Post("/login", loginRateLimit(cache, 2, logging.Discard(), func() time.Time { return now }), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	send := func(phone string) (int, string) {
		req := httptest.NewRequest(fiber.MethodPost, "/login", strings.NewReader(`{"phone":"`+phone+`"}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		return resp.StatusCode, resp.Header.Get(fiber.HeaderRetryAfter)
	}

	for i := 0; i < 2; i++ {
		if got, _ := send("081234567890"); got != fiber.StatusOK {
			t.Fatalf("attempt %d: expected 200, got %d", i+1, got)
		}
	}
	status, retryAfter := send("081234567890")
	if status != fiber.StatusTooManyRequests || retryAfter != "46" {
		t.Fatalf("expected 429 with Retry-After 46, got %d %q", status, retryAfter)
	}
	if got, _ := send("081234567891"); got != fiber.StatusOK {
		t.Fatalf("expected other phone to be unaffected, got %d", got)
	}
	for _, key := range mr.Keys() {
		if ttl := mr.TTL(key); ttl <= 0 {
			t.Fatalf("expected %s to expire, ttl %v", key, ttl)
		}
	}

	now = now.Add(time.Minute)
	if got, _ := send("081234567890"); got != fiber.StatusOK {
		t.Fatalf("expected a new window to reset the count, got %d", got)
	}
}

func TestLoginRateLimitFallsBackToIP(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	app := fiber.New()
	app.Post("/login", LoginRateLimit(cache, 1, logging.Discard()), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	if _, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/login", nil)); err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	keys := mr.Keys()
	if len(keys) != 1 || !strings.HasPrefix(keys[0], loginRatePrefix+"ip:") {
		t.Fatalf("expected one ip-scoped counter, got %v", keys)
	}
}

func TestLoginRateLimitFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()
	mr.Close()

	for _, client := range []*redis.Client{nil, cache} {
		app := fiber.New()
		app.Post("/login", LoginRateLimit(client, 1, logging.Discard()), func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})
		for i := 0; i < 3; i++ {
			resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/login", nil), -1)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != fiber.StatusOK {
				t.Fatalf("expected limiter to let the attempt through, got %d", resp.StatusCode)
			}
		}
	}
}
