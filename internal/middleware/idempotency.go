package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const (
	idempotencyKeyHeader = "Idempotency-Key"
	replayPrefix         = "replay:v1:"
	replayPending        = "pending"
	replayCacheTimeout   = 2 * time.Second
)

// replayEntry is the response remembered for one submission.
type replayEntry struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// ReplayGuard makes a submission route safe to retry. A repeated
// Idempotency-Key from the same user on the same route gets the first
// response back instead of recording the submission again. It must run after
// RequireSession. Requests without the header pass through.
func ReplayGuard(cache *redis.Client, ttl time.Duration, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get(idempotencyKeyHeader)
		if key == "" {
			return c.Next()
		}
		cacheKey := replayCacheKey(c, key)

		ctx, cancel := context.WithTimeout(context.Background(), replayCacheTimeout)
		reserved, err := cache.SetNX(ctx, cacheKey, replayPending, ttl).Result()
		if err == nil && !reserved {
			err = replay(ctx, c, cache, cacheKey)
			cancel()
			return err
		}
		cancel()
		if err != nil {
			logger.Error("replay guard unavailable", slog.String("route", c.Route().Path), slog.Any("error", err))
			return fiber.NewError(http.StatusServiceUnavailable, "submission could not be checked, retry later")
		}

		if err := c.Next(); err != nil {
			forget(cache, cacheKey)
			return err
		}
		if c.Response().StatusCode() >= http.StatusBadRequest {
			forget(cache, cacheKey)
			return nil
		}

		entry, _ := json.Marshal(replayEntry{
			Status:      c.Response().StatusCode(),
			ContentType: string(c.Response().Header.ContentType()),
			Body:        c.Response().Body(),
		})
		ctx, cancel = context.WithTimeout(context.Background(), replayCacheTimeout)
		defer cancel()
		if err := cache.Set(ctx, cacheKey, entry, ttl).Err(); err != nil {
			// The submission itself is already stored.
			logger.Warn("replay entry not saved", slog.String("route", c.Route().Path), slog.Any("error", err))
			forget(cache, cacheKey)
		}
		return nil
	}
}

func replay(ctx context.Context, c *fiber.Ctx, cache *redis.Client, cacheKey string) error {
	raw, err := cache.Get(ctx, cacheKey).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return fiber.NewError(http.StatusConflict, "submission expired while retrying, send it again")
	case err != nil:
		return fiber.NewError(http.StatusServiceUnavailable, "submission could not be checked, retry later")
	case string(raw) == replayPending:
		return fiber.NewError(http.StatusConflict, "submission is still being processed")
	}

	var entry replayEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return fiber.NewError(http.StatusConflict, "submission already received")
	}
	if entry.ContentType != "" {
		c.Set(fiber.HeaderContentType, entry.ContentType)
	}
	c.Set("Idempotent-Replayed", "true")
	return c.Status(entry.Status).Send(entry.Body)
}

func forget(cache *redis.Client, cacheKey string) {
	ctx, cancel := context.WithTimeout(context.Background(), replayCacheTimeout)
	defer cancel()
	cache.Del(ctx, cacheKey)
}

// replayCacheKey scopes the client key to the session user and the route, so
// two users (or two routes) reusing a key never share a response.
func replayCacheKey(c *fiber.Ctx, key string) string {
	owner := "anonymous"
	if profile, ok := CurrentProfile(c); ok {
		owner = strconv.FormatInt(profile.ID, 10)
	}
	sum := sha256.Sum256([]byte(c.Method() + " " + c.Route().Path + " " + key))
	return replayPrefix + owner + ":" + hex.EncodeToString(sum[:16])
}
