package infra

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/siaga-app/siaga/internal/config"
	"github.com/siaga-app/siaga/internal/kv"
)

// NewKVStore builds the device-local key/value store selected by
// cfg.KVDriver. The Redis driver requires cache.
func NewKVStore(cfg config.Config, cache *redis.Client) (kv.Store, error) {
	switch cfg.KVDriver {
	case config.KVFile:
		store, err := kv.NewFileStore(cfg.KVPath)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.KVRedis:
		if cache == nil {
			return nil, fmt.Errorf("redis client is required for KV_DRIVER=%s", config.KVRedis)
		}
		store, err := kv.NewRedisStore(cache, cfg.KVNamespace)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported kv driver %q", cfg.KVDriver)
	}
}
