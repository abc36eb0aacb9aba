package infra

import (
	"context"
	"path/filepath"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"

	"github.com/siaga-app/siaga/internal/config"
	"github.com/siaga-app/siaga/internal/kv"
)

func TestNewKVStoreFile(t *testing.T) {
	cfg := config.Config{KVDriver: config.KVFile, KVPath: filepath.Join(t.TempDir(), "state", "device_info.json")}
	store, err := NewKVStore(cfg, nil)
	if err != nil {
		t.Fatalf("new kv store: %v", err)
	}
	if _, ok := store.(*kv.FileStore); !ok {
		t.Fatalf("expected file store, got %T", store)
	}
}

func TestNewKVStoreRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	cache, err := NewRedisClient(ctx, "redis://"+mr.Addr())
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer cache.Close()

	cfg := config.Config{KVDriver: config.KVRedis, KVNamespace: "siaga"}
	store, err := NewKVStore(cfg, cache)
	if err != nil {
		t.Fatalf("new kv store: %v", err)
	}
	if err := store.Put(ctx, "device_id", []byte(`"abc"`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if !mr.Exists("siaga:device_id") {
		t.Fatalf("expected namespaced key in redis, have %v", mr.Keys())
	}

	if _, err := NewKVStore(cfg, nil); err == nil {
		t.Fatalf("expected error without redis client")
	}
}

func TestNewSQLiteDB(t *testing.T) {
	db, err := NewSQLiteDB(filepath.Join(t.TempDir(), "emergency_app.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestConstructorsRequireURL(t *testing.T) {
	ctx := context.Background()
	if _, err := NewPostgresPool(ctx, ""); err == nil {
		t.Fatalf("expected error for empty database url")
	}
	if _, err := NewRedisClient(ctx, ""); err == nil {
		t.Fatalf("expected error for empty redis url")
	}
}
