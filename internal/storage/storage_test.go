package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"queuely/internal/config"
	"queuely/internal/logger"
	"queuely/internal/store"
)

func TestOpenQueueStore(t *testing.T) {
	ctx := context.Background()
	log := logger.Nop()

	t.Run("memory", func(t *testing.T) {
		cfg := &config.Config{Store: config.StoreConfig{Backend: "memory"}}
		st, closeFn, err := OpenQueueStore(ctx, cfg, log)
		require.NoError(t, err)
		defer closeFn()
		assert.IsType(t, &store.MemoryStore{}, st)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := &config.Config{
			Store: config.StoreConfig{Backend: "redis", MaxRetries: 4},
			Redis: config.RedisConfig{Addr: mr.Addr()},
		}
		st, closeFn, err := OpenQueueStore(ctx, cfg, log)
		require.NoError(t, err)
		defer closeFn()
		assert.IsType(t, &store.RedisStore{}, st)

		codes, err := st.Codes(ctx)
		require.NoError(t, err)
		assert.Empty(t, codes)
	})

	t.Run("redis down", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()
		cfg := &config.Config{
			Store: config.StoreConfig{Backend: "redis", MaxRetries: 4},
			Redis: config.RedisConfig{Addr: addr},
		}
		_, _, err := OpenQueueStore(ctx, cfg, log)
		assert.Error(t, err)
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := &config.Config{Store: config.StoreConfig{Backend: "etcd"}}
		_, _, err := OpenQueueStore(ctx, cfg, log)
		assert.ErrorContains(t, err, "etcd")
	})
}

func TestConnectDatabaseSQLite(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{
		Driver:       "sqlite",
		SQLitePath:   filepath.Join(t.TempDir(), "registry.db"),
		MaxOpenConns: 10,
		MaxIdleConns: 2,
	}}
	db, err := ConnectDatabase(cfg, logger.Nop())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
	require.NoError(t, sqlDB.Ping())
}
