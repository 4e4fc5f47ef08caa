// Package storage opens the database and Redis connections.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"queuely/internal/config"
	"queuely/internal/logger"
	"queuely/internal/store"
)

// ConnectDatabase opens the registry database selected by DB_DRIVER
func ConnectDatabase(c *config.Config, log *logger.Logger) (*gorm.DB, error) {
	cfg := c.Database
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	case "postgres", "":
		dialector = postgres.Open(c.DSN())
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	maxOpen := cfg.MaxOpenConns
	if cfg.Driver == "sqlite" {
		maxOpen = 1
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Info("database connected", "driver", cfg.Driver, "name", cfg.Name)
	return db, nil
}

// NewRedisClient creates a client for the queue store and checks it with PING
func NewRedisClient(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
	}

	log.Info("redis connected", "addr", cfg.Addr, "db", cfg.DB)
	return rdb, nil
}

// OpenQueueStore returns the queue store selected by STORE_BACKEND and a
// function releasing its connection.
func OpenQueueStore(ctx context.Context, c *config.Config, log *logger.Logger) (store.Store, func(), error) {
	switch c.Store.Backend {
	case "memory":
		log.Warn("using in-memory queue store, queues are lost on restart")
		return store.NewMemoryStore(), func() {}, nil
	case "redis", "":
		rdb, err := NewRedisClient(ctx, c.Redis, log)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := rdb.Close(); err != nil {
				log.Warn("close redis", "error", err)
			}
		}
		return store.NewRedisStore(rdb, c.Store.MaxRetries, log), closeFn, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
}
