// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tejzpr/affinity-mcp/internal/config"
	"github.com/tejzpr/affinity-mcp/internal/database"
	"gorm.io/gorm/logger"
)

// CloseFunc releases the resources held by a store
type CloseFunc func() error

func noopClose() error { return nil }

// Open builds the backend selected by cfg.Store.Type. Database stores are
// migrated before use and redis stores are pinged.
func Open(ctx context.Context, cfg *config.Config) (Store, CloseFunc, error) {
	switch cfg.Store.Type {
	case config.StoreTypeMemory:
		return NewMemoryStore(), noopClose, nil

	case config.StoreTypeDatabase:
		db, err := database.Connect(&database.Config{
			Type:        cfg.Database.Type,
			SQLitePath:  cfg.Database.SQLitePath,
			PostgresDSN: cfg.Database.PostgresDSN,
			LogLevel:    logger.Silent,
		})
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(db); err != nil {
			_ = database.Close(db)
			return nil, nil, err
		}
		if err := database.CreateIndexes(db); err != nil {
			_ = database.Close(db)
			return nil, nil, err
		}
		return NewSQLStore(db), func() error { return database.Close(db) }, nil

	case config.StoreTypeRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Store.Redis.Addr, err)
		}
		rs := NewRedisStore(client, RedisStoreConfig{
			Prefix: cfg.Store.Redis.Prefix,
			TTL:    time.Duration(cfg.Store.Redis.TTLHours) * time.Hour,
		})
		return rs, rs.Close, nil

	case config.StoreTypeGit:
		gs, err := NewGitStore(cfg.Store.Git.Path)
		if err != nil {
			return nil, nil, err
		}
		return gs, noopClose, nil

	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedStore, cfg.Store.Type)
	}
}
