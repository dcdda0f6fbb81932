// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces every key written by RedisStore
const DefaultRedisPrefix = "affinity"

// RedisStoreConfig configures the Redis store
type RedisStoreConfig struct {
	Prefix string        // key prefix, default "affinity"
	TTL    time.Duration // expiry applied on every write, 0 = no expiry
}

// RedisStore keeps entries as plain string keys named "{prefix}:{scope}:{key}".
// The keys of each scope are tracked in the set "{prefix}#index:{scope}".
// The scope segment is escaped like a git store path segment so it never
// contains ':' and cannot run into the key.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a store backed by client
func NewRedisStore(client redis.UniversalClient, cfg RedisStoreConfig) *RedisStore {
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultRedisPrefix
	}
	return &RedisStore{
		client: client,
		prefix: cfg.Prefix,
		ttl:    cfg.TTL,
	}
}

func (r *RedisStore) kvKey(scope, key string) string {
	return fmt.Sprintf("%s:%s:%s", r.prefix, encodeSegment(scope), key)
}

func (r *RedisStore) indexKey(scope string) string {
	return fmt.Sprintf("%s#index:%s", r.prefix, encodeSegment(scope))
}

// Get returns the value stored under (scope, key)
func (r *RedisStore) Get(ctx context.Context, scope, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, r.kvKey(scope, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, true, nil
}

// Set writes the value and records the key in the scope index
func (r *RedisStore) Set(ctx context.Context, scope, key, value string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.kvKey(scope, key), value, r.ttl)
		pipe.SAdd(ctx, r.indexKey(scope), key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Keys lists the live keys of a scope in lexical order. Index members whose
// value has expired are dropped from the index.
func (r *RedisStore) Keys(ctx context.Context, scope string) ([]string, error) {
	members, err := r.client.SMembers(ctx, r.indexKey(scope)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list %s: %w", scope, err)
	}

	keys := make([]string, 0, len(members))
	for _, member := range members {
		n, err := r.client.Exists(ctx, r.kvKey(scope, member)).Result()
		if err != nil {
			return nil, fmt.Errorf("redis exists %s: %w", member, err)
		}
		if n == 0 {
			if err := r.client.SRem(ctx, r.indexKey(scope), member).Err(); err != nil {
				return nil, fmt.Errorf("redis prune %s: %w", member, err)
			}
			continue
		}
		keys = append(keys, member)
	}
	sort.Strings(keys)
	return keys, nil
}

// Ping checks the redis connection
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the underlying client
func (r *RedisStore) Close() error {
	return r.client.Close()
}
