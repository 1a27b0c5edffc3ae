// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/atomic"

	"github.com/tochemey/actorloc/address"
	gerrors "github.com/tochemey/actorloc/errors"
)

// DefaultRedisKey is the hash holding the table when no key is given
const DefaultRedisKey = "actorloc:locations"

const redisScanCount = 512

// RedisStore persists the table in a single Redis hash.
// Fields are decimal actor ids and values decimal location ids.
type RedisStore struct {
	client redis.UniversalClient
	key    string
	closed *atomic.Bool
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a RedisStore on top of the given client.
// The client stays owned by the caller.
func NewRedisStore(client redis.UniversalClient, key string) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("store: redis client is required")
	}
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key, closed: atomic.NewBool(false)}, nil
}

// Put implements Store
func (s *RedisStore) Put(ctx context.Context, actorID address.ActorID, locationID address.LocationID) error {
	if err := s.ensureOpen(ctx); err != nil {
		return err
	}
	if err := s.client.HSet(ctx, s.key, actorID.String(), locationID.String()).Err(); err != nil {
		return fmt.Errorf("store: redis hset: %w", err)
	}
	return nil
}

// Delete implements Store
func (s *RedisStore) Delete(ctx context.Context, actorID address.ActorID) error {
	if err := s.ensureOpen(ctx); err != nil {
		return err
	}
	if err := s.client.HDel(ctx, s.key, actorID.String()).Err(); err != nil {
		return fmt.Errorf("store: redis hdel: %w", err)
	}
	return nil
}

// Get implements Store
func (s *RedisStore) Get(ctx context.Context, actorID address.ActorID) (address.LocationID, bool, error) {
	if err := s.ensureOpen(ctx); err != nil {
		return address.NoLocation, false, err
	}
	value, err := s.client.HGet(ctx, s.key, actorID.String()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return address.NoLocation, false, nil
		}
		return address.NoLocation, false, fmt.Errorf("store: redis hget: %w", err)
	}
	locationID, err := address.ParseLocationID(value)
	if err != nil {
		return address.NoLocation, false, err
	}
	return locationID, true, nil
}

// Iterate implements Store. The hash is walked with HSCAN so large tables are
// not loaded in one round trip.
func (s *RedisStore) Iterate(ctx context.Context, fn func(address.ActorID, address.LocationID) bool) error {
	if err := s.ensureOpen(ctx); err != nil {
		return err
	}

	var cursor uint64
	for {
		pairs, next, err := s.client.HScan(ctx, s.key, cursor, "", redisScanCount).Result()
		if err != nil {
			return fmt.Errorf("store: redis hscan: %w", err)
		}
		for i := 0; i+1 < len(pairs); i += 2 {
			actorID, locationID, err := parseEntry(pairs[i], pairs[i+1])
			if err != nil {
				return err
			}
			if !fn(actorID, locationID) {
				return nil
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// Close implements Store. It does not close the client.
func (s *RedisStore) Close() error {
	s.closed.Store(true)
	return nil
}

func (s *RedisStore) ensureOpen(ctx context.Context) error {
	if s.closed.Load() {
		return gerrors.ErrStoreClosed
	}
	return contextErr(ctx)
}
