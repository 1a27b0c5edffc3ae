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

	"github.com/nats-io/nats.go"
	"go.uber.org/atomic"

	"github.com/tochemey/actorloc/address"
	gerrors "github.com/tochemey/actorloc/errors"
)

// DefaultNatsBucket is the JetStream key-value bucket used when none is given
const DefaultNatsBucket = "actor_locations"

// NatsStore persists the table in a NATS JetStream key-value bucket.
// Keys are decimal actor ids and values decimal location ids.
type NatsStore struct {
	kv     nats.KeyValue
	closed *atomic.Bool
}

var _ Store = (*NatsStore)(nil)

// NewNatsStore binds the store to the bucket, creating it when it does not exist.
// The connection stays owned by the caller.
func NewNatsStore(conn *nats.Conn, bucket string) (*NatsStore, error) {
	if conn == nil {
		return nil, errors.New("store: nats connection is required")
	}
	if bucket == "" {
		bucket = DefaultNatsBucket
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("store: jetstream: %w", err)
	}

	kv, err := js.KeyValue(bucket)
	if err != nil {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{Bucket: bucket})
		if err != nil {
			// another process may have created the bucket in between
			if errors.Is(err, nats.ErrStreamNameAlreadyInUse) {
				kv, err = js.KeyValue(bucket)
			}
			if err != nil {
				return nil, fmt.Errorf("store: create bucket: %w", err)
			}
		}
	}

	return &NatsStore{kv: kv, closed: atomic.NewBool(false)}, nil
}

// Put implements Store
func (s *NatsStore) Put(ctx context.Context, actorID address.ActorID, locationID address.LocationID) error {
	if err := s.ensureOpen(ctx); err != nil {
		return err
	}
	if _, err := s.kv.PutString(actorID.String(), locationID.String()); err != nil {
		return fmt.Errorf("store: nats put: %w", err)
	}
	return nil
}

// Delete implements Store
func (s *NatsStore) Delete(ctx context.Context, actorID address.ActorID) error {
	if err := s.ensureOpen(ctx); err != nil {
		return err
	}
	if err := s.kv.Delete(actorID.String()); err != nil {
		if errors.Is(err, nats.ErrKeyNotFound) || errors.Is(err, nats.ErrKeyDeleted) {
			return nil
		}
		return fmt.Errorf("store: nats delete: %w", err)
	}
	return nil
}

// Get implements Store
func (s *NatsStore) Get(ctx context.Context, actorID address.ActorID) (address.LocationID, bool, error) {
	if err := s.ensureOpen(ctx); err != nil {
		return address.NoLocation, false, err
	}
	entry, err := s.kv.Get(actorID.String())
	if err != nil {
		if errors.Is(err, nats.ErrKeyNotFound) || errors.Is(err, nats.ErrKeyDeleted) {
			return address.NoLocation, false, nil
		}
		return address.NoLocation, false, fmt.Errorf("store: nats get: %w", err)
	}
	locationID, err := address.ParseLocationID(string(entry.Value()))
	if err != nil {
		return address.NoLocation, false, err
	}
	return locationID, true, nil
}

// Iterate implements Store
func (s *NatsStore) Iterate(ctx context.Context, fn func(address.ActorID, address.LocationID) bool) error {
	if err := s.ensureOpen(ctx); err != nil {
		return err
	}

	lister, err := s.kv.ListKeys()
	if err != nil {
		return fmt.Errorf("store: nats list keys: %w", err)
	}
	defer func() { _ = lister.Stop() }()

	for key := range lister.Keys() {
		if err := contextErr(ctx); err != nil {
			return err
		}

		entry, err := s.kv.Get(key)
		if err != nil {
			if errors.Is(err, nats.ErrKeyNotFound) || errors.Is(err, nats.ErrKeyDeleted) {
				continue
			}
			return fmt.Errorf("store: nats get: %w", err)
		}
		if entry.Operation() != nats.KeyValuePut {
			continue
		}

		actorID, locationID, err := parseEntry(key, string(entry.Value()))
		if err != nil {
			return err
		}
		if !fn(actorID, locationID) {
			return nil
		}
	}
	return nil
}

// Close implements Store. It does not close the connection.
func (s *NatsStore) Close() error {
	s.closed.Store(true)
	return nil
}

func (s *NatsStore) ensureOpen(ctx context.Context) error {
	if s.closed.Load() {
		return gerrors.ErrStoreClosed
	}
	return contextErr(ctx)
}
