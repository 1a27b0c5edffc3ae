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
	"encoding/binary"
	"fmt"
	"os"
	"time"

	"go.etcd.io/bbolt"
	"go.uber.org/atomic"

	"github.com/tochemey/actorloc/address"
	gerrors "github.com/tochemey/actorloc/errors"
)

const (
	boltFileMode   os.FileMode = 0o600
	boltBucketName             = "actor_locations"
)

var boltTimeout = 5 * time.Second

// BoltStore persists the table in a local bbolt file.
//
// Keys and values are the big-endian encoding of the ids so a bucket scan
// returns actors in id order. bbolt serializes writers itself, the store only
// tracks whether it has been closed.
type BoltStore struct {
	db     *bbolt.DB
	bucket []byte
	path   string
	closed *atomic.Bool
}

var _ Store = (*BoltStore)(nil)

// NewBoltStore opens (or creates) the bbolt database at path.
// The file is kept on Close so the table survives a restart.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, boltFileMode, &bbolt.Options{Timeout: boltTimeout, NoGrowSync: true})
	if err != nil {
		return nil, fmt.Errorf("store: opening boltdb: %w", err)
	}

	bucket := []byte(boltBucketName)
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, e := tx.CreateBucketIfNotExists(bucket)
		return e
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: initializing boltdb bucket: %w", err)
	}

	return &BoltStore{
		db:     db,
		bucket: bucket,
		path:   path,
		closed: atomic.NewBool(false),
	}, nil
}

// Path returns the database file path
func (s *BoltStore) Path() string {
	return s.path
}

// Put implements Store
func (s *BoltStore) Put(ctx context.Context, actorID address.ActorID, locationID address.LocationID) error {
	if err := s.ensureOpen(ctx); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := s.bucketOf(tx)
		if err != nil {
			return err
		}
		return bucket.Put(encodeID(actorID.Int64()), encodeID(locationID.Int64()))
	})
}

// Delete implements Store
func (s *BoltStore) Delete(ctx context.Context, actorID address.ActorID) error {
	if err := s.ensureOpen(ctx); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := s.bucketOf(tx)
		if err != nil {
			return err
		}
		return bucket.Delete(encodeID(actorID.Int64()))
	})
}

// Get implements Store
func (s *BoltStore) Get(ctx context.Context, actorID address.ActorID) (address.LocationID, bool, error) {
	if err := s.ensureOpen(ctx); err != nil {
		return address.NoLocation, false, err
	}

	locationID := address.NoLocation
	found := false
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket, err := s.bucketOf(tx)
		if err != nil {
			return err
		}
		raw := bucket.Get(encodeID(actorID.Int64()))
		if raw == nil {
			return nil
		}
		value, err := decodeID(raw)
		if err != nil {
			return err
		}
		locationID = address.LocationID(value)
		found = true
		return nil
	})
	if err != nil {
		return address.NoLocation, false, err
	}
	return locationID, found, nil
}

// Iterate implements Store. fn runs inside a read transaction and must not write to the store.
func (s *BoltStore) Iterate(ctx context.Context, fn func(address.ActorID, address.LocationID) bool) error {
	if err := s.ensureOpen(ctx); err != nil {
		return err
	}
	return s.db.View(func(tx *bbolt.Tx) error {
		bucket, err := s.bucketOf(tx)
		if err != nil {
			return err
		}
		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			if err := contextErr(ctx); err != nil {
				return err
			}
			actorID, err := decodeID(k)
			if err != nil {
				return err
			}
			locationID, err := decodeID(v)
			if err != nil {
				return err
			}
			if !fn(address.ActorID(actorID), address.LocationID(locationID)) {
				return nil
			}
		}
		return nil
	})
}

// Close releases the underlying bbolt handle
func (s *BoltStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

func (s *BoltStore) ensureOpen(ctx context.Context) error {
	if s.closed.Load() {
		return gerrors.ErrStoreClosed
	}
	return contextErr(ctx)
}

func (s *BoltStore) bucketOf(tx *bbolt.Tx) (*bbolt.Bucket, error) {
	bucket := tx.Bucket(s.bucket)
	if bucket == nil {
		return nil, fmt.Errorf("store: bucket %q missing", s.bucket)
	}
	return bucket, nil
}

// encodeID flips the sign bit so negative ids sort before positive ones
func encodeID(id int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(id)^(1<<63))
	return buf
}

func decodeID(raw []byte) (int64, error) {
	if len(raw) != 8 {
		return 0, fmt.Errorf("store: corrupted id of %d bytes", len(raw))
	}
	return int64(binary.BigEndian.Uint64(raw) ^ (1 << 63)), nil
}
