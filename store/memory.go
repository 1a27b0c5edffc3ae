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
	"sync"

	"github.com/tochemey/actorloc/address"
	gerrors "github.com/tochemey/actorloc/errors"
)

// MemoryStore keeps the table in process memory.
// It is the default store and the one used in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[address.ActorID]address.LocationID
	closed  bool
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[address.ActorID]address.LocationID)}
}

// Put implements Store
func (s *MemoryStore) Put(ctx context.Context, actorID address.ActorID, locationID address.LocationID) error {
	if err := contextErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return gerrors.ErrStoreClosed
	}
	s.entries[actorID] = locationID
	return nil
}

// Delete implements Store
func (s *MemoryStore) Delete(ctx context.Context, actorID address.ActorID) error {
	if err := contextErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return gerrors.ErrStoreClosed
	}
	delete(s.entries, actorID)
	return nil
}

// Get implements Store
func (s *MemoryStore) Get(ctx context.Context, actorID address.ActorID) (address.LocationID, bool, error) {
	if err := contextErr(ctx); err != nil {
		return address.NoLocation, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return address.NoLocation, false, gerrors.ErrStoreClosed
	}
	locationID, ok := s.entries[actorID]
	return locationID, ok, nil
}

// Iterate implements Store. It walks a snapshot so fn may call back into the store.
func (s *MemoryStore) Iterate(ctx context.Context, fn func(address.ActorID, address.LocationID) bool) error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return gerrors.ErrStoreClosed
	}
	snapshot := make(map[address.ActorID]address.LocationID, len(s.entries))
	for actorID, locationID := range s.entries {
		snapshot[actorID] = locationID
	}
	s.mu.RUnlock()

	for actorID, locationID := range snapshot {
		if err := contextErr(ctx); err != nil {
			return err
		}
		if !fn(actorID, locationID) {
			return nil
		}
	}
	return nil
}

// Close implements Store
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.closed = true
	clear(s.entries)
	s.mu.Unlock()
	return nil
}
