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

// Package directory holds the authoritative table mapping an actor id to the
// location currently hosting it.
//
// Mutations of a given actor are serialized by a per-actor lock taken from a
// corolock.Table, mutations of different actors never contend. Reads do not
// take the per-actor lock: an entry is always written as a whole value under
// its shard lock, so a racing Get observes either the old or the new location.
//
// When a store is configured every mutation is written through to it while
// the per-actor lock is held. A store failure aborts the mutation and leaves
// the table unchanged.
package directory

import (
	"context"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/tochemey/actorloc/address"
	"github.com/tochemey/actorloc/corolock"
	gerrors "github.com/tochemey/actorloc/errors"
	"github.com/tochemey/actorloc/hash"
	"github.com/tochemey/actorloc/log"
	"github.com/tochemey/actorloc/store"
	"github.com/tochemey/actorloc/telemetry"
)

const defaultShards = 64

type shard struct {
	mu      sync.RWMutex
	entries map[address.ActorID]address.LocationID
}

// lockInfo is a migration lock held on behalf of a caller outside of the
// directory. It is keyed by the fencing token of the acquisition.
type lockInfo struct {
	actorID address.ActorID
	handle  *corolock.Handle
	timer   *time.Timer
}

// Directory is the location table
type Directory struct {
	shards []*shard
	mask   uint64
	hasher hash.Hasher
	locks  *corolock.Table

	infoMu    sync.Mutex
	lockInfos map[uint64]*lockInfo

	store   store.Store
	logger  log.Logger
	metrics *telemetry.Metrics
	size    *atomic.Int64
	closed  *atomic.Bool
	shardsN int
}

// New creates a Directory
func New(opts ...Option) *Directory {
	dir := &Directory{
		hasher:    hash.DefaultHasher(),
		lockInfos: make(map[uint64]*lockInfo),
		logger:    log.DiscardLogger,
		size:      atomic.NewInt64(0),
		closed:    atomic.NewBool(false),
		shardsN:   defaultShards,
	}

	for _, opt := range opts {
		opt.Apply(dir)
	}

	count := 1
	for count < dir.shardsN {
		count <<= 1
	}
	dir.shards = make([]*shard, count)
	for i := range dir.shards {
		dir.shards[i] = &shard{entries: make(map[address.ActorID]address.LocationID)}
	}
	dir.mask = uint64(count - 1)

	dir.locks = corolock.New(
		corolock.WithShards(count),
		corolock.WithHasher(dir.hasher),
		corolock.WithLogger(dir.logger))
	return dir
}

// Add records that the actor lives at the given location, replacing any
// previous location. It waits for any other mutation of the same actor.
func (d *Directory) Add(ctx context.Context, actorID address.ActorID, locationID address.LocationID) error {
	if !actorID.IsValid() {
		return gerrors.NewErrInvalidActorID(actorID.Int64())
	}
	if !locationID.IsValid() {
		return gerrors.NewErrInvalidLocationID(locationID.Int64())
	}

	handle, err := d.acquire(ctx, actorID)
	if err != nil {
		return err
	}
	defer d.locks.Release(handle)

	if err := d.put(ctx, actorID, locationID); err != nil {
		d.logger.Errorf("failed to add actor=%d at location=%d: %v", actorID, locationID, err)
		return err
	}

	d.logger.Debugf("actor=%d added at location=%d", actorID, locationID)
	return nil
}

// Remove deletes the actor from the table. Removing an absent actor is not an error.
func (d *Directory) Remove(ctx context.Context, actorID address.ActorID) error {
	if !actorID.IsValid() {
		return gerrors.NewErrInvalidActorID(actorID.Int64())
	}

	handle, err := d.acquire(ctx, actorID)
	if err != nil {
		return err
	}
	defer d.locks.Release(handle)

	if err := d.delete(ctx, actorID); err != nil {
		d.logger.Errorf("failed to remove actor=%d: %v", actorID, err)
		return err
	}

	d.logger.Debugf("actor=%d removed", actorID)
	return nil
}

// Get returns the current location of the actor without waiting for pending mutations
func (d *Directory) Get(actorID address.ActorID) (address.LocationID, bool) {
	sh := d.shardFor(actorID)
	sh.mu.RLock()
	locationID, ok := sh.entries[actorID]
	sh.mu.RUnlock()
	return locationID, ok
}

// Lock takes the actor's lock on behalf of a migration and returns the fencing
// token to present to Unlock. Add and Remove on the actor wait until the lock
// is released. When hold is positive the lock is released automatically after
// hold if Unlock has not been called by then.
func (d *Directory) Lock(ctx context.Context, actorID address.ActorID, hold time.Duration) (uint64, error) {
	if !actorID.IsValid() {
		return 0, gerrors.NewErrInvalidActorID(actorID.Int64())
	}

	handle, err := d.acquire(ctx, actorID)
	if err != nil {
		return 0, err
	}

	token := handle.Token()
	info := &lockInfo{actorID: actorID, handle: handle}

	d.infoMu.Lock()
	d.lockInfos[token] = info
	if hold > 0 {
		info.timer = time.AfterFunc(hold, func() { d.expire(token) })
	}
	d.infoMu.Unlock()

	d.logger.Debugf("actor=%d locked token=%d", actorID, token)
	return token, nil
}

// Unlock releases a migration lock. When locationID is valid the actor is
// recorded at that location before the lock is released.
//
// A token that does not match a live migration lock on the actor, because it
// is forged, already released or its hold expired, is ignored without error.
// applied reports whether the token was live: when it is false nothing was
// written and the caller must not assume the actor moved.
func (d *Directory) Unlock(ctx context.Context, actorID address.ActorID, token uint64, locationID address.LocationID) (applied bool, err error) {
	d.infoMu.Lock()
	info, ok := d.lockInfos[token]
	if !ok || info.actorID != actorID {
		d.infoMu.Unlock()
		if locationID.IsValid() {
			d.logger.Warnf("ignoring stale unlock actor=%d token=%d, location=%d not recorded", actorID, token, locationID)
		} else {
			d.logger.Debugf("ignoring stale unlock actor=%d token=%d", actorID, token)
		}
		return false, nil
	}
	delete(d.lockInfos, token)
	if info.timer != nil {
		info.timer.Stop()
	}
	d.infoMu.Unlock()

	defer d.locks.Release(info.handle)

	if !locationID.IsValid() {
		d.logger.Debugf("actor=%d unlocked token=%d", actorID, token)
		return true, nil
	}

	if err := d.put(ctx, actorID, locationID); err != nil {
		d.logger.Errorf("failed to move actor=%d to location=%d: %v", actorID, locationID, err)
		return true, err
	}

	d.logger.Debugf("actor=%d unlocked token=%d at location=%d", actorID, token, locationID)
	return true, nil
}

// Restore replaces the table with the content of the store.
//
// The replacement tables are built off-line and swapped in shard by shard, so
// a concurrent Get sees either the previous or the restored location of an
// actor present in both, never a miss. Restore does not take the per-actor
// locks: it is meant to run at startup, before mutations are accepted, and a
// mutation racing with it may be overwritten by the stored value.
func (d *Directory) Restore(ctx context.Context) error {
	if d.store == nil {
		return nil
	}
	if d.closed.Load() {
		return gerrors.ErrDirectoryClosed
	}

	tables := make([]map[address.ActorID]address.LocationID, len(d.shards))
	for i := range tables {
		tables[i] = make(map[address.ActorID]address.LocationID)
	}

	var total int64
	if err := d.store.Iterate(ctx, func(actorID address.ActorID, locationID address.LocationID) bool {
		if actorID.IsValid() && locationID.IsValid() {
			table := tables[d.shardIndex(actorID)]
			if _, seen := table[actorID]; !seen {
				total++
			}
			table[actorID] = locationID
		}
		return true
	}); err != nil {
		return err
	}

	for i, sh := range d.shards {
		sh.mu.Lock()
		sh.entries = tables[i]
		sh.mu.Unlock()
	}

	previous := d.size.Swap(total)
	d.metrics.AddDirectoryEntries(ctx, total-previous)
	d.logger.Infof("location directory restored with %d actor(s)", total)
	return nil
}

// Len returns the number of actors in the table
func (d *Directory) Len() int {
	return int(d.size.Load())
}

// IsLocked reports whether a mutation or a migration currently holds the actor's lock
func (d *Directory) IsLocked(actorID address.ActorID) bool {
	return d.locks.IsLocked(actorID.Int64())
}

// Close aborts every pending mutation with errors.ErrLockAborted and rejects
// new ones. The store is left open.
func (d *Directory) Close() {
	if d.closed.Swap(true) {
		return
	}

	d.infoMu.Lock()
	for token, info := range d.lockInfos {
		if info.timer != nil {
			info.timer.Stop()
		}
		delete(d.lockInfos, token)
	}
	d.infoMu.Unlock()

	d.locks.Close()
	d.logger.Info("location directory closed")
}

func (d *Directory) acquire(ctx context.Context, actorID address.ActorID) (*corolock.Handle, error) {
	if d.closed.Load() {
		return nil, gerrors.ErrDirectoryClosed
	}

	waiting := d.locks.IsLocked(actorID.Int64())
	if waiting {
		d.metrics.AddLockWaiters(ctx, 1)
		defer d.metrics.AddLockWaiters(ctx, -1)
	}

	handle, err := d.locks.Acquire(ctx, actorID.Int64())
	if err != nil {
		d.logger.Errorf("failed to lock actor=%d: %v", actorID, err)
		return nil, err
	}
	return handle, nil
}

// put writes through to the store then to the table. The actor's lock must be held.
func (d *Directory) put(ctx context.Context, actorID address.ActorID, locationID address.LocationID) error {
	if d.store != nil {
		if err := d.store.Put(ctx, actorID, locationID); err != nil {
			return err
		}
	}

	sh := d.shardFor(actorID)
	sh.mu.Lock()
	_, existed := sh.entries[actorID]
	sh.entries[actorID] = locationID
	sh.mu.Unlock()

	if !existed {
		d.size.Inc()
		d.metrics.AddDirectoryEntries(ctx, 1)
	}
	return nil
}

// delete removes from the store then from the table. The actor's lock must be held.
func (d *Directory) delete(ctx context.Context, actorID address.ActorID) error {
	if d.store != nil {
		if err := d.store.Delete(ctx, actorID); err != nil {
			return err
		}
	}

	sh := d.shardFor(actorID)
	sh.mu.Lock()
	_, existed := sh.entries[actorID]
	delete(sh.entries, actorID)
	sh.mu.Unlock()

	if existed {
		d.size.Dec()
		d.metrics.AddDirectoryEntries(ctx, -1)
	}
	return nil
}

func (d *Directory) expire(token uint64) {
	d.infoMu.Lock()
	info, ok := d.lockInfos[token]
	if ok {
		delete(d.lockInfos, token)
	}
	d.infoMu.Unlock()

	if !ok {
		return
	}

	d.logger.Warnf("migration lock on actor=%d expired token=%d", info.actorID, token)
	d.locks.Release(info.handle)
}

func (d *Directory) shardFor(actorID address.ActorID) *shard {
	return d.shards[d.shardIndex(actorID)]
}

func (d *Directory) shardIndex(actorID address.ActorID) uint64 {
	return hash.Key(d.hasher, actorID.Int64()) & d.mask
}
