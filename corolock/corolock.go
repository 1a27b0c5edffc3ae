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

// Package corolock implements a keyed mutual-exclusion table.
//
// Acquire parks the calling goroutine on a channel until the key is free, so
// waiting never pins an OS thread. Waiters on the same key are granted the lock
// in arrival order. Every grant carries a fencing token drawn from a
// monotonically increasing sequence; Release only frees the key when the
// presented token is the one currently holding it, so a late release from a
// caller that already gave up cannot unlock an acquisition made after it.
//
// Different keys never contend: the table is split into shards selected by
// hashing the key and each shard only guards its own bookkeeping.
package corolock

import (
	"context"
	"sync"

	"go.uber.org/atomic"

	gerrors "github.com/tochemey/actorloc/errors"
	"github.com/tochemey/actorloc/hash"
	"github.com/tochemey/actorloc/log"
)

const defaultShards = 64

// Handle is the proof of a lock acquisition.
type Handle struct {
	key   int64
	token uint64
}

// Key returns the locked key
func (h *Handle) Key() int64 {
	return h.key
}

// Token returns the fencing token of the acquisition
func (h *Handle) Token() uint64 {
	return h.token
}

// waiter is parked on ch until it is granted a token.
// ch is closed when the table is closed.
type waiter struct {
	ch chan uint64
}

// entry exists as long as the key is held or has waiters.
type entry struct {
	token   uint64
	waiters []*waiter
}

type shard struct {
	mu      sync.Mutex
	entries map[int64]*entry
}

// Table is a keyed lock table.
type Table struct {
	shards []*shard
	mask   uint64
	hasher hash.Hasher
	seq    *atomic.Uint64
	closed *atomic.Bool
	logger log.Logger
}

// New creates a lock table
func New(opts ...Option) *Table {
	table := &Table{
		hasher: hash.DefaultHasher(),
		seq:    atomic.NewUint64(0),
		closed: atomic.NewBool(false),
		logger: log.DiscardLogger,
	}

	count := defaultShards
	for _, opt := range opts {
		opt.Apply(table)
		if s, ok := opt.(shardsOption); ok {
			count = int(s)
		}
	}

	count = nextPowerOfTwo(count)
	table.shards = make([]*shard, count)
	for i := range table.shards {
		table.shards[i] = &shard{entries: make(map[int64]*entry)}
	}
	table.mask = uint64(count - 1)
	return table
}

// Acquire locks the key. It blocks until every earlier waiter on the same key
// has been served and the key is free, ctx is done, or the table is closed.
// Closing the table fails the waiter with errors.ErrLockAborted.
func (t *Table) Acquire(ctx context.Context, key int64) (*Handle, error) {
	if t.closed.Load() {
		return nil, gerrors.NewErrLockAborted(key)
	}

	sh := t.shardFor(key)
	sh.mu.Lock()
	// Close flips the flag before draining shards, check again under the shard lock
	if t.closed.Load() {
		sh.mu.Unlock()
		return nil, gerrors.NewErrLockAborted(key)
	}

	e, ok := sh.entries[key]
	if !ok {
		e = new(entry)
		sh.entries[key] = e
	}

	if e.token == 0 && len(e.waiters) == 0 {
		e.token = t.seq.Inc()
		token := e.token
		sh.mu.Unlock()
		return &Handle{key: key, token: token}, nil
	}

	w := &waiter{ch: make(chan uint64, 1)}
	e.waiters = append(e.waiters, w)
	sh.mu.Unlock()

	select {
	case token, ok := <-w.ch:
		if !ok {
			return nil, gerrors.NewErrLockAborted(key)
		}
		return &Handle{key: key, token: token}, nil
	case <-ctx.Done():
		sh.mu.Lock()
		defer sh.mu.Unlock()

		// the grant may have raced with the cancellation
		select {
		case token, ok := <-w.ch:
			if !ok {
				return nil, gerrors.NewErrLockAborted(key)
			}
			if current, found := sh.entries[key]; found && current.token == token {
				t.grantNextLocked(sh, key, current)
			}
			return nil, ctx.Err()
		default:
		}

		if current, found := sh.entries[key]; found {
			removeWaiter(current, w)
			if current.token == 0 && len(current.waiters) == 0 {
				delete(sh.entries, key)
			}
		}
		return nil, ctx.Err()
	}
}

// Release frees the key held by the handle and hands it to the next waiter.
// It returns false, without touching the lock, when the handle's token is not
// the current holder's token.
func (t *Table) Release(handle *Handle) bool {
	if handle == nil {
		return false
	}

	sh := t.shardFor(handle.key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	e, ok := sh.entries[handle.key]
	if !ok || e.token != handle.token {
		t.logger.Debugf("ignoring stale release key=%d token=%d", handle.key, handle.token)
		return false
	}

	t.grantNextLocked(sh, handle.key, e)
	return true
}

// IsLocked reports whether the key is currently held
func (t *Table) IsLocked(key int64) bool {
	sh := t.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	e, ok := sh.entries[key]
	return ok && e.token != 0
}

// Waiters returns the number of callers queued on the key
func (t *Table) Waiters(key int64) int {
	sh := t.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if e, ok := sh.entries[key]; ok {
		return len(e.waiters)
	}
	return 0
}

// Close aborts every queued waiter with errors.ErrLockAborted and rejects
// further acquisitions. Holders keep running; their releases become no-ops.
func (t *Table) Close() {
	if t.closed.Swap(true) {
		return
	}

	aborted := 0
	for _, sh := range t.shards {
		sh.mu.Lock()
		for key, e := range sh.entries {
			for _, w := range e.waiters {
				close(w.ch)
				aborted++
			}
			delete(sh.entries, key)
		}
		sh.mu.Unlock()
	}

	if aborted > 0 {
		t.logger.Warnf("lock table closed, %d waiter(s) aborted", aborted)
	}
}

// grantNextLocked passes the key to the oldest waiter or frees it.
// sh.mu must be held.
func (t *Table) grantNextLocked(sh *shard, key int64, e *entry) {
	if len(e.waiters) == 0 {
		delete(sh.entries, key)
		return
	}

	next := e.waiters[0]
	e.waiters[0] = nil
	e.waiters = e.waiters[1:]
	e.token = t.seq.Inc()
	next.ch <- e.token
}

func (t *Table) shardFor(key int64) *shard {
	return t.shards[hash.Key(t.hasher, key)&t.mask]
}

func removeWaiter(e *entry, target *waiter) {
	for i, w := range e.waiters {
		if w == target {
			e.waiters = append(e.waiters[:i], e.waiters[i+1:]...)
			return
		}
	}
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
