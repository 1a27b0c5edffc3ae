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

package sender

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"go.uber.org/goleak"

	"github.com/tochemey/actorloc/address"
	"github.com/tochemey/actorloc/directory"
	gerrors "github.com/tochemey/actorloc/errors"
	"github.com/tochemey/actorloc/proxy"
	"github.com/tochemey/actorloc/transport"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeResolver resolves from a fixed table and counts the lookups
type fakeResolver struct {
	mu        sync.Mutex
	locations map[address.ActorID]address.LocationID
	errs      []error
	calls     *atomic.Int64
	gate      chan struct{}
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		locations: make(map[address.ActorID]address.LocationID),
		calls:     atomic.NewInt64(0),
	}
}

func (f *fakeResolver) set(actorID address.ActorID, location address.LocationID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locations[actorID] = location
}

// failNext makes the next lookups return the given errors in order
func (f *fakeResolver) failNext(errs ...error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs = append(f.errs, errs...)
}

func (f *fakeResolver) Get(ctx context.Context, actorID address.ActorID) (address.LocationID, error) {
	f.calls.Inc()
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return address.NoLocation, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return address.NoLocation, err
	}
	location, ok := f.locations[actorID]
	if !ok {
		return address.NoLocation, gerrors.NewErrActorNotFound(actorID.Int64())
	}
	return location, nil
}

// fakeTransport records the delivered payloads and lets tests script failures
type fakeTransport struct {
	mu        sync.Mutex
	delivered []string
	locations []address.LocationID
	calls     *atomic.Int64
	fail      func(location address.LocationID, envelope *transport.Envelope) error
	block     chan struct{}
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{calls: atomic.NewInt64(0)}
}

func (f *fakeTransport) Deliver(ctx context.Context, location address.LocationID, envelope *transport.Envelope) ([]byte, error) {
	f.calls.Inc()

	f.mu.Lock()
	block := f.block
	fail := f.fail
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if fail != nil {
		if err := fail(location, envelope); err != nil {
			return nil, err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.delivered = append(f.delivered, string(envelope.Payload))
	f.locations = append(f.locations, location)
	return append([]byte("re:"), envelope.Payload...), nil
}

func (f *fakeTransport) Serve(address.LocationID, transport.Handler) error { return nil }
func (f *fakeTransport) Unserve(address.LocationID) error                  { return nil }
func (f *fakeTransport) Close() error                                      { return nil }

func (f *fakeTransport) setFail(fail func(address.LocationID, *transport.Envelope) error) {
	f.mu.Lock()
	f.fail = fail
	f.mu.Unlock()
}

func (f *fakeTransport) setBlock(block chan struct{}) {
	f.mu.Lock()
	f.block = block
	f.mu.Unlock()
}

func (f *fakeTransport) payloads() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.delivered...)
}

// fakeClock is a settable clock
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(now time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

func unreachable(location address.LocationID, _ *transport.Envelope) error {
	return gerrors.NewErrLocationUnreachable(location.Int64(), errors.New("connection refused"))
}

func stopRegistry(t *testing.T, registry *Registry) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, registry.Stop(ctx))
}

func waitIdle(t *testing.T, s *Sender) {
	t.Helper()
	require.Eventually(t, func() bool { return !s.draining.Load() }, time.Second, time.Millisecond)
}

func TestSend(t *testing.T) {
	t.Run("With known location", func(t *testing.T) {
		ctx := context.Background()
		resolver := newFakeResolver()
		resolver.set(42, 7)
		tr := newFakeTransport()
		registry := NewRegistry(resolver, tr)
		defer stopRegistry(t, registry)

		require.NoError(t, registry.Send(ctx, 42, []byte("hi")))
		require.NoError(t, registry.Send(ctx, 42, []byte("hi again")))

		assert.Equal(t, []string{"hi", "hi again"}, tr.payloads())
		// the location is cached after the first lookup
		assert.EqualValues(t, 1, resolver.calls.Load())
		assert.Equal(t, 1, registry.Len())

		s, ok := registry.Sender(42)
		require.True(t, ok)
		assert.Equal(t, address.ActorID(42), s.ActorID())
		assert.Equal(t, address.LocationID(7), s.Location())
		waitIdle(t, s)
		assert.Equal(t, Idle, s.State())
		assert.Zero(t, s.QueueLen())
	})
	t.Run("With ask", func(t *testing.T) {
		ctx := context.Background()
		resolver := newFakeResolver()
		resolver.set(42, 7)
		registry := NewRegistry(resolver, newFakeTransport())
		defer stopRegistry(t, registry)

		reply, err := registry.Ask(ctx, 42, []byte("ping"))
		require.NoError(t, err)
		assert.Equal(t, []byte("re:ping"), reply)
	})
	t.Run("With invalid actor", func(t *testing.T) {
		registry := NewRegistry(newFakeResolver(), newFakeTransport())
		defer stopRegistry(t, registry)

		err := registry.Send(context.Background(), address.NoActor, []byte("hi"))
		require.ErrorIs(t, err, gerrors.ErrInvalidActorID)
		assert.Zero(t, registry.Len())
	})
	t.Run("With actor not found", func(t *testing.T) {
		ctx := context.Background()
		resolver := newFakeResolver()
		tr := newFakeTransport()
		registry := NewRegistry(resolver, tr)
		defer stopRegistry(t, registry)

		err := registry.Send(ctx, 42, []byte("hi"))
		require.ErrorIs(t, err, gerrors.ErrActorNotFound)
		assert.Zero(t, tr.calls.Load())
		// not found is never retried
		assert.EqualValues(t, 1, resolver.calls.Load())

		s, ok := registry.Sender(42)
		require.True(t, ok)
		waitIdle(t, s)
		assert.Equal(t, Idle, s.State())
	})
	t.Run("With actor not found failing queued messages", func(t *testing.T) {
		ctx := context.Background()
		resolver := newFakeResolver()
		resolver.gate = make(chan struct{})
		tr := newFakeTransport()
		registry := NewRegistry(resolver, tr)
		defer stopRegistry(t, registry)

		errs := make(chan error, 3)
		go func() { errs <- registry.Send(ctx, 42, []byte("m1")) }()
		require.Eventually(t, func() bool { return resolver.calls.Load() == 1 }, time.Second, time.Millisecond)

		s, ok := registry.Sender(42)
		require.True(t, ok)
		go func() { errs <- registry.Send(ctx, 42, []byte("m2")) }()
		require.Eventually(t, func() bool { return s.QueueLen() == 1 }, time.Second, time.Millisecond)
		go func() { errs <- registry.Send(ctx, 42, []byte("m3")) }()
		require.Eventually(t, func() bool { return s.QueueLen() == 2 }, time.Second, time.Millisecond)

		close(resolver.gate)
		for i := 0; i < 3; i++ {
			require.ErrorIs(t, <-errs, gerrors.ErrActorNotFound)
		}
		assert.EqualValues(t, 1, resolver.calls.Load())
		assert.Zero(t, tr.calls.Load())
	})
	t.Run("With rejected message", func(t *testing.T) {
		ctx := context.Background()
		resolver := newFakeResolver()
		resolver.set(42, 7)
		tr := newFakeTransport()
		tr.setFail(func(address.LocationID, *transport.Envelope) error {
			return gerrors.NewErrMessageRejected(errors.New("bad payload"))
		})
		registry := NewRegistry(resolver, tr)
		defer stopRegistry(t, registry)

		err := registry.Send(ctx, 42, []byte("hi"))
		require.ErrorIs(t, err, gerrors.ErrMessageRejected)
		assert.EqualValues(t, 1, tr.calls.Load())
	})
	t.Run("With transient directory error", func(t *testing.T) {
		ctx := context.Background()
		resolver := newFakeResolver()
		resolver.set(42, 7)
		resolver.failNext(gerrors.NewErrDirectoryUnavailable("127.0.0.1:1", errors.New("down")))
		tr := newFakeTransport()
		registry := NewRegistry(resolver, tr, WithBackoff(time.Millisecond, 2*time.Millisecond))
		defer stopRegistry(t, registry)

		require.NoError(t, registry.Send(ctx, 42, []byte("hi")))
		assert.EqualValues(t, 2, resolver.calls.Load())
		assert.Equal(t, []string{"hi"}, tr.payloads())
	})
}

func TestFIFO(t *testing.T) {
	ctx := context.Background()
	resolver := newFakeResolver()
	resolver.set(42, 7)
	tr := newFakeTransport()
	block := make(chan struct{})
	tr.setBlock(block)
	registry := NewRegistry(resolver, tr, WithBackoff(time.Millisecond, 2*time.Millisecond))
	defer stopRegistry(t, registry)

	var wg sync.WaitGroup
	send := func(payload string) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, registry.Send(ctx, 42, []byte(payload)))
		}()
	}

	send("m1")
	require.Eventually(t, func() bool { return tr.calls.Load() == 1 }, time.Second, time.Millisecond)
	s, ok := registry.Sender(42)
	require.True(t, ok)

	send("m2")
	require.Eventually(t, func() bool { return s.QueueLen() == 1 }, time.Second, time.Millisecond)
	send("m3")
	require.Eventually(t, func() bool { return s.QueueLen() == 2 }, time.Second, time.Millisecond)

	// m2 hits a stale location once and has to be resolved again
	failed := atomic.NewBool(false)
	tr.setFail(func(location address.LocationID, envelope *transport.Envelope) error {
		if string(envelope.Payload) == "m2" && failed.CompareAndSwap(false, true) {
			return unreachable(location, envelope)
		}
		return nil
	})
	tr.setBlock(nil)
	close(block)
	wg.Wait()

	assert.Equal(t, []string{"m1", "m2", "m3"}, tr.payloads())
	assert.True(t, failed.Load())
	assert.EqualValues(t, 2, resolver.calls.Load())
}

func TestRetryBound(t *testing.T) {
	ctx := context.Background()
	resolver := newFakeResolver()
	resolver.set(42, 7)
	tr := newFakeTransport()
	tr.setFail(unreachable)

	const maxRetries = 3
	registry := NewRegistry(resolver, tr,
		WithMaxRetries(maxRetries),
		WithBackoff(time.Millisecond, 2*time.Millisecond))
	defer stopRegistry(t, registry)

	err := registry.Send(ctx, 42, []byte("hi"))
	require.ErrorIs(t, err, gerrors.ErrDeliveryFailed)
	assert.NotErrorIs(t, err, gerrors.ErrLocationUnreachable)

	var deliveryErr *gerrors.DeliveryError
	require.ErrorAs(t, err, &deliveryErr)
	assert.Equal(t, maxRetries+1, deliveryErr.Attempts)
	assert.ErrorIs(t, deliveryErr.Cause(), gerrors.ErrLocationUnreachable)
	assert.EqualValues(t, maxRetries+1, tr.calls.Load())
	// every retry resolves the invalidated location again
	assert.EqualValues(t, maxRetries+1, resolver.calls.Load())

	s, ok := registry.Sender(42)
	require.True(t, ok)
	waitIdle(t, s)
	assert.Equal(t, Failed, s.State())

	// the sender remains usable
	tr.setFail(nil)
	require.NoError(t, registry.Send(ctx, 42, []byte("next")))
	assert.Equal(t, []string{"next"}, tr.payloads())
	waitIdle(t, s)
	assert.Equal(t, Idle, s.State())
}

func TestRetryBoundActorNotHere(t *testing.T) {
	ctx := context.Background()
	resolver := newFakeResolver()
	resolver.set(42, 7)
	tr := newFakeTransport()
	// the directory keeps pointing at a process that no longer hosts the actor
	tr.setFail(func(_ address.LocationID, envelope *transport.Envelope) error {
		return gerrors.NewErrActorNotFound(envelope.ActorID.Int64())
	})

	const maxRetries = 2
	registry := NewRegistry(resolver, tr,
		WithMaxRetries(maxRetries),
		WithBackoff(time.Millisecond, 2*time.Millisecond))
	defer stopRegistry(t, registry)

	err := registry.Send(ctx, 42, []byte("hi"))
	require.ErrorIs(t, err, gerrors.ErrDeliveryFailed)
	assert.NotErrorIs(t, err, gerrors.ErrActorNotFound)

	var deliveryErr *gerrors.DeliveryError
	require.ErrorAs(t, err, &deliveryErr)
	assert.Equal(t, maxRetries+1, deliveryErr.Attempts)
	assert.ErrorIs(t, deliveryErr.Cause(), gerrors.ErrActorNotFound)

	s, ok := registry.Sender(42)
	require.True(t, ok)
	waitIdle(t, s)
	assert.Equal(t, Failed, s.State())
}

func TestRetryWindow(t *testing.T) {
	ctx := context.Background()
	resolver := newFakeResolver()
	resolver.set(42, 7)
	tr := newFakeTransport()
	tr.setFail(unreachable)

	registry := NewRegistry(resolver, tr,
		WithMaxRetries(1_000_000),
		WithBackoff(time.Millisecond, 5*time.Millisecond),
		WithRetryWindow(50*time.Millisecond))
	defer stopRegistry(t, registry)

	start := time.Now()
	err := registry.Send(ctx, 42, []byte("hi"))
	require.ErrorIs(t, err, gerrors.ErrDeliveryFailed)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestCallerAbort(t *testing.T) {
	resolver := newFakeResolver()
	resolver.set(42, 7)
	tr := newFakeTransport()
	block := make(chan struct{})
	tr.setBlock(block)
	registry := NewRegistry(resolver, tr)
	defer stopRegistry(t, registry)

	first := make(chan error, 1)
	go func() { first <- registry.Send(context.Background(), 42, []byte("m1")) }()
	require.Eventually(t, func() bool { return tr.calls.Load() == 1 }, time.Second, time.Millisecond)
	s, ok := registry.Sender(42)
	require.True(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	second := make(chan error, 1)
	go func() { second <- registry.Send(ctx, 42, []byte("m2")) }()
	require.Eventually(t, func() bool { return s.QueueLen() == 1 }, time.Second, time.Millisecond)

	cancel()
	require.ErrorIs(t, <-second, context.Canceled)

	tr.setBlock(nil)
	close(block)
	require.NoError(t, <-first)
	waitIdle(t, s)

	// the aborted message never reached the transport
	assert.Equal(t, []string{"m1"}, tr.payloads())
	assert.EqualValues(t, 1, tr.calls.Load())
}

func TestMigration(t *testing.T) {
	ctx := context.Background()

	dir := directory.New()
	defer dir.Close()

	received := make(map[address.LocationID][]string)
	var mu sync.Mutex
	handlerAt := func(location address.LocationID) transport.Handler {
		return func(_ context.Context, envelope *transport.Envelope) ([]byte, error) {
			mu.Lock()
			defer mu.Unlock()
			received[location] = append(received[location], string(envelope.Payload))
			return nil, nil
		}
	}

	loopback := transport.NewLoopback()
	defer func() { _ = loopback.Close() }()
	require.NoError(t, loopback.Serve(7, handlerAt(7)))
	require.NoError(t, loopback.Serve(9, handlerAt(9)))

	registry := NewRegistry(proxy.NewLocal(dir), loopback, WithBackoff(time.Millisecond, 2*time.Millisecond))
	defer stopRegistry(t, registry)

	require.NoError(t, dir.Add(ctx, 42, 7))
	require.NoError(t, registry.Send(ctx, 42, []byte("hi")))

	// the actor migrates from 7 to 9 and location 7 goes away
	require.NoError(t, dir.Remove(ctx, 42))
	require.NoError(t, dir.Add(ctx, 42, 9))
	require.NoError(t, loopback.Unserve(7))

	s, ok := registry.Sender(42)
	require.True(t, ok)
	assert.Equal(t, address.LocationID(7), s.Location())

	require.NoError(t, registry.Send(ctx, 42, []byte("hi2")))
	assert.Equal(t, address.LocationID(9), s.Location())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"hi"}, received[7])
	assert.Equal(t, []string{"hi2"}, received[9])
}

func TestStaleActorAtLocation(t *testing.T) {
	ctx := context.Background()
	resolver := newFakeResolver()
	resolver.set(42, 7)
	tr := newFakeTransport()
	tr.setFail(func(location address.LocationID, envelope *transport.Envelope) error {
		if location == 7 {
			// the process is up but the actor moved away
			resolver.set(42, 9)
			return gerrors.NewErrActorNotFound(envelope.ActorID.Int64())
		}
		return nil
	})
	registry := NewRegistry(resolver, tr, WithBackoff(time.Millisecond, 2*time.Millisecond))
	defer stopRegistry(t, registry)

	require.NoError(t, registry.Send(ctx, 42, []byte("hi")))
	s, ok := registry.Sender(42)
	require.True(t, ok)
	assert.Equal(t, address.LocationID(9), s.Location())
}

func TestSweep(t *testing.T) {
	t.Run("With eviction boundary", func(t *testing.T) {
		ctx := context.Background()
		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		clock := &fakeClock{now: start}

		resolver := newFakeResolver()
		resolver.set(42, 7)
		registry := NewRegistry(resolver, newFakeTransport(),
			WithClock(clock.Now),
			WithIdleTimeout(DefaultIdleTimeout))
		defer stopRegistry(t, registry)

		require.NoError(t, registry.Send(ctx, 42, []byte("hi")))
		s, ok := registry.Sender(42)
		require.True(t, ok)
		waitIdle(t, s)
		assert.Equal(t, start, s.LastActivity())

		clock.Set(start.Add(DefaultIdleTimeout - time.Millisecond))
		assert.Zero(t, registry.Sweep())
		assert.Equal(t, 1, registry.Len())

		clock.Set(start.Add(DefaultIdleTimeout))
		assert.Equal(t, 1, registry.Sweep())
		assert.Zero(t, registry.Len())
		_, ok = registry.Sender(42)
		assert.False(t, ok)

		// the next message creates a fresh sender
		require.NoError(t, registry.Send(ctx, 42, []byte("hi again")))
		assert.Equal(t, 1, registry.Len())
	})
	t.Run("With busy sender", func(t *testing.T) {
		ctx := context.Background()
		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		clock := &fakeClock{now: start}

		resolver := newFakeResolver()
		resolver.set(42, 7)
		tr := newFakeTransport()
		block := make(chan struct{})
		tr.setBlock(block)
		registry := NewRegistry(resolver, tr, WithClock(clock.Now))
		defer stopRegistry(t, registry)

		done := make(chan error, 1)
		go func() { done <- registry.Send(ctx, 42, []byte("hi")) }()
		require.Eventually(t, func() bool { return tr.calls.Load() == 1 }, time.Second, time.Millisecond)

		clock.Set(start.Add(2 * DefaultIdleTimeout))
		assert.Zero(t, registry.Sweep())

		close(block)
		require.NoError(t, <-done)
	})
	t.Run("With sweep loop", func(t *testing.T) {
		ctx := context.Background()
		resolver := newFakeResolver()
		resolver.set(42, 7)
		registry := NewRegistry(resolver, newFakeTransport(),
			WithSweepInterval(5*time.Millisecond),
			WithIdleTimeout(20*time.Millisecond))
		defer stopRegistry(t, registry)

		require.NoError(t, registry.Start(ctx))
		require.NoError(t, registry.Start(ctx))
		require.NoError(t, registry.Send(ctx, 42, []byte("hi")))
		assert.Equal(t, 1, registry.Len())

		require.Eventually(t, func() bool { return registry.Len() == 0 }, 2*time.Second, 5*time.Millisecond)
	})
}

func TestStop(t *testing.T) {
	resolver := newFakeResolver()
	resolver.set(42, 7)
	tr := newFakeTransport()
	tr.setBlock(make(chan struct{}))
	registry := NewRegistry(resolver, tr)
	require.NoError(t, registry.Start(context.Background()))

	first := make(chan error, 1)
	go func() { first <- registry.Send(context.Background(), 42, []byte("m1")) }()
	require.Eventually(t, func() bool { return tr.calls.Load() == 1 }, time.Second, time.Millisecond)
	s, ok := registry.Sender(42)
	require.True(t, ok)

	second := make(chan error, 1)
	go func() { second <- registry.Send(context.Background(), 42, []byte("m2")) }()
	require.Eventually(t, func() bool { return s.QueueLen() == 1 }, time.Second, time.Millisecond)

	stopRegistry(t, registry)
	require.ErrorIs(t, <-first, gerrors.ErrSenderStopped)
	require.ErrorIs(t, <-second, gerrors.ErrSenderStopped)
	assert.Zero(t, registry.Len())

	err := registry.Send(context.Background(), 42, []byte("m3"))
	require.ErrorIs(t, err, gerrors.ErrSenderStopped)
	require.ErrorIs(t, registry.Start(context.Background()), gerrors.ErrSenderStopped)
	require.NoError(t, registry.Stop(context.Background()))
}

func TestStartStopRace(t *testing.T) {
	for i := 0; i < 50; i++ {
		registry := NewRegistry(newFakeResolver(), newFakeTransport(), WithSweepInterval(time.Millisecond))

		var wg sync.WaitGroup
		starts := make(chan error, 4)
		for j := 0; j < 4; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				starts <- registry.Start(context.Background())
			}()
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, registry.Stop(context.Background()))
		}()
		wg.Wait()
		close(starts)

		for err := range starts {
			if err != nil {
				assert.ErrorIs(t, err, gerrors.ErrSenderStopped)
			}
		}
		// a registry stopped after a racing Start leaves no sweep behind
		require.ErrorIs(t, registry.Start(context.Background()), gerrors.ErrSenderStopped)
		require.NoError(t, registry.Stop(context.Background()))
	}
}

func TestState(t *testing.T) {
	assert.Equal(t, "Idle", Idle.String())
	assert.Equal(t, "Resolving", Resolving.String())
	assert.Equal(t, "Sending", Sending.String())
	assert.Equal(t, "Retrying", Retrying.String())
	assert.Equal(t, "Failed", Failed.String())
	assert.Equal(t, "Unknown", State(42).String())
}
