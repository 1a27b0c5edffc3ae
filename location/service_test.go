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

package location

import (
	"context"
	"fmt"
	"net"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travisjeffery/go-dynaport"

	"github.com/tochemey/actorloc/address"
	"github.com/tochemey/actorloc/config"
	gerrors "github.com/tochemey/actorloc/errors"
	"github.com/tochemey/actorloc/log"
	"github.com/tochemey/actorloc/transport"
)

// host is a fake process hosting actors
type host struct {
	mu       sync.Mutex
	actors   map[address.ActorID]bool
	received map[address.ActorID][]string
}

func newHost(actors ...address.ActorID) *host {
	h := &host{
		actors:   make(map[address.ActorID]bool),
		received: make(map[address.ActorID][]string),
	}
	for _, actor := range actors {
		h.actors[actor] = true
	}
	return h
}

func (h *host) spawn(actorID address.ActorID) {
	h.mu.Lock()
	h.actors[actorID] = true
	h.mu.Unlock()
}

func (h *host) kill(actorID address.ActorID) {
	h.mu.Lock()
	delete(h.actors, actorID)
	h.mu.Unlock()
}

func (h *host) messages(actorID address.ActorID) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.received[actorID]...)
}

func (h *host) handle(_ context.Context, envelope *transport.Envelope) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.actors[envelope.ActorID] {
		return nil, gerrors.ErrActorNotFound
	}
	h.received[envelope.ActorID] = append(h.received[envelope.ActorID], string(envelope.Payload))
	return append([]byte("ack:"), envelope.Payload...), nil
}

func freeAddr() string {
	return net.JoinHostPort("127.0.0.1", strconv.Itoa(dynaport.Get(1)[0]))
}

func fastRetry() config.Option {
	return config.WithRetry(3, time.Millisecond, 5*time.Millisecond)
}

func newService(t *testing.T, opts []config.Option, serviceOpts ...Option) *Service {
	t.Helper()
	cfg, err := config.New(opts...)
	require.NoError(t, err)

	serviceOpts = append([]Option{WithLogger(log.DiscardLogger)}, serviceOpts...)
	service, err := NewService(cfg, serviceOpts...)
	require.NoError(t, err)
	return service
}

func startService(t *testing.T, opts []config.Option, serviceOpts ...Option) *Service {
	t.Helper()
	service := newService(t, opts, serviceOpts...)
	require.NoError(t, service.Start(context.Background()))
	t.Cleanup(func() { _ = service.Stop(context.Background()) })
	return service
}

func TestNewService(t *testing.T) {
	t.Run("With default config", func(t *testing.T) {
		service, err := NewService(nil, WithLogger(log.DiscardLogger))
		require.NoError(t, err)
		assert.Equal(t, address.LocationID(1), service.NodeID())
	})
	t.Run("With invalid config", func(t *testing.T) {
		cfg := config.Default()
		cfg.NodeID = 0
		_, err := NewService(cfg)
		require.ErrorIs(t, err, gerrors.ErrInvalidConfig)
	})
}

func TestLifecycle(t *testing.T) {
	ctx := context.Background()
	service := newService(t, nil)

	require.ErrorIs(t, service.AddLocation(ctx, 42, 1), gerrors.ErrServiceNotStarted)
	require.ErrorIs(t, service.RemoveLocation(ctx, 42), gerrors.ErrServiceNotStarted)
	_, err := service.GetLocation(ctx, 42)
	require.ErrorIs(t, err, gerrors.ErrServiceNotStarted)
	require.ErrorIs(t, service.SendToActor(ctx, 42, []byte("hi")), gerrors.ErrServiceNotStarted)
	_, err = service.AskActor(ctx, 42, []byte("hi"))
	require.ErrorIs(t, err, gerrors.ErrServiceNotStarted)
	require.ErrorIs(t, service.Stop(ctx), gerrors.ErrServiceNotStarted)
	assert.Nil(t, service.Directory())
	assert.Nil(t, service.Proxy())
	assert.Nil(t, service.Senders())

	require.NoError(t, service.Start(ctx))
	require.ErrorIs(t, service.Start(ctx), gerrors.ErrServiceAlreadyStarted)
	assert.NotNil(t, service.Directory())
	assert.NotNil(t, service.Proxy())
	assert.NotNil(t, service.Senders())
	assert.Empty(t, service.DirectoryAddr())

	require.NoError(t, service.Stop(ctx))
	assert.Nil(t, service.Directory())

	// the service can be started again
	require.NoError(t, service.Start(ctx))
	require.NoError(t, service.Stop(ctx))
}

func TestStartFailure(t *testing.T) {
	ctx := context.Background()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	service := newService(t, []config.Option{config.WithDirectoryBindAddr(listener.Addr().String())})
	err = service.Start(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory server")

	require.ErrorIs(t, service.AddLocation(ctx, 42, 1), gerrors.ErrServiceNotStarted)
	assert.Nil(t, service.Directory())
}

func TestLocalService(t *testing.T) {
	ctx := context.Background()
	process := newHost(42)
	service := startService(t, []config.Option{config.WithNodeID(7), fastRetry()}, WithHandler(process.handle))

	require.NoError(t, service.AddLocation(ctx, 42, 7))
	location, err := service.GetLocation(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, address.LocationID(7), location)
	assert.Equal(t, 1, service.Directory().Len())

	require.NoError(t, service.SendToActor(ctx, 42, []byte("hi")))
	reply, err := service.AskActor(ctx, 42, []byte("ping"))
	require.NoError(t, err)
	assert.Equal(t, []byte("ack:ping"), reply)
	assert.Equal(t, []string{"hi", "ping"}, process.messages(42))
	assert.Equal(t, 1, service.Senders().Len())

	require.NoError(t, service.RemoveLocation(ctx, 42))
	require.NoError(t, service.RemoveLocation(ctx, 42))
	_, err = service.GetLocation(ctx, 42)
	require.ErrorIs(t, err, gerrors.ErrActorNotFound)

	// the cached location still answers but the actor is gone from it
	process.kill(42)
	err = service.SendToActor(ctx, 42, []byte("lost"))
	require.ErrorIs(t, err, gerrors.ErrActorNotFound)
}

func TestMigration(t *testing.T) {
	ctx := context.Background()
	shared := transport.NewLoopback()
	defer func() { _ = shared.Close() }()

	hostA := newHost()
	hostB := newHost()

	nodeA := startService(t, []config.Option{
		config.WithNodeID(7),
		config.WithDirectoryBindAddr(freeAddr()),
		fastRetry(),
	}, WithTransport(shared), WithHandler(hostA.handle))
	endpoint := nodeA.DirectoryAddr()
	require.NotEmpty(t, endpoint)

	nodeB := startService(t, []config.Option{
		config.WithNodeID(9),
		config.WithDirectoryEndpoints(endpoint),
		fastRetry(),
	}, WithTransport(shared), WithHandler(hostB.handle))
	assert.Nil(t, nodeB.Directory())

	client := startService(t, []config.Option{
		config.WithNodeID(1),
		config.WithDirectoryEndpoints(endpoint),
		fastRetry(),
	}, WithTransport(shared))

	hostA.spawn(42)
	require.NoError(t, nodeA.AddLocation(ctx, 42, 7))
	require.NoError(t, client.SendToActor(ctx, 42, []byte("hi")))
	assert.Equal(t, []string{"hi"}, hostA.messages(42))

	// 42 migrates from node 7 to node 9
	hostA.kill(42)
	require.NoError(t, nodeA.RemoveLocation(ctx, 42))
	hostB.spawn(42)
	require.NoError(t, nodeB.AddLocation(ctx, 42, 9))

	s, ok := client.Senders().Sender(42)
	require.True(t, ok)
	assert.Equal(t, address.LocationID(7), s.Location())

	require.NoError(t, client.SendToActor(ctx, 42, []byte("hi2")))
	assert.Equal(t, []string{"hi2"}, hostB.messages(42))
	assert.Equal(t, []string{"hi"}, hostA.messages(42))
	assert.Equal(t, address.LocationID(9), s.Location())

	location, err := client.GetLocation(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, address.LocationID(9), location)
}

func TestBoltRestore(t *testing.T) {
	ctx := context.Background()
	opts := []config.Option{
		config.WithNodeID(7),
		config.WithStore(config.StoreConfig{
			Kind:     config.StoreBolt,
			BoltPath: filepath.Join(t.TempDir(), "locations.db"),
		}),
	}

	first := newService(t, opts)
	require.NoError(t, first.Start(ctx))
	require.NoError(t, first.AddLocation(ctx, 42, 7))
	require.NoError(t, first.AddLocation(ctx, 43, 9))
	require.NoError(t, first.RemoveLocation(ctx, 43))
	require.NoError(t, first.Stop(ctx))

	second := startService(t, opts)
	location, err := second.GetLocation(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, address.LocationID(7), location)
	_, err = second.GetLocation(ctx, 43)
	require.ErrorIs(t, err, gerrors.ErrActorNotFound)
	assert.Equal(t, 1, second.Directory().Len())
}

func startNatsServer(t *testing.T) *natsserver.Server {
	t.Helper()

	serv, err := natsserver.NewServer(&natsserver.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		JetStream: true,
		StoreDir:  t.TempDir(),
	})
	require.NoError(t, err)

	ready := make(chan bool)
	go func() {
		ready <- true
		serv.Start()
	}()
	<-ready

	if !serv.ReadyForConnections(2 * time.Second) {
		t.Fatalf("nats-io server failed to start")
	}
	t.Cleanup(serv.Shutdown)
	return serv
}

func TestNatsService(t *testing.T) {
	ctx := context.Background()
	serv := startNatsServer(t)
	bucket := fmt.Sprintf("locations-%d", time.Now().UnixNano())

	hostA := newHost(42)
	nodeAOpts := []config.Option{
		config.WithNodeID(7),
		config.WithNats(serv.ClientURL()),
		config.WithCompression(config.CompressionZstd),
		config.WithDirectoryBindAddr(freeAddr()),
		config.WithStore(config.StoreConfig{Kind: config.StoreNats, NatsBucket: bucket}),
		fastRetry(),
	}
	nodeA := newService(t, nodeAOpts, WithHandler(hostA.handle))
	require.NoError(t, nodeA.Start(ctx))
	require.NoError(t, nodeA.AddLocation(ctx, 42, 7))

	nodeB := startService(t, []config.Option{
		config.WithNodeID(9),
		config.WithNats(serv.ClientURL()),
		config.WithCompression(config.CompressionZstd),
		config.WithDirectoryEndpoints(nodeA.DirectoryAddr()),
		fastRetry(),
	})

	reply, err := nodeB.AskActor(ctx, 42, []byte("ping"))
	require.NoError(t, err)
	assert.Equal(t, []byte("ack:ping"), reply)
	assert.Equal(t, []string{"ping"}, hostA.messages(42))

	// restarting node A reloads the directory from the bucket
	require.NoError(t, nodeA.Stop(ctx))
	require.NoError(t, nodeA.Start(ctx))
	t.Cleanup(func() { _ = nodeA.Stop(context.Background()) })

	location, err := nodeA.GetLocation(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, address.LocationID(7), location)
}
