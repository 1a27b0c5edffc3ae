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

// Package location assembles the actor location subsystem of a process: the
// directory (local, remote or both), the proxy used to reach it, the
// transport carrying messages between locations and the registry of senders
// routing messages to actors wherever they live.
package location

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/atomic"

	"github.com/tochemey/actorloc/address"
	"github.com/tochemey/actorloc/config"
	"github.com/tochemey/actorloc/directory"
	gerrors "github.com/tochemey/actorloc/errors"
	"github.com/tochemey/actorloc/internal/chain"
	"github.com/tochemey/actorloc/internal/errorschain"
	"github.com/tochemey/actorloc/log"
	"github.com/tochemey/actorloc/proxy"
	"github.com/tochemey/actorloc/sender"
	"github.com/tochemey/actorloc/store"
	"github.com/tochemey/actorloc/telemetry"
	"github.com/tochemey/actorloc/transport"
)

// Service is the location service of a process
type Service struct {
	config        *config.Config
	nodeID        address.LocationID
	logger        log.Logger
	meterProvider metric.MeterProvider
	handler       transport.Handler

	// set by options, never closed by the service
	store     store.Store
	transport transport.Transport

	// built by Start, released by Stop
	natsConn       *nats.Conn
	redisClient    *redis.Client
	etcdClient     *clientv3.Client
	ownedStore     store.Store
	ownedTransport transport.Transport
	metrics        *telemetry.Metrics
	directory      *directory.Directory
	server         *proxy.Server
	proxy          proxy.Proxy
	senders        *sender.Registry

	mu      sync.RWMutex
	started *atomic.Bool
}

// NewService creates a location service from the given configuration.
// A nil configuration means config.Default().
func NewService(cfg *config.Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	service := &Service{
		config:  cfg,
		nodeID:  address.LocationID(cfg.NodeID),
		logger:  log.NewZap(log.ParseLevel(cfg.LogLevel), os.Stdout),
		started: atomic.NewBool(false),
	}

	for _, opt := range opts {
		opt.Apply(service)
	}

	return service, nil
}

// NodeID returns the location id of this process
func (s *Service) NodeID() address.LocationID {
	return s.nodeID
}

// Start builds and starts every component
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started.Load() {
		return gerrors.ErrServiceAlreadyStarted
	}

	s.logger.Infof("starting location service node=%d", s.nodeID.Int64())

	needsNats := s.config.StoreKind() == config.StoreNats && s.store == nil ||
		s.config.TransportKind() == config.TransportNats && s.transport == nil
	hostsDirectory := !s.config.IsRemoteDirectory() || s.config.DirectoryBindAddr != ""

	if err := chain.
		New(chain.WithFailFast(), chain.WithContext(ctx)).
		AddRunner("telemetry", s.setupTelemetry).
		AddContextRunnerIf(needsNats, "nats", s.connectNats).
		AddContextRunnerIf(hostsDirectory, "store", s.setupStore).
		AddContextRunnerIf(hostsDirectory, "directory", s.setupDirectory).
		AddContextRunnerIf(s.config.DirectoryBindAddr != "", "directory server", s.startServer).
		AddContextRunner("proxy", s.setupProxy).
		AddContextRunner("transport", s.setupTransport).
		AddContextRunner("senders", s.startSenders).
		Run(); err != nil {
		s.logger.Errorf("failed to start location service node=%d: %v", s.nodeID.Int64(), err)
		if stopErr := s.shutdown(ctx); stopErr != nil {
			return errors.Join(err, stopErr)
		}
		return err
	}

	s.started.Store(true)
	s.logger.Infof("location service node=%d started", s.nodeID.Int64())
	return nil
}

// Stop stops every component in reverse start order
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started.Load() {
		return gerrors.ErrServiceNotStarted
	}

	s.started.Store(false)
	err := s.shutdown(ctx)
	if err != nil {
		s.logger.Errorf("location service node=%d stopped with errors: %v", s.nodeID.Int64(), err)
		return err
	}

	s.logger.Infof("location service node=%d stopped", s.nodeID.Int64())
	return nil
}

// AddLocation records the actor at the location
func (s *Service) AddLocation(ctx context.Context, actorID address.ActorID, locationID address.LocationID) error {
	p, err := s.activeProxy()
	if err != nil {
		return err
	}
	return p.Add(ctx, actorID, locationID)
}

// RemoveLocation forgets the actor. Removing an absent actor is not an error.
func (s *Service) RemoveLocation(ctx context.Context, actorID address.ActorID) error {
	p, err := s.activeProxy()
	if err != nil {
		return err
	}
	return p.Remove(ctx, actorID)
}

// GetLocation resolves the actor. It returns errors.ErrActorNotFound when the
// actor is not recorded.
func (s *Service) GetLocation(ctx context.Context, actorID address.ActorID) (address.LocationID, error) {
	p, err := s.activeProxy()
	if err != nil {
		return address.NoLocation, err
	}
	return p.Get(ctx, actorID)
}

// SendToActor delivers the payload to the actor wherever it lives
func (s *Service) SendToActor(ctx context.Context, actorID address.ActorID, payload []byte) error {
	registry, err := s.activeSenders()
	if err != nil {
		return err
	}
	return registry.Send(ctx, actorID, payload)
}

// AskActor delivers the payload to the actor and returns its reply
func (s *Service) AskActor(ctx context.Context, actorID address.ActorID, payload []byte) ([]byte, error) {
	registry, err := s.activeSenders()
	if err != nil {
		return nil, err
	}
	return registry.Ask(ctx, actorID, payload)
}

// Directory returns the directory hosted by this process.
// It is nil when the service only uses remote directories or is not started.
func (s *Service) Directory() *directory.Directory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.directory
}

// Proxy returns the proxy used to reach the directory.
// It is nil when the service is not started.
func (s *Service) Proxy() proxy.Proxy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.proxy
}

// Senders returns the sender registry.
// It is nil when the service is not started.
func (s *Service) Senders() *sender.Registry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.senders
}

// DirectoryAddr returns the address the directory server listens on, empty
// when the directory is not served
func (s *Service) DirectoryAddr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.server == nil {
		return ""
	}
	return s.server.Addr()
}

func (s *Service) activeProxy() (proxy.Proxy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started.Load() {
		return nil, gerrors.ErrServiceNotStarted
	}
	return s.proxy, nil
}

func (s *Service) activeSenders() (*sender.Registry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started.Load() {
		return nil, gerrors.ErrServiceNotStarted
	}
	return s.senders, nil
}

func (s *Service) setupTelemetry() error {
	var opts []telemetry.Option
	if s.meterProvider != nil {
		opts = append(opts, telemetry.WithMeterProvider(s.meterProvider))
	}
	s.metrics = telemetry.New(opts...).Metrics()
	return nil
}

func (s *Service) connectNats(context.Context) error {
	conn, err := nats.Connect(s.config.NatsURL, nats.Name(fmt.Sprintf("actorloc-%d", s.nodeID.Int64())))
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", s.config.NatsURL, err)
	}
	s.natsConn = conn
	return nil
}

func (s *Service) setupStore(context.Context) error {
	if s.store != nil {
		return nil
	}

	var (
		st  store.Store
		err error
	)

	switch s.config.StoreKind() {
	case config.StoreMemory:
		st = store.NewMemoryStore()
	case config.StoreBolt:
		st, err = store.NewBoltStore(s.config.Store.BoltPath)
	case config.StoreNats:
		st, err = store.NewNatsStore(s.natsConn, s.config.Store.NatsBucket)
	case config.StoreRedis:
		s.redisClient = redis.NewClient(&redis.Options{Addr: s.config.Store.RedisAddr})
		st, err = store.NewRedisStore(s.redisClient, s.config.Store.RedisKey)
	case config.StoreEtcd:
		s.etcdClient, err = clientv3.New(clientv3.Config{
			Endpoints:   s.config.Store.EtcdEndpoints,
			DialTimeout: s.config.Store.EtcdDialTimeout,
		})
		if err == nil {
			st, err = store.NewEtcdStore(s.etcdClient, s.config.Store.EtcdNamespace)
		}
	case config.StoreNone:
		return nil
	}

	if err != nil {
		return err
	}
	s.ownedStore = st
	return nil
}

func (s *Service) activeStore() store.Store {
	if s.store != nil {
		return s.store
	}
	return s.ownedStore
}

func (s *Service) setupDirectory(ctx context.Context) error {
	opts := []directory.Option{
		directory.WithLogger(s.logger),
		directory.WithMetrics(s.metrics),
		directory.WithShards(s.config.DirectoryShards),
	}
	if st := s.activeStore(); st != nil {
		opts = append(opts, directory.WithStore(st))
	}

	s.directory = directory.New(opts...)
	return s.directory.Restore(ctx)
}

func (s *Service) startServer(ctx context.Context) error {
	s.server = proxy.NewServer(s.config.DirectoryBindAddr, s.directory, proxy.WithServerLogger(s.logger))
	return s.server.Start(ctx)
}

func (s *Service) setupProxy(context.Context) error {
	if !s.config.IsRemoteDirectory() {
		s.proxy = proxy.NewLocal(s.directory)
		return nil
	}

	remote, err := proxy.NewRemote(s.config.DirectoryEndpoints,
		proxy.WithRequestTimeout(s.config.SendTimeout),
		proxy.WithCompression(s.config.CompressionAlgorithm() == config.CompressionZstd),
		proxy.WithRemoteLogger(s.logger))
	if err != nil {
		return err
	}
	s.proxy = remote
	return nil
}

func (s *Service) activeTransport() transport.Transport {
	if s.transport != nil {
		return s.transport
	}
	return s.ownedTransport
}

func (s *Service) setupTransport(context.Context) error {
	if s.transport == nil {
		switch s.config.TransportKind() {
		case config.TransportNats:
			tr, err := transport.NewNats(s.natsConn,
				transport.WithCompression(s.config.CompressionAlgorithm()),
				transport.WithLogger(s.logger))
			if err != nil {
				return err
			}
			s.ownedTransport = tr
		default:
			s.ownedTransport = transport.NewLoopback()
		}
	}

	if s.handler != nil {
		return s.activeTransport().Serve(s.nodeID, s.handler)
	}
	return nil
}

func (s *Service) startSenders(ctx context.Context) error {
	s.senders = sender.NewRegistry(s.proxy, s.activeTransport(),
		sender.WithIdleTimeout(s.config.SenderIdleTimeout),
		sender.WithSweepInterval(s.config.SweepInterval),
		sender.WithMaxRetries(s.config.MaxRetries),
		sender.WithBackoff(s.config.RetryMinBackoff, s.config.RetryMaxBackoff),
		sender.WithRetryWindow(s.config.RetryWindow),
		sender.WithSendTimeout(s.config.SendTimeout),
		sender.WithLogger(s.logger),
		sender.WithMetrics(s.metrics))
	return s.senders.Start(ctx)
}

// shutdown releases whatever Start managed to build
func (s *Service) shutdown(ctx context.Context) error {
	err := errorschain.New(errorschain.ReturnAll()).
		AddStep("senders", func() error {
			if s.senders == nil {
				return nil
			}
			return s.senders.Stop(ctx)
		}).
		AddStep("transport", func() error {
			tr := s.activeTransport()
			if tr == nil {
				return nil
			}
			if s.handler != nil {
				if err := tr.Unserve(s.nodeID); err != nil {
					return err
				}
			}
			if s.ownedTransport != nil {
				return s.ownedTransport.Close()
			}
			return nil
		}).
		AddStep("proxy", func() error {
			if s.proxy == nil {
				return nil
			}
			return s.proxy.Close()
		}).
		AddStep("directory server", func() error {
			if s.server == nil {
				return nil
			}
			return s.server.Stop(ctx)
		}).
		AddStep("directory", func() error {
			if s.directory != nil {
				s.directory.Close()
			}
			return nil
		}).
		AddStep("store", func() error {
			if s.ownedStore == nil {
				return nil
			}
			return s.ownedStore.Close()
		}).
		AddStep("redis", func() error {
			if s.redisClient == nil {
				return nil
			}
			return s.redisClient.Close()
		}).
		AddStep("etcd", func() error {
			if s.etcdClient == nil {
				return nil
			}
			return s.etcdClient.Close()
		}).
		AddStep("nats", func() error {
			if s.natsConn != nil {
				s.natsConn.Close()
			}
			return nil
		}).
		Error()

	s.senders = nil
	s.ownedTransport = nil
	s.proxy = nil
	s.server = nil
	s.directory = nil
	s.ownedStore = nil
	s.redisClient = nil
	s.etcdClient = nil
	s.natsConn = nil
	return err
}
