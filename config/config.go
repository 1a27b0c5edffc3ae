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

// Package config holds the settings of the location service.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	gerrors "github.com/tochemey/actorloc/errors"
	"github.com/tochemey/actorloc/internal/validation"
)

// store kinds
const (
	StoreMemory = "memory"
	StoreBolt   = "bolt"
	StoreNats   = "nats"
	StoreRedis  = "redis"
	StoreEtcd   = "etcd"
	StoreNone   = "none"
)

// transport kinds
const (
	TransportLoopback = "loopback"
	TransportNats     = "nats"
)

// compression algorithms
const (
	CompressionNone = "none"
	CompressionZstd = "zstd"
)

// StoreConfig selects the store the directory writes through to
type StoreConfig struct {
	// Kind is one of memory, bolt, nats, redis, etcd or none
	Kind string `yaml:"kind"`
	// BoltPath is the database file of the bolt store
	BoltPath string `yaml:"boltPath"`
	// NatsBucket is the JetStream key-value bucket of the nats store
	NatsBucket string `yaml:"natsBucket"`
	// RedisAddr is the address of the redis server
	RedisAddr string `yaml:"redisAddr"`
	// RedisKey is the hash holding the locations
	RedisKey string `yaml:"redisKey"`
	// EtcdEndpoints are the etcd client endpoints
	EtcdEndpoints []string `yaml:"etcdEndpoints"`
	// EtcdNamespace prefixes every etcd key
	EtcdNamespace string `yaml:"etcdNamespace"`
	// EtcdDialTimeout bounds the etcd connection
	EtcdDialTimeout time.Duration `yaml:"etcdDialTimeout"`
}

// Config is the location service configuration
type Config struct {
	// NodeID is the location id of this process
	NodeID int64 `yaml:"nodeId"`
	// SenderIdleTimeout is how long a sender without work is kept
	SenderIdleTimeout time.Duration `yaml:"senderIdleTimeout"`
	// SweepInterval is the period of the idle sender sweep
	SweepInterval time.Duration `yaml:"sweepInterval"`
	// MaxRetries is the number of delivery retries after the first attempt
	MaxRetries int `yaml:"maxRetries"`
	// RetryMinBackoff is the delay before the first retry
	RetryMinBackoff time.Duration `yaml:"retryMinBackoff"`
	// RetryMaxBackoff caps the delay between retries
	RetryMaxBackoff time.Duration `yaml:"retryMaxBackoff"`
	// RetryWindow bounds the time spent delivering one message, zero means unbounded
	RetryWindow time.Duration `yaml:"retryWindow"`
	// SendTimeout bounds a single transport attempt
	SendTimeout time.Duration `yaml:"sendTimeout"`
	// DirectoryEndpoints are the directory services to use.
	// An empty list means the directory lives in this process.
	DirectoryEndpoints []string `yaml:"directoryEndpoints"`
	// DirectoryBindAddr serves the local directory over RPC when set
	DirectoryBindAddr string `yaml:"directoryBindAddr"`
	// DirectoryShards is the number of shards of the local directory
	DirectoryShards int `yaml:"directoryShards"`
	// Store selects the persistence of the local directory
	Store StoreConfig `yaml:"store"`
	// Transport is one of loopback or nats
	Transport string `yaml:"transport"`
	// NatsURL is the NATS server used by the nats transport and store
	NatsURL string `yaml:"natsUrl"`
	// Compression is one of none or zstd
	Compression string `yaml:"compression"`
	// LogLevel is one of debug, info, warn or error
	LogLevel string `yaml:"logLevel"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		NodeID:            1,
		SenderIdleTimeout: 60 * time.Second,
		SweepInterval:     10 * time.Second,
		MaxRetries:        5,
		RetryMinBackoff:   10 * time.Millisecond,
		RetryMaxBackoff:   500 * time.Millisecond,
		SendTimeout:       5 * time.Second,
		DirectoryShards:   64,
		Store: StoreConfig{
			Kind:            StoreMemory,
			EtcdDialTimeout: 5 * time.Second,
		},
		Transport:   TransportLoopback,
		Compression: CompressionNone,
		LogLevel:    "info",
	}
}

// New creates a configuration from the defaults and the given options.
// The result is validated.
func New(opts ...Option) (*Config, error) {
	config := Default()
	for _, opt := range opts {
		opt.Apply(config)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadFile reads a YAML file on top of the defaults and validates the result
func LoadFile(path string, opts ...Option) (*Config, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	config := Default()
	if err := yaml.Unmarshal(bytes, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	for _, opt := range opts {
		opt.Apply(config)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate reports every invalid setting
func (c *Config) Validate() error {
	chain := validation.New(validation.AllErrors()).
		AddAssertion(c.NodeID != 0, "nodeId is required").
		AddValidator(validation.NewPositiveDurationValidator("senderIdleTimeout", c.SenderIdleTimeout)).
		AddValidator(validation.NewPositiveDurationValidator("sweepInterval", c.SweepInterval)).
		AddAssertion(c.SweepInterval <= c.SenderIdleTimeout, "sweepInterval must not exceed senderIdleTimeout").
		AddAssertion(c.MaxRetries >= 0, "maxRetries must not be negative").
		AddValidator(validation.NewPositiveDurationValidator("retryMinBackoff", c.RetryMinBackoff)).
		AddValidator(validation.NewDurationValidator("retryMaxBackoff", c.RetryMaxBackoff, c.RetryMinBackoff, 0)).
		AddValidator(validation.NewDurationValidator("retryWindow", c.RetryWindow, 0, 0)).
		AddValidator(validation.NewPositiveDurationValidator("sendTimeout", c.SendTimeout)).
		AddAssertion(c.DirectoryShards > 0, "directoryShards must be positive").
		AddValidator(validation.NewOneOfValidator("store.kind", c.Store.Kind,
			StoreMemory, StoreBolt, StoreNats, StoreRedis, StoreEtcd, StoreNone)).
		AddValidator(validation.NewOneOfValidator("transport", c.Transport, TransportLoopback, TransportNats)).
		AddValidator(validation.NewOneOfValidator("compression", c.Compression, CompressionNone, CompressionZstd)).
		AddValidator(validation.NewOneOfValidator("logLevel", c.LogLevel, "debug", "info", "warn", "error"))

	if len(c.DirectoryEndpoints) > 0 {
		chain.AddValidator(validation.NewTCPAddressesValidator(c.DirectoryEndpoints))
	}

	if c.DirectoryBindAddr != "" {
		chain.AddValidator(validation.NewBindAddressValidator(c.DirectoryBindAddr))
	}

	switch c.StoreKind() {
	case StoreBolt:
		chain.AddAssertion(c.Store.BoltPath != "", "store.boltPath is required by the bolt store")
	case StoreNats:
		chain.AddAssertion(c.NatsURL != "", "natsUrl is required by the nats store")
	case StoreRedis:
		chain.AddValidator(validation.NewTCPAddressValidator(c.Store.RedisAddr))
	case StoreEtcd:
		chain.AddAssertion(len(c.Store.EtcdEndpoints) > 0, "store.etcdEndpoints is required by the etcd store")
		chain.AddValidator(validation.NewPositiveDurationValidator("store.etcdDialTimeout", c.Store.EtcdDialTimeout))
	}

	if c.TransportKind() == TransportNats {
		chain.AddAssertion(c.NatsURL != "", "natsUrl is required by the nats transport")
	}

	if err := chain.Validate(); err != nil {
		return gerrors.NewErrInvalidConfig(err)
	}
	return nil
}

// StoreKind returns the normalized store kind
func (c *Config) StoreKind() string {
	return normalize(c.Store.Kind)
}

// TransportKind returns the normalized transport kind
func (c *Config) TransportKind() string {
	return normalize(c.Transport)
}

// CompressionAlgorithm returns the normalized compression algorithm
func (c *Config) CompressionAlgorithm() string {
	return normalize(c.Compression)
}

// IsRemoteDirectory reports whether the directory is reached over RPC
func (c *Config) IsRemoteDirectory() bool {
	return len(c.DirectoryEndpoints) > 0
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
