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

package config

import "time"

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(*Config)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*Config)

// Apply applies the option
func (f OptionFunc) Apply(c *Config) {
	f(c)
}

// WithNodeID sets the location id of this process
func WithNodeID(nodeID int64) Option {
	return OptionFunc(func(c *Config) {
		c.NodeID = nodeID
	})
}

// WithSenderIdleTimeout sets how long an idle sender is kept
func WithSenderIdleTimeout(timeout time.Duration) Option {
	return OptionFunc(func(c *Config) {
		c.SenderIdleTimeout = timeout
	})
}

// WithSweepInterval sets the period of the idle sender sweep
func WithSweepInterval(interval time.Duration) Option {
	return OptionFunc(func(c *Config) {
		c.SweepInterval = interval
	})
}

// WithRetry sets the retry budget and the backoff bounds
func WithRetry(maxRetries int, minBackoff, maxBackoff time.Duration) Option {
	return OptionFunc(func(c *Config) {
		c.MaxRetries = maxRetries
		c.RetryMinBackoff = minBackoff
		c.RetryMaxBackoff = maxBackoff
	})
}

// WithRetryWindow bounds the time spent delivering one message
func WithRetryWindow(window time.Duration) Option {
	return OptionFunc(func(c *Config) {
		c.RetryWindow = window
	})
}

// WithSendTimeout bounds a single transport attempt
func WithSendTimeout(timeout time.Duration) Option {
	return OptionFunc(func(c *Config) {
		c.SendTimeout = timeout
	})
}

// WithDirectoryEndpoints makes the service use remote directories
func WithDirectoryEndpoints(endpoints ...string) Option {
	return OptionFunc(func(c *Config) {
		c.DirectoryEndpoints = endpoints
	})
}

// WithDirectoryBindAddr serves the local directory on the given address
func WithDirectoryBindAddr(addr string) Option {
	return OptionFunc(func(c *Config) {
		c.DirectoryBindAddr = addr
	})
}

// WithStore sets the store settings
func WithStore(store StoreConfig) Option {
	return OptionFunc(func(c *Config) {
		c.Store = store
	})
}

// WithNats sets the NATS server url and selects the nats transport
func WithNats(url string) Option {
	return OptionFunc(func(c *Config) {
		c.NatsURL = url
		c.Transport = TransportNats
	})
}

// WithCompression sets the compression algorithm
func WithCompression(algorithm string) Option {
	return OptionFunc(func(c *Config) {
		c.Compression = algorithm
	})
}

// WithLogLevel sets the log level
func WithLogLevel(level string) Option {
	return OptionFunc(func(c *Config) {
		c.LogLevel = level
	})
}
