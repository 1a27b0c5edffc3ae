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
	"time"

	"github.com/tochemey/actorloc/log"
	"github.com/tochemey/actorloc/telemetry"
)

const (
	// DefaultIdleTimeout is how long a sender without work is kept alive
	DefaultIdleTimeout = 60 * time.Second
	// DefaultSweepInterval is the period of the idle sweep
	DefaultSweepInterval = 10 * time.Second
	// DefaultMaxRetries is the number of retries after the first delivery attempt
	DefaultMaxRetries = 5
	// DefaultRetryMinBackoff is the delay before the first retry
	DefaultRetryMinBackoff = 10 * time.Millisecond
	// DefaultRetryMaxBackoff caps the delay between retries
	DefaultRetryMaxBackoff = 500 * time.Millisecond
	// DefaultSendTimeout bounds a single transport attempt
	DefaultSendTimeout = 5 * time.Second
)

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(*Registry)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*Registry)

// Apply applies the option
func (f OptionFunc) Apply(r *Registry) {
	f(r)
}

// WithIdleTimeout sets how long an idle sender is kept before the sweep evicts it
func WithIdleTimeout(timeout time.Duration) Option {
	return OptionFunc(func(r *Registry) {
		if timeout > 0 {
			r.idleTimeout = timeout
		}
	})
}

// WithSweepInterval sets the period of the idle sweep
func WithSweepInterval(interval time.Duration) Option {
	return OptionFunc(func(r *Registry) {
		if interval > 0 {
			r.sweepInterval = interval
		}
	})
}

// WithMaxRetries sets the number of retries after the first attempt.
// Zero means a single attempt.
func WithMaxRetries(retries int) Option {
	return OptionFunc(func(r *Registry) {
		if retries >= 0 {
			r.maxRetries = retries
		}
	})
}

// WithBackoff sets the exponential backoff bounds between retries
func WithBackoff(minBackoff, maxBackoff time.Duration) Option {
	return OptionFunc(func(r *Registry) {
		if minBackoff > 0 {
			r.minBackoff = minBackoff
		}
		if maxBackoff >= r.minBackoff {
			r.maxBackoff = maxBackoff
		}
	})
}

// WithRetryWindow bounds the total time spent delivering one message.
// Zero disables the bound.
func WithRetryWindow(window time.Duration) Option {
	return OptionFunc(func(r *Registry) {
		if window >= 0 {
			r.retryWindow = window
		}
	})
}

// WithSendTimeout bounds a single transport attempt
func WithSendTimeout(timeout time.Duration) Option {
	return OptionFunc(func(r *Registry) {
		if timeout > 0 {
			r.sendTimeout = timeout
		}
	})
}

// WithClock sets the clock used to track sender activity
func WithClock(clock func() time.Time) Option {
	return OptionFunc(func(r *Registry) {
		if clock != nil {
			r.clock = clock
		}
	})
}

// WithLogger sets the logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	})
}

// WithMetrics sets the metrics instruments
func WithMetrics(metrics *telemetry.Metrics) Option {
	return OptionFunc(func(r *Registry) {
		r.metrics = metrics
	})
}
