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

package directory

import (
	"github.com/tochemey/actorloc/hash"
	"github.com/tochemey/actorloc/log"
	"github.com/tochemey/actorloc/store"
	"github.com/tochemey/actorloc/telemetry"
)

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(*Directory)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*Directory)

// Apply applies the option
func (f OptionFunc) Apply(d *Directory) {
	f(d)
}

// WithStore sets the store the directory writes through to
func WithStore(s store.Store) Option {
	return OptionFunc(func(d *Directory) {
		d.store = s
	})
}

// WithLogger sets the logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(d *Directory) {
		if logger != nil {
			d.logger = logger
		}
	})
}

// WithMetrics sets the instruments the directory reports to
func WithMetrics(metrics *telemetry.Metrics) Option {
	return OptionFunc(func(d *Directory) {
		d.metrics = metrics
	})
}

// WithShards sets the number of shards of the table. It is rounded up to a power of two.
func WithShards(count int) Option {
	return OptionFunc(func(d *Directory) {
		if count > 0 {
			d.shardsN = count
		}
	})
}

// WithHasher sets the hasher used to pick a shard
func WithHasher(hasher hash.Hasher) Option {
	return OptionFunc(func(d *Directory) {
		if hasher != nil {
			d.hasher = hasher
		}
	})
}
