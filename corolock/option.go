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

package corolock

import (
	"github.com/tochemey/actorloc/hash"
	"github.com/tochemey/actorloc/log"
)

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(*Table)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*Table)

// Apply applies the option
func (f OptionFunc) Apply(t *Table) {
	f(t)
}

type shardsOption int

// Apply is a no-op: the shard count is read by New before the shards are built
func (shardsOption) Apply(*Table) {}

// WithShards sets the number of shards. The value is rounded up to a power of two.
func WithShards(count int) Option {
	return shardsOption(count)
}

// WithLogger sets the logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(t *Table) {
		if logger != nil {
			t.logger = logger
		}
	})
}

// WithHasher sets the hasher used to pick a shard
func WithHasher(hasher hash.Hasher) Option {
	return OptionFunc(func(t *Table) {
		if hasher != nil {
			t.hasher = hasher
		}
	})
}
