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

// Package chain runs a sequence of named startup steps.
// Steps are recorded first and executed by Run in insertion order.
package chain

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
)

type step struct {
	name string
	run  func(ctx context.Context) error
}

// Chain is an ordered list of steps
type Chain struct {
	failFast bool
	ctx      context.Context
	steps    []step
	ran      []string
}

// Option configures a Chain
type Option func(*Chain)

// New creates a Chain. By default every step runs.
func New(opts ...Option) *Chain {
	chain := &Chain{
		ctx:   context.Background(),
		steps: make([]step, 0),
	}

	for _, opt := range opts {
		opt(chain)
	}

	return chain
}

// WithFailFast stops the chain at the first failing step
func WithFailFast() Option {
	return func(c *Chain) { c.failFast = true }
}

// WithRunAll runs every step and reports all failures
func WithRunAll() Option {
	return func(c *Chain) { c.failFast = false }
}

// WithContext sets the context handed to the context runners.
// A done context stops the chain before the next step.
func WithContext(ctx context.Context) Option {
	return func(c *Chain) { c.ctx = ctx }
}

// AddRunner adds a step
func (c *Chain) AddRunner(name string, fn func() error) *Chain {
	return c.AddContextRunner(name, func(context.Context) error { return fn() })
}

// AddContextRunner adds a step receiving the chain context
func (c *Chain) AddContextRunner(name string, fn func(ctx context.Context) error) *Chain {
	c.steps = append(c.steps, step{name: name, run: fn})
	return c
}

// AddContextRunnerIf adds the step only when condition holds
func (c *Chain) AddContextRunnerIf(condition bool, name string, fn func(ctx context.Context) error) *Chain {
	if condition {
		return c.AddContextRunner(name, fn)
	}
	return c
}

// Run executes the steps. Step errors are prefixed with the step name.
func (c *Chain) Run() error {
	var errs error
	c.ran = c.ran[:0]
	for _, s := range c.steps {
		if err := c.ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}

		c.ran = append(c.ran, s.name)
		if err := s.run(c.ctx); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", s.name, err))
			if c.failFast {
				return errs
			}
		}
	}
	return errs
}

// Ran returns the names of the steps executed by the last Run
func (c *Chain) Ran() []string {
	return append([]string(nil), c.ran...)
}
