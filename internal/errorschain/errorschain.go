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

package errorschain

import (
	"fmt"

	"go.uber.org/multierr"
)

// Chain accumulates the errors of a sequence of steps, typically the
// teardown of the components owned by a service.
type Chain struct {
	returnFirst bool
	errs        []error
}

// ChainOption configures a chain at creation time.
type ChainOption func(*Chain)

// New creates a new error chain. Errors are reported in insertion order.
func New(opts ...ChainOption) *Chain {
	chain := &Chain{
		errs: make([]error, 0),
	}

	for _, opt := range opts {
		opt(chain)
	}

	return chain
}

// AddError adds an error to the chain. Nil errors are ignored.
func (c *Chain) AddError(err error) *Chain {
	if err != nil {
		c.errs = append(c.errs, err)
	}
	return c
}

// AddErrorFn runs fn and adds its error to the chain.
// When the chain returns on the first error, fn is skipped once an error has been recorded.
func (c *Chain) AddErrorFn(fn func() error) *Chain {
	if c.returnFirst && len(c.errs) > 0 {
		return c
	}
	return c.AddError(fn())
}

// AddStep runs a named step and records its error prefixed with the step name.
func (c *Chain) AddStep(name string, fn func() error) *Chain {
	return c.AddErrorFn(func() error {
		if err := fn(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil
	})
}

// Error returns the first error or every error combined, depending on the chain option.
func (c *Chain) Error() error {
	if len(c.errs) == 0 {
		return nil
	}

	if c.returnFirst {
		return c.errs[0]
	}
	return multierr.Combine(c.errs...)
}

// ReturnFirst makes the chain stop at the first error.
func ReturnFirst() ChainOption {
	return func(c *Chain) { c.returnFirst = true }
}

// ReturnAll makes the chain run every step and return all errors.
func ReturnAll() ChainOption {
	return func(c *Chain) { c.returnFirst = false }
}
