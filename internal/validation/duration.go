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

package validation

import (
	"fmt"
	"time"
)

type durationValidator struct {
	name  string
	value time.Duration
	min   time.Duration
	max   time.Duration
}

var _ Validator = (*durationValidator)(nil)

// NewDurationValidator checks that value lies within [min, max].
// A zero max means no upper bound.
func NewDurationValidator(name string, value, min, max time.Duration) Validator {
	return &durationValidator{name: name, value: value, min: min, max: max}
}

// NewPositiveDurationValidator checks that value is strictly positive
func NewPositiveDurationValidator(name string, value time.Duration) Validator {
	return &durationValidator{name: name, value: value, min: time.Nanosecond}
}

// Validate executes the validation
func (x *durationValidator) Validate() error {
	if x.value < x.min {
		return fmt.Errorf("%s=(%s) must be at least %s", x.name, x.value, x.min)
	}
	if x.max > 0 && x.value > x.max {
		return fmt.Errorf("%s=(%s) must be at most %s", x.name, x.value, x.max)
	}
	return nil
}
