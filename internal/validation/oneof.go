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
	"slices"
	"strings"
)

type oneOfValidator struct {
	name    string
	value   string
	allowed []string
}

var _ Validator = (*oneOfValidator)(nil)

// NewOneOfValidator checks that value is one of the allowed values.
// The comparison is case-insensitive.
func NewOneOfValidator(name, value string, allowed ...string) Validator {
	return &oneOfValidator{name: name, value: value, allowed: allowed}
}

// Validate executes the validation
func (x *oneOfValidator) Validate() error {
	value := strings.ToLower(strings.TrimSpace(x.value))
	if slices.Contains(x.allowed, value) {
		return nil
	}
	return fmt.Errorf("%s=(%s) must be one of [%s]", x.name, x.value, strings.Join(x.allowed, ", "))
}
