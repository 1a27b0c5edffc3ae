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

// Package codec binds the locationpb messages to connect.
package codec

import (
	"fmt"

	"connectrpc.com/connect"

	"github.com/tochemey/actorloc/internal/locationpb"
)

// Name is registered under the protobuf codec name so the service stays
// reachable from any protobuf based connect or gRPC client.
const Name = "proto"

// Codec implements connect.Codec for locationpb messages
type Codec struct{}

var _ connect.Codec = Codec{}

// Name implements connect.Codec
func (Codec) Name() string {
	return Name
}

// Marshal implements connect.Codec
func (Codec) Marshal(message any) ([]byte, error) {
	msg, ok := message.(locationpb.Message)
	if !ok {
		return nil, fmt.Errorf("codec: %T is not a location message", message)
	}
	return msg.Marshal()
}

// Unmarshal implements connect.Codec
func (Codec) Unmarshal(data []byte, message any) error {
	msg, ok := message.(locationpb.Message)
	if !ok {
		return fmt.Errorf("codec: %T is not a location message", message)
	}
	return msg.Unmarshal(data)
}

// Option returns the connect option installing the codec on a client or a handler
func Option() connect.Option {
	return connect.WithCodec(Codec{})
}
