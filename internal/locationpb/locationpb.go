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

// Package locationpb defines the messages exchanged by the location directory
// service and the location transport. They are encoded in the protobuf wire
// format so any protobuf implementation can talk to the service.
package locationpb

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Message is implemented by every message of this package
type Message interface {
	Marshal() ([]byte, error)
	Unmarshal([]byte) error
}

// AddLocationRequest records an actor at a location
type AddLocationRequest struct {
	ActorId    int64
	LocationId int64
}

// AddLocationResponse acknowledges an AddLocationRequest
type AddLocationResponse struct{}

// RemoveLocationRequest removes an actor
type RemoveLocationRequest struct {
	ActorId int64
}

// RemoveLocationResponse acknowledges a RemoveLocationRequest
type RemoveLocationResponse struct{}

// GetLocationRequest looks an actor up
type GetLocationRequest struct {
	ActorId int64
}

// GetLocationResponse carries the location of the actor when Found is set
type GetLocationResponse struct {
	LocationId int64
	Found      bool
}

// DeliveryStatus is the outcome of a delivery at the destination location
type DeliveryStatus int32

const (
	// DeliveryStatus_OK means the actor handled the message
	DeliveryStatus_OK DeliveryStatus = 0
	// DeliveryStatus_NOT_FOUND means the actor does not live at the location
	DeliveryStatus_NOT_FOUND DeliveryStatus = 1
	// DeliveryStatus_REJECTED means the actor's handler returned an error
	DeliveryStatus_REJECTED DeliveryStatus = 2
)

// Envelope carries a message to an actor at a location
type Envelope struct {
	Id          string
	ActorId     int64
	Payload     []byte
	ExpectReply bool
}

// DeliveryReply is the answer of the destination location to an Envelope
type DeliveryReply struct {
	Status  DeliveryStatus
	Payload []byte
	Error   string
}

// enforce compilation error
var (
	_ Message = (*AddLocationRequest)(nil)
	_ Message = (*AddLocationResponse)(nil)
	_ Message = (*RemoveLocationRequest)(nil)
	_ Message = (*RemoveLocationResponse)(nil)
	_ Message = (*GetLocationRequest)(nil)
	_ Message = (*GetLocationResponse)(nil)
	_ Message = (*Envelope)(nil)
	_ Message = (*DeliveryReply)(nil)
)

func (x *AddLocationRequest) Marshal() ([]byte, error) {
	var b []byte
	b = appendInt64(b, 1, x.ActorId)
	b = appendInt64(b, 2, x.LocationId)
	return b, nil
}

func (x *AddLocationRequest) Unmarshal(b []byte) error {
	*x = AddLocationRequest{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.VarintType:
			return consumeInt64(b, &x.ActorId)
		case num == 2 && typ == protowire.VarintType:
			return consumeInt64(b, &x.LocationId)
		}
		return skipField(num, typ, b)
	})
}

func (x *AddLocationResponse) Marshal() ([]byte, error) {
	return []byte{}, nil
}

func (x *AddLocationResponse) Unmarshal(b []byte) error {
	return consumeFields(b, skipField)
}

func (x *RemoveLocationRequest) Marshal() ([]byte, error) {
	return appendInt64(nil, 1, x.ActorId), nil
}

func (x *RemoveLocationRequest) Unmarshal(b []byte) error {
	*x = RemoveLocationRequest{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 && typ == protowire.VarintType {
			return consumeInt64(b, &x.ActorId)
		}
		return skipField(num, typ, b)
	})
}

func (x *RemoveLocationResponse) Marshal() ([]byte, error) {
	return []byte{}, nil
}

func (x *RemoveLocationResponse) Unmarshal(b []byte) error {
	return consumeFields(b, skipField)
}

func (x *GetLocationRequest) Marshal() ([]byte, error) {
	return appendInt64(nil, 1, x.ActorId), nil
}

func (x *GetLocationRequest) Unmarshal(b []byte) error {
	*x = GetLocationRequest{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 && typ == protowire.VarintType {
			return consumeInt64(b, &x.ActorId)
		}
		return skipField(num, typ, b)
	})
}

func (x *GetLocationResponse) Marshal() ([]byte, error) {
	var b []byte
	b = appendInt64(b, 1, x.LocationId)
	b = appendBool(b, 2, x.Found)
	return b, nil
}

func (x *GetLocationResponse) Unmarshal(b []byte) error {
	*x = GetLocationResponse{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.VarintType:
			return consumeInt64(b, &x.LocationId)
		case num == 2 && typ == protowire.VarintType:
			return consumeBool(b, &x.Found)
		}
		return skipField(num, typ, b)
	})
}

func (x *Envelope) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, x.Id)
	b = appendInt64(b, 2, x.ActorId)
	b = appendBytes(b, 3, x.Payload)
	b = appendBool(b, 4, x.ExpectReply)
	return b, nil
}

func (x *Envelope) Unmarshal(b []byte) error {
	*x = Envelope{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			return consumeString(b, &x.Id)
		case num == 2 && typ == protowire.VarintType:
			return consumeInt64(b, &x.ActorId)
		case num == 3 && typ == protowire.BytesType:
			return consumeBytes(b, &x.Payload)
		case num == 4 && typ == protowire.VarintType:
			return consumeBool(b, &x.ExpectReply)
		}
		return skipField(num, typ, b)
	})
}

func (x *DeliveryReply) Marshal() ([]byte, error) {
	var b []byte
	b = appendInt64(b, 1, int64(x.Status))
	b = appendBytes(b, 2, x.Payload)
	b = appendString(b, 3, x.Error)
	return b, nil
}

func (x *DeliveryReply) Unmarshal(b []byte) error {
	*x = DeliveryReply{}
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.VarintType:
			var status int64
			n, err := consumeInt64(b, &status)
			x.Status = DeliveryStatus(status)
			return n, err
		case num == 2 && typ == protowire.BytesType:
			return consumeBytes(b, &x.Payload)
		case num == 3 && typ == protowire.BytesType:
			return consumeString(b, &x.Error)
		}
		return skipField(num, typ, b)
	})
}

// String returns the name of the status
func (x DeliveryStatus) String() string {
	switch x {
	case DeliveryStatus_OK:
		return "OK"
	case DeliveryStatus_NOT_FOUND:
		return "NOT_FOUND"
	case DeliveryStatus_REJECTED:
		return "REJECTED"
	default:
		return fmt.Sprintf("DeliveryStatus(%d)", int32(x))
	}
}
