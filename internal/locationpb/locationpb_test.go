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

package locationpb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestEnvelope(t *testing.T) {
	t.Run("With all fields", func(t *testing.T) {
		in := &Envelope{Id: "id-1", ActorId: -42, Payload: []byte("hi"), ExpectReply: true}
		bytea, err := in.Marshal()
		require.NoError(t, err)

		out := new(Envelope)
		require.NoError(t, out.Unmarshal(bytea))
		assert.Equal(t, in, out)
	})
	t.Run("With unknown fields", func(t *testing.T) {
		var b []byte
		b = protowire.AppendTag(b, 2, protowire.VarintType)
		b = protowire.AppendVarint(b, 7)
		b = protowire.AppendTag(b, 99, protowire.BytesType)
		b = protowire.AppendString(b, "ignored")
		b = protowire.AppendTag(b, 100, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, 1)

		out := new(Envelope)
		require.NoError(t, out.Unmarshal(b))
		assert.EqualValues(t, 7, out.ActorId)
		assert.Empty(t, out.Id)
	})
	t.Run("With truncated input", func(t *testing.T) {
		in := &Envelope{Id: "id-1", Payload: []byte("payload")}
		bytea, err := in.Marshal()
		require.NoError(t, err)

		out := new(Envelope)
		require.Error(t, out.Unmarshal(bytea[:len(bytea)-2]))
	})
	t.Run("With payload not aliasing the input", func(t *testing.T) {
		in := &Envelope{Payload: []byte("abc")}
		bytea, err := in.Marshal()
		require.NoError(t, err)

		out := new(Envelope)
		require.NoError(t, out.Unmarshal(bytea))
		bytea[len(bytea)-1] = 'z'
		assert.Equal(t, []byte("abc"), out.Payload)
	})
}

func TestDirectoryMessages(t *testing.T) {
	t.Run("With GetLocationResponse", func(t *testing.T) {
		in := &GetLocationResponse{LocationId: 9, Found: true}
		bytea, err := in.Marshal()
		require.NoError(t, err)

		out := &GetLocationResponse{LocationId: 1}
		require.NoError(t, out.Unmarshal(bytea))
		assert.Equal(t, in, out)
	})
	t.Run("With empty GetLocationResponse", func(t *testing.T) {
		bytea, err := (&GetLocationResponse{}).Marshal()
		require.NoError(t, err)
		assert.Empty(t, bytea)

		out := &GetLocationResponse{Found: true}
		require.NoError(t, out.Unmarshal(bytea))
		assert.False(t, out.Found)
	})
	t.Run("With AddLocationRequest", func(t *testing.T) {
		in := &AddLocationRequest{ActorId: 42, LocationId: 7}
		bytea, err := in.Marshal()
		require.NoError(t, err)

		out := new(AddLocationRequest)
		require.NoError(t, out.Unmarshal(bytea))
		assert.Equal(t, in, out)
	})
}

func TestDeliveryReply(t *testing.T) {
	in := &DeliveryReply{Status: DeliveryStatus_REJECTED, Error: "boom"}
	bytea, err := in.Marshal()
	require.NoError(t, err)

	out := new(DeliveryReply)
	require.NoError(t, out.Unmarshal(bytea))
	assert.Equal(t, in, out)
	assert.Equal(t, "REJECTED", out.Status.String())
	assert.Equal(t, "DeliveryStatus(9)", DeliveryStatus(9).String())
}
