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

// Package compression compresses message payloads and directory RPC bodies
// with Zstandard.
package compression

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"connectrpc.com/connect"
	"github.com/klauspost/compress/zstd"
)

// Zstd is the name of the Zstandard compression algorithm.
// Reference: https://www.iana.org/assignments/http-parameters/http-parameters.xml#content-coding
const Zstd = "zstd"

// None disables compression
const None = "none"

const (
	flagRaw  byte = 0
	flagZstd byte = 1
)

// encoder and decoder are safe for concurrent EncodeAll/DecodeAll calls
var (
	codecOnce sync.Once
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
	codecErr  error
)

func codecs() (*zstd.Encoder, *zstd.Decoder, error) {
	codecOnce.Do(func() {
		encoder, codecErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
		if codecErr != nil {
			return
		}
		decoder, codecErr = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(64<<20))
	})
	return encoder, decoder, codecErr
}

// Encode frames the payload with a one byte header telling whether the rest
// is compressed. Payloads shorter than minSize are kept raw.
func Encode(algorithm string, payload []byte, minSize int) ([]byte, error) {
	if algorithm != Zstd || len(payload) < minSize {
		out := make([]byte, 0, len(payload)+1)
		out = append(out, flagRaw)
		return append(out, payload...), nil
	}

	enc, _, err := codecs()
	if err != nil {
		return nil, err
	}
	out := make([]byte, 1, len(payload)/2+1)
	out[0] = flagZstd
	return enc.EncodeAll(payload, out), nil
}

// Decode reverses Encode
func Decode(framed []byte) ([]byte, error) {
	if len(framed) == 0 {
		return nil, errors.New("compression: empty frame")
	}

	switch framed[0] {
	case flagRaw:
		return framed[1:], nil
	case flagZstd:
		_, dec, err := codecs()
		if err != nil {
			return nil, err
		}
		return dec.DecodeAll(framed[1:], nil)
	default:
		return nil, fmt.Errorf("compression: unknown frame flag %d", framed[0])
	}
}

// HandlerOption lets a connect handler accept zstd compressed requests
func HandlerOption() connect.HandlerOption {
	return connect.WithCompression(Zstd, NewZstdDecompressor, NewZstdCompressor)
}

// ClientOptions makes a connect client send zstd compressed requests
func ClientOptions() []connect.ClientOption {
	return []connect.ClientOption{
		connect.WithAcceptCompression(Zstd, NewZstdDecompressor, NewZstdCompressor),
		connect.WithSendCompression(Zstd),
	}
}

// NewZstdCompressor creates a streaming Zstandard compressor.
func NewZstdCompressor() connect.Compressor {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return &compressionError{err: err}
	}
	return enc
}

// NewZstdDecompressor returns a new Zstd Decompressor.
func NewZstdDecompressor() connect.Decompressor {
	return &zstdDecompressor{}
}

// zstdDecompressor is a thin wrapper around a zstd Decoder.
type zstdDecompressor struct {
	decoder *zstd.Decoder
}

func (c *zstdDecompressor) Read(bytes []byte) (int, error) {
	if c.decoder == nil {
		return 0, io.EOF
	}
	return c.decoder.Read(bytes)
}

func (c *zstdDecompressor) Reset(rdr io.Reader) error {
	if c.decoder == nil {
		var err error
		c.decoder, err = zstd.NewReader(rdr)
		return err
	}
	return c.decoder.Reset(rdr)
}

func (c *zstdDecompressor) Close() error {
	if c.decoder == nil {
		return nil
	}
	c.decoder.Close()
	// zstd.Decoder cannot be re-used after close, even via Reset
	c.decoder = nil
	return nil
}

// compressionError is a connect.Compressor failing on first use
type compressionError struct {
	err error
}

func (c *compressionError) Write(_ []byte) (int, error) {
	return 0, c.err
}

func (c *compressionError) Reset(_ io.Writer) {}

func (c *compressionError) Close() error {
	return c.err
}
