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

package log

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type logLine struct {
	Level   string `json:"level"`
	Msg     string `json:"msg"`
	ActorID int64  `json:"actor"`
}

func decodeLine(t *testing.T, buffer *bytes.Buffer) logLine {
	t.Helper()
	var line logLine
	require.NoError(t, json.Unmarshal(buffer.Bytes(), &line))
	return line
}

func TestZapLogger(t *testing.T) {
	t.Run("With Info level", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(InfoLevel, buffer)

		logger.Debug("hidden")
		assert.Zero(t, buffer.Len())

		logger.Infof("location %d registered", 7)
		line := decodeLine(t, buffer)
		assert.Equal(t, "info", line.Level)
		assert.Equal(t, "location 7 registered", line.Msg)
		assert.Equal(t, InfoLevel, logger.LogLevel())
		assert.Len(t, logger.LogOutput(), 1)
	})
	t.Run("With Debug level", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(DebugLevel, buffer)
		logger.Debugf("resolving %d", 42)
		line := decodeLine(t, buffer)
		assert.Equal(t, "debug", line.Level)
	})
	t.Run("With Error level", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(ErrorLevel, buffer)
		logger.Warn("hidden")
		assert.Zero(t, buffer.Len())
		logger.Error("delivery failed")
		line := decodeLine(t, buffer)
		assert.Equal(t, "error", line.Level)
	})
	t.Run("With fields", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(InfoLevel, buffer).With("actor", 42)
		logger.Info("sent")
		line := decodeLine(t, buffer)
		assert.EqualValues(t, 42, line.ActorID)
		require.NoError(t, logger.Flush())
	})
}

func TestDiscardLogger(t *testing.T) {
	logger := DiscardLogger
	logger.Info("nothing")
	logger.With("k", "v").Errorf("nothing %d", 1)
	assert.Equal(t, InvalidLevel, logger.LogLevel())
	assert.Equal(t, []io.Writer{io.Discard}, logger.LogOutput())
	assert.NoError(t, logger.Flush())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, InfoLevel, ParseLevel(""))
	assert.Equal(t, DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, WarningLevel, ParseLevel("warning"))
	assert.Equal(t, ErrorLevel, ParseLevel("error"))
	assert.Equal(t, InvalidLevel, ParseLevel("verbose"))
	assert.Equal(t, "warn", WarningLevel.String())
}
