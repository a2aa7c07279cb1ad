// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package corox

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResponse(buf *bytes.Buffer) *http1Response {
	return newHTTP1Response(nil, bufio.NewWriter(buf))
}

func TestResponseReplyWritesStatusHeadersAndBody(t *testing.T) {
	var buf bytes.Buffer
	resp := newTestResponse(&buf)
	resp.SetStatusAndContent(StatusOK, []byte("hello"))
	resp.AddHeader("X-Test", "1")

	require.NoError(t, resp.Reply())

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "HTTP/1.1 200 OK\r\n"))
	assert.Contains(t, out, "X-Test: 1\r\n")
	assert.Contains(t, out, "Content-Length: 5\r\n")
	assert.True(t, strings.HasSuffix(out, "hello"))
}

func TestResponseReplyDefaultsContentType(t *testing.T) {
	var buf bytes.Buffer
	resp := newTestResponse(&buf)
	resp.SetStatusAndContent(StatusOK, nil)
	require.NoError(t, resp.Reply())
	assert.Contains(t, buf.String(), "Content-Type: text/plain\r\n")
}

func TestResponseReplySkippedWhenDelayed(t *testing.T) {
	var buf bytes.Buffer
	resp := newTestResponse(&buf)
	resp.SetDelay(true)
	require.NoError(t, resp.Reply())
	assert.Empty(t, buf.String())
}

func TestResponseReplyIsOnceOnly(t *testing.T) {
	var buf bytes.Buffer
	resp := newTestResponse(&buf)
	resp.SetStatusAndContent(StatusOK, []byte("a"))
	require.NoError(t, resp.Reply())
	firstLen := buf.Len()
	require.NoError(t, resp.Reply())
	assert.Equal(t, firstLen, buf.Len())
}

func TestResponseChunkedRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	resp := newTestResponse(&buf)
	resp.SetStatus(StatusOK)
	require.NoError(t, resp.BeginChunked())
	assert.True(t, resp.WriteChunked([]byte("abc")))
	assert.True(t, resp.WriteChunked([]byte("de")))
	require.NoError(t, resp.EndChunked())

	out := buf.String()
	assert.Contains(t, out, "Transfer-Encoding: chunked\r\n\r\n")
	assert.Contains(t, out, "3\r\nabc\r\n")
	assert.Contains(t, out, "2\r\nde\r\n")
	assert.True(t, strings.HasSuffix(out, "0\r\n\r\n"))
}

func TestMultipartEnd(t *testing.T) {
	assert.True(t, strings.HasPrefix(MultipartEnd(), "--"))
	assert.True(t, strings.HasSuffix(MultipartEnd(), "--"))
}
