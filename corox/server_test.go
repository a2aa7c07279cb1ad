// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package corox

import (
	"bufio"
	"net"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestServerStartBindsOSAssignedPort(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"))

	cfg := DefaultServerConfig()
	cfg.Port = 0
	server := NewServer(cfg, WithLogger(NewDiscardLogger()))

	require.NoError(t, server.Start())
	assert.NotZero(t, server.Port())
	server.Stop()
}

func TestServerStopIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"))

	cfg := DefaultServerConfig()
	cfg.Port = 0
	server := NewServer(cfg, WithLogger(NewDiscardLogger()))
	require.NoError(t, server.Start())

	server.Stop()
	server.Stop() // must not panic or double-close
}

func TestServerServesRegisteredRoute(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"))

	cfg := DefaultServerConfig()
	cfg.Port = 0
	server := NewServer(cfg, WithLogger(NewDiscardLogger()))
	server.RegisterHandler(MethodGET, "/ping", func(req Request, resp Response) {
		resp.SetStatusAndContent(StatusOK, []byte("pong"))
		resp.Reply()
	})
	require.NoError(t, server.Start())
	defer server.Stop()

	conn, err := net.Dial("tcp", "127.0.0.1:"+strconv.Itoa(server.Port()))
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("GET /ping HTTP/1.1\r\nConnection: close\r\n\r\n"))
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	resp, err := http.ReadResponse(bufio.NewReader(conn), nil)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, resp.StatusCode)
}

func TestServerConnectionCountReflectsLiveConnections(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"))

	cfg := DefaultServerConfig()
	cfg.Port = 0
	server := NewServer(cfg, WithLogger(NewDiscardLogger()))
	require.NoError(t, server.Start())
	defer server.Stop()

	conn, err := net.Dial("tcp", "127.0.0.1:"+strconv.Itoa(server.Port()))
	require.NoError(t, err)
	defer conn.Close()

	assert.Eventually(t, func() bool {
		return server.ConnectionCount() == 1
	}, time.Second, 10*time.Millisecond)
}
