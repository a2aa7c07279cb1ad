// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Connection owns a socket, a read buffer, a last-activity timestamp
// on a monotonic clock, and a quit callback invoked with its id when
// the connection leaves keep-alive. Grounded on hemi's ServerConn_
// mixin (hemi/general.go) for the shape of the per-connection state a
// gate and its driver task share.

package corox

import (
	"bufio"
	"net"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
)

// Connection is shared between the acceptor's ConnectionTable and its
// driver task. There is no manual refcounting — a systems language with
// explicit ownership would destroy it once both references drop; in Go
// the garbage collector retires it once neither the table nor the
// driver goroutine holds a reference anymore.
type Connection struct {
	id       ConnectionId
	socket   net.Conn
	reader   *bufio.Reader
	executor Executor
	clock    clock.Clock
	quit     func(id ConnectionId) // invoked when the connection leaves keep-alive

	lastActivity atomic.Pointer[time.Time] // per clock, monotonic reading kept
	closing      atomic.Bool  // set by requestClose; observed by the driver's next I/O
}

// newConnection wires a freshly accepted socket into a Connection. The
// quit callback is installed by the acceptor before the driver task is
// spawned.
func newConnection(id ConnectionId, socket net.Conn, executor Executor, clk clock.Clock, quit func(ConnectionId)) *Connection {
	c := &Connection{
		id:       id,
		socket:   socket,
		reader:   bufio.NewReader(socket),
		executor: executor,
		clock:    clk,
		quit:     quit,
	}
	c.touch()
	return c
}

func (c *Connection) ID() ConnectionId   { return c.id }
func (c *Connection) Socket() net.Conn   { return c.socket }
func (c *Connection) Reader() *bufio.Reader { return c.reader }
func (c *Connection) Executor() Executor { return c.executor }

// touch records activity on the monotonic clock, resetting the idle
// timer consulted by ConnectionTable.Sweep.
func (c *Connection) touch() {
	now := c.clock.Now()
	c.lastActivity.Store(&now)
}

// LastActivity returns the last time I/O was observed on this
// connection.
func (c *Connection) LastActivity() time.Time {
	return *c.lastActivity.Load()
}

// requestClose is the reaper/Stop-time signal: it forcibly closes the
// socket so the driver's in-flight or next I/O fails and the driver
// task observes this as a read/write error and terminates — no forced
// task cancellation is needed beyond closing the socket.
func (c *Connection) requestClose() {
	if c.closing.CompareAndSwap(false, true) {
		c.socket.Close()
	}
}

// isClosing reports whether requestClose has already fired, so the
// driver can distinguish a reaper-triggered close from an ordinary
// peer disconnect when deciding whether to log.
func (c *Connection) isClosing() bool { return c.closing.Load() }

// leaveKeepAlive is called exactly once by the driver when it decides
// to stop reusing this connection (error, non-keep-alive response,
// or a closed socket), invoking the quit callback that removes it
// from the ConnectionTable.
func (c *Connection) leaveKeepAlive() {
	c.socket.Close()
	if c.quit != nil {
		c.quit(c.id)
	}
}
