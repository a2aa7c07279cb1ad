// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Accept loop: accept, mint an id, apply socket options, wire a
// Connection, and hand it off to an executor for its driver task.
// Grounded on hemi's gate accept loops (e.g.
// hemi/net_tcpx_general.go's TCPXGate.serve), which run the same
// accept/dispatch shape over a []Gate instead of a flat executor pool.

package corox

import (
	"net"

	"github.com/coroxio/corox/coroxsys"
)

// acceptLoop runs until the listener is closed, at which point Accept
// returns net.ErrClosed (wrapped) and the loop exits, signaling
// acceptorClosed so Stop can proceed.
func (s *Server) acceptLoop() {
	defer close(s.acceptorClosed)

	for {
		socket, err := s.listener.Accept()
		if err != nil {
			if isAcceptAborted(err) {
				return
			}
			s.logger.Logf("corox: accept error: %v\n", err)
			continue
		}
		s.handleAccepted(socket)
	}
}

// handleAccepted mints a ConnectionId, applies TCP_NODELAY, inserts the
// Connection into the table, and spawns its driver task on the next
// executor. next_executor is called exactly once per accepted
// connection, before its driver task is spawned.
func (s *Server) handleAccepted(socket net.Conn) {
	if s.cfg.NoDelay {
		if tc, ok := socket.(*net.TCPConn); ok {
			if rawConn, err := tc.SyscallConn(); err == nil {
				if err := coroxsys.SetTCPNoDelay(rawConn, true); err != nil {
					s.logger.Logf("corox: set TCP_NODELAY failed: %v\n", err)
				}
			}
		}
	}

	id := s.nextConnID.Add(1)
	exec := s.execSource.NextExecutor()

	conn := newConnection(id, socket, exec, s.clk, func(id ConnectionId) {
		s.table.Remove(id)
	})
	s.table.Insert(id, conn)

	exec.Spawn(func() {
		driveHTTP1(conn, s.router, s.logger)
	})
}
