// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Connection table: a concurrently-mutated mapping from ConnectionId
// to Connection handle, with a periodic reaper. Backed by
// puzpuzpuz/xsync's striped MapOf instead of a single sync.RWMutex
// guarding a plain map, since this table is written on every accept and
// ranged over on every reap tick — a striped map keeps those from
// serializing on one lock the way a bare RWMutex would under a gate
// with many concurrent connections.

package corox

import (
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

// ConnectionId is a monotonic 64-bit integer assigned at accept.
// Unique within a server instance's lifetime.
type ConnectionId = int64

// ConnectionTable holds the insert/remove/sweep/close-all operations
// over live connections.
type ConnectionTable struct {
	conns *xsync.MapOf[ConnectionId, *Connection]
	// closeLock serializes CloseAll/Sweep against concurrent Insert, so
	// no new insert completes while close_all or sweep holds the lock,
	// even though the underlying map is itself lock-striped and would
	// otherwise allow an Insert to race a Sweep's iteration.
	closeLock sync.Mutex
}

// NewConnectionTable constructs an empty table.
func NewConnectionTable() *ConnectionTable {
	return &ConnectionTable{
		conns: xsync.NewMapOf[ConnectionId, *Connection](),
	}
}

// Insert adds conn under id: at most one entry per id — callers only
// ever insert a freshly minted ConnectionId, so this never overwrites
// a live entry.
func (t *ConnectionTable) Insert(id ConnectionId, conn *Connection) {
	t.closeLock.Lock()
	defer t.closeLock.Unlock()
	t.conns.Store(id, conn)
}

// Remove deletes id. Idempotent — deleting an absent key is a no-op in
// xsync, same as for a plain map.
func (t *ConnectionTable) Remove(id ConnectionId) {
	t.conns.Delete(id)
}

// Count returns the number of live entries, backing
// Server.ConnectionCount.
func (t *ConnectionTable) Count() int {
	return t.conns.Size()
}

// CloseAll signals every connection's driver to drain and exit, and
// clears the map.
func (t *ConnectionTable) CloseAll() {
	t.closeLock.Lock()
	defer t.closeLock.Unlock()
	t.conns.Range(func(id ConnectionId, conn *Connection) bool {
		conn.requestClose()
		t.conns.Delete(id)
		return true
	})
}

// Sweep closes and removes every entry whose last activity is older
// than maxIdle as of now. Range already tolerates concurrent mutation
// (erase-and-advance), so iteration survives entries being added or
// removed mid-sweep.
func (t *ConnectionTable) Sweep(now time.Time, maxIdle time.Duration) {
	t.closeLock.Lock()
	defer t.closeLock.Unlock()
	t.conns.Range(func(id ConnectionId, conn *Connection) bool {
		if now.Sub(conn.LastActivity()) > maxIdle {
			conn.requestClose()
			t.conns.Delete(id)
		}
		return true
	})
}
