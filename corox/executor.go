// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Executor binding: adapts either a caller-provided reactor or an owned
// worker pool into a uniform task spawner used by the acceptor and
// driver tasks. Grounded on hemi/general.go's Server_[G Gate] mixin,
// which keeps a []Gate slice and round-robins accepted connections
// across them; here the round-robin selects a worker instead of a
// gate, since Go's runtime scheduler already does the multiplexing a
// gate exists to provide.

package corox

import (
	"sync"
	"sync/atomic"
)

// Executor spawns a task (a func running independently of its caller).
// A driver task blocks in its keep-alive loop for the connection's
// entire lifetime, so Spawn must never make that task wait behind
// another connection's — each call gets its own goroutine, with the
// interface existing so callers can plug in something other than the
// default worker.
type Executor interface {
	Spawn(fn func())
}

// ExecutorSource yields one Executor per accepted connection.
// NextExecutor is called exactly once per accepted connection, before
// its driver task is spawned.
type ExecutorSource interface {
	NextExecutor() Executor
	// Shutdown releases resources held by the source. In Embedded mode
	// this joins every goroutine spawned through it; in Borrowed mode it
	// is a no-op — the caller owns the reactor's lifecycle.
	Shutdown()
}

// workerExecutor spawns every job on its own goroutine and tracks the
// outstanding ones with a WaitGroup so Shutdown can join them. It does
// not serialize jobs behind a single draining goroutine: a driver task
// runs for as long as its connection stays open, so queueing jobs
// behind one worker goroutine would cap concurrent connections at the
// pool size instead of just fanning them out across it.
type workerExecutor struct {
	wg sync.WaitGroup
}

func newWorkerExecutor() *workerExecutor {
	return &workerExecutor{}
}

func (w *workerExecutor) Spawn(fn func()) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		fn()
	}()
}

func (w *workerExecutor) stop() {
	w.wg.Wait()
}

// EmbeddedPool owns N workerExecutors and selects among them
// round-robin.
type EmbeddedPool struct {
	workers []*workerExecutor
	cursor  atomic.Uint32
	once    sync.Once
}

// NewEmbeddedPool creates a pool of n worker executors. n is clamped to
// at least 1.
func NewEmbeddedPool(n int) *EmbeddedPool {
	if n < 1 {
		n = 1
	}
	p := &EmbeddedPool{workers: make([]*workerExecutor, n)}
	for i := range p.workers {
		p.workers[i] = newWorkerExecutor()
	}
	return p
}

func (p *EmbeddedPool) NextExecutor() Executor {
	i := p.cursor.Add(1) - 1
	return p.workers[int(i)%len(p.workers)]
}

// Shutdown joins every job spawned through the pool.
func (p *EmbeddedPool) Shutdown() {
	p.once.Do(func() {
		for _, w := range p.workers {
			w.stop()
		}
	})
}

// BorrowedExecutor adapts a caller-supplied reactor. Every connection
// runs on the same Executor; Shutdown releases the reference without
// stopping the caller's reactor.
type BorrowedExecutor struct {
	exec Executor
}

// NewBorrowedExecutor wraps an externally owned Executor.
func NewBorrowedExecutor(exec Executor) *BorrowedExecutor {
	return &BorrowedExecutor{exec: exec}
}

func (b *BorrowedExecutor) NextExecutor() Executor { return b.exec }
func (b *BorrowedExecutor) Shutdown()               {}

// InlineExecutor runs fn on a new goroutine directly — a zero-config
// Executor useful as the payload of a BorrowedExecutor in tests.
type InlineExecutor struct{}

func (InlineExecutor) Spawn(fn func()) { go fn() }
