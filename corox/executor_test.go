// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package corox

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestEmbeddedPoolRoundRobinsAcrossWorkers(t *testing.T) {
	defer goleak.VerifyNone(t)

	pool := NewEmbeddedPool(3)
	defer pool.Shutdown()

	seen := map[Executor]bool{}
	for i := 0; i < 6; i++ {
		seen[pool.NextExecutor()] = true
	}
	assert.Len(t, seen, 3)
}

func TestEmbeddedPoolRunsSpawnedWork(t *testing.T) {
	defer goleak.VerifyNone(t)

	pool := NewEmbeddedPool(2)
	defer pool.Shutdown()

	var wg sync.WaitGroup
	var count atomic.Int32
	for i := 0; i < 10; i++ {
		wg.Add(1)
		pool.NextExecutor().Spawn(func() {
			defer wg.Done()
			count.Add(1)
		})
	}
	wg.Wait()
	assert.EqualValues(t, 10, count.Load())
}

func TestEmbeddedPoolRunsMoreConcurrentJobsThanWorkers(t *testing.T) {
	defer goleak.VerifyNone(t)

	const workers = 2
	const jobs = 5 // more in flight at once than workers, like long-lived keep-alive connections

	pool := NewEmbeddedPool(workers)
	defer pool.Shutdown()

	var arrived sync.WaitGroup
	arrived.Add(jobs)
	release := make(chan struct{})

	for i := 0; i < jobs; i++ {
		pool.NextExecutor().Spawn(func() {
			arrived.Done()
			<-release
		})
	}

	done := make(chan struct{})
	go func() {
		arrived.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("not all jobs started: a worker-pool-sized queue would stall the (workers+1)th job")
	}
	close(release)
}

func TestEmbeddedPoolShutdownIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	pool := NewEmbeddedPool(1)
	pool.Shutdown()
	pool.Shutdown() // must not panic or block
}

func TestBorrowedExecutorAlwaysReturnsSameExecutor(t *testing.T) {
	inline := InlineExecutor{}
	borrowed := NewBorrowedExecutor(inline)
	assert.Equal(t, inline, borrowed.NextExecutor())
	assert.Equal(t, inline, borrowed.NextExecutor())
	borrowed.Shutdown() // no-op; must not touch the caller's executor
}
