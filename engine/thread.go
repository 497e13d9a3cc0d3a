// Copyright 2014-2016 The Zurichess Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// thread.go holds the per-worker search state and the reusable
// barriers the workers park on between searches.

package engine

import (
	"sync"
	"sync/atomic"

	"github.com/yl25946/stoat/shogi"
)

// barrier is a reusable rendezvous point for a fixed number of
// goroutines. Arrivals block until the full party has arrived, then
// the barrier resets itself for the next cycle.
type barrier struct {
	mu      sync.Mutex
	cond    *sync.Cond
	total   int
	waiting int
	phase   uint64
}

func newBarrier(total int) *barrier {
	b := &barrier{total: total}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// arriveAndWait blocks until total goroutines have arrived.
func (b *barrier) arriveAndWait() {
	b.mu.Lock()
	phase := b.phase
	b.waiting++
	if b.waiting == b.total {
		b.waiting = 0
		b.phase++
		b.cond.Broadcast()
	} else {
		for phase == b.phase {
			b.cond.Wait()
		}
	}
	b.mu.Unlock()
}

type stackFrame struct {
	pv PvList
}

// threadData is the per-worker search state.
type threadData struct {
	id       int
	maxDepth int

	rootPos    shogi.Position
	keyHistory []uint64

	seldepth atomic.Int32
	nodes    atomic.Uint64

	rootDepth      int
	depthCompleted int

	lastScore int32
	lastPv    PvList

	stack []stackFrame
}

func newThreadData(id int) *threadData {
	return &threadData{
		id:         id,
		keyHistory: make([]uint64, 0, 1024),
		stack:      make([]stackFrame, MaxDepth),
	}
}

func (t *threadData) isMainThread() bool {
	return t.id == 0
}

func (t *threadData) loadSeldepth() int {
	return int(t.seldepth.Load())
}

func (t *threadData) updateSeldepth(v int) {
	if v > t.loadSeldepth() {
		t.seldepth.Store(int32(v))
	}
}

func (t *threadData) loadNodes() uint64 {
	return t.nodes.Load()
}

func (t *threadData) incNodes() {
	t.nodes.Add(1)
}

// reset prepares the worker for a new search from rootPos.
func (t *threadData) reset(rootPos *shogi.Position, keyHistory []uint64) {
	t.rootPos = *rootPos

	t.keyHistory = t.keyHistory[:0]
	t.keyHistory = append(t.keyHistory, keyHistory...)

	t.seldepth.Store(0)
	t.nodes.Store(0)
}

// applyMove plays move on pos after recording pos's key in the history
// the repetition test scans. popKey undoes the recording.
func (t *threadData) applyMove(pos *shogi.Position, move shogi.Move) shogi.Position {
	t.keyHistory = append(t.keyHistory, pos.Key())
	return pos.ApplyMove(move)
}

func (t *threadData) popKey() {
	t.keyHistory = t.keyHistory[:len(t.keyHistory)-1]
}
