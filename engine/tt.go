// Copyright 2014-2016 The Zurichess Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// tt.go implements the shared transposition table.
//
// The table is open-addressed with a single 8-byte entry per bucket,
// read and written concurrently by all search threads without locks.
// Each entry is one 64-bit word accessed atomically; a stale or
// mismatched word fails the truncated key test and reads as a miss.

package engine

import (
	"math/bits"
	"sync/atomic"

	"github.com/yl25946/stoat/shogi"
)

// DefaultTTSizeMib is the table size used until the driver overrides it.
const DefaultTTSizeMib = 64

// MaxTTSizeMib bounds the table size accepted by Searcher.SetTTSize.
const MaxTTSizeMib = 131072

// Flag describes which bound a table entry holds.
type Flag uint8

const (
	FlagNone Flag = iota
	FlagUpper
	FlagLower
	FlagExact
)

// ProbedEntry is the unpacked result of a successful probe.
type ProbedEntry struct {
	Score int32
	Depth int
	Move  shogi.Move
	Flag  Flag
}

// Entry layout inside the packed word:
//
//	000000000000ffff - low 16 bits of the key
//	00000000ffff0000 - score
//	0000ffff00000000 - move
//	00ff000000000000 - depth
//	ff00000000000000 - flag
const entrySize = 8

func packEntry(key uint64, score int32, move shogi.Move, depth int, flag Flag) uint64 {
	return uint64(uint16(key)) |
		uint64(uint16(int16(score)))<<16 |
		uint64(move)<<32 |
		uint64(uint8(depth))<<48 |
		uint64(flag)<<56
}

// TTable is the transposition table.
type TTable struct {
	entries     []uint64
	entryCount  uint64
	pendingInit bool
}

// NewTTable returns a table of the given size. The backing memory is
// allocated lazily by Finalize.
func NewTTable(mib int) *TTable {
	tt := &TTable{}
	tt.Resize(mib)
	return tt
}

// Resize sets the table size. The allocation is deferred to the next
// Finalize so that repeated setoption commands stay cheap. Must not be
// called while a search is running.
func (tt *TTable) Resize(mib int) {
	entries := uint64(mib) * 1024 * 1024 / entrySize
	if tt.entryCount != entries {
		tt.entries = nil
		tt.entryCount = entries
	}
	tt.pendingInit = true
}

// Finalize performs a pending allocation. It returns true if memory
// was (re)allocated, in which case the table is zeroed.
func (tt *TTable) Finalize() bool {
	if !tt.pendingInit {
		return false
	}
	tt.pendingInit = false
	tt.entries = make([]uint64, tt.entryCount)
	return true
}

func (tt *TTable) index(key uint64) uint64 {
	hi, _ := bits.Mul64(key, tt.entryCount)
	return hi
}

// scoreToTT shifts mate scores to a root-independent form before they
// are stored.
func scoreToTT(score int32, ply int) int32 {
	if score < -ScoreWin {
		return score - int32(ply)
	} else if score > ScoreWin {
		return score + int32(ply)
	}
	return score
}

// scoreFromTT undoes scoreToTT for the probing node's ply.
func scoreFromTT(score int32, ply int) int32 {
	if score < -ScoreWin {
		return score + int32(ply)
	} else if score > ScoreWin {
		return score - int32(ply)
	}
	return score
}

// Probe looks up key. On a hit the entry's score is adjusted to the
// probing ply.
func (tt *TTable) Probe(key uint64, ply int) (ProbedEntry, bool) {
	word := atomic.LoadUint64(&tt.entries[tt.index(key)])

	if uint16(word) != uint16(key) {
		return ProbedEntry{}, false
	}

	return ProbedEntry{
		Score: scoreFromTT(int32(int16(word>>16)), ply),
		Move:  shogi.Move(word >> 32),
		Depth: int(uint8(word >> 48)),
		Flag:  Flag(word >> 56),
	}, true
}

// Put stores an entry for key, always replacing the bucket.
func (tt *TTable) Put(key uint64, score int32, move shogi.Move, depth, ply int, flag Flag) {
	word := packEntry(key, scoreToTT(score, ply), move, depth, flag)
	atomic.StoreUint64(&tt.entries[tt.index(key)], word)
}

// Clear zeroes the table. Must not be called while a search is running.
func (tt *TTable) Clear() {
	for i := range tt.entries {
		tt.entries[i] = 0
	}
}

// FullPermille probes the first 1000 entries and returns how many are
// in use, as a coarse fill estimate.
func (tt *TTable) FullPermille() int {
	filled := 0
	for i := 0; i < 1000 && i < len(tt.entries); i++ {
		if Flag(atomic.LoadUint64(&tt.entries[i])>>56) != FlagNone {
			filled++
		}
	}
	return filled
}
