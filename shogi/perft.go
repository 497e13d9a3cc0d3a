// Copyright 2014-2016 The Zurichess Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// perft.go counts legal move sequences, used to validate generation.

package shogi

import (
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Perft returns the number of legal move sequences of the given depth.
func Perft(pos *Position, depth int) uint64 {
	if depth <= 0 {
		return 1
	}

	var moves MoveList
	GenerateAll(&moves, pos)

	var total uint64
	for _, m := range moves.Moves() {
		if !pos.IsLegal(m) {
			continue
		}
		if depth == 1 {
			total++
			continue
		}
		next := pos.ApplyMove(m)
		total += Perft(&next, depth-1)
	}
	return total
}

// SplitPerft returns the perft count per root move.
func SplitPerft(pos *Position, depth int) (moves []Move, counts []uint64, total uint64) {
	var list MoveList
	GenerateLegal(&list, pos)

	for _, m := range list.Moves() {
		next := pos.ApplyMove(m)
		count := Perft(&next, depth-1)
		moves = append(moves, m)
		counts = append(counts, count)
		total += count
	}
	return
}

// ParallelPerft is Perft split at the root over workers goroutines.
func ParallelPerft(pos *Position, depth, workers int) uint64 {
	if depth <= 1 || workers <= 1 {
		return Perft(pos, depth)
	}

	var list MoveList
	GenerateLegal(&list, pos)

	var total atomic.Uint64
	var g errgroup.Group
	g.SetLimit(workers)

	for _, m := range list.Moves() {
		m := m
		g.Go(func() error {
			next := pos.ApplyMove(m)
			total.Add(Perft(&next, depth-1))
			return nil
		})
	}

	// Workers never fail; Wait only joins them.
	_ = g.Wait()

	return total.Load()
}
