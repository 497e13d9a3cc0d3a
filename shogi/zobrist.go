// Copyright 2014-2016 The Zurichess Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// zobrist.go holds the magic numbers used for Zobrist hashing.
//
// The key of a position is the XOR of one number per piece on its
// square, one number when white is to move, and one number per
// (color, droppable type, count) of the hands. Keying hand counts per
// count makes every increment or decrement a two-XOR update.

package shogi

import "math/rand"

var (
	zobristPiece [PieceArraySize][SquareArraySize]uint64
	zobristStm   uint64
	zobristHand  [ColorArraySize][PieceTypeArraySize][19]uint64
)

func init() {
	r := rand.New(rand.NewSource(0x590d3524d1d6301c))
	f := func() uint64 { return uint64(r.Int63())<<32 ^ uint64(r.Int63()) }

	for pi := range zobristPiece {
		for sq := range zobristPiece[pi] {
			zobristPiece[pi][sq] = f()
		}
	}

	zobristStm = f()

	for c := Black; c <= White; c++ {
		for _, pt := range HandTypes {
			for count := uint32(0); count <= MaxInHand(pt); count++ {
				zobristHand[c][pt][count] = f()
			}
		}
	}
}
