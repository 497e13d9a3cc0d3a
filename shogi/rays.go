// Copyright 2014-2016 The Zurichess Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// rays.go precomputes the ray tables used for check and pin resolution.

package shogi

var bbBetween = func() (between [SquareArraySize][SquareArraySize]Bitboard) {
	for a := SquareMinValue; a <= SquareMaxValue; a++ {
		aBit := a.Bitboard()
		rook := slidingAttack(a, rookDeltas, BbEmpty)
		bishop := slidingAttack(a, bishopDeltas, BbEmpty)

		for b := SquareMinValue; b <= SquareMaxValue; b++ {
			if a == b {
				continue
			}
			bBit := b.Bitboard()
			if rook.Has(b) {
				between[a][b] = slidingAttack(a, rookDeltas, bBit).And(slidingAttack(b, rookDeltas, aBit))
			} else if bishop.Has(b) {
				between[a][b] = slidingAttack(a, bishopDeltas, bBit).And(slidingAttack(b, bishopDeltas, aBit))
			}
		}
	}
	return
}()

var bbLine = func() (line [SquareArraySize][SquareArraySize]Bitboard) {
	for a := SquareMinValue; a <= SquareMaxValue; a++ {
		aRook := slidingAttack(a, rookDeltas, BbEmpty)
		aBishop := slidingAttack(a, bishopDeltas, BbEmpty)

		for b := SquareMinValue; b <= SquareMaxValue; b++ {
			if a == b {
				continue
			}
			if aRook.Has(b) {
				bRook := slidingAttack(b, rookDeltas, BbEmpty)
				line[a][b] = aRook.WithSquare(a).And(bRook.WithSquare(b))
			} else if aBishop.Has(b) {
				bBishop := slidingAttack(b, bishopDeltas, BbEmpty)
				line[a][b] = aBishop.WithSquare(a).And(bBishop.WithSquare(b))
			}
		}
	}
	return
}()

// Between returns the squares strictly between a and b when they share
// a rank, file or diagonal, else the empty board.
func Between(a, b Square) Bitboard {
	return bbBetween[a][b]
}

// Line returns the full ray through a and b including both endpoints
// when they share a rank, file or diagonal, else the empty board.
func Line(a, b Square) Bitboard {
	return bbLine[a][b]
}
