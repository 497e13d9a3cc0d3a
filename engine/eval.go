// Copyright 2014-2016 The Zurichess Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// eval.go implements the static evaluation.

package engine

import "github.com/yl25946/stoat/shogi"

// Search score bounds. Scores inside the mate window encode the
// distance to mate in plies.
const (
	ScoreInf  = int32(32767)
	ScoreMate = int32(32766)
	ScoreWin  = int32(25000)
	ScoreNone = -ScoreInf

	// MaxDepth bounds the search ply and the length of a PV.
	MaxDepth = 255

	ScoreMaxMate = ScoreMate - MaxDepth
)

const kingRingBonus = 8

// Eval returns the static evaluation of pos from the side to move's
// perspective, in centipawn-like units, strictly inside (-ScoreWin,
// ScoreWin). It sums the material imbalance over board and hands and
// adds a small bonus per friendly piece shielding the king.
func Eval(pos *shogi.Position) int32 {
	us := pos.SideToMove()
	them := us.Flip()

	var score int32

	for pt := shogi.Pawn; pt < shogi.King; pt++ {
		count := pos.PieceBb(pt, us).Count() - pos.PieceBb(pt, them).Count()
		score += int32(count) * shogi.PieceValue(pt)
	}

	score += handValue(pos.Hand(us)) - handValue(pos.Hand(them))

	score += kingRing(pos, us) - kingRing(pos, them)

	if score >= ScoreWin {
		score = ScoreWin - 1
	} else if score <= -ScoreWin {
		score = -ScoreWin + 1
	}
	return score
}

func handValue(hand shogi.Hand) int32 {
	var value int32
	for _, pt := range shogi.HandTypes {
		value += int32(hand.Count(pt)) * shogi.PieceValue(pt)
	}
	return value
}

// kingRing rewards friendly pieces on the squares around c's king.
func kingRing(pos *shogi.Position, c shogi.Color) int32 {
	ring := shogi.KingAttacks(pos.King(c))
	return kingRingBonus * int32(ring.And(pos.ByColor(c)).Count())
}
