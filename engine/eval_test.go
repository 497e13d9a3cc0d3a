// Copyright 2014-2016 The Zurichess Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package engine

import (
	"testing"

	"github.com/yl25946/stoat/shogi"
)

func mustPos(t *testing.T, sfen string) *shogi.Position {
	t.Helper()
	pos, err := shogi.PositionFromSFEN(sfen)
	if err != nil {
		t.Fatalf("PositionFromSFEN(%q): %v", sfen, err)
	}
	return pos
}

func TestEvalStartPosIsBalanced(t *testing.T) {
	if got := Eval(shogi.StartPos()); got != 0 {
		t.Errorf("Eval(startpos) = %d, want 0", got)
	}
}

func TestEvalSideToMoveSymmetry(t *testing.T) {
	data := []string{
		shogi.SFENStartPos,
		"lnsgkgsnl/1r5+B1/pppppp1pp/6p2/9/2P6/PP1PPPPPP/7R1/LNSGKGSNL w B 4",
		"8k/9/9/9/9/9/9/9/K8 b R4G18P2r 1",
	}

	for i, sfen := range data {
		pos := mustPos(t, sfen)
		null := pos.ApplyNullMove()
		if a, b := Eval(pos), Eval(&null); a != -b {
			t.Errorf("#%d eval not antisymmetric: %d vs %d", i, a, b)
		}
	}
}

func TestEvalMaterialCounts(t *testing.T) {
	// A rook in hand versus nothing.
	pos := mustPos(t, "8k/9/9/9/9/9/9/9/K8 b R 1")
	if got := Eval(pos); got != shogi.RookValue {
		t.Errorf("Eval = %d, want %d", got, shogi.RookValue)
	}

	// A horse on the board is worth the promoted bishop value.
	pos = mustPos(t, "8k/9/9/9/4+B4/9/9/9/K8 b - 1")
	if got := Eval(pos); got != shogi.PromotedBishopValue {
		t.Errorf("Eval = %d, want %d", got, shogi.PromotedBishopValue)
	}
}

func TestEvalKingRing(t *testing.T) {
	// A gold beside the king scores its value plus the ring bonus.
	got := Eval(mustPos(t, "8k/9/9/9/9/9/9/G8/K8 b - 1"))

	want := int32(shogi.GoldValue + kingRingBonus)
	if got != want {
		t.Errorf("Eval = %d, want %d", got, want)
	}
}

func TestEvalClamped(t *testing.T) {
	// An absurd material edge is clamped inside the win window.
	pos := mustPos(t, "8k/+R+R+R+R+R+R+R+R+R/9/9/9/9/9/9/K8 b 2R2B4G4S4N4L18P 1")
	if got := Eval(pos); got != ScoreWin-1 {
		t.Errorf("Eval = %d, want %d", got, ScoreWin-1)
	}
}
