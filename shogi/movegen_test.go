// Copyright 2014-2016 The Zurichess Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package shogi

import "testing"

func TestPerftStartPos(t *testing.T) {
	data := []struct {
		depth int
		nodes uint64
	}{
		{1, 30},
		{2, 900},
		{3, 25470},
		{4, 719731},
	}

	pos := StartPos()
	for _, d := range data {
		if d.depth >= 4 && testing.Short() {
			t.Skip("skipping deep perft in short mode")
		}
		if got := Perft(pos, d.depth); got != d.nodes {
			t.Errorf("perft(%d) = %d, want %d", d.depth, got, d.nodes)
		}
	}
}

func TestPerftDeep(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping deep perft in short mode")
	}
	pos := StartPos()
	if got, want := ParallelPerft(pos, 5, 4), uint64(19861490); got != want {
		t.Errorf("perft(5) = %d, want %d", got, want)
	}
}

func TestSplitPerftAgreesWithPerft(t *testing.T) {
	pos := StartPos()
	_, counts, total := SplitPerft(pos, 3)

	if total != Perft(pos, 3) {
		t.Fatalf("split total %d != perft %d", total, Perft(pos, 3))
	}

	var sum uint64
	for _, c := range counts {
		sum += c
	}
	if sum != total {
		t.Fatalf("split counts sum to %d, want %d", sum, total)
	}
}

func TestParallelPerftAgrees(t *testing.T) {
	pos := StartPos()
	if got, want := ParallelPerft(pos, 3, 4), Perft(pos, 3); got != want {
		t.Fatalf("parallel perft %d != serial %d", got, want)
	}
}

func TestStartPosMoveCount(t *testing.T) {
	var list MoveList
	GenerateAll(&list, StartPos())

	// All 30 of the starting moves are legal.
	if list.Len() != 30 {
		t.Fatalf("generated %d moves, want 30", list.Len())
	}
	for _, m := range list.Moves() {
		if !StartPos().IsLegal(m) {
			t.Errorf("startpos move %v should be legal", m)
		}
	}
}

func TestDropGeneration(t *testing.T) {
	// Black holds a pawn, a knight and a gold on an almost empty
	// board.
	pos := mustPos(t, "8k/9/9/9/9/9/9/9/K8 b PNG 1")

	var list MoveList
	GenerateAll(&list, pos)

	emptyBb := pos.Occupancy().Not()
	pawnWant := emptyBb.AndNot(RankBb(8)).Count()
	knightWant := emptyBb.AndNot(RankBb(8)).AndNot(RankBb(7)).Count()
	goldWant := emptyBb.Count()

	var pawnDrops, knightDrops, goldDrops int
	for _, m := range list.Moves() {
		if !m.IsDrop() {
			continue
		}
		switch m.DropPiece() {
		case Pawn:
			pawnDrops++
			if m.To().Rank() == 8 {
				t.Errorf("pawn dropped on the last rank: %v", m)
			}
		case Knight:
			knightDrops++
			if m.To().Rank() >= 7 {
				t.Errorf("knight dropped on the last two ranks: %v", m)
			}
		case Gold:
			goldDrops++
		default:
			t.Errorf("unexpected drop %v", m)
		}
	}

	if pawnDrops != pawnWant {
		t.Errorf("pawn drops = %d, want %d", pawnDrops, pawnWant)
	}
	if knightDrops != knightWant {
		t.Errorf("knight drops = %d, want %d", knightDrops, knightWant)
	}
	if goldDrops != goldWant {
		t.Errorf("gold drops = %d, want %d", goldDrops, goldWant)
	}
}

func TestEvasionGeneration(t *testing.T) {
	// White king on 5a checked by the black rook on 5h; white holds a
	// gold to block with.
	pos := mustPos(t, "4k4/9/9/9/9/9/9/4R4/K8 w G 1")

	var list MoveList
	GenerateAll(&list, pos)

	for _, m := range list.Moves() {
		if m.IsDrop() {
			// A drop must land on the check ray.
			if m.To().File() != 4 || m.To().Rank() == 8 || m.To().Rank() == 1 {
				t.Errorf("drop %v does not block the check", m)
			}
			continue
		}
		if pos.PieceOn(m.From()).Type() != King {
			t.Errorf("non-king board move %v generated during check", m)
		}
	}
}

func TestRecaptureGeneration(t *testing.T) {
	// After a bishop trade on 2b, white can recapture with the silver
	// on 3a.
	pos := mustApply(t, StartPos(), "7g7f", "3c3d", "8h2b+")

	var list MoveList
	GenerateRecaptures(&list, pos, sq(t, "2b"))

	if list.Len() == 0 {
		t.Fatalf("no recaptures generated")
	}
	for _, m := range list.Moves() {
		if m.To() != sq(t, "2b") {
			t.Errorf("recapture %v does not land on 2b", m)
		}
		if !pos.IsCapture(m) {
			t.Errorf("recapture %v does not capture", m)
		}
	}
}

func TestSilverPromotionChoices(t *testing.T) {
	// A black silver on 4c may enter 3b promoting or not, and may
	// also retreat out of the zone.
	pos := mustPos(t, "8k/9/5S3/9/9/9/9/9/K8 b - 1")

	var list MoveList
	GenerateAll(&list, pos)

	var promo, nonPromo, retreatPromo bool
	for _, m := range list.Moves() {
		if m.IsDrop() || m.From() != sq(t, "4c") {
			continue
		}
		if m.To() == sq(t, "3b") {
			if m.IsPromo() {
				promo = true
			} else {
				nonPromo = true
			}
		}
		// Moving out of the zone still allows promotion.
		if m.To() == sq(t, "3d") && m.IsPromo() {
			retreatPromo = true
		}
	}

	if !promo || !nonPromo {
		t.Errorf("silver into the zone must offer both choices (promo %v, non-promo %v)", promo, nonPromo)
	}
	if !retreatPromo {
		t.Errorf("silver leaving the zone may still promote")
	}
}

func TestLancePromotionBoundary(t *testing.T) {
	// A black lance on 7b: the push to 7a is generated only with the
	// promotion flag set.
	pos := mustPos(t, "8k/2L6/9/9/9/9/9/9/K8 b - 1")

	var list MoveList
	GenerateAll(&list, pos)

	var lastRankPromo, lastRankQuiet bool
	for _, m := range list.Moves() {
		if m.IsDrop() || m.From() != sq(t, "7b") {
			continue
		}
		if m.To().Rank() == 8 {
			if m.IsPromo() {
				lastRankPromo = true
			} else {
				lastRankQuiet = true
			}
		}
	}

	if !lastRankPromo {
		t.Errorf("lance to the last rank must promote")
	}
	if lastRankQuiet {
		t.Errorf("lance may not stay unpromoted on the last rank")
	}
}
