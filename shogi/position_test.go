// Copyright 2014-2016 The Zurichess Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package shogi

import (
	"math/rand"
	"testing"
)

func mustPos(t *testing.T, sfen string) *Position {
	t.Helper()
	pos, err := PositionFromSFEN(sfen)
	if err != nil {
		t.Fatalf("PositionFromSFEN(%q): %v", sfen, err)
	}
	return pos
}

func mustApply(t *testing.T, pos *Position, strs ...string) *Position {
	t.Helper()
	for _, str := range strs {
		m, err := MoveFromString(str)
		if err != nil {
			t.Fatal(err)
		}
		if !pos.IsPseudoLegal(m) || !pos.IsLegal(m) {
			t.Fatalf("move %s is not legal in %v", str, pos)
		}
		next := pos.ApplyMove(m)
		pos = &next
	}
	return pos
}

func TestSFENRoundTrip(t *testing.T) {
	data := []string{
		SFENStartPos,
		"8k/9/6NS1/9/9/9/9/9/K8 b P 1",
		"lnsgkgsnl/1r5+B1/pppppp1pp/6p2/9/2P6/PP1PPPPPP/7R1/LNSGKGSNL w B 4",
		"4k4/9/9/9/9/9/9/4R4/K8 w - 10",
		"8k/9/9/9/9/9/9/9/K8 b R4G18P2r 1",
	}

	for i, d := range data {
		pos := mustPos(t, d)
		if got := pos.SFEN(); got != d {
			t.Errorf("#%d SFEN round trip %q -> %q", i, d, got)
		}
		if err := pos.Verify(); err != nil {
			t.Errorf("#%d Verify: %v", i, err)
		}
	}
}

func TestSFENRejects(t *testing.T) {
	data := []string{
		"",
		"lnsgkgsnl/1r5b1/ppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL",      // missing fields
		"lnsgkgsnl/1r5b1/ppppppppp/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL b - 1",  // eight ranks
		"lnsgkgsnl/1r5b1/pppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL b - 1", // ten files
		"lnsgxgsnl/1r5b1/ppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL b - 1", // bad piece
		"lnsg1gsnl/1r5b1/ppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL b - 1", // no white king
		"lnsgkgsnl/1r5b1/ppppppppp/9/4K4/9/PPPPPPPPP/1B5R1/LNSGKGSNL b - 1", // two black kings
		"lnsgkgsnl/1r5b1/ppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL x - 1",   // bad stm
		"8k/9/9/9/9/9/9/9/K8 b 19P 1", // over hand capacity
		"8k/9/9/9/9/9/9/9/K8 b 0P 1",  // zero count
		"8k/9/9/9/9/9/9/9/K8 b 2 1",   // dangling count
		"8k/9/9/9/9/9/9/9/K8 b P x",   // bad move counter
	}

	for i, d := range data {
		if _, err := PositionFromSFEN(d); err == nil {
			t.Errorf("#%d PositionFromSFEN(%q) should fail", i, d)
		}
	}
}

func TestStartPos(t *testing.T) {
	pos := StartPos()

	if pos.SideToMove() != Black || pos.MoveCount() != 1 {
		t.Fatalf("bad initial state")
	}
	if pos.Occupancy().Count() != 40 {
		t.Fatalf("startpos has %d pieces, want 40", pos.Occupancy().Count())
	}
	if pos.IsInCheck() {
		t.Fatalf("startpos is not a check")
	}
	if !pos.Pinned().IsEmpty() {
		t.Fatalf("startpos has no pins")
	}
	if err := pos.Verify(); err != nil {
		t.Fatal(err)
	}
}

// A bishop trade into the promotion zone: the captured bishop must
// show up unpromoted in black's hand and the mover as a horse on 2b.
func TestBishopTrade(t *testing.T) {
	pos := mustApply(t, StartPos(), "7g7f", "3c3d", "8h2b+")

	want := "lnsgkgsnl/1r5+B1/pppppp1pp/6p2/9/2P6/PP1PPPPPP/7R1/LNSGKGSNL w B 4"
	if got := pos.SFEN(); got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}

	if pos.Hand(Black).Count(Bishop) != 1 {
		t.Fatalf("black hand should hold the bishop")
	}
	horse := ColorPieceType(Black, PromotedBishop)
	if pos.PieceOn(sq(t, "2b")) != horse {
		t.Fatalf("expected a horse on 2b, got %v", pos.PieceOn(sq(t, "2b")))
	}
}

func TestApplyNullMove(t *testing.T) {
	pos := StartPos()
	null := pos.ApplyNullMove()

	if null.SideToMove() != White {
		t.Fatalf("null move did not flip the side to move")
	}
	if null.Key() == pos.Key() {
		t.Fatalf("null move did not change the key")
	}

	back := null.ApplyNullMove()
	if back.Key() != pos.Key() {
		t.Fatalf("two null moves did not restore the key")
	}
}

// randomPlayout plays up to plies random legal moves and calls check
// after every one.
func randomPlayout(t *testing.T, r *rand.Rand, plies int, check func(pos *Position)) {
	t.Helper()
	pos := *StartPos()

	for i := 0; i < plies; i++ {
		var list MoveList
		GenerateLegal(&list, &pos)
		if list.Len() == 0 {
			return
		}
		pos = pos.ApplyMove(list.Moves()[r.Intn(list.Len())])
		check(&pos)
	}
}

func TestKeyIncrementality(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for game := 0; game < 20; game++ {
		randomPlayout(t, r, 60, func(pos *Position) {
			regen := *pos
			regen.regenKey()
			if regen.key != pos.key {
				t.Fatalf("incremental key %x != regenerated %x in %v", pos.key, regen.key, pos)
			}
			// Regenerating twice is idempotent.
			again := regen
			again.regenKey()
			if again.key != regen.key {
				t.Fatalf("regenKey is not idempotent")
			}
		})
	}
}

func TestPlayoutInvariants(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	for game := 0; game < 20; game++ {
		randomPlayout(t, r, 60, func(pos *Position) {
			if err := pos.Verify(); err != nil {
				t.Fatalf("%v in %v", err, pos)
			}
			for c := Black; c <= White; c++ {
				if !pos.PieceBb(King, c).IsSingle() {
					t.Fatalf("%v has no single king in %v", c, pos)
				}
			}
		})
	}
}

func TestGeneratedMovesArePseudoLegal(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	for game := 0; game < 10; game++ {
		randomPlayout(t, r, 40, func(pos *Position) {
			var list MoveList
			GenerateAll(&list, pos)
			for _, m := range list.Moves() {
				if !pos.IsPseudoLegal(m) {
					t.Fatalf("generated move %v is not pseudo-legal in %v", m, pos)
				}
			}

			var captures MoveList
			GenerateCaptures(&captures, pos)
			for _, m := range captures.Moves() {
				if !pos.IsCapture(m) {
					t.Fatalf("generated capture %v does not capture in %v", m, pos)
				}
				if !pos.IsPseudoLegal(m) {
					t.Fatalf("generated capture %v is not pseudo-legal in %v", m, pos)
				}
			}
		})
	}
}

func TestCheckersAndPins(t *testing.T) {
	// A black rook on 5h checks the white king on 5a.
	pos := mustPos(t, "4k4/9/9/9/9/9/9/4R4/K8 w - 1")
	if !pos.IsInCheck() {
		t.Fatalf("white should be in check")
	}
	if pos.Checkers() != sqs(t, "5h") {
		t.Fatalf("checkers =\n%v want 5h", pos.Checkers())
	}

	// The white pawn on 5c is pinned by the rook once it blocks.
	pos = mustPos(t, "4k4/9/4p4/9/9/9/9/4R4/K8 w - 1")
	if pos.IsInCheck() {
		t.Fatalf("the pawn blocks the check")
	}
	if pos.Pinned() != sqs(t, "5c") {
		t.Fatalf("pinned =\n%v want 5c", pos.Pinned())
	}

	// A pinned pawn may push along the pin ray but a pinned bishop
	// may not leave it.
	if m, _ := MoveFromString("5c5d"); !pos.IsLegal(m) {
		t.Fatalf("pushing along the pin ray is legal")
	}

	pos = mustPos(t, "4k4/9/4b4/9/9/9/9/4R4/K8 w - 1")
	if pos.Pinned() != sqs(t, "5c") {
		t.Fatalf("pinned =\n%v want 5c", pos.Pinned())
	}
	if m, _ := MoveFromString("5c4d"); pos.IsLegal(m) {
		t.Fatalf("a pinned bishop may not leave the ray")
	}
}

func TestDoubleCheckOnlyKingMoves(t *testing.T) {
	// White king on 5a checked by both the rook on 5h and the bishop
	// on 8d.
	pos := mustPos(t, "4k4/9/9/1B7/9/9/9/4R4/K8 w - 1")
	if !pos.Checkers().HasMultiple() {
		t.Fatalf("expected a double check, checkers =\n%v", pos.Checkers())
	}

	var list MoveList
	GenerateAll(&list, pos)
	for _, m := range list.Moves() {
		if m.IsDrop() || pos.PieceOn(m.From()).Type() != King {
			t.Fatalf("generated non-king move %v in double check", m)
		}
	}
}

func TestSennichitePerpetual(t *testing.T) {
	// The black rook chases the white king between 5a and 4a with
	// checks until the initial position occurs a fourth time.
	pos := mustPos(t, "4k4/9/9/9/9/9/9/4R4/K8 w - 1")

	var history []uint64
	p := *pos
	cycle := []string{"5a4a", "5h4h", "4a5a", "4h5h"}

	for round := 0; round < 3; round++ {
		for _, str := range cycle {
			m, err := MoveFromString(str)
			if err != nil {
				t.Fatal(err)
			}
			if !p.IsPseudoLegal(m) || !p.IsLegal(m) {
				t.Fatalf("move %s is not legal", str)
			}
			history = append(history, p.Key())
			p = p.ApplyMove(m)
		}

		status := p.TestSennichite(false, history)
		switch round {
		case 0, 1:
			if status != SennichiteNone {
				t.Fatalf("round %d: status = %v, want none", round, status)
			}
		case 2:
			// Fourth occurrence: white is perpetually checked, so the
			// repetition is a win for white.
			if status != SennichiteWin {
				t.Fatalf("round %d: status = %v, want win", round, status)
			}
			if compat := p.TestSennichite(true, history); compat != SennichiteWin {
				t.Fatalf("compat status = %v, want win", compat)
			}
		}
	}
}

func TestSennichiteDraw(t *testing.T) {
	// Both kings shuffle in their corners: a plain draw.
	pos := mustPos(t, "8k/9/9/9/9/9/9/9/K8 b - 1")

	var history []uint64
	p := *pos
	cycle := []string{"9i9h", "1a1b", "9h9i", "1b1a"}

	for round := 0; round < 3; round++ {
		for _, str := range cycle {
			m, _ := MoveFromString(str)
			history = append(history, p.Key())
			p = p.ApplyMove(m)
		}
	}

	if status := p.TestSennichite(false, history); status != SennichiteDraw {
		t.Fatalf("status = %v, want draw", status)
	}
	if status := p.TestSennichite(true, history); status != SennichiteDraw {
		t.Fatalf("compat status = %v, want draw", status)
	}
}

func TestPawnDropMate(t *testing.T) {
	// P*1b would mate the white king on 1a: the silver on 2c guards
	// both 1b and 2b, the knight on 3c guards 2a.
	pos := mustPos(t, "8k/9/6NS1/9/9/9/9/9/K8 b P 1")

	mate, _ := MoveFromString("P*1b")
	if !pos.IsPseudoLegal(mate) {
		t.Fatalf("P*1b should be pseudo-legal")
	}
	if pos.IsLegal(mate) {
		t.Fatalf("a pawn drop delivering mate must be rejected")
	}

	// Pawn drops that give no check stay legal.
	for _, str := range []string{"P*5e", "P*9b"} {
		m, _ := MoveFromString(str)
		if !pos.IsPseudoLegal(m) || !pos.IsLegal(m) {
			t.Fatalf("%s should be legal", str)
		}
	}
}

func TestNifu(t *testing.T) {
	// Black holds a pawn and has an unpromoted pawn on the 5 file.
	pos := mustPos(t, "8k/9/9/9/9/9/4P4/9/K8 b P 1")

	// 5e shares the file with the unpromoted pawn on 5g.
	if m, _ := MoveFromString("P*5e"); pos.IsPseudoLegal(m) {
		t.Fatalf("nifu drop should be rejected")
	}
	// The 4 file is free.
	if m, _ := MoveFromString("P*4e"); !pos.IsPseudoLegal(m) {
		t.Fatalf("drop on a free file should be pseudo-legal")
	}

	// A promoted pawn does not block the drop.
	pos = mustPos(t, "8k/9/9/9/9/9/4+P4/9/K8 b P 1")
	if m, _ := MoveFromString("P*5e"); !pos.IsPseudoLegal(m) {
		t.Fatalf("a tokin does not count for nifu")
	}
}

func TestForcedPromotionRejected(t *testing.T) {
	// A black pawn on 5b may only move to 5a promoting.
	pos := mustPos(t, "6k2/4P4/9/9/9/9/9/9/K8 b - 1")

	if m, _ := MoveFromString("5b5a"); pos.IsPseudoLegal(m) {
		t.Fatalf("a pawn may not stay unpromoted on the last rank")
	}
	if m, _ := MoveFromString("5b5a+"); !pos.IsPseudoLegal(m) {
		t.Fatalf("the promoting push should be pseudo-legal")
	}

	var list MoveList
	GenerateAll(&list, pos)
	for _, m := range list.Moves() {
		if m.IsDrop() || pos.PieceOn(m.From()).Type() != Pawn {
			continue
		}
		if m.To().Rank() == 8 && !m.IsPromo() {
			t.Fatalf("generated a non-promoting pawn move to the last rank: %v", m)
		}
	}
}

func TestLegalImpliesPseudoLegal(t *testing.T) {
	r := rand.New(rand.NewSource(6))
	for game := 0; game < 10; game++ {
		randomPlayout(t, r, 40, func(pos *Position) {
			var list MoveList
			GenerateLegal(&list, pos)
			for _, m := range list.Moves() {
				if !pos.IsPseudoLegal(m) {
					t.Fatalf("legal move %v is not pseudo-legal in %v", m, pos)
				}
			}
		})
	}
}
