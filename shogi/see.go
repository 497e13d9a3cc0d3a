// Copyright 2014-2016 The Zurichess Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// see.go implements the static exchange evaluator.

package shogi

// Piece values shared by the exchange evaluator and the material
// evaluation. The same table must be used everywhere in the engine.
const (
	PawnValue           = 100
	LanceValue          = 400
	KnightValue         = 500
	SilverValue         = 600
	GoldValue           = 800
	BishopValue         = 1100
	RookValue           = 1300
	PromotedPawnValue   = 1000
	PromotedLanceValue  = 900
	PromotedKnightValue = 900
	PromotedSilverValue = 800
	PromotedBishopValue = 1500
	PromotedRookValue   = 1700
)

var pieceValues = [PieceTypeArraySize + 1]int32{
	Pawn:           PawnValue,
	PromotedPawn:   PromotedPawnValue,
	Lance:          LanceValue,
	Knight:         KnightValue,
	PromotedLance:  PromotedLanceValue,
	PromotedKnight: PromotedKnightValue,
	Silver:         SilverValue,
	PromotedSilver: PromotedSilverValue,
	Gold:           GoldValue,
	Bishop:         BishopValue,
	Rook:           RookValue,
	PromotedBishop: PromotedBishopValue,
	PromotedRook:   PromotedRookValue,
	King:           0,
	NoPieceType:    0,
}

// PieceValue returns the exchange value of pt.
func PieceValue(pt PieceType) int32 {
	return pieceValues[pt]
}

// seeOrder lists the piece types in ascending order of value,
// tiebroken by id, with the king last.
var seeOrder = [PieceTypeArraySize]PieceType{
	Pawn, Lance, Knight, Silver, PromotedSilver, Gold,
	PromotedLance, PromotedKnight, PromotedPawn,
	Bishop, Rook, PromotedBishop, PromotedRook, King,
}

// seeGain is the immediate material gain of the move: the captured
// piece plus the promotion bonus. A drop "gains" the dropped piece,
// which cancels against its value as the first piece on the square.
func seeGain(pos *Position, m Move) int32 {
	if m.IsDrop() {
		return PieceValue(m.DropPiece())
	}

	gain := PieceValue(pos.PieceOn(m.To()).Type())
	if m.IsPromo() {
		moving := pos.PieceOn(m.From()).Type()
		gain += PieceValue(moving.Promoted()) - PieceValue(moving)
	}
	return gain
}

// popLeastValuable removes c's least valuable attacker from occ and
// returns its type, or NoPieceType when c has no attackers left.
func popLeastValuable(pos *Position, occ *Bitboard, attackers Bitboard, c Color) PieceType {
	for _, pt := range seeOrder {
		ptAttackers := attackers.And(pos.PieceBb(pt, c))
		if !ptAttackers.IsEmpty() {
			*occ = occ.Xor(ptAttackers.IsolateLSB())
			return pt
		}
	}
	return NoPieceType
}

func seeMovesDiagonally(pt PieceType) bool {
	switch pt {
	case PromotedLance, PromotedKnight, Silver, PromotedSilver, Gold,
		Bishop, PromotedBishop, PromotedRook:
		return true
	}
	return false
}

func seeMovesOrthogonally(pt PieceType) bool {
	switch pt {
	case Pawn, Lance, PromotedLance, PromotedKnight, Silver, PromotedSilver,
		Gold, Rook, PromotedBishop, PromotedRook:
		return true
	}
	return false
}

// See returns true if the side to move comes out of the exchange on
// m's destination square at least threshold material ahead, assuming
// both sides always recapture with their least valuable attacker.
func See(pos *Position, m Move, threshold int32) bool {
	stm := pos.SideToMove()

	score := seeGain(pos, m) - threshold
	if score < 0 {
		return false
	}

	var next PieceType
	if m.IsDrop() {
		next = m.DropPiece()
	} else {
		next = pos.PieceOn(m.From()).Type()
	}

	score -= PieceValue(next)
	if score >= 0 {
		return true
	}

	sq := m.To()
	occ := pos.Occupancy().WithoutSquare(sq)
	if !m.IsDrop() {
		occ = occ.WithoutSquare(m.From())
	}

	bishops := pos.ByType(Bishop).Or(pos.ByType(PromotedBishop))
	rooks := pos.ByType(Rook).Or(pos.ByType(PromotedRook))

	attackers := pos.allAttackersTo(sq, occ)
	curr := stm.Flip()

	for {
		currAttackers := attackers.And(pos.ByColor(curr))
		if currAttackers.IsEmpty() {
			break
		}

		next = popLeastValuable(pos, &occ, currAttackers, curr)

		// Capturing may reveal an x-ray attacker through the vacated
		// square.
		if seeMovesDiagonally(next) {
			attackers = attackers.Or(BishopAttacks(sq, occ).And(bishops))
		}
		if seeMovesOrthogonally(next) {
			attackers = attackers.Or(RookAttacks(sq, occ).And(rooks))
		}
		attackers = attackers.And(occ)

		score = -score - 1 - PieceValue(next)
		curr = curr.Flip()

		if score >= 0 {
			if next == King && !attackers.And(pos.ByColor(curr)).IsEmpty() {
				// The king cannot recapture into a defended square.
				curr = curr.Flip()
			}
			break
		}
	}

	return curr != stm
}
