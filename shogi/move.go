// Copyright 2014-2016 The Zurichess Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// move.go defines the packed move encoding.

package shogi

import "fmt"

// Move is a packed 16-bit move.
//
// Bit representation
//
//	normal: 007f - to, 3f80 - from, 4000 - promotion flag
//	drop:   007f - to, 0380 - drop piece index, 8000 - drop flag
//
// The all-zero value is the null move.
type Move uint16

// NullMove is a move that does nothing. Has value 0.
const NullMove = Move(0)

const (
	moveToShift        = 0
	moveFromShift      = 7
	movePromoFlag      = 1 << 14
	moveDropPieceShift = 7
	moveDropFlag       = 1 << 15

	moveSquareMask    = 0x7f
	moveDropPieceMask = 0x7
)

var dropPieceIndex = [PieceTypeArraySize]int8{
	Pawn: 0, Lance: 1, Knight: 2, Silver: 3, Gold: 4, Bishop: 5, Rook: 6,
	PromotedPawn: -1, PromotedLance: -1, PromotedKnight: -1,
	PromotedSilver: -1, PromotedBishop: -1, PromotedRook: -1, King: -1,
}

// MakeMove constructs a normal board move.
func MakeMove(from, to Square) Move {
	return Move(to)<<moveToShift | Move(from)<<moveFromShift
}

// MakePromotion constructs a board move with promotion.
func MakePromotion(from, to Square) Move {
	return MakeMove(from, to) | movePromoFlag
}

// MakeDrop constructs a drop of pt onto to.
func MakeDrop(pt PieceType, to Square) Move {
	return Move(to)<<moveToShift | Move(dropPieceIndex[pt])<<moveDropPieceShift | moveDropFlag
}

// IsDrop returns true if m drops a piece from hand.
func (m Move) IsDrop() bool {
	return m&moveDropFlag != 0
}

// IsPromo returns true if m promotes the moving piece.
// Only meaningful for board moves.
func (m Move) IsPromo() bool {
	return !m.IsDrop() && m&movePromoFlag != 0
}

// From returns the starting square of a board move.
func (m Move) From() Square {
	return Square(m >> moveFromShift & moveSquareMask)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square(m >> moveToShift & moveSquareMask)
}

// DropPiece returns the dropped piece type of a drop move.
func (m Move) DropPiece() PieceType {
	return HandTypes[m>>moveDropPieceShift&moveDropPieceMask]
}

// IsNull returns true for the null move.
func (m Move) IsNull() bool {
	return m == NullMove
}

// String formats m in USI notation: "7g7f", "8h2b+", "P*5e".
func (m Move) String() string {
	if m.IsNull() {
		return "0000"
	}
	if m.IsDrop() {
		return m.DropPiece().String() + "*" + m.To().String()
	}
	s := m.From().String() + m.To().String()
	if m.IsPromo() {
		s += "+"
	}
	return s
}

// MoveFromString parses a move in USI notation.
func MoveFromString(s string) (Move, error) {
	if len(s) < 4 || len(s) > 5 {
		return NullMove, fmt.Errorf("invalid move %q", s)
	}

	if s[1] == '*' {
		if len(s) != 4 {
			return NullMove, fmt.Errorf("invalid drop %q", s)
		}
		pt := PieceTypeFromChar(s[0])
		if pt == NoPieceType || pt == King || dropPieceIndex[pt] < 0 {
			return NullMove, fmt.Errorf("invalid drop piece in %q", s)
		}
		to, err := SquareFromString(s[2:4])
		if err != nil {
			return NullMove, err
		}
		return MakeDrop(pt, to), nil
	}

	if len(s) == 5 && s[4] != '+' {
		return NullMove, fmt.Errorf("invalid move suffix in %q", s)
	}

	from, err := SquareFromString(s[0:2])
	if err != nil {
		return NullMove, err
	}
	to, err := SquareFromString(s[2:4])
	if err != nil {
		return NullMove, err
	}

	if len(s) == 5 {
		return MakePromotion(from, to), nil
	}
	return MakeMove(from, to), nil
}
