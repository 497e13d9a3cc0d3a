// Copyright 2014-2016 The Zurichess Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// movegen.go generates pseudo-legal moves.
//
// Generation is bitboard driven, one family of piece types at a time,
// over a destination mask derived from the request: every square not
// occupied by the mover's own pieces for the full set, enemy occupancy
// for captures, a single square for recaptures. When the side to move
// is in check the mask of non-king pieces is narrowed to the check ray
// and drops to the blocking squares only.

package shogi

// MaxMoves bounds the number of pseudo-legal moves in any position.
const MaxMoves = 600

// MoveList is a fixed-capacity list of moves.
type MoveList struct {
	moves [MaxMoves]Move
	size  int
}

// Push appends m to the list.
func (l *MoveList) Push(m Move) {
	l.moves[l.size] = m
	l.size++
}

// Moves returns the moves pushed so far.
func (l *MoveList) Moves() []Move {
	return l.moves[:l.size]
}

// Len returns the number of moves in the list.
func (l *MoveList) Len() int {
	return l.size
}

// Clear empties the list.
func (l *MoveList) Clear() {
	l.size = 0
}

func serializeNormals(dst *MoveList, from Square, attacks Bitboard) {
	for !attacks.IsEmpty() {
		dst.Push(MakeMove(from, attacks.Pop()))
	}
}

func serializePromotions(dst *MoveList, from Square, attacks Bitboard) {
	for !attacks.IsEmpty() {
		dst.Push(MakePromotion(from, attacks.Pop()))
	}
}

func serializeDrops(dst *MoveList, pt PieceType, targets Bitboard) {
	for !targets.IsEmpty() {
		dst.Push(MakeDrop(pt, targets.Pop()))
	}
}

// genPawns generates pawn pushes. The push onto the promotion zone is
// emitted promoting; the non-promoting variant everywhere but the last
// rank.
func genPawns(dst *MoveList, pos *Position, mask Bitboard) {
	us := pos.SideToMove()
	shifted := pos.PieceBb(Pawn, us).Forward(us).And(mask)

	promos := shifted.And(PromoZoneBb(us))
	nonPromos := shifted.AndNot(RelativeRankBb(us, 8))

	offset := 9
	if us == White {
		offset = -9
	}

	for !promos.IsEmpty() {
		to := promos.Pop()
		dst.Push(MakePromotion(Square(int(to)-offset), to))
	}
	for !nonPromos.IsEmpty() {
		to := nonPromos.Pop()
		dst.Push(MakeMove(Square(int(to)-offset), to))
	}
}

func genLances(dst *MoveList, pos *Position, mask Bitboard) {
	us := pos.SideToMove()
	occ := pos.Occupancy()
	zone := PromoZoneBb(us)

	for lances := pos.PieceBb(Lance, us); !lances.IsEmpty(); {
		from := lances.Pop()
		attacks := LanceAttacks(us, from, occ).And(mask)
		serializePromotions(dst, from, attacks.And(zone))
		serializeNormals(dst, from, attacks.AndNot(RelativeRankBb(us, 8)))
	}
}

func genKnights(dst *MoveList, pos *Position, mask Bitboard) {
	us := pos.SideToMove()
	zone := PromoZoneBb(us)
	forced := RelativeRankBb(us, 8).Or(RelativeRankBb(us, 7))

	for knights := pos.PieceBb(Knight, us); !knights.IsEmpty(); {
		from := knights.Pop()
		attacks := KnightAttacks(us, from).And(mask)
		serializePromotions(dst, from, attacks.And(zone))
		serializeNormals(dst, from, attacks.AndNot(forced))
	}
}

// genSilvers generates silver moves. A silver promotes when moving
// into, inside, or out of the promotion zone and is never forced to.
func genSilvers(dst *MoveList, pos *Position, mask Bitboard) {
	us := pos.SideToMove()
	zone := PromoZoneBb(us)

	for silvers := pos.PieceBb(Silver, us); !silvers.IsEmpty(); {
		from := silvers.Pop()
		attacks := SilverAttacks(us, from).And(mask)
		if zone.Has(from) {
			serializePromotions(dst, from, attacks)
		} else {
			serializePromotions(dst, from, attacks.And(zone))
		}
		serializeNormals(dst, from, attacks)
	}
}

// genGolds also moves the promoted minors, which attack like gold.
func genGolds(dst *MoveList, pos *Position, mask Bitboard) {
	us := pos.SideToMove()

	for golds := pos.GoldsBb(us); !golds.IsEmpty(); {
		from := golds.Pop()
		serializeNormals(dst, from, GoldAttacks(us, from).And(mask))
	}
}

func genSliders(dst *MoveList, pos *Position, pt PieceType, mask Bitboard) {
	us := pos.SideToMove()
	occ := pos.Occupancy()
	zone := PromoZoneBb(us)

	for sliders := pos.PieceBb(pt, us); !sliders.IsEmpty(); {
		from := sliders.Pop()
		attacks := PieceAttacks(pt, us, from, occ).And(mask)
		if pt == Bishop || pt == Rook {
			if zone.Has(from) {
				serializePromotions(dst, from, attacks)
			} else {
				serializePromotions(dst, from, attacks.And(zone))
			}
		}
		serializeNormals(dst, from, attacks)
	}
}

func genKing(dst *MoveList, pos *Position, mask Bitboard) {
	from := pos.King(pos.SideToMove())
	serializeNormals(dst, from, KingAttacks(from).And(mask))
}

// genDrops drops every available hand type onto the target squares,
// honoring the forced-promotion ranks and the one-pawn-per-file rule.
func genDrops(dst *MoveList, pos *Position, targets Bitboard) {
	us := pos.SideToMove()
	hand := pos.Hand(us)

	gen := func(pt PieceType, restriction Bitboard) {
		if hand.Count(pt) > 0 {
			serializeDrops(dst, pt, targets.And(restriction))
		}
	}

	gen(Pawn, RelativeRankBb(us, 8).Not().AndNot(pos.PieceBb(Pawn, us).FillFile()))
	gen(Lance, RelativeRankBb(us, 8).Not())
	gen(Knight, RelativeRankBb(us, 8).Or(RelativeRankBb(us, 7)).Not())
	gen(Silver, BbFull)
	gen(Gold, BbFull)
	gen(Bishop, BbFull)
	gen(Rook, BbFull)
}

// generate produces all pseudo-legal moves whose destination is inside
// mask, with the check-evasion overlay applied.
func generate(dst *MoveList, pos *Position, mask Bitboard) {
	us := pos.SideToMove()

	kingMask := mask
	pieceMask := mask
	dropMask := mask.AndNot(pos.Occupancy())

	if pos.IsInCheck() {
		if pos.Checkers().HasMultiple() {
			// Double check: only the king moves.
			genKing(dst, pos, kingMask)
			return
		}
		checker := pos.Checkers().LSB()
		ray := Between(pos.King(us), checker)
		pieceMask = pieceMask.And(ray.WithSquare(checker))
		dropMask = dropMask.And(ray)
	}

	genPawns(dst, pos, pieceMask)
	genLances(dst, pos, pieceMask)
	genKnights(dst, pos, pieceMask)
	genSilvers(dst, pos, pieceMask)
	genGolds(dst, pos, pieceMask)
	genSliders(dst, pos, Bishop, pieceMask)
	genSliders(dst, pos, Rook, pieceMask)
	genSliders(dst, pos, PromotedBishop, pieceMask)
	genSliders(dst, pos, PromotedRook, pieceMask)
	genKing(dst, pos, kingMask)

	genDrops(dst, pos, dropMask)
}

// GenerateAll appends every pseudo-legal move to dst.
func GenerateAll(dst *MoveList, pos *Position) {
	generate(dst, pos, pos.ByColor(pos.SideToMove()).Not())
}

// GenerateCaptures appends the pseudo-legal moves that take a piece.
func GenerateCaptures(dst *MoveList, pos *Position) {
	generate(dst, pos, pos.ByColor(pos.SideToMove().Flip()))
}

// GenerateRecaptures appends the pseudo-legal captures on captureSq.
func GenerateRecaptures(dst *MoveList, pos *Position, captureSq Square) {
	generate(dst, pos, captureSq.Bitboard().And(pos.ByColor(pos.SideToMove().Flip())))
}

// GenerateLegal appends the legal moves to dst.
func GenerateLegal(dst *MoveList, pos *Position) {
	var generated MoveList
	GenerateAll(&generated, pos)
	for _, m := range generated.Moves() {
		if pos.IsLegal(m) {
			dst.Push(m)
		}
	}
}
