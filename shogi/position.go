// Copyright 2014-2016 The Zurichess Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// position.go implements the game state and its mutation contracts.

package shogi

import "fmt"

// SennichiteStatus is the verdict of the fourfold repetition test.
type SennichiteStatus uint8

const (
	// SennichiteNone means the position is not a repetition.
	SennichiteNone SennichiteStatus = iota
	// SennichiteDraw is an ordinary fourfold repetition.
	SennichiteDraw
	// SennichiteWin is a repetition under perpetual check: the side
	// to move wins because the checking side loses the game.
	SennichiteWin
)

// Position is the full game state. It is a value type: ApplyMove and
// ApplyNullMove return a new Position and never mutate the receiver.
type Position struct {
	byColor [ColorArraySize]Bitboard
	byType  [PieceTypeArraySize]Bitboard
	mailbox [SquareArraySize]Piece
	hands   [ColorArraySize]Hand

	sideToMove Color
	moveCount  uint16
	key        uint64

	checkers Bitboard
	pinned   Bitboard

	consecutiveChecks [ColorArraySize]uint16
}

// NewPosition returns a position with an empty board.
func NewPosition() *Position {
	pos := &Position{moveCount: 1}
	for sq := range pos.mailbox {
		pos.mailbox[sq] = NoPiece
	}
	return pos
}

// Occupancy returns the set of all occupied squares.
func (pos *Position) Occupancy() Bitboard {
	return pos.byColor[Black].Or(pos.byColor[White])
}

// ByColor returns the set of squares occupied by col.
func (pos *Position) ByColor(col Color) Bitboard {
	return pos.byColor[col]
}

// ByType returns the set of squares occupied by pieces of type pt.
func (pos *Position) ByType(pt PieceType) Bitboard {
	return pos.byType[pt]
}

// PieceBb returns the set of squares holding col pieces of type pt.
func (pos *Position) PieceBb(pt PieceType, col Color) Bitboard {
	return pos.byColor[col].And(pos.byType[pt])
}

// GoldsBb returns col's golds together with the promoted minors that
// attack like gold.
func (pos *Position) GoldsBb(col Color) Bitboard {
	golds := pos.byType[Gold].Or(pos.byType[PromotedPawn]).Or(pos.byType[PromotedLance])
	golds = golds.Or(pos.byType[PromotedKnight]).Or(pos.byType[PromotedSilver])
	return golds.And(pos.byColor[col])
}

// PieceOn returns the piece at sq, or NoPiece.
func (pos *Position) PieceOn(sq Square) Piece {
	return pos.mailbox[sq]
}

// IsEmpty returns true if there is no piece at sq.
func (pos *Position) IsEmpty(sq Square) bool {
	return pos.mailbox[sq] == NoPiece
}

// King returns the square of col's king.
func (pos *Position) King(col Color) Square {
	return pos.PieceBb(King, col).LSB()
}

// SideToMove returns the color to play.
func (pos *Position) SideToMove() Color {
	return pos.sideToMove
}

// MoveCount returns the ply counter, starting at 1.
func (pos *Position) MoveCount() int {
	return int(pos.moveCount)
}

// Key returns the Zobrist key of the position.
func (pos *Position) Key() uint64 {
	return pos.key
}

// Hand returns col's captured pieces.
func (pos *Position) Hand(col Color) Hand {
	return pos.hands[col]
}

// Checkers returns the enemy pieces attacking the side to move's king.
func (pos *Position) Checkers() Bitboard {
	return pos.checkers
}

// Pinned returns the side to move's pieces that may not leave the ray
// to their own king.
func (pos *Position) Pinned() Bitboard {
	return pos.pinned
}

// IsInCheck returns true if the side to move's king is attacked.
func (pos *Position) IsInCheck() bool {
	return !pos.checkers.IsEmpty()
}

// ConsecutiveChecks returns for how many of col's consecutive turns
// col has been in check.
func (pos *Position) ConsecutiveChecks(col Color) int {
	return int(pos.consecutiveChecks[col])
}

// addPiece puts piece on the empty square sq, updating bitboards,
// mailbox and key.
func (pos *Position) addPiece(sq Square, piece Piece) {
	if pos.mailbox[sq] != NoPiece {
		panic(fmt.Sprintf("addPiece: %v is occupied", sq))
	}

	bb := sq.Bitboard()
	pos.byColor[piece.Color()] = pos.byColor[piece.Color()].Or(bb)
	pos.byType[piece.Type()] = pos.byType[piece.Type()].Or(bb)
	pos.mailbox[sq] = piece
	pos.key ^= zobristPiece[piece][sq]
}

// capturePiece removes the enemy piece on to, moving it unpromoted
// into the capturing side's hand.
func (pos *Position) capturePiece(to Square, captured Piece) {
	if captured.Type() == King || captured.Color() == pos.sideToMove {
		panic(fmt.Sprintf("capturePiece: cannot capture %v on %v", captured, to))
	}

	bb := to.Bitboard()
	pos.byColor[captured.Color()] = pos.byColor[captured.Color()].Xor(bb)
	pos.byType[captured.Type()] = pos.byType[captured.Type()].Xor(bb)
	pos.key ^= zobristPiece[captured][to]

	us := captured.Color().Flip()
	handPt := captured.Type().Unpromoted()
	count := pos.hands[us].Increment(handPt)
	pos.key ^= zobristHand[us][handPt][count-1] ^ zobristHand[us][handPt][count]
}

// movePiece moves piece from from to to, capturing whatever occupies to.
func (pos *Position) movePiece(from, to Square, piece Piece) {
	if captured := pos.mailbox[to]; captured != NoPiece {
		pos.capturePiece(to, captured)
	}

	bb := from.Bitboard().Xor(to.Bitboard())
	pos.byColor[piece.Color()] = pos.byColor[piece.Color()].Xor(bb)
	pos.byType[piece.Type()] = pos.byType[piece.Type()].Xor(bb)

	pos.mailbox[from] = NoPiece
	pos.mailbox[to] = piece

	pos.key ^= zobristPiece[piece][from] ^ zobristPiece[piece][to]
}

// promotePiece moves piece from from to to like movePiece, changing it
// into its promoted form on arrival.
func (pos *Position) promotePiece(from, to Square, piece Piece) {
	if captured := pos.mailbox[to]; captured != NoPiece {
		pos.capturePiece(to, captured)
	}

	promoted := piece.Promoted()

	pos.byColor[piece.Color()] = pos.byColor[piece.Color()].Xor(from.Bitboard().Xor(to.Bitboard()))
	pos.byType[piece.Type()] = pos.byType[piece.Type()].Xor(from.Bitboard())
	pos.byType[promoted.Type()] = pos.byType[promoted.Type()].Xor(to.Bitboard())

	pos.mailbox[from] = NoPiece
	pos.mailbox[to] = promoted

	pos.key ^= zobristPiece[piece][from] ^ zobristPiece[promoted][to]
}

// dropPiece takes piece from its owner's hand and puts it on sq.
func (pos *Position) dropPiece(sq Square, piece Piece) {
	us := piece.Color()
	if pos.hands[us].Count(piece.Type()) == 0 {
		panic(fmt.Sprintf("dropPiece: no %v in hand", piece))
	}

	pos.addPiece(sq, piece)

	count := pos.hands[us].Decrement(piece.Type())
	pos.key ^= zobristHand[us][piece.Type()][count+1] ^ zobristHand[us][piece.Type()][count]
}

// ApplyMove returns the position after playing m. m must be legal.
func (pos *Position) ApplyMove(m Move) Position {
	next := *pos
	us := pos.sideToMove

	if m.IsDrop() {
		next.dropPiece(m.To(), ColorPieceType(us, m.DropPiece()))
	} else {
		piece := next.mailbox[m.From()]
		if m.IsPromo() {
			next.promotePiece(m.From(), m.To(), piece)
		} else {
			next.movePiece(m.From(), m.To(), piece)
		}
	}

	next.moveCount++
	next.sideToMove = us.Flip()
	next.key ^= zobristStm

	next.updateAttacks()

	if next.IsInCheck() {
		next.consecutiveChecks[next.sideToMove]++
	} else {
		next.consecutiveChecks[next.sideToMove] = 0
	}

	return next
}

// ApplyNullMove returns the position with only the side to move
// flipped. The consecutive check counters are left alone.
func (pos *Position) ApplyNullMove() Position {
	next := *pos
	next.moveCount++
	next.sideToMove = next.sideToMove.Flip()
	next.key ^= zobristStm
	next.updateAttacks()
	return next
}

// TestSennichite decides whether the position is a fourfold
// repetition. keyHistory holds the keys of all prior positions up to
// and including the parent of this one. compat selects the reporting
// used for hosts that cannot handle perpetual-check losses.
func (pos *Position) TestSennichite(compat bool, keyHistory []uint64) SennichiteStatus {
	repetitions := 0
	for i := len(keyHistory) - 4; i >= 0; i -= 2 {
		if keyHistory[i] != pos.key {
			continue
		}
		if repetitions++; repetitions < 3 {
			continue
		}
		if compat {
			// The compat verdict looks only at the current position: a
			// repetition with the side to move in check is a win for
			// it, any other repetition a draw.
			if pos.IsInCheck() {
				return SennichiteWin
			}
			return SennichiteDraw
		}
		if pos.consecutiveChecks[pos.sideToMove] >= 2 {
			return SennichiteWin
		}
		return SennichiteDraw
	}
	return SennichiteNone
}

// promoRequiredZone returns the squares where an unpromoted pt could
// never move again: the last rank for pawns and lances, the last two
// ranks for knights.
func promoRequiredZone(c Color, pt PieceType) Bitboard {
	switch pt {
	case Pawn, Lance:
		return RelativeRankBb(c, 8)
	case Knight:
		return RelativeRankBb(c, 8).Or(RelativeRankBb(c, 7))
	}
	return BbEmpty
}

// IsPseudoLegal performs the fast validity check used on moves of
// unknown provenance, e.g. from the transposition table. It does not
// test whether the king is left in check.
func (pos *Position) IsPseudoLegal(m Move) bool {
	if m.IsNull() {
		return false
	}

	us := pos.sideToMove
	occ := pos.Occupancy()

	if m.IsDrop() {
		pt := m.DropPiece()
		if pos.hands[us].Count(pt) == 0 {
			return false
		}
		if occ.Has(m.To()) {
			return false
		}
		if promoRequiredZone(us, pt).Has(m.To()) {
			return false
		}
		if pt == Pawn && pos.PieceBb(Pawn, us).FillFile().Has(m.To()) {
			return false
		}
		return true
	}

	moving := pos.mailbox[m.From()]
	if moving == NoPiece || moving.Color() != us {
		return false
	}

	if captured := pos.mailbox[m.To()]; captured != NoPiece {
		if captured.Color() == us || captured.Type() == King {
			return false
		}
	}

	if m.IsPromo() {
		if !moving.Type().CanPromote() {
			return false
		}
		zone := PromoZoneBb(us)
		if !zone.Has(m.From()) && !zone.Has(m.To()) {
			return false
		}
	} else if promoRequiredZone(us, moving.Type()).Has(m.To()) {
		return false
	}

	return PieceAttacks(moving.Type(), us, m.From(), occ).Has(m.To())
}

// IsLegal decides whether the pseudo-legal move m leaves the mover's
// king safe. It also enforces the pawn-drop-mate rule.
func (pos *Position) IsLegal(m Move) bool {
	us := pos.sideToMove
	them := us.Flip()
	king := pos.King(us)

	if m.IsDrop() {
		if pos.IsInCheck() {
			// Multiple checks can only be evaded with a king move.
			if pos.checkers.HasMultiple() {
				return false
			}
			checker := pos.checkers.LSB()
			if !Between(king, checker).Has(m.To()) {
				return false
			}
		}

		// Delivering mate by dropping a pawn is illegal.
		if m.DropPiece() == Pawn {
			dropBb := m.To().Bitboard()
			if !dropBb.Forward(us).And(pos.PieceBb(King, them)).IsEmpty() {
				// The drop gives check. Slow and cursed, but rare.
				next := pos.ApplyMove(m)
				var moves MoveList
				GenerateAll(&moves, &next)
				for _, reply := range moves.Moves() {
					if next.IsLegal(reply) {
						return true
					}
				}
				return false
			}
		}

		// Dropping a piece can never expose one's own king.
		return true
	}

	if pos.mailbox[m.From()].Type() == King {
		// Remove the king to account for moving away from the checker.
		kinglessOcc := pos.Occupancy().Xor(pos.PieceBb(King, us))
		return !pos.isAttacked(m.To(), them, kinglessOcc)
	}
	if pos.checkers.HasMultiple() {
		return false
	}

	if pos.pinned.Has(m.From()) && !Line(m.From(), king).Has(m.To()) {
		return false
	}

	if pos.IsInCheck() {
		checker := pos.checkers.LSB()
		if !Between(king, checker).WithSquare(checker).Has(m.To()) {
			return false
		}
	}

	return true
}

// IsCapture returns true if m takes a piece.
func (pos *Position) IsCapture(m Move) bool {
	return !m.IsDrop() && pos.mailbox[m.To()] != NoPiece
}

// isAttacked returns true if any attacker piece attacks sq through the
// given occupancy.
func (pos *Position) isAttacked(sq Square, attacker Color, occ Bitboard) bool {
	defender := attacker.Flip()

	horses := pos.PieceBb(PromotedBishop, attacker)
	dragons := pos.PieceBb(PromotedRook, attacker)
	rooks := dragons.Or(pos.PieceBb(Rook, attacker))

	if !pos.PieceBb(Pawn, attacker).And(PawnAttacks(defender, sq)).IsEmpty() {
		return true
	}
	if !pos.PieceBb(Knight, attacker).And(KnightAttacks(defender, sq)).IsEmpty() {
		return true
	}
	if !pos.PieceBb(Silver, attacker).And(SilverAttacks(defender, sq)).IsEmpty() {
		return true
	}
	if !pos.GoldsBb(attacker).And(GoldAttacks(defender, sq)).IsEmpty() {
		return true
	}
	if !horses.Or(dragons).Or(pos.PieceBb(King, attacker)).And(KingAttacks(sq)).IsEmpty() {
		return true
	}
	if !rooks.Or(pos.PieceBb(Lance, attacker)).And(LanceAttacks(defender, sq, occ)).IsEmpty() {
		return true
	}
	if !horses.Or(pos.PieceBb(Bishop, attacker)).And(BishopAttacks(sq, occ)).IsEmpty() {
		return true
	}
	return !rooks.And(RookAttacks(sq, occ)).IsEmpty()
}

// attackersTo returns the attacker pieces that attack sq on the
// current occupancy.
func (pos *Position) attackersTo(sq Square, attacker Color) Bitboard {
	defender := attacker.Flip()
	occ := pos.Occupancy()

	horses := pos.PieceBb(PromotedBishop, attacker)
	dragons := pos.PieceBb(PromotedRook, attacker)

	attackers := pos.PieceBb(Pawn, attacker).And(PawnAttacks(defender, sq))
	attackers = attackers.Or(pos.PieceBb(Lance, attacker).And(LanceAttacks(defender, sq, occ)))
	attackers = attackers.Or(pos.PieceBb(Knight, attacker).And(KnightAttacks(defender, sq)))
	attackers = attackers.Or(pos.PieceBb(Silver, attacker).And(SilverAttacks(defender, sq)))
	attackers = attackers.Or(pos.GoldsBb(attacker).And(GoldAttacks(defender, sq)))
	attackers = attackers.Or(horses.Or(pos.PieceBb(Bishop, attacker)).And(BishopAttacks(sq, occ)))
	attackers = attackers.Or(dragons.Or(pos.PieceBb(Rook, attacker)).And(RookAttacks(sq, occ)))
	attackers = attackers.Or(horses.Or(dragons).Or(pos.PieceBb(King, attacker)).And(KingAttacks(sq)))

	return attackers
}

// allAttackersTo returns the pieces of both colors attacking sq
// through the given occupancy. Used by the exchange evaluator.
func (pos *Position) allAttackersTo(sq Square, occ Bitboard) Bitboard {
	black := pos.byColor[Black]
	white := pos.byColor[White]

	horses := pos.byType[PromotedBishop]
	dragons := pos.byType[PromotedRook]

	pawns := pos.byType[Pawn]
	attackers := pawns.And(black).And(PawnAttacks(White, sq))
	attackers = attackers.Or(pawns.And(white).And(PawnAttacks(Black, sq)))

	lances := pos.byType[Lance]
	attackers = attackers.Or(lances.And(black).And(LanceAttacks(White, sq, occ)))
	attackers = attackers.Or(lances.And(white).And(LanceAttacks(Black, sq, occ)))

	knights := pos.byType[Knight]
	attackers = attackers.Or(knights.And(black).And(KnightAttacks(White, sq)))
	attackers = attackers.Or(knights.And(white).And(KnightAttacks(Black, sq)))

	silvers := pos.byType[Silver]
	attackers = attackers.Or(silvers.And(black).And(SilverAttacks(White, sq)))
	attackers = attackers.Or(silvers.And(white).And(SilverAttacks(Black, sq)))

	golds := pos.GoldsBb(Black).Or(pos.GoldsBb(White))
	attackers = attackers.Or(golds.And(black).And(GoldAttacks(White, sq)))
	attackers = attackers.Or(golds.And(white).And(GoldAttacks(Black, sq)))

	attackers = attackers.Or(horses.Or(pos.byType[Bishop]).And(BishopAttacks(sq, occ)))
	attackers = attackers.Or(dragons.Or(pos.byType[Rook]).And(RookAttacks(sq, occ)))
	attackers = attackers.Or(horses.Or(dragons).Or(pos.byType[King]).And(KingAttacks(sq)))

	return attackers
}

// updateAttacks recomputes the checker and pin sets for the side to
// move.
func (pos *Position) updateAttacks() {
	us := pos.sideToMove
	them := us.Flip()
	king := pos.King(us)

	pos.checkers = pos.attackersTo(king, them)
	pos.pinned = BbEmpty

	usOcc := pos.byColor[us]
	themOcc := pos.byColor[them]

	themLances := pos.PieceBb(Lance, them)
	themBishops := pos.PieceBb(Bishop, them).Or(pos.PieceBb(PromotedBishop, them))
	themRooks := pos.PieceBb(Rook, them).Or(pos.PieceBb(PromotedRook, them))

	// Sliders that would attack the king if only their own pieces
	// blocked the way. A single friendly blocker in between is pinned.
	potential := LanceAttacks(us, king, themOcc).And(themLances)
	potential = potential.Or(BishopAttacks(king, themOcc).And(themBishops))
	potential = potential.Or(RookAttacks(king, themOcc).And(themRooks))

	for !potential.IsEmpty() {
		sq := potential.Pop()
		maybePinned := usOcc.And(Between(sq, king))
		if maybePinned.IsSingle() {
			pos.pinned = pos.pinned.Or(maybePinned)
		}
	}
}

// regenKey recomputes the Zobrist key from scratch.
func (pos *Position) regenKey() {
	pos.key = 0

	occ := pos.Occupancy()
	for !occ.IsEmpty() {
		sq := occ.Pop()
		pos.key ^= zobristPiece[pos.mailbox[sq]][sq]
	}

	if pos.sideToMove == White {
		pos.key ^= zobristStm
	}

	for c := Black; c <= White; c++ {
		for _, pt := range HandTypes {
			pos.key ^= zobristHand[c][pt][pos.hands[c].Count(pt)]
		}
	}
}

// Verify checks the validity of the position.
// Mostly used for debugging purposes.
func (pos *Position) Verify() error {
	if bb := pos.byColor[Black].And(pos.byColor[White]); !bb.IsEmpty() {
		return fmt.Errorf("square %v is both black and white", bb.LSB())
	}

	union := BbEmpty
	for pt := Pawn; pt < NoPieceType; pt++ {
		for other := pt + 1; other < NoPieceType; other++ {
			if bb := pos.byType[pt].And(pos.byType[other]); !bb.IsEmpty() {
				return fmt.Errorf("square %v is both %v and %v", bb.LSB(), pt, other)
			}
		}
		union = union.Or(pos.byType[pt])
	}
	if union != pos.Occupancy() {
		return fmt.Errorf("type and color occupancy disagree")
	}

	for c := Black; c <= White; c++ {
		if n := pos.PieceBb(King, c).Count(); n != 1 {
			return fmt.Errorf("%v has %d kings", c, n)
		}
	}

	for sq := SquareMinValue; sq <= SquareMaxValue; sq++ {
		pi := pos.mailbox[sq]
		if pi == NoPiece {
			if pos.Occupancy().Has(sq) {
				return fmt.Errorf("square %v is occupied but mailbox is empty", sq)
			}
			continue
		}
		if !pos.PieceBb(pi.Type(), pi.Color()).Has(sq) {
			return fmt.Errorf("mailbox and bitboards disagree on %v", sq)
		}
	}

	for c := Black; c <= White; c++ {
		if bb := pos.PieceBb(Pawn, c).Or(pos.PieceBb(Lance, c)).And(RelativeRankBb(c, 8)); !bb.IsEmpty() {
			return fmt.Errorf("%v has a pawn or lance on the last rank", c)
		}
		if bb := pos.PieceBb(Knight, c).And(RelativeRankBb(c, 8).Or(RelativeRankBb(c, 7))); !bb.IsEmpty() {
			return fmt.Errorf("%v has a knight on the last two ranks", c)
		}
	}

	return nil
}

// Diagram renders the board the way shogi diagrams are drawn, with
// file 9 on the left and white at the top.
func (pos *Position) Diagram() string {
	s := "   9   8   7   6   5   4   3   2   1\n"
	s += " +---+---+---+---+---+---+---+---+---+\n"
	for r := 8; r >= 0; r-- {
		for f := 0; f < 9; f++ {
			pi := pos.mailbox[RankFile(r, f)]
			if pi == NoPiece {
				s += " |  "
			} else if pi.IsPromoted() {
				s += " |" + pi.String()
			} else {
				s += " | " + pi.String()
			}
		}
		s += " | " + string(byte('a'+8-r)) + "\n"
		s += " +---+---+---+---+---+---+---+---+---+\n"
	}
	s += fmt.Sprintf("\nBlack hand: %s\nWhite hand: %s\n%v to move\n",
		pos.hands[Black].SFEN(true), pos.hands[White].SFEN(false), pos.sideToMove)
	return s
}
