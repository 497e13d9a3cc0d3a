// Copyright 2014-2016 The Zurichess Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// sfen.go converts positions to and from SFEN notation.

package shogi

import (
	"fmt"
	"strconv"
	"strings"
)

// SFENStartPos is the SFEN string of the starting position.
const SFENStartPos = "lnsgkgsnl/1r5b1/ppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL b - 1"

// StartPos returns the starting position.
func StartPos() *Position {
	pos, err := PositionFromSFEN(SFENStartPos)
	if err != nil {
		panic(err)
	}
	return pos
}

// PositionFromSFEN parses an SFEN string: nine board ranks from rank a
// down to rank i, the side to move, the hands, and an optional move
// counter. Inputs violating the one-king-per-color invariant or the
// hand capacities are rejected.
func PositionFromSFEN(sfen string) (*Position, error) {
	parts := strings.Fields(sfen)
	if len(parts) < 3 || len(parts) > 4 {
		return nil, fmt.Errorf("sfen: wrong number of fields in %q", sfen)
	}

	pos := NewPosition()

	ranks := strings.Split(parts[0], "/")
	if len(ranks) != 9 {
		return nil, fmt.Errorf("sfen: wrong number of ranks in %q", parts[0])
	}

	for rankIdx, rank := range ranks {
		file := 0
		for i := 0; i < len(rank); i++ {
			c := rank[i]
			switch {
			case '1' <= c && c <= '9':
				file += int(c - '0')
			case c == '+':
				if i == len(rank)-1 {
					return nil, fmt.Errorf("sfen: dangling + in rank %q", rank)
				}
				pi := PieceFromString(rank[i : i+2])
				if pi == NoPiece {
					return nil, fmt.Errorf("sfen: invalid piece %q", rank[i:i+2])
				}
				if file >= 9 {
					return nil, fmt.Errorf("sfen: too many files in rank %q", rank)
				}
				pos.addPiece(RankFile(8-rankIdx, file), pi)
				file++
				i++
			default:
				pi := PieceFromString(rank[i : i+1])
				if pi == NoPiece {
					return nil, fmt.Errorf("sfen: invalid piece char %q", c)
				}
				if file >= 9 {
					return nil, fmt.Errorf("sfen: too many files in rank %q", rank)
				}
				pos.addPiece(RankFile(8-rankIdx, file), pi)
				file++
			}
		}
		if file != 9 {
			return nil, fmt.Errorf("sfen: wrong number of files in rank %q", rank)
		}
	}

	for c := Black; c <= White; c++ {
		if n := pos.PieceBb(King, c).Count(); n != 1 {
			return nil, fmt.Errorf("sfen: %v must have exactly 1 king, has %d", c, n)
		}
	}

	switch parts[1] {
	case "b":
		pos.sideToMove = Black
	case "w":
		pos.sideToMove = White
	default:
		return nil, fmt.Errorf("sfen: invalid side to move %q", parts[1])
	}

	if parts[2] != "-" {
		hand := parts[2]
		count := uint32(1)
		explicit := false
		for i := 0; i < len(hand); i++ {
			c := hand[i]
			if '0' <= c && c <= '9' {
				if explicit {
					count = count*10 + uint32(c-'0')
				} else {
					count = uint32(c - '0')
					explicit = true
				}
				if i == len(hand)-1 {
					return nil, fmt.Errorf("sfen: count with no piece in hand %q", hand)
				}
				continue
			}
			pi := PieceFromString(hand[i : i+1])
			if pi == NoPiece || pi.Type() == King || pi.IsPromoted() {
				return nil, fmt.Errorf("sfen: invalid hand piece %q", c)
			}
			if count == 0 || count > MaxInHand(pi.Type()) {
				return nil, fmt.Errorf("sfen: invalid count %d for hand piece %q", count, c)
			}
			pos.hands[pi.Color()].Set(pi.Type(), count)
			count, explicit = 1, false
		}
	}

	if len(parts) == 4 {
		n, err := strconv.Atoi(parts[3])
		if err != nil || n < 1 || n > 0xffff {
			return nil, fmt.Errorf("sfen: invalid move count %q", parts[3])
		}
		pos.moveCount = uint16(n)
	}

	pos.regenKey()
	pos.updateAttacks()

	if pos.IsInCheck() {
		pos.consecutiveChecks[pos.sideToMove] = 1
	}

	return pos, nil
}

// SFEN formats the position in SFEN notation.
func (pos *Position) SFEN() string {
	var sb strings.Builder

	for r := 8; r >= 0; r-- {
		empty := 0
		for f := 0; f < 9; f++ {
			pi := pos.mailbox[RankFile(r, f)]
			if pi == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(pi.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if r > 0 {
			sb.WriteByte('/')
		}
	}

	if pos.sideToMove == Black {
		sb.WriteString(" b ")
	} else {
		sb.WriteString(" w ")
	}

	if pos.hands[Black].IsEmpty() && pos.hands[White].IsEmpty() {
		sb.WriteByte('-')
	} else {
		sb.WriteString(pos.hands[Black].SFEN(true))
		sb.WriteString(pos.hands[White].SFEN(false))
	}

	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(int(pos.moveCount)))

	return sb.String()
}

// String returns the position in SFEN notation.
func (pos *Position) String() string {
	return pos.SFEN()
}
