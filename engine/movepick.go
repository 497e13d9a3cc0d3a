// Copyright 2014-2016 The Zurichess Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// movepick.go hands moves to the search in stages, so that a cutoff
// from the transposition table move costs no generation work.

package engine

import "github.com/yl25946/stoat/shogi"

type movegenStage int

const (
	stageTTMove movegenStage = iota
	stageGenerate
	stageAll
	stageQsGenCaptures
	stageQsCaptures
	stageQsGenRecaptures
	stageQsRecaptures
	stageEnd
)

// MovePicker yields the pseudo-legal moves of a position one at a
// time: first the table move, if pseudo-legal, then the generated
// list with the table move skipped.
type MovePicker struct {
	stage movegenStage

	pos   *shogi.Position
	moves shogi.MoveList

	ttMove    shogi.Move
	captureSq shogi.Square

	idx int
}

// NewMovePicker returns a picker over all pseudo-legal moves.
func NewMovePicker(pos *shogi.Position, ttMove shogi.Move) MovePicker {
	return MovePicker{stage: stageTTMove, pos: pos, ttMove: ttMove, captureSq: shogi.SquareNone}
}

// NewQsearchPicker returns a picker over the captures, or over the
// recaptures on captureSq if it is a real square.
func NewQsearchPicker(pos *shogi.Position, captureSq shogi.Square) MovePicker {
	stage := stageQsGenCaptures
	if captureSq != shogi.SquareNone {
		stage = stageQsGenRecaptures
	}
	return MovePicker{stage: stage, pos: pos, captureSq: captureSq}
}

func (mp *MovePicker) selectNext(skip shogi.Move) shogi.Move {
	moves := mp.moves.Moves()
	for mp.idx < len(moves) {
		move := moves[mp.idx]
		mp.idx++
		if move != skip {
			return move
		}
	}
	return shogi.NullMove
}

// Next returns the next move, or NullMove when exhausted.
func (mp *MovePicker) Next() shogi.Move {
	switch mp.stage {
	case stageTTMove:
		mp.stage = stageGenerate
		if !mp.ttMove.IsNull() && mp.pos.IsPseudoLegal(mp.ttMove) {
			return mp.ttMove
		}
		fallthrough

	case stageGenerate:
		shogi.GenerateAll(&mp.moves, mp.pos)
		mp.stage = stageAll
		fallthrough

	case stageAll:
		if move := mp.selectNext(mp.ttMove); !move.IsNull() {
			return move
		}
		mp.stage = stageEnd
		return shogi.NullMove

	case stageQsGenCaptures:
		shogi.GenerateCaptures(&mp.moves, mp.pos)
		mp.stage = stageQsCaptures
		fallthrough

	case stageQsCaptures:
		if move := mp.selectNext(shogi.NullMove); !move.IsNull() {
			return move
		}
		mp.stage = stageEnd
		return shogi.NullMove

	case stageQsGenRecaptures:
		shogi.GenerateRecaptures(&mp.moves, mp.pos, mp.captureSq)
		mp.stage = stageQsRecaptures
		fallthrough

	case stageQsRecaptures:
		if move := mp.selectNext(shogi.NullMove); !move.IsNull() {
			return move
		}
		mp.stage = stageEnd
		return shogi.NullMove
	}

	return shogi.NullMove
}
