// Copyright 2014-2016 The Zurichess Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package engine

import "github.com/yl25946/stoat/shogi"

// PvList is a fixed-capacity principal variation.
type PvList struct {
	moves  [MaxDepth]shogi.Move
	length int
}

// Update sets the PV to move followed by the child's PV.
func (pv *PvList) Update(move shogi.Move, child *PvList) {
	pv.moves[0] = move
	copy(pv.moves[1:], child.moves[:child.length])
	pv.length = child.length + 1
}

// Reset empties the PV.
func (pv *PvList) Reset() {
	pv.moves[0] = shogi.NullMove
	pv.length = 0
}

// Moves returns the moves of the PV.
func (pv *PvList) Moves() []shogi.Move {
	return pv.moves[:pv.length]
}
