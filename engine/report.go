// Copyright 2014-2016 The Zurichess Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package engine

import "github.com/yl25946/stoat/shogi"

// SearchInfo is a progress report from the searcher.
type SearchInfo struct {
	Depth    int
	Seldepth int
	TimeSec  float64
	Nodes    uint64
	Hashfull int

	// Score is in centipawns unless Mate is set, in which case it is
	// the signed number of plies to mate from the reported position.
	Score int32
	Mate  bool

	PV []shogi.Move
}

// Reporter receives search output. The callbacks are invoked from the
// main worker goroutine.
type Reporter interface {
	SearchInfo(info *SearchInfo)
	BestMove(move shogi.Move)
	InfoString(msg string)
}

// nopReporter discards all reports.
type nopReporter struct{}

func (nopReporter) SearchInfo(*SearchInfo) {}
func (nopReporter) BestMove(shogi.Move)    {}
func (nopReporter) InfoString(string)      {}
