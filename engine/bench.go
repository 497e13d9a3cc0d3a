// Copyright 2014-2016 The Zurichess Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// bench.go runs fixed-depth searches over a small position suite,
// used as a quick speed and regression signal.

package engine

import (
	"time"

	"github.com/yl25946/stoat/shogi"
)

// BenchPositions is the SFEN suite searched by RunBench.
var BenchPositions = []string{
	"lnsgkgsnl/1r5b1/ppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL b - 1",
	"lnsgkgsnl/1r5b1/pppppp1pp/6p2/9/2P6/PP1PPPPPP/1B5R1/LNSGKGSNL w - 3",
	"lnsgk1snl/1r4gb1/p1pppp1pp/1p4p2/7P1/2P6/PP1PPPP1P/1B3S1R1/LNSGKG1NL w - 9",
	"ln1gk1snl/1rs3gb1/p1pppp1pp/1p4p2/7P1/2PP5/PPS1PPP1P/2G2S1R1/LN2KG1NL b - 15",
	"l2gk1snl/1rs2g1b1/p1nppp1pp/1pp3p2/7P1/2PPP4/PPSG1PP1P/2G2S1R1/LN2K2NL w - 21",
}

// BenchInfo aggregates the result of a bench run.
type BenchInfo struct {
	Nodes   uint64
	TimeSec float64
}

// RunBenchSearch searches pos to the given depth on the calling
// goroutine using worker 0, bypassing the barrier protocol.
func (s *Searcher) RunBenchSearch(info *BenchInfo, pos *shogi.Position, depth int) {
	s.tt.Finalize()

	s.rootMoves.Clear()
	shogi.GenerateLegal(&s.rootMoves, pos)
	if s.rootMoves.Len() == 0 {
		s.reporter.InfoString("no legal moves")
		return
	}

	s.limiter = NewCompoundLimiter()
	s.infinite = false

	t := s.threads[0]
	t.reset(pos, nil)
	t.maxDepth = depth

	s.runningThreads.Store(1)
	s.stop.Store(false)

	s.startTime = time.Now()

	s.runSearch(t)

	info.TimeSec += time.Since(s.startTime).Seconds()
	info.Nodes += t.loadNodes()
}

// RunBench searches every suite position to the given depth and
// returns the aggregate node count and time.
func RunBench(reporter Reporter, depth int) (BenchInfo, error) {
	s := NewSearcher(reporter)
	defer s.Quit()

	var info BenchInfo
	for _, sfen := range BenchPositions {
		pos, err := shogi.PositionFromSFEN(sfen)
		if err != nil {
			return info, err
		}
		s.NewGame()
		s.RunBenchSearch(&info, pos, depth)
	}
	return info, nil
}
