// Copyright 2014-2016 The Zurichess Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// search.go implements iterative deepening and the negamax search.
//
// N long-lived workers share the transposition table and run the same
// iterative deepening loop from the same root. The driver releases
// them through the reset and idle barriers; the workers meet one
// another at the end barrier, and the driver waits for them through
// the running-thread count in Stop; worker 0 reports. Helpers diverge naturally through
// the shared table, lazy-SMP style.

package engine

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yl25946/stoat/shogi"
)

const futilityMaxDepth = 8
const futilityMargin = 120

// Searcher owns the worker pool and drives searches.
type Searcher struct {
	reporter Reporter
	tt       *TTable

	threads []*threadData
	wg      sync.WaitGroup

	resetBarrier *barrier
	idleBarrier  *barrier
	endBarrier   *barrier

	searchMu  sync.Mutex
	searching bool

	stopMu         sync.Mutex
	stopCond       *sync.Cond
	runningThreads atomic.Int32

	stop atomic.Bool
	quit atomic.Bool

	startTime time.Time
	infinite  bool
	limiter   SearchLimiter

	rootMoves shogi.MoveList

	// sennichiteCompat reports perpetual-check repetitions the way
	// hosts that cannot adjudicate them expect.
	sennichiteCompat bool
}

// NewSearcher returns a searcher with one worker and the default
// table size. reporter may be nil.
func NewSearcher(reporter Reporter) *Searcher {
	if reporter == nil {
		reporter = nopReporter{}
	}
	s := &Searcher{
		reporter: reporter,
		tt:       NewTTable(DefaultTTSizeMib),
	}
	s.stopCond = sync.NewCond(&s.stopMu)
	s.SetThreads(1)
	return s
}

// NewGame clears the transposition table and per-game state.
// Must not be called while searching.
func (s *Searcher) NewGame() {
	if !s.tt.Finalize() {
		s.tt.Clear()
	}
}

// EnsureReady performs deferred allocations so the first search does
// not pay for them.
func (s *Searcher) EnsureReady() {
	s.tt.Finalize()
}

// SetTTSize resizes the transposition table.
// Must not be called while searching.
func (s *Searcher) SetTTSize(mib int) {
	if mib < 1 {
		mib = 1
	} else if mib > MaxTTSizeMib {
		mib = MaxTTSizeMib
	}
	s.tt.Resize(mib)
}

// SetSennichiteCompat toggles the host compatibility reporting of
// perpetual-check repetitions.
func (s *Searcher) SetSennichiteCompat(compat bool) {
	s.sennichiteCompat = compat
}

// SetThreads resizes the worker pool.
// Must not be called while searching.
func (s *Searcher) SetThreads(count int) {
	if count < 1 {
		count = 1
	}

	if len(s.threads) > 0 {
		s.stopWorkers()
		s.quit.Store(false)
	}

	s.threads = make([]*threadData, count)
	for id := range s.threads {
		s.threads[id] = newThreadData(id)
	}

	s.resetBarrier = newBarrier(count + 1)
	s.idleBarrier = newBarrier(count + 1)
	s.endBarrier = newBarrier(count)

	for _, t := range s.threads {
		t := t
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.runWorker(t)
		}()
	}
}

// ThreadCount returns the size of the worker pool.
func (s *Searcher) ThreadCount() int {
	return len(s.threads)
}

// Quit shuts the worker pool down. The searcher is unusable afterwards.
func (s *Searcher) Quit() {
	s.Stop()
	s.stopWorkers()
}

func (s *Searcher) stopWorkers() {
	s.quit.Store(true)
	s.resetBarrier.arriveAndWait()
	s.idleBarrier.arriveAndWait()
	s.wg.Wait()
}

func (s *Searcher) runWorker(t *threadData) {
	for {
		s.resetBarrier.arriveAndWait()
		s.idleBarrier.arriveAndWait()

		if s.quit.Load() {
			return
		}

		if s.rootMoves.Len() > 0 {
			s.runSearch(t)
		}
	}
}

// StartSearch releases the workers on a new search. keyHistory holds
// the Zobrist keys of the game so far, excluding pos itself.
func (s *Searcher) StartSearch(
	pos *shogi.Position,
	keyHistory []uint64,
	startTime time.Time,
	infinite bool,
	maxDepth int,
	limiter SearchLimiter,
) {
	s.resetBarrier.arriveAndWait()

	s.searchMu.Lock()
	defer s.searchMu.Unlock()

	s.infinite = infinite
	s.limiter = limiter
	s.tt.Finalize()

	if maxDepth < 1 || maxDepth > MaxDepth {
		maxDepth = MaxDepth
	}

	s.rootMoves.Clear()
	shogi.GenerateLegal(&s.rootMoves, pos)

	if s.rootMoves.Len() == 0 {
		s.reporter.InfoString("no legal moves")
		s.reporter.SearchInfo(&SearchInfo{Depth: 1, Score: 0, Mate: true})
		s.reporter.BestMove(shogi.NullMove)

		// Cycle the workers back to the reset barrier.
		s.stop.Store(true)
		s.idleBarrier.arriveAndWait()
		return
	}

	for _, t := range s.threads {
		t.reset(pos, keyHistory)
		t.maxDepth = maxDepth
	}

	s.startTime = startTime

	s.stop.Store(false)
	s.runningThreads.Store(int32(len(s.threads)))

	s.searching = true

	s.idleBarrier.arriveAndWait()
}

// Stop requests termination and returns once every worker has parked.
func (s *Searcher) Stop() {
	s.stop.Store(true)
	s.stopMu.Lock()
	for s.runningThreads.Load() > 0 {
		s.stopCond.Wait()
	}
	s.stopMu.Unlock()
}

// IsSearching returns true while workers are inside a search.
func (s *Searcher) IsSearching() bool {
	s.searchMu.Lock()
	defer s.searchMu.Unlock()
	return s.searching
}

func (s *Searcher) hasStopped() bool {
	return s.stop.Load()
}

func (s *Searcher) isLegalRootMove(move shogi.Move) bool {
	for _, m := range s.rootMoves.Moves() {
		if m == move {
			return true
		}
	}
	return false
}

// runSearch is one worker's iterative deepening loop.
func (s *Searcher) runSearch(t *threadData) {
	var rootPv PvList

	t.lastScore = ScoreNone
	t.lastPv.Reset()
	t.depthCompleted = 0

	for depth := 1; ; depth++ {
		t.rootDepth = depth
		t.seldepth.Store(0)

		score := s.search(t, &t.rootPos, &rootPv, depth, 0, -ScoreInf, ScoreInf, true, true)

		if s.hasStopped() {
			break
		}

		t.depthCompleted = depth
		t.lastScore = score
		t.lastPv = rootPv

		if depth >= t.maxDepth {
			break
		}

		if t.isMainThread() {
			if s.limiter != nil && s.limiter.StopSoft(t.loadNodes()) {
				break
			}
			s.report(t, time.Since(s.startTime).Seconds())
		}
	}

	finish := func() {
		// The decrement pairs with the predicate loop in Stop under
		// stopMu, so the wakeup cannot be lost.
		s.stopMu.Lock()
		s.runningThreads.Add(-1)
		s.stopCond.Broadcast()
		s.stopMu.Unlock()

		s.endBarrier.arriveAndWait()
	}

	if t.isMainThread() {
		s.searchMu.Lock()

		s.stop.Store(true)
		finish()

		s.finalReport(time.Since(s.startTime).Seconds())

		s.limiter = nil
		s.searching = false

		s.searchMu.Unlock()
	} else {
		finish()
	}
}

// drawScore spreads repetition scores a couple of centipawns around
// zero so the search does not steer into deterministic shuffles.
func drawScore(nodes uint64) int32 {
	return 2 - int32(nodes&3)
}

// lmrReduction returns the late move reduction for a quiet move.
func lmrReduction(depth, moveNumber int, pvNode bool) int {
	r := int(math.Round(0.2 + math.Log(float64(depth))*math.Log(float64(moveNumber))/3.5))
	if pvNode {
		r--
	}
	return r
}

func (s *Searcher) search(
	t *threadData,
	pos *shogi.Position,
	pv *PvList,
	depth, ply int,
	alpha, beta int32,
	pvNode, rootNode bool,
) int32 {
	if !rootNode && t.isMainThread() && t.rootDepth > 1 {
		if s.limiter != nil && s.limiter.StopHard(t.loadNodes()) {
			s.stop.Store(true)
		}
	}
	if s.hasStopped() {
		return 0
	}

	pv.Reset()

	t.incNodes()

	if depth <= 0 {
		return s.qsearch(t, pos, ply, alpha, beta, shogi.SquareNone)
	}

	t.updateSeldepth(ply + 1)

	if ply >= MaxDepth {
		if pos.IsInCheck() {
			return 0
		}
		return Eval(pos)
	}

	curr := &t.stack[ply]

	ttMove := shogi.NullMove
	if entry, ok := s.tt.Probe(pos.Key(), ply); ok {
		ttMove = entry.Move
		if !pvNode && entry.Depth >= depth {
			switch entry.Flag {
			case FlagExact:
				return entry.Score
			case FlagLower:
				if entry.Score >= beta {
					return entry.Score
				}
			case FlagUpper:
				if entry.Score <= alpha {
					return entry.Score
				}
			}
		}
	}

	inCheck := pos.IsInCheck()

	// Reverse futility: a quiet shallow node whose static eval beats
	// beta by a depth-scaled margin will not come back under it.
	if !pvNode && !inCheck && depth <= futilityMaxDepth {
		if staticEval := Eval(pos); staticEval-futilityMargin*int32(depth) >= beta {
			return staticEval
		}
	}

	alphaOrig := alpha
	bestScore := -ScoreInf
	bestMove := shogi.NullMove
	legalMoves := 0

	lmrThreshold := 5
	if rootNode {
		lmrThreshold += 2
	}

	picker := NewMovePicker(pos, ttMove)
	for move := picker.Next(); !move.IsNull(); move = picker.Next() {
		if rootNode {
			if !s.isLegalRootMove(move) {
				continue
			}
		} else if !pos.IsLegal(move) {
			continue
		}

		curr.pv.length = 0
		legalMoves++

		isQuiet := !pos.IsCapture(move)

		next := t.applyMove(pos, move)

		var score int32
		switch next.TestSennichite(s.sennichiteCompat, t.keyHistory) {
		case shogi.SennichiteWin:
			// An illegal perpetual by the moving side.
			t.popKey()
			continue

		case shogi.SennichiteDraw:
			score = drawScore(t.loadNodes())

		default:
			newDepth := depth - 1

			if legalMoves == 1 {
				score = -s.search(t, &next, &curr.pv, newDepth, ply+1, -beta, -alpha, pvNode, false)
			} else {
				reduction := 0
				if isQuiet && depth >= 2 && legalMoves >= lmrThreshold {
					reduction = lmrReduction(depth, legalMoves, pvNode)
					if reduction < 1 {
						reduction = 1
					}
					if reduction > newDepth-1 {
						reduction = newDepth - 1
					}
					if reduction < 0 {
						reduction = 0
					}
				}

				score = -s.search(t, &next, &curr.pv, newDepth-reduction, ply+1, -(alpha + 1), -alpha, false, false)
				if score > alpha && reduction > 0 {
					score = -s.search(t, &next, &curr.pv, newDepth, ply+1, -(alpha + 1), -alpha, false, false)
				}
				if pvNode && score > alpha {
					score = -s.search(t, &next, &curr.pv, newDepth, ply+1, -beta, -alpha, true, false)
				}
			}
		}

		t.popKey()

		if s.hasStopped() {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = move
		}

		if score > alpha {
			alpha = score
			pv.Update(move, &curr.pv)

			if score >= beta {
				break
			}
		}
	}

	if legalMoves == 0 {
		// Checkmate; shogi has no stalemate but the score would be
		// the same.
		return -ScoreMate + int32(ply)
	}

	flag := FlagUpper
	if bestScore >= beta {
		flag = FlagLower
	} else if bestScore > alphaOrig {
		flag = FlagExact
	}
	s.tt.Put(pos.Key(), bestScore, bestMove, depth, ply, flag)

	return bestScore
}

func (s *Searcher) qsearch(
	t *threadData,
	pos *shogi.Position,
	ply int,
	alpha, beta int32,
	captureSq shogi.Square,
) int32 {
	if s.hasStopped() {
		return 0
	}

	t.incNodes()
	t.updateSeldepth(ply + 1)

	if ply >= MaxDepth {
		if pos.IsInCheck() {
			return 0
		}
		return Eval(pos)
	}

	standPat := Eval(pos)
	if standPat >= beta {
		return standPat
	}
	if standPat > alpha {
		alpha = standPat
	}

	bestScore := standPat

	picker := NewQsearchPicker(pos, captureSq)
	for move := picker.Next(); !move.IsNull(); move = picker.Next() {
		if !pos.IsLegal(move) {
			continue
		}

		next := t.applyMove(pos, move)

		var score int32
		switch next.TestSennichite(s.sennichiteCompat, t.keyHistory) {
		case shogi.SennichiteWin:
			t.popKey()
			continue

		case shogi.SennichiteDraw:
			score = drawScore(t.loadNodes())

		default:
			score = -s.qsearch(t, &next, ply+1, -beta, -alpha, move.To())
		}

		t.popKey()

		if s.hasStopped() {
			return 0
		}

		if score > bestScore {
			bestScore = score
		}
		if score > alpha {
			alpha = score
			if score >= beta {
				break
			}
		}
	}

	return bestScore
}

func (s *Searcher) report(bestThread *threadData, timeSec float64) {
	var totalNodes uint64
	maxSeldepth := 0

	for _, t := range s.threads {
		totalNodes += t.loadNodes()
		if sd := t.loadSeldepth(); sd > maxSeldepth {
			maxSeldepth = sd
		}
	}

	info := &SearchInfo{
		Depth:    bestThread.depthCompleted,
		Seldepth: maxSeldepth,
		TimeSec:  timeSec,
		Nodes:    totalNodes,
		Hashfull: s.tt.FullPermille(),
		PV:       bestThread.lastPv.Moves(),
	}

	if abs32(bestThread.lastScore) >= ScoreMaxMate {
		info.Mate = true
		if bestThread.lastScore > 0 {
			info.Score = ScoreMate - bestThread.lastScore
		} else {
			info.Score = -(ScoreMate + bestThread.lastScore)
		}
	} else {
		cp := bestThread.lastScore
		// Jittered repetition scores display as plain draws.
		if abs32(cp) <= 2 {
			cp = 0
		}
		info.Score = cp
	}

	s.reporter.SearchInfo(info)
}

func (s *Searcher) finalReport(timeSec float64) {
	bestThread := s.threads[0]

	s.report(bestThread, timeSec)

	bestMove := shogi.NullMove
	if moves := bestThread.lastPv.Moves(); len(moves) > 0 {
		bestMove = moves[0]
	}
	s.reporter.BestMove(bestMove)
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
