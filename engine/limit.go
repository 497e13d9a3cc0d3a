// Copyright 2014-2016 The Zurichess Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// limit.go implements the composable search stop predicates.

package engine

import "time"

const (
	// timeCheckInterval amortises the clock read inside the search:
	// the hard predicate only consults the clock on node counts that
	// are a multiple of it.
	timeCheckInterval = 2048

	// moveOverhead is the slice of the clock, in seconds, reserved
	// for communication latency.
	moveOverhead = 0.01
)

// SearchLimiter decides when a search must end. StopSoft is polled
// between root iterations and ends iterative deepening; StopHard is
// polled on every node and aborts the search immediately.
type SearchLimiter interface {
	StopSoft(nodes uint64) bool
	StopHard(nodes uint64) bool
}

// NodeLimiter stops the search after a fixed number of nodes.
type NodeLimiter struct {
	maxNodes uint64
}

func NewNodeLimiter(maxNodes uint64) *NodeLimiter {
	return &NodeLimiter{maxNodes: maxNodes}
}

func (l *NodeLimiter) StopSoft(nodes uint64) bool {
	return l.StopHard(nodes)
}

func (l *NodeLimiter) StopHard(nodes uint64) bool {
	return nodes >= l.maxNodes
}

// MoveTimeLimiter stops the search after a fixed time in seconds.
type MoveTimeLimiter struct {
	startTime time.Time
	maxTime   float64
}

func NewMoveTimeLimiter(startTime time.Time, maxTime float64) *MoveTimeLimiter {
	return &MoveTimeLimiter{startTime: startTime, maxTime: maxTime}
}

func (l *MoveTimeLimiter) StopSoft(nodes uint64) bool {
	return time.Since(l.startTime).Seconds() >= l.maxTime
}

func (l *MoveTimeLimiter) StopHard(nodes uint64) bool {
	if nodes == 0 || nodes%timeCheckInterval != 0 {
		return false
	}
	return l.StopSoft(nodes)
}

// TimeLimits carries the game clock state for TimeManager.
type TimeLimits struct {
	Remaining float64
	Increment float64
}

// TimeManager budgets a slice of the remaining clock for this move.
type TimeManager struct {
	startTime time.Time
	maxTime   float64
}

func NewTimeManager(startTime time.Time, limits TimeLimits) *TimeManager {
	remaining := limits.Remaining - moveOverhead
	maxTime := remaining*0.05 + limits.Increment*0.5
	if maxTime > remaining {
		maxTime = remaining
	}
	return &TimeManager{startTime: startTime, maxTime: maxTime}
}

func (l *TimeManager) StopSoft(nodes uint64) bool {
	return time.Since(l.startTime).Seconds() >= l.maxTime
}

func (l *TimeManager) StopHard(nodes uint64) bool {
	if nodes == 0 || nodes%timeCheckInterval != 0 {
		return false
	}
	return l.StopSoft(nodes)
}

// CompoundLimiter stops when any of its limiters does.
type CompoundLimiter struct {
	limiters []SearchLimiter
}

func NewCompoundLimiter(limiters ...SearchLimiter) *CompoundLimiter {
	return &CompoundLimiter{limiters: limiters}
}

// Add appends a limiter.
func (l *CompoundLimiter) Add(limiter SearchLimiter) {
	l.limiters = append(l.limiters, limiter)
}

func (l *CompoundLimiter) StopSoft(nodes uint64) bool {
	for _, limiter := range l.limiters {
		if limiter.StopSoft(nodes) {
			return true
		}
	}
	return false
}

func (l *CompoundLimiter) StopHard(nodes uint64) bool {
	for _, limiter := range l.limiters {
		if limiter.StopHard(nodes) {
			return true
		}
	}
	return false
}
