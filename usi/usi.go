// Copyright 2014-2016 The Zurichess Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package usi implements the USI protocol driver around the search
// core. It owns the current position and the key history the
// repetition rule needs, translates go parameters into limiters, and
// prints the searcher's reports as info/bestmove lines.
package usi

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yl25946/stoat/engine"
	"github.com/yl25946/stoat/shogi"
)

const (
	engineName   = "stoat"
	engineAuthor = "the stoat authors"
)

// Driver runs the USI command loop.
type Driver struct {
	out io.Writer
	log zerolog.Logger

	searcher *engine.Searcher

	pos        *shogi.Position
	keyHistory []uint64
}

// NewDriver returns a driver writing protocol output to out and
// diagnostics to log.
func NewDriver(out io.Writer, log zerolog.Logger) *Driver {
	d := &Driver{
		out: out,
		log: log,
		pos: shogi.StartPos(),
	}
	d.searcher = engine.NewSearcher(&reporter{out: out})
	return d
}

// reporter prints searcher callbacks as USI lines.
type reporter struct {
	out io.Writer
}

func (r *reporter) SearchInfo(info *engine.SearchInfo) {
	score := fmt.Sprintf("cp %d", info.Score)
	if info.Mate {
		score = fmt.Sprintf("mate %d", info.Score)
	}

	nps := uint64(0)
	if info.TimeSec > 0 {
		nps = uint64(float64(info.Nodes) / info.TimeSec)
	}

	line := fmt.Sprintf("info depth %d seldepth %d time %d nodes %d nps %d hashfull %d score %s",
		info.Depth, info.Seldepth, int64(info.TimeSec*1000), info.Nodes, nps, info.Hashfull, score)

	if len(info.PV) > 0 {
		parts := make([]string, len(info.PV))
		for i, m := range info.PV {
			parts[i] = m.String()
		}
		line += " pv " + strings.Join(parts, " ")
	}

	fmt.Fprintln(r.out, line)
}

func (r *reporter) BestMove(move shogi.Move) {
	if move.IsNull() {
		fmt.Fprintln(r.out, "bestmove resign")
		return
	}
	fmt.Fprintln(r.out, "bestmove", move)
}

func (r *reporter) InfoString(msg string) {
	fmt.Fprintln(r.out, "info string", msg)
}

// Run processes commands from in until quit or EOF.
func (d *Driver) Run(in io.Reader) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 1<<16), 1<<16)

	for scanner.Scan() {
		if !d.handle(scanner.Text()) {
			break
		}
	}

	d.searcher.Quit()
}

// handle executes one command line. It returns false on quit.
func (d *Driver) handle(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}

	switch fields[0] {
	case "usi":
		fmt.Fprintln(d.out, "id name", engineName)
		fmt.Fprintln(d.out, "id author", engineAuthor)
		fmt.Fprintln(d.out, "option name Hash type spin default", engine.DefaultTTSizeMib, "min 1 max", engine.MaxTTSizeMib)
		fmt.Fprintln(d.out, "option name Threads type spin default 1 min 1 max 256")
		fmt.Fprintln(d.out, "option name CuteChessWorkaround type check default false")
		fmt.Fprintln(d.out, "usiok")

	case "isready":
		d.searcher.EnsureReady()
		fmt.Fprintln(d.out, "readyok")

	case "usinewgame":
		d.searcher.NewGame()

	case "setoption":
		d.setOption(fields[1:])

	case "position":
		if err := d.setPosition(fields[1:]); err != nil {
			d.log.Error().Err(err).Msg("position rejected")
		}

	case "go":
		d.goCommand(fields[1:])

	case "stop":
		d.searcher.Stop()

	case "d":
		fmt.Fprint(d.out, d.pos.Diagram())

	case "quit":
		return false

	default:
		d.log.Warn().Str("command", fields[0]).Msg("unknown command")
	}

	return true
}

func (d *Driver) setOption(args []string) {
	name, value := "", ""
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "name":
			if i+1 < len(args) {
				name = args[i+1]
			}
		case "value":
			if i+1 < len(args) {
				value = args[i+1]
			}
		}
	}

	if d.searcher.IsSearching() {
		d.log.Warn().Str("option", name).Msg("cannot set option while searching")
		return
	}

	switch name {
	case "Hash", "USI_Hash":
		if mib, err := strconv.Atoi(value); err == nil {
			d.searcher.SetTTSize(mib)
		}
	case "Threads":
		if n, err := strconv.Atoi(value); err == nil {
			d.searcher.SetThreads(n)
		}
	case "CuteChessWorkaround":
		d.searcher.SetSennichiteCompat(value == "true")
	default:
		d.log.Warn().Str("option", name).Msg("unknown option")
	}
}

// setPosition parses "startpos [moves ...]" or "sfen <sfen> [moves ...]",
// rebuilding the key history the sennichite rule scans.
func (d *Driver) setPosition(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usi: empty position command")
	}

	var pos *shogi.Position
	var moveIdx int

	switch args[0] {
	case "startpos":
		pos = shogi.StartPos()
		moveIdx = 1
	case "sfen":
		end := len(args)
		for i, arg := range args {
			if arg == "moves" {
				end = i
				break
			}
		}
		parsed, err := shogi.PositionFromSFEN(strings.Join(args[1:end], " "))
		if err != nil {
			return err
		}
		pos = parsed
		moveIdx = end
	default:
		return fmt.Errorf("usi: invalid position command %q", args[0])
	}

	history := make([]uint64, 0, len(args))

	if moveIdx < len(args) && args[moveIdx] == "moves" {
		for _, str := range args[moveIdx+1:] {
			move, err := shogi.MoveFromString(str)
			if err != nil {
				return err
			}
			if !pos.IsPseudoLegal(move) || !pos.IsLegal(move) {
				return fmt.Errorf("usi: illegal move %q", str)
			}
			history = append(history, pos.Key())
			next := pos.ApplyMove(move)
			pos = &next
		}
	}

	d.pos = pos
	d.keyHistory = history
	return nil
}

func (d *Driver) goCommand(args []string) {
	startTime := time.Now()

	var (
		infinite bool
		maxDepth int
		limiter  = engine.NewCompoundLimiter()

		btime, wtime, binc, winc, byoyomi int64 = -1, -1, 0, 0, 0
	)

	intArg := func(i int) int64 {
		if i >= len(args) {
			return 0
		}
		v, err := strconv.ParseInt(args[i], 10, 64)
		if err != nil {
			d.log.Warn().Str("arg", args[i]).Msg("invalid go argument")
			return 0
		}
		return v
	}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "infinite":
			infinite = true
		case "depth":
			maxDepth = int(intArg(i + 1))
			i++
		case "nodes":
			limiter.Add(engine.NewNodeLimiter(uint64(intArg(i + 1))))
			i++
		case "movetime":
			limiter.Add(engine.NewMoveTimeLimiter(startTime, float64(intArg(i+1))/1000))
			i++
		case "btime":
			btime = intArg(i + 1)
			i++
		case "wtime":
			wtime = intArg(i + 1)
			i++
		case "binc":
			binc = intArg(i + 1)
			i++
		case "winc":
			winc = intArg(i + 1)
			i++
		case "byoyomi":
			byoyomi = intArg(i + 1)
			i++
		}
	}

	remaining, increment := btime, binc
	if d.pos.SideToMove() == shogi.White {
		remaining, increment = wtime, winc
	}
	if byoyomi > 0 {
		increment += byoyomi
	}
	if remaining >= 0 && !infinite {
		limiter.Add(engine.NewTimeManager(startTime, engine.TimeLimits{
			Remaining: float64(remaining) / 1000,
			Increment: float64(increment) / 1000,
		}))
	}

	d.searcher.StartSearch(d.pos, d.keyHistory, startTime, infinite, maxDepth, limiter)
}
