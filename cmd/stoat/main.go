// Copyright 2014-2016 The Zurichess Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// stoat is a USI shogi engine.
//
// With no arguments it speaks USI on stdin/stdout. The bench and
// perft subcommands exercise the search and the move generator from
// the command line.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/pkg/profile"
	"github.com/rs/zerolog"

	"github.com/yl25946/stoat/engine"
	"github.com/yl25946/stoat/shogi"
	"github.com/yl25946/stoat/usi"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "bench":
			runBench(log, os.Args[2:])
			return
		case "perft":
			runPerft(log, os.Args[2:])
			return
		}
	}

	usi.NewDriver(os.Stdout, log).Run(os.Stdin)
}

// benchReporter prints the per-position search output of a bench run.
type benchReporter struct{}

func (benchReporter) SearchInfo(info *engine.SearchInfo) {
	score := fmt.Sprintf("cp %d", info.Score)
	if info.Mate {
		score = fmt.Sprintf("mate %d", info.Score)
	}
	fmt.Printf("info depth %d seldepth %d nodes %d score %s\n",
		info.Depth, info.Seldepth, info.Nodes, score)
}

func (benchReporter) BestMove(move shogi.Move) {
	fmt.Println("bestmove", move)
}

func (benchReporter) InfoString(msg string) {
	fmt.Println("info string", msg)
}

func runBench(log zerolog.Logger, args []string) {
	flags := flag.NewFlagSet("bench", flag.ExitOnError)
	depth := flags.Int("depth", 6, "search depth per position")
	prof := flags.Bool("profile", false, "write a CPU profile")
	flags.Parse(args)

	if *prof {
		defer profile.Start(profile.ProfilePath(".")).Stop()
	}

	info, err := engine.RunBench(benchReporter{}, *depth)
	if err != nil {
		log.Fatal().Err(err).Msg("bench failed")
	}

	nps := uint64(0)
	if info.TimeSec > 0 {
		nps = uint64(float64(info.Nodes) / info.TimeSec)
	}
	fmt.Printf("%d nodes %d nps\n", info.Nodes, nps)
}

func runPerft(log zerolog.Logger, args []string) {
	flags := flag.NewFlagSet("perft", flag.ExitOnError)
	depth := flags.Int("depth", 4, "perft depth")
	sfen := flags.String("sfen", shogi.SFENStartPos, "position to count from")
	workers := flags.Int("workers", runtime.NumCPU(), "parallel workers")
	split := flags.Bool("split", false, "print per-move counts")
	flags.Parse(args)

	pos, err := shogi.PositionFromSFEN(*sfen)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid sfen")
	}

	start := time.Now()

	if *split {
		moves, counts, total := shogi.SplitPerft(pos, *depth)
		for i, m := range moves {
			fmt.Printf("%v: %d\n", m, counts[i])
		}
		fmt.Printf("total %d in %v\n", total, time.Since(start))
		return
	}

	total := shogi.ParallelPerft(pos, *depth, *workers)
	elapsed := time.Since(start)
	fmt.Printf("perft(%d) = %d in %v (%.0f nps)\n",
		*depth, total, elapsed, float64(total)/elapsed.Seconds())
}
