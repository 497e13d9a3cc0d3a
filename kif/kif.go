// Copyright 2014-2016 The Zurichess Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package kif imports KIF game records. Records are decoded from
// UTF-8 or Shift-JIS, the mainline is parsed, and every move is
// validated by replaying it on the board; records with illegal moves
// are rejected.
package kif

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/yl25946/stoat/shogi"
)

// Record is a parsed KIF game.
type Record struct {
	SenteName string
	GoteName  string

	StartPos *shogi.Position
	Moves    []shogi.Move
}

var (
	moveLineRe  = regexp.MustCompile(`^\s*(\d+)\s+(\S+)`)
	fromRe      = regexp.MustCompile(`\((\d)(\d)\)$`)
	headerRe    = regexp.MustCompile(`^(先手|後手|手合割)：(.*)$`)
	terminalSet = map[string]bool{
		"投了": true, "詰み": true, "中断": true, "千日手": true,
		"持将棋": true, "切れ負け": true, "反則勝ち": true, "反則負け": true,
	}
)

var kanjiDigits = map[rune]int{
	'一': 1, '二': 2, '三': 3, '四': 4, '五': 5, '六': 6, '七': 7, '八': 8, '九': 9,
}

var pieceNames = map[string]shogi.PieceType{
	"歩": shogi.Pawn, "香": shogi.Lance, "桂": shogi.Knight, "銀": shogi.Silver,
	"金": shogi.Gold, "角": shogi.Bishop, "飛": shogi.Rook,
	"玉": shogi.King, "王": shogi.King,
	"と": shogi.PromotedPawn, "成香": shogi.PromotedLance, "成桂": shogi.PromotedKnight,
	"成銀": shogi.PromotedSilver, "馬": shogi.PromotedBishop,
	"竜": shogi.PromotedRook, "龍": shogi.PromotedRook,
}

// decode converts KIF bytes to a UTF-8 string, falling back to a
// Shift-JIS decode when the input is not valid UTF-8.
func decode(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte{0xef, 0xbb, 0xbf})
	if utf8.Valid(data) {
		return string(data), nil
	}

	reader := transform.NewReader(bytes.NewReader(data), japanese.ShiftJIS.NewDecoder())
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("kif: %w", err)
	}
	if !utf8.Valid(decoded) {
		return "", errors.New("kif: not UTF-8 or Shift-JIS")
	}
	return string(decoded), nil
}

func parseFileDigit(r rune) int {
	switch {
	case '1' <= r && r <= '9':
		return int(r - '0')
	case '１' <= r && r <= '９':
		return int(r - '１' + 1)
	}
	return 0
}

func square(file, rank int) (shogi.Square, error) {
	if file < 1 || file > 9 || rank < 1 || rank > 9 {
		return shogi.SquareNone, fmt.Errorf("kif: square %d%d off the board", file, rank)
	}
	return shogi.RankFile(9-rank, 9-file), nil
}

// parseMoveToken converts one KIF move description, e.g. "７六歩(77)",
// "同　銀(31)", "４五桂打" or "２二角成(88)", into an engine move.
// prevTo resolves the 同 (same square) shorthand.
func parseMoveToken(token string, prevTo shogi.Square) (shogi.Move, error) {
	if terminalSet[token] {
		return shogi.NullMove, errEndOfGame
	}

	from := shogi.SquareNone
	if m := fromRe.FindStringSubmatch(token); m != nil {
		sq, err := square(int(m[1][0]-'0'), int(m[2][0]-'0'))
		if err != nil {
			return shogi.NullMove, err
		}
		from = sq
		token = token[:len(token)-4]
	}

	runes := []rune(token)
	to := shogi.SquareNone

	if len(runes) > 0 && runes[0] == '同' {
		if prevTo == shogi.SquareNone {
			return shogi.NullMove, errors.New("kif: 同 with no previous move")
		}
		to = prevTo
		runes = runes[1:]
		if len(runes) > 0 && (runes[0] == '　' || runes[0] == ' ') {
			runes = runes[1:]
		}
	} else {
		if len(runes) < 2 {
			return shogi.NullMove, fmt.Errorf("kif: short move %q", token)
		}
		file := parseFileDigit(runes[0])
		rank := kanjiDigits[runes[1]]
		sq, err := square(file, rank)
		if err != nil {
			return shogi.NullMove, err
		}
		to = sq
		runes = runes[2:]
	}

	drop := false
	promo := false
	if n := len(runes); n > 0 && runes[n-1] == '打' {
		drop = true
		runes = runes[:n-1]
	}
	// A trailing 成 is a promotion, unless it is the whole piece name
	// (成香, 成桂, 成銀 lead with it).
	if n := len(runes); n > 1 && runes[n-1] == '成' {
		promo = true
		runes = runes[:n-1]
	}

	pt, ok := pieceNames[string(runes)]
	if !ok {
		return shogi.NullMove, fmt.Errorf("kif: unknown piece %q", string(runes))
	}

	if drop {
		if pt.IsPromoted() || pt == shogi.King {
			return shogi.NullMove, fmt.Errorf("kif: cannot drop %v", pt)
		}
		return shogi.MakeDrop(pt, to), nil
	}
	if from == shogi.SquareNone {
		return shogi.NullMove, fmt.Errorf("kif: move %q has no origin", token)
	}
	if promo {
		return shogi.MakePromotion(from, to), nil
	}
	return shogi.MakeMove(from, to), nil
}

var errEndOfGame = errors.New("kif: end of game")

// Parse reads a KIF record and replays its mainline from the start
// position, validating every move.
func Parse(data []byte) (*Record, error) {
	text, err := decode(data)
	if err != nil {
		return nil, err
	}

	record := &Record{StartPos: shogi.StartPos()}
	pos := *record.StartPos
	prevTo := shogi.SquareNone

	for lineNo, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")

		if m := headerRe.FindStringSubmatch(line); m != nil {
			switch m[1] {
			case "先手":
				record.SenteName = strings.TrimSpace(m[2])
			case "後手":
				record.GoteName = strings.TrimSpace(m[2])
			case "手合割":
				if v := strings.TrimSpace(m[2]); v != "" && v != "平手" {
					return nil, fmt.Errorf("kif: unsupported handicap %q", v)
				}
			}
			continue
		}

		m := moveLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		move, err := parseMoveToken(m[2], prevTo)
		if err == errEndOfGame {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
		}

		if !pos.IsPseudoLegal(move) || !pos.IsLegal(move) {
			return nil, fmt.Errorf("line %d: illegal move %v", lineNo+1, move)
		}

		pos = pos.ApplyMove(move)
		record.Moves = append(record.Moves, move)
		prevTo = move.To()
	}

	return record, nil
}
