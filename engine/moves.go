package engine

import (
	"fmt"

	"github.com/ataxxtest/harness/engine/internal/linefmt"
)

// moveKind distinguishes the three shapes a move line can take, per
// spec.md §4.2 ("Move syntax"):
//
//   - terminal: a win/draw announcement. moveText is empty.
//   - pass: moveText is "-".
//   - move: moveText is the square-pair, e.g. "b2-c3".
type moveKind int

const (
	moveKindTerminal moveKind = iota
	moveKindPass
	moveKindMove
)

// classifiedMove is the result of matching a raw output line against
// the move grammar for a color.
type classifiedMove struct {
	raw      string
	kind     moveKind
	moveText string // "-" for pass, square-pair for a move, "" for terminal
}

// terminal reports whether this move ends the game (a win or draw line).
func (c classifiedMove) terminal() bool {
	return c.kind == moveKindTerminal
}

// classifyMove matches line against the move grammar for who ("red" or
// "blue"). An error is returned if line does not match any of the
// three shapes spec.md §4.2 allows for who.
func classifyMove(who, line string) (classifiedMove, error) {
	re := linefmt.MoveRegexFor(who)
	if re == nil {
		return classifiedMove{}, fmt.Errorf("harness: unknown color %q", who)
	}
	m := re.FindStringSubmatch(line)
	if m == nil {
		return classifiedMove{}, fmt.Errorf("invalid move for %s (%s)", who, line)
	}
	switch {
	case m[1] != "":
		return classifiedMove{raw: line, kind: moveKindTerminal}, nil
	case m[2] != "":
		return classifiedMove{raw: line, kind: moveKindPass, moveText: "-"}, nil
	default:
		return classifiedMove{raw: line, kind: moveKindMove, moveText: m[3]}, nil
	}
}
