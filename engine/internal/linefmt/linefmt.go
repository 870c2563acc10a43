// Package linefmt holds the line-normalization and move-syntax regex
// helpers shared by the Line Pump and the Worker's script interpreter.
// It is internal because it exists only to keep worker.go, moves.go and
// pump.go from duplicating regexes and whitespace rules — there is no
// independent public contract here, mirroring how the teacher keeps
// engine/cli/internal/jsonutil private to its own parsers.
package linefmt

import "regexp"

// moveFormat is the square-pair grammar for an Ataxx move, shared by
// the red and blue move regexes below (spec.md §4.2 "Move syntax").
const moveFormat = `[a-g][1-7]-[a-g][1-7]`

// RedMove and BlueMove classify a line as a terminal announcement, a
// pass, or a move, for the named color. Group 1 is the terminal text
// (win/draw), group 2 is non-empty for a pass, group 3 is the move
// square-pair. Built once at package init, the way the original
// source's RED_MOVE/BLUE_MOVE are built once from a shared
// MOVE_FORMAT fragment (see SPEC_FULL.md §2bis).
var (
	RedMove  = regexp.MustCompile(`^(?:((?:Red|Blue) wins|Draw)\.|Red (passes)\.|Red moves (` + moveFormat + `)\.)$`)
	BlueMove = regexp.MustCompile(`^(?:((?:Red|Blue) wins|Draw)\.|Blue (passes)\.|Blue moves (` + moveFormat + `)\.)$`)
)

// MoveRegexFor returns the move regex for the named color ("red" or
// "blue"). Returns nil for any other input.
func MoveRegexFor(color string) *regexp.Regexp {
	switch color {
	case "red":
		return RedMove
	case "blue":
		return BlueMove
	default:
		return nil
	}
}

// Opposite returns the other color.
func Opposite(color string) string {
	if color == "red" {
		return "blue"
	}
	return "red"
}

// outputPrefix strips a leading "PREFIX:" annotation from a raw
// subprocess output line, per spec.md §4.1's reader contract.
var outputPrefix = regexp.MustCompile(`^.*:\s*`)

// interestingLine matches output worth enqueuing outside a fenced
// block: it mentions a game outcome/move keyword, or an uncaught
// exception marker, case-insensitively for the keywords.
var interestingLine = regexp.MustCompile(`(?i)wins|passes|moves|draw|Exception in thread`)

// fenceMarker matches a `===` fence line (ignoring leading whitespace),
// used both to open and to close a fenced passthrough block.
var fenceMarker = regexp.MustCompile(`^\s*===`)

// Normalize collapses tabs to spaces and runs of two-or-more spaces to
// one, per spec.md §4.1/§4.2's shared normalization rule. Unlike
// StripPrefixAndNormalize, it does not strip a leading "PREFIX:"
// annotation — used by the interpreter's @< / @? output-match handler,
// which spec.md §4.2 says normalizes only tabs and space-runs.
func Normalize(line string) string {
	return collapseSpaces(replaceTabs(line))
}

// StripPrefixAndNormalize applies the Line Pump reader's per-line
// transform (spec.md §4.1): strip a leading "PREFIX:" annotation, then
// normalize tabs and space-runs.
func StripPrefixAndNormalize(line string) string {
	return Normalize(outputPrefix.ReplaceAllString(line, ""))
}

// IsFenceMarker reports whether line (after whitespace trimming) opens
// or closes a fenced passthrough block.
func IsFenceMarker(line string) bool {
	return fenceMarker.MatchString(line)
}

// IsInteresting reports whether line should be enqueued by the reader
// pump outside a fenced block.
func IsInteresting(line string) bool {
	return interestingLine.MatchString(line)
}

func replaceTabs(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '\t' {
			out = append(out, ' ')
		} else {
			out = append(out, r)
		}
	}
	return string(out)
}

func collapseSpaces(s string) string {
	out := make([]rune, 0, len(s))
	inRun := false
	for _, r := range s {
		if r == ' ' {
			if inRun {
				continue
			}
			inRun = true
		} else {
			inRun = false
		}
		out = append(out, r)
	}
	return string(out)
}
