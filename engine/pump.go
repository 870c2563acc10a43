package engine

import (
	"bufio"
	"io"

	"github.com/ataxxtest/harness/engine/internal/linefmt"
)

const scannerInitBuffer = 4096

// maxLineBytes bounds a single scanned line. Generous relative to move
// lines and engine dumps, but still a hard ceiling — a runaway
// subprocess cannot grow the reader pump's scan buffer without bound.
const maxLineBytes = 1 << 20

// Item is the explicit sum type carried on every Worker queue:
// Line(text) or Eof, per spec.md §9's design note ("re-architect as...
// an explicit sum type Item := Line(string) | Eof on every channel").
// There is no hidden hasValue/isEOF interface switch anywhere in the
// engine — every queue read pattern-matches on IsEOF.
type Item struct {
	text string
	eof  bool
}

// Line wraps a single text line (without its trailing newline) as a
// queue Item.
func Line(text string) Item { return Item{text: text} }

// EOF is the end-of-stream sentinel Item.
var EOF = Item{eof: true}

// IsEOF reports whether this Item is the end-of-stream sentinel.
func (i Item) IsEOF() bool { return i.eof }

// Text returns the line text. Meaningless if IsEOF is true.
func (i Item) Text() string { return i.text }

// StartReaderPump launches the reader variant of the Line Pump
// (spec.md §4.1): it reads line-delimited text from r, normalizes and
// filters each line, and sends the result to the returned channel. The
// channel is buffered to capacity and is never closed by the pump —
// the pump instead sends exactly one EOF Item when r is exhausted, then
// returns, per spec.md §3's invariant.
//
// Blocking on a full channel is acceptable per spec.md §4.1: the script
// interpreter is expected to drain it.
func StartReaderPump(r io.Reader, capacity int) <-chan Item {
	out := make(chan Item, capacity)
	go func() { _ = readerPumpLoop(r, out) }()
	return out
}

// readerPumpLoop runs the reader pump to completion and reports any
// scan error, so it can be joined through an errgroup.Group by callers
// that care (Worker.spawn does; StartReaderPump's standalone callers
// usually don't).
func readerPumpLoop(r io.Reader, out chan<- Item) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, scannerInitBuffer), maxLineBytes)

	for scanner.Scan() {
		raw := scanner.Text()
		norm := linefmt.StripPrefixAndNormalize(raw)

		if linefmt.IsFenceMarker(norm) {
			out <- Line(norm)
			if !pumpFencedBlock(scanner, out) {
				return scanner.Err()
			}
			continue
		}

		if linefmt.IsInteresting(norm) {
			out <- Line(norm)
		}
	}
	out <- EOF
	return scanner.Err()
}

// pumpFencedBlock enqueues every subsequent raw line verbatim until a
// closing `===` marker line is seen (inclusive), per spec.md §4.1's
// fenced-block passthrough rule. If the stream ends first, it enqueues
// EOF itself and returns false so the caller does not enqueue a second one.
func pumpFencedBlock(scanner *bufio.Scanner, out chan<- Item) bool {
	for scanner.Scan() {
		raw := scanner.Text()
		out <- Line(raw)
		if linefmt.IsFenceMarker(raw) {
			return true
		}
	}
	out <- EOF
	return false
}

// writerPumpLoop runs the writer variant of the Line Pump (spec.md
// §4.1) to completion: it dequeues Items from in and writes each Line
// to w followed by a newline; on the EOF Item, it closes w and
// returns. Worker.spawn runs it in its errgroup.Group alongside
// readerPumpLoop so teardown can wait for it; spawn discards the
// returned error. There is no standalone fire-and-forget entry point.
func writerPumpLoop(w io.WriteCloser, in <-chan Item) error {
	for item := range in {
		if item.IsEOF() {
			return w.Close()
		}
		if _, err := io.WriteString(w, item.Text()+"\n"); err != nil {
			// Stream I/O failure is terminal for this pump (spec.md
			// §4.1). The Worker observes the consequence through the
			// subprocess's own exit/termination path, not here.
			return err
		}
	}
	return nil
}
