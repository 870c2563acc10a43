package engine

import (
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ataxxtest/harness"
	"github.com/ataxxtest/harness/engine/internal/linefmt"
	"github.com/ataxxtest/harness/internal/tlog"
)

// Dispatch table regexes, in first-match-wins order per spec.md §4.2.
// dispatch tries them in this order, one if-statement per pattern, rather
// than using the original's dynamic "last match" global: each handler
// receives its capture groups explicitly as arguments, there is no
// shared mutable match state.
var (
	reTime      = regexp.MustCompile(`^@time ([\d.]+)`)
	reTotalTime = regexp.MustCompile(`^@total-time (\d+)`)
	reOutput    = regexp.MustCompile(`^@([<?])(.*)`)
	reRed       = regexp.MustCompile(`^@(red)\.\.\.\s*(.*)`)
	reBlue      = regexp.MustCompile(`^@(blue)\.\.\.\s*(.*)`)
	reSend      = regexp.MustCompile(`^@send (red|blue)\.\.\.\s*(.*)`)
	reRecv      = regexp.MustCompile(`^@recv (red|blue)\.\.\.\s*(.*)`)
)

// InterpreterError is raised by a Worker's script interpreter and
// carries the script line number at which it occurred, per spec.md §3's
// Termination Message shape. It wraps harness.ErrTestFail or
// harness.ErrTestError so callers can classify it with errors.Is.
type InterpreterError struct {
	Outcome harness.Outcome
	Line    int
	Msg     string
	kind    error
}

func (e *InterpreterError) Error() string { return e.Msg }
func (e *InterpreterError) Unwrap() error { return e.kind }

// Worker owns one subprocess, its two Line Pumps, its Script, an
// optional peer link, and the script-interpreter activity that drives
// it, per spec.md §3.
type Worker struct {
	title  string
	script *Script
	opts   Options
	peer   *peerLink
	logger *tlog.WorkerLog

	cmd     *exec.Cmd
	in      chan Item   // stdin queue; interpreter is sole writer
	out     <-chan Item // stdout queue; interpreter is sole reader
	eofSeen bool
	opLimit time.Duration

	group *errgroup.Group
}

// newWorkerShell creates a Worker with its peer link in place but no
// subprocess yet. Cross-linking (connect) must happen before spawn, per
// spec.md §4.3 steps 3-4.
func newWorkerShell(title string, script *Script, opts Options, logger *tlog.WorkerLog) *Worker {
	return &Worker{
		title:   title,
		script:  script,
		opts:    opts,
		peer:    newPeerLink(opts.PeerQueue),
		logger:  logger,
		opLimit: opts.OpLimit,
		group:   new(errgroup.Group),
	}
}

// spawn consumes the script's first command as the subprocess argv and
// starts the subprocess and its Line Pumps (spec.md §4.3 step 4). If
// the script has no command, it returns a FAIL termination message and
// leaves the Worker unstarted — the original source's equivalent path
// goes on to call Popen(None) and crashes; per the system instructions'
// guidance not to replicate known defects, this harness simply does not
// spawn a subprocess for an empty script.
func (w *Worker) spawn() *harness.TerminationMessage {
	first, _, ok := w.script.Next()
	if !ok {
		return &harness.TerminationMessage{
			Title: w.title, Outcome: harness.FAIL,
			Detail: "No command found", Line: w.script.Line(),
		}
	}

	argv := splitArgv(first)
	cmd, stdin, stdout, err := spawnProcess(argv)
	if err != nil {
		return &harness.TerminationMessage{
			Title: w.title, Outcome: harness.ERROR,
			Detail: fmt.Sprintf("failed to start subprocess: %v", err), Line: w.script.Line(),
		}
	}
	w.cmd = cmd
	w.in = make(chan Item, w.opts.StdinQueue)

	outCh := make(chan Item, w.opts.StdoutQueue)
	w.out = outCh
	w.group.Go(func() error { return readerPumpLoop(stdout, outCh) })
	w.group.Go(func() error { writerPumpLoop(stdin, w.in); return nil })
	return nil
}

// Run drives the script interpreter to completion and returns the
// Worker's termination message, exactly once, per spec.md §3's
// invariant. It blocks until the Worker's Line Pumps have also exited.
func (w *Worker) Run() (result harness.TerminationMessage) {
	defer func() {
		if r := recover(); r != nil {
			w.Kill()
			result = harness.TerminationMessage{
				Title: w.title, Outcome: harness.FAIL,
				Detail: fmt.Sprintf("%v", r), Line: w.script.Line(),
			}
		}
		w.signalTeardown()
		_ = w.group.Wait()
	}()

	if err := w.interpret(); err != nil {
		w.Kill()
		var ie *InterpreterError
		if errors.As(err, &ie) {
			return harness.TerminationMessage{Title: w.title, Outcome: ie.Outcome, Detail: ie.Msg, Line: ie.Line}
		}
		return harness.TerminationMessage{Title: w.title, Outcome: harness.FAIL, Detail: err.Error(), Line: w.script.Line()}
	}
	return harness.TerminationMessage{Title: w.title, Outcome: harness.OK}
}

// Kill best-effort terminates the subprocess. Idempotent and safe to
// call even if spawn never ran, per spec.md §3's lifecycle rule.
func (w *Worker) Kill() {
	killProcess(w.cmd)
}

// Log returns the Worker's buffered verbose trace, or nil if none was
// configured.
func (w *Worker) Log() *tlog.WorkerLog {
	return w.logger
}

// signalTeardown unblocks the writer pump and an awaiting peer so Run's
// final group.Wait() cannot hang, regardless of which error path got us
// here. Both sends are non-blocking: if the writer pump or peer queue
// already consumed (or will never consume) this, it is dropped.
func (w *Worker) signalTeardown() {
	if w.in != nil {
		select {
		case w.in <- EOF:
		default:
		}
	}
	_ = w.peer.sendToPeer(EOF, true)
}

// interpret repeatedly reads the next non-empty command and dispatches
// it, per spec.md §4.2, then runs the implicit finish step.
func (w *Worker) interpret() error {
	for {
		cmd, _, ok := w.script.Next()
		if !ok {
			break
		}
		w.log("* %s", cmd)
		if err := w.dispatch(cmd); err != nil {
			return err
		}
	}
	return w.finish()
}

// dispatch matches cmd against spec.md §4.2's ordered command table,
// first match wins.
func (w *Worker) dispatch(cmd string) error {
	if m := reTime.FindStringSubmatch(cmd); m != nil {
		return w.doTime(m[1])
	}
	if reTotalTime.MatchString(cmd) {
		return nil // no-op; the Match deadline comes only from totalTimePattern, which this form does not match
	}
	if m := reOutput.FindStringSubmatch(cmd); m != nil {
		return w.checkOutput(m[1], m[2])
	}
	if m := reRed.FindStringSubmatch(cmd); m != nil {
		return w.playSelf("red", m[2])
	}
	if m := reBlue.FindStringSubmatch(cmd); m != nil {
		return w.playSelf("blue", m[2])
	}
	if m := reSend.FindStringSubmatch(cmd); m != nil {
		return w.sendRecvMoves(true, m[1], m[2])
	}
	if m := reRecv.FindStringSubmatch(cmd); m != nil {
		return w.sendRecvMoves(false, m[1], m[2])
	}
	if strings.HasPrefix(cmd, "@") {
		return w.fail("bad command in script")
	}
	w.send(cmd)
	return nil
}

func (w *Worker) doTime(numStr string) error {
	secs, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return w.fail("bad number")
	}
	w.opLimit = time.Duration(secs * float64(time.Second))
	return nil
}

// checkOutput implements the @< / @? output-match handler of spec.md §4.2.
func (w *Worker) checkOutput(typ, patternStr string) error {
	item, ok := w.getOutput()
	if !ok {
		return w.errorf("timed out waiting for output")
	}
	if item.IsEOF() {
		return w.errorf("premature end of output")
	}
	line := item.Text()
	if strings.Contains(line, "Exception") {
		return w.errorf("uncaught exception occurred: %s", line)
	}
	norm := linefmt.Normalize(line)

	switch typ {
	case "<":
		if norm == patternStr {
			return nil
		}
	case "?":
		re, err := regexp.Compile(patternStr)
		if err != nil {
			return w.fail("bad test pattern: %s", patternStr)
		}
		if matchesAtStart(re, norm) {
			return nil
		}
	}
	return w.errorf("output mismatch (%s / %s)", norm, patternStr)
}

// playSelf implements @red... / @blue... self-play, per spec.md §4.2.
func (w *Worker) playSelf(startColor, endPattern string) error {
	endRe, err := compileEndPattern(endPattern)
	if err != nil {
		return w.fail("bad test pattern: %s", endPattern)
	}

	toMove := startColor
	var last classifiedMove
	for {
		cm, err := w.getMove(toMove)
		if err != nil {
			return err
		}
		last = cm
		if cm.terminal() {
			break
		}
		toMove = linefmt.Opposite(toMove)
	}
	if endRe != nil && !matchesAtStart(endRe, last.raw) {
		return w.errorf("outcome does not match end pattern")
	}
	return nil
}

// sendRecvMoves implements @send / @recv paired play, per spec.md §4.2's
// "Paired play" protocol loop. first_mover/second_mover alternate as
// send_mover/recv_mover depending on whether this Worker sends first.
func (w *Worker) sendRecvMoves(sendFirst bool, firstMover, endPattern string) error {
	endRe, err := compileEndPattern(endPattern)
	if err != nil {
		return w.fail("bad test pattern: %s", endPattern)
	}

	secondMover := linefmt.Opposite(firstMover)
	var sendMover, recvMover string
	send := sendFirst
	if sendFirst {
		sendMover, recvMover = firstMover, secondMover
	} else {
		sendMover, recvMover = secondMover, firstMover
	}

	var agreed string
	for {
		if send {
			cm, err := w.getMove(sendMover)
			if err != nil {
				return err
			}
			if err := w.peer.sendToPeer(Line(cm.raw), false); err != nil {
				return w.errorf("%s", err)
			}
			if cm.terminal() {
				other, err := w.getPeerMove(recvMover)
				if err != nil {
					return err
				}
				if cm.raw != other.raw {
					return w.errorf("game outcomes don't agree")
				}
				agreed = cm.raw
				break
			}
		}
		send = true

		other, err := w.getPeerMove(recvMover)
		if err != nil {
			return err
		}
		if other.terminal() {
			cm, err := w.getMove(sendMover)
			if err != nil {
				return err
			}
			if err := w.peer.sendToPeer(Line(cm.raw), false); err != nil {
				return w.errorf("%s", err)
			}
			if cm.raw != other.raw {
				return w.errorf("game outcomes don't agree")
			}
			agreed = cm.raw
			break
		}
		w.send(other.raw)
	}

	if endRe != nil && !matchesAtStart(endRe, agreed) {
		return w.errorf("outcome does not match end pattern")
	}
	return nil
}

// finish implements the implicit final step of spec.md §4.2's "Worker
// finish": send end-of-input, expect end-of-output, then a clean exit.
func (w *Worker) finish() error {
	w.sendEOF()
	_ = w.peer.sendToPeer(EOF, true)

	item, ok := w.getOutput()
	if !ok {
		return w.errorf("program did not terminate properly")
	}
	if !item.IsEOF() {
		return w.errorf("program produced extra output")
	}

	code, exited := waitExit(w.cmd, w.opLimit)
	if !exited {
		return w.errorf("program did not terminate properly")
	}
	if code != 0 {
		return w.errorf("program terminated with error exit")
	}
	return nil
}

// send enqueues a literal line to the subprocess's stdin queue.
func (w *Worker) send(line string) {
	if line == "" {
		return
	}
	w.in <- Line(line)
}

func (w *Worker) sendEOF() {
	w.in <- EOF
}

// getOutput waits up to op_limit for the next output item. ok is false
// on timeout.
func (w *Worker) getOutput() (Item, bool) {
	if w.eofSeen {
		return EOF, true
	}
	select {
	case item := <-w.out:
		if item.IsEOF() {
			w.eofSeen = true
		}
		w.log("< %s", itemLogText(item))
		return item, true
	case <-time.After(w.opLimit):
		return Item{}, false
	}
}

// getMove reads and classifies the next move from this Worker's own
// subprocess, per spec.md §4.2's get_move.
func (w *Worker) getMove(who string) (classifiedMove, error) {
	item, ok := w.getOutput()
	if !ok {
		return classifiedMove{}, w.errorf("timed out waiting for my %s move", who)
	}
	if item.IsEOF() {
		return classifiedMove{}, w.errorf("game output truncated")
	}
	cm, err := classifyMove(who, item.Text())
	if err != nil {
		return classifiedMove{}, w.fail("%s", err)
	}
	return cm, nil
}

// getPeerMove reads and classifies the next move forwarded by the peer,
// per spec.md §4.2's get_other_move.
func (w *Worker) getPeerMove(who string) (classifiedMove, error) {
	if !w.peer.connected() {
		return classifiedMove{}, w.errorf("no other program")
	}
	select {
	case item := <-w.peer.recv:
		w.log("R< %s", itemLogText(item))
		if item.IsEOF() {
			return classifiedMove{}, w.errorf("game output truncated")
		}
		cm, err := classifyMove(who, item.Text())
		if err != nil {
			return classifiedMove{}, w.fail("%s", err)
		}
		return cm, nil
	case <-time.After(w.opLimit):
		return classifiedMove{}, w.errorf("timed out waiting for other's %s move", who)
	}
}

func (w *Worker) fail(format string, a ...any) error {
	return &InterpreterError{Outcome: harness.FAIL, Line: w.script.Line(), Msg: fmt.Sprintf(format, a...), kind: harness.ErrTestFail}
}

func (w *Worker) errorf(format string, a ...any) error {
	return &InterpreterError{Outcome: harness.ERROR, Line: w.script.Line(), Msg: fmt.Sprintf(format, a...), kind: harness.ErrTestError}
}

func (w *Worker) log(format string, a ...any) {
	if w.logger != nil {
		w.logger.Logf(format, a...)
	}
}

func itemLogText(item Item) string {
	if item.IsEOF() {
		return "<EOF>"
	}
	return item.Text()
}

// compileEndPattern mirrors the original source's check_patn: a blank
// or whitespace-only pattern means "no end-pattern constraint".
func compileEndPattern(pattern string) (*regexp.Regexp, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, nil
	}
	return regexp.Compile(pattern)
}

// matchesAtStart mirrors Python's re.match semantics (anchored at the
// start of the string, not required to consume all of it) rather than
// Go regexp's default unanchored search.
func matchesAtStart(re *regexp.Regexp, s string) bool {
	loc := re.FindStringIndex(s)
	return loc != nil && loc[0] == 0
}
