package engine

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ataxxtest/harness"
	"github.com/ataxxtest/harness/internal/tlog"
)

// totalTimePattern finds a `total-time <seconds>` directive in a test
// file's raw text, overriding the Match's default deadline. The keyword
// must follow at least one whitespace character at the start of a line
// (an indented line, or a line after a blank one); an `@total-time`
// script line does not match.
var totalTimePattern = regexp.MustCompile(`(?m)^\s+total-time\s+(\d+)`)

// Match runs one test file to completion: it builds one or two Workers
// from the file's sections, cross-links them if there are two, starts
// them concurrently, and classifies the combined outcome, per spec.md
// §4.3.
type Match struct {
	opts    Options
	workers []*Worker
}

// NewMatch parses text into one or two Worker scripts (split on the
// first `----------` separator line, per spec.md §4.3 step 2) and
// constructs the corresponding Workers, cross-linked if there are two.
// It does not start them; call Run for that.
func NewMatch(text string, opts ...Option) *Match {
	o := resolveOptions(opts...)
	if m := totalTimePattern.FindStringSubmatch(text); m != nil {
		if secs, err := strconv.Atoi(m[1]); err == nil {
			o.TotalTime = time.Duration(secs) * time.Second
		}
	}

	m := &Match{opts: o}
	section1, section2, twoWorkers := SplitSections(text)

	w1 := newWorkerShell("Prog1", NewScript(section1, 0), o, nil)
	m.workers = append(m.workers, w1)
	if twoWorkers {
		w2 := newWorkerShell("Prog2", NewScript(section2, len(section1)+1), o, nil)
		connect(w1.peer, w2.peer)
		m.workers = append(m.workers, w2)
	}
	return m
}

// WithWorkerLogs attaches a verbose trace buffer to each Worker, for
// flushing by the driver when verbose mode is on.
func (m *Match) WithWorkerLogs() *Match {
	for _, w := range m.workers {
		w.logger = tlog.NewWorkerLog(w.title)
	}
	return m
}

// Workers returns the Match's Workers, for retrieving their logs after Run.
func (m *Match) Workers() []*Worker {
	return m.workers
}

// Run starts every Worker and waits for all termination messages, per
// spec.md §4.3 steps 5-7, subject to the Match's total-time deadline
// and (for a two-Worker Match) the second Worker's cleanup grace period.
// It returns the combined outcome and a human-readable detail string.
func (m *Match) Run(ctx context.Context) (harness.Outcome, string) {
	term := make(chan harness.TerminationMessage, m.opts.TermQueue)

	var group errgroup.Group
	for _, w := range m.workers {
		w := w
		if msg := w.spawn(); msg != nil {
			term <- *msg
			continue
		}
		group.Go(func() error {
			term <- w.Run()
			return nil
		})
	}

	var msgs []harness.TerminationMessage

	// The timeout paths below do not wait for the Workers: a killed
	// player's own child processes can hold its output pipe open past the
	// deadline. term is buffered, so the Workers' late sends never block.
	select {
	case msg := <-term:
		msgs = append(msgs, msg)
	case <-time.After(m.opts.TotalTime):
		m.killAll()
		return harness.ERROR, fmt.Sprintf("test time exceeded %d seconds", int(m.opts.TotalTime/time.Second))
	case <-ctx.Done():
		m.killAll()
		return harness.ERROR, "test time exceeded"
	}

	if len(m.workers) == 2 {
		select {
		case msg := <-term:
			msgs = append(msgs, msg)
		case <-time.After(m.opts.CleanupWait):
			m.killAll()
			return harness.ERROR, "other program fails to finish"
		}
	}

	_ = group.Wait()
	return classify(msgs)
}

func (m *Match) killAll() {
	for _, w := range m.workers {
		w.Kill()
	}
}

// classify implements spec.md §4.3 step 8's combination rule: all OK
// wins outright; any FAIL makes the whole Match a FAIL; otherwise it is
// an ERROR. Messages are sorted by Title ascending first, matching the
// original driver's tuple sort (titles are always "Prog1"/"Prog2", so
// this is the only field that ever breaks a tie).
func classify(msgs []harness.TerminationMessage) (harness.Outcome, string) {
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].Title < msgs[j].Title })

	allOK := true
	anyFail := false
	for _, msg := range msgs {
		if msg.Outcome != harness.OK {
			allOK = false
		}
		if msg.Outcome == harness.FAIL {
			anyFail = true
		}
	}
	if allOK {
		return harness.OK, ""
	}

	detail := func(msg harness.TerminationMessage) string {
		if msg.Outcome == harness.OK {
			return ""
		}
		return fmt.Sprintf("%s near line %d", msg.Detail, msg.Line)
	}
	var parts []string
	for _, msg := range msgs {
		if d := detail(msg); d != "" {
			parts = append(parts, d)
		}
	}
	joined := ""
	for i, p := range parts {
		if i > 0 {
			joined += "/"
		}
		joined += p
	}
	if anyFail {
		return harness.FAIL, joined
	}
	return harness.ERROR, joined
}
