// Package cancel implements the cancellation & wait loop, spec.md §4.4: the
// three-handle wait for one synchronously-waited node, the Ctrl-B
// background-detection heuristic, and the polite-then-forceful two-pass
// plan-cancellation sweep.
package cancel

import (
	"time"
)

// Waiter is the subset of launcher.Handle the wait loop needs: something
// that finishes (process exit, or the debug pump's completion) and reports
// an exit code.
type Waiter interface {
	Wait() (int, error)
	PumpDone() <-chan struct{}
}

// InputPeeker reports the two console-input heuristics spec.md §4.4
// describes without consuming the input: a sustained Ctrl-B ("background
// this"), and a sustained lose-focus event (task-progress indicator). A
// non-interactive host (tests, `-c` one-shot mode) uses NullInputPeeker.
type InputPeeker interface {
	PeekCtrlB() bool
	PeekLoseFocus() bool
}

// NullInputPeeker never reports either heuristic — the stand-in for a host
// with no attached console (spec.md's line-editor/console UI is out of
// scope here).
type NullInputPeeker struct{}

func (NullInputPeeker) PeekCtrlB() bool      { return false }
func (NullInputPeeker) PeekLoseFocus() bool  { return false }

// Result is what the wait loop observed.
type Result struct {
	ExitCode     int
	Backgrounded bool
	LostFocus    bool
}

// Loop is one synchronously-waited node's cancellation & wait loop.
type Loop struct {
	Handle       Waiter
	Pid          func() int
	CancelEvent  <-chan struct{}
	Input        InputPeeker
	PollInterval time.Duration // spacing between console-input polls; defaults to 30ms

	// BackgroundSustainPolls is the number of consecutive polls a heuristic
	// must survive before it's treated as sustained (spec.md §4.4: "three
	// consecutive polling passes", internal/config.BackgroundDetectPolls).
	// Defaults to 3 when zero.
	BackgroundSustainPolls int
}

const defaultBackgroundSustainPolls = 3 // ~90ms at a 30ms poll, per spec.md's "~90 ms total"

// Run waits for the node to finish, for the cancel event, or for a
// sustained console-input heuristic, whichever comes first, per spec.md
// §4.4's three-handle description translated to channel selects (a
// process/pump handle, a cancel-event channel, and a polled console-input
// peek in place of a native peek-handle in a select).
func (l *Loop) Run() (Result, error) {
	if l.PollInterval == 0 {
		l.PollInterval = 30 * time.Millisecond
	}
	sustainPolls := l.BackgroundSustainPolls
	if sustainPolls == 0 {
		sustainPolls = defaultBackgroundSustainPolls
	}

	done := make(chan struct{})
	var waitErr error
	var exitCode int
	go func() {
		exitCode, waitErr = l.Handle.Wait()
		<-l.Handle.PumpDone()
		close(done)
	}()

	ticker := time.NewTicker(l.PollInterval)
	defer ticker.Stop()

	ctrlBStreak := 0
	loseFocusStreak := 0

	for {
		select {
		case <-done:
			return Result{ExitCode: exitCode}, waitErr

		case <-l.CancelEvent:
			pid := 0
			if l.Pid != nil {
				pid = l.Pid()
			}
			if pid != 0 {
				_ = SendBreak(pid)
				return Result{ExitCode: -1}, nil
			}
			// No pid recorded yet: sleep briefly and re-arm so that
			// eventually either the child exists or its launch fails.
			time.Sleep(l.PollInterval / 3)

		case <-ticker.C:
			if l.Input == nil {
				continue
			}
			if l.Input.PeekCtrlB() {
				ctrlBStreak++
			} else {
				ctrlBStreak = 0
			}
			if ctrlBStreak >= sustainPolls {
				return Result{Backgrounded: true}, nil
			}

			if l.Input.PeekLoseFocus() {
				loseFocusStreak++
			} else {
				loseFocusStreak = 0
			}
			if loseFocusStreak >= sustainPolls {
				return Result{LostFocus: true}, nil
			}
		}
	}
}

// CancellableNode is the subset of a plan node the polite-then-forceful
// sweep needs. internal/plan.Node satisfies this implicitly — cancel has no
// import on plan, avoiding a cycle (plan already depends on cancel for the
// sweep call itself).
type CancellableNode interface {
	Pid() int
	Alive() bool
	TerminateGracefully() bool
	Terminate()
}

// PoliteThenForceful runs spec.md §4.4's two-pass plan-cancellation sweep:
// a polite break to every terminate-gracefully node with a pid, a grace
// period (internal/config.TerminateGracePeriod; spec.md §4.4 default "50
// ms"), then a forceful kill of anything still alive. gracePeriod zero
// uses the spec.md default.
func PoliteThenForceful(nodes []CancellableNode, gracePeriod time.Duration) {
	if gracePeriod == 0 {
		gracePeriod = 50 * time.Millisecond
	}

	for _, n := range nodes {
		if n.TerminateGracefully() && n.Alive() && n.Pid() != 0 {
			_ = SendBreak(n.Pid())
		}
	}

	time.Sleep(gracePeriod)

	for _, n := range nodes {
		if n.Alive() {
			n.Terminate()
		}
	}
}
