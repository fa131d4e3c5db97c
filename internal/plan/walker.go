package plan

import (
	"strings"
	"time"

	"github.com/wyshell/wyshell/internal/builtin"
	"github.com/wyshell/wyshell/internal/cancel"
	"github.com/wyshell/wyshell/internal/collab"
	"github.com/wyshell/wyshell/internal/launcher"
	"github.com/wyshell/wyshell/internal/pipefabric"
	"github.com/wyshell/wyshell/internal/redirect"
	"github.com/wyshell/wyshell/internal/registry"
	"github.com/wyshell/wyshell/internal/shlog"
	"github.com/wyshell/wyshell/internal/wyerr"
)

// Deps collects every external collaborator and shared mutable-state
// location the walker touches, per spec.md §6 (path resolver, alias
// expander) and §5 (the shell's process-wide error-level location).
type Deps struct {
	PathResolver  collab.PathResolver
	AliasExpander collab.AliasExpander
	Registry      *registry.Registry
	Invoker       *builtin.Invoker

	// Cancelled reports whether the user has requested cancellation since
	// the walk began (spec.md §4.6 step 2).
	Cancelled func() bool

	// CancelEvent fires (by closing) the moment cancellation is requested,
	// letting a node currently blocked in the wait loop react immediately
	// instead of waiting for the next node boundary's Cancelled() poll.
	CancelEvent <-chan struct{}

	// Input is the console-input heuristic source the wait loop polls for
	// a sustained Ctrl-B / lose-focus (spec.md §4.4). A host with no
	// attached console passes cancel.NullInputPeeker{}.
	Input cancel.InputPeeker

	// Log reports a per-node failure handled locally per spec.md §7 (resource
	// acquisition, redirection, process-create, elevation-UI, built-in-not-
	// found) to the shell's real standard error. A nil Log silently drops
	// these lines rather than panicking — a caller that doesn't care to
	// surface them (e.g. a test) can leave it unset.
	Log *shlog.Logger

	// PollInterval, TerminateGracePeriod, and BackgroundDetectPolls are
	// internal/config's tunable forms of spec.md §4.4's wait-loop and
	// cancellation-sweep constants.
	PollInterval          time.Duration
	TerminateGracePeriod  time.Duration
	BackgroundDetectPolls int

	// Subshell re-invokes the shell interpreter on an entire command
	// string, per spec.md §4.6's "delegate the entire plan to a subshell"
	// special case and step 6's resolution-failure fallback.
	Subshell func(commandLine string, singleStatement bool) error

	// ErrorLevel is the shell's global error-level location (spec.md §4.6
	// step 8): set after every node and read by on-success/on-failure
	// chaining.
	ErrorLevel *int
}

func (d Deps) errorLevel() int {
	if d.ErrorLevel == nil {
		return 0
	}
	return *d.ErrorLevel
}

// Walk runs the plan per spec.md §4.6. captureRequested tells the walker
// whether the caller wants the final buffer back (for back-quote capture);
// when false and the plan has more than one command and its top-level wait
// flag is false, the entire plan is delegated to a subshell instead of
// walked directly.
func Walk(p *Plan, deps Deps, captureRequested bool) (*pipefabric.Buffer, error) {
	if !captureRequested && p.NumCommands > 1 && !p.Wait {
		return nil, deps.Subshell(p.EntireCommand.Vector.CommandLine(), true)
	}

	var lastBuffer *pipefabric.Buffer
	cancelled := false

	for n := p.Head; n != nil; {
		// Step 1: inherit the previous buffer for append-mode reuse.
		var inherit *pipefabric.Buffer
		if lastBuffer != nil && n.Stdout.Kind == redirect.StdoutToBuffer && n.Flags.WaitForCompletion {
			inherit = lastBuffer
		}

		// Step 2: cancellation check.
		if deps.Cancelled != nil && deps.Cancelled() {
			cancelled = true
			break
		}

		// Step 3: alias expansion.
		if deps.AliasExpander != nil {
			n.Command.Vector = deps.AliasExpander.Expand(n.Command.Vector)
		}

		// A node whose stdout feeds the next node's stdin (Build's "|"
		// wiring) gets a pipefabric buffer standing in for the OS pipe:
		// the walker runs one node to completion before the next starts,
		// so the buffer's accumulate-then-forward shape already matches
		// that sequencing without needing a live concurrent pipe.
		var pipeBuf *pipefabric.Buffer
		if n.Stdout.Kind == redirect.StdoutToPipe {
			var err error
			pipeBuf, n.Stdout.Pipe, err = pipefabric.CreateNew()
			if err != nil {
				return nil, err
			}
		}

		buf, err := runNode(p, n, deps, inherit)
		if err != nil {
			if !wyerr.NodeError(err) {
				return nil, err
			}
			// spec.md §7: these failure classes are handled locally at the
			// node level — report, fold into error-level, and keep walking
			// instead of aborting the whole plan.
			if deps.Log != nil {
				deps.Log.Errorf("%v", err)
			}
			n.exitCode = 1
			if pipeBuf != nil {
				// Clean the half-built pipe to the next node rather than
				// leaving its write end dangling.
				_ = n.Stdout.Pipe.Close()
			}
			if n.Next != nil && n.Next.Stdin.Kind == redirect.StdinFromPipe {
				n.NextTag = Never
			}
			buf = nil
		}

		if pipeBuf != nil {
			forwardBuf := pipeBuf
			if buf != nil {
				// The node resolved to a built-in: Invoker.Invoke coerces a
				// requested pipe into a buffer of its own (built-ins can't
				// be wired to a live concurrent OS pipe) and never touches
				// the pipe created above, so close its write end to unblock
				// the now-abandoned drain and forward from the buffer the
				// built-in actually wrote to instead.
				_ = n.Stdout.Pipe.Close()
				forwardBuf = buf
			}
			forwardBuf.WaitForFinalize()
			if n.Next != nil && n.Next.Stdin.Kind == redirect.StdinFromPipe {
				n.Next.Stdin.Pipe = forwardBuf.ForwardToNext()
			}
		}

		// Step 9: remember this node's output buffer so the next node can
		// chain into it.
		lastBuffer = buf

		// Step 8: publish exit status to the shell's global error-level
		// location.
		if deps.ErrorLevel != nil {
			*deps.ErrorLevel = n.exitCode
		}

		// Step 10: choose the next node per conditional tag.
		n = advance(n, deps.errorLevel())
	}

	if cancelled {
		cancel.PoliteThenForceful(remainder(p), deps.TerminateGracePeriod)
	}

	return lastBuffer, nil
}

func remainder(p *Plan) []cancel.CancellableNode {
	var out []cancel.CancellableNode
	for n := p.Head; n != nil; n = n.Next {
		out = append(out, n)
	}
	return out
}

// advance implements step 10's conditional-tag rules, skipping a
// contiguous run of on-success/concurrent (or on-failure/concurrent) nodes
// when the preceding branch's condition was not met.
func advance(n *Node, errorLevel int) *Node {
	switch n.NextTag {
	case Always, Concurrent:
		return n.Next
	case OnSuccess:
		if errorLevel == 0 {
			return n.Next
		}
		return skipRun(n, OnSuccess)
	case OnFailure:
		if errorLevel != 0 {
			return n.Next
		}
		return skipRun(n, OnFailure)
	case Never:
		return nil
	default:
		return n.Next
	}
}

// skipRun starts at n, whose condition was not met, and follows the
// contiguous run of links chained by tag or Concurrent; every node reached
// through that run is skipped, and the node after the run's last member is
// returned.
func skipRun(n *Node, tag ConditionalTag) *Node {
	for n != nil && (n.NextTag == tag || n.NextTag == Concurrent) {
		n = n.Next
	}
	if n == nil {
		return nil
	}
	return n.Next
}

// runNode executes steps 4-9 for one node: URL routing, the "BUILTIN"
// literal escape hatch, path resolution, external launch, built-in
// invocation.
func runNode(p *Plan, n *Node, deps Deps, inheritBuffer *pipefabric.Buffer) (*pipefabric.Buffer, error) {
	args := n.Command.Vector.Strings()
	if len(args) == 0 {
		n.exitCode = 0
		return nil, nil
	}

	// Step 4: URL routing.
	if strings.Contains(args[0], "://") {
		return launchExternal(n, deps, inheritBuffer, true)
	}

	// Step 5: the "BUILTIN" literal escape hatch.
	if strings.EqualFold(args[0], "BUILTIN") && len(args) > 1 {
		n.Command.Vector = n.Command.Vector[1:]
		return invokeBuiltinNode(n, deps, inheritBuffer)
	}

	// Step 6: path resolution.
	if deps.PathResolver != nil {
		if resolved, found := deps.PathResolver.Resolve(n.Command.Vector); found {
			n.Command.Vector = resolved
			return launchExternal(n, deps, inheritBuffer, false)
		}
		if p.NumCommands == 1 && !p.Wait && deps.Subshell != nil {
			return nil, deps.Subshell(n.Command.Vector.CommandLine(), true)
		}
		return invokeBuiltinNode(n, deps, inheritBuffer)
	}

	// No path resolver configured: treat every name as a built-in probe.
	return invokeBuiltinNode(n, deps, inheritBuffer)
}

// launchExternal runs launcher.Prepare's routing (unless forceShellExecute
// bypasses it for a URL), then launches directly or falls back to
// shell-execute on an elevation-required / non-executable classification.
func launchExternal(n *Node, deps Deps, inheritBuffer *pipefabric.Buffer, forceShellExecute bool) (*pipefabric.Buffer, error) {
	req := launcher.Request{
		Argv:    n.Command.Vector,
		WorkDir: n.WorkDir,
		Stdin:   n.Stdin,
		Stdout:  n.Stdout,
		Stderr:  n.Stderr,
		Flags:   n.Flags,
	}

	if !forceShellExecute {
		prepared, err := launcher.Prepare(req)
		switch {
		case err == nil:
			req = prepared
		case err == launcher.ErrTryBuiltin:
			return invokeBuiltinNode(n, deps, inheritBuffer)
		default:
			if _, ok := err.(*launcher.ErrShellExecute); ok {
				forceShellExecute = true
			} else {
				return nil, err
			}
		}
	}

	var h *launcher.Handle
	var err error
	if forceShellExecute {
		h, err = launcher.ShellExecute(req)
	} else {
		h, err = launcher.Launch(req)
		if _, ok := err.(*launcher.ErrShellExecute); ok {
			h, err = launcher.ShellExecute(req)
		}
	}
	if err != nil {
		return nil, err
	}

	n.handle = h

	loop := &cancel.Loop{
		Handle:                 h,
		Pid:                    func() int { return h.Pid },
		CancelEvent:            deps.CancelEvent,
		Input:                  deps.Input,
		PollInterval:           deps.PollInterval,
		BackgroundSustainPolls: deps.BackgroundDetectPolls,
	}
	result, waitErr := loop.Run()
	n.exitCode = result.ExitCode
	n.backgrounded = result.Backgrounded
	return nil, waitErr
}

func invokeBuiltinNode(n *Node, deps Deps, inheritBuffer *pipefabric.Buffer) (*pipefabric.Buffer, error) {
	args := n.Command.Vector.Strings()
	if len(args) == 0 {
		n.exitCode = 0
		return nil, nil
	}

	cb, ok := deps.Registry.Lookup(args[0])
	if !ok {
		suggestions := deps.Registry.Suggest(args[0])
		return nil, &wyerr.BuiltinNotFoundError{Name: args[0], Suggestions: suggestions}
	}

	res, err := deps.Invoker.Invoke(cb, builtin.Request{
		Argv:          n.Command.Vector,
		Stdin:         n.Stdin,
		Stdout:        n.Stdout,
		Stderr:        n.Stderr,
		InheritBuffer: inheritBuffer,
	})
	if err != nil {
		return nil, err
	}
	n.exitCode = res.ExitCode
	return res.Buffer, nil
}
