// Package launcher implements the process launcher, spec.md §4.3: building
// a literal command line, routing by suffix (built-in probe, shell-script
// re-delegation, legacy-batch re-delegation, shell-execute fallback, direct
// process creation), and — when requested — the debug-pump thread that
// captures a child's final environment block.
package launcher

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/wyshell/wyshell/internal/argv"
	"github.com/wyshell/wyshell/internal/redirect"
	"github.com/wyshell/wyshell/internal/wyerr"
)

// Flags mirrors the six execution-context flags spec.md §3 assigns to a
// node that bear on how the launcher runs it.
type Flags struct {
	WaitForCompletion        bool
	RunOnSecondConsole       bool
	CaptureEnvironmentOnExit bool
	IncludeEscapesAsLiteral  bool
	SuppressTaskCompletion   bool
	TerminateGracefully      bool
}

// Request is everything the launcher needs for one node, independent of
// internal/plan's Node type (kept separate to avoid an import cycle: plan
// depends on launcher, not the reverse).
type Request struct {
	Argv    argv.Vector
	WorkDir string
	Stdin   redirect.StdinSpec
	Stdout  redirect.StdoutSpec
	Stderr  redirect.StderrSpec
	Flags   Flags
}

// Handle is a launched process's live state: spec.md's process handle,
// primary-thread handle (folded into Process on this runtime), process id,
// and an optional debug-pump completion channel.
type Handle struct {
	Process *osProcess
	Pid     int

	// pumpDone is closed when the debug-pump goroutine exits, so the
	// cancellation loop's final sweep (spec.md §4.4) can wait on it the way
	// the original waits on the pump thread handle.
	pumpDone chan struct{}
}

// Wait blocks for process exit and returns its exit code. A handle with no
// underlying process (the shell-execute path when the OS declined to hand
// back a waitable process object) returns immediately with exit code 0.
func (h *Handle) Wait() (int, error) {
	if h.Process == nil {
		return 0, nil
	}
	return h.Process.wait()
}

// Terminate force-kills the underlying process, for the cancellation
// sweep's forceful pass (spec.md §4.4).
func (h *Handle) Terminate() {
	if h.Process != nil {
		h.Process.terminate()
	}
}

// Alive reports whether the process has not yet been observed to exit.
func (h *Handle) Alive() bool {
	if h.Process == nil {
		return false
	}
	return h.Process.alive()
}

// PumpDone returns a channel closed once any debug-pump goroutine for this
// handle has exited. A handle launched without environment capture returns
// an already-closed channel.
func (h *Handle) PumpDone() <-chan struct{} {
	if h.pumpDone == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return h.pumpDone
}

// ErrTryBuiltin signals that the first argument's suffix (".com") should be
// resolved against the built-in registry instead of launched as a process,
// per spec.md §4.3 step 2.
var ErrTryBuiltin = fmt.Errorf("launcher: resolve as built-in")

// ErrShellExecute signals the caller must route through the OS
// shell-execute path instead of direct process creation — for non-exe
// suffixes, URL-style paths, or an elevation-required process-create
// failure, per spec.md §4.3 steps 2 and 4.
type ErrShellExecute struct{ Reason string }

func (e *ErrShellExecute) Error() string { return "launcher: shell-execute required: " + e.Reason }

// route classifies argv[0] per spec.md §4.3 step 2's suffix table.
type routeKind int

const (
	routeDirect routeKind = iota
	routeBuiltinProbe
	routeShellScript
	routeLegacyBatch
	routeShellExecute
)

// suffixRoutes is the data-driven suffix table spec.md §4.3 describes as a
// sequence of cases; kept as data so adding a new delegated suffix is a
// one-line change.
var suffixRoutes = map[string]routeKind{
	".com": routeBuiltinProbe,
	".ys":  routeShellScript,
	".bat": routeLegacyBatch,
	".cmd": routeLegacyBatch,
}

func classify(argv0 string) routeKind {
	if strings.Contains(argv0, "://") {
		return routeShellExecute
	}
	ext := strings.ToLower(filepath.Ext(argv0))
	if kind, ok := suffixRoutes[ext]; ok {
		return kind
	}
	switch ext {
	case ".exe", "":
		return routeDirect
	default:
		return routeShellExecute
	}
}

// Prepare resolves req's routing decision without launching anything. The
// plan walker uses this to decide whether to call Launch, fall back to the
// built-in registry, or re-delegate through a subshell.
func Prepare(req Request) (Request, error) {
	if len(req.Argv) == 0 {
		return req, fmt.Errorf("launcher: empty argument vector")
	}

	switch classify(req.Argv.First()) {
	case routeBuiltinProbe:
		return req, ErrTryBuiltin
	case routeShellScript:
		return req.WithPrepended("ys"), nil
	case routeLegacyBatch:
		req = req.WithPrepended(legacyInterpreter(), "/c")
		if req.Flags.WaitForCompletion {
			req.Flags.CaptureEnvironmentOnExit = true
		}
		return req, nil
	case routeShellExecute:
		return req, &ErrShellExecute{Reason: "non-executable suffix or URL path"}
	default:
		return req, nil
	}
}

// WithPrepended returns a copy of req with extra arguments prepended to its
// argv, for shell-script/legacy-batch re-delegation.
func (r Request) WithPrepended(args ...string) Request {
	r.Argv = r.Argv.Prepend(args...)
	return r
}

func legacyInterpreter() string {
	return "cmd.exe"
}

// Launch performs direct process creation (spec.md §4.3 step 3): initialize
// redirection, create the process with inheritable handles and the
// OR-ed creation flags, revert redirection, and record handles. On an
// elevation-required failure it returns *ErrShellExecute so the caller
// falls back, per step 4.
func Launch(req Request) (*Handle, error) {
	scope, err := redirect.Acquire(req.Stdin, req.Stdout, req.Stderr, false)
	if err != nil {
		return nil, &wyerr.RedirectError{Err: err}
	}
	defer scope.Revert()

	h, err := createProcess(req)
	if err != nil {
		if isElevationRequired(err) {
			return nil, &ErrShellExecute{Reason: "elevation required"}
		}
		return nil, &wyerr.ProcessCreateError{Program: req.Argv.First(), Err: err}
	}
	return h, nil
}

// ShellExecute performs the elevation/non-executable fallback launch path
// (spec.md §4.3 step 4, §4.3 step 2's "other non-executable" case).
func ShellExecute(req Request) (*Handle, error) {
	h, err := shellExecute(req)
	if err != nil {
		return nil, &wyerr.ElevationUIError{Err: err}
	}
	return h, nil
}
