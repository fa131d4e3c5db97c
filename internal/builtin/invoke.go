// Package builtin implements in-process built-in invocation, spec.md §4.5's
// second half, plus the concrete built-ins themselves. Because a built-in
// mutates process-wide state (the current standard streams, the active
// module pointer), only one may run at a time on the calling thread — the
// invoker in this file enforces the full prepare/invoke/restore sequence
// spec.md numbers as seven steps.
package builtin

import (
	"io"

	"github.com/wyshell/wyshell/internal/argv"
	"github.com/wyshell/wyshell/internal/pipefabric"
	"github.com/wyshell/wyshell/internal/redirect"
	"github.com/wyshell/wyshell/internal/registry"
	"github.com/wyshell/wyshell/internal/wyerr"
)

// Request is everything one built-in invocation needs.
type Request struct {
	Argv   argv.Vector
	Stdin  redirect.StdinSpec
	Stdout redirect.StdoutSpec
	Stderr redirect.StderrSpec

	// InheritBuffer, if non-nil, is a previous node's output buffer this
	// invocation should append to instead of starting a fresh one — the
	// plan walker's "append-mode reuse" case (spec.md §4.6 step 1).
	InheritBuffer *pipefabric.Buffer
}

// Result is what one built-in invocation produced.
type Result struct {
	ExitCode int

	// Buffer is set when Stdout ended up buffer-backed (directly requested,
	// or coerced from ToPipe), so the caller can forward it to the next
	// node or read it back for back-quote capture.
	Buffer *pipefabric.Buffer
}

// Invoker ties built-in invocation to one registry, since active-module
// attribution and registration shadowing are registry-scoped state.
type Invoker struct {
	Registry *registry.Registry
}

// NewInvoker returns an Invoker bound to reg.
func NewInvoker(reg *registry.Registry) *Invoker {
	return &Invoker{Registry: reg}
}

// Invoke runs the built-in named by req.Argv's first element, following
// spec.md §4.5's seven-step sequence. cb must already have been resolved via
// Registry.Lookup — the walker decides whether a name resolves to a
// built-in before calling Invoke, since "not found" has its own error path
// (a BuiltinNotFoundError with fuzzy suggestions) that does not belong here.
func (inv *Invoker) Invoke(cb *registry.Callback, req Request) (*Result, error) {
	stdout := req.Stdout
	var buf *pipefabric.Buffer

	// Step 1: pipes between built-ins are not supported concurrently;
	// coerce a requested pipe into a buffer the next node can forward from.
	if stdout.Kind == redirect.StdoutToPipe {
		stdout.Kind = redirect.StdoutToBuffer
		stdout.Pipe = nil
	}

	// Step 4: create or append to the output buffer.
	if stdout.Kind == redirect.StdoutToBuffer && stdout.Buffer == nil {
		if req.InheritBuffer != nil {
			buf = req.InheritBuffer
			stdout.Buffer = bufferSink{buf}
		} else {
			buf = pipefabric.NewBuffer()
			stdout.Buffer = bufferSink{buf}
		}
	} else if existing, ok := stdout.Buffer.(bufferSink); ok {
		buf = existing.buf
	}

	// Step 2: built-ins see logical argument values; internal/argv's
	// parser contract already resolves escapes into Arg.Text, so the
	// logical strings are simply the vector's Strings().
	args := req.Argv.Strings()

	// Step 3: initialize redirection with prepare-for-builtin = true.
	scope, err := redirect.Acquire(req.Stdin, stdout, req.Stderr, true)
	if err != nil {
		return nil, &wyerr.RedirectError{Err: err}
	}
	defer scope.Revert()

	// Step 5: if module-hosted, increment refcount and set active, saving
	// the previous active module.
	var prevActive *registry.Module
	if cb.Module != nil {
		if _, err := inv.Registry.LoadModule(cb.Module.Path); err != nil {
			return nil, &wyerr.ResourceError{Err: err}
		}
		prevActive = inv.Registry.SetActive(cb.Module)
	}

	// Step 6: invoke the function pointer.
	exitCode := cb.Fn(len(args), args)

	// Step 7: restore previous active module, release the hosting module.
	if cb.Module != nil {
		inv.Registry.RestoreActive(prevActive)
		_ = inv.Registry.ReleaseModule(cb.Module)
	}

	return &Result{ExitCode: exitCode, Buffer: buf}, nil
}

// bufferSink adapts *pipefabric.Buffer to internal/redirect.BufferSink.
type bufferSink struct{ buf *pipefabric.Buffer }

func (b bufferSink) WriteEnd() io.WriteCloser { return b.buf.WriteEnd() }
