package engine

import (
	"io"
	"strings"
	"testing"

	"github.com/wyshell/wyshell/internal/argv"
	"github.com/wyshell/wyshell/internal/builtin"
	"github.com/wyshell/wyshell/internal/config"
	"github.com/wyshell/wyshell/internal/redirect"
	"github.com/wyshell/wyshell/internal/registry"
	"github.com/wyshell/wyshell/internal/shlog"
)

func TestNewAppliesConfiguredNullDevicePath(t *testing.T) {
	orig := redirect.NullDevicePath
	defer func() { redirect.NullDevicePath = orig }()

	cfg := config.Default()
	cfg.NullDevicePath = "/dev/custom-null"
	New(cfg, registry.New(), Collaborators{Parser: spaceParser{}}, shlog.New(io.Discard))

	if redirect.NullDevicePath != "/dev/custom-null" {
		t.Fatalf("redirect.NullDevicePath = %q, want %q", redirect.NullDevicePath, "/dev/custom-null")
	}
}

func TestRequestCancelClosesCancelEventAndIsIdempotent(t *testing.T) {
	e := newTestEngine()
	before := e.cancelEvent()
	select {
	case <-before:
		t.Fatal("cancel event should not be closed before RequestCancel")
	default:
	}

	e.RequestCancel()
	e.RequestCancel() // must not panic on a second close

	select {
	case <-before:
	default:
		t.Fatal("expected cancel event to be closed after RequestCancel")
	}

	e.ResetCancel()
	after := e.cancelEvent()
	select {
	case <-after:
		t.Fatal("expected a fresh cancel event after ResetCancel")
	default:
	}
}

type spaceParser struct{}

func (spaceParser) Parse(source string, cursorOffset int) (argv.CommandContext, error) {
	fields := strings.Fields(source)
	v := make(argv.Vector, len(fields))
	for i, f := range fields {
		v[i] = argv.Arg{Text: f}
	}
	return argv.CommandContext{Vector: v}, nil
}

func newTestEngine() *Engine {
	reg := registry.New()
	builtin.RegisterAll(reg)
	reg.RegisterStatic("greet", func(argc int, argv []string) int {
		_, _ = redirect.CurrentStdout.Write([]byte("hi\n"))
		return 0
	})
	reg.RegisterStatic("fail", func(argc int, argv []string) int { return 3 })

	return New(config.Default(), reg, Collaborators{Parser: spaceParser{}}, shlog.New(io.Discard))
}

func TestExecuteRunsRegisteredBuiltin(t *testing.T) {
	e := newTestEngine()
	if _, err := e.Execute("greet", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExecuteExpandsBackquoteBeforeRunning(t *testing.T) {
	e := newTestEngine()
	if _, err := e.Execute("echo `greet`", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExecutePublishesErrorLevel(t *testing.T) {
	e := newTestEngine()
	if _, err := e.Execute("fail", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.ErrorLevel() != 3 {
		t.Fatalf("ErrorLevel() = %d, want 3", e.ErrorLevel())
	}
}

func TestExecuteUnknownCommandSetsFailureErrorLevel(t *testing.T) {
	e := newTestEngine()
	if _, err := e.Execute("doesnotexist", false); err != nil {
		t.Fatalf("unexpected error: %v (an unresolvable command is handled at the node level)", err)
	}
	if e.ErrorLevel() != 1 {
		t.Fatalf("ErrorLevel() = %d, want 1", e.ErrorLevel())
	}
}
