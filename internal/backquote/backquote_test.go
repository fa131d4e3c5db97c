package backquote

import (
	"strings"
	"testing"

	"github.com/wyshell/wyshell/internal/argv"
	"github.com/wyshell/wyshell/internal/builtin"
	"github.com/wyshell/wyshell/internal/plan"
	"github.com/wyshell/wyshell/internal/redirect"
	"github.com/wyshell/wyshell/internal/registry"
)

type spaceParser struct{}

func (spaceParser) Parse(source string, cursorOffset int) (argv.CommandContext, error) {
	fields := strings.Fields(source)
	v := make(argv.Vector, len(fields))
	for i, f := range fields {
		v[i] = argv.Arg{Text: f}
	}
	return argv.CommandContext{Vector: v}, nil
}

type identityExpander struct{}

func (identityExpander) Expand(ctx argv.CommandContext) argv.CommandContext { return ctx }

func newTestDeps(t *testing.T) Deps {
	reg := registry.New()
	reg.RegisterStatic("whoami", func(argc int, argv []string) int {
		_, _ = redirect.CurrentStdout.Write([]byte("root\n"))
		return 0
	})
	reg.RegisterStatic("lines", func(argc int, argv []string) int {
		_, _ = redirect.CurrentStdout.Write([]byte("one\ntwo\n"))
		return 0
	})
	inv := builtin.NewInvoker(reg)
	errLevel := 0

	return Deps{
		Parser:   spaceParser{},
		Expander: identityExpander{},
		Walk: plan.Deps{
			Registry:   reg,
			Invoker:    inv,
			ErrorLevel: &errLevel,
		},
	}
}

func TestExpandSplicesSingleCapture(t *testing.T) {
	deps := newTestDeps(t)
	got, err := Expand("echo `whoami`", deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "echo root"
	if got != want {
		t.Fatalf("Expand() = %q, want %q", got, want)
	}
}

func TestExpandFlattensInternalNewlines(t *testing.T) {
	deps := newTestDeps(t)
	got, err := Expand("echo `lines`", deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "echo one two"
	if got != want {
		t.Fatalf("Expand() = %q, want %q", got, want)
	}
}

func TestExpandLeavesUnmatchedExpressionAlone(t *testing.T) {
	deps := newTestDeps(t)
	got, err := Expand("echo hello", deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "echo hello" {
		t.Fatalf("Expand() = %q, want unchanged input", got)
	}
}

func TestExpandSkipsEscapedBackquote(t *testing.T) {
	deps := newTestDeps(t)
	input := `echo \` + "`" + `literal` + "`"
	got, err := Expand(input, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The first back-quote is escaped, so only one unescaped delimiter
	// remains in the whole expression — no pair, so nothing is expanded.
	if got != input {
		t.Fatalf("Expand() = %q, want unchanged input %q (escaped back-quote must not be treated as a delimiter)", got, input)
	}
}

func TestExpandRepeatsUntilNoPairRemains(t *testing.T) {
	deps := newTestDeps(t)
	got, err := Expand("a `whoami` b `whoami` c", deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "a root b root c"
	if got != want {
		t.Fatalf("Expand() = %q, want %q", got, want)
	}
}
