package plan

import (
	"testing"

	"github.com/wyshell/wyshell/internal/argv"
	"github.com/wyshell/wyshell/internal/redirect"
)

func ctx(args ...string) argv.CommandContext {
	return argv.CommandContext{Vector: cmdVec(args...)}
}

func TestBuildSingleCommandIsOneNode(t *testing.T) {
	p, err := Build(ctx("dir"), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.NumCommands != 1 {
		t.Fatalf("NumCommands = %d, want 1", p.NumCommands)
	}
	if p.Head.Next != nil {
		t.Fatal("expected a single node with no Next")
	}
	if p.Head.Command.Vector.First() != "dir" {
		t.Fatalf("unexpected command: %v", p.Head.Command.Vector)
	}
}

func TestBuildPipeWiresStdoutAndStdin(t *testing.T) {
	p, err := Build(ctx("dir", "|", "sort"), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.NumCommands != 2 {
		t.Fatalf("NumCommands = %d, want 2", p.NumCommands)
	}
	first := p.Head
	second := first.Next
	if first.Stdout.Kind != redirect.StdoutToPipe {
		t.Fatalf("first node stdout kind = %v, want StdoutToPipe", first.Stdout.Kind)
	}
	if second.Stdin.Kind != redirect.StdinFromPipe {
		t.Fatalf("second node stdin kind = %v, want StdinFromPipe", second.Stdin.Kind)
	}
	if first.NextTag != Always {
		t.Fatalf("pipe join tag = %v, want Always", first.NextTag)
	}
	if second.Command.Vector.First() != "sort" {
		t.Fatalf("unexpected second command: %v", second.Command.Vector)
	}
}

func TestBuildConditionalTags(t *testing.T) {
	p, err := Build(ctx("a", "&&", "b", "||", "c", ";", "d"), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.NumCommands != 4 {
		t.Fatalf("NumCommands = %d, want 4", p.NumCommands)
	}
	n := p.Head
	if n.NextTag != OnSuccess {
		t.Fatalf("node 1 tag = %v, want OnSuccess", n.NextTag)
	}
	n = n.Next
	if n.NextTag != OnFailure {
		t.Fatalf("node 2 tag = %v, want OnFailure", n.NextTag)
	}
	n = n.Next
	if n.NextTag != Always {
		t.Fatalf("node 3 tag = %v, want Always", n.NextTag)
	}
	n = n.Next
	if n.NextTag != Never {
		t.Fatalf("node 4 tag = %v, want Never", n.NextTag)
	}
}

func TestBuildBackgroundAmpersandMarksConcurrentAndNoWait(t *testing.T) {
	p, err := Build(ctx("longtask", "&", "next"), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first := p.Head
	if first.NextTag != Concurrent {
		t.Fatalf("tag = %v, want Concurrent", first.NextTag)
	}
	if first.Flags.WaitForCompletion {
		t.Fatal("expected WaitForCompletion to be cleared for a backgrounded node")
	}
}

func TestBuildRedirections(t *testing.T) {
	p, err := Build(ctx("prog", ">", "out.txt", "<", "in.txt", "2>>", "err.txt"), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n := p.Head
	if n.Stdout.Kind != redirect.StdoutOverwriteFile || n.Stdout.Path != "out.txt" {
		t.Fatalf("unexpected stdout redirection: %+v", n.Stdout)
	}
	if n.Stdin.Kind != redirect.StdinFromFile || n.Stdin.Path != "in.txt" {
		t.Fatalf("unexpected stdin redirection: %+v", n.Stdin)
	}
	if n.Stderr.Kind != redirect.StderrAppendFile || n.Stderr.Path != "err.txt" {
		t.Fatalf("unexpected stderr redirection: %+v", n.Stderr)
	}
	if n.Command.Vector.First() != "prog" || len(n.Command.Vector) != 1 {
		t.Fatalf("redirection tokens leaked into command vector: %v", n.Command.Vector)
	}
}

func TestBuildMissingRedirectionOperandErrors(t *testing.T) {
	_, err := Build(ctx("prog", ">"), true)
	if err == nil {
		t.Fatal("expected an error for a dangling redirection operator")
	}
}
