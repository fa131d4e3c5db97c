package plan

import (
	"testing"

	"github.com/wyshell/wyshell/internal/argv"
)

func cmdContext(args ...string) argv.CommandContext {
	return argv.CommandContext{Vector: cmdVec(args...)}
}

func TestDumpLoadRoundTripsArgsAndTags(t *testing.T) {
	second := &Node{Command: cmdContext("world")}
	first := &Node{Command: cmdContext("hello"), Next: second, NextTag: OnSuccess}
	p := &Plan{Head: first, NumCommands: 2, Wait: true}

	data, err := Dump(p)
	if err != nil {
		t.Fatalf("dump: %v", err)
	}

	got, err := Load(data)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.NumCommands != 2 || !got.Wait {
		t.Fatalf("unexpected plan metadata: %+v", got)
	}
	if got.Head.Command.Vector.First() != "hello" {
		t.Fatalf("unexpected first node args: %v", got.Head.Command.Vector)
	}
	if got.Head.NextTag != OnSuccess {
		t.Fatalf("expected OnSuccess tag to round-trip, got %v", got.Head.NextTag)
	}
	if got.Head.Next.Command.Vector.First() != "world" {
		t.Fatalf("unexpected second node args: %v", got.Head.Next.Command.Vector)
	}
}
