// Package plan implements the execution plan data model and walker,
// spec.md §3 and §4.6: a linked list of execution contexts (Node) connected
// by conditional tags, plus the top-level Plan wrapper the back-quote
// expander and subshell delegation both need.
package plan

import (
	"github.com/wyshell/wyshell/internal/argv"
	"github.com/wyshell/wyshell/internal/launcher"
	"github.com/wyshell/wyshell/internal/redirect"
)

// ConditionalTag selects how the walker advances past a node based on its
// exit status, spec.md §3/§4.6.
type ConditionalTag int

const (
	Always ConditionalTag = iota
	OnSuccess
	OnFailure
	Concurrent
	Never
)

// Node is one execution context: spec.md §3's "owns a command context, a
// redirection specification for each of three streams, flags, a link to
// the next node with a conditional tag, a process handle, a process id,
// and an optional debug-pump thread handle."
type Node struct {
	Command argv.CommandContext
	WorkDir string

	Stdin  redirect.StdinSpec
	Stdout redirect.StdoutSpec
	Stderr redirect.StderrSpec

	Flags launcher.Flags

	Next    *Node
	NextTag ConditionalTag

	handle       *launcher.Handle
	exitCode     int
	backgrounded bool
}

// Backgrounded reports whether the cancellation & wait loop observed a
// sustained Ctrl-B on this node while it was running (spec.md §4.4 step
// 10), independent of whether the node was built with a trailing "&".
func (n *Node) Backgrounded() bool { return n.backgrounded }

// Pid returns the live process id, or 0 if the node has no launched
// process (it resolved to a built-in, or hasn't launched yet).
func (n *Node) Pid() int {
	if n.handle == nil {
		return 0
	}
	return n.handle.Pid
}

// Alive reports whether this node's process has not yet been observed to
// exit. Satisfies internal/cancel.CancellableNode by structure.
func (n *Node) Alive() bool {
	if n.handle == nil {
		return false
	}
	return n.handle.Alive()
}

// TerminateGracefully reports this node's terminate-gracefully flag.
func (n *Node) TerminateGracefully() bool {
	return n.Flags.TerminateGracefully
}

// Terminate force-kills this node's process, if any.
func (n *Node) Terminate() {
	if n.handle != nil {
		n.handle.Terminate()
	}
}

// ExitCode returns the node's recorded exit status after it has run.
func (n *Node) ExitCode() int { return n.exitCode }

// Plan is spec.md §3's "linked list of execution contexts plus an
// 'entire command' context ... a number-of-commands count, and a top-level
// wait flag."
type Plan struct {
	Head         *Node
	EntireCommand argv.CommandContext
	NumCommands  int
	Wait         bool
}

// Nodes returns every node in the plan, head to tail, for the
// polite-then-forceful cancellation sweep (spec.md §4.4), which needs the
// whole remainder, not just the current node.
func (p *Plan) Nodes() []*Node {
	var out []*Node
	for n := p.Head; n != nil; n = n.Next {
		out = append(out, n)
	}
	return out
}
