package plan

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/wyshell/wyshell/internal/argv"
	"github.com/wyshell/wyshell/internal/launcher"
	"github.com/wyshell/wyshell/internal/redirect"
)

// snapshotNode is Node's serializable projection: live handles, the
// in-flight exit code, and anything else tied to a running process are
// dropped, since a snapshot exists to replay the *shape* of a plan
// (`--dump-plan`/`--from-plan`), not to resume a live execution.
type snapshotNode struct {
	Args    []string           `cbor:"args"`
	WorkDir string             `cbor:"work_dir"`
	Stdin   redirect.StdinSpec `cbor:"stdin"`
	Stdout  snapshotStdout     `cbor:"stdout"`
	Stderr  snapshotStderr     `cbor:"stderr"`
	Flags   launcher.Flags     `cbor:"flags"`
	NextTag ConditionalTag     `cbor:"next_tag"`
}

// snapshotStdout/snapshotStderr drop the live Pipe/Buffer fields a redirect
// spec carries (an io.WriteCloser / BufferSink cannot round-trip through
// CBOR), keeping only what a snapshot can faithfully reproduce.
type snapshotStdout struct {
	Kind   redirect.StdoutKind `cbor:"kind"`
	Path   string              `cbor:"path"`
	Append bool                `cbor:"append"`
}

type snapshotStderr struct {
	Kind   redirect.StderrKind `cbor:"kind"`
	Path   string              `cbor:"path"`
	Append bool                `cbor:"append"`
}

// Snapshot is the on-disk form of a Plan for `--dump-plan`.
type Snapshot struct {
	Nodes       []snapshotNode `cbor:"nodes"`
	NumCommands int            `cbor:"num_commands"`
	Wait        bool           `cbor:"wait"`
}

// Dump serializes p to CBOR, dropping anything tied to a live process.
func Dump(p *Plan) ([]byte, error) {
	snap := Snapshot{NumCommands: p.NumCommands, Wait: p.Wait}
	for n := p.Head; n != nil; n = n.Next {
		snap.Nodes = append(snap.Nodes, snapshotNode{
			Args:    n.Command.Vector.Strings(),
			WorkDir: n.WorkDir,
			Stdin:   n.Stdin,
			Stdout: snapshotStdout{
				Kind:   n.Stdout.Kind,
				Path:   n.Stdout.Path,
				Append: n.Stdout.Append,
			},
			Stderr: snapshotStderr{
				Kind:   n.Stderr.Kind,
				Path:   n.Stderr.Path,
				Append: n.Stderr.Append,
			},
			Flags:   n.Flags,
			NextTag: n.NextTag,
		})
	}
	return cbor.Marshal(snap)
}

// Load deserializes a Snapshot back into a runnable Plan, relinking nodes
// in sequence (a dumped plan is always a straight chain; branchy structure
// lives entirely in NextTag, which round-trips).
func Load(data []byte) (*Plan, error) {
	var snap Snapshot
	if err := cbor.Unmarshal(data, &snap); err != nil {
		return nil, err
	}

	p := &Plan{NumCommands: snap.NumCommands, Wait: snap.Wait}
	var tail *Node
	for _, sn := range snap.Nodes {
		v := make(argv.Vector, len(sn.Args))
		for i, a := range sn.Args {
			v[i] = argv.Arg{Text: a}
		}
		n := &Node{
			Command: argv.CommandContext{Vector: v},
			WorkDir: sn.WorkDir,
			Stdin:   sn.Stdin,
			Stdout: redirect.StdoutSpec{
				Kind:   sn.Stdout.Kind,
				Path:   sn.Stdout.Path,
				Append: sn.Stdout.Append,
			},
			Stderr: redirect.StderrSpec{
				Kind:   sn.Stderr.Kind,
				Path:   sn.Stderr.Path,
				Append: sn.Stderr.Append,
			},
			Flags:   sn.Flags,
			NextTag: sn.NextTag,
		}
		if tail == nil {
			p.Head = n
		} else {
			tail.Next = n
		}
		tail = n
	}
	return p, nil
}
