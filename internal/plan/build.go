package plan

import (
	"errors"

	"github.com/wyshell/wyshell/internal/argv"
	"github.com/wyshell/wyshell/internal/launcher"
	"github.com/wyshell/wyshell/internal/redirect"
)

var errMissingOperand = errors.New("redirection operator missing its target argument")

// Build converts a command context's flat argument vector into a linked
// Node chain, recognizing the pipe, redirection, and conditional-chaining
// operator tokens spec.md's "execution planner" (§1 item 1, §2's
// "Execution plan" row) turns into pipes and conditional tags. The
// upstream tokenizer/parser (out of scope) is assumed to have already
// split these operators into their own argv.Arg entries rather than
// leaving them glued to adjacent text.
func Build(ctx argv.CommandContext, defaultWait bool) (*Plan, error) {
	p := &Plan{EntireCommand: ctx, Wait: defaultWait}

	var head, tail *Node
	cur := &Node{Flags: defaultFlags(defaultWait)}

	args := ctx.Vector
	i := 0
	flush := func(tag ConditionalTag) {
		p.NumCommands++
		cur.NextTag = tag
		if tail == nil {
			head = cur
		} else {
			tail.Next = cur
		}
		tail = cur
		cur = &Node{Flags: defaultFlags(defaultWait)}
	}

	for i < len(args) {
		tok := args[i].Text
		switch tok {
		case "|":
			cur.Stdout = redirect.StdoutSpec{Kind: redirect.StdoutToPipe}
			flush(Always)
			cur.Stdin = redirect.StdinSpec{Kind: redirect.StdinFromPipe}
			i++
		case "&&":
			flush(OnSuccess)
			i++
		case "||":
			flush(OnFailure)
			i++
		case ";":
			flush(Always)
			i++
		case "&":
			cur.Flags.WaitForCompletion = false
			flush(Concurrent)
			i++
		case ">", "1>":
			path, next, err := takeOperand(args, i)
			if err != nil {
				return nil, err
			}
			cur.Stdout = redirect.StdoutSpec{Kind: redirect.StdoutOverwriteFile, Path: path}
			i = next
		case ">>", "1>>":
			path, next, err := takeOperand(args, i)
			if err != nil {
				return nil, err
			}
			cur.Stdout = redirect.StdoutSpec{Kind: redirect.StdoutAppendFile, Path: path}
			i = next
		case "<":
			path, next, err := takeOperand(args, i)
			if err != nil {
				return nil, err
			}
			cur.Stdin = redirect.StdinSpec{Kind: redirect.StdinFromFile, Path: path}
			i = next
		case "2>":
			path, next, err := takeOperand(args, i)
			if err != nil {
				return nil, err
			}
			cur.Stderr = redirect.StderrSpec{Kind: redirect.StderrOverwriteFile, Path: path}
			i = next
		case "2>>":
			path, next, err := takeOperand(args, i)
			if err != nil {
				return nil, err
			}
			cur.Stderr = redirect.StderrSpec{Kind: redirect.StderrAppendFile, Path: path}
			i = next
		case "2>&1":
			cur.Stderr = redirect.StderrSpec{Kind: redirect.StderrSameAsStdout}
			i++
		default:
			cur.Command.Vector = append(cur.Command.Vector, args[i])
			i++
		}
	}

	p.NumCommands++
	cur.NextTag = Never
	if tail == nil {
		head = cur
	} else {
		tail.Next = cur
	}

	p.Head = head
	return p, nil
}

func defaultFlags(wait bool) launcher.Flags {
	return launcher.Flags{WaitForCompletion: wait}
}

func takeOperand(args argv.Vector, opIndex int) (string, int, error) {
	if opIndex+1 >= len(args) {
		return "", 0, errMissingOperand
	}
	return args[opIndex+1].Text, opIndex + 2, nil
}
