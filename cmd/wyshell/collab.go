package main

import (
	"os"
	"os/exec"
	"strings"

	"github.com/wyshell/wyshell/internal/argv"
)

// basicParser is the minimal stand-in for the external lexer/parser
// collaborator spec.md §6 places out of scope: whitespace-delimited
// tokenizing with double-quote grouping and a caret escape character, in
// the Windows-shell convention the rest of this engine targets. A real
// deployment would replace this with a proper command-line editor/parser;
// this is enough to drive the engine end to end.
type basicParser struct{}

func (basicParser) Parse(source string, cursorOffset int) (argv.CommandContext, error) {
	var vec argv.Vector
	var cur strings.Builder
	var quoted, hasEscapes, inQuotes, haveArg bool

	flush := func() {
		if haveArg {
			vec = append(vec, argv.Arg{Text: cur.String(), Quoted: quoted, HasEscapes: hasEscapes})
		}
		cur.Reset()
		quoted, hasEscapes, haveArg = false, false, false
	}

	runes := []rune(source)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case c == '^' && i+1 < len(runes) && !inQuotes:
			hasEscapes = true
			haveArg = true
			cur.WriteRune(runes[i+1])
			i++
		case c == '"':
			inQuotes = !inQuotes
			quoted = true
			haveArg = true
		case c == ' ' || c == '\t':
			if inQuotes {
				cur.WriteRune(c)
				haveArg = true
			} else {
				flush()
			}
		default:
			cur.WriteRune(c)
			haveArg = true
		}
	}
	flush()

	return argv.CommandContext{Vector: vec, CurrentIndex: len(vec) - 1}, nil
}

// basicPathResolver resolves the vector's first argument against PATH via
// exec.LookPath, the stdlib's own idiom for this (no pack library wraps
// PATH search any more directly).
type basicPathResolver struct{}

func (basicPathResolver) Resolve(v argv.Vector) (argv.Vector, bool) {
	if len(v) == 0 {
		return v, false
	}
	full, err := exec.LookPath(v.First())
	if err != nil {
		return v, false
	}
	return v.WithFirst(full), true
}

// basicAliasExpander expands a user-configured alias table, if one was
// loaded; with no aliases registered it passes every vector through
// unchanged, per collab.AliasExpander's contract.
type basicAliasExpander struct {
	aliases map[string]string
}

func (a basicAliasExpander) Expand(v argv.Vector) argv.Vector {
	if len(v) == 0 {
		return v
	}
	if target, ok := a.aliases[strings.ToLower(v.First())]; ok {
		return v.WithFirst(target)
	}
	return v
}

// basicEnvExpander expands %VAR% references, the Windows-family
// convention spec.md's domain targets.
type basicEnvExpander struct{}

func (basicEnvExpander) Expand(ctx argv.CommandContext) argv.CommandContext {
	out := ctx.Clone()
	for i, a := range out.Vector {
		out.Vector[i].Text = expandPercentVars(a.Text)
	}
	return out
}

func expandPercentVars(s string) string {
	var b strings.Builder
	for {
		start := strings.IndexByte(s, '%')
		if start == -1 {
			b.WriteString(s)
			break
		}
		end := strings.IndexByte(s[start+1:], '%')
		if end == -1 {
			b.WriteString(s)
			break
		}
		end += start + 1
		name := s[start+1 : end]
		b.WriteString(s[:start])
		if name == "" {
			b.WriteByte('%')
		} else {
			b.WriteString(os.Getenv(name))
		}
		s = s[end+1:]
	}
	return b.String()
}
