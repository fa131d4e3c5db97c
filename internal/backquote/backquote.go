// Package backquote implements back-quote expansion, spec.md §4.7: rescan
// an expression for a pair of unescaped back-quotes, run whatever lies
// between them as a captured sub-command, splice its trimmed output back
// into the expression, and repeat until no pair remains.
package backquote

import (
	"strings"

	"github.com/wyshell/wyshell/internal/collab"
	"github.com/wyshell/wyshell/internal/plan"
	"github.com/wyshell/wyshell/internal/redirect"
)

// Deps collects the external collaborators and plan-walking dependencies
// one expansion pass needs.
type Deps struct {
	Parser   collab.LineParser
	Expander collab.EnvExpander
	Walk     plan.Deps
}

// Expand repeatedly rescans expr for a back-quoted sub-command, runs it,
// and splices its captured output back in, per spec.md §4.7 steps 1-8.
// It returns the fully expanded expression with no back-quote pairs left.
func Expand(expr string, deps Deps) (string, error) {
	for {
		start, end, found := findPair(expr)
		if !found {
			return expr, nil
		}

		inner := expr[start+1 : end]
		prefix := expr[:start]
		suffix := expr[end+1:]

		captured, err := runCaptured(inner, deps)
		if err != nil {
			return "", err
		}

		expr = prefix + captured + suffix
	}
}

// findPair locates the first pair of unescaped back-quotes in expr,
// honoring the tokenizer's escape convention: a back-quote immediately
// preceded by an escape character is not a delimiter. Byte offsets are
// returned since argument text here is already resolved plain source, not
// re-tokenized.
func findPair(expr string) (start, end int, found bool) {
	start = -1
	for i := 0; i < len(expr); i++ {
		if expr[i] != '`' {
			continue
		}
		if i > 0 && expr[i-1] == '\\' {
			continue
		}
		if start == -1 {
			start = i
			continue
		}
		return start, i, true
	}
	return 0, 0, false
}

// runCaptured parses, expands, plans, and walks the extracted substring,
// forcing every node's default stdout into a waited buffer capture (step
// 4), then trims and flattens the result (step 6).
func runCaptured(inner string, deps Deps) (string, error) {
	ctx, err := deps.Parser.Parse(inner, 0)
	if err != nil {
		return "", err
	}
	if deps.Expander != nil {
		ctx = deps.Expander.Expand(ctx)
	}

	p, err := plan.Build(ctx, true)
	if err != nil {
		return "", err
	}
	forceCapture(p)

	buf, err := plan.Walk(p, deps.Walk, true)
	if err != nil {
		return "", err
	}
	if buf == nil {
		return "", nil
	}
	buf.WaitForFinalize()

	return flatten(buf.ReadContents()), nil
}

// forceCapture switches every node whose stdout is still the default
// (inherit) into a waited buffer capture, per spec.md §4.7 step 4: a
// back-quoted sub-command's own stdout redirection is irrelevant, since
// the point of running it is to capture whatever it would otherwise print.
func forceCapture(p *plan.Plan) {
	for _, n := range p.Nodes() {
		if n.Stdout.Kind == redirect.StdoutInherit {
			n.Stdout = redirect.StdoutSpec{Kind: redirect.StdoutToBuffer}
		}
		n.Flags.WaitForCompletion = true
	}
}

// flatten trims trailing newlines and folds any remaining newline into a
// single space, per spec.md §4.7 step 6 — a captured multi-line output
// becomes one space-joined argument word.
func flatten(contents []byte) string {
	s := strings.TrimRight(string(contents), "\r\n")
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return s
}
