// Package collab declares the boundary contracts of every component spec.md
// §1 places out of scope: the lexer/parser, path resolver, alias expander,
// and environment-variable expander. The execution core depends only on
// these interfaces; a host binary (cmd/wyshell) supplies concrete
// implementations (or stubs, for testing).
package collab

import "github.com/wyshell/wyshell/internal/argv"

// LineParser turns a raw source string and a cursor offset into a command
// context. Contract: arguments are logical strings with quote/escape
// metadata already resolved; the core never re-tokenizes source text.
type LineParser interface {
	Parse(source string, cursorOffset int) (argv.CommandContext, error)
}

// PathResolver rewrites a vector's first argument to an absolute executable
// path if one is found on the search path, reporting found/not-found.
type PathResolver interface {
	Resolve(v argv.Vector) (resolved argv.Vector, found bool)
}

// AliasExpander rewrites a vector's first argument by expanding its alias
// definition, if any is registered. A vector with no matching alias is
// returned unchanged.
type AliasExpander interface {
	Expand(v argv.Vector) argv.Vector
}

// EnvExpander expands embedded environment-variable references in a command
// context's argument text.
type EnvExpander interface {
	Expand(ctx argv.CommandContext) argv.CommandContext
}

// BuiltinFunc is the signature every dynamically loadable built-in module
// exports, and every statically linked YoriCmd_<NAME> symbol implements:
// (argc, argv) -> exit code.
type BuiltinFunc func(argc int, argv []string) int

// StaticExportName builds the "YoriCmd_" + upper-cased name export symbol a
// statically linked built-in must expose, per spec.md §6.
func StaticExportName(name string) string {
	return "YoriCmd_" + upper(name)
}

func upper(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}
