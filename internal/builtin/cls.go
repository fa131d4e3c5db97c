package builtin

import "github.com/wyshell/wyshell/internal/redirect"

func init() { registerBuiltin("cls", clsMain) }

// clsMain clears the screen via the ANSI clear-and-home sequence, which
// takes effect only where the console or terminal already interprets VT
// sequences; nothing in this core switches that console mode on. A real
// console-buffer-fill implementation is a larger feature this core does
// not otherwise need.
func clsMain(argc int, argv []string) int {
	_, _ = redirect.CurrentStdout.Write([]byte("\x1b[2J\x1b[H"))
	return 0
}
