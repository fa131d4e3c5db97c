package builtin

import "strings"

func init() { registerBuiltin("title", titleMain) }

func titleMain(argc int, argv []string) int {
	if argc < 2 {
		return 0
	}
	setConsoleTitle(strings.Join(argv[1:], " "))
	return 0
}
