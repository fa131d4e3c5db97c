package builtin

import (
	"fmt"
	"strings"

	"github.com/wyshell/wyshell/internal/redirect"
)

func init() { registerBuiltin("echo", echoMain) }

func echoMain(argc int, argv []string) int {
	fmt.Fprintln(redirect.CurrentStdout, strings.Join(argv[1:], " "))
	return 0
}
