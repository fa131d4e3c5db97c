package builtin

import (
	"fmt"
	"os"

	"github.com/wyshell/wyshell/internal/redirect"
)

func init() { registerBuiltin("cd", cdMain) }

func cdMain(argc int, argv []string) int {
	if argc < 2 {
		wd, err := os.Getwd()
		if err != nil {
			fmt.Fprintln(redirect.CurrentStderr, err)
			return 1
		}
		fmt.Fprintln(redirect.CurrentStdout, wd)
		return 0
	}
	if err := os.Chdir(argv[1]); err != nil {
		fmt.Fprintln(redirect.CurrentStderr, err)
		return 1
	}
	return 0
}
