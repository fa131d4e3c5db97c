package builtin

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/wyshell/wyshell/internal/redirect"
)

func init() { registerBuiltin("set", setMain) }

// setMain with no arguments lists the environment; with "NAME=VALUE" it
// assigns; with a bare name it lists matching variables.
func setMain(argc int, argv []string) int {
	if argc < 2 {
		env := os.Environ()
		sort.Strings(env)
		for _, kv := range env {
			fmt.Fprintln(redirect.CurrentStdout, kv)
		}
		return 0
	}

	arg := argv[1]
	if idx := strings.IndexByte(arg, '='); idx >= 0 {
		name, value := arg[:idx], arg[idx+1:]
		if value == "" {
			_ = os.Unsetenv(name)
			return 0
		}
		if err := os.Setenv(name, value); err != nil {
			fmt.Fprintln(redirect.CurrentStderr, err)
			return 1
		}
		return 0
	}

	found := false
	for _, kv := range os.Environ() {
		if strings.HasPrefix(strings.ToUpper(kv), strings.ToUpper(arg)+"=") {
			fmt.Fprintln(redirect.CurrentStdout, kv)
			found = true
		}
	}
	if !found {
		fmt.Fprintf(redirect.CurrentStderr, "Environment variable %s not defined\n", arg)
		return 1
	}
	return 0
}
