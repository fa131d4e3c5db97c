package builtin

import "strconv"

// RequestExit, when set by the host, is called by the exit built-in instead
// of returning a plain exit code — exit terminates the whole shell, not
// just the current invocation, which a return value alone cannot express.
var RequestExit func(code int)

func init() { registerBuiltin("exit", exitMain) }

func exitMain(argc int, argv []string) int {
	code := 0
	if argc >= 2 {
		if n, err := strconv.Atoi(argv[1]); err == nil {
			code = n
		}
	}
	if RequestExit != nil {
		RequestExit(code)
	}
	return code
}
