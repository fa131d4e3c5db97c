package builtin

func init() { registerBuiltin("rem", remMain) }

// remMain is the no-op comment built-in: it exists only so "rem whatever"
// resolves to a built-in instead of a path-resolution failure.
func remMain(argc int, argv []string) int { return 0 }
