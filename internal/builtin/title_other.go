//go:build !windows

package builtin

// setConsoleTitle is a no-op on the non-Windows development stand-in: there
// is no portable equivalent of SetConsoleTitle outside terminal-specific
// escape sequences, which this core does not emulate.
func setConsoleTitle(title string) {}
