//go:build !windows

package redirect

// enableChildConsoleModes and disarmShellCtrlCHandler are no-ops on the
// non-Windows development stand-in: spec.md targets a Windows-family OS
// console API (Non-goals explicitly disclaim cross-platform portability),
// so this file only keeps the package buildable while developing off
// Windows.
func enableChildConsoleModes()   {}
func disarmShellCtrlCHandler()   {}
