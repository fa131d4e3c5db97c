//go:build !windows

package cancel

import "syscall"

// SendBreak approximates CTRL_BREAK_EVENT with SIGINT to the process
// group, the non-Windows development stand-in for spec.md §4.4's
// controlled break (no console-ctrl-event concept exists here).
func SendBreak(pid int) error {
	return syscall.Kill(-pid, syscall.SIGINT)
}
