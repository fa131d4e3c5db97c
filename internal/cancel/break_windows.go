//go:build windows

package cancel

import "golang.org/x/sys/windows"

// SendBreak delivers CTRL_BREAK_EVENT to the process group pid belongs to,
// the "controlled break to the process group" spec.md §4.4 describes.
func SendBreak(pid int) error {
	return windows.GenerateConsoleCtrlEvent(windows.CTRL_BREAK_EVENT, uint32(pid))
}
