//go:build windows

package redirect

import "golang.org/x/sys/windows"

// enableChildConsoleModes restores processed/line/echo input modes on the
// console so a non-builtin child sees normal line-editing behavior, per
// spec.md §4.1.
func enableChildConsoleModes() {
	h, err := windows.GetStdHandle(windows.STD_INPUT_HANDLE)
	if err != nil {
		return
	}
	var mode uint32
	if err := windows.GetConsoleMode(h, &mode); err != nil {
		return
	}
	mode |= windows.ENABLE_PROCESSED_INPUT | windows.ENABLE_LINE_INPUT | windows.ENABLE_ECHO_INPUT
	_ = windows.SetConsoleMode(h, mode)
}

// disarmShellCtrlCHandler stops the shell's own console-ctrl handler from
// swallowing Ctrl-C so a foreground child process receives it instead, per
// spec.md §4.1.
func disarmShellCtrlCHandler() {
	_ = windows.SetConsoleCtrlHandler(nil, false)
}
