//go:build windows

package builtin

import "golang.org/x/sys/windows"

func setConsoleTitle(title string) {
	ptr, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return
	}
	_ = windows.SetConsoleTitle(ptr)
}
