//go:build windows

package cancel

import (
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	kernel32             = windows.NewLazySystemDLL("kernel32.dll")
	procPeekConsoleInput = kernel32.NewProc("PeekConsoleInputW")
)

// peekConsoleInput is a thin binding for the Win32 call x/sys/windows does
// not wrap directly; golang.org/x/sys/windows is still the dependency this
// core leans on for every other console/process primitive.
func peekConsoleInput(h windows.Handle, buf []inputRecord, read *uint32) error {
	r, _, err := procPeekConsoleInput.Call(
		uintptr(h),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(len(buf)),
		uintptr(unsafe.Pointer(read)),
	)
	if r == 0 {
		if errno, ok := err.(syscall.Errno); ok && errno != 0 {
			return err
		}
		return err
	}
	return nil
}
