//go:build windows

package registry

import (
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/wyshell/wyshell/internal/collab"
)

// libraryHandle wraps a native DLL handle, the real counterpart to
// spec.md's dynamically loaded module on the platform that actually has
// LoadLibrary/GetProcAddress/FreeLibrary.
type libraryHandle struct {
	h windows.Handle
}

func loadLibrary(path string) (libraryHandle, error) {
	h, err := windows.LoadLibrary(path)
	if err != nil {
		return libraryHandle{}, err
	}
	return libraryHandle{h: h}, nil
}

func unloadLibrary(h libraryHandle) error {
	return windows.FreeLibrary(h.h)
}

// resolveSymbol resolves a DLL export and adapts its native calling
// convention to collab.BuiltinFunc's (argc, argv) -> exit-code signature,
// per spec.md §6's "Dynamically loadable built-in ABI".
func resolveSymbol(h libraryHandle, symbol string) (collab.BuiltinFunc, error) {
	addr, err := windows.GetProcAddress(h.h, symbol)
	if err != nil {
		return nil, err
	}
	return func(argc int, argv []string) int {
		ptrs := make([]uintptr, len(argv))
		for i, a := range argv {
			p, err := windows.UTF16PtrFromString(a)
			if err != nil {
				return 1
			}
			ptrs[i] = uintptr(unsafe.Pointer(p))
		}
		var argvAddr uintptr
		if len(ptrs) > 0 {
			argvAddr = uintptr(unsafe.Pointer(&ptrs[0]))
		}
		ret, _, _ := syscall.SyscallN(addr, uintptr(argc), argvAddr)
		return int(ret)
	}, nil
}
