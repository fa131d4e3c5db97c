//go:build !windows

package registry

import (
	"fmt"
	"plugin"

	"github.com/wyshell/wyshell/internal/collab"
)

// libraryHandle wraps a loaded Go plugin. The non-Windows stand-in for
// spec.md's "dynamically loaded library" is Go's own plugin mechanism
// (stdlib) rather than a C ABI dlopen, since this core has no cgo
// dependency elsewhere and a plugin's exported Go symbols can satisfy
// collab.BuiltinFunc directly.
type libraryHandle struct {
	p *plugin.Plugin
}

func loadLibrary(path string) (libraryHandle, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return libraryHandle{}, err
	}
	return libraryHandle{p: p}, nil
}

// unloadLibrary is a documented no-op: Go's plugin package never unloads a
// loaded plugin. The registry still honors the zero-refcount bookkeeping
// (removing the module from its own list) even though the underlying
// library stays mapped for the process lifetime.
func unloadLibrary(_ libraryHandle) error { return nil }

func resolveSymbol(h libraryHandle, symbol string) (collab.BuiltinFunc, error) {
	sym, err := h.p.Lookup(symbol)
	if err != nil {
		return nil, err
	}
	fn, ok := sym.(func(int, []string) int)
	if !ok {
		return nil, fmt.Errorf("registry: symbol %s has wrong signature for a built-in", symbol)
	}
	return collab.BuiltinFunc(fn), nil
}
