package builtin

import (
	"github.com/wyshell/wyshell/internal/collab"
	"github.com/wyshell/wyshell/internal/registry"
)

type staticEntry struct {
	name string
	fn   collab.BuiltinFunc
}

// pending collects every built-in a file in this package registers via its
// own init(), mirroring the teacher's one-file-per-built-in,
// self-registering layout without reaching for a package-level singleton
// registry (a host may legitimately run more than one Registry in tests).
var pending []staticEntry

func registerBuiltin(name string, fn collab.BuiltinFunc) {
	pending = append(pending, staticEntry{name: name, fn: fn})
}

// RegisterAll binds every statically linked built-in collected from this
// package's init() calls into reg, under its "YoriCmd_<NAME>" export
// convention (spec.md §6).
func RegisterAll(reg *registry.Registry) {
	for _, e := range pending {
		reg.RegisterStatic(e.name, e.fn)
	}
}
