package registry

import (
	"fmt"
	"os"

	"golang.org/x/crypto/blake2b"

	"github.com/wyshell/wyshell/internal/collab"
)

// Module is a loaded shared library, spec.md §3's "loaded module": a path,
// a handle to the dynamically loaded library, and a reference count. One
// Module exists per path regardless of how many built-ins it exports.
type Module struct {
	Path     string
	refcount int32
	handle   libraryHandle
	digest   [blake2b.Size256]byte
}

// Digest returns the module file's BLAKE2b-256 content digest, computed
// when LoadModule first loads the path. Neither a repeated LoadModule nor
// Reload compares it against the file on disk.
func (m *Module) Digest() [blake2b.Size256]byte { return m.digest }

// Refcount returns the module's current reference count, for diagnostics
// and the "zero loaded modules on shell exit" invariant (spec.md §8.3).
func (m *Module) Refcount() int32 { return m.refcount }

// LoadModule increments an already-loaded module's refcount, or loads the
// library fresh and sets its refcount to 1, per spec.md §4.5's "load-dll
// increments ... or creates a new one".
func (r *Registry) LoadModule(path string) (*Module, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.modules[path]; ok {
		m.refcount++
		return m, nil
	}

	digest, err := digestFile(path)
	if err != nil {
		return nil, fmt.Errorf("registry: digest %s: %w", path, err)
	}
	handle, err := loadLibrary(path)
	if err != nil {
		return nil, fmt.Errorf("registry: load %s: %w", path, err)
	}

	m := &Module{Path: path, refcount: 1, handle: handle, digest: digest}
	r.modules[path] = m
	return m, nil
}

// ReleaseModule decrements module's refcount and, on reaching zero, unloads
// the library and removes it from the loaded-module list, per spec.md
// §4.5's "release-dll decrements and, on zero, unloads ... and removes the
// entry".
func (r *Registry) ReleaseModule(m *Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m.refcount--
	if m.refcount > 0 {
		return nil
	}
	delete(r.modules, m.Path)
	return unloadLibrary(m.handle)
}

// LoadedModules returns a snapshot of currently loaded module paths, for
// the shell-exit invariant check and for diagnostics commands.
func (r *Registry) LoadedModules() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.modules))
	for path := range r.modules {
		out = append(out, path)
	}
	return out
}

// ResolveSymbol looks up a named export inside an already-loaded module,
// for a dynamically loadable built-in's entry point (spec.md §6's ABI:
// `(arg-count, arg-vector) -> exit-code`).
func (r *Registry) ResolveSymbol(m *Module, symbol string) (collab.BuiltinFunc, error) {
	return resolveSymbol(m.handle, symbol)
}

func digestFile(path string) ([blake2b.Size256]byte, error) {
	var out [blake2b.Size256]byte
	data, err := os.ReadFile(path)
	if err != nil {
		return out, err
	}
	sum := blake2b.Sum256(data)
	return sum, nil
}
