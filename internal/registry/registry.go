// Package registry implements the built-in name registry and the
// reference-counted dynamic-module loader, spec.md §4.5: a process-global
// list of callback records keyed by case-insensitive name, a process-global
// list of loaded-module records keyed by path, and the "active module"
// pointer that attributes a dynamically-loaded command's own registrations
// back to its owning module.
package registry

import (
	"sort"
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/wyshell/wyshell/internal/collab"
	"github.com/wyshell/wyshell/internal/invariant"
)

// Callback is a single registered name → function binding, spec.md §3's
// "built-in callback": a name, a function pointer, and an optional owning
// module whose lifetime must outlive the registration.
type Callback struct {
	Name   string
	Fn     collab.BuiltinFunc
	Module *Module
}

// Registry is the process-global registry of callback records plus the
// loaded-module list and active-module pointer. A host binary constructs
// exactly one and shares it across every shell thread's execution, per
// spec.md §5's "three global mutable state items" note.
type Registry struct {
	mu        sync.Mutex
	callbacks []*Callback
	modules   map[string]*Module
	active    *Module
	statics   map[string]collab.BuiltinFunc
}

// New returns an empty registry ready for use.
func New() *Registry {
	return &Registry{
		modules: make(map[string]*Module),
		statics: make(map[string]collab.BuiltinFunc),
	}
}

// RegisterStatic binds a statically linked built-in under its export
// symbol name, per spec.md §6's "YoriCmd_<UPPERNAME>" convention.
// builtin.RegisterAll calls this for every built-in its package's init()
// functions collected, instead of waiting for it to be probed, since a
// real Go binary has no dynamic export-table lookup to perform —
// this map stands in for "look up YoriCmd_<NAME> in the main executable's
// export table".
func (r *Registry) RegisterStatic(name string, fn collab.BuiltinFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statics[collab.StaticExportName(name)] = fn
}

// Register inserts a new callback at the front of the list, so that
// most-recent registrations shadow older ones of the same name — the LIFO
// discipline spec.md §4.5 requires to preserve nesting when a module
// registers, uses, and unregisters a name inside one invocation.
func (r *Registry) Register(name string, fn collab.BuiltinFunc, module *Module) {
	invariant.Precondition(name != "", "registry: empty built-in name")
	invariant.Precondition(fn != nil, "registry: nil built-in function")

	r.mu.Lock()
	defer r.mu.Unlock()
	r.callbacks = append([]*Callback{{Name: name, Fn: fn, Module: module}}, r.callbacks...)
}

// Unregister removes the first callback matching name and fn — the specific
// registration, not merely the name, so a module removing its own binding
// never disturbs a different module's shadowing entry for the same name.
func (r *Registry) Unregister(name string, fn collab.BuiltinFunc) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, cb := range r.callbacks {
		if strings.EqualFold(cb.Name, name) && sameFunc(cb.Fn, fn) {
			r.callbacks = append(r.callbacks[:i], r.callbacks[i+1:]...)
			return true
		}
	}
	return false
}

// Lookup resolves name against the dynamic registry first (front-to-back,
// so the most recent shadowing registration wins), then the static export
// table, per spec.md §4.5's resolution order.
func (r *Registry) Lookup(name string) (*Callback, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, cb := range r.callbacks {
		if strings.EqualFold(cb.Name, name) {
			return cb, true
		}
	}
	if fn, ok := r.statics[collab.StaticExportName(name)]; ok {
		return &Callback{Name: name, Fn: fn}, true
	}
	return nil, false
}

// Suggest returns up to three registered names that are a close fuzzy match
// for an unrecognized command, for the "did you mean" hint spec.md §7's
// BuiltinNotFoundError carries.
func (r *Registry) Suggest(name string) []string {
	r.mu.Lock()
	candidates := make([]string, 0, len(r.callbacks)+len(r.statics))
	seen := make(map[string]bool)
	for _, cb := range r.callbacks {
		if !seen[strings.ToLower(cb.Name)] {
			seen[strings.ToLower(cb.Name)] = true
			candidates = append(candidates, cb.Name)
		}
	}
	for sym := range r.statics {
		n := strings.TrimPrefix(sym, "YoriCmd_")
		if !seen[strings.ToLower(n)] {
			seen[strings.ToLower(n)] = true
			candidates = append(candidates, n)
		}
	}
	r.mu.Unlock()

	matches := fuzzy.RankFindNormalizedFold(name, candidates)
	if len(matches) == 0 {
		return nil
	}
	sort.Sort(matches)
	out := make([]string, 0, 3)
	for i := 0; i < len(matches) && i < 3; i++ {
		out = append(out, matches[i].Target)
	}
	return out
}

// SetActive records module as the innermost currently-executing
// dynamically-loaded command, returning the previous active module so the
// caller can restore it on the way out (spec.md §4.5 step 5/7).
func (r *Registry) SetActive(module *Module) *Module {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.active
	r.active = module
	return prev
}

// RestoreActive sets the active module back to prev.
func (r *Registry) RestoreActive(prev *Module) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = prev
}

// Active returns the innermost currently-executing dynamically-loaded
// command's owning module, or nil if none.
func (r *Registry) Active() *Module {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// sameFunc compares two BuiltinFunc values by identity. Go forbids
// comparing func values with ==; reflect.Value.Pointer is the idiomatic
// workaround for "same registration" identity used by built-ins
// unregistering themselves mid-call.
func sameFunc(a, b collab.BuiltinFunc) bool {
	return funcPointer(a) == funcPointer(b)
}
