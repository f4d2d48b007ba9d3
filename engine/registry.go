package engine

import "strings"

// Registry is the name→function map described in spec.md §4.2: lookup is
// case-insensitive at every boundary. Aliases share behaviour with their
// canonical entry by resolving to the very same *Builtin.
type Registry struct {
	fns map[string]RegisteredFunction
}

// NewRegistry builds a registry pre-populated with every built-in function
// family this package implements.
func NewRegistry() *Registry {
	r := &Registry{fns: make(map[string]RegisteredFunction)}
	registerStatistical(r)
	registerText(r)
	registerHOF(r)
	return r
}

func (r *Registry) Register(fn RegisteredFunction) {
	r.fns[strings.ToUpper(fn.Name())] = fn
}

// Alias registers name to resolve to whatever canonical already resolves
// to, so the two names share one RegisteredFunction instance.
func (r *Registry) Alias(name, canonical string) {
	if fn, ok := r.fns[strings.ToUpper(canonical)]; ok {
		r.fns[strings.ToUpper(name)] = fn
	}
}

func (r *Registry) Lookup(name string) (RegisteredFunction, bool) {
	fn, ok := r.fns[strings.ToUpper(name)]
	return fn, ok
}
