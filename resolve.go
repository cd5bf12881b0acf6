package jtd

import (
	"strings"
)

// Resolver resolves ref names against the definitions of a root schema.
// Handles are memoized per name. A Resolver is not safe for concurrent use;
// compilation and inference each create their own.
type Resolver struct {
	defs    map[string]*Schema
	handles map[string]*Handle
}

// Handle is an indirection to a named definition. It never copies or inlines
// the target; Schema re-enters the registry on every call.
type Handle struct {
	name string
	r    *Resolver
}

// Name returns the definition name.
func (h *Handle) Name() string { return h.name }

// Schema returns the definition the handle points to.
func (h *Handle) Schema() *Schema { return h.r.defs[h.name] }

// NewResolver creates a resolver over root.Definitions.
func NewResolver(root *Schema) *Resolver {
	var defs map[string]*Schema
	if root != nil {
		defs = root.Definitions
	}
	return &Resolver{defs: defs, handles: map[string]*Handle{}}
}

// Definitions lists the registered names in sorted order.
func (r *Resolver) Definitions() []string { return sortedKeys(r.defs) }

// Resolve returns the handle for name, failing with ErrUndefinedReference
// when the registry has no such definition.
func (r *Resolver) Resolve(name string) (*Handle, error) {
	if h, ok := r.handles[name]; ok {
		return h, nil
	}
	if _, ok := r.defs[name]; !ok {
		return nil, schemaErrorf(Path{"definitions", name}, ErrUndefinedReference, "%q", name)
	}
	h := &Handle{name: name, r: r}
	r.handles[name] = h
	return h, nil
}

// ResolveForm follows a chain of refs starting at s and returns the first
// node that is not a ref, together with the names visited on the way. A
// chain that returns to a name already visited is an ErrCyclicReference.
func (r *Resolver) ResolveForm(s *Schema) (*Schema, []string, error) {
	var chain []string
	seen := map[string]bool{}
	for s.Ref != nil {
		name := *s.Ref
		if seen[name] {
			return nil, chain, schemaErrorf(Path{"definitions", name}, ErrCyclicReference, "%s -> %s", strings.Join(chain, " -> "), name)
		}
		seen[name] = true
		chain = append(chain, name)
		h, err := r.Resolve(name)
		if err != nil {
			return nil, chain, err
		}
		s = h.Schema()
	}
	return s, chain, nil
}
