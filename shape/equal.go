package shape

import (
	"fmt"
	"slices"
	"strings"
)

// MismatchError reports the first difference found by Compare. Path is a
// dotted location inside the shapes: field names, "[]" for array elements,
// "{}" for map values and "<tag=key>" for union variants.
type MismatchError struct {
	Path     string
	Declared string
	Inferred string
	Reason   string
}

func (e *MismatchError) Error() string {
	loc := e.Path
	if loc == "" {
		loc = "root"
	}
	return fmt.Sprintf("shape mismatch at %s: %s (declared %s, inferred %s)", loc, e.Reason, e.Declared, e.Inferred)
}

// Equivalent reports whether declared and inferred admit exactly the same
// values.
func Equivalent(declared, inferred *Shape) bool {
	return Compare(declared, inferred) == nil
}

// Compare checks declared against inferred and returns a *MismatchError
// describing the first difference. Broader and narrower shapes both
// mismatch. Cycles are compared coinductively: a pair already under
// comparison is assumed equal.
func Compare(declared, inferred *Shape) error {
	c := &comparer{visited: map[[2]*Shape]bool{}}
	if m := c.compare(declared, inferred, nil); m != nil {
		return m
	}
	return nil
}

type comparer struct {
	visited map[[2]*Shape]bool
}

// normalize strips Named indirections and Nullable wrappers. Nullability of
// AnyValue is dropped since it already admits null.
func normalize(s *Shape) (*Shape, bool) {
	nullable := false
	var seen map[*Shape]bool
	for s != nil && (s.kind == KindNamed || s.kind == KindNullable) {
		if s.kind == KindNullable {
			nullable = true
		} else {
			if seen[s] {
				// A name defined as itself admits nothing.
				return never, nullable
			}
			if seen == nil {
				seen = map[*Shape]bool{}
			}
			seen[s] = true
		}
		s = s.elem
	}
	if s != nil && s.kind == KindAny {
		nullable = false
	}
	return s, nullable
}

func (c *comparer) compare(d, i *Shape, path []string) *MismatchError {
	fail := func(format string, a ...any) *MismatchError {
		return &MismatchError{
			Path:     strings.Join(path, "."),
			Declared: d.String(),
			Inferred: i.String(),
			Reason:   fmt.Sprintf(format, a...),
		}
	}
	db, dn := normalize(d)
	ib, inn := normalize(i)
	if db == nil || ib == nil {
		if db == ib {
			return nil
		}
		return fail("incomplete shape")
	}
	if dn != inn {
		if dn {
			return fail("declared nullable, schema is not")
		}
		return fail("schema is nullable, declared is not")
	}
	if db == ib {
		return nil
	}
	key := [2]*Shape{db, ib}
	if c.visited[key] {
		return nil
	}
	c.visited[key] = true

	if db.kind != ib.kind {
		return fail("declared %v, schema %v", db.kind, ib.kind)
	}
	switch db.kind {
	case KindNever, KindAny:
		return nil
	case KindPrimitive:
		if db.prim != ib.prim {
			return fail("declared %s, schema %s", db.prim, ib.prim)
		}
		return nil
	case KindLiteral:
		if !slices.Equal(db.literals, ib.literals) {
			return fail("literal sets differ")
		}
		return nil
	case KindArray:
		return c.compare(db.elem, ib.elem, append(slices.Clip(path), "[]"))
	case KindMap:
		return c.compare(db.elem, ib.elem, append(slices.Clip(path), "{}"))
	case KindRecord:
		if db.closed != ib.closed {
			if db.closed {
				return fail("declared record is closed, schema allows additional properties")
			}
			return fail("declared record is open, schema is closed")
		}
		if m := c.fields(db.required, ib.required, "required", path, fail); m != nil {
			return m
		}
		return c.fields(db.optional, ib.optional, "optional", path, fail)
	case KindUnion:
		if db.tag != ib.tag {
			return fail("declared tag %q, schema tag %q", db.tag, ib.tag)
		}
		for _, k := range sortedKeys(db.variants) {
			if _, ok := ib.variants[k]; !ok {
				return fail("variant %q not in schema", k)
			}
		}
		for _, k := range sortedKeys(ib.variants) {
			if _, ok := db.variants[k]; !ok {
				return fail("variant %q not declared", k)
			}
		}
		for _, k := range sortedKeys(db.variants) {
			if m := c.compare(db.variants[k], ib.variants[k], append(slices.Clip(path), "<"+db.tag+"="+k+">")); m != nil {
				return m
			}
		}
		return nil
	default:
		return fail("unexpected %v", db.kind)
	}
}

func (c *comparer) fields(d, i map[string]*Shape, what string, path []string, fail func(string, ...any) *MismatchError) *MismatchError {
	for _, k := range sortedKeys(d) {
		if _, ok := i[k]; !ok {
			return fail("%s field %q not in schema", what, k)
		}
	}
	for _, k := range sortedKeys(i) {
		if _, ok := d[k]; !ok {
			return fail("%s field %q not declared", what, k)
		}
	}
	for _, k := range sortedKeys(d) {
		if m := c.compare(d[k], i[k], append(slices.Clip(path), k)); m != nil {
			return m
		}
	}
	return nil
}
