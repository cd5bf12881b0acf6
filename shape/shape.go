package shape

import (
	"sort"
	"strconv"
	"strings"

	"github.com/reoring/jtd"
)

// Kind identifies a Shape node type.
type Kind int

const (
	KindNever Kind = iota
	KindAny
	KindPrimitive
	KindLiteral
	KindArray
	KindMap
	KindRecord
	KindUnion
	KindNullable
	KindNamed
)

var kindNames = [...]string{"never", "any", "primitive", "literal", "array", "map", "record", "union", "nullable", "named"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Shape describes the set of values a schema admits. Shapes are immutable
// once constructed; Named shapes are the only indirection and make cyclic
// graphs expressible.
type Shape struct {
	kind     Kind
	prim     jtd.Type
	literals []string
	elem     *Shape // array/map element, nullable inner, named target
	required map[string]*Shape
	optional map[string]*Shape
	closed   bool
	tag      string
	variants map[string]*Shape
	name     string
}

var (
	never = &Shape{kind: KindNever}
	anyV  = &Shape{kind: KindAny}
)

// Never admits no value.
func Never() *Shape { return never }

// AnyValue admits every value, null included.
func AnyValue() *Shape { return anyV }

// Primitive admits values of a JTD primitive type.
func Primitive(t jtd.Type) *Shape { return &Shape{kind: KindPrimitive, prim: t} }

// Literal admits exactly the given strings. An empty set is Never.
func Literal(vals ...string) *Shape {
	if len(vals) == 0 {
		return never
	}
	set := make(map[string]struct{}, len(vals))
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if _, dup := set[v]; dup {
			continue
		}
		set[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return &Shape{kind: KindLiteral, literals: out}
}

// ArrayOf admits arrays whose elements all match elem.
func ArrayOf(elem *Shape) *Shape { return &Shape{kind: KindArray, elem: elem} }

// MapOf admits string-keyed objects whose values all match elem.
func MapOf(elem *Shape) *Shape { return &Shape{kind: KindMap, elem: elem} }

// Record admits objects with the given required and optional fields. A
// closed record rejects any other key.
func Record(required, optional map[string]*Shape, closed bool) *Shape {
	return &Shape{kind: KindRecord, required: copyFields(required), optional: copyFields(optional), closed: closed}
}

// TaggedUnion admits objects whose tag field selects one of variants. Each
// record variant gains the required field tag holding its key as a literal;
// a declared tag field of any other shape is replaced.
func TaggedUnion(tag string, variants map[string]*Shape) *Shape {
	vs := make(map[string]*Shape, len(variants))
	for k, v := range variants {
		vs[k] = withTag(v, tag, k)
	}
	return &Shape{kind: KindUnion, tag: tag, variants: vs}
}

func withTag(v *Shape, tag, key string) *Shape {
	for v != nil && v.kind == KindNamed && v.elem != nil {
		v = v.elem
	}
	if v == nil || v.kind != KindRecord {
		return v
	}
	req := copyFields(v.required)
	req[tag] = Literal(key)
	opt := copyFields(v.optional)
	delete(opt, tag)
	return &Shape{kind: KindRecord, required: req, optional: opt, closed: v.closed}
}

// Nullable admits null in addition to s. Nullable(AnyValue()) is AnyValue
// and nullability does not stack.
func Nullable(s *Shape) *Shape {
	if s.kind == KindAny || s.kind == KindNullable {
		return s
	}
	return &Shape{kind: KindNullable, elem: s}
}

// Recursive builds a named shape that may refer to itself. build receives
// the named placeholder and returns its definition.
func Recursive(name string, build func(self *Shape) *Shape) *Shape {
	n := &Shape{kind: KindNamed, name: name}
	n.elem = build(n)
	return n
}

func copyFields(m map[string]*Shape) map[string]*Shape {
	out := make(map[string]*Shape, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *Shape) Kind() Kind { return s.kind }

// Type returns the primitive type of a KindPrimitive shape.
func (s *Shape) Type() jtd.Type { return s.prim }

// Literals returns the sorted literal set of a KindLiteral shape.
func (s *Shape) Literals() []string { return append([]string(nil), s.literals...) }

// Elem returns the element of arrays and maps, the inner shape of Nullable
// and the target of a Named shape.
func (s *Shape) Elem() *Shape { return s.elem }

// Required returns a copy of a record's required fields.
func (s *Shape) Required() map[string]*Shape { return copyFields(s.required) }

// Optional returns a copy of a record's optional fields.
func (s *Shape) Optional() map[string]*Shape { return copyFields(s.optional) }

// Closed reports whether a record rejects undeclared keys.
func (s *Shape) Closed() bool { return s.closed }

// Tag returns the discriminator field of a union.
func (s *Shape) Tag() string { return s.tag }

// Variants returns a copy of a union's variants.
func (s *Shape) Variants() map[string]*Shape { return copyFields(s.variants) }

// Name returns the name of a Named shape.
func (s *Shape) Name() string { return s.name }

// String renders s in a compact notation. Named shapes print their name so
// cyclic graphs terminate.
func (s *Shape) String() string {
	b := &strings.Builder{}
	s.write(b)
	return b.String()
}

func (s *Shape) write(b *strings.Builder) {
	if s == nil {
		b.WriteString("<nil>")
		return
	}
	switch s.kind {
	case KindNever:
		b.WriteString("never")
	case KindAny:
		b.WriteString("any")
	case KindPrimitive:
		b.WriteString(string(s.prim))
	case KindLiteral:
		for i, l := range s.literals {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(strconv.Quote(l))
		}
	case KindArray:
		b.WriteString("[]")
		s.elem.write(b)
	case KindMap:
		b.WriteString("map[")
		s.elem.write(b)
		b.WriteString("]")
	case KindRecord:
		if !s.closed {
			b.WriteString("open ")
		}
		b.WriteString("{")
		first := true
		field := func(k, suffix string, v *Shape) {
			if !first {
				b.WriteString(", ")
			}
			first = false
			b.WriteString(k + suffix + ": ")
			v.write(b)
		}
		for _, k := range sortedKeys(s.required) {
			field(k, "", s.required[k])
		}
		for _, k := range sortedKeys(s.optional) {
			field(k, "?", s.optional[k])
		}
		b.WriteString("}")
	case KindUnion:
		b.WriteString("union[" + s.tag + "]{")
		for i, k := range sortedKeys(s.variants) {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.Quote(k) + ": ")
			s.variants[k].write(b)
		}
		b.WriteString("}")
	case KindNullable:
		s.elem.write(b)
		b.WriteString(" | null")
	case KindNamed:
		b.WriteString(s.name)
	}
}

func sortedKeys(m map[string]*Shape) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
