package shape

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/reoring/jtd"
)

// Open marks a struct as an open record when embedded:
//
//	type Event struct {
//		shape.Open
//		ID string `json:"id"`
//	}
type Open struct{}

// EnumType is implemented by string-like types with a fixed value set. The
// method is called on the zero value.
type EnumType interface {
	EnumValues() []string
}

// UnionType is implemented by types decoded as a discriminated union. It
// returns the tag field and a zero value of each variant struct keyed by
// tag value. The method is called on the zero value.
type UnionType interface {
	UnionVariants() (tag string, variants map[string]any)
}

var (
	anyType   = reflect.TypeOf((*any)(nil)).Elem()
	timeType  = reflect.TypeOf(time.Time{})
	openType  = reflect.TypeOf(Open{})
	enumType  = reflect.TypeOf((*EnumType)(nil)).Elem()
	unionType = reflect.TypeOf((*UnionType)(nil)).Elem()
)

// UnsupportedTypeError reports a Go type with no JTD counterpart.
type UnsupportedTypeError struct {
	Type reflect.Type
	Path string
}

func (e *UnsupportedTypeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("shape: unsupported type %v", e.Type)
	}
	return fmt.Sprintf("shape: unsupported type %v at %s", e.Type, e.Path)
}

// Of derives the declared shape of T. See FromType.
func Of[T any]() (*Shape, error) {
	return FromType(reflect.TypeOf((*T)(nil)).Elem())
}

// FromType derives a declared shape from a Go type following encoding/json
// conventions: struct fields use their json tags and omitempty or omitzero
// makes a field optional. Pointers are nullable except on optional fields,
// where the pointer encodes absence. int, int64 and uint64 have no JTD
// counterpart and are rejected. Named structs, slices, maps and union types
// become Named shapes, so self-referential types yield a finite graph.
func FromType(t reflect.Type) (*Shape, error) {
	b := &typeBuilder{named: map[reflect.Type]*Shape{}}
	s, err := b.build(t, nil)
	if err != nil {
		return nil, err
	}
	for _, fix := range b.fixups {
		fix()
	}
	return s, nil
}

type typeBuilder struct {
	named map[reflect.Type]*Shape
	// fixups run once every Named placeholder has its target.
	fixups []func()
}

// memo returns the Named shape of t, building its target on first use.
func (b *typeBuilder) memo(t reflect.Type, build func() (*Shape, error)) (*Shape, error) {
	if n, ok := b.named[t]; ok {
		return n, nil
	}
	n := &Shape{kind: KindNamed, name: t.String()}
	b.named[t] = n
	target, err := build()
	if err != nil {
		return nil, err
	}
	n.elem = target
	return n, nil
}

func (b *typeBuilder) build(t reflect.Type, path []string) (*Shape, error) {
	if t == anyType {
		return AnyValue(), nil
	}
	if t.Kind() == reflect.Pointer {
		inner, err := b.build(t.Elem(), path)
		if err != nil {
			return nil, err
		}
		return Nullable(inner), nil
	}
	if s, ok, err := b.byInterface(t, path); ok || err != nil {
		return s, err
	}
	if t == timeType {
		return Primitive(jtd.TypeTimestamp), nil
	}
	switch t.Kind() {
	case reflect.Slice, reflect.Map, reflect.Struct:
		if t.Name() != "" {
			return b.memo(t, func() (*Shape, error) { return b.composite(t, path) })
		}
		return b.composite(t, path)
	case reflect.Bool:
		return Primitive(jtd.TypeBoolean), nil
	case reflect.String:
		return Primitive(jtd.TypeString), nil
	case reflect.Int8:
		return Primitive(jtd.TypeInt8), nil
	case reflect.Int16:
		return Primitive(jtd.TypeInt16), nil
	case reflect.Int32:
		return Primitive(jtd.TypeInt32), nil
	case reflect.Uint8:
		return Primitive(jtd.TypeUint8), nil
	case reflect.Uint16:
		return Primitive(jtd.TypeUint16), nil
	case reflect.Uint32:
		return Primitive(jtd.TypeUint32), nil
	case reflect.Float32:
		return Primitive(jtd.TypeFloat32), nil
	case reflect.Float64:
		return Primitive(jtd.TypeFloat64), nil
	default:
		return nil, unsupported(t, path)
	}
}

func (b *typeBuilder) composite(t reflect.Type, path []string) (*Shape, error) {
	switch t.Kind() {
	case reflect.Slice:
		// encoding/json writes []byte as a base64 string.
		if t.Elem().Kind() == reflect.Uint8 {
			return Primitive(jtd.TypeString), nil
		}
		elem, err := b.build(t.Elem(), append(slices.Clip(path), "[]"))
		if err != nil {
			return nil, err
		}
		return ArrayOf(elem), nil
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return nil, unsupported(t, path)
		}
		elem, err := b.build(t.Elem(), append(slices.Clip(path), "{}"))
		if err != nil {
			return nil, err
		}
		return MapOf(elem), nil
	default:
		return b.record(t, path)
	}
}

func unsupported(t reflect.Type, path []string) error {
	return &UnsupportedTypeError{Type: t, Path: strings.Join(path, ".")}
}

// byInterface handles EnumType and UnionType on value or pointer receivers.
func (b *typeBuilder) byInterface(t reflect.Type, path []string) (*Shape, bool, error) {
	var v any
	switch {
	case t.Implements(enumType) || t.Implements(unionType):
		v = reflect.Zero(t).Interface()
	case reflect.PointerTo(t).Implements(enumType) || reflect.PointerTo(t).Implements(unionType):
		v = reflect.New(t).Interface()
	default:
		return nil, false, nil
	}
	if e, ok := v.(EnumType); ok {
		return Literal(e.EnumValues()...), true, nil
	}
	s, err := b.memo(t, func() (*Shape, error) { return b.union(t, v.(UnionType), path) })
	return s, true, err
}

// union builds the variants untagged. Variant structs may still be
// placeholders here when the union is recursive, so the tag field is added
// by a fixup after the whole graph is built.
func (b *typeBuilder) union(t reflect.Type, u UnionType, path []string) (*Shape, error) {
	tag, variants := u.UnionVariants()
	shapes := make(map[string]*Shape, len(variants))
	for k, vv := range variants {
		vpath := append(slices.Clip(path), "<"+tag+"="+k+">")
		vt := reflect.TypeOf(vv)
		if vt == nil {
			return nil, unsupported(t, vpath)
		}
		s, err := b.build(vt, vpath)
		if err != nil {
			return nil, err
		}
		shapes[k] = s
	}
	out := &Shape{kind: KindUnion, tag: tag, variants: shapes}
	b.fixups = append(b.fixups, func() {
		for k, v := range out.variants {
			out.variants[k] = withTag(v, tag, k)
		}
	})
	return out, nil
}

func (b *typeBuilder) record(t reflect.Type, path []string) (*Shape, error) {
	r := &recordFields{
		required: map[string]*Shape{},
		optional: map[string]*Shape{},
		closed:   true,
		embedded: map[reflect.Type]bool{t: true},
	}
	if err := b.collect(t, path, r); err != nil {
		return nil, err
	}
	return Record(r.required, r.optional, r.closed), nil
}

type recordFields struct {
	required map[string]*Shape
	optional map[string]*Shape
	closed   bool
	// embedded holds the struct types already flattened into this record.
	embedded map[reflect.Type]bool
}

func (r *recordFields) has(name string) bool {
	_, req := r.required[name]
	_, opt := r.optional[name]
	return req || opt
}

func (b *typeBuilder) collect(t reflect.Type, path []string, r *recordFields) error {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type == openType {
			r.closed = false
			continue
		}
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if f.Anonymous && name == "" {
			ft := f.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				if r.embedded[ft] {
					continue
				}
				r.embedded[ft] = true
				if err := b.collect(ft, path, r); err != nil {
					return err
				}
				continue
			}
		}
		if !f.IsExported() {
			continue
		}
		if name == "" {
			name = f.Name
		}
		if r.has(name) {
			return fmt.Errorf("shape: duplicate field %q in %v", name, t)
		}
		optional := hasOption(opts, "omitempty") || hasOption(opts, "omitzero")
		ft := f.Type
		if optional && ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		s, err := b.build(ft, append(slices.Clip(path), name))
		if err != nil {
			return err
		}
		if optional {
			r.optional[name] = s
		} else {
			r.required[name] = s
		}
	}
	return nil
}

func hasOption(opts, want string) bool {
	for opts != "" {
		var o string
		o, opts, _ = strings.Cut(opts, ",")
		if o == want {
			return true
		}
	}
	return false
}
