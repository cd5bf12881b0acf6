package dsl

import (
	"github.com/reoring/jtd"
)

// Empty returns the empty form, which accepts every value.
func Empty() *jtd.Schema { return &jtd.Schema{} }

// Type returns a type form for t.
func Type(t jtd.Type) *jtd.Schema { return &jtd.Schema{Type: t} }

// Shorthands for frequently used types.
func String() *jtd.Schema    { return Type(jtd.TypeString) }
func Boolean() *jtd.Schema   { return Type(jtd.TypeBoolean) }
func Float64() *jtd.Schema   { return Type(jtd.TypeFloat64) }
func Timestamp() *jtd.Schema { return Type(jtd.TypeTimestamp) }

// Enum returns an enum form. The values are copied.
func Enum(vals ...string) *jtd.Schema {
	return &jtd.Schema{Enum: append([]string{}, vals...)}
}

// Elements returns an array form whose elements match elem.
func Elements(elem *jtd.Schema) *jtd.Schema { return &jtd.Schema{Elements: elem} }

// Values returns a map form whose values match val.
func Values(val *jtd.Schema) *jtd.Schema { return &jtd.Schema{Values: val} }

// Ref returns a reference to a definition registered with Root.Define.
func Ref(name string) *jtd.Schema { return &jtd.Schema{Ref: &name} }

// Nullable returns a copy of s that also accepts null.
func Nullable(s *jtd.Schema) *jtd.Schema {
	cp := *s
	cp.Nullable = true
	return &cp
}

// WithMetadata returns a copy of s with metadata key set to v.
func WithMetadata(s *jtd.Schema, key string, v any) *jtd.Schema {
	cp := *s
	cp.Metadata = make(map[string]any, len(s.Metadata)+1)
	for k, mv := range s.Metadata {
		cp.Metadata[k] = mv
	}
	cp.Metadata[key] = v
	return &cp
}
