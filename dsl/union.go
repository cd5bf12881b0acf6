package dsl

import (
	"github.com/reoring/jtd"
)

type discriminatorBuilder struct {
	tag      string
	mapping  map[string]*jtd.Schema
	nullable bool
}

// Discriminator creates a discriminator form builder keyed by tag.
func Discriminator(tag string) *discriminatorBuilder {
	return &discriminatorBuilder{tag: tag, mapping: map[string]*jtd.Schema{}}
}

// Variant maps a tag value to a properties form or a ref to one. The
// variant must not declare the tag itself.
func (b *discriminatorBuilder) Variant(name string, s *jtd.Schema) *discriminatorBuilder {
	b.mapping[name] = s
	return b
}

// Nullable makes the union accept null.
func (b *discriminatorBuilder) Nullable() *discriminatorBuilder {
	b.nullable = true
	return b
}

// Build checks the variants that can be checked without definitions and
// returns the discriminator form.
func (b *discriminatorBuilder) Build() (*jtd.Schema, error) {
	if b.tag == "" {
		return nil, &jtd.SchemaError{SchemaPath: jtd.Path{"discriminator"}, Err: jtd.ErrInvalidForm, Detail: "discriminator must not be empty"}
	}
	if len(b.mapping) == 0 {
		return nil, &jtd.SchemaError{SchemaPath: jtd.Path{"mapping"}, Err: jtd.ErrInvalidForm, Detail: "no variants"}
	}
	for name, s := range b.mapping {
		p := jtd.Path{"mapping", name}
		if s == nil {
			return nil, &jtd.SchemaError{SchemaPath: p, Err: jtd.ErrInvalidForm, Detail: "nil schema"}
		}
		if s.Form() == jtd.FormRef {
			continue
		}
		if s.Form() != jtd.FormProperties || s.Nullable {
			return nil, &jtd.SchemaError{SchemaPath: p, Err: jtd.ErrDiscriminatorMapping, Detail: "variant " + name}
		}
		_, req := s.Properties[b.tag]
		_, opt := s.OptionalProperties[b.tag]
		if req || opt {
			return nil, &jtd.SchemaError{SchemaPath: p, Err: jtd.ErrDiscriminatorTagCollision, Detail: b.tag}
		}
	}
	mapping := make(map[string]*jtd.Schema, len(b.mapping))
	for k, v := range b.mapping {
		mapping[k] = v
	}
	return &jtd.Schema{Discriminator: b.tag, Mapping: mapping, Nullable: b.nullable}, nil
}

// MustBuild is like Build but panics on error.
func (b *discriminatorBuilder) MustBuild() *jtd.Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}
