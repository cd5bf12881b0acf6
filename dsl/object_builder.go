package dsl

import (
	"fmt"

	"github.com/reoring/jtd"
)

type objectBuilder struct {
	fields     map[string]*jtd.Schema
	required   map[string]struct{}
	additional bool
	nullable   bool
	err        error
}

type fieldStep struct {
	b    *objectBuilder
	name string
}

// Object creates a properties form builder. Fields are optional unless
// marked Required and undeclared keys are rejected unless AllowAdditional
// is called.
func Object() *objectBuilder {
	return &objectBuilder{
		fields:   map[string]*jtd.Schema{},
		required: map[string]struct{}{},
	}
}

// Field registers a field. Registering the same name twice is an error
// reported by Build.
func (b *objectBuilder) Field(name string, s *jtd.Schema) *fieldStep {
	if _, dup := b.fields[name]; dup && b.err == nil {
		b.err = &jtd.SchemaError{SchemaPath: jtd.Path{"properties", name}, Err: jtd.ErrOverlappingProperties, Detail: fmt.Sprintf("field %q declared twice", name)}
	}
	if s == nil && b.err == nil {
		b.err = &jtd.SchemaError{SchemaPath: jtd.Path{"properties", name}, Err: jtd.ErrInvalidForm, Detail: "nil schema"}
	}
	b.fields[name] = s
	return &fieldStep{b: b, name: name}
}

// Required marks the field as required and returns the builder.
func (f *fieldStep) Required() *objectBuilder {
	f.b.required[f.name] = struct{}{}
	return f.b
}

// Optional marks the field as optional (default) and returns the builder.
func (f *fieldStep) Optional() *objectBuilder {
	delete(f.b.required, f.name)
	return f.b
}

func (f *fieldStep) Field(name string, s *jtd.Schema) *fieldStep { return f.b.Field(name, s) }
func (f *fieldStep) AllowAdditional() *objectBuilder             { return f.b.AllowAdditional() }
func (f *fieldStep) Build() (*jtd.Schema, error)                 { return f.b.Build() }
func (f *fieldStep) MustBuild() *jtd.Schema                      { return f.b.MustBuild() }

// Require marks several fields as required at once.
func (b *objectBuilder) Require(names ...string) *objectBuilder {
	for _, n := range names {
		b.required[n] = struct{}{}
	}
	return b
}

// AllowAdditional accepts keys that are not declared.
func (b *objectBuilder) AllowAdditional() *objectBuilder {
	b.additional = true
	return b
}

// Nullable makes the object accept null.
func (b *objectBuilder) Nullable() *objectBuilder {
	b.nullable = true
	return b
}

// Build returns the properties form. Refs are checked once the schema is
// rooted with Root.
func (b *objectBuilder) Build() (*jtd.Schema, error) {
	if b.err != nil {
		return nil, b.err
	}
	for name := range b.required {
		if _, ok := b.fields[name]; !ok {
			return nil, &jtd.SchemaError{SchemaPath: jtd.Path{"properties", name}, Err: jtd.ErrInvalidForm, Detail: fmt.Sprintf("required field %q is not declared", name)}
		}
	}
	s := &jtd.Schema{
		Properties:           map[string]*jtd.Schema{},
		AdditionalProperties: b.additional,
		Nullable:             b.nullable,
	}
	for name, fs := range b.fields {
		if _, ok := b.required[name]; ok {
			s.Properties[name] = fs
			continue
		}
		if s.OptionalProperties == nil {
			s.OptionalProperties = map[string]*jtd.Schema{}
		}
		s.OptionalProperties[name] = fs
	}
	if len(s.Properties) == 0 && s.OptionalProperties != nil {
		s.Properties = nil
	}
	return s, nil
}

// MustBuild is like Build but panics on error.
func (b *objectBuilder) MustBuild() *jtd.Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}
