package dsl

import (
	"github.com/reoring/jtd"
)

type rootBuilder struct {
	root *jtd.Schema
	defs map[string]*jtd.Schema
}

// Root starts a root schema from s. Definitions registered with Define are
// attached to a copy of s.
func Root(s *jtd.Schema) *rootBuilder {
	return &rootBuilder{root: s, defs: map[string]*jtd.Schema{}}
}

// Define registers a named definition usable through Ref.
func (b *rootBuilder) Define(name string, s *jtd.Schema) *rootBuilder {
	b.defs[name] = s
	return b
}

// Build attaches the definitions and verifies the whole document.
func (b *rootBuilder) Build() (*jtd.Schema, error) {
	if b.root == nil {
		return nil, &jtd.SchemaError{SchemaPath: jtd.Path{}, Err: jtd.ErrInvalidForm, Detail: "nil schema"}
	}
	cp := *b.root
	if len(b.defs) > 0 {
		cp.Definitions = make(map[string]*jtd.Schema, len(b.defs))
		for k, v := range b.defs {
			cp.Definitions[k] = v
		}
	}
	if err := jtd.Verify(&cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

// MustBuild is like Build but panics on error.
func (b *rootBuilder) MustBuild() *jtd.Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

// Compile builds the root and compiles it.
func (b *rootBuilder) Compile() (*jtd.Validator, error) {
	s, err := b.Build()
	if err != nil {
		return nil, err
	}
	return jtd.Compile(s)
}
