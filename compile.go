package jtd

import (
	"context"
)

// checker is a compiled validation step. It reads the value, records issues
// on st and never returns an error; fatal conditions are stored in st.fatal.
type checker func(st *state, v any)

// Validator is a compiled schema. It is immutable and safe for concurrent
// use; every call gets its own reporter.
type Validator struct {
	root  *Schema
	check checker
}

// Compile verifies root and compiles it into a Validator. Any schema error
// is reported here, before data is ever accepted.
func Compile(root *Schema) (*Validator, error) {
	if err := Verify(root); err != nil {
		return nil, err
	}
	c := &compiler{r: NewResolver(root), defs: map[string]*defSlot{}}
	return &Validator{root: root, check: c.compile(root)}, nil
}

// CompileJSON parses a JSON schema document and compiles it.
func CompileJSON(data []byte) (*Validator, error) {
	s, err := ParseJSON(data)
	if err != nil {
		return nil, err
	}
	return Compile(s)
}

// CompileYAML parses a YAML schema document and compiles it.
func CompileYAML(data []byte) (*Validator, error) {
	s, err := ParseYAML(data)
	if err != nil {
		return nil, err
	}
	return Compile(s)
}

// MustCompile is like Compile but panics on error.
func MustCompile(root *Schema) *Validator {
	v, err := Compile(root)
	if err != nil {
		panic(err)
	}
	return v
}

// Schema returns the schema the validator was compiled from.
func (v *Validator) Schema() *Schema { return v.root }

// Validate checks value against the schema. It returns nil when the value
// is accepted, Issues when it is rejected, and ErrMaxDepthExceeded or the
// context error for fatal conditions.
func (v *Validator) Validate(ctx context.Context, value any, opts ...ValidateOpt) error {
	st := newState(ctx, lastOpt(opts))
	v.check(st, value)
	if st.fatal != nil {
		return st.fatal
	}
	if len(st.rep.issues) > 0 {
		return st.rep.issues
	}
	return nil
}

// Is reports whether value conforms to the schema.
func (v *Validator) Is(ctx context.Context, value any) bool {
	return v.Validate(ctx, value) == nil
}

// ValidateJSON decodes a JSON instance using opt.Decode and validates it.
// Decoding failures are reported as Issues with CodeParseError or
// CodeDuplicateKey.
func (v *Validator) ValidateJSON(ctx context.Context, data []byte, opts ...ValidateOpt) error {
	opt := lastOpt(opts)
	value, err := DecodeJSON(data, opt.Decode)
	if err != nil {
		return err
	}
	return v.Validate(ctx, value, opt)
}

// defSlot holds the compiled checker of one definition. Ref checkers
// capture the slot, not the checker, so cycles compile to a finite graph.
type defSlot struct {
	name  string
	check checker
}

type compiler struct {
	r    *Resolver
	defs map[string]*defSlot
}

// slot returns the compiled definition, compiling it on first use. The slot
// is registered before compiling so self references find it.
func (c *compiler) slot(name string) *defSlot {
	if s, ok := c.defs[name]; ok {
		return s
	}
	s := &defSlot{name: name}
	c.defs[name] = s
	h, err := c.r.Resolve(name)
	if err != nil {
		// Verify guarantees every ref resolves.
		panic(err)
	}
	s.check = c.compile(h.Schema())
	return s
}

func (c *compiler) compile(s *Schema) checker {
	var inner checker
	switch s.Form() {
	case FormEmpty:
		return checkEmpty
	case FormRef:
		return c.compileRef(s)
	case FormType:
		inner = compileType(s.Type)
	case FormEnum:
		inner = compileEnum(s.Enum)
	case FormElements:
		inner = compileElements(c.compile(s.Elements))
	case FormValues:
		inner = compileValues(c.compile(s.Values))
	case FormProperties:
		inner = c.compileProperties(s, "")
	case FormDiscriminator:
		inner = c.compileDiscriminator(s)
	default:
		panic("jtd: unhandled form " + s.Form().String())
	}
	if !s.Nullable {
		return inner
	}
	return func(st *state, v any) {
		if v == nil {
			return
		}
		inner(st, v)
	}
}

func (c *compiler) compileRef(s *Schema) checker {
	slot := c.slot(*s.Ref)
	nullable := s.Nullable
	return func(st *state, v any) {
		if v == nil && nullable {
			return
		}
		if !st.enter() {
			return
		}
		saved := st.schema.swap([]string{"definitions", slot.name})
		slot.check(st, v)
		st.schema.swap(saved)
		st.leave()
	}
}

type compiledProperty struct {
	name  string
	check checker
}

func (c *compiler) compileProperties(s *Schema, tag string) checker {
	required := make([]compiledProperty, 0, len(s.Properties))
	for _, k := range sortedKeys(s.Properties) {
		required = append(required, compiledProperty{k, c.compile(s.Properties[k])})
	}
	optional := make([]compiledProperty, 0, len(s.OptionalProperties))
	for _, k := range sortedKeys(s.OptionalProperties) {
		optional = append(optional, compiledProperty{k, c.compile(s.OptionalProperties[k])})
	}
	known := make(map[string]struct{}, len(required)+len(optional)+1)
	for _, p := range required {
		known[p.name] = struct{}{}
	}
	for _, p := range optional {
		known[p.name] = struct{}{}
	}
	if tag != "" {
		known[tag] = struct{}{}
	}
	typeKeyword := "properties"
	if s.Properties == nil {
		typeKeyword = "optionalProperties"
	}
	return propertiesChecker{
		required:    required,
		optional:    optional,
		known:       known,
		additional:  s.AdditionalProperties,
		typeKeyword: typeKeyword,
	}.check
}

type variant struct {
	// schemaPath is absolute when the mapping entry was a ref and relative
	// ("mapping", key) otherwise.
	schemaPath []string
	absolute   bool
	check      checker
}

func (c *compiler) compileDiscriminator(s *Schema) checker {
	variants := make(map[string]variant, len(s.Mapping))
	for _, k := range sortedKeys(s.Mapping) {
		target, chain, err := c.r.ResolveForm(s.Mapping[k])
		if err != nil {
			panic(err)
		}
		vr := variant{schemaPath: []string{"mapping", k}, check: c.compileProperties(target, s.Discriminator)}
		if len(chain) > 0 {
			vr.schemaPath = []string{"definitions", chain[len(chain)-1]}
			vr.absolute = true
		}
		variants[k] = vr
	}
	return discriminatorChecker{tag: s.Discriminator, variants: variants}.check
}
