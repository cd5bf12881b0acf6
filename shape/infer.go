package shape

import (
	"github.com/reoring/jtd"
)

// Infer computes the shape of the values root admits. The schema is
// verified first; definitions are inferred once by name so recursive
// schemas yield a finite graph of Named shapes.
func Infer(root *jtd.Schema) (*Shape, error) {
	in, err := newInferer(root)
	if err != nil {
		return nil, err
	}
	return in.infer(root), nil
}

// InferDefinition returns the Named shape of one definition of root.
func InferDefinition(root *jtd.Schema, name string) (*Shape, error) {
	in, err := newInferer(root)
	if err != nil {
		return nil, err
	}
	if _, err := in.r.Resolve(name); err != nil {
		return nil, err
	}
	return in.named(name), nil
}

type inferer struct {
	r     *jtd.Resolver
	names map[string]*Shape
}

func newInferer(root *jtd.Schema) (*inferer, error) {
	if err := jtd.Verify(root); err != nil {
		return nil, err
	}
	return &inferer{r: jtd.NewResolver(root), names: map[string]*Shape{}}, nil
}

// named installs the placeholder before inferring the definition so self
// references resolve to it.
func (in *inferer) named(name string) *Shape {
	if n, ok := in.names[name]; ok {
		return n
	}
	n := &Shape{kind: KindNamed, name: name}
	in.names[name] = n
	h, _ := in.r.Resolve(name)
	n.elem = in.infer(h.Schema())
	return n
}

func (in *inferer) infer(s *jtd.Schema) *Shape {
	var out *Shape
	switch s.Form() {
	case jtd.FormEmpty:
		return AnyValue()
	case jtd.FormRef:
		out = in.named(s.RefName())
	case jtd.FormType:
		out = Primitive(s.Type)
	case jtd.FormEnum:
		out = Literal(s.Enum...)
	case jtd.FormElements:
		out = ArrayOf(in.infer(s.Elements))
	case jtd.FormValues:
		out = MapOf(in.infer(s.Values))
	case jtd.FormProperties:
		out = in.record(s)
	case jtd.FormDiscriminator:
		variants := make(map[string]*Shape, len(s.Mapping))
		for k, m := range s.Mapping {
			target, _, err := in.r.ResolveForm(m)
			if err != nil {
				// Verify rejects unresolvable mappings.
				panic(err)
			}
			variants[k] = in.record(target)
		}
		out = TaggedUnion(s.Discriminator, variants)
	default:
		panic("shape: unhandled form " + s.Form().String())
	}
	if s.Nullable {
		return Nullable(out)
	}
	return out
}

func (in *inferer) record(s *jtd.Schema) *Shape {
	req := make(map[string]*Shape, len(s.Properties))
	for k, p := range s.Properties {
		req[k] = in.infer(p)
	}
	opt := make(map[string]*Shape, len(s.OptionalProperties))
	for k, p := range s.OptionalProperties {
		opt[k] = in.infer(p)
	}
	return Record(req, opt, !s.AdditionalProperties)
}
