package jtd

// Verify checks the grammar and semantic constraints of a root schema and
// returns the first *SchemaError found. Nodes are visited in sorted key
// order so the reported error is deterministic.
func Verify(root *Schema) error {
	if root == nil {
		return schemaErrorf(Path{}, ErrInvalidForm, "nil schema")
	}
	v := &verifier{r: NewResolver(root)}
	for _, name := range sortedKeys(root.Definitions) {
		def := root.Definitions[name]
		if def == nil {
			return schemaErrorf(Path{"definitions", name}, ErrInvalidForm, "nil schema")
		}
		if err := v.node(def, Path{"definitions", name}); err != nil {
			return err
		}
		// Catches pure ref cycles among definitions nobody references.
		if _, _, err := v.r.ResolveForm(def); err != nil {
			return err
		}
	}
	return v.node(root, Path{})
}

type verifier struct {
	r *Resolver
}

func (v *verifier) node(s *Schema, p Path) error {
	if s == nil {
		return schemaErrorf(p, ErrInvalidForm, "nil schema")
	}
	if fs := s.forms(); len(fs) > 1 {
		return schemaErrorf(p, ErrInvalidForm, "multiple forms: %v and %v", fs[0], fs[1])
	}
	if len(p) > 0 && s.Definitions != nil {
		return schemaErrorf(p.Field("definitions"), ErrDefinitionsNotRoot, "")
	}
	if s.AdditionalProperties && s.Form() != FormProperties {
		return schemaErrorf(p.Field("additionalProperties"), ErrInvalidForm, "additionalProperties requires properties or optionalProperties")
	}

	switch s.Form() {
	case FormEmpty:
		return nil
	case FormRef:
		if _, err := v.r.Resolve(*s.Ref); err != nil {
			return schemaErrorf(p.Field("ref"), ErrUndefinedReference, "%q", *s.Ref)
		}
		if _, _, err := v.r.ResolveForm(s); err != nil {
			return err
		}
		return nil
	case FormType:
		if !s.Type.Valid() {
			return schemaErrorf(p.Field("type"), ErrUnknownType, "%q", s.Type)
		}
		return nil
	case FormEnum:
		if len(s.Enum) == 0 {
			return schemaErrorf(p.Field("enum"), ErrEmptyEnum, "")
		}
		seen := make(map[string]struct{}, len(s.Enum))
		for i, e := range s.Enum {
			if _, dup := seen[e]; dup {
				return schemaErrorf(p.Field("enum").Index(i), ErrDuplicateEnum, "%q", e)
			}
			seen[e] = struct{}{}
		}
		return nil
	case FormElements:
		return v.node(s.Elements, p.Field("elements"))
	case FormValues:
		return v.node(s.Values, p.Field("values"))
	case FormProperties:
		for _, k := range sortedKeys(s.Properties) {
			if _, dup := s.OptionalProperties[k]; dup {
				return schemaErrorf(p.Field("optionalProperties").Field(k), ErrOverlappingProperties, "%q", k)
			}
			if err := v.node(s.Properties[k], p.Field("properties").Field(k)); err != nil {
				return err
			}
		}
		for _, k := range sortedKeys(s.OptionalProperties) {
			if err := v.node(s.OptionalProperties[k], p.Field("optionalProperties").Field(k)); err != nil {
				return err
			}
		}
		return nil
	case FormDiscriminator:
		return v.discriminator(s, p)
	default:
		panic("jtd: unhandled form " + s.Form().String())
	}
}

func (v *verifier) discriminator(s *Schema, p Path) error {
	if s.Discriminator == "" {
		return schemaErrorf(p.Field("discriminator"), ErrInvalidForm, "discriminator must not be empty")
	}
	if s.Mapping == nil {
		return schemaErrorf(p, ErrInvalidForm, "discriminator requires mapping")
	}
	for _, k := range sortedKeys(s.Mapping) {
		mp := p.Field("mapping").Field(k)
		entry := s.Mapping[k]
		if err := v.node(entry, mp); err != nil {
			return err
		}
		target, chain, err := v.r.ResolveForm(entry)
		if err != nil {
			return err
		}
		if target.Form() != FormProperties {
			return schemaErrorf(mp, ErrDiscriminatorMapping, "mapping %q has form %v", k, target.Form())
		}
		nullable := entry.Nullable
		for _, name := range chain {
			nullable = nullable || v.r.defs[name].Nullable
		}
		if nullable {
			return schemaErrorf(mp.Field("nullable"), ErrDiscriminatorMapping, "mapping %q is nullable", k)
		}
		if _, ok := target.Properties[s.Discriminator]; ok {
			return schemaErrorf(mp.Field("properties").Field(s.Discriminator), ErrDiscriminatorTagCollision, "%q", s.Discriminator)
		}
		if _, ok := target.OptionalProperties[s.Discriminator]; ok {
			return schemaErrorf(mp.Field("optionalProperties").Field(s.Discriminator), ErrDiscriminatorTagCollision, "%q", s.Discriminator)
		}
	}
	return nil
}
