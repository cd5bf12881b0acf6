package jtd

import (
	"sort"

	"github.com/goccy/go-json"
)

// Form identifies which variant of the grammar a Schema node uses.
type Form int

const (
	FormEmpty Form = iota
	FormRef
	FormType
	FormEnum
	FormElements
	FormProperties
	FormValues
	FormDiscriminator
)

var formNames = [...]string{
	FormEmpty:         "empty",
	FormRef:           "ref",
	FormType:          "type",
	FormEnum:          "enum",
	FormElements:      "elements",
	FormProperties:    "properties",
	FormValues:        "values",
	FormDiscriminator: "discriminator",
}

func (f Form) String() string {
	if f >= 0 && int(f) < len(formNames) {
		return formNames[f]
	}
	return "unknown"
}

// Type is a primitive type name usable in the type form.
type Type string

const (
	TypeBoolean   Type = "boolean"
	TypeInt8      Type = "int8"
	TypeUint8     Type = "uint8"
	TypeInt16     Type = "int16"
	TypeUint16    Type = "uint16"
	TypeInt32     Type = "int32"
	TypeUint32    Type = "uint32"
	TypeFloat32   Type = "float32"
	TypeFloat64   Type = "float64"
	TypeString    Type = "string"
	TypeTimestamp Type = "timestamp"
)

// Types lists every primitive type in declaration order.
var Types = []Type{
	TypeBoolean, TypeInt8, TypeUint8, TypeInt16, TypeUint16, TypeInt32, TypeUint32,
	TypeFloat32, TypeFloat64, TypeString, TypeTimestamp,
}

// Valid reports whether t names a known primitive.
func (t Type) Valid() bool {
	_, ok := intRanges[t]
	return ok || t == TypeBoolean || t == TypeFloat32 || t == TypeFloat64 || t == TypeString || t == TypeTimestamp
}

// IsInteger reports whether t is one of the fixed-width integer types.
func (t Type) IsInteger() bool {
	_, ok := intRanges[t]
	return ok
}

type intRange struct{ min, max float64 }

var intRanges = map[Type]intRange{
	TypeInt8:   {-128, 127},
	TypeUint8:  {0, 255},
	TypeInt16:  {-32768, 32767},
	TypeUint16: {0, 65535},
	TypeInt32:  {-2147483648, 2147483647},
	TypeUint32: {0, 4294967295},
}

// Schema is one node of a schema document. Exactly one form is active per
// node; see Form. The root may additionally carry Definitions.
//
// A nil Properties map means the keyword is absent; an empty non-nil map
// means "properties": {} was given. The same holds for OptionalProperties.
type Schema struct {
	Definitions map[string]*Schema
	Metadata    map[string]any
	Nullable    bool

	Ref                  *string
	Type                 Type
	Enum                 []string
	Elements             *Schema
	Properties           map[string]*Schema
	OptionalProperties   map[string]*Schema
	AdditionalProperties bool
	Values               *Schema
	Discriminator        string
	Mapping              map[string]*Schema
}

// Form reports the active form. For malformed nodes carrying several form
// keywords the first match in grammar order wins; Verify rejects those.
func (s *Schema) Form() Form {
	switch {
	case s.Ref != nil:
		return FormRef
	case s.Type != "":
		return FormType
	case s.Enum != nil:
		return FormEnum
	case s.Elements != nil:
		return FormElements
	case s.Properties != nil || s.OptionalProperties != nil:
		return FormProperties
	case s.Values != nil:
		return FormValues
	case s.Discriminator != "" || s.Mapping != nil:
		return FormDiscriminator
	default:
		return FormEmpty
	}
}

// forms lists every form whose keywords are set on s.
func (s *Schema) forms() []Form {
	var out []Form
	if s.Ref != nil {
		out = append(out, FormRef)
	}
	if s.Type != "" {
		out = append(out, FormType)
	}
	if s.Enum != nil {
		out = append(out, FormEnum)
	}
	if s.Elements != nil {
		out = append(out, FormElements)
	}
	if s.Properties != nil || s.OptionalProperties != nil {
		out = append(out, FormProperties)
	}
	if s.Values != nil {
		out = append(out, FormValues)
	}
	if s.Discriminator != "" || s.Mapping != nil {
		out = append(out, FormDiscriminator)
	}
	return out
}

// RefName returns the ref target, or "" when s is not a ref.
func (s *Schema) RefName() string {
	if s.Ref == nil {
		return ""
	}
	return *s.Ref
}

// MarshalJSON renders the schema document. Keyword presence is preserved,
// including empty properties maps and metadata.
func (s *Schema) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.document())
}

func (s *Schema) document() map[string]any {
	doc := map[string]any{}
	if s.Definitions != nil {
		doc["definitions"] = documents(s.Definitions)
	}
	if s.Metadata != nil {
		doc["metadata"] = s.Metadata
	}
	if s.Nullable {
		doc["nullable"] = true
	}
	if s.Ref != nil {
		doc["ref"] = *s.Ref
	}
	if s.Type != "" {
		doc["type"] = string(s.Type)
	}
	if s.Enum != nil {
		doc["enum"] = s.Enum
	}
	if s.Elements != nil {
		doc["elements"] = s.Elements.document()
	}
	if s.Properties != nil {
		doc["properties"] = documents(s.Properties)
	}
	if s.OptionalProperties != nil {
		doc["optionalProperties"] = documents(s.OptionalProperties)
	}
	if s.AdditionalProperties {
		doc["additionalProperties"] = true
	}
	if s.Values != nil {
		doc["values"] = s.Values.document()
	}
	if s.Discriminator != "" {
		doc["discriminator"] = s.Discriminator
	}
	if s.Mapping != nil {
		doc["mapping"] = documents(s.Mapping)
	}
	return doc
}

func documents(m map[string]*Schema) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v.document()
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
