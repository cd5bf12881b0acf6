package jtd

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

// ParseJSON parses and verifies a JSON schema document.
func ParseJSON(data []byte) (*Schema, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("jtd: invalid JSON: %w", err)
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, errors.New("jtd: invalid JSON: trailing data after schema document")
	}
	return ParseValue(doc)
}

// ParseValue builds and verifies a schema from an already decoded document
// (map[string]any at every schema position).
func ParseValue(doc any) (*Schema, error) {
	s, err := fromValue(doc, Path{}, true)
	if err != nil {
		return nil, err
	}
	if err := Verify(s); err != nil {
		return nil, err
	}
	return s, nil
}

// MustParseJSON is like ParseJSON but panics on error.
func MustParseJSON(data []byte) *Schema {
	s, err := ParseJSON(data)
	if err != nil {
		panic(err)
	}
	return s
}

var keywords = map[string]struct{}{
	"definitions": {}, "metadata": {}, "nullable": {}, "ref": {}, "type": {}, "enum": {},
	"elements": {}, "properties": {}, "optionalProperties": {}, "additionalProperties": {},
	"values": {}, "discriminator": {}, "mapping": {},
}

func fromValue(v any, p Path, root bool) (*Schema, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, schemaErrorf(p, ErrInvalidForm, "schema must be an object, got %s", jsonKind(v))
	}
	for _, k := range sortedKeys(m) {
		if _, known := keywords[k]; !known {
			return nil, schemaErrorf(p.Field(k), ErrUnknownKeyword, "%q", k)
		}
	}
	s := &Schema{}
	var err error

	if raw, ok := m["definitions"]; ok {
		if !root {
			return nil, schemaErrorf(p.Field("definitions"), ErrDefinitionsNotRoot, "")
		}
		if s.Definitions, err = schemaMap(raw, p.Field("definitions")); err != nil {
			return nil, err
		}
	}
	if raw, ok := m["metadata"]; ok {
		md, ok := raw.(map[string]any)
		if !ok {
			return nil, schemaErrorf(p.Field("metadata"), ErrInvalidForm, "metadata must be an object")
		}
		s.Metadata = md
	}
	if s.Nullable, err = boolKeyword(m, "nullable", p); err != nil {
		return nil, err
	}
	if raw, ok := m["ref"]; ok {
		name, ok := raw.(string)
		if !ok {
			return nil, schemaErrorf(p.Field("ref"), ErrInvalidForm, "ref must be a string")
		}
		s.Ref = &name
	}
	if raw, ok := m["type"]; ok {
		t, ok := raw.(string)
		if !ok {
			return nil, schemaErrorf(p.Field("type"), ErrInvalidForm, "type must be a string")
		}
		if t == "" {
			return nil, schemaErrorf(p.Field("type"), ErrUnknownType, "%q", t)
		}
		s.Type = Type(t)
	}
	if raw, ok := m["enum"]; ok {
		arr, ok := raw.([]any)
		if !ok {
			return nil, schemaErrorf(p.Field("enum"), ErrInvalidForm, "enum must be an array")
		}
		s.Enum = make([]string, 0, len(arr))
		for i, e := range arr {
			str, ok := e.(string)
			if !ok {
				return nil, schemaErrorf(p.Field("enum").Index(i), ErrInvalidForm, "enum values must be strings")
			}
			s.Enum = append(s.Enum, str)
		}
	}
	if raw, ok := m["elements"]; ok {
		if s.Elements, err = fromValue(raw, p.Field("elements"), false); err != nil {
			return nil, err
		}
	}
	if raw, ok := m["properties"]; ok {
		if s.Properties, err = schemaMap(raw, p.Field("properties")); err != nil {
			return nil, err
		}
	}
	if raw, ok := m["optionalProperties"]; ok {
		if s.OptionalProperties, err = schemaMap(raw, p.Field("optionalProperties")); err != nil {
			return nil, err
		}
	}
	if s.AdditionalProperties, err = boolKeyword(m, "additionalProperties", p); err != nil {
		return nil, err
	}
	if _, ok := m["additionalProperties"]; ok && s.Properties == nil && s.OptionalProperties == nil {
		return nil, schemaErrorf(p.Field("additionalProperties"), ErrInvalidForm, "additionalProperties requires properties or optionalProperties")
	}
	if raw, ok := m["values"]; ok {
		if s.Values, err = fromValue(raw, p.Field("values"), false); err != nil {
			return nil, err
		}
	}
	if raw, ok := m["discriminator"]; ok {
		tag, ok := raw.(string)
		if !ok {
			return nil, schemaErrorf(p.Field("discriminator"), ErrInvalidForm, "discriminator must be a string")
		}
		s.Discriminator = tag
	}
	if raw, ok := m["mapping"]; ok {
		if s.Mapping, err = schemaMap(raw, p.Field("mapping")); err != nil {
			return nil, err
		}
	}
	_, hasTag := m["discriminator"]
	if hasTag != (s.Mapping != nil) {
		return nil, schemaErrorf(p, ErrInvalidForm, "discriminator and mapping must be used together")
	}
	if hasTag && s.Discriminator == "" {
		// An empty tag would make Form() report the node as empty.
		return nil, schemaErrorf(p.Field("discriminator"), ErrInvalidForm, "discriminator must not be empty")
	}
	return s, nil
}

func schemaMap(raw any, p Path) (map[string]*Schema, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, schemaErrorf(p, ErrInvalidForm, "expected an object of schemas")
	}
	out := make(map[string]*Schema, len(m))
	for _, k := range sortedKeys(m) {
		s, err := fromValue(m[k], p.Field(k), false)
		if err != nil {
			return nil, err
		}
		out[k] = s
	}
	return out, nil
}

func boolKeyword(m map[string]any, key string, p Path) (bool, error) {
	raw, ok := m[key]
	if !ok {
		return false, nil
	}
	b, ok := raw.(bool)
	if !ok {
		return false, schemaErrorf(p.Field(key), ErrInvalidForm, "%s must be a boolean", key)
	}
	return b, nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		if _, ok := toFloat(v); ok {
			return "number"
		}
		return fmt.Sprintf("%T", v)
	}
}
