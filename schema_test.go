package jtd_test

import (
	"errors"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/reoring/jtd"
)

func TestParseJSON_SchemaErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want error
		path string
	}{
		{"not an object", `[]`, jtd.ErrInvalidForm, ""},
		{"unknown keyword", `{"type":"string","format":"email"}`, jtd.ErrUnknownKeyword, "/format"},
		{"two forms", `{"type":"string","enum":["a"]}`, jtd.ErrInvalidForm, ""},
		{"nested definitions", `{"elements":{"definitions":{}}}`, jtd.ErrDefinitionsNotRoot, "/elements/definitions"},
		{"unknown type", `{"type":"int64"}`, jtd.ErrUnknownType, "/type"},
		{"empty type", `{"type":""}`, jtd.ErrUnknownType, "/type"},
		{"empty enum", `{"enum":[]}`, jtd.ErrEmptyEnum, "/enum"},
		{"duplicate enum", `{"enum":["a","b","a"]}`, jtd.ErrDuplicateEnum, "/enum/2"},
		{"non-string enum", `{"enum":["a",1]}`, jtd.ErrInvalidForm, "/enum/1"},
		{"overlap", `{"properties":{"a":{}},"optionalProperties":{"a":{}}}`, jtd.ErrOverlappingProperties, "/optionalProperties/a"},
		{"additional without properties", `{"additionalProperties":true}`, jtd.ErrInvalidForm, "/additionalProperties"},
		{"nullable not bool", `{"nullable":"yes"}`, jtd.ErrInvalidForm, "/nullable"},
		{"mapping without discriminator", `{"mapping":{}}`, jtd.ErrInvalidForm, ""},
		{"discriminator without mapping", `{"discriminator":"t"}`, jtd.ErrInvalidForm, ""},
		{"mapping not properties", `{"discriminator":"t","mapping":{"a":{"type":"string"}}}`, jtd.ErrDiscriminatorMapping, "/mapping/a"},
		{"mapping nullable", `{"discriminator":"t","mapping":{"a":{"properties":{},"nullable":true}}}`, jtd.ErrDiscriminatorMapping, "/mapping/a/nullable"},
		{"mapping ref to nullable", `{"definitions":{"v":{"properties":{},"nullable":true}},"discriminator":"t","mapping":{"a":{"ref":"v"}}}`, jtd.ErrDiscriminatorMapping, "/mapping/a/nullable"},
		{"mapping ref to non properties", `{"definitions":{"v":{"type":"string"}},"discriminator":"t","mapping":{"a":{"ref":"v"}}}`, jtd.ErrDiscriminatorMapping, "/mapping/a"},
		{"tag collision", `{"discriminator":"t","mapping":{"a":{"properties":{"t":{}}}}}`, jtd.ErrDiscriminatorTagCollision, "/mapping/a/properties/t"},
		{"tag collision optional", `{"discriminator":"t","mapping":{"a":{"optionalProperties":{"t":{}}}}}`, jtd.ErrDiscriminatorTagCollision, "/mapping/a/optionalProperties/t"},
		{"undefined ref", `{"ref":"missing"}`, jtd.ErrUndefinedReference, "/ref"},
		{"undefined ref in definition", `{"definitions":{"a":{"elements":{"ref":"b"}}}}`, jtd.ErrUndefinedReference, "/definitions/a/elements/ref"},
		{"pure ref cycle", `{"definitions":{"a":{"ref":"b"},"b":{"ref":"a"}}}`, jtd.ErrCyclicReference, "/definitions/b"},
		{"self ref", `{"definitions":{"a":{"ref":"a"}},"ref":"a"}`, jtd.ErrCyclicReference, "/definitions/a"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := jtd.ParseJSON([]byte(tc.doc))
			if !errors.Is(err, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, err)
			}
			var se *jtd.SchemaError
			if !errors.As(err, &se) {
				t.Fatalf("want *SchemaError, got %T", err)
			}
			if got := se.SchemaPath.Pointer(); got != tc.path {
				t.Fatalf("path: got %q, want %q", got, tc.path)
			}
		})
	}
}

func TestParseJSON_AcceptsRecursionThroughStructure(t *testing.T) {
	for _, doc := range []string{
		`{"definitions":{"tree":{"properties":{"children":{"elements":{"ref":"tree"}}}}},"ref":"tree"}`,
		`{"definitions":{"a":{"ref":"b"},"b":{"elements":{"ref":"a"}}},"ref":"a"}`,
		`{"definitions":{"v":{"properties":{"x":{}}},"w":{"ref":"v"}},"discriminator":"t","mapping":{"a":{"ref":"w"}}}`,
	} {
		if _, err := jtd.CompileJSON([]byte(doc)); err != nil {
			t.Errorf("%s: %v", doc, err)
		}
	}
}

func TestParseJSON_InvalidJSON(t *testing.T) {
	for _, doc := range []string{
		`{"type":`,
		`{"type":"string"} {"type":"nope"}`,
		`{"type":"string"} 1`,
		`{"type":"string"}}`,
	} {
		_, err := jtd.ParseJSON([]byte(doc))
		if err == nil {
			t.Fatalf("%s: expected error", doc)
		}
		var se *jtd.SchemaError
		if errors.As(err, &se) {
			t.Fatalf("%s: malformed JSON is not a schema error", doc)
		}
	}
	if _, err := jtd.ParseJSON([]byte("{\"type\":\"string\"}\n\t ")); err != nil {
		t.Fatalf("trailing whitespace: %v", err)
	}
}

func TestVerify_NilSchemas(t *testing.T) {
	if err := jtd.Verify(nil); !errors.Is(err, jtd.ErrInvalidForm) {
		t.Fatalf("nil root: %v", err)
	}
	s := &jtd.Schema{Properties: map[string]*jtd.Schema{"a": nil}}
	if err := jtd.Verify(s); !errors.Is(err, jtd.ErrInvalidForm) {
		t.Fatalf("nil property: %v", err)
	}
	if _, err := jtd.Compile(s); err == nil {
		t.Fatal("Compile must verify")
	}
}

func TestParseYAML(t *testing.T) {
	s, err := jtd.ParseYAML([]byte(`
definitions:
  id:
    type: string
properties:
  id:
    ref: id
  tags:
    elements:
      type: string
optionalProperties:
  note:
    type: string
    nullable: true
metadata:
  description: a document
  version: 2
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if s.Form() != jtd.FormProperties || s.Properties["id"].RefName() != "id" {
		t.Fatalf("unexpected schema: %+v", s)
	}
	if !s.OptionalProperties["note"].Nullable {
		t.Fatal("nullable lost")
	}
}

func TestParseYAML_Errors(t *testing.T) {
	_, err := jtd.ParseYAML([]byte("type: string\ntype: boolean\n"))
	var dk *jtd.DuplicateKeyError
	if !errors.As(err, &dk) {
		t.Fatalf("want *DuplicateKeyError, got %v", err)
	}
	if dk.Key != "type" || dk.FirstLine != 1 || dk.Line != 2 {
		t.Fatalf("unexpected duplicate: %+v", dk)
	}

	if _, err := jtd.ParseYAML(nil); err == nil {
		t.Fatal("empty document should fail")
	}
	if _, err := jtd.ParseYAML([]byte("enum: []\n")); !errors.Is(err, jtd.ErrEmptyEnum) {
		t.Fatalf("want ErrEmptyEnum, got %v", err)
	}
	if _, err := jtd.ParseYAML([]byte("nullable: yes-please\n")); !errors.Is(err, jtd.ErrInvalidForm) {
		t.Fatalf("want ErrInvalidForm, got %v", err)
	}
}

func TestSchema_MarshalJSONRoundTrip(t *testing.T) {
	doc := `{"definitions":{"n":{"properties":{"next":{"nullable":true,"ref":"n"}}}},"discriminator":"k","mapping":{"a":{"additionalProperties":true,"optionalProperties":{"x":{"enum":["p","q"]}},"properties":{}}},"metadata":{"description":"d"}}`
	s := jtd.MustParseJSON([]byte(doc))
	out, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var want, got any
	if err := json.Unmarshal([]byte(doc), &want); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip (-want +got):\n%s", diff)
	}
}

func TestResolver(t *testing.T) {
	s := jtd.MustParseJSON([]byte(`{"definitions":{"b":{"type":"string"},"a":{"ref":"b"}},"ref":"a"}`))
	r := jtd.NewResolver(s)
	if diff := cmp.Diff([]string{"a", "b"}, r.Definitions()); diff != "" {
		t.Fatalf("definitions (-want +got):\n%s", diff)
	}
	h1, err := r.Resolve("a")
	if err != nil {
		t.Fatal(err)
	}
	h2, _ := r.Resolve("a")
	if h1 != h2 || h1.Name() != "a" || h1.Schema() != s.Definitions["a"] {
		t.Fatal("handles should be memoized and point into the registry")
	}
	target, chain, err := r.ResolveForm(s)
	if err != nil {
		t.Fatal(err)
	}
	if target.Type != jtd.TypeString {
		t.Fatalf("target: %+v", target)
	}
	if diff := cmp.Diff([]string{"a", "b"}, chain); diff != "" {
		t.Fatalf("chain (-want +got):\n%s", diff)
	}
	if _, err := r.Resolve("zzz"); !errors.Is(err, jtd.ErrUndefinedReference) {
		t.Fatalf("want ErrUndefinedReference, got %v", err)
	}
}

func TestPath(t *testing.T) {
	p := jtd.Path{}.Field("a/b").Index(3).Field("~x")
	if got := p.Pointer(); got != "/a~1b/3/~0x" {
		t.Fatalf("pointer: %q", got)
	}
	if diff := cmp.Diff(p, jtd.ParsePointer(p.Pointer())); diff != "" {
		t.Fatalf("parse (-want +got):\n%s", diff)
	}
	if got := jtd.ParsePointer(""); len(got) != 0 {
		t.Fatalf("root: %v", got)
	}
	if diff := cmp.Diff(jtd.Path{""}, jtd.ParsePointer("/")); diff != "" {
		t.Fatalf("empty key (-want +got):\n%s", diff)
	}
	base := jtd.Path{"a"}
	x, y := base.Field("x"), base.Field("y")
	if x[1] != "x" || y[1] != "y" {
		t.Fatal("Field must not alias")
	}
}
