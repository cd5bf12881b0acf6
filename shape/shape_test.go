package shape_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/reoring/jtd"
	"github.com/reoring/jtd/shape"
)

func infer(t *testing.T, doc string) *shape.Shape {
	t.Helper()
	s, err := shape.Infer(jtd.MustParseJSON([]byte(doc)))
	if err != nil {
		t.Fatalf("infer: %v", err)
	}
	return s
}

func TestInfer_Forms(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{"empty", `{}`, "any"},
		{"empty nullable", `{"nullable":true}`, "any"},
		{"type", `{"type":"uint8"}`, "uint8"},
		{"type nullable", `{"type":"float64","nullable":true}`, "float64 | null"},
		{"enum", `{"enum":["b","a"]}`, `"a" | "b"`},
		{"elements", `{"elements":{"type":"string"},"nullable":true}`, "[]string | null"},
		{"values", `{"values":{"type":"timestamp"}}`, "map[timestamp]"},
		{"properties", `{"properties":{"a":{"type":"float64"}},"optionalProperties":{"b":{"type":"string"}}}`, "{a: float64, b?: string}"},
		{"open properties", `{"properties":{"a":{"type":"float64"}},"additionalProperties":true}`, "open {a: float64}"},
		{"discriminator", `{"discriminator":"type","mapping":{"a":{"properties":{"a":{"type":"float64"}}},"b":{"optionalProperties":{"b":{"type":"string"}}}}}`,
			`union[type]{"a": {a: float64, type: "a"}, "b": {type: "b", b?: string}}`},
		{"ref", `{"definitions":{"id":{"type":"string"}},"elements":{"ref":"id"}}`, "[]id"},
		{"metadata ignored", `{"type":"boolean","metadata":{"description":"flag"}}`, "boolean"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := infer(t, tc.doc).String(); got != tc.want {
				t.Fatalf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestInfer_RecursiveDefinition(t *testing.T) {
	root := jtd.MustParseJSON([]byte(`{
		"definitions": {"node": {"properties": {"value": {"type": "float64"}, "next": {"ref": "node", "nullable": true}}}},
		"ref": "node"
	}`))
	s, err := shape.Infer(root)
	if err != nil {
		t.Fatalf("infer: %v", err)
	}
	if s.Kind() != shape.KindNamed || s.Name() != "node" {
		t.Fatalf("want named node, got %v %s", s.Kind(), s)
	}
	next := s.Elem().Required()["next"]
	if next.Kind() != shape.KindNullable || next.Elem() != s {
		t.Fatalf("next should point back to the same named shape, got %s", next)
	}

	def, err := shape.InferDefinition(root, "node")
	if err != nil {
		t.Fatalf("infer definition: %v", err)
	}
	if !shape.Equivalent(def, s) {
		t.Fatalf("definition and root ref should be equivalent")
	}
	if _, err := shape.InferDefinition(root, "missing"); !errors.Is(err, jtd.ErrUndefinedReference) {
		t.Fatalf("want ErrUndefinedReference, got %v", err)
	}
}

func TestInfer_RejectsInvalidSchema(t *testing.T) {
	bad := &jtd.Schema{Type: "int64"}
	if _, err := shape.Infer(bad); !errors.Is(err, jtd.ErrUnknownType) {
		t.Fatalf("want ErrUnknownType, got %v", err)
	}
}

func TestCompare_Mismatches(t *testing.T) {
	str := shape.Primitive(jtd.TypeString)
	f64 := shape.Primitive(jtd.TypeFloat64)
	rec := func(req, opt map[string]*shape.Shape, closed bool) *shape.Shape { return shape.Record(req, opt, closed) }
	cases := []struct {
		name     string
		declared *shape.Shape
		inferred *shape.Shape
		reason   string
		path     string
	}{
		{"open vs closed", rec(map[string]*shape.Shape{"a": str}, nil, false), rec(map[string]*shape.Shape{"a": str}, nil, true), "open", ""},
		{"required vs optional", rec(map[string]*shape.Shape{"a": str}, nil, true), rec(nil, map[string]*shape.Shape{"a": str}, true), `required field "a" not in schema`, ""},
		{"missing field", rec(nil, nil, true), rec(map[string]*shape.Shape{"a": str}, nil, true), `required field "a" not declared`, ""},
		{"extra nullability", shape.Nullable(f64), f64, "declared nullable", ""},
		{"missing nullability", f64, shape.Nullable(f64), "schema is nullable", ""},
		{"literal sets", shape.Literal("a"), shape.Literal("a", "b"), "literal sets differ", ""},
		{"primitive", shape.Primitive(jtd.TypeInt8), shape.Primitive(jtd.TypeUint8), "declared int8", ""},
		{"nested", rec(map[string]*shape.Shape{"a": shape.ArrayOf(str)}, nil, true), rec(map[string]*shape.Shape{"a": shape.ArrayOf(f64)}, nil, true), "declared string", "a.[]"},
		{"kind", shape.MapOf(str), shape.ArrayOf(str), "declared map, schema array", ""},
		{"union tag", shape.TaggedUnion("kind", nil), shape.TaggedUnion("type", nil), "tag", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := shape.Compare(tc.declared, tc.inferred)
			var me *shape.MismatchError
			if !errors.As(err, &me) {
				t.Fatalf("want *MismatchError, got %v", err)
			}
			if !strings.Contains(me.Reason, tc.reason) {
				t.Fatalf("reason %q does not mention %q", me.Reason, tc.reason)
			}
			if me.Path != tc.path {
				t.Fatalf("path: got %q, want %q", me.Path, tc.path)
			}
		})
	}
}

func TestCompare_NullableAnyIsAny(t *testing.T) {
	if !shape.Equivalent(shape.Nullable(shape.AnyValue()), shape.AnyValue()) {
		t.Fatal("nullable any should equal any")
	}
	if !shape.Equivalent(shape.Nullable(shape.Nullable(shape.Primitive(jtd.TypeString))), shape.Nullable(shape.Primitive(jtd.TypeString))) {
		t.Fatal("nullability should not stack")
	}
}

func TestLiteral_SortedAndDeduplicated(t *testing.T) {
	got := shape.Literal("c", "a", "c", "b").Literals()
	if diff := cmp.Diff([]string{"a", "b", "c"}, got); diff != "" {
		t.Fatalf("literals mismatch (-want +got):\n%s", diff)
	}
	if shape.Literal().Kind() != shape.KindNever {
		t.Fatal("empty literal set should be never")
	}
}

type point struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label *string `json:"label,omitempty"`
}

const pointSchema = `{"properties":{"x":{"type":"float64"},"y":{"type":"float64"}},"optionalProperties":{"label":{"type":"string"}}}`

type node struct {
	Value float64 `json:"value"`
	Next  *node   `json:"next"`
}

const nodeSchema = `{
	"definitions": {"node": {"properties": {"value": {"type": "float64"}, "next": {"ref": "node", "nullable": true}}}},
	"ref": "node"
}`

type color string

func (color) EnumValues() []string { return []string{"red", "green"} }

type card struct {
	Type   string `json:"type"`
	Number string `json:"number"`
}

type bank struct {
	IBAN *string `json:"iban,omitempty"`
}

type payment struct{}

func (payment) UnionVariants() (string, map[string]any) {
	return "type", map[string]any{"card": card{}, "bank": bank{}}
}

type cardOnly struct{}

func (cardOnly) UnionVariants() (string, map[string]any) {
	return "type", map[string]any{"card": card{}}
}

const paymentSchema = `{"discriminator":"type","mapping":{
	"card":{"properties":{"number":{"type":"string"}}},
	"bank":{"optionalProperties":{"iban":{"type":"string"}}}
}}`

type event struct {
	shape.Open
	ID      string            `json:"id"`
	At      time.Time         `json:"at"`
	Color   color             `json:"color"`
	Tags    []string          `json:"tags,omitzero"`
	Labels  map[string]uint16 `json:"labels"`
	Payload any               `json:"payload"`
	Ignored string            `json:"-"`
	hidden  int
	audit
}

type audit struct {
	By string `json:"by"`
}

const eventSchema = `{
	"properties": {
		"id": {"type": "string"},
		"at": {"type": "timestamp"},
		"color": {"enum": ["green", "red"]},
		"labels": {"values": {"type": "uint16"}},
		"payload": {},
		"by": {"type": "string"}
	},
	"optionalProperties": {"tags": {"elements": {"type": "string"}}},
	"additionalProperties": true
}`

type expr struct{}

func (expr) UnionVariants() (string, map[string]any) {
	return "op", map[string]any{"lit": lit{}, "neg": neg{}}
}

type lit struct {
	Value float64 `json:"value"`
}

type neg struct {
	Arg expr `json:"arg"`
}

const exprSchema = `{
	"definitions": {"expr": {"discriminator": "op", "mapping": {
		"lit": {"properties": {"value": {"type": "float64"}}},
		"neg": {"properties": {"arg": {"ref": "expr"}}}
	}}},
	"ref": "expr"
}`

type tree []tree

type dict map[string]dict

type chain struct {
	*chain
	Name string `json:"name"`
}

func TestCheck_RoundTrip(t *testing.T) {
	cases := []struct {
		name  string
		check func(*jtd.Schema) error
		doc   string
	}{
		{"record", shape.Check[point], pointSchema},
		{"recursive", shape.Check[node], nodeSchema},
		{"union", shape.Check[payment], paymentSchema},
		{"open record", shape.Check[event], eventSchema},
		{"pointer", shape.Check[*float64], `{"type":"float64","nullable":true}`},
		{"bytes", shape.Check[[]byte], `{"type":"string"}`},
		{"enum", shape.Check[color], `{"enum":["red","green"]}`},
		{"recursive union", shape.Check[expr], exprSchema},
		{"recursive slice", shape.Check[tree], `{"definitions":{"t":{"elements":{"ref":"t"}}},"ref":"t"}`},
		{"recursive map", shape.Check[dict], `{"definitions":{"d":{"values":{"ref":"d"}}},"ref":"d"}`},
		{"embedded self", shape.Check[chain], `{"properties":{"name":{"type":"string"}}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.check(jtd.MustParseJSON([]byte(tc.doc))); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestCheck_ValuesOfDeclaredType(t *testing.T) {
	cases := []struct {
		name  string
		doc   string
		value any
		drop  string
	}{
		{"record", pointSchema, point{X: 1, Y: 2}, "x"},
		{"recursive", nodeSchema, node{Value: 1, Next: &node{Value: 2}}, "value"},
		{"union", paymentSchema, card{Type: "card", Number: "4242"}, "number"},
	}
	ctx := context.Background()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := jtd.MustCompile(jtd.MustParseJSON([]byte(tc.doc)))
			data, err := json.Marshal(tc.value)
			if err != nil {
				t.Fatal(err)
			}
			if err := v.ValidateJSON(ctx, data); err != nil {
				t.Fatalf("%s: %v", data, err)
			}

			var m map[string]any
			if err := json.Unmarshal(data, &m); err != nil {
				t.Fatal(err)
			}
			delete(m, tc.drop)
			if data, err = json.Marshal(m); err != nil {
				t.Fatal(err)
			}
			iss, ok := jtd.AsIssues(v.ValidateJSON(ctx, data))
			if !ok || len(iss) != 1 || iss[0].Code != jtd.CodeRequired {
				t.Fatalf("%s: want one required issue, got %v", data, iss)
			}
		})
	}
}

func TestFromType_RecursiveUnionTagsInnerVariants(t *testing.T) {
	s, err := shape.Of[expr]()
	if err != nil {
		t.Fatal(err)
	}
	inner := s.Elem().Variants()["neg"].Required()["arg"]
	if inner != s {
		t.Fatalf("inner occurrence should reuse the named shape, got %v", inner)
	}
	if got, want := inner.Elem().Variants()["neg"].String(), `{arg: shape_test.expr, op: "neg"}`; got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestCheck_DetectsDrift(t *testing.T) {
	cases := []struct {
		name  string
		check func(*jtd.Schema) error
		doc   string
	}{
		{"missing union case", shape.Check[cardOnly], paymentSchema},
		{"broader record", shape.Check[event], `{"properties":{"id":{"type":"string"}}}`},
		{"required dropped", shape.Check[point], `{"properties":{"x":{"type":"float64"},"y":{"type":"float64"},"label":{"type":"string"}}}`},
		{"nullability", shape.Check[float64], `{"type":"float64","nullable":true}`},
		{"closed vs open", shape.Check[point], `{"properties":{"x":{"type":"float64"},"y":{"type":"float64"}},"optionalProperties":{"label":{"type":"string"}},"additionalProperties":true}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.check(jtd.MustParseJSON([]byte(tc.doc)))
			var me *shape.MismatchError
			if !errors.As(err, &me) {
				t.Fatalf("want mismatch, got %v", err)
			}
		})
	}
}

func TestFromType_Unsupported(t *testing.T) {
	type counter struct {
		Count int `json:"count"`
	}
	cases := []struct {
		name string
		of   func() (*shape.Shape, error)
		path string
	}{
		{"int field", shape.Of[counter], "count"},
		{"int64", shape.Of[int64], ""},
		{"uint64 slice", shape.Of[[]uint64], "[]"},
		{"chan", shape.Of[chan string], ""},
		{"func", shape.Of[func()], ""},
		{"array", shape.Of[[2]string], ""},
		{"int keys", shape.Of[map[int]string], ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.of()
			var ue *shape.UnsupportedTypeError
			if !errors.As(err, &ue) {
				t.Fatalf("want *UnsupportedTypeError, got %v", err)
			}
			if ue.Path != tc.path {
				t.Fatalf("path: got %q, want %q", ue.Path, tc.path)
			}
		})
	}
}

func TestFromType_Struct(t *testing.T) {
	s, err := shape.Of[point]()
	if err != nil {
		t.Fatal(err)
	}
	if got, want := s.String(), "shape_test.point"; got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
	if got, want := s.Elem().String(), "{x: float64, y: float64, label?: string}"; got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestCompare_RecursiveShapes(t *testing.T) {
	build := func(name string) *shape.Shape {
		return shape.Recursive(name, func(self *shape.Shape) *shape.Shape {
			return shape.Record(map[string]*shape.Shape{
				"children": shape.ArrayOf(self),
			}, nil, true)
		})
	}
	if err := shape.Compare(build("a"), build("b")); err != nil {
		t.Fatalf("recursive shapes should be equivalent: %v", err)
	}
	leaf := shape.Recursive("c", func(self *shape.Shape) *shape.Shape {
		return shape.Record(map[string]*shape.Shape{
			"children": shape.ArrayOf(shape.Primitive(jtd.TypeString)),
		}, nil, true)
	})
	if shape.Equivalent(build("a"), leaf) {
		t.Fatal("different element shapes should not be equivalent")
	}
}
