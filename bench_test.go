package jtd_test

import (
	"context"
	"testing"

	"github.com/reoring/jtd"
)

func jtdCompile(doc string) (*jtd.Validator, error) { return jtd.CompileJSON([]byte(doc)) }

func BenchmarkValidate_LinkedList(b *testing.B) {
	v, err := jtdCompile(linkedList)
	if err != nil {
		b.Fatal(err)
	}
	in := deepList(100)
	ctx := context.Background()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := v.Validate(ctx, in); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkValidateJSON_Object(b *testing.B) {
	v, err := jtdCompile(`{"properties":{"id":{"type":"string"},"tags":{"elements":{"type":"string"}},"score":{"type":"float64"}}}`)
	if err != nil {
		b.Fatal(err)
	}
	data := []byte(`{"id":"u_1","tags":["a","b","c"],"score":1.5}`)
	ctx := context.Background()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := v.ValidateJSON(ctx, data); err != nil {
			b.Fatal(err)
		}
	}
}
