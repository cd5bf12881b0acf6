package engine

import (
	"errors"
	"io"
	"testing"
)

func TestDecodeAny(t *testing.T) {
	v, err := DecodeAny(NewBytes([]byte(`{"a":[1,{"b":null}],"c":"x","d":false}`)))
	if err != nil {
		t.Fatal(err)
	}
	m := v.(map[string]any)
	arr := m["a"].([]any)
	if len(arr) != 2 || arr[1].(map[string]any)["b"] != nil {
		t.Fatalf("unexpected array: %#v", arr)
	}
	if m["c"] != "x" || m["d"] != false {
		t.Fatalf("unexpected value: %#v", m)
	}
}

func TestDecodeAny_Errors(t *testing.T) {
	if _, err := DecodeAny(NewBytes(nil)); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("empty: %v", err)
	}
	if _, err := DecodeAny(NewBytes([]byte(`1 2`))); !errors.Is(err, ErrTrailingData) {
		t.Fatalf("trailing: %v", err)
	}
	if _, err := DecodeAny(NewBytes([]byte(`[1,`))); err == nil {
		t.Fatal("truncated input should fail")
	}
}

func TestEnforcement(t *testing.T) {
	cases := []struct {
		name string
		data string
		opt  EnforceOptions
		code string
		path string
	}{
		{"duplicate at root", `{"a":1,"a":2}`, EnforceOptions{OnDuplicate: DupError}, "duplicate_key", "/a"},
		{"duplicate in array", `[{},{"x":1,"x":1}]`, EnforceOptions{OnDuplicate: DupError}, "duplicate_key", "/1/x"},
		{"escaped key", `{"a/b":{"~":1,"~":2}}`, EnforceOptions{OnDuplicate: DupError}, "duplicate_key", "/a~1b/~0"},
		{"depth", `{"a":{"b":{}}}`, EnforceOptions{MaxDepth: 2}, "parse_error", "/a/b"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeAny(WrapWithEnforcement(NewBytes([]byte(tc.data)), tc.opt))
			var ie IssueError
			if !errors.As(err, &ie) {
				t.Fatalf("want IssueError, got %v", err)
			}
			if ie.Code != tc.code || ie.Path != tc.path {
				t.Fatalf("got %s at %q, want %s at %q", ie.Code, ie.Path, tc.code, tc.path)
			}
		})
	}
}

func TestEnforcement_Disabled(t *testing.T) {
	src := NewBytes([]byte(`{}`))
	if WrapWithEnforcement(src, EnforceOptions{}) != src {
		t.Fatal("no options should return the inner source")
	}
	if _, err := DecodeAny(WrapWithEnforcement(NewBytes([]byte(`{"a":1,"b":[1,2]}`)), EnforceOptions{OnDuplicate: DupError, MaxDepth: 2})); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}
