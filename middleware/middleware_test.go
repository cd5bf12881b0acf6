package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/reoring/jtd"
	"github.com/reoring/jtd/middleware"
)

const userSchema = `{"properties":{"id":{"type":"string"}},"optionalProperties":{"age":{"type":"uint8"}}}`

func newHandler(t *testing.T) http.Handler {
	t.Helper()
	v, err := jtd.CompileJSON([]byte(userSchema))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		val, ok := middleware.ValueFromContext(r.Context())
		if !ok {
			t.Error("value missing from context")
		}
		m := val.(map[string]any)
		_, _ = w.Write([]byte(m["id"].(string)))
	})
	return middleware.ValidateJSON(v, jtd.ValidateOpt{}, next)
}

func TestValidateJSON_Accepts(t *testing.T) {
	rec := httptest.NewRecorder()
	newHandler(t).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"id":"u1","age":30}`)))
	if rec.Code != http.StatusOK || rec.Body.String() != "u1" {
		t.Fatalf("got %d %q", rec.Code, rec.Body.String())
	}
}

func TestValidateJSON_Rejects(t *testing.T) {
	cases := []struct {
		name string
		body string
		code string
		path string
	}{
		{"overflow", `{"id":"u1","age":300}`, jtd.CodeOverflow, "/age"},
		{"missing", `{"age":3}`, jtd.CodeRequired, ""},
		{"duplicate", `{"id":"a","id":"b"}`, jtd.CodeDuplicateKey, "/id"},
		{"malformed", `{"id":`, jtd.CodeParseError, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newHandler(t).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body)))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status: %d", rec.Code)
			}
			var payload struct {
				Issues []middleware.IssuePayload `json:"issues"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
				t.Fatalf("decode payload: %v", err)
			}
			if len(payload.Issues) == 0 {
				t.Fatalf("no issues in %s", rec.Body.String())
			}
			got := payload.Issues[0]
			if got.Code != tc.code || got.InstancePath != tc.path {
				t.Fatalf("got %s at %q, want %s at %q", got.Code, got.InstancePath, tc.code, tc.path)
			}
		})
	}
}

func TestContextValue_Null(t *testing.T) {
	ctx := middleware.ContextWithValue(httptest.NewRequest(http.MethodGet, "/", nil).Context(), nil)
	v, ok := middleware.ValueFromContext(ctx)
	if !ok || v != nil {
		t.Fatalf("got %v %v", v, ok)
	}
}
