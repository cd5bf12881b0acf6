package middleware

import (
	"context"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/reoring/jtd"
)

// DefaultMaxBytes caps request bodies read by the middlewares.
const DefaultMaxBytes = 1 << 20

// ctxKeyValue is a typed context key for the validated request body.
type ctxKeyValue struct{}

// ContextWithValue attaches a validated value tree to the context.
func ContextWithValue(ctx context.Context, v any) context.Context {
	return context.WithValue(ctx, ctxKeyValue{}, valueBox{v})
}

// ValueFromContext retrieves the validated value tree from the context.
func ValueFromContext(ctx context.Context) (any, bool) {
	v, ok := ctx.Value(ctxKeyValue{}).(valueBox)
	return v.v, ok
}

// valueBox lets a validated null body be told apart from a missing one.
type valueBox struct{ v any }

// DefaultValidateOpt returns a recommended default for HTTP JSON boundaries.
// - Duplicate keys are errors
// - Bodies are capped at DefaultMaxBytes
func DefaultValidateOpt() jtd.ValidateOpt {
	return jtd.ValidateOpt{
		Decode: jtd.DecodeOpt{OnDuplicateKey: jtd.DuplicateReject, MaxBytes: DefaultMaxBytes},
	}
}

// IssuePayload is the JSON form of one issue.
type IssuePayload struct {
	InstancePath string         `json:"instancePath"`
	SchemaPath   string         `json:"schemaPath"`
	Code         string         `json:"code"`
	Message      string         `json:"message"`
	Params       map[string]any `json:"params,omitempty"`
}

// ErrorPayload shapes Issues for JSON responses.
func ErrorPayload(issues jtd.Issues) map[string]any {
	out := make([]IssuePayload, 0, len(issues))
	for _, it := range issues {
		out = append(out, IssuePayload{
			InstancePath: it.InstancePath.Pointer(),
			SchemaPath:   it.SchemaPath.Pointer(),
			Code:         it.Code,
			Message:      it.Message,
			Params:       it.Params,
		})
	}
	return map[string]any{"issues": out}
}

// Decode reads and validates a request body. The returned error is either
// Issues or a fatal validation error.
func Decode(r *http.Request, v *jtd.Validator, opt jtd.ValidateOpt) (any, error) {
	value, err := jtd.DecodeJSONReader(r.Body, opt.Decode)
	if err != nil {
		return nil, err
	}
	if err := v.Validate(r.Context(), value, opt); err != nil {
		return nil, err
	}
	return value, nil
}

// StatusAndPayload maps a Decode error to an HTTP status and JSON payload.
func StatusAndPayload(err error) (int, any) {
	if iss, ok := jtd.AsIssues(err); ok {
		return http.StatusBadRequest, ErrorPayload(iss)
	}
	return http.StatusBadRequest, map[string]any{"error": err.Error()}
}

// ValidateJSON wraps next so it only sees request bodies accepted by v. The
// value tree is stored in the request context; rejected requests get 400
// with an issues payload. A zero opt selects DefaultValidateOpt.
func ValidateJSON(v *jtd.Validator, opt jtd.ValidateOpt, next http.Handler) http.Handler {
	if opt == (jtd.ValidateOpt{}) {
		opt = DefaultValidateOpt()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		value, err := Decode(r, v, opt)
		if err != nil {
			status, payload := StatusAndPayload(err)
			writeJSON(w, status, payload)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithValue(r.Context(), value)))
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
