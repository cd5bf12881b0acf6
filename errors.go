package jtd

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes reported by validation.
const (
	CodeInvalidType          = "invalid_type"
	CodeOverflow             = "overflow"
	CodeInvalidFormat        = "invalid_format"
	CodeInvalidEnum          = "invalid_enum"
	CodeRequired             = "required"
	CodeUnknownKey           = "unknown_key"
	CodeDiscriminatorMissing = "discriminator_missing"
	CodeDiscriminatorUnknown = "discriminator_unknown"
)

// Issue is a single validation failure. InstancePath locates the offending
// value, SchemaPath the part of the schema that rejected it.
type Issue struct {
	InstancePath Path
	SchemaPath   Path
	Code         string
	Message      string
	// Params carries structured details (e.g. {"expected":"uint8"}) for
	// translators and callers.
	Params map[string]any
}

func (it Issue) String() string {
	return fmt.Sprintf("%s at %s (schema %s)", it.Code, it.InstancePath.Pointer(), it.SchemaPath.Pointer())
}

// Issues is an ordered collection of validation failures that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := min(len(iss), maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s at %s", iss[i].Code, iss[i].InstancePath.Pointer())
	}
	if len(iss) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(iss))
	}
	return b.String()
}

// AsIssues extracts Issues from an error using errors.As.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// Schema errors. A *SchemaError wraps exactly one of these.
var (
	ErrInvalidForm               = errors.New("invalid schema form")
	ErrUnknownKeyword            = errors.New("unknown schema keyword")
	ErrDefinitionsNotRoot        = errors.New("definitions are only allowed at the root")
	ErrUnknownType               = errors.New("unknown type")
	ErrEmptyEnum                 = errors.New("enum must not be empty")
	ErrDuplicateEnum             = errors.New("enum contains duplicates")
	ErrOverlappingProperties     = errors.New("properties and optionalProperties overlap")
	ErrDiscriminatorMapping      = errors.New("discriminator mapping must be a non-nullable properties schema")
	ErrDiscriminatorTagCollision = errors.New("discriminator mapping redefines the tag property")
	ErrUndefinedReference        = errors.New("undefined reference")
	ErrCyclicReference           = errors.New("cyclic reference without intervening structure")
)

// ErrMaxDepthExceeded is returned by validation when following refs goes
// deeper than ValidateOpt.MaxDepth. It is fatal and never part of Issues.
var ErrMaxDepthExceeded = errors.New("jtd: max depth exceeded")

// SchemaError reports a malformed schema document. It is produced before any
// data is accepted.
type SchemaError struct {
	SchemaPath Path
	Err        error
	Detail     string
}

func (e *SchemaError) Error() string {
	msg := "jtd: schema error at " + e.SchemaPath.Pointer() + ": " + e.Err.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *SchemaError) Unwrap() error { return e.Err }

func schemaErrorf(p Path, err error, format string, a ...any) *SchemaError {
	return &SchemaError{SchemaPath: p.clone(), Err: err, Detail: fmt.Sprintf(format, a...)}
}
