package jtd

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	eng "github.com/reoring/jtd/internal/engine"
)

// Issue codes reported while decoding JSON instances.
const (
	CodeParseError   = "parse_error"
	CodeDuplicateKey = "duplicate_key"
)

// DecodeJSON decodes a single JSON value into a value tree of nil, bool,
// json.Number, string, []any and map[string]any. Malformed input and
// policy violations are returned as Issues.
func DecodeJSON(data []byte, opts ...DecodeOpt) (any, error) {
	opt := lastOpt(opts)
	if opt.MaxBytes > 0 && int64(len(data)) > opt.MaxBytes {
		return nil, parseIssue(Path{}, fmt.Sprintf("input exceeds %d bytes", opt.MaxBytes))
	}
	return decode(bytes.NewReader(data), opt)
}

// DecodeJSONReader is DecodeJSON for streams. MaxBytes is enforced while
// reading.
func DecodeJSONReader(r io.Reader, opts ...DecodeOpt) (any, error) {
	opt := lastOpt(opts)
	if opt.MaxBytes > 0 {
		r = &limitedReader{r: r, n: opt.MaxBytes}
	}
	return decode(r, opt)
}

func decode(r io.Reader, opt DecodeOpt) (any, error) {
	src := eng.WrapWithEnforcement(eng.NewReader(r), eng.EnforceOptions{
		OnDuplicate: duplicateStrictness(opt.OnDuplicateKey),
		MaxDepth:    opt.MaxDepth,
	})
	v, err := eng.DecodeAny(src)
	if err == nil {
		return v, nil
	}
	var ie eng.IssueError
	if errors.As(err, &ie) {
		it := Issue{InstancePath: ParsePointer(ie.Path), SchemaPath: Path{}, Code: ie.Code, Message: ie.Message}
		return nil, Issues{it}
	}
	var le *limitExceededError
	if errors.As(err, &le) {
		return nil, parseIssue(Path{}, le.Error())
	}
	return nil, parseIssue(Path{}, err.Error())
}

func duplicateStrictness(p DuplicateKeyPolicy) eng.DuplicateStrictness {
	if p == DuplicateReject {
		return eng.DupError
	}
	return eng.DupIgnore
}

func parseIssue(p Path, msg string) Issues {
	return Issues{{InstancePath: p, SchemaPath: Path{}, Code: CodeParseError, Message: msg}}
}

type limitExceededError struct{ n int64 }

func (e *limitExceededError) Error() string { return fmt.Sprintf("input exceeds %d bytes", e.n) }

// limitedReader fails instead of truncating so a cut-off document is not
// mistaken for a complete one.
type limitedReader struct {
	r    io.Reader
	n    int64
	read int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.read >= l.n {
		var one [1]byte
		if n, _ := l.r.Read(one[:]); n > 0 {
			return 0, &limitExceededError{n: l.n}
		}
		return 0, io.EOF
	}
	if rem := l.n - l.read; int64(len(p)) > rem {
		p = p[:rem]
	}
	n, err := l.r.Read(p)
	l.read += int64(n)
	return n, err
}
