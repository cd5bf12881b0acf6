package jtd

import (
	"context"
	"fmt"

	"github.com/reoring/jtd/i18n"
)

// reporter accumulates issues for exactly one validation call.
type reporter struct {
	issues    Issues
	maxErrors int
}

func (r *reporter) full() bool {
	return r.maxErrors > 0 && len(r.issues) >= r.maxErrors
}

func (r *reporter) add(it Issue) {
	if r.full() {
		return
	}
	r.issues = append(r.issues, it)
}

// state is the per-call walk state threaded through compiled checkers.
type state struct {
	ctx      context.Context
	rep      reporter
	instance pathStack
	schema   pathStack
	depth    int
	maxDepth int
	fatal    error
}

func newState(ctx context.Context, opt ValidateOpt) *state {
	return &state{
		ctx:      ctx,
		rep:      reporter{maxErrors: opt.maxErrors()},
		maxDepth: opt.maxDepth(),
	}
}

// stopped reports whether checkers should bail out: a fatal condition was
// hit or the error budget is spent.
func (st *state) stopped() bool { return st.fatal != nil || st.rep.full() }

// fail records an issue at the current instance path and at the schema path
// extended by keyword (when non-empty).
func (st *state) fail(keyword, code string, params map[string]any) {
	if keyword != "" {
		st.schema.push(keyword)
		defer st.schema.pop()
	}
	st.rep.add(Issue{
		InstancePath: st.instance.snapshot(),
		SchemaPath:   st.schema.snapshot(),
		Code:         code,
		Message:      i18n.T(code, messageData(params)),
		Params:       params,
	})
}

// enter guards ref expansion; it returns false after recording a fatal
// condition.
func (st *state) enter() bool {
	if err := st.ctx.Err(); err != nil {
		st.fatal = err
		return false
	}
	st.depth++
	if st.maxDepth > 0 && st.depth > st.maxDepth {
		st.fatal = fmt.Errorf("%w at %s", ErrMaxDepthExceeded, Path(st.instance.toks).Pointer())
		return false
	}
	return true
}

func (st *state) leave() { st.depth-- }

func messageData(params map[string]any) map[string]string {
	if len(params) == 0 {
		return nil
	}
	out := make(map[string]string, len(params))
	for k, v := range params {
		out[k] = fmt.Sprint(v)
	}
	return out
}
