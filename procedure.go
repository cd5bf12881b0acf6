package jtd

import "context"

// Procedure wraps a Validator in a boolean entry point whose issues are read
// back afterwards. It is not safe for concurrent use; share the Validator
// and give each goroutine its own Procedure.
type Procedure struct {
	v      *Validator
	ctx    context.Context
	opt    ValidateOpt
	issues Issues
	err    error
}

// NewProcedure returns a Procedure bound to v. Options are applied to
// every call.
func NewProcedure(v *Validator, opts ...ValidateOpt) *Procedure {
	return &Procedure{v: v, ctx: context.Background(), opt: lastOpt(opts)}
}

// WithContext returns a copy of p that validates under ctx.
func (p *Procedure) WithContext(ctx context.Context) *Procedure {
	cp := *p
	cp.ctx = ctx
	cp.issues, cp.err = nil, nil
	return &cp
}

// Validate reports whether value conforms. It returns false on rejection
// and on fatal conditions; see Errors and Err.
func (p *Procedure) Validate(value any) bool {
	p.issues, p.err = nil, nil
	err := p.v.Validate(p.ctx, value, p.opt)
	if err == nil {
		return true
	}
	if iss, ok := AsIssues(err); ok {
		p.issues = iss
	} else {
		p.err = err
	}
	return false
}

// Errors returns the issues of the most recent Validate call, nil after a
// success.
func (p *Procedure) Errors() Issues { return p.issues }

// Err returns the fatal error of the most recent call, if any.
func (p *Procedure) Err() error { return p.err }
