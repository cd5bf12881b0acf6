package jtd

// DefaultMaxDepth bounds how many refs a single validation may follow
// before giving up with ErrMaxDepthExceeded.
const DefaultMaxDepth = 1024

// ValidateOpt bundles validation options. When several are passed the last
// one wins.
type ValidateOpt struct {
	// MaxDepth limits nested ref expansion. 0 selects DefaultMaxDepth and a
	// negative value disables the limit.
	MaxDepth int
	// MaxErrors stops validation once this many issues are collected. 0
	// means unlimited.
	MaxErrors int
	// FailFast stops at the first issue; equivalent to MaxErrors: 1.
	FailFast bool
	// Decode configures instance decoding for ValidateJSON.
	Decode DecodeOpt
}

// DuplicateKeyPolicy controls how repeated object keys in JSON instances
// are treated.
type DuplicateKeyPolicy int

const (
	// DuplicateLastWins keeps the last occurrence, as encoding/json does.
	DuplicateLastWins DuplicateKeyPolicy = iota
	// DuplicateReject reports a duplicate_key issue.
	DuplicateReject
)

// DecodeOpt configures decoding of JSON instances into value trees.
type DecodeOpt struct {
	// MaxDepth limits object/array nesting. 0 means unlimited.
	MaxDepth int
	// MaxBytes caps the input size. 0 means unlimited.
	MaxBytes int64
	// OnDuplicateKey selects the duplicate key policy.
	OnDuplicateKey DuplicateKeyPolicy
}

func lastOpt[T any](opts []T) T {
	var opt T
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	return opt
}

func (o ValidateOpt) maxDepth() int {
	switch {
	case o.MaxDepth == 0:
		return DefaultMaxDepth
	case o.MaxDepth < 0:
		return 0
	default:
		return o.MaxDepth
	}
}

func (o ValidateOpt) maxErrors() int {
	if o.FailFast {
		return 1
	}
	return max(o.MaxErrors, 0)
}
