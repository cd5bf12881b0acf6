package jtd

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/reoring/jtd/internal/rfc3339"
)

// checkEmpty accepts every value, null included, whether or not the node is
// nullable.
func checkEmpty(*state, any) {}

func compileType(t Type) checker {
	expect := map[string]any{"expected": string(t)}
	switch {
	case t == TypeBoolean:
		return func(st *state, v any) {
			if _, ok := v.(bool); !ok {
				st.fail("type", CodeInvalidType, expect)
			}
		}
	case t == TypeString:
		return func(st *state, v any) {
			if _, ok := v.(string); !ok {
				st.fail("type", CodeInvalidType, expect)
			}
		}
	case t == TypeTimestamp:
		return func(st *state, v any) {
			switch x := v.(type) {
			case time.Time:
			case string:
				if !rfc3339.Valid(x) {
					st.fail("type", CodeInvalidFormat, expect)
				}
			default:
				st.fail("type", CodeInvalidType, expect)
			}
		}
	case t == TypeFloat32 || t == TypeFloat64:
		return func(st *state, v any) {
			f, ok := toFloat(v)
			if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
				st.fail("type", CodeInvalidType, expect)
			}
		}
	case t.IsInteger():
		rng := intRanges[t]
		return func(st *state, v any) {
			f, ok := toFloat(v)
			if !ok || math.IsNaN(f) {
				st.fail("type", CodeInvalidType, expect)
				return
			}
			if !math.IsInf(f, 0) && f != math.Trunc(f) {
				st.fail("type", CodeInvalidType, expect)
				return
			}
			if f < rng.min || f > rng.max {
				st.fail("type", CodeOverflow, expect)
			}
		}
	default:
		panic("jtd: unhandled type " + string(t))
	}
}

func compileEnum(values []string) checker {
	set := make(map[string]struct{}, len(values))
	for _, e := range values {
		set[e] = struct{}{}
	}
	return func(st *state, v any) {
		s, ok := v.(string)
		if ok {
			if _, ok = set[s]; ok {
				return
			}
		}
		st.fail("enum", CodeInvalidEnum, map[string]any{"expected": "enum"})
	}
}

func compileElements(elem checker) checker {
	return func(st *state, v any) {
		arr, ok := v.([]any)
		if !ok {
			st.fail("elements", CodeInvalidType, map[string]any{"expected": "array"})
			return
		}
		st.schema.push("elements")
		for i, e := range arr {
			st.instance.pushIndex(i)
			elem(st, e)
			st.instance.pop()
			if st.stopped() {
				break
			}
		}
		st.schema.pop()
	}
}

func compileValues(val checker) checker {
	return func(st *state, v any) {
		m, ok := v.(map[string]any)
		if !ok {
			st.fail("values", CodeInvalidType, map[string]any{"expected": "object"})
			return
		}
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		st.schema.push("values")
		for _, k := range keys {
			st.instance.push(k)
			val(st, m[k])
			st.instance.pop()
			if st.stopped() {
				break
			}
		}
		st.schema.pop()
	}
}

type propertiesChecker struct {
	required    []compiledProperty
	optional    []compiledProperty
	known       map[string]struct{}
	additional  bool
	typeKeyword string
}

func (pc propertiesChecker) check(st *state, v any) {
	m, ok := v.(map[string]any)
	if !ok {
		st.fail(pc.typeKeyword, CodeInvalidType, map[string]any{"expected": "object"})
		return
	}
	st.schema.push("properties")
	for _, p := range pc.required {
		val, present := m[p.name]
		if !present {
			st.fail(p.name, CodeRequired, map[string]any{"key": p.name})
		} else {
			st.schema.push(p.name)
			st.instance.push(p.name)
			p.check(st, val)
			st.instance.pop()
			st.schema.pop()
		}
		if st.stopped() {
			st.schema.pop()
			return
		}
	}
	st.schema.pop()

	st.schema.push("optionalProperties")
	for _, p := range pc.optional {
		val, present := m[p.name]
		if !present {
			continue
		}
		st.schema.push(p.name)
		st.instance.push(p.name)
		p.check(st, val)
		st.instance.pop()
		st.schema.pop()
		if st.stopped() {
			st.schema.pop()
			return
		}
	}
	st.schema.pop()

	if pc.additional {
		return
	}
	extra := make([]string, 0)
	for k := range m {
		if _, ok := pc.known[k]; !ok {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		st.instance.push(k)
		st.fail("", CodeUnknownKey, map[string]any{"key": k})
		st.instance.pop()
		if st.stopped() {
			return
		}
	}
}

type discriminatorChecker struct {
	tag      string
	variants map[string]variant
}

func (dc discriminatorChecker) check(st *state, v any) {
	m, ok := v.(map[string]any)
	if !ok {
		st.fail("discriminator", CodeInvalidType, map[string]any{"expected": "object"})
		return
	}
	raw, present := m[dc.tag]
	if !present {
		st.fail("discriminator", CodeDiscriminatorMissing, map[string]any{"key": dc.tag})
		return
	}
	tag, ok := raw.(string)
	if !ok {
		st.instance.push(dc.tag)
		st.fail("discriminator", CodeInvalidType, map[string]any{"expected": "string", "key": dc.tag})
		st.instance.pop()
		return
	}
	vr, ok := dc.variants[tag]
	if !ok {
		st.instance.push(dc.tag)
		st.fail("mapping", CodeDiscriminatorUnknown, map[string]any{"key": dc.tag, "tag": tag})
		st.instance.pop()
		return
	}
	if vr.absolute {
		saved := st.schema.swap(append([]string(nil), vr.schemaPath...))
		vr.check(st, v)
		st.schema.swap(saved)
		return
	}
	for _, tok := range vr.schemaPath {
		st.schema.push(tok)
	}
	vr.check(st, v)
	for range vr.schemaPath {
		st.schema.pop()
	}
}

// toFloat converts the numeric representations found in value trees:
// Go integers and floats, and json.Number-like literals.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case numberLiteral:
		f, err := n.Float64()
		if err != nil {
			// Out-of-range literals parse to ±Inf, which range checks reject.
			if errors.Is(err, strconv.ErrRange) {
				return f, true
			}
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// numberLiteral matches json.Number from encoding/json and goccy/go-json.
type numberLiteral interface {
	Float64() (float64, error)
	String() string
}
