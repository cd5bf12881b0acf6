package jtd

import (
	"strconv"
	"strings"
)

// Path is a sequence of object keys and array indices. Indices are stored in
// decimal form.
type Path []string

// Field returns a copy of p extended with a key.
func (p Path) Field(name string) Path { return append(p.clone(), name) }

// Index returns a copy of p extended with an array index.
func (p Path) Index(i int) Path { return append(p.clone(), strconv.Itoa(i)) }

// Pointer renders p as an RFC 6901 JSON Pointer. The root is "".
func (p Path) Pointer() string {
	if len(p) == 0 {
		return ""
	}
	b := &strings.Builder{}
	for _, tok := range p {
		b.WriteByte('/')
		b.WriteString(pointerEscaper.Replace(tok))
	}
	return b.String()
}

func (p Path) String() string { return p.Pointer() }

func (p Path) clone() Path {
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// ParsePointer splits an RFC 6901 JSON Pointer into a Path.
func ParsePointer(ptr string) Path {
	if ptr == "" {
		return Path{}
	}
	parts := strings.Split(strings.TrimPrefix(ptr, "/"), "/")
	out := make(Path, len(parts))
	for i, part := range parts {
		out[i] = pointerUnescaper.Replace(part)
	}
	return out
}

var (
	pointerEscaper   = strings.NewReplacer("~", "~0", "/", "~1")
	pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")
)

// pathStack is a mutable path used while walking; push/pop avoid copying on
// the happy path and snapshot copies when an issue is recorded.
type pathStack struct{ toks []string }

func (s *pathStack) push(tok string) { s.toks = append(s.toks, tok) }
func (s *pathStack) pushIndex(i int) { s.toks = append(s.toks, strconv.Itoa(i)) }
func (s *pathStack) pop()            { s.toks = s.toks[:len(s.toks)-1] }
func (s *pathStack) snapshot() Path  { return Path(s.toks).clone() }

func (s *pathStack) swap(p []string) []string {
	old := s.toks
	s.toks = p
	return old
}
