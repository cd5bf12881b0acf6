// Package shape infers, from a verified JTD schema, the shape of the values
// it admits and compares it with shapes declared by Go types.
//
// Inference never looks at data. Compare demands exact equivalence: a
// declared shape that is broader or narrower than the schema is a mismatch.
package shape
