// Package jtd compiles JSON Type Definition schemas (RFC 8927) into
// validators and reports failures with RFC 8927 error indicators.
//
// - Schemas come from JSON (ParseJSON), YAML (ParseYAML), decoded values
// (ParseValue) or the builders in jtd/dsl. Every schema is verified before
// use and problems are reported as *SchemaError.
// - A Validator is a compiled, immutable closure graph. Recursive refs
// compile to a finite graph and are bounded at run time by ValidateOpt.MaxDepth.
// - Validation yields Issues: instance path, schema path, code and a message
// from jtd/i18n.
// - The jtd/shape package infers the data shape a schema admits and checks
// it against Go types.
//
// Typical usage:
//
//	v, err := jtd.CompileJSON(schemaBytes)
//	if err != nil {
//		return err
//	}
//	if err := v.ValidateJSON(ctx, data); err != nil {
//		if iss, ok := jtd.AsIssues(err); ok {
//			for _, it := range iss {
//				log.Println(it)
//			}
//		}
//	}
package jtd
