// Package dsl builds JTD schemas in Go code.
//
// Entry points
//   - Empty/Type/Enum/Elements/Values/Ref: single-node forms.
//   - Nullable/WithMetadata: return modified copies.
//   - Object(): properties form; chain Field(...).Required()/Optional(), AllowAdditional(), then Build/MustBuild.
//   - Discriminator(tag): chain Variant(name, s) then Build/MustBuild.
//   - Root(s): attach definitions with Define and verify the document with Build.
//
// Node builders check what they can see locally. References are resolved,
// and the whole document verified, by Root(...).Build().
//
// Example
//
//	node := g.Object().
//	    Field("value", g.Float64()).Required().
//	    Field("next", g.Nullable(g.Ref("node"))).Required().
//	    MustBuild()
//	schema := g.Root(g.Ref("node")).Define("node", node).MustBuild()
//	v := jtd.MustCompile(schema)
package dsl
