// Package catalog loads operation sequences, entity labels and value
// selections from a TOML file.
//
// A catalog declares each type as a list of ops. With the default
// "explicit" layout offsets and sizes are taken as written; "natural"
// computes them with C struct alignment:
//
//	image = "world.bin"
//
//	[[type]]
//	name = "Position"
//	layout = "natural"
//	op = [
//	    { kind = "push" },
//	    { kind = "primitive", primitive = "f32", name = "x" },
//	    { kind = "primitive", primitive = "f32", name = "y" },
//	    { kind = "pop" },
//	]
//
//	[[entity]]
//	id = 42
//	label = "Player"
//
//	[[select]]
//	type = "Position"
//	base = 0x100
//	count = 2
//	labels = ["Player", "Enemy"]
//
// Vector and array ops name their element type with elements = "Type".
// Element types may be declared in any order; reference cycles are
// rejected. A Catalog implements render.SequenceSource and
// render.LabelResolver.
package catalog
