// Package render turns memory described by an operation sequence into
// indented text.
//
// # Output Format
//
// A structure renders as "{", one line per field, then "}" at the
// structure's own indentation. A vector or fixed array renders as "[", one
// line (or block) per element, then "]"; an empty one renders as "[]".
// Named fields are prefixed with "name: ". Indentation is depth times
// Options.IndentWidth spaces. There are no separators between fields and
// the output is not meant to be parsed back.
//
//	player: {
//	    name: "Ada"
//	    pos: {
//	        x: 1.000000
//	        y: 2.000000
//	    }
//	    inventory: [
//	        3
//	        5
//	    ]
//	    state: Running
//	    access: Read|Write
//	}
//
// # Walking
//
// The walker advances a cursor through the flat op array. A PushStruct op
// hands the ops after it to the struct renderer, which returns the cursor of
// the matching PopStruct; the walker resumes after it. Ops with Count > 1
// are applied Count times, moving the base by the op size each time. A
// repeated structure re-walks the same nested ops for every repetition.
//
// # Fallbacks
//
//   - Enum values with no symbol render as their decimal value.
//   - Bitmask bits with no symbol render as a trailing 0x-prefixed group;
//     a zero bitmask renders as its zero symbol if declared, else "0".
//   - Entity references without a label render as their decimal id.
//   - Map and NoOp ops render nothing.
//   - A type with no sequence renders a diagnostic line and is skipped.
//
// # Thread Safety
//
// Renderer is immutable and safe for concurrent use with distinct writers.
// Cursor, depth and field path live on the stack of a single call.
package render
