// Package ops defines operation sequences, the flattened layout
// descriptions the renderer interprets.
//
// A sequence is the pre-order flattening of a type. Entering a nested
// structure emits a PushStruct op, then the structure's own ops, then a
// PopStruct op. Vectors and fixed arrays reference a separate element
// sequence that is walked once per element.
//
// Every op carries the byte offset of its value relative to the base the
// sequence is walked against, and the byte size of one instance of that
// value. Offsets inside nested structures are relative to the same base as
// the outermost op; only repetition (Count > 1) and vector elements move
// the base.
//
// # Key Types
//
//   - Op: one step with kind, name, offset, size and kind-specific payload
//   - Sequence: immutable, validated list of ops
//   - Builder: computes offsets and sizes with natural alignment
//
// Sequences are immutable after construction and safe for concurrent use.
package ops
