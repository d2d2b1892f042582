// Package metaprint renders values resident in memory as indented text,
// driven by a flattened description of their layout.
//
// A layout is an operation sequence: a pre-order flattening of a type where
// nested structures are bracketed by push/pop markers and dynamically sized
// vectors carry their own element sequence. The renderer walks a memory blob
// and the sequence in lock-step.
//
// # Architecture Overview
//
//	metaprint/           Root package with the read-only Memory interface
//	├── ops/             Operation sequences: kinds, symbols, validation, builder
//	├── render/          Scalar, struct and vector renderers and the sequence walker
//	├── memory/          Byte-slice and wazero-backed Memory implementations
//	├── catalog/         TOML catalog of sequences, entity labels and selections
//	├── errors/          Structured error types
//	└── cmd/metaprint/   Command line front end with an interactive viewer
//
// # Quick Start
//
//	seq, err := ops.NewBuilder("Position").
//	    Push("").
//	    Field("x", ops.F32).
//	    Field("y", ops.F32).
//	    Pop().
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	r := render.NewWithDefaults(nil, nil)
//	err = r.RenderValue(os.Stdout, memory.NewBytes(image), 0, seq)
//
// Output:
//
//	{
//	    x: 1.000000
//	    y: 2.000000
//	}
//
// # Thread Safety
//
// Sequences, catalogs and renderers are immutable once built and safe for
// concurrent use. Each render call keeps its cursor and depth on the stack.
// Concurrent mutation of the memory being rendered is not supported.
package metaprint
