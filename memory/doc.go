// Package memory provides metaprint.Memory implementations.
//
// # Byte Images
//
// Bytes serves reads from a plain byte slice, typically a raw dump read
// from disk:
//
//	img, err := memory.ReadFile("world.bin")
//	// img implements metaprint.Memory
//
// # Wasm Linear Memory
//
// Wrap adapts a wazero api.Memory. LoadModule instantiates a core module
// without imports and exposes its exported memory, so a value image can be
// shipped as the data segments of a .wasm file:
//
//	img, err := memory.LoadModule(ctx, wasmBytes)
//	defer img.Close(ctx)
//	r.Render(os.Stdout, img.Memory(), sel)
//
// All implementations are read-only and little-endian.
package memory
