package memory

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/metaprint"
	"github.com/wippyai/metaprint/errors"
)

// DefaultExportName is the export LoadModule looks for first.
const DefaultExportName = "memory"

var (
	_ metaprint.Memory      = (*Wrapper)(nil)
	_ metaprint.MemorySizer = (*Wrapper)(nil)
)

// Wrap adapts a wazero api.Memory to metaprint.Memory.
func Wrap(mem api.Memory) *Wrapper {
	if mem == nil {
		return nil
	}
	return &Wrapper{Mem: mem}
}

// Wrapper adapts wazero api.Memory to the metaprint.Memory interface.
type Wrapper struct {
	Mem api.Memory
}

// Size returns the current memory size in bytes.
func (m *Wrapper) Size() uint32 {
	return m.Mem.Size()
}

// Read reads bytes from memory. The slice aliases linear memory and is
// invalidated by a memory grow.
func (m *Wrapper) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.Mem.Read(offset, length)
	if !ok {
		return nil, fmt.Errorf("memory read out of bounds: offset=%d, length=%d", offset, length)
	}
	return data, nil
}

// ReadU8 reads an unsigned 8-bit value.
func (m *Wrapper) ReadU8(offset uint32) (uint8, error) {
	v, ok := m.Mem.ReadByte(offset)
	if !ok {
		return 0, fmt.Errorf("memory read out of bounds: offset=%d", offset)
	}
	return v, nil
}

// ReadU16 reads an unsigned 16-bit little-endian value.
func (m *Wrapper) ReadU16(offset uint32) (uint16, error) {
	v, ok := m.Mem.ReadUint16Le(offset)
	if !ok {
		return 0, fmt.Errorf("memory read out of bounds: offset=%d", offset)
	}
	return v, nil
}

// ReadU32 reads an unsigned 32-bit little-endian value.
func (m *Wrapper) ReadU32(offset uint32) (uint32, error) {
	v, ok := m.Mem.ReadUint32Le(offset)
	if !ok {
		return 0, fmt.Errorf("memory read out of bounds: offset=%d", offset)
	}
	return v, nil
}

// ReadU64 reads an unsigned 64-bit little-endian value.
func (m *Wrapper) ReadU64(offset uint32) (uint64, error) {
	v, ok := m.Mem.ReadUint64Le(offset)
	if !ok {
		return 0, fmt.Errorf("memory read out of bounds: offset=%d", offset)
	}
	return v, nil
}

// LoadConfig holds configuration for LoadModule.
type LoadConfig struct {
	// ExportName selects the exported memory. Empty means "memory", falling
	// back to the module's first memory when that export is absent.
	ExportName string

	// MemoryLimitPages caps memory in pages (64KB each). 0 keeps the
	// wazero default.
	MemoryLimitPages uint32
}

// Image is an instantiated module whose linear memory holds values to
// render. Close releases the runtime.
type Image struct {
	runtime wazero.Runtime
	mem     *Wrapper
}

// Memory returns the image's linear memory.
func (i *Image) Memory() *Wrapper {
	return i.mem
}

// Close releases the module and its runtime.
func (i *Image) Close(ctx context.Context) error {
	return i.runtime.Close(ctx)
}

// LoadModule instantiates a core wasm module with no imports using the
// default LoadConfig.
func LoadModule(ctx context.Context, wasmBytes []byte) (*Image, error) {
	return LoadModuleWithConfig(ctx, wasmBytes, nil)
}

// LoadModuleWithConfig instantiates a core wasm module with no imports and
// returns its memory. Start functions are not run: the image is whatever
// the data segments initialize.
func LoadModuleWithConfig(ctx context.Context, wasmBytes []byte, cfg *LoadConfig) (*Image, error) {
	runtimeCfg := wazero.NewRuntimeConfig()
	exportName := DefaultExportName
	if cfg != nil {
		if cfg.MemoryLimitPages > 0 {
			runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
		}
		if cfg.ExportName != "" {
			exportName = cfg.ExportName
		}
	}

	rt := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)

	compiled, err := rt.CompileModule(ctx, wasmBytes)
	if err != nil {
		rt.Close(ctx)
		return nil, errors.Load("compile module", err)
	}

	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithStartFunctions())
	if err != nil {
		rt.Close(ctx)
		return nil, errors.Load("instantiate module", err)
	}

	mem := mod.ExportedMemory(exportName)
	if mem == nil && (cfg == nil || cfg.ExportName == "") {
		mem = mod.Memory()
	}
	if mem == nil {
		rt.Close(ctx)
		return nil, errors.NotFound(errors.PhaseLoad, "exported memory", exportName)
	}

	Logger().Debug("module image loaded",
		zap.String("export", exportName),
		zap.Uint32("size", mem.Size()))

	return &Image{runtime: rt, mem: Wrap(mem)}, nil
}
