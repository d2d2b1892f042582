package memory

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"go.uber.org/zap"

	"github.com/wippyai/metaprint"
	"github.com/wippyai/metaprint/errors"
)

var (
	_ metaprint.Memory      = (*Bytes)(nil)
	_ metaprint.MemorySizer = (*Bytes)(nil)
)

// Bytes is a read-only memory backed by a byte slice. Address 0 is the
// first byte of the slice.
type Bytes struct {
	data []byte
}

// NewBytes wraps data without copying it.
func NewBytes(data []byte) *Bytes {
	return &Bytes{data: data}
}

// ReadFile loads a raw image from disk.
func ReadFile(path string) (*Bytes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load("read image "+path, err)
	}
	if uint64(len(data)) > math.MaxUint32 {
		return nil, errors.New(errors.PhaseLoad, errors.KindOverflow).
			Detail("image %s is %d bytes, larger than a 32-bit address space", path, len(data)).
			Build()
	}
	Logger().Debug("image loaded", zap.String("path", path), zap.Int("size", len(data)))
	return NewBytes(data), nil
}

// Size returns the image size in bytes.
func (b *Bytes) Size() uint32 {
	return uint32(len(b.data))
}

// Read returns length bytes at offset. The slice aliases the image.
func (b *Bytes) Read(offset uint32, length uint32) ([]byte, error) {
	end := uint64(offset) + uint64(length)
	if end > uint64(len(b.data)) {
		return nil, fmt.Errorf("memory read out of bounds: offset=%d, length=%d", offset, length)
	}
	return b.data[offset:end:end], nil
}

// ReadU8 reads an unsigned 8-bit value.
func (b *Bytes) ReadU8(offset uint32) (uint8, error) {
	if uint64(offset) >= uint64(len(b.data)) {
		return 0, fmt.Errorf("memory read out of bounds: offset=%d", offset)
	}
	return b.data[offset], nil
}

// ReadU16 reads an unsigned 16-bit little-endian value.
func (b *Bytes) ReadU16(offset uint32) (uint16, error) {
	p, err := b.fixed(offset, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(p), nil
}

// ReadU32 reads an unsigned 32-bit little-endian value.
func (b *Bytes) ReadU32(offset uint32) (uint32, error) {
	p, err := b.fixed(offset, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(p), nil
}

// ReadU64 reads an unsigned 64-bit little-endian value.
func (b *Bytes) ReadU64(offset uint32) (uint64, error) {
	p, err := b.fixed(offset, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(p), nil
}

func (b *Bytes) fixed(offset, n uint32) ([]byte, error) {
	end := uint64(offset) + uint64(n)
	if end > uint64(len(b.data)) {
		return nil, fmt.Errorf("memory read out of bounds: offset=%d", offset)
	}
	return b.data[offset:end], nil
}
