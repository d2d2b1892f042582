package render

import (
	"encoding/binary"
	"fmt"
	"math"
	"testing"
)

// testMem is a little-endian byte buffer implementing metaprint.Memory.
// Writes go through must* helpers that fail the test on bad offsets.
type testMem struct {
	t    *testing.T
	data []byte
}

func newTestMem(t *testing.T, size int) *testMem {
	return &testMem{t: t, data: make([]byte, size)}
}

func (m *testMem) Read(offset uint32, length uint32) ([]byte, error) {
	end := uint64(offset) + uint64(length)
	if end > uint64(len(m.data)) {
		return nil, fmt.Errorf("read out of bounds: offset=%d, length=%d", offset, length)
	}
	return m.data[offset:end], nil
}

func (m *testMem) ReadU8(offset uint32) (uint8, error) {
	b, err := m.Read(offset, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (m *testMem) ReadU16(offset uint32) (uint16, error) {
	b, err := m.Read(offset, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (m *testMem) ReadU32(offset uint32) (uint32, error) {
	b, err := m.Read(offset, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (m *testMem) ReadU64(offset uint32) (uint64, error) {
	b, err := m.Read(offset, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (m *testMem) at(offset uint32, n int) []byte {
	m.t.Helper()
	if int(offset)+n > len(m.data) {
		m.t.Fatalf("write of %d bytes at %d past end of %d byte memory", n, offset, len(m.data))
	}
	return m.data[offset : int(offset)+n]
}

func (m *testMem) mustWriteU8(offset uint32, v uint8) {
	m.t.Helper()
	m.at(offset, 1)[0] = v
}

func (m *testMem) mustWriteU16(offset uint32, v uint16) {
	m.t.Helper()
	binary.LittleEndian.PutUint16(m.at(offset, 2), v)
}

func (m *testMem) mustWriteU32(offset uint32, v uint32) {
	m.t.Helper()
	binary.LittleEndian.PutUint32(m.at(offset, 4), v)
}

func (m *testMem) mustWriteU64(offset uint32, v uint64) {
	m.t.Helper()
	binary.LittleEndian.PutUint64(m.at(offset, 8), v)
}

func (m *testMem) mustWriteF32(offset uint32, v float32) {
	m.t.Helper()
	m.mustWriteU32(offset, math.Float32bits(v))
}

func (m *testMem) mustWriteF64(offset uint32, v float64) {
	m.t.Helper()
	m.mustWriteU64(offset, math.Float64bits(v))
}

// mustWriteString stores s at dataAddr and its (ptr, len) header at offset.
func (m *testMem) mustWriteString(offset, dataAddr uint32, s string) {
	m.t.Helper()
	copy(m.at(dataAddr, len(s)), s)
	m.mustWriteU32(offset, dataAddr)
	m.mustWriteU32(offset+4, uint32(len(s)))
}
