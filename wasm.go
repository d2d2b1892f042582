package metaprint

// Memory is a read-only view of the memory a value blob lives in.
// Addresses are 32-bit and multi-byte values are little-endian.
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	ReadU8(offset uint32) (uint8, error)
	ReadU16(offset uint32) (uint16, error)
	ReadU32(offset uint32) (uint32, error)
	ReadU64(offset uint32) (uint64, error)
}

// MemorySizer provides the current size of a memory in bytes.
type MemorySizer interface {
	Size() uint32
}
