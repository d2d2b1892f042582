package render

import (
	"github.com/wippyai/metaprint/errors"
	"github.com/wippyai/metaprint/internal/abi"
	"github.com/wippyai/metaprint/ops"
)

// vector renders a (ptr u32, len u32) list stored at base+op.Offset.
func (p *printer) vector(base uint32, op *ops.Op, depth int, path []string) error {
	addr, err := fieldAddr(base, op, path)
	if err != nil {
		return err
	}
	ptr, err := p.readU32(addr, path)
	if err != nil {
		return err
	}
	lenAddr, ok := abi.SafeAddU32(addr, 4)
	if !ok {
		return errors.Overflow(errors.PhaseRender, path, "vector header address overflows")
	}
	n, err := p.readU32(lenAddr, path)
	if err != nil {
		return err
	}

	if n > abi.MaxListLength {
		return errors.New(errors.PhaseRender, errors.KindOverflow).
			Path(path...).
			Detail("vector length %d exceeds maximum %d", n, abi.MaxListLength).
			Build()
	}
	return p.elements(ptr, n, op.Elements, depth, path)
}

// array renders op.Length elements stored inline at base+op.Offset.
func (p *printer) array(base uint32, op *ops.Op, depth int, path []string) error {
	addr, err := fieldAddr(base, op, path)
	if err != nil {
		return err
	}
	return p.elements(addr, op.Length, op.Elements, depth, path)
}

// elements walks elems once per element, in storage order, at depth+1.
func (p *printer) elements(start, n uint32, elems *ops.Sequence, depth int, path []string) error {
	if n == 0 {
		p.w.WriteString("[]")
		return nil
	}
	if elems == nil {
		return errors.InvalidData(errors.PhaseRender, path, "missing element sequence")
	}

	stride := elems.Size()
	if _, ok := abi.ElementAddr(start, n-1, stride); !ok {
		return errors.New(errors.PhaseRender, errors.KindOverflow).
			Path(path...).
			Detail("%d elements of %d bytes at 0x%x overflow the address space", n, stride, start).
			Build()
	}

	p.w.WriteString("[\n")
	for i := uint32(0); i < n; i++ {
		addr := start + i*stride
		if _, err := p.walk(addr, elems, 0, depth+1, indexPath(path, int(i))); err != nil {
			return err
		}
	}
	p.indent(depth)
	p.w.WriteByte(']')
	return nil
}
