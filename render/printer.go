package render

import (
	"bufio"
	"strconv"

	"github.com/wippyai/metaprint"
	"github.com/wippyai/metaprint/errors"
	"github.com/wippyai/metaprint/internal/abi"
	"github.com/wippyai/metaprint/ops"
)

// printer holds the state of one render call. Write errors are sticky in
// the bufio.Writer and surface on Flush.
type printer struct {
	w       *bufio.Writer
	mem     metaprint.Memory
	labels  LabelResolver
	options Options
}

// value renders one top-level value and tags errors with the sequence name.
func (p *printer) value(addr uint32, seq *ops.Sequence) error {
	_, err := p.walk(addr, seq, 0, 0, nil)
	if err != nil {
		var e *errors.Error
		if errors.As(err, &e) && e.Type == "" {
			e.Type = seq.Name()
		}
	}
	return err
}

func (p *printer) indent(depth int) {
	for n := depth * p.options.IndentWidth; n > 0; n-- {
		p.w.WriteByte(' ')
	}
}

func (p *printer) read(addr, size uint32, path []string) (uint64, error) {
	var (
		v   uint64
		err error
	)
	switch size {
	case 1:
		var b uint8
		b, err = p.mem.ReadU8(addr)
		v = uint64(b)
	case 2:
		var h uint16
		h, err = p.mem.ReadU16(addr)
		v = uint64(h)
	case 4:
		var w uint32
		w, err = p.mem.ReadU32(addr)
		v = uint64(w)
	case 8:
		v, err = p.mem.ReadU64(addr)
	default:
		return 0, errors.New(errors.PhaseRender, errors.KindInvalidData).
			Path(path...).
			Detail("unsupported scalar width %d", size).
			Build()
	}
	if err != nil {
		return 0, errors.MemoryRead(path, addr, err)
	}
	return v, nil
}

func (p *printer) readU32(addr uint32, path []string) (uint32, error) {
	v, err := p.mem.ReadU32(addr)
	if err != nil {
		return 0, errors.MemoryRead(path, addr, err)
	}
	return v, nil
}

// fieldAddr is the address of op's value relative to base.
func fieldAddr(base uint32, op *ops.Op, path []string) (uint32, error) {
	addr, ok := abi.SafeAddU32(base, op.Offset)
	if !ok {
		return 0, errors.Overflow(errors.PhaseRender, path, "field address overflows")
	}
	return addr, nil
}

// childPath appends name without aliasing path's backing array.
func childPath(path []string, name string) []string {
	if name == "" {
		return path
	}
	return append(path[:len(path):len(path)], name)
}

// indexPath marks the last path element with an index, e.g. items[2].
func indexPath(path []string, i int) []string {
	idx := "[" + strconv.Itoa(i) + "]"
	if len(path) == 0 {
		return []string{idx}
	}
	out := append([]string(nil), path...)
	out[len(out)-1] += idx
	return out
}
