package render

import (
	"math"
	"strconv"
	"strings"

	"github.com/wippyai/metaprint/errors"
	"github.com/wippyai/metaprint/internal/abi"
	"github.com/wippyai/metaprint/ops"
)

const hexDigits = "0123456789abcdef"

// scalar renders a Primitive, Enum or Bitmask op stored at base+op.Offset,
// without a trailing newline.
func (p *printer) scalar(base uint32, op *ops.Op, path []string) error {
	addr, err := fieldAddr(base, op, path)
	if err != nil {
		return err
	}

	switch op.Kind {
	case ops.Primitive:
		return p.primitive(addr, op, path)
	case ops.Enum:
		return p.enum(addr, op, path)
	case ops.Bitmask:
		return p.bitmask(addr, op, path)
	default:
		return errors.Unsupported(errors.PhaseRender, "scalar kind "+op.Kind.String())
	}
}

func (p *printer) primitive(addr uint32, op *ops.Op, path []string) error {
	var buf [32]byte

	switch op.Primitive {
	case ops.Bool:
		v, err := p.read(addr, 1, path)
		if err != nil {
			return err
		}
		p.w.Write(strconv.AppendBool(buf[:0], v != 0))

	case ops.Char:
		v, err := p.read(addr, 1, path)
		if err != nil {
			return err
		}
		p.w.WriteByte(byte(v))

	case ops.Byte:
		v, err := p.read(addr, 1, path)
		if err != nil {
			return err
		}
		p.w.WriteByte(hexDigits[v>>4])
		p.w.WriteByte(hexDigits[v&0xf])

	case ops.U8, ops.U16, ops.U32, ops.U64:
		v, err := p.read(addr, op.Primitive.Size(), path)
		if err != nil {
			return err
		}
		p.w.Write(strconv.AppendUint(buf[:0], v, 10))

	case ops.I8, ops.I16, ops.I32, ops.I64:
		size := op.Primitive.Size()
		v, err := p.read(addr, size, path)
		if err != nil {
			return err
		}
		p.w.Write(strconv.AppendInt(buf[:0], signExtend(v, size), 10))

	case ops.F32:
		v, err := p.read(addr, 4, path)
		if err != nil {
			return err
		}
		f := float64(math.Float32frombits(uint32(v)))
		p.w.Write(strconv.AppendFloat(buf[:0], f, 'f', 6, 64))

	case ops.F64:
		v, err := p.read(addr, 8, path)
		if err != nil {
			return err
		}
		p.w.Write(strconv.AppendFloat(buf[:0], math.Float64frombits(v), 'f', 6, 64))

	case ops.Word:
		v, err := p.read(addr, op.Size, path)
		if err != nil {
			return err
		}
		p.w.Write(strconv.AppendUint(buf[:0], v, 16))

	case ops.String:
		return p.str(addr, path)

	case ops.Entity:
		id, err := p.read(addr, 8, path)
		if err != nil {
			return err
		}
		if p.labels != nil {
			if label, ok := p.labels.ResolveLabel(id); ok {
				p.w.WriteString(label)
				return nil
			}
		}
		p.w.Write(strconv.AppendUint(buf[:0], id, 10))

	default:
		return errors.New(errors.PhaseRender, errors.KindUnsupported).
			Path(path...).
			Detail("primitive %s", op.Primitive).
			Build()
	}
	return nil
}

// str renders a (ptr u32, len u32) string between double quotes. Embedded
// quotes and control bytes are written as stored.
func (p *printer) str(addr uint32, path []string) error {
	ptr, err := p.readU32(addr, path)
	if err != nil {
		return err
	}
	lenAddr, ok := abi.SafeAddU32(addr, 4)
	if !ok {
		return errors.Overflow(errors.PhaseRender, path, "string header address overflows")
	}
	n, err := p.readU32(lenAddr, path)
	if err != nil {
		return err
	}

	p.w.WriteByte('"')
	if n > 0 {
		if n > abi.MaxStringSize {
			return errors.New(errors.PhaseRender, errors.KindOverflow).
				Path(path...).
				Detail("string size %d exceeds maximum %d", n, abi.MaxStringSize).
				Build()
		}
		data, err := p.mem.Read(ptr, n)
		if err != nil {
			return errors.MemoryRead(path, ptr, err)
		}
		p.w.Write(data)
	}
	p.w.WriteByte('"')
	return nil
}

func (p *printer) enum(addr uint32, op *ops.Op, path []string) error {
	raw, err := p.read(addr, op.Size, path)
	if err != nil {
		return err
	}
	v := signExtend(raw, op.Size)
	if name, ok := op.SymbolName(uint64(v)); ok {
		p.w.WriteString(name)
		return nil
	}
	p.w.WriteString(strconv.FormatInt(v, 10))
	return nil
}

func (p *printer) bitmask(addr uint32, op *ops.Op, path []string) error {
	v, err := p.read(addr, op.Size, path)
	if err != nil {
		return err
	}
	p.w.WriteString(formatFlags(v, op.Symbols, p.options.FlagSeparator))
	return nil
}

// formatFlags lists the symbols whose bits are all set in v, in
// declaration order. Bits no symbol covers are appended as one hex group.
func formatFlags(v uint64, symbols []ops.Symbol, sep string) string {
	if v == 0 {
		for _, s := range symbols {
			if s.Value == 0 {
				return s.Name
			}
		}
		return "0"
	}

	var parts []string
	rest := v
	for _, s := range symbols {
		if s.Value != 0 && v&s.Value == s.Value {
			parts = append(parts, s.Name)
			rest &^= s.Value
		}
	}
	if rest != 0 {
		parts = append(parts, "0x"+strconv.FormatUint(rest, 16))
	}
	return strings.Join(parts, sep)
}

func signExtend(v uint64, size uint32) int64 {
	switch size {
	case 1:
		return int64(int8(v))
	case 2:
		return int64(int16(v))
	case 4:
		return int64(int32(v))
	default:
		return int64(v)
	}
}
