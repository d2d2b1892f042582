package render

import (
	"go.uber.org/zap"

	"github.com/wippyai/metaprint/errors"
	"github.com/wippyai/metaprint/internal/abi"
	"github.com/wippyai/metaprint/ops"
)

// walk renders the ops of seq from cursor on against base and returns the
// cursor it stopped at: the PopStruct that closes the enclosing structure,
// or seq.Len() when the sequence is exhausted.
func (p *printer) walk(base uint32, seq *ops.Sequence, cursor, depth int, path []string) (int, error) {
	for ; cursor < seq.Len(); cursor++ {
		op := seq.At(cursor)
		switch op.Kind {
		case ops.PopStruct:
			return cursor, nil
		case ops.Map:
			Logger().Debug("map not rendered", zap.String("type", seq.Name()), zap.String("field", op.Name))
			continue
		case ops.NoOp:
			continue
		}

		next, err := p.walkOp(base, seq, cursor, depth, path)
		if err != nil {
			return cursor, err
		}
		cursor = next
	}
	return cursor, nil
}

// walkOp applies the op at cursor Count times, one line per repetition.
// It returns the cursor of the last op it consumed: the op itself, or the
// PopStruct closing a structure.
func (p *printer) walkOp(base uint32, seq *ops.Sequence, cursor, depth int, path []string) (int, error) {
	op := seq.At(cursor)
	count := op.Repeat()
	fieldPath := childPath(path, op.Name)

	next := cursor
	addr := base
	for i := 0; i < count; i++ {
		elemPath := fieldPath
		if count > 1 {
			elemPath = indexPath(fieldPath, i)
		}

		p.indent(depth)
		if op.Name != "" {
			p.w.WriteString(op.Name)
			p.w.WriteString(": ")
		}

		switch op.Kind {
		case ops.Primitive, ops.Enum, ops.Bitmask:
			if err := p.scalar(addr, op, elemPath); err != nil {
				return cursor, err
			}

		case ops.PushStruct:
			end, err := p.structure(addr, seq, cursor+1, depth, elemPath)
			if err != nil {
				return cursor, err
			}
			if i == count-1 {
				next = end
			}

		case ops.Vector:
			if err := p.vector(addr, op, depth, elemPath); err != nil {
				return cursor, err
			}

		case ops.FixedArray:
			if err := p.array(addr, op, depth, elemPath); err != nil {
				return cursor, err
			}

		default:
			return cursor, errors.New(errors.PhaseRender, errors.KindUnsupported).
				Path(elemPath...).
				Detail("op %d: kind %s", cursor, op.Kind).
				Build()
		}

		p.w.WriteByte('\n')

		if i < count-1 {
			var ok bool
			if addr, ok = abi.SafeAddU32(addr, op.Size); !ok {
				return cursor, errors.Overflow(errors.PhaseRender, elemPath, "repeated field address overflows")
			}
		}
	}
	return next, nil
}
