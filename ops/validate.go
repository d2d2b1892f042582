package ops

import (
	"fmt"

	"github.com/wippyai/metaprint/errors"
)

// Validate checks the structure of seq without looking at any memory:
// push/pop markers pair up, element sequences are present and sizes are
// consistent with the kinds they describe.
func Validate(seq *Sequence) error {
	if seq == nil || len(seq.ops) == 0 {
		return errors.New(errors.PhaseValidate, errors.KindInvalidData).
			Type(seqName(seq)).
			Detail("empty sequence").
			Build()
	}

	var open []int
	for i := range seq.ops {
		op := &seq.ops[i]
		switch op.Kind {
		case PushStruct:
			open = append(open, i)
		case PopStruct:
			if len(open) == 0 {
				return errors.Unbalanced(seq.name, i, "pop without matching push")
			}
			open = open[:len(open)-1]
		case Primitive:
			if err := validatePrimitive(seq.name, i, op); err != nil {
				return err
			}
		case Enum, Bitmask:
			if !validScalarWidth(op.Size) {
				return invalidOp(seq.name, i, op, fmt.Sprintf("size %d, want 1, 2, 4 or 8", op.Size))
			}
		case Vector, FixedArray:
			if op.Elements == nil || op.Elements.Len() == 0 {
				return invalidOp(seq.name, i, op, "missing element sequence")
			}
			if op.Elements.Size() == 0 {
				return invalidOp(seq.name, i, op, "element sequence has zero size")
			}
		case Map, NoOp:
		default:
			return errors.New(errors.PhaseValidate, errors.KindUnsupported).
				Type(seq.name).
				Detail("op %d: unknown kind %d", i, op.Kind).
				Value(op.Kind).
				Build()
		}

		if op.Count > 1 && op.Size == 0 {
			return invalidOp(seq.name, i, op, "repeated op has zero size")
		}
	}

	if len(open) > 0 {
		return errors.Unbalanced(seq.name, open[len(open)-1], "push without matching pop")
	}
	return nil
}

func validatePrimitive(name string, i int, op *Op) error {
	if !op.Primitive.Valid() {
		return invalidOp(name, i, op, fmt.Sprintf("unknown primitive %d", op.Primitive))
	}
	if op.Primitive == Word {
		if op.Size != 4 && op.Size != 8 {
			return invalidOp(name, i, op, fmt.Sprintf("word size %d, want 4 or 8", op.Size))
		}
		return nil
	}
	if op.Size != op.Primitive.Size() {
		return invalidOp(name, i, op, fmt.Sprintf("%s size %d, want %d", op.Primitive, op.Size, op.Primitive.Size()))
	}
	return nil
}

func validScalarWidth(size uint32) bool {
	switch size {
	case 1, 2, 4, 8:
		return true
	}
	return false
}

func invalidOp(name string, i int, op *Op, detail string) error {
	b := errors.New(errors.PhaseValidate, errors.KindInvalidData).
		Type(name).
		Detail("op %d (%s): %s", i, op.Kind, detail)
	if op.Name != "" {
		b.Path(op.Name)
	}
	return b.Build()
}

func seqName(seq *Sequence) string {
	if seq == nil {
		return ""
	}
	return seq.name
}
