package ops

import "slices"

// Symbol maps a stored enum or bitmask value to its display name.
// Negative enum constants are stored as their two's complement.
type Symbol struct {
	Name  string
	Value uint64
}

// Op is one step of a flattened layout description.
type Op struct {
	// Elements is the element sequence of a Vector or FixedArray op.
	Elements *Sequence
	Name     string
	Symbols  []Symbol
	// Offset is relative to the base the enclosing sequence is walked against.
	Offset uint32
	// Size is the byte size of one instance; repetitions advance by it.
	Size uint32
	// Count is the repetition arity; 0 and 1 both mean a single value.
	Count uint32
	// Length is the inline element count of a FixedArray op.
	Length    uint32
	Kind      Kind
	Primitive PrimitiveKind
}

// Repeat returns how many times the op is applied.
func (op *Op) Repeat() int {
	if op.Count == 0 {
		return 1
	}
	return int(op.Count)
}

// SymbolName returns the first symbol declared for v.
func (op *Op) SymbolName(v uint64) (string, bool) {
	for _, s := range op.Symbols {
		if s.Value == v {
			return s.Name, true
		}
	}
	return "", false
}

// Sequence is an immutable, validated operation sequence.
type Sequence struct {
	name string
	ops  []Op
}

// NewSequence copies ops into a new sequence and validates it.
func NewSequence(name string, ops []Op) (*Sequence, error) {
	seq := &Sequence{name: name, ops: slices.Clone(ops)}
	for i := range seq.ops {
		seq.ops[i].Symbols = slices.Clone(seq.ops[i].Symbols)
	}
	if err := Validate(seq); err != nil {
		return nil, err
	}
	return seq, nil
}

func (s *Sequence) Name() string {
	return s.name
}

func (s *Sequence) Len() int {
	return len(s.ops)
}

// At returns the op at cursor i. The op must not be modified.
func (s *Sequence) At(i int) *Op {
	return &s.ops[i]
}

// Ops returns a copy of the ops.
func (s *Sequence) Ops() []Op {
	return slices.Clone(s.ops)
}

// Size is the stride of one value described by the sequence: the size of
// its first op.
func (s *Sequence) Size() uint32 {
	if len(s.ops) == 0 {
		return 0
	}
	return s.ops[0].Size
}

// Align is the largest natural alignment of any value in the sequence.
func (s *Sequence) Align() uint32 {
	align := uint32(1)
	for i := range s.ops {
		if a := s.ops[i].align(); a > align {
			align = a
		}
	}
	return align
}

func (op *Op) align() uint32 {
	switch op.Kind {
	case Primitive:
		if op.Primitive == Word && op.Size != 0 {
			return op.Size
		}
		return op.Primitive.Align()
	case Enum, Bitmask:
		return op.Size
	case Vector, Map:
		return 4
	case FixedArray:
		if op.Elements != nil {
			return op.Elements.Align()
		}
	}
	return 1
}
