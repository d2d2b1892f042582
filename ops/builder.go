package ops

import (
	"fmt"

	"github.com/wippyai/metaprint/errors"
	"github.com/wippyai/metaprint/internal/abi"
)

// Builder assembles a sequence, laying fields out with natural alignment
// the same way a C compiler lays out a struct: each field is aligned to its
// own alignment and a structure's size is rounded up to its largest field
// alignment.
//
// Offsets are relative to the sequence base. A sequence without a
// top-level Push has the size of its first op, so element sequences for
// vectors of primitives are a single Field.
type Builder struct {
	err    error
	name   string
	ops    []Op
	frames []frame
}

type frame struct {
	push   int
	offset uint32
	align  uint32
	count  uint32
}

func NewBuilder(name string) *Builder {
	return &Builder{
		name:   name,
		frames: []frame{{push: -1, align: 1}},
	}
}

func (b *Builder) cur() *frame {
	return &b.frames[len(b.frames)-1]
}

// place reserves count values of size bytes at the given alignment in the
// current frame and returns their offset relative to the frame start.
func (b *Builder) place(size, align, count uint32) uint32 {
	f := b.cur()
	if align == 0 {
		align = 1
	}
	off := abi.AlignTo(f.offset, align)
	total, ok := abi.SafeMulU32(size, max(count, 1))
	if ok {
		f.offset, ok = abi.SafeAddU32(off, total)
	}
	if !ok {
		b.fail(fmt.Sprintf("layout of %q overflows", b.name))
	}
	f.align = max(f.align, align)
	return off
}

func (b *Builder) fail(detail string) {
	if b.err == nil {
		b.err = errors.New(errors.PhaseValidate, errors.KindInvalidInput).
			Type(b.name).
			Detail(detail).
			Build()
	}
}

func (b *Builder) add(op Op, align uint32) *Builder {
	op.Offset = b.place(op.Size, align, op.Count)
	b.ops = append(b.ops, op)
	return b
}

// Field appends a single primitive value.
func (b *Builder) Field(name string, kind PrimitiveKind) *Builder {
	return b.Array(name, kind, 1)
}

// Array appends count consecutive primitive values rendered as repeated
// fields.
func (b *Builder) Array(name string, kind PrimitiveKind, count uint32) *Builder {
	return b.add(Op{
		Kind:      Primitive,
		Primitive: kind,
		Name:      name,
		Size:      kind.Size(),
		Count:     count,
	}, kind.Align())
}

// Word appends a pointer sized word of the given width (4 or 8).
func (b *Builder) Word(name string, size uint32) *Builder {
	return b.add(Op{Kind: Primitive, Primitive: Word, Name: name, Size: size, Count: 1}, size)
}

// Enum appends an enumeration stored as a signed integer of size bytes.
func (b *Builder) Enum(name string, size uint32, symbols ...Symbol) *Builder {
	return b.add(Op{Kind: Enum, Name: name, Size: size, Count: 1, Symbols: symbols}, size)
}

// Bitmask appends a flag set stored as an unsigned integer of size bytes.
func (b *Builder) Bitmask(name string, size uint32, symbols ...Symbol) *Builder {
	return b.add(Op{Kind: Bitmask, Name: name, Size: size, Count: 1, Symbols: symbols}, size)
}

// Vector appends a (ptr u32, len u32) list header whose elements are
// described by elements.
func (b *Builder) Vector(name string, elements *Sequence) *Builder {
	return b.add(Op{Kind: Vector, Name: name, Size: 8, Count: 1, Elements: elements}, 4)
}

// FixedArray appends length elements stored inline.
func (b *Builder) FixedArray(name string, elements *Sequence, length uint32) *Builder {
	if elements == nil {
		b.fail(fmt.Sprintf("fixed array %q has no element sequence", name))
		return b
	}
	size, ok := abi.SafeMulU32(elements.Size(), length)
	if !ok {
		b.fail(fmt.Sprintf("fixed array %q overflows", name))
		return b
	}
	return b.add(Op{
		Kind:     FixedArray,
		Name:     name,
		Size:     size,
		Count:    1,
		Length:   length,
		Elements: elements,
	}, elements.Align())
}

// Map reserves a map header. Maps are not rendered.
func (b *Builder) Map(name string) *Builder {
	return b.add(Op{Kind: Map, Name: name, Size: 8, Count: 1}, 4)
}

// Push opens a nested structure.
func (b *Builder) Push(name string) *Builder {
	return b.PushN(name, 1)
}

// PushN opens a nested structure repeated count times.
func (b *Builder) PushN(name string, count uint32) *Builder {
	b.ops = append(b.ops, Op{Kind: PushStruct, Name: name, Count: count})
	b.frames = append(b.frames, frame{push: len(b.ops) - 1, align: 1, count: count})
	return b
}

// Pop closes the innermost structure, fixing its size and moving its
// fields to their final offsets.
func (b *Builder) Pop() *Builder {
	if len(b.frames) == 1 {
		b.fail(fmt.Sprintf("pop without push at op %d", len(b.ops)))
		return b
	}
	f := b.frames[len(b.frames)-1]
	b.frames = b.frames[:len(b.frames)-1]

	size := abi.AlignTo(f.offset, f.align)
	start := b.place(size, f.align, f.count)
	for i := f.push + 1; i < len(b.ops); i++ {
		if b.ops[i].Kind != PopStruct {
			b.ops[i].Offset += start
		}
	}
	b.ops[f.push].Offset = start
	b.ops[f.push].Size = size
	b.ops = append(b.ops, Op{Kind: PopStruct})
	return b
}

// Build validates and returns the sequence.
func (b *Builder) Build() (*Sequence, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.frames) > 1 {
		return nil, errors.Unbalanced(b.name, b.cur().push, "push without matching pop")
	}
	return NewSequence(b.name, b.ops)
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *Sequence {
	seq, err := b.Build()
	if err != nil {
		panic(err)
	}
	return seq
}
