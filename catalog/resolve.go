package catalog

import (
	"github.com/wippyai/metaprint/errors"
	"github.com/wippyai/metaprint/internal/abi"
	"github.com/wippyai/metaprint/ops"
)

// Layout modes for a [[type]] table.
const (
	// LayoutExplicit takes offsets and sizes from the catalog as written.
	LayoutExplicit = "explicit"
	// LayoutNatural computes offsets and sizes with C struct alignment.
	LayoutNatural = "natural"
)

type resolveState uint8

const (
	unvisited resolveState = iota
	visiting
	done
)

// resolver builds sequences on demand so element references can point at
// types declared later in the file.
type resolver struct {
	entries map[string]*typeEntry
	state   map[string]resolveState
	out     map[string]*ops.Sequence
	stack   []string
}

func resolveTypes(types []typeEntry) (map[string]*ops.Sequence, error) {
	r := &resolver{
		entries: make(map[string]*typeEntry, len(types)),
		state:   make(map[string]resolveState, len(types)),
		out:     make(map[string]*ops.Sequence, len(types)),
	}
	for i := range types {
		t := &types[i]
		if t.Name == "" {
			return nil, errors.New(errors.PhaseParse, errors.KindInvalidInput).
				Value(i).
				Detail("type %d has no name", i).
				Build()
		}
		if _, dup := r.entries[t.Name]; dup {
			return nil, errors.New(errors.PhaseParse, errors.KindInvalidInput).
				Type(t.Name).
				Detail("declared more than once").
				Build()
		}
		r.entries[t.Name] = t
	}
	for i := range types {
		if _, err := r.sequence(types[i].Name); err != nil {
			return nil, err
		}
	}
	return r.out, nil
}

func (r *resolver) sequence(name string) (*ops.Sequence, error) {
	switch r.state[name] {
	case done:
		return r.out[name], nil
	case visiting:
		chain := []string{name}
		for i := len(r.stack) - 1; i >= 0; i-- {
			chain = append([]string{r.stack[i]}, chain...)
			if r.stack[i] == name {
				break
			}
		}
		e := errors.Cycle(chain)
		e.Type = name
		return nil, e
	}

	t, ok := r.entries[name]
	if !ok {
		return nil, errors.NotFound(errors.PhaseLoad, "element type", name)
	}

	r.state[name] = visiting
	r.stack = append(r.stack, name)

	var (
		seq *ops.Sequence
		err error
	)
	switch t.Layout {
	case "", LayoutExplicit:
		seq, err = r.explicit(t)
	case LayoutNatural:
		seq, err = r.natural(t)
	default:
		err = errors.New(errors.PhaseParse, errors.KindInvalidInput).
			Type(name).
			Detail("unknown layout %q", t.Layout).
			Build()
	}

	r.stack = r.stack[:len(r.stack)-1]
	if err != nil {
		return nil, err
	}
	r.state[name] = done
	r.out[name] = seq
	return seq, nil
}

// elements resolves the element sequence a Vector or FixedArray refers to.
func (r *resolver) elements(t *typeEntry, i int, o *opEntry) (*ops.Sequence, error) {
	if o.Elements == "" {
		return nil, opError(t, i, o, "%s requires elements", o.Kind)
	}
	seq, err := r.sequence(o.Elements)
	if err != nil {
		var e *errors.Error
		if errors.As(err, &e) && e.Kind == errors.KindNotFound {
			e.Type = t.Name
			e.Path = []string{o.Name}
		}
		return nil, err
	}
	return seq, nil
}

func (r *resolver) explicit(t *typeEntry) (*ops.Sequence, error) {
	out := make([]ops.Op, 0, len(t.Ops))
	for i := range t.Ops {
		o := &t.Ops[i]
		kind, ok := ops.ParseKind(o.Kind)
		if !ok {
			return nil, opError(t, i, o, "unknown kind %q", o.Kind)
		}

		op := ops.Op{
			Kind:    kind,
			Name:    o.Name,
			Offset:  o.Offset,
			Size:    o.Size,
			Count:   o.Count,
			Length:  o.Length,
			Symbols: symbols(o.Symbols),
		}

		switch kind {
		case ops.Primitive:
			p, err := primitive(t, i, o)
			if err != nil {
				return nil, err
			}
			op.Primitive = p
			if op.Size == 0 {
				op.Size = p.Size()
			}
		case ops.Enum, ops.Bitmask:
			if op.Size == 0 {
				op.Size = 4
			}
		case ops.Vector, ops.Map:
			if op.Size == 0 {
				op.Size = 8
			}
		}

		if kind == ops.Vector || kind == ops.FixedArray {
			elems, err := r.elements(t, i, o)
			if err != nil {
				return nil, err
			}
			op.Elements = elems
			if kind == ops.FixedArray && op.Size == 0 {
				size, ok := abi.SafeMulU32(elems.Size(), o.Length)
				if !ok {
					return nil, opError(t, i, o, "array of %d elements overflows", o.Length)
				}
				op.Size = size
			}
		}
		out = append(out, op)
	}
	return ops.NewSequence(t.Name, out)
}

func (r *resolver) natural(t *typeEntry) (*ops.Sequence, error) {
	b := ops.NewBuilder(t.Name)
	for i := range t.Ops {
		o := &t.Ops[i]
		kind, ok := ops.ParseKind(o.Kind)
		if !ok {
			return nil, opError(t, i, o, "unknown kind %q", o.Kind)
		}
		if o.Offset != 0 {
			return nil, opError(t, i, o, "offset is computed by the natural layout")
		}
		if o.Count > 1 && kind != ops.Primitive && kind != ops.PushStruct {
			return nil, opError(t, i, o, "count is only supported on primitive and push ops")
		}

		switch kind {
		case ops.Primitive:
			p, err := primitive(t, i, o)
			if err != nil {
				return nil, err
			}
			if p == ops.Word {
				size := o.Size
				if size == 0 {
					size = p.Size()
				}
				b.Word(o.Name, size)
			} else {
				b.Array(o.Name, p, max(o.Count, 1))
			}
		case ops.Enum:
			b.Enum(o.Name, sizeOr(o.Size, 4), symbols(o.Symbols)...)
		case ops.Bitmask:
			b.Bitmask(o.Name, sizeOr(o.Size, 4), symbols(o.Symbols)...)
		case ops.Vector, ops.FixedArray:
			elems, err := r.elements(t, i, o)
			if err != nil {
				return nil, err
			}
			if kind == ops.Vector {
				b.Vector(o.Name, elems)
			} else {
				b.FixedArray(o.Name, elems, o.Length)
			}
		case ops.Map:
			b.Map(o.Name)
		case ops.PushStruct:
			b.PushN(o.Name, max(o.Count, 1))
		case ops.PopStruct:
			b.Pop()
		case ops.NoOp:
			// Occupies no storage.
		}
	}
	return b.Build()
}

func primitive(t *typeEntry, i int, o *opEntry) (ops.PrimitiveKind, error) {
	p, ok := ops.ParsePrimitive(o.Primitive)
	if !ok {
		return 0, opError(t, i, o, "unknown primitive %q", o.Primitive)
	}
	return p, nil
}

func symbols(entries []symbolEntry) []ops.Symbol {
	if len(entries) == 0 {
		return nil
	}
	out := make([]ops.Symbol, len(entries))
	for i, s := range entries {
		out[i] = ops.Symbol{Name: s.Name, Value: uint64(s.Value)}
	}
	return out
}

func sizeOr(size, def uint32) uint32 {
	if size == 0 {
		return def
	}
	return size
}

func opError(t *typeEntry, i int, o *opEntry, format string, args ...any) error {
	b := errors.New(errors.PhaseParse, errors.KindInvalidInput).
		Type(t.Name).
		Value(i).
		Detail("op %d: "+format, append([]any{i}, args...)...)
	if o.Name != "" {
		b.Path(o.Name)
	}
	return b.Build()
}
