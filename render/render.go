package render

import (
	"bufio"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/wippyai/metaprint"
	"github.com/wippyai/metaprint/errors"
	"github.com/wippyai/metaprint/internal/abi"
	"github.com/wippyai/metaprint/ops"
)

// SequenceSource looks up the operation sequence registered for a type.
type SequenceSource interface {
	LookupSequence(typeName string) (*ops.Sequence, bool)
}

// LabelResolver maps an entity id to its display label.
type LabelResolver interface {
	ResolveLabel(id uint64) (string, bool)
}

// Sequences is a SequenceSource backed by a map.
type Sequences map[string]*ops.Sequence

func (s Sequences) LookupSequence(typeName string) (*ops.Sequence, bool) {
	seq, ok := s[typeName]
	return seq, ok && seq != nil
}

// Labels is a LabelResolver backed by a map.
type Labels map[uint64]string

func (l Labels) ResolveLabel(id uint64) (string, bool) {
	label, ok := l[id]
	return label, ok
}

// Instance is one value to render.
type Instance struct {
	Label string
	Addr  uint32
}

// Selection is a homogeneous batch of values of one type.
//
// Explicit Instances take precedence. Otherwise Count values are laid out
// contiguously from Base, Stride bytes apart (the sequence size when zero),
// and Labels name them in order. A Count below one selects a single value.
type Selection struct {
	Type      string
	Instances []Instance
	Labels    []string
	Count     int
	Base      uint32
	Stride    uint32
}

// Resolve expands the selection into instances for seq.
func (s Selection) Resolve(seq *ops.Sequence) ([]Instance, error) {
	if len(s.Instances) > 0 {
		return s.Instances, nil
	}

	count := max(s.Count, 1)
	stride := s.Stride
	if stride == 0 {
		stride = seq.Size()
	}

	out := make([]Instance, 0, count)
	for i := 0; i < count; i++ {
		addr, ok := abi.ElementAddr(s.Base, uint32(i), stride)
		if !ok {
			return nil, errors.New(errors.PhaseRender, errors.KindOverflow).
				Type(s.Type).
				Detail("instance %d at base 0x%x stride %d overflows", i, s.Base, stride).
				Build()
		}
		inst := Instance{Addr: addr}
		if i < len(s.Labels) {
			inst.Label = s.Labels[i]
		}
		out = append(out, inst)
	}
	return out, nil
}

// Renderer renders values described by operation sequences.
type Renderer struct {
	sequences SequenceSource
	labels    LabelResolver
	options   Options
}

// New creates a renderer. Either collaborator may be nil: without
// sequences every lookup misses, without labels entities render as ids.
func New(sequences SequenceSource, labels LabelResolver, opts Options) *Renderer {
	return &Renderer{
		sequences: sequences,
		labels:    labels,
		options:   opts.normalize(),
	}
}

// NewWithDefaults creates a renderer with DefaultOptions.
func NewWithDefaults(sequences SequenceSource, labels LabelResolver) *Renderer {
	return New(sequences, labels, DefaultOptions())
}

// Options returns the configuration.
func (r *Renderer) Options() Options {
	return r.options
}

// Render writes every instance of sel. A type without a sequence produces a
// single diagnostic line and no error.
func (r *Renderer) Render(w io.Writer, mem metaprint.Memory, sel Selection) error {
	bw := bufio.NewWriter(w)

	var seq *ops.Sequence
	ok := false
	if r.sequences != nil {
		seq, ok = r.sequences.LookupSequence(sel.Type)
	}
	if !ok {
		Logger().Warn("no operation sequence", zap.String("type", sel.Type))
		fmt.Fprintf(bw, "no operation sequence for type %s\n", sel.Type)
		return bw.Flush()
	}

	instances, err := sel.Resolve(seq)
	if err != nil {
		return err
	}

	Logger().Debug("render batch",
		zap.String("type", sel.Type),
		zap.Int("instances", len(instances)),
		zap.Int("ops", seq.Len()))

	p := r.newPrinter(bw, mem)
	for _, inst := range instances {
		if inst.Label != "" {
			bw.WriteString(inst.Label)
			bw.WriteString(": ")
		}
		if err := p.value(inst.Addr, seq); err != nil {
			bw.Flush()
			return err
		}
	}
	return bw.Flush()
}

// RenderAll renders each selection in order, stopping at the first error.
func (r *Renderer) RenderAll(w io.Writer, mem metaprint.Memory, sels []Selection) error {
	for _, sel := range sels {
		if err := r.Render(w, mem, sel); err != nil {
			return err
		}
	}
	return nil
}

// RenderValue writes the single value at addr described by seq.
func (r *Renderer) RenderValue(w io.Writer, mem metaprint.Memory, addr uint32, seq *ops.Sequence) error {
	if seq == nil {
		return errors.InvalidInput(errors.PhaseRender, "nil sequence")
	}
	bw := bufio.NewWriter(w)
	err := r.newPrinter(bw, mem).value(addr, seq)
	if ferr := bw.Flush(); err == nil {
		err = ferr
	}
	return err
}

func (r *Renderer) newPrinter(w *bufio.Writer, mem metaprint.Memory) *printer {
	return &printer{
		w:       w,
		mem:     mem,
		labels:  r.labels,
		options: r.options,
	}
}
