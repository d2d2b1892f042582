package render

import (
	"bufio"
	"bytes"
	"math"
	"testing"

	"github.com/wippyai/metaprint/errors"
	"github.com/wippyai/metaprint/ops"
)

func positionSeq() *ops.Sequence {
	return ops.NewBuilder("Position").
		Push("").
		Field("x", ops.F32).
		Field("y", ops.F32).
		Pop().
		MustBuild()
}

func TestRenderSelection(t *testing.T) {
	seqs := Sequences{"Position": positionSeq()}

	mem := newTestMem(t, 32)
	mem.mustWriteF32(0, 1)
	mem.mustWriteF32(4, 2)
	mem.mustWriteF32(8, 3)
	mem.mustWriteF32(12, 4)

	t.Run("contiguous", func(t *testing.T) {
		var buf bytes.Buffer
		err := NewWithDefaults(seqs, nil).Render(&buf, mem, Selection{
			Type:   "Position",
			Count:  2,
			Labels: []string{"e1", "e2"},
		})
		if err != nil {
			t.Fatal(err)
		}
		want := lines(
			"e1: {",
			"    x: 1.000000",
			"    y: 2.000000",
			"}",
			"e2: {",
			"    x: 3.000000",
			"    y: 4.000000",
			"}",
		)
		if got := buf.String(); got != want {
			t.Errorf("got:\n%s\nwant:\n%s", got, want)
		}
	})

	t.Run("explicit instances", func(t *testing.T) {
		var buf bytes.Buffer
		err := NewWithDefaults(seqs, nil).Render(&buf, mem, Selection{
			Type:      "Position",
			Instances: []Instance{{Label: "second", Addr: 8}, {Addr: 0}},
		})
		if err != nil {
			t.Fatal(err)
		}
		want := lines(
			"second: {",
			"    x: 3.000000",
			"    y: 4.000000",
			"}",
			"{",
			"    x: 1.000000",
			"    y: 2.000000",
			"}",
		)
		if got := buf.String(); got != want {
			t.Errorf("got:\n%s\nwant:\n%s", got, want)
		}
	})

	t.Run("count zero renders one", func(t *testing.T) {
		var buf bytes.Buffer
		if err := NewWithDefaults(seqs, nil).Render(&buf, mem, Selection{Type: "Position", Base: 8}); err != nil {
			t.Fatal(err)
		}
		want := lines("{", "    x: 3.000000", "    y: 4.000000", "}")
		if got := buf.String(); got != want {
			t.Errorf("got:\n%s\nwant:\n%s", got, want)
		}
	})

	t.Run("error keeps earlier output", func(t *testing.T) {
		var buf bytes.Buffer
		err := NewWithDefaults(seqs, nil).Render(&buf, mem, Selection{Type: "Position", Base: 16, Count: 3})
		if !errors.Is(err, &errors.Error{Phase: errors.PhaseRender, Kind: errors.KindOutOfBounds}) {
			t.Fatalf("err = %v, want out of bounds", err)
		}
		if !bytes.HasPrefix(buf.Bytes(), []byte("{\n    x: 0.000000\n")) {
			t.Errorf("partial output missing, got %q", buf.String())
		}
	})
}

func TestRenderMissingType(t *testing.T) {
	seqs := Sequences{"Position": positionSeq()}
	mem := newTestMem(t, 8)
	mem.mustWriteF32(0, 5)

	var buf bytes.Buffer
	err := NewWithDefaults(seqs, nil).RenderAll(&buf, mem, []Selection{
		{Type: "Velocity"},
		{Type: "Position"},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := lines(
		"no operation sequence for type Velocity",
		"{",
		"    x: 5.000000",
		"    y: 0.000000",
		"}",
	)
	if got := buf.String(); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderNilSource(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWithDefaults(nil, nil).Render(&buf, newTestMem(t, 4), Selection{Type: "T"}); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "no operation sequence for type T\n" {
		t.Errorf("got %q", got)
	}
}

func TestSelectionResolve(t *testing.T) {
	seq := positionSeq()

	t.Run("default stride is sequence size", func(t *testing.T) {
		got, err := Selection{Base: 0x100, Count: 3}.Resolve(seq)
		if err != nil {
			t.Fatal(err)
		}
		want := []uint32{0x100, 0x108, 0x110}
		if len(got) != len(want) {
			t.Fatalf("len = %d, want %d", len(got), len(want))
		}
		for i, inst := range got {
			if inst.Addr != want[i] {
				t.Errorf("instance %d addr = 0x%x, want 0x%x", i, inst.Addr, want[i])
			}
		}
	})

	t.Run("explicit stride and short labels", func(t *testing.T) {
		got, err := Selection{Count: 2, Stride: 32, Labels: []string{"a"}}.Resolve(seq)
		if err != nil {
			t.Fatal(err)
		}
		if got[1].Addr != 32 {
			t.Errorf("addr = %d, want 32", got[1].Addr)
		}
		if got[0].Label != "a" || got[1].Label != "" {
			t.Errorf("labels = %q, %q", got[0].Label, got[1].Label)
		}
	})

	t.Run("overflow", func(t *testing.T) {
		_, err := Selection{Type: "Position", Base: math.MaxUint32 - 4, Count: 2}.Resolve(seq)
		var e *errors.Error
		if !errors.As(err, &e) || e.Kind != errors.KindOverflow || e.Type != "Position" {
			t.Errorf("err = %v, want overflow for Position", err)
		}
	})
}

func TestWalkCursor(t *testing.T) {
	r := NewWithDefaults(nil, nil)

	t.Run("primitives only consume the sequence", func(t *testing.T) {
		seq, err := ops.NewSequence("Flat", []ops.Op{
			{Kind: ops.Primitive, Primitive: ops.U8, Name: "a", Size: 1, Count: 1},
			{Kind: ops.Primitive, Primitive: ops.U8, Name: "b", Offset: 1, Size: 1, Count: 1},
		})
		if err != nil {
			t.Fatal(err)
		}
		var buf bytes.Buffer
		p := r.newPrinter(bufio.NewWriter(&buf), newTestMem(t, 2))
		end, err := p.walk(0, seq, 0, 0, nil)
		if err != nil {
			t.Fatal(err)
		}
		if end != seq.Len() {
			t.Errorf("cursor = %d, want %d", end, seq.Len())
		}
	})

	t.Run("push advances past its pop", func(t *testing.T) {
		seq := ops.NewBuilder("Nested").
			Push("").
			Push("inner").
			Field("x", ops.U8).
			Pop().
			Field("y", ops.U8).
			Pop().
			MustBuild()

		var buf bytes.Buffer
		p := r.newPrinter(bufio.NewWriter(&buf), newTestMem(t, 4))
		end, err := p.walkOp(0, seq, 1, 1, nil)
		if err != nil {
			t.Fatal(err)
		}
		if end <= 1 || seq.At(end).Kind != ops.PopStruct {
			t.Errorf("cursor = %d, want index of the pop closing inner", end)
		}
		if seq.At(end+1).Name != "y" {
			t.Errorf("op after cursor = %q, want y", seq.At(end+1).Name)
		}
	})

	t.Run("stops at enclosing pop", func(t *testing.T) {
		seq := ops.NewBuilder("S").Push("").Field("x", ops.U8).Pop().MustBuild()
		var buf bytes.Buffer
		p := r.newPrinter(bufio.NewWriter(&buf), newTestMem(t, 1))
		end, err := p.walk(0, seq, 1, 1, nil)
		if err != nil {
			t.Fatal(err)
		}
		if end != 2 {
			t.Errorf("cursor = %d, want 2", end)
		}
	})
}

func TestRenderUnbalancedStruct(t *testing.T) {
	seq, err := ops.NewSequence("Open", []ops.Op{
		{Kind: ops.PushStruct, Size: 1, Count: 1},
		{Kind: ops.Primitive, Primitive: ops.U8, Name: "a", Size: 1, Count: 1},
		{Kind: ops.PopStruct},
	})
	if err != nil {
		t.Fatal(err)
	}

	// A structure whose body runs off the end of the sequence.
	var buf bytes.Buffer
	p := NewWithDefaults(nil, nil).newPrinter(bufio.NewWriter(&buf), newTestMem(t, 1))
	_, err = p.structure(0, seq, seq.Len(), 0, nil)
	if !errors.Is(err, &errors.Error{Phase: errors.PhaseRender, Kind: errors.KindUnbalanced}) {
		t.Errorf("err = %v, want unbalanced", err)
	}
}
