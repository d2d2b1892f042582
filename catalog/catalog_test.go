package catalog

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/wippyai/metaprint/errors"
	"github.com/wippyai/metaprint/memory"
	"github.com/wippyai/metaprint/ops"
	"github.com/wippyai/metaprint/render"
)

const inventoryTOML = `
[[type]]
name = "Inventory"
layout = "natural"
op = [
    { kind = "push" },
    { kind = "primitive", primitive = "entity", name = "owner" },
    { kind = "vector", name = "items", elements = "Item" },
    { kind = "pop" },
]

[[type]]
name = "Item"
layout = "natural"
op = [
    { kind = "push" },
    { kind = "primitive", primitive = "u32", name = "id" },
    { kind = "primitive", primitive = "u16", name = "qty" },
    { kind = "pop" },
]

[[entity]]
id = 42
label = "Foo"

[[select]]
type = "Inventory"
labels = ["chest"]
`

func mustParse(t *testing.T, doc string) *Catalog {
	t.Helper()
	c, err := Parse([]byte(doc), "")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return c
}

func TestParseNaturalLayout(t *testing.T) {
	c := mustParse(t, inventoryTOML)

	item := ops.NewBuilder("Item").
		Push("").
		Field("id", ops.U32).
		Field("qty", ops.U16).
		Pop().
		MustBuild()
	want := ops.NewBuilder("Inventory").
		Push("").
		Field("owner", ops.Entity).
		Vector("items", item).
		Pop().
		MustBuild()

	got, ok := c.LookupSequence("Inventory")
	if !ok {
		t.Fatal("Inventory not found")
	}
	if !reflect.DeepEqual(got.Ops(), want.Ops()) {
		t.Errorf("ops differ:\ngot  %+v\nwant %+v", got.Ops(), want.Ops())
	}
	if got.Size() != 16 {
		t.Errorf("Size = %d, want 16", got.Size())
	}

	if names := c.Types(); !reflect.DeepEqual(names, []string{"Inventory", "Item"}) {
		t.Errorf("Types = %v", names)
	}
	if label, ok := c.ResolveLabel(42); !ok || label != "Foo" {
		t.Errorf("ResolveLabel(42) = %q, %v", label, ok)
	}
	if _, ok := c.ResolveLabel(43); ok {
		t.Error("ResolveLabel(43) should miss")
	}
	if _, ok := c.LookupSequence("Velocity"); ok {
		t.Error("LookupSequence(Velocity) should miss")
	}
}

func TestParseExplicitLayout(t *testing.T) {
	c := mustParse(t, `
[[type]]
name = "Task"

[[type.op]]
kind = "push"
size = 24

[[type.op]]
kind = "enum"
name = "state"
symbols = [
    { name = "Idle", value = 0 },
    { name = "Failed", value = -1 },
]

[[type.op]]
kind = "bitmask"
name = "flags"
offset = 4
size = 1
symbols = [{ name = "Urgent", value = 1 }]

[[type.op]]
kind = "primitive"
primitive = "string"
name = "title"
offset = 8

[[type.op]]
kind = "array"
name = "ids"
offset = 16
length = 2
elements = "Id"

[[type.op]]
kind = "pop"

[[type]]
name = "Id"
op = [{ kind = "primitive", primitive = "u32" }]
`)

	seq, ok := c.LookupSequence("Task")
	if !ok {
		t.Fatal("Task not found")
	}

	tests := []struct {
		i      int
		kind   ops.Kind
		offset uint32
		size   uint32
	}{
		{0, ops.PushStruct, 0, 24},
		{1, ops.Enum, 0, 4},
		{2, ops.Bitmask, 4, 1},
		{3, ops.Primitive, 8, 8},
		{4, ops.FixedArray, 16, 8},
		{5, ops.PopStruct, 0, 0},
	}
	for _, tc := range tests {
		op := seq.At(tc.i)
		if op.Kind != tc.kind || op.Offset != tc.offset || op.Size != tc.size {
			t.Errorf("op %d = {%s off=%d size=%d}, want {%s off=%d size=%d}",
				tc.i, op.Kind, op.Offset, op.Size, tc.kind, tc.offset, tc.size)
		}
	}

	if name, ok := seq.At(1).SymbolName(^uint64(0)); !ok || name != "Failed" {
		t.Errorf("negative symbol = %q, %v", name, ok)
	}
	if seq.At(4).Elements == nil || seq.At(4).Elements.Name() != "Id" {
		t.Error("array elements not resolved")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want *errors.Error
		has  string
	}{
		{
			name: "malformed toml",
			doc:  "[[type]\n",
			want: &errors.Error{Phase: errors.PhaseParse, Kind: errors.KindInvalidData},
		},
		{
			name: "unknown key",
			doc:  "[[type]]\nname = \"A\"\n[[type.op]]\nkind = \"primitive\"\nprimtive = \"u8\"\n",
			want: &errors.Error{Phase: errors.PhaseParse, Kind: errors.KindInvalidInput},
			has:  "primtive",
		},
		{
			name: "unknown kind",
			doc:  "[[type]]\nname = \"A\"\nop = [{ kind = \"union\" }]\n",
			want: &errors.Error{Phase: errors.PhaseParse, Kind: errors.KindInvalidInput},
			has:  "union",
		},
		{
			name: "unknown primitive",
			doc:  "[[type]]\nname = \"A\"\nop = [{ kind = \"primitive\", primitive = \"u128\" }]\n",
			want: &errors.Error{Phase: errors.PhaseParse, Kind: errors.KindInvalidInput},
			has:  "u128",
		},
		{
			name: "unknown layout",
			doc:  "[[type]]\nname = \"A\"\nlayout = \"packed\"\nop = [{ kind = \"primitive\", primitive = \"u8\" }]\n",
			want: &errors.Error{Phase: errors.PhaseParse, Kind: errors.KindInvalidInput},
			has:  "packed",
		},
		{
			name: "duplicate type",
			doc: "[[type]]\nname = \"A\"\nop = [{ kind = \"primitive\", primitive = \"u8\" }]\n" +
				"[[type]]\nname = \"A\"\nop = [{ kind = \"primitive\", primitive = \"u8\" }]\n",
			want: &errors.Error{Phase: errors.PhaseParse, Kind: errors.KindInvalidInput},
		},
		{
			name: "duplicate entity",
			doc:  "[[entity]]\nid = 1\nlabel = \"a\"\n[[entity]]\nid = 1\nlabel = \"b\"\n",
			want: &errors.Error{Phase: errors.PhaseParse, Kind: errors.KindInvalidInput},
		},
		{
			name: "missing element type",
			doc:  "[[type]]\nname = \"A\"\nop = [{ kind = \"vector\", name = \"xs\", elements = \"B\" }]\n",
			want: &errors.Error{Phase: errors.PhaseLoad, Kind: errors.KindNotFound},
			has:  "xs",
		},
		{
			name: "vector without elements",
			doc:  "[[type]]\nname = \"A\"\nop = [{ kind = \"vector\" }]\n",
			want: &errors.Error{Phase: errors.PhaseParse, Kind: errors.KindInvalidInput},
		},
		{
			name: "element cycle",
			doc: "[[type]]\nname = \"A\"\nop = [{ kind = \"vector\", elements = \"B\" }]\n" +
				"[[type]]\nname = \"B\"\nop = [{ kind = \"vector\", elements = \"A\" }]\n",
			want: &errors.Error{Phase: errors.PhaseValidate, Kind: errors.KindCycle},
			has:  "A -> B -> A",
		},
		{
			name: "unbalanced explicit",
			doc:  "[[type]]\nname = \"A\"\nop = [{ kind = \"push\", size = 1 }, { kind = \"primitive\", primitive = \"u8\" }]\n",
			want: &errors.Error{Phase: errors.PhaseValidate, Kind: errors.KindUnbalanced},
		},
		{
			name: "offset in natural layout",
			doc:  "[[type]]\nname = \"A\"\nlayout = \"natural\"\nop = [{ kind = \"primitive\", primitive = \"u8\", offset = 4 }]\n",
			want: &errors.Error{Phase: errors.PhaseParse, Kind: errors.KindInvalidInput},
		},
		{
			name: "image and wasm",
			doc:  "image = \"a.bin\"\nwasm = \"a.wasm\"\n",
			want: &errors.Error{Phase: errors.PhaseParse, Kind: errors.KindInvalidInput},
		},
		{
			name: "select without type",
			doc:  "[[select]]\ncount = 1\n",
			want: &errors.Error{Phase: errors.PhaseParse, Kind: errors.KindInvalidInput},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc), "")
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want [%s] %s", err, tc.want.Phase, tc.want.Kind)
			}
			if tc.has != "" && !strings.Contains(err.Error(), tc.has) {
				t.Errorf("error %q does not mention %q", err, tc.has)
			}
		})
	}
}

func TestSelections(t *testing.T) {
	c := mustParse(t, `
[[select]]
type = "Position"
base = 0x100
count = 2
stride = 16
labels = ["a", "b"]

[[select]]
type = "Velocity"

[[select.instance]]
label = "v"
addr = 0x40

[[select]]
type = "Position"
base = 0x200
`)

	sels := c.Selections()
	if len(sels) != 3 {
		t.Fatalf("len = %d, want 3", len(sels))
	}
	want := render.Selection{Type: "Position", Base: 0x100, Count: 2, Stride: 16, Labels: []string{"a", "b"}}
	if !reflect.DeepEqual(sels[0], want) {
		t.Errorf("selection 0 = %+v, want %+v", sels[0], want)
	}
	if got := sels[1].Instances; len(got) != 1 || got[0] != (render.Instance{Label: "v", Addr: 0x40}) {
		t.Errorf("instances = %+v", got)
	}
	if got := c.SelectionsFor("Position"); len(got) != 2 || got[1].Base != 0x200 {
		t.Errorf("SelectionsFor = %+v", got)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "world.toml")
	doc := "image = \"world.bin\"\nindent = 2\nflag-separator = \" | \"\n" + inventoryTOML
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := c.ImagePath(), filepath.Join(dir, "world.bin"); got != want {
		t.Errorf("ImagePath = %q, want %q", got, want)
	}
	if c.WasmPath() != "" {
		t.Errorf("WasmPath = %q, want empty", c.WasmPath())
	}
	opts := c.Options()
	if opts.IndentWidth != 2 || opts.FlagSeparator != " | " {
		t.Errorf("Options = %+v", opts)
	}

	_, err = Load(filepath.Join(dir, "missing.toml"))
	if !errors.Is(err, &errors.Error{Phase: errors.PhaseLoad, Kind: errors.KindInvalidData}) {
		t.Errorf("err = %v, want load error", err)
	}
}

func TestCatalogRendersImage(t *testing.T) {
	c := mustParse(t, inventoryTOML)

	img := make([]byte, 0x60)
	img[0] = 42                 // owner
	img[8], img[12] = 0x40, 1   // items ptr, len
	img[0x40], img[0x44] = 7, 3 // id, qty

	var buf bytes.Buffer
	r := render.New(c, c, c.Options())
	if err := r.RenderAll(&buf, memory.NewBytes(img), c.Selections()); err != nil {
		t.Fatal(err)
	}

	want := strings.Join([]string{
		"chest: {",
		"    owner: Foo",
		"    items: [",
		"        {",
		"            id: 7",
		"            qty: 3",
		"        }",
		"    ]",
		"}",
	}, "\n") + "\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}
