package catalog

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"

	"github.com/wippyai/metaprint/errors"
	"github.com/wippyai/metaprint/ops"
	"github.com/wippyai/metaprint/render"
)

var (
	_ render.SequenceSource = (*Catalog)(nil)
	_ render.LabelResolver  = (*Catalog)(nil)
)

// file mirrors the TOML document.
type file struct {
	Image        string        `toml:"image"`
	Wasm         string        `toml:"wasm"`
	MemoryExport string        `toml:"memory-export"`
	Indent       *int          `toml:"indent"`
	Separator    string        `toml:"flag-separator"`
	Types        []typeEntry   `toml:"type"`
	Entities     []entityEntry `toml:"entity"`
	Selections   []selectEntry `toml:"select"`
}

type typeEntry struct {
	Name   string    `toml:"name"`
	Layout string    `toml:"layout"`
	Ops    []opEntry `toml:"op"`
}

type opEntry struct {
	Kind      string        `toml:"kind"`
	Name      string        `toml:"name"`
	Primitive string        `toml:"primitive"`
	Elements  string        `toml:"elements"`
	Symbols   []symbolEntry `toml:"symbols"`
	Offset    uint32        `toml:"offset"`
	Size      uint32        `toml:"size"`
	Count     uint32        `toml:"count"`
	Length    uint32        `toml:"length"`
}

type symbolEntry struct {
	Name  string `toml:"name"`
	Value int64  `toml:"value"`
}

type entityEntry struct {
	Label string `toml:"label"`
	ID    uint64 `toml:"id"`
}

type selectEntry struct {
	Type      string          `toml:"type"`
	Labels    []string        `toml:"labels"`
	Instances []instanceEntry `toml:"instance"`
	Count     int             `toml:"count"`
	Base      uint32          `toml:"base"`
	Stride    uint32          `toml:"stride"`
}

type instanceEntry struct {
	Label string `toml:"label"`
	Addr  uint32 `toml:"addr"`
}

// Catalog holds the operation sequences, entity labels and selections
// declared in a TOML file. It is immutable after loading.
type Catalog struct {
	sequences  map[string]*ops.Sequence
	labels     render.Labels
	types      []string
	selections []render.Selection
	options    render.Options

	image        string
	wasm         string
	memoryExport string

	// Dir is the directory relative image paths are resolved against.
	Dir string
}

// Load reads and parses a catalog file. Image paths are resolved relative
// to the file's directory.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load("read catalog "+path, err)
	}

	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, errors.Load("resolve catalog directory "+path, err)
	}

	c, err := Parse(data, dir)
	if err != nil {
		return nil, err
	}

	Logger().Debug("catalog loaded",
		zap.String("path", path),
		zap.Int("types", len(c.types)),
		zap.Int("entities", len(c.labels)),
		zap.Int("selections", len(c.selections)))
	return c, nil
}

// Parse decodes a catalog document. dir is used to resolve relative image
// paths and may be empty.
func Parse(data []byte, dir string) (*Catalog, error) {
	var f file
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, errors.ParseFailed("catalog", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.PhaseParse, errors.KindInvalidInput).
			Detail("unknown keys: %s", strings.Join(keys, ", ")).
			Build()
	}
	if f.Image != "" && f.Wasm != "" {
		return nil, errors.InvalidInput(errors.PhaseParse, "image and wasm are mutually exclusive")
	}

	c := &Catalog{
		labels:       make(render.Labels, len(f.Entities)),
		image:        f.Image,
		wasm:         f.Wasm,
		memoryExport: f.MemoryExport,
		options:      render.DefaultOptions(),
		Dir:          dir,
	}
	if f.Indent != nil {
		if *f.Indent < 0 {
			return nil, errors.New(errors.PhaseParse, errors.KindInvalidInput).
				Value(*f.Indent).
				Detail("indent must not be negative").
				Build()
		}
		c.options.IndentWidth = *f.Indent
	}
	if f.Separator != "" {
		c.options.FlagSeparator = f.Separator
	}

	if c.sequences, err = resolveTypes(f.Types); err != nil {
		return nil, err
	}
	for _, t := range f.Types {
		c.types = append(c.types, t.Name)
	}

	for _, e := range f.Entities {
		if prev, dup := c.labels[e.ID]; dup {
			return nil, errors.New(errors.PhaseParse, errors.KindInvalidInput).
				Value(e.ID).
				Detail("entity %d labeled both %q and %q", e.ID, prev, e.Label).
				Build()
		}
		c.labels[e.ID] = e.Label
	}

	for i, s := range f.Selections {
		if s.Type == "" {
			return nil, errors.New(errors.PhaseParse, errors.KindInvalidInput).
				Value(i).
				Detail("select %d has no type", i).
				Build()
		}
		if s.Count < 0 {
			return nil, errors.New(errors.PhaseParse, errors.KindInvalidInput).
				Type(s.Type).
				Detail("select %d has negative count %d", i, s.Count).
				Build()
		}
		sel := render.Selection{
			Type:   s.Type,
			Labels: s.Labels,
			Count:  s.Count,
			Base:   s.Base,
			Stride: s.Stride,
		}
		for _, inst := range s.Instances {
			sel.Instances = append(sel.Instances, render.Instance{Label: inst.Label, Addr: inst.Addr})
		}
		c.selections = append(c.selections, sel)
	}

	return c, nil
}

// LookupSequence returns the sequence declared for typeName.
func (c *Catalog) LookupSequence(typeName string) (*ops.Sequence, bool) {
	seq, ok := c.sequences[typeName]
	return seq, ok
}

// ResolveLabel returns the label declared for an entity id.
func (c *Catalog) ResolveLabel(id uint64) (string, bool) {
	label, ok := c.labels[id]
	return label, ok
}

// Types returns the declared type names in declaration order.
func (c *Catalog) Types() []string {
	return slices.Clone(c.types)
}

// Selections returns the declared selections in order.
func (c *Catalog) Selections() []render.Selection {
	return slices.Clone(c.selections)
}

// SelectionsFor returns the selections of one type.
func (c *Catalog) SelectionsFor(typeName string) []render.Selection {
	var out []render.Selection
	for _, s := range c.selections {
		if s.Type == typeName {
			out = append(out, s)
		}
	}
	return out
}

// Options returns the render options the catalog configures, defaults
// filled in.
func (c *Catalog) Options() render.Options {
	return c.options
}

// ImagePath is the raw image file, or "" when none is declared.
func (c *Catalog) ImagePath() string {
	return c.resolve(c.image)
}

// WasmPath is the wasm module holding the image, or "" when none is
// declared.
func (c *Catalog) WasmPath() string {
	return c.resolve(c.wasm)
}

// MemoryExport names the wasm memory export to read, "" for the default.
func (c *Catalog) MemoryExport() string {
	return c.memoryExport
}

func (c *Catalog) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.Dir == "" {
		return p
	}
	return filepath.Join(c.Dir, p)
}
