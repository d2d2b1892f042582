package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/metaprint"
	"github.com/wippyai/metaprint/catalog"
	"github.com/wippyai/metaprint/memory"
	"github.com/wippyai/metaprint/render"
)

func main() {
	var (
		catalogFile = flag.String("catalog", "", "Path to TOML catalog")
		imageFile   = flag.String("image", "", "Raw memory image (overrides the catalog)")
		wasmFile    = flag.String("wasm", "", "Wasm module whose memory holds the values (overrides the catalog)")
		typeName    = flag.String("type", "", "Render only selections of this type")
		base        = flag.Uint64("base", 0, "Address of the value when -type has no selection in the catalog")
		indent      = flag.Int("indent", -1, "Spaces per nesting level (default from the catalog)")
		verbose     = flag.Bool("v", false, "Debug logging to stderr")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *catalogFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: metaprint -catalog <file.toml> [-image file | -wasm module.wasm] [-type name [-base addr]]")
		fmt.Fprintln(os.Stderr, "       metaprint -catalog <file.toml> -i  (interactive mode)")
		os.Exit(1)
	}

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		render.SetLogger(logger.Named("render"))
		catalog.SetLogger(logger.Named("catalog"))
		memory.SetLogger(logger.Named("memory"))
	}

	cfg := config{
		catalog:  *catalogFile,
		image:    *imageFile,
		wasm:     *wasmFile,
		typeName: *typeName,
		base:     *base,
		indent:   *indent,
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode requires a terminal")
			os.Exit(1)
		}
		if err := runInteractive(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg, os.Stdout, term.IsTerminal(int(os.Stdout.Fd()))); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type config struct {
	catalog  string
	image    string
	wasm     string
	typeName string
	base     uint64
	indent   int
}

// session is an opened catalog together with the memory it describes.
type session struct {
	cat      *catalog.Catalog
	mem      metaprint.Memory
	renderer *render.Renderer
	source   string
	close    func(context.Context) error
}

func open(ctx context.Context, cfg config) (*session, error) {
	cat, err := catalog.Load(cfg.catalog)
	if err != nil {
		return nil, err
	}

	s := &session{cat: cat, close: func(context.Context) error { return nil }}

	imagePath, wasmPath := cfg.image, cfg.wasm
	if imagePath == "" && wasmPath == "" {
		imagePath, wasmPath = cat.ImagePath(), cat.WasmPath()
	}

	switch {
	case imagePath != "" && wasmPath != "":
		return nil, fmt.Errorf("-image and -wasm are mutually exclusive")
	case imagePath != "":
		img, err := memory.ReadFile(imagePath)
		if err != nil {
			return nil, err
		}
		s.mem, s.source = img, imagePath
	case wasmPath != "":
		data, err := os.ReadFile(wasmPath)
		if err != nil {
			return nil, fmt.Errorf("read file: %w", err)
		}
		img, err := memory.LoadModuleWithConfig(ctx, data, &memory.LoadConfig{ExportName: cat.MemoryExport()})
		if err != nil {
			return nil, err
		}
		s.mem, s.source, s.close = img.Memory(), wasmPath, img.Close
	default:
		return nil, fmt.Errorf("no memory image: set -image or -wasm, or image/wasm in %s", cfg.catalog)
	}

	opts := cat.Options()
	if cfg.indent >= 0 {
		opts.IndentWidth = cfg.indent
	}
	s.renderer = render.New(cat, cat, opts)
	return s, nil
}

// selections returns what to render: the catalog's selections, narrowed to
// one type when requested. A type with no declared selection is rendered
// once at base.
func (s *session) selections(cfg config) ([]render.Selection, error) {
	if cfg.typeName == "" {
		return s.cat.Selections(), nil
	}
	if sels := s.cat.SelectionsFor(cfg.typeName); len(sels) > 0 {
		return sels, nil
	}
	if cfg.base > uint64(^uint32(0)) {
		return nil, fmt.Errorf("base 0x%x exceeds the 32-bit address space", cfg.base)
	}
	return []render.Selection{{Type: cfg.typeName, Base: uint32(cfg.base)}}, nil
}

func run(cfg config, out io.Writer, styled bool) error {
	ctx := context.Background()

	s, err := open(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.close(ctx)

	sels, err := s.selections(cfg)
	if err != nil {
		return err
	}

	for _, sel := range sels {
		if styled {
			fmt.Fprintln(out, titleStyle.Render(sel.Type))
		}
		if err := s.renderer.Render(out, s.mem, sel); err != nil {
			return err
		}
	}
	return nil
}
