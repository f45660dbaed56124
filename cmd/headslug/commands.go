package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/dgallion1/headslug/internal/parser"
	"github.com/dgallion1/headslug/internal/pipeline"
	"github.com/dgallion1/headslug/internal/slug"
	"github.com/dgallion1/headslug/internal/toc"
)

// CLI is the root command and its global flags.
type CLI struct {
	Verbose bool             `short:"v" help:"Enable debug logging"`
	Unsafe  bool             `help:"Pass raw HTML in Markdown through to the output"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Render  RenderCmd  `cmd:"" help:"Render a Markdown or HTML document with heading ids"`
	Outline OutlineCmd `cmd:"" help:"Print the table of contents of a document"`
	Slug    SlugCmd    `cmd:"" help:"Print the slug for each argument"`

	out io.Writer `kong:"-"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

func (c *CLI) stdout() io.Writer {
	if c.out != nil {
		return c.out
	}
	return os.Stdout
}

func (c *CLI) worker() *pipeline.Worker {
	return pipeline.NewWorker(parser.Options{UnsafeHTML: c.Unsafe, PDFFallbackPdftotext: true}, slog.Default(), nil, nil)
}

// process runs a file through the slug pipeline.
func (c *CLI) process(ctx context.Context, path string) (*pipeline.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return c.worker().Run(ctx, path, "", data, nil)
}

// RenderCmd writes a document as HTML with ids on its headings.
type RenderCmd struct {
	File   string `arg:"" type:"existingfile" help:"Markdown or HTML file"`
	Output string `short:"o" type:"path" help:"Write to this file instead of stdout"`
	Watch  bool   `short:"w" help:"Re-render whenever the file changes"`
}

func (r *RenderCmd) Run(root *CLI) error {
	if !r.Watch {
		return r.render(context.Background(), root)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := r.render(ctx, root); err != nil {
		slog.Warn("render failed", "file", r.File, "error", err)
	}
	return watchFile(ctx, r.File, func() {
		if err := r.render(ctx, root); err != nil {
			slog.Warn("render failed", "file", r.File, "error", err)
			return
		}
		slog.Info("re-rendered", "file", r.File)
	})
}

func (r *RenderCmd) render(ctx context.Context, root *CLI) error {
	res, err := root.process(ctx, r.File)
	if err != nil {
		return err
	}
	if res.HTML == "" && res.Format != parser.FormatMarkdown && res.Format != parser.FormatHTML {
		return fmt.Errorf("%s: %w", res.Format, parser.ErrNotRenderable)
	}
	if r.Output == "" {
		_, err := io.WriteString(root.stdout(), res.HTML)
		return err
	}
	if err := os.WriteFile(r.Output, []byte(res.HTML), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	slog.Debug("wrote output", "path", r.Output, "headings", len(res.Headings))
	return nil
}

// OutlineCmd prints a document's table of contents.
type OutlineCmd struct {
	File string `arg:"" type:"existingfile" help:"Document to outline (.md, .html, .docx, .pdf)"`
	JSON bool   `help:"Print the nested outline as JSON"`
}

func (o *OutlineCmd) Run(root *CLI) error {
	res, err := root.process(context.Background(), o.File)
	if err != nil {
		return err
	}
	if o.JSON {
		enc := json.NewEncoder(root.stdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res.TOC)
	}
	return writeOutline(root.stdout(), res.TOC, 0)
}

func writeOutline(w io.Writer, items []*toc.Item, depth int) error {
	for _, it := range items {
		if _, err := fmt.Fprintf(w, "%s- %s (#%s)\n", strings.Repeat("  ", depth), it.Text, it.Slug); err != nil {
			return err
		}
		if err := writeOutline(w, it.Children, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// SlugCmd prints slugs for its arguments. Arguments share one registry, so
// repeated text gets numbered like repeated headings do.
type SlugCmd struct {
	Text []string `arg:"" help:"Heading text to slug"`
}

func (s *SlugCmd) Run(root *CLI) error {
	reg := slug.NewRegistry()
	for _, t := range s.Text {
		if _, err := fmt.Fprintln(root.stdout(), reg.Slug(t)); err != nil {
			return err
		}
	}
	return nil
}
