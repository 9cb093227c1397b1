// Package pipeline runs the document compilation stages end to end:
// paragraph extraction, reference numbering, block parsing, normalization,
// enrichment, source attachment and markdown projection.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/api/docs/v1"

	"github.com/rgonek/docblocks/archie"
	"github.com/rgonek/docblocks/blocks"
	"github.com/rgonek/docblocks/markdown"
	"github.com/rgonek/docblocks/paragraph"
	"github.com/rgonek/docblocks/raw"
	"github.com/rgonek/docblocks/refs"
	"github.com/rgonek/docblocks/segment"
	"github.com/rgonek/docblocks/span"
)

// ErrInvalidDocument is returned for a nil document or one without a body.
var ErrInvalidDocument = paragraph.ErrInvalidDocument

// Path selects the parser that turns paragraphs into a raw block tree.
type Path string

const (
	// PathParagraph segments paragraphs directly.
	PathParagraph Path = "paragraph"
	// PathArchie serializes paragraphs to archie text and parses the lines.
	PathArchie Path = "archie"
)

// Parser turns extracted paragraphs into a raw block tree.
type Parser interface {
	Parse(paragraphs []paragraph.Paragraph) raw.Document
}

// ParserFor returns the parser for path. An empty path selects PathParagraph.
func ParserFor(path Path) (Parser, error) {
	switch Path(strings.ToLower(string(path))) {
	case "", PathParagraph:
		return segment.Segmenter{}, nil
	case PathArchie:
		return archie.Legacy{}, nil
	default:
		return nil, fmt.Errorf("unknown path %q (allowed: paragraph, archie)", path)
	}
}

// Options configures a pipeline run.
type Options struct {
	Path         Path
	DocumentType string
	// Enrichers override the enricher strategy of DocumentType.
	Enrichers blocks.EnricherTable
	Markdown  markdown.Config
	// Logger receives per-stage debug events. Nil discards them.
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Output holds every intermediate product of a run.
type Output struct {
	Paragraphs []paragraph.Paragraph
	Refs       *refs.Table
	Unresolved []refs.InlineRef
	Raw        raw.Document
	Blocks     blocks.Document
	Markdown   markdown.Result
	// Diagnostics lists every parse error and warning in the block tree.
	Diagnostics []blocks.Diagnostic
}

// Run compiles a Google Docs document.
func Run(ctx context.Context, doc *docs.Document, opts Options) (Output, error) {
	start := time.Now()
	extracted, err := paragraph.Extract(doc)
	if err != nil {
		return Output{}, fmt.Errorf("extract paragraphs: %w", err)
	}
	opts.logger().Debug("stage done",
		"stage", "extract",
		"paragraphs", len(extracted.Paragraphs),
		"footnotes", len(extracted.Footnotes),
		"duration", time.Since(start))

	return RunParagraphs(ctx, extracted.Paragraphs, extracted.Footnotes, opts)
}

// RunParagraphs compiles already extracted paragraphs.
func RunParagraphs(ctx context.Context, paragraphs []paragraph.Paragraph, footnotes map[string][]span.Span, opts Options) (Output, error) {
	parser, err := ParserFor(opts.Path)
	if err != nil {
		return Output{}, err
	}
	conv, err := markdown.New(opts.Markdown)
	if err != nil {
		return Output{}, fmt.Errorf("markdown config: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return Output{}, err
	}

	log := opts.logger()
	stage := func(name string, start time.Time, args ...any) {
		log.Debug("stage done", append([]any{"stage", name, "duration", time.Since(start)}, args...)...)
	}

	start := time.Now()
	extraction := refs.Extract(paragraphs, footnotes)
	stage("refs", start, "refs", extraction.Table.Len(), "unresolved", len(extraction.Unresolved))

	start = time.Now()
	parsed := parser.Parse(extraction.Paragraphs)
	stage("parse", start, "path", pathName(opts.Path), "items", len(parsed.Root.List(raw.KeyBody)))

	start = time.Now()
	normalized := raw.Normalize(parsed, extraction.Table)
	stage("normalize", start)

	start = time.Now()
	builder := blocks.NewBuilder(
		blocks.WithDocumentType(opts.DocumentType),
		blocks.WithEnrichers(opts.Enrichers),
	)
	built := blocks.AttachSourceRanges(builder.Build(normalized), normalized.Ranges)
	stage("build", start, "blocks", len(built.Blocks))

	start = time.Now()
	md, err := conv.RenderDocumentWithContext(ctx, built)
	if err != nil {
		return Output{}, fmt.Errorf("render markdown: %w", err)
	}
	stage("render", start, "bytes", len(md.Markdown), "warnings", len(md.Warnings))

	out := Output{
		Paragraphs:  extraction.Paragraphs,
		Refs:        extraction.Table,
		Unresolved:  extraction.Unresolved,
		Raw:         normalized,
		Blocks:      built,
		Markdown:    md,
		Diagnostics: blocks.Diagnostics(built.Blocks),
	}
	if n := len(out.Diagnostics); n > 0 {
		log.Debug("document diagnostics", "count", n, "errors", countErrors(out.Diagnostics))
	}
	return out, nil
}

func pathName(p Path) string {
	if p == "" {
		return string(PathParagraph)
	}
	return string(p)
}

func countErrors(diags []blocks.Diagnostic) int {
	n := 0
	for _, d := range diags {
		if !d.IsWarning {
			n++
		}
	}
	return n
}
