package pipeline

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/docs/v1"

	"github.com/rgonek/docblocks/paragraph"
	"github.com/rgonek/docblocks/span"
)

// Input is a document already split into paragraphs.
type Input struct {
	Name string
	// DocumentType is used when Options.DocumentType is empty.
	DocumentType string
	Paragraphs   []paragraph.Paragraph
	Footnotes    map[string][]span.Span
}

// ExtractInput extracts the paragraphs of a Google Docs document.
func ExtractInput(doc *docs.Document) (Input, error) {
	extracted, err := paragraph.Extract(doc)
	if err != nil {
		return Input{}, fmt.Errorf("extract paragraphs: %w", err)
	}
	return Input{
		Name:       doc.Title,
		Paragraphs: extracted.Paragraphs,
		Footnotes:  extracted.Footnotes,
	}, nil
}

// Input returns the fixture as pipeline input.
func (f Fixture) Input() Input {
	paragraphs, footnotes := f.Extract()
	return Input{DocumentType: f.DocumentType, Paragraphs: paragraphs, Footnotes: footnotes}
}

func (in Input) options(opts Options) Options {
	if opts.DocumentType == "" {
		opts.DocumentType = in.DocumentType
	}
	return opts
}

// RunInput compiles one Input.
func RunInput(ctx context.Context, in Input, opts Options) (Output, error) {
	return RunParagraphs(ctx, in.Paragraphs, in.Footnotes, in.options(opts))
}

// CompareInput runs both parser paths over one Input.
func CompareInput(ctx context.Context, in Input, opts Options) (Parity, error) {
	return CompareParagraphs(ctx, in.Paragraphs, in.Footnotes, in.options(opts))
}

// CompareInputs is CompareAll for already extracted inputs.
func CompareInputs(ctx context.Context, inputs []Input, opts Options, workers int) []ParityResult {
	results := make([]ParityResult, len(inputs))
	forEach(ctx, len(inputs), workers, func(i int) {
		start := time.Now()
		p, err := CompareInput(ctx, inputs[i], opts)
		results[i] = ParityResult{Index: i, Parity: p, Err: err, Duration: time.Since(start)}
	}, func(i int, err error) {
		results[i] = ParityResult{Index: i, Err: err}
	})
	return results
}
