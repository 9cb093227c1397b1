package pipeline

import (
	"context"
	"fmt"

	"github.com/google/go-cmp/cmp"
	"github.com/pmezard/go-difflib/difflib"
	"google.golang.org/api/docs/v1"

	"github.com/rgonek/docblocks/paragraph"
	"github.com/rgonek/docblocks/raw"
	"github.com/rgonek/docblocks/span"
)

// Parity is the outcome of running both parser paths over one document.
type Parity struct {
	// Equal reports byte-identical markdown and structurally equal raw trees.
	Equal bool
	// RawDiff is a cmp diff of the raw trees (-archie +paragraph).
	RawDiff string
	// MarkdownDiff is a unified diff of the markdown outputs.
	MarkdownDiff string
	Archie       Output
	Paragraph    Output
}

// Compare runs the archie and paragraph paths over doc and diffs the results.
// opts.Path is ignored.
func Compare(ctx context.Context, doc *docs.Document, opts Options) (Parity, error) {
	extracted, err := paragraph.Extract(doc)
	if err != nil {
		return Parity{}, fmt.Errorf("extract paragraphs: %w", err)
	}
	return CompareParagraphs(ctx, extracted.Paragraphs, extracted.Footnotes, opts)
}

// CompareParagraphs is Compare for already extracted paragraphs.
func CompareParagraphs(ctx context.Context, paragraphs []paragraph.Paragraph, footnotes map[string][]span.Span, opts Options) (Parity, error) {
	opts.Path = PathArchie
	legacy, err := RunParagraphs(ctx, paragraphs, footnotes, opts)
	if err != nil {
		return Parity{}, fmt.Errorf("archie path: %w", err)
	}
	opts.Path = PathParagraph
	current, err := RunParagraphs(ctx, paragraphs, footnotes, opts)
	if err != nil {
		return Parity{}, fmt.Errorf("paragraph path: %w", err)
	}

	return diffOutputs(legacy, current, opts)
}

func diffOutputs(legacy, current Output, opts Options) (Parity, error) {
	p := Parity{Archie: legacy, Paragraph: current}
	if !raw.Equal(legacy.Raw.Root, current.Raw.Root) {
		p.RawDiff = cmp.Diff(raw.ToAny(legacy.Raw.Root), raw.ToAny(current.Raw.Root))
	}
	if legacy.Markdown.Markdown != current.Markdown.Markdown {
		diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(legacy.Markdown.Markdown + "\n"),
			B:        difflib.SplitLines(current.Markdown.Markdown + "\n"),
			FromFile: string(PathArchie),
			ToFile:   string(PathParagraph),
			Context:  3,
		})
		if err != nil {
			return Parity{}, fmt.Errorf("diff markdown: %w", err)
		}
		p.MarkdownDiff = diff
	}
	p.Equal = p.RawDiff == "" && p.MarkdownDiff == ""

	if !p.Equal {
		opts.logger().Warn("parser paths disagree",
			"raw_equal", p.RawDiff == "",
			"markdown_equal", p.MarkdownDiff == "")
	}
	return p, nil
}
