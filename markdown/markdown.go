// Package markdown projects enriched block trees into flat markdown used for
// diffing, search indexing and review.
package markdown

import (
	"context"
	"fmt"
	"strings"

	"github.com/rgonek/docblocks/blocks"
)

// Converter renders enriched blocks to markdown.
type Converter struct {
	config Config
}

type state struct {
	ctx      context.Context
	config   Config
	strict   bool
	warnings []Warning
	// blockType is the type tag of the block being rendered.
	blockType string
}

// New creates a Converter with the given config.
func New(config Config) (*Converter, error) {
	cfg := config.applyDefaults().clone()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Converter{config: cfg}, nil
}

// Render renders blocks to markdown. It never fails: hook failures fall back
// to the original link and are reported as warnings.
func (c *Converter) Render(bs []blocks.Block) Result {
	return c.renderBestEffort(blocks.Document{Blocks: bs}, false)
}

// RenderDocument renders a document followed by its reference definitions.
func (c *Converter) RenderDocument(doc blocks.Document) Result {
	return c.renderBestEffort(doc, true)
}

// RenderWithContext renders blocks, passing ctx to the link hook. In strict
// resolution mode an unresolved link fails the whole rendering.
func (c *Converter) RenderWithContext(ctx context.Context, bs []blocks.Block) (Result, error) {
	return c.render(ctx, blocks.Document{Blocks: bs}, false, c.config.ResolutionMode == ResolutionStrict)
}

// RenderDocumentWithContext is RenderDocument with hook context and strict
// resolution support.
func (c *Converter) RenderDocumentWithContext(ctx context.Context, doc blocks.Document) (Result, error) {
	return c.render(ctx, doc, true, c.config.ResolutionMode == ResolutionStrict)
}

func (c *Converter) renderBestEffort(doc blocks.Document, withRefs bool) Result {
	result, err := c.render(context.Background(), doc, withRefs, false)
	if err != nil {
		// Only reachable through a misbehaving hook; render again without it.
		fallback := *c
		fallback.config.LinkHook = nil
		result, _ = fallback.render(context.Background(), doc, withRefs, false)
		result.Warnings = append(result.Warnings, Warning{Type: WarningHookFailed, Message: err.Error()})
	}
	return result
}

func (c *Converter) render(ctx context.Context, doc blocks.Document, withRefs, strict bool) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	s := &state{ctx: ctx, config: c.config, strict: strict}

	out, err := s.renderBlocks(doc.Blocks)
	if err != nil {
		return Result{}, err
	}
	if withRefs {
		defs, err := s.renderRefs(doc.Refs)
		if err != nil {
			return Result{}, err
		}
		if defs != "" && out != "" {
			out += "\n\n"
		}
		out += defs
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	return Result{Markdown: normalize(out), Warnings: s.warnings}, nil
}

func (s *state) addWarning(warnType WarningType, blockType, message string) {
	s.warnings = append(s.warnings, Warning{
		Type:      warnType,
		BlockType: blockType,
		Message:   message,
	})
}

// renderBlocks renders a block sequence, separating non-empty blocks with a
// blank line.
func (s *state) renderBlocks(bs []blocks.Block) (string, error) {
	var parts []string
	for _, b := range bs {
		if b == nil {
			continue
		}
		if err := s.ctx.Err(); err != nil {
			return "", err
		}

		prev := s.blockType
		s.blockType = b.BlockType()
		out, err := s.renderBlock(b)
		s.blockType = prev
		if err != nil {
			return "", err
		}

		out = strings.Trim(out, "\n")
		if strings.TrimSpace(out) == "" {
			continue
		}
		parts = append(parts, out)
	}
	return strings.Join(parts, "\n\n"), nil
}

func (s *state) renderRefs(refs []blocks.Ref) (string, error) {
	var lines []string
	for _, r := range refs {
		if r.Number <= 0 {
			continue
		}
		content, err := s.renderInline(r.Content)
		if err != nil {
			return "", err
		}
		switch s.config.RefStyle {
		case RefBracket:
			lines = append(lines, fmt.Sprintf("[%d] %s", r.Number, content))
		default:
			lines = append(lines, fmt.Sprintf("[^%d]: %s", r.Number, content))
		}
	}
	return strings.Join(lines, "\n"), nil
}

// normalize right-trims every line and drops leading and trailing blank
// lines so identical trees render byte-identical output.
func normalize(md string) string {
	lines := strings.Split(md, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n")
}
