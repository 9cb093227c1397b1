package markdown

import (
	"fmt"
	"strings"

	"github.com/rgonek/docblocks/blocks"
	"github.com/rgonek/docblocks/span"
)

// renderBlock renders one block. Blocks carrying parse errors still render
// their best-effort content.
func (s *state) renderBlock(b blocks.Block) (string, error) {
	switch x := b.(type) {
	case *blocks.Paragraph:
		text, err := s.renderInline(x.Spans)
		if err != nil {
			return "", err
		}
		return escapeBlockStart(text), nil
	case *blocks.Heading:
		return s.renderHeading(x.Text, x.Level)
	case *blocks.Image:
		return s.renderImage(x)
	case *blocks.Chart:
		return s.renderChart(x)
	case *blocks.Recirc:
		return s.renderRecirc(x)
	case *blocks.Columns:
		return s.renderChildren(x.Left, x.Right)
	case *blocks.PullQuote:
		text, err := s.renderInline(x.Text)
		if err != nil {
			return "", err
		}
		return s.blockquoteContent(text, ""), nil
	case *blocks.List:
		return s.renderList(x.Items, false)
	case *blocks.NumberedList:
		return s.renderList(x.Items, true)
	case *blocks.HTML:
		return s.renderHTML(x)
	case *blocks.KeyInsights:
		return s.renderKeyInsights(x)
	case *blocks.HomepageIntro:
		return s.renderHomepageIntro(x)
	case *blocks.HorizontalRule:
		return "---", nil
	case *blocks.Aside:
		return s.renderInline(x.Caption)
	case *blocks.Callout:
		return s.renderCallout(x)
	case *blocks.ProminentLink:
		return s.renderProminentLink(x)
	case *blocks.ExpandableParagraph:
		return s.renderChildren(x.Content)
	case *blocks.GraySection:
		return s.renderChildren(x.Content)
	case *blocks.Blockquote:
		return s.renderBlockquote(x)
	case *blocks.Unknown:
		s.addWarning(WarningUnknownBlock, x.Tag, fmt.Sprintf("unknown block type %q rendered as empty", x.Tag))
		return "", nil
	case *blocks.DocumentIssues:
		return "", nil
	default:
		s.addWarning(WarningUnknownBlock, b.BlockType(), fmt.Sprintf("no rendering rule for %T", b))
		return "", nil
	}
}

func (s *state) renderChildren(groups ...blocks.Blocks) (string, error) {
	var parts []string
	for _, g := range groups {
		out, err := s.renderBlocks(g)
		if err != nil {
			return "", err
		}
		if out != "" {
			parts = append(parts, out)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

func (s *state) headingPrefix(level int) string {
	if level <= 0 {
		level = 1
	}
	level += s.config.HeadingOffset
	if level > 6 {
		level = 6
	}
	return strings.Repeat("#", level) + " "
}

func (s *state) renderHeading(text []span.Span, level int) (string, error) {
	content, err := s.renderInline(text)
	if err != nil {
		return "", err
	}
	if content == "" {
		return "", nil
	}
	// Headings cannot end with a hard break.
	content = strings.ReplaceAll(content, "\\\n", " ")
	return s.headingPrefix(level) + content, nil
}

func (s *state) renderImage(img *blocks.Image) (string, error) {
	caption, err := s.renderInline(img.Caption)
	if err != nil {
		return "", err
	}
	if img.Filename == "" {
		return caption, nil
	}
	out := "![" + escapeText(img.Alt) + "](" + escapeURL(img.Filename) + ")"
	if caption != "" {
		out += "\n\n" + caption
	}
	return out, nil
}

func (s *state) renderChart(c *blocks.Chart) (string, error) {
	caption, err := s.renderInline(c.Caption)
	if err != nil {
		return "", err
	}
	if c.URL == "" {
		return caption, nil
	}
	title := span.PlainText(c.Caption)
	if title == "" {
		title = c.URL
	}
	return s.link(strings.TrimSpace(title), c.URL)
}

func (s *state) renderRecirc(r *blocks.Recirc) (string, error) {
	title, err := s.renderInline(r.Title)
	if err != nil {
		return "", err
	}
	var items []string
	for _, l := range r.Links {
		link, err := s.link(l.URL, l.URL)
		if err != nil {
			return "", err
		}
		items = append(items, link)
	}
	list := s.bulletList(items)
	switch {
	case title == "":
		return list, nil
	case list == "":
		return title, nil
	default:
		return title + "\n\n" + list, nil
	}
}

func (s *state) renderList(items [][]span.Span, ordered bool) (string, error) {
	var rendered []string
	for _, item := range items {
		out, err := s.renderInline(item)
		if err != nil {
			return "", err
		}
		if out == "" {
			continue
		}
		rendered = append(rendered, out)
	}
	if ordered {
		return s.orderedList(rendered), nil
	}
	return s.bulletList(rendered), nil
}

func (s *state) bulletList(items []string) string {
	marker := string(s.config.BulletMarker) + " "
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString(s.indent(item, marker))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (s *state) orderedList(items []string) string {
	var sb strings.Builder
	for i, item := range items {
		n := i + 1
		if s.config.OrderedListStyle == OrderedLazy {
			n = 1
		}
		sb.WriteString(s.indent(item, fmt.Sprintf("%d. ", n)))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (s *state) renderHTML(h *blocks.HTML) (string, error) {
	if s.config.HTMLStyle == HTMLStrip {
		text := stripHTML(h.Value)
		if text != h.Value {
			s.addWarning(WarningDroppedFeature, h.BlockType(), "html markup stripped")
		}
		return text, nil
	}
	return h.Value, nil
}

func (s *state) renderKeyInsights(k *blocks.KeyInsights) (string, error) {
	var parts []string
	if k.Heading != "" {
		parts = append(parts, s.headingPrefix(2)+escapeText(k.Heading))
	}
	for _, in := range k.Insights {
		if in.Title != "" {
			parts = append(parts, s.headingPrefix(3)+escapeText(in.Title))
		}
		content, err := s.renderBlocks(in.Content)
		if err != nil {
			return "", err
		}
		if content != "" {
			parts = append(parts, content)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

func (s *state) renderHomepageIntro(h *blocks.HomepageIntro) (string, error) {
	var items []string
	for _, w := range h.FeaturedWork {
		if w.URL == "" {
			continue
		}
		title := w.Title
		if title == "" {
			title = w.URL
		}
		item, err := s.link(title, w.URL)
		if err != nil {
			return "", err
		}
		if w.Kicker != "" {
			item = escapeText(w.Kicker) + ": " + item
		}
		if w.Description != "" {
			item += "\n" + escapeText(w.Description)
		}
		items = append(items, item)
	}
	return s.bulletList(items), nil
}

func (s *state) renderCallout(c *blocks.Callout) (string, error) {
	content, err := s.renderBlocks(c.Content)
	if err != nil {
		return "", err
	}
	if c.Title != "" {
		title := "**" + escapeText(c.Title) + "**"
		if content == "" {
			content = title
		} else {
			content = title + "\n\n" + content
		}
	}
	return s.blockquoteContent(content, ""), nil
}

func (s *state) renderProminentLink(p *blocks.ProminentLink) (string, error) {
	title := p.Title
	if title == "" {
		title = p.URL
	}
	if p.URL == "" {
		return escapeText(title), nil
	}
	out, err := s.link(title, p.URL)
	if err != nil {
		return "", err
	}
	if p.Description != "" {
		out += "\n\n" + escapeText(p.Description)
	}
	return out, nil
}

func (s *state) renderBlockquote(q *blocks.Blockquote) (string, error) {
	content, err := s.renderBlocks(q.Content)
	if err != nil {
		return "", err
	}
	if q.Citation != "" {
		citation := "— " + escapeText(q.Citation)
		if content == "" {
			content = citation
		} else {
			content += "\n\n" + citation
		}
	}
	return s.blockquoteContent(content, ""), nil
}

// blockquoteContent converts content to blockquoted format with optional
// first-line prefix.
func (s *state) blockquoteContent(content, firstLinePrefix string) string {
	content = strings.TrimRight(content, "\n")
	if content == "" {
		return ""
	}

	lines := strings.Split(content, "\n")
	quoted := make([]string, 0, len(lines))
	for i, line := range lines {
		switch {
		case i == 0 && firstLinePrefix != "":
			quoted = append(quoted, "> "+firstLinePrefix+line)
		case line == "":
			quoted = append(quoted, ">")
		case strings.HasPrefix(line, ">"):
			quoted = append(quoted, ">"+line)
		default:
			quoted = append(quoted, "> "+line)
		}
	}

	return strings.Join(quoted, "\n")
}

// indent prefixes the first line with marker and the following lines with
// spaces matching the marker width.
func (s *state) indent(content, marker string) string {
	content = strings.TrimRight(content, "\n")
	if content == "" {
		return ""
	}

	lines := strings.Split(content, "\n")
	pad := strings.Repeat(" ", len(marker))
	for i, line := range lines {
		switch {
		case i == 0:
			lines[i] = marker + line
		case line != "":
			lines[i] = pad + line
		}
	}

	return strings.Join(lines, "\n")
}
