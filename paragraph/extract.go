package paragraph

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
	"google.golang.org/api/docs/v1"

	"github.com/rgonek/docblocks/span"
)

var orderedGlyphs = map[string]bool{
	"DECIMAL":      true,
	"ZERO_DECIMAL": true,
	"ALPHA":        true,
	"UPPER_ALPHA":  true,
	"ROMAN":        true,
	"UPPER_ROMAN":  true,
}

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\v", "\n", "\r", "\n", "\u2028", "\n", "\u2029", "\n")

type extractor struct {
	doc        *docs.Document
	paragraphs []Paragraph
}

// Extract walks the document body in order and returns one Paragraph per
// paragraph element, including empty ones. Table cells are flattened row by
// row; section breaks and tables of contents are skipped.
func Extract(doc *docs.Document) (Result, error) {
	if doc == nil || doc.Body == nil {
		return Result{}, ErrInvalidDocument
	}

	e := &extractor{doc: doc}
	e.walk(doc.Body.Content)

	footnotes := make(map[string][]span.Span, len(doc.Footnotes))
	ids := make([]string, 0, len(doc.Footnotes))
	for id := range doc.Footnotes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fn := doc.Footnotes[id]
		fe := &extractor{doc: doc}
		fe.walk(fn.Content)
		var body []span.Span
		for _, p := range fe.paragraphs {
			trimmed := span.TrimSpace(p.Spans)
			if len(trimmed) == 0 {
				continue
			}
			if len(body) > 0 {
				body = append(body, span.Text{Value: " "})
			}
			body = append(body, trimmed...)
		}
		footnotes[id] = span.Normalize(body)
	}

	return Result{Paragraphs: e.paragraphs, Footnotes: footnotes}, nil
}

func (e *extractor) walk(content []*docs.StructuralElement) {
	for _, el := range content {
		if el == nil {
			continue
		}
		switch {
		case el.Paragraph != nil:
			e.paragraph(el.Paragraph)
		case el.Table != nil:
			for _, row := range el.Table.TableRows {
				if row == nil {
					continue
				}
				for _, cell := range row.TableCells {
					if cell != nil {
						e.walk(cell.Content)
					}
				}
			}
		}
	}
}

func (e *extractor) paragraph(p *docs.Paragraph) {
	out := Paragraph{Index: len(e.paragraphs), Type: TypeParagraph}

	if p.ParagraphStyle != nil {
		if level, ok := headingLevel(p.ParagraphStyle.NamedStyleType); ok {
			out.Type = TypeHeading
			out.Level = level
		}
	}
	if p.Bullet != nil {
		out.Type = TypeListItem
		out.Level = int(p.Bullet.NestingLevel)
		if e.ordered(p.Bullet) {
			out.Type = TypeNumberedListItem
		}
	}

	var spans []span.Span
	rule := false
	last := lastTextRun(p.Elements)
	for i, el := range p.Elements {
		if el == nil {
			continue
		}
		switch {
		case el.TextRun != nil:
			content := el.TextRun.Content
			if i == last {
				content = strings.TrimSuffix(content, "\n")
			}
			content = norm.NFC.String(lineBreaks.Replace(content))
			if content == "" {
				continue
			}
			inner, url := styled(span.Text{Value: content}, el.TextRun.TextStyle)
			if url == "" {
				spans = append(spans, inner)
				continue
			}
			if n := len(spans); n > 0 {
				if prev, ok := spans[n-1].(span.Link); ok && prev.URL == url {
					prev.Children = append(prev.Children, inner)
					spans[n-1] = prev
					continue
				}
			}
			spans = append(spans, span.Link{URL: url, Children: []span.Span{inner}})
		case el.FootnoteReference != nil:
			spans = append(spans, span.Ref{RawID: el.FootnoteReference.FootnoteId})
		case el.HorizontalRule != nil:
			rule = true
		case el.RichLink != nil && el.RichLink.RichLinkProperties != nil:
			props := el.RichLink.RichLinkProperties
			title := props.Title
			if title == "" {
				title = props.Uri
			}
			spans = append(spans, span.Link{URL: props.Uri, Children: []span.Span{span.Text{Value: title}}})
		case el.Person != nil && el.Person.PersonProperties != nil:
			name := el.Person.PersonProperties.Name
			if name == "" {
				name = el.Person.PersonProperties.Email
			}
			spans = append(spans, span.Text{Value: name})
		}
	}

	out.Spans = span.Normalize(spans)
	if rule && span.IsBlank(out.Spans) {
		out.Type = TypeParagraph
		out.Spans = []span.Span{span.Text{Value: "---"}}
	}
	e.paragraphs = append(e.paragraphs, out)
}

func lastTextRun(elements []*docs.ParagraphElement) int {
	for i := len(elements) - 1; i >= 0; i-- {
		if elements[i] != nil && elements[i].TextRun != nil {
			return i
		}
	}
	return -1
}

func (e *extractor) ordered(b *docs.Bullet) bool {
	list, ok := e.doc.Lists[b.ListId]
	if !ok || list.ListProperties == nil {
		return false
	}
	levels := list.ListProperties.NestingLevels
	level := int(b.NestingLevel)
	if level < 0 || level >= len(levels) || levels[level] == nil {
		return false
	}
	return orderedGlyphs[levels[level].GlyphType]
}

func headingLevel(named string) (int, bool) {
	switch named {
	case "TITLE":
		return 1, true
	case "SUBTITLE":
		return 2, true
	}
	if rest, ok := strings.CutPrefix(named, "HEADING_"); ok {
		level, err := strconv.Atoi(rest)
		if err == nil && level >= 1 && level <= 6 {
			return level, true
		}
	}
	return 0, false
}

// styled wraps s according to a text run style: bold outermost, then italic,
// underline, strikethrough and baseline offset. The link URL is returned
// separately so adjacent runs of one link can share a single Link span.
func styled(s span.Span, style *docs.TextStyle) (span.Span, string) {
	if style == nil {
		return s, ""
	}
	url := ""
	if style.Link != nil {
		url = style.Link.Url
	}

	wrap := func(st span.Style) {
		s = span.Formatted{Style: st, Children: []span.Span{s}}
	}
	switch style.BaselineOffset {
	case "SUPERSCRIPT":
		wrap(span.Superscript)
	case "SUBSCRIPT":
		wrap(span.Subscript)
	}
	if style.Strikethrough {
		wrap(span.Strikethrough)
	}
	// Links are underlined by the editor itself.
	if style.Underline && url == "" {
		wrap(span.Underline)
	}
	if style.Italic {
		wrap(span.Italic)
	}
	if style.Bold {
		wrap(span.Bold)
	}
	return s, url
}

// String renders a paragraph for debugging.
func (p Paragraph) String() string {
	return fmt.Sprintf("%d:%s(%d) %q", p.Index, p.Type, p.Level, span.Encode(p.Spans))
}
