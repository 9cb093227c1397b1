package refs

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/rgonek/docblocks/paragraph"
	"github.com/rgonek/docblocks/span"
)

var authoredRefRe = regexp.MustCompile(`\{ref\}(.*?)\{/ref\}`)

// InlineRef is a citation whose id has no body at extraction time.
type InlineRef struct {
	RawID     string
	Paragraph int
}

// Extraction is the output of Extract.
type Extraction struct {
	// Paragraphs are copies of the input with authored markers replaced by
	// reference spans.
	Paragraphs []paragraph.Paragraph
	Table      *Table
	Unresolved []InlineRef
}

// Extract rewrites authored {ref}...{/ref} markers into reference spans and
// numbers every citation by first appearance. Marker content containing
// whitespace is an inline body and doubles as its own id. Footnote bodies
// supply the remaining bodies. Input paragraphs are not modified.
func Extract(paragraphs []paragraph.Paragraph, footnotes map[string][]span.Span) Extraction {
	table := NewTable()
	out := make([]paragraph.Paragraph, len(paragraphs))

	for i, p := range paragraphs {
		p.Spans = span.Normalize(span.Map(p.Spans, func(s span.Span) []span.Span {
			t, ok := s.(span.Text)
			if !ok {
				return []span.Span{s}
			}
			return splitAuthored(t.Value, table)
		}))
		out[i] = p
	}

	var unresolved []InlineRef
	seen := make(map[string]bool)
	for _, p := range out {
		for _, r := range span.Refs(p.Spans) {
			table.Cite(r.RawID)
			if body, ok := footnotes[r.RawID]; ok {
				table.SetBody(r.RawID, body)
			}
			if _, ok := table.Body(r.RawID); !ok && !seen[r.RawID] {
				seen[r.RawID] = true
				unresolved = append(unresolved, InlineRef{RawID: r.RawID, Paragraph: p.Index})
			}
		}
	}
	for id, body := range footnotes {
		table.SetBody(id, body)
	}

	return Extraction{Paragraphs: out, Table: table, Unresolved: unresolved}
}

func splitAuthored(value string, table *Table) []span.Span {
	matches := authoredRefRe.FindAllStringSubmatchIndex(value, -1)
	if matches == nil {
		return []span.Span{span.Text{Value: value}}
	}
	var out []span.Span
	last := 0
	for _, m := range matches {
		if m[0] > last {
			out = append(out, span.Text{Value: value[last:m[0]]})
		}
		content := strings.TrimSpace(value[m[2]:m[3]])
		last = m[1]
		if content == "" {
			continue
		}
		if strings.IndexFunc(content, unicode.IsSpace) >= 0 {
			table.SetBody(content, []span.Span{span.Text{Value: content}})
		}
		out = append(out, span.Ref{RawID: content})
	}
	if last < len(value) {
		out = append(out, span.Text{Value: value[last:]})
	}
	return out
}
