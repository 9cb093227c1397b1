// Package paragraph flattens a Google Docs document into an ordered sequence
// of paragraphs built from rich text spans.
package paragraph

import (
	"errors"

	"github.com/rgonek/docblocks/span"
)

// ErrInvalidDocument indicates that the input document has no body to extract.
var ErrInvalidDocument = errors.New("invalid document: missing body")

// Type classifies a paragraph by its paragraph-level style.
type Type string

const (
	TypeParagraph        Type = "paragraph"
	TypeHeading          Type = "heading"
	TypeListItem         Type = "listItem"
	TypeNumberedListItem Type = "numberedListItem"
)

// Paragraph is one unit of the source document. Index is its position in the
// extracted sequence. Level is the heading level for headings and the nesting
// level for list items.
type Paragraph struct {
	Index int         `json:"index"`
	Type  Type        `json:"type"`
	Level int         `json:"level,omitempty"`
	Spans []span.Span `json:"-"`
}

// Styled reports whether the paragraph carries a heading or list style.
func (p Paragraph) Styled() bool {
	return p.Type == TypeHeading || p.Type == TypeListItem || p.Type == TypeNumberedListItem
}

// HeadingLevel returns the heading level clamped to 1..6.
func (p Paragraph) HeadingLevel() int {
	switch {
	case p.Level < 1:
		return 1
	case p.Level > 6:
		return 6
	default:
		return p.Level
	}
}

// Range is an inclusive span of paragraph indices.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether index lies within the range.
func (r Range) Contains(index int) bool {
	return index >= r.Start && index <= r.End
}

// Result is the output of Extract.
type Result struct {
	Paragraphs []Paragraph
	// Footnotes maps a footnote id to its body content.
	Footnotes map[string][]span.Span
}
