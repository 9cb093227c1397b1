// Package segment builds the raw block tree directly from paragraphs,
// without going through archie text.
package segment

import (
	"github.com/rgonek/docblocks/archie"
	"github.com/rgonek/docblocks/paragraph"
	"github.com/rgonek/docblocks/raw"
	"github.com/rgonek/docblocks/span"
)

// Kind classifies one paragraph for tree assembly.
type Kind int

const (
	KindEmpty Kind = iota
	KindControl
	KindText
	KindHeading
	KindListItem
	KindKey
)

// Segment is a classified paragraph.
type Segment struct {
	Index   int
	Kind    Kind
	Control archie.Control
	Styled  bool
	Level   int
	Ordered bool
	// Key is set for KindKey; Value then holds the markup after the key.
	Key string
	// Value is the inline markup of the trimmed paragraph.
	Value string
}

// Classify decides how a paragraph participates in the block structure. A
// paragraph whose plain text is a control line is a control regardless of its
// formatting; styled control paragraphs are flagged. Keys are likewise
// detected on the plain text of ordinary paragraphs.
func Classify(p paragraph.Paragraph) Segment {
	seg := Segment{Index: p.Index}
	trimmed := span.TrimSpace(p.Spans)
	if len(trimmed) == 0 {
		return seg
	}
	if c, ok := archie.ParseControl(span.PlainText(trimmed)); ok {
		seg.Kind = KindControl
		seg.Control = c
		seg.Styled = p.Styled()
		return seg
	}

	switch p.Type {
	case paragraph.TypeHeading:
		seg.Kind = KindHeading
		seg.Level = p.HeadingLevel()
	case paragraph.TypeListItem:
		seg.Kind = KindListItem
	case paragraph.TypeNumberedListItem:
		seg.Kind = KindListItem
		seg.Ordered = true
	default:
		if key, rest, ok := archie.SplitKey(trimmed); ok {
			seg.Kind = KindKey
			seg.Key = key
			seg.Value = span.Encode(rest)
			return seg
		}
		seg.Kind = KindText
	}
	seg.Value = span.Encode(trimmed)
	return seg
}

// Segmenter is the paragraph-based parser.
type Segmenter struct{}

// Parse classifies each paragraph and assembles the raw tree. Positions in
// the slice are the paragraph indices recorded in source ranges.
func (Segmenter) Parse(paragraphs []paragraph.Paragraph) raw.Document {
	b := archie.NewTreeBuilder()
	for i, p := range paragraphs {
		seg := Classify(p)
		seg.Index = i
		switch seg.Kind {
		case KindEmpty:
			b.Empty(seg.Index)
		case KindControl:
			b.Control(seg.Index, seg.Control, seg.Styled)
		case KindHeading:
			b.Heading(seg.Index, seg.Level, seg.Value)
		case KindListItem:
			b.ListItem(seg.Index, seg.Ordered, seg.Value)
		case KindKey:
			b.Key(seg.Index, seg.Key, seg.Value)
		default:
			b.Text(seg.Index, seg.Value)
		}
	}
	return b.Finish()
}
