package pipeline

import (
	"fmt"

	"github.com/rgonek/docblocks/internal/yamlutil"
	"github.com/rgonek/docblocks/paragraph"
	"github.com/rgonek/docblocks/span"
)

// Fixture is a document written as already extracted paragraphs. Text is
// inline markup, so formatting can be expressed without a Google Docs
// export.
type Fixture struct {
	DocumentType string             `yaml:"documentType,omitempty"`
	Paragraphs   []FixtureParagraph `yaml:"paragraphs"`
	Footnotes    map[string]string  `yaml:"footnotes,omitempty"`
}

// FixtureParagraph is one paragraph of a Fixture.
type FixtureParagraph struct {
	Type  paragraph.Type `yaml:"type,omitempty"`
	Level int            `yaml:"level,omitempty"`
	Text  string         `yaml:"text"`
}

// LoadFixture decodes a YAML fixture. Unknown fields are rejected.
func LoadFixture(data []byte) (Fixture, error) {
	var f Fixture
	if err := yamlutil.UnmarshalStrict(data, &f); err != nil {
		return Fixture{}, fmt.Errorf("load fixture: %w", err)
	}
	for i, p := range f.Paragraphs {
		switch p.Type {
		case "", paragraph.TypeParagraph, paragraph.TypeHeading, paragraph.TypeListItem, paragraph.TypeNumberedListItem:
		default:
			return Fixture{}, fmt.Errorf("load fixture: paragraph %d: unknown type %q", i, p.Type)
		}
	}
	return f, nil
}

// Extract converts the fixture into paragraphs and footnote bodies.
func (f Fixture) Extract() ([]paragraph.Paragraph, map[string][]span.Span) {
	paragraphs := make([]paragraph.Paragraph, len(f.Paragraphs))
	for i, p := range f.Paragraphs {
		typ := p.Type
		if typ == "" {
			typ = paragraph.TypeParagraph
		}
		paragraphs[i] = paragraph.Paragraph{
			Index: i,
			Type:  typ,
			Level: p.Level,
			Spans: span.ParseMarkup(p.Text),
		}
	}

	var footnotes map[string][]span.Span
	if len(f.Footnotes) > 0 {
		footnotes = make(map[string][]span.Span, len(f.Footnotes))
		for id, body := range f.Footnotes {
			footnotes[id] = span.ParseMarkup(body)
		}
	}
	return paragraphs, footnotes
}
