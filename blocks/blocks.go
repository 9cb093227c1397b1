// Package blocks turns raw block trees into a closed set of typed, validated
// content blocks.
package blocks

import (
	"encoding/json"

	"github.com/rgonek/docblocks/paragraph"
	"github.com/rgonek/docblocks/raw"
	"github.com/rgonek/docblocks/span"
)

// ParseError is a diagnostic attached to the block it concerns.
type ParseError struct {
	Message   string `json:"message"`
	IsWarning bool   `json:"isWarning"`
}

// Meta is carried by every block.
type Meta struct {
	// Path locates the block in the raw tree, e.g. "body/3/left/0".
	Path        string           `json:"-"`
	ParseErrors []ParseError     `json:"parseErrors,omitempty"`
	SourceRange *paragraph.Range `json:"sourceParagraphRange,omitempty"`
}

// BlockMeta returns a copy of the metadata.
func (m *Meta) BlockMeta() Meta { return *m }

func (m *Meta) meta() *Meta { return m }

// HasErrors reports whether any diagnostic is an error rather than a warning.
func (m Meta) HasErrors() bool {
	for _, e := range m.ParseErrors {
		if !e.IsWarning {
			return true
		}
	}
	return false
}

func (m *Meta) addError(msg string)   { m.ParseErrors = append(m.ParseErrors, ParseError{Message: msg}) }
func (m *Meta) addWarning(msg string) { m.ParseErrors = appendWarning(m.ParseErrors, msg) }

func appendWarning(errs []ParseError, msg string) []ParseError {
	for _, e := range errs {
		if e.IsWarning && e.Message == msg {
			return errs
		}
	}
	return append(errs, ParseError{Message: msg, IsWarning: true})
}

// Block is one enriched block. The set of implementations is closed.
type Block interface {
	BlockType() string
	BlockMeta() Meta
	meta() *Meta
}

// Blocks is an ordered sequence of child blocks.
type Blocks []Block

// MarshalJSON encodes each block with its type tag.
func (bs Blocks) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, 0, len(bs))
	for _, b := range bs {
		data, err := MarshalBlock(b)
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return json.Marshal(out)
}

// MarshalBlock encodes a block as a JSON object whose "type" key holds the
// block type.
func MarshalBlock(b Block) ([]byte, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	typ, err := json.Marshal(b.BlockType())
	if err != nil {
		return nil, err
	}
	if string(data) == "{}" {
		return []byte(`{"type":` + string(typ) + `}`), nil
	}
	out := append([]byte(`{"type":`+string(typ)+`,`), data[1:]...)
	return out, nil
}

// Ref is a numbered reference with its content.
type Ref struct {
	ID      string      `json:"id"`
	Number  int         `json:"number"`
	Content []span.Span `json:"content"`
}

// Document is the enriched form of a whole document.
type Document struct {
	Blocks Blocks `json:"blocks"`
	Refs   []Ref  `json:"refs,omitempty"`
}

// Paragraph is a run of body text.
type Paragraph struct {
	Meta
	Spans []span.Span `json:"value"`
}

// Heading is a section heading.
type Heading struct {
	Meta
	Text  []span.Span `json:"text"`
	Level int         `json:"level"`
}

// Image embeds an uploaded image by filename.
type Image struct {
	Meta
	Filename string      `json:"filename"`
	Alt      string      `json:"alt,omitempty"`
	Caption  []span.Span `json:"caption,omitempty"`
	Size     string      `json:"size"`
}

// Chart embeds an interactive chart by URL.
type Chart struct {
	Meta
	URL     string      `json:"url"`
	Height  int         `json:"height,omitempty"`
	Caption []span.Span `json:"caption,omitempty"`
	Size    string      `json:"size"`
}

// RecircLink is one recirculation target.
type RecircLink struct {
	URL string `json:"url"`
}

// Recirc lists further reading.
type Recirc struct {
	Meta
	Title []span.Span  `json:"title"`
	Links []RecircLink `json:"links"`
}

// Columns is a two-column container: sticky-left, sticky-right or
// side-by-side.
type Columns struct {
	Meta
	Kind  string `json:"-"`
	Left  Blocks `json:"left"`
	Right Blocks `json:"right"`
}

// PullQuote highlights a quotation.
type PullQuote struct {
	Meta
	Text  []span.Span `json:"text"`
	Align string      `json:"align,omitempty"`
}

// List is a bulleted list.
type List struct {
	Meta
	Items [][]span.Span `json:"items"`
}

// NumberedList is an ordered list.
type NumberedList struct {
	Meta
	Items [][]span.Span `json:"items"`
}

// HTML passes raw HTML through.
type HTML struct {
	Meta
	Value string `json:"value"`
}

// Insight is one titled entry of a KeyInsights block.
type Insight struct {
	Title   string `json:"title"`
	Content Blocks `json:"content"`
}

// KeyInsights is a slideshow of titled insights.
type KeyInsights struct {
	Meta
	Heading  string    `json:"heading"`
	Insights []Insight `json:"insights"`
}

// FeaturedWork is one entry of a HomepageIntro block.
type FeaturedWork struct {
	Type        string `json:"type,omitempty"`
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Authors     string `json:"authors,omitempty"`
	Filename    string `json:"filename,omitempty"`
	Kicker      string `json:"kicker,omitempty"`
}

// HomepageIntro lists featured work on the homepage.
type HomepageIntro struct {
	Meta
	FeaturedWork []FeaturedWork `json:"featuredWork"`
}

// HorizontalRule separates sections.
type HorizontalRule struct {
	Meta
}

// Aside is a marginal note.
type Aside struct {
	Meta
	Caption  []span.Span `json:"caption"`
	Position string      `json:"position"`
}

// Callout is a boxed set of blocks with an optional title.
type Callout struct {
	Meta
	Title   string `json:"title,omitempty"`
	Content Blocks `json:"content"`
}

// ProminentLink is a card linking to another page.
type ProminentLink struct {
	Meta
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// ExpandableParagraph is collapsed body text.
type ExpandableParagraph struct {
	Meta
	Content Blocks `json:"content"`
}

// GraySection is a shaded group of blocks.
type GraySection struct {
	Meta
	Content Blocks `json:"content"`
}

// Blockquote quotes blocks with an optional citation.
type Blockquote struct {
	Meta
	Content  Blocks `json:"content"`
	Citation string `json:"citation,omitempty"`
}

// Unknown preserves a block whose type tag is not recognized.
type Unknown struct {
	Meta
	Tag string    `json:"tag"`
	Raw raw.Value `json:"raw,omitempty"`
}

// DocumentIssues carries diagnostics that belong to the document rather than
// to a single block.
type DocumentIssues struct {
	Meta
}

func (*Paragraph) BlockType() string           { return "text" }
func (*Heading) BlockType() string             { return "heading" }
func (*Image) BlockType() string               { return "image" }
func (*Chart) BlockType() string               { return "chart" }
func (*Recirc) BlockType() string              { return "recirc" }
func (c *Columns) BlockType() string           { return c.Kind }
func (*PullQuote) BlockType() string           { return "pull-quote" }
func (*List) BlockType() string                { return "list" }
func (*NumberedList) BlockType() string        { return "numbered-list" }
func (*HTML) BlockType() string                { return "html" }
func (*KeyInsights) BlockType() string         { return "key-insights" }
func (*HomepageIntro) BlockType() string       { return "homepage-intro" }
func (*HorizontalRule) BlockType() string      { return "horizontal-rule" }
func (*Aside) BlockType() string               { return "aside" }
func (*Callout) BlockType() string             { return "callout" }
func (*ProminentLink) BlockType() string       { return "prominent-link" }
func (*ExpandableParagraph) BlockType() string { return "expandable-paragraph" }
func (*GraySection) BlockType() string         { return "gray-section" }
func (*Blockquote) BlockType() string          { return "blockquote" }
func (u *Unknown) BlockType() string           { return u.Tag }
func (*DocumentIssues) BlockType() string      { return "document-issues" }
