package blocks

import "github.com/rgonek/docblocks/span"

// Children returns the direct child blocks of b in document order.
func Children(b Block) []Block {
	switch x := b.(type) {
	case *Columns:
		return concat(x.Left, x.Right)
	case *KeyInsights:
		var out []Block
		for _, in := range x.Insights {
			out = append(out, in.Content...)
		}
		return out
	case *Callout:
		return x.Content
	case *ExpandableParagraph:
		return x.Content
	case *GraySection:
		return x.Content
	case *Blockquote:
		return x.Content
	}
	return nil
}

func concat(a, b Blocks) []Block {
	out := make([]Block, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

// Walk visits blocks depth-first, parents before children. Returning false
// skips the children of the visited block.
func Walk(bs []Block, fn func(Block) bool) {
	for _, b := range bs {
		if b == nil {
			continue
		}
		if fn(b) {
			Walk(Children(b), fn)
		}
	}
}

// OwnSpans returns the span sequences held directly by b, excluding those of
// child blocks.
func OwnSpans(b Block) [][]span.Span {
	switch x := b.(type) {
	case *Paragraph:
		return [][]span.Span{x.Spans}
	case *Heading:
		return [][]span.Span{x.Text}
	case *Image:
		return [][]span.Span{x.Caption}
	case *Chart:
		return [][]span.Span{x.Caption}
	case *Recirc:
		return [][]span.Span{x.Title}
	case *PullQuote:
		return [][]span.Span{x.Text}
	case *List:
		return x.Items
	case *NumberedList:
		return x.Items
	case *Aside:
		return [][]span.Span{x.Caption}
	}
	return nil
}

func ownRefs(b Block) []span.Ref {
	var out []span.Ref
	for _, spans := range OwnSpans(b) {
		out = append(out, span.Refs(spans)...)
	}
	return out
}

// Refs returns every reference marker in the document in reading order.
func Refs(bs []Block) []span.Ref {
	var out []span.Ref
	Walk(bs, func(b Block) bool {
		out = append(out, ownRefs(b)...)
		return true
	})
	return out
}

// Diagnostics returns every diagnostic in the tree paired with the path of
// the block that carries it.
func Diagnostics(bs []Block) []Diagnostic {
	var out []Diagnostic
	Walk(bs, func(b Block) bool {
		m := b.BlockMeta()
		for _, e := range m.ParseErrors {
			out = append(out, Diagnostic{Path: m.Path, Type: b.BlockType(), ParseError: e})
		}
		return true
	})
	return out
}

// Diagnostic is a ParseError located in the block tree.
type Diagnostic struct {
	Path string `json:"path"`
	Type string `json:"type"`
	ParseError
}

// Clone returns a deep copy of b. Span trees are shared since they are never
// mutated in place.
func Clone(b Block) Block {
	if b == nil {
		return nil
	}
	switch x := b.(type) {
	case *Paragraph:
		c := *x
		c.Meta = x.Meta.clone()
		return &c
	case *Heading:
		c := *x
		c.Meta = x.Meta.clone()
		return &c
	case *Image:
		c := *x
		c.Meta = x.Meta.clone()
		return &c
	case *Chart:
		c := *x
		c.Meta = x.Meta.clone()
		return &c
	case *Recirc:
		c := *x
		c.Meta = x.Meta.clone()
		c.Links = append([]RecircLink(nil), x.Links...)
		return &c
	case *Columns:
		c := *x
		c.Meta = x.Meta.clone()
		c.Left = CloneAll(x.Left)
		c.Right = CloneAll(x.Right)
		return &c
	case *PullQuote:
		c := *x
		c.Meta = x.Meta.clone()
		return &c
	case *List:
		c := *x
		c.Meta = x.Meta.clone()
		c.Items = append([][]span.Span(nil), x.Items...)
		return &c
	case *NumberedList:
		c := *x
		c.Meta = x.Meta.clone()
		c.Items = append([][]span.Span(nil), x.Items...)
		return &c
	case *HTML:
		c := *x
		c.Meta = x.Meta.clone()
		return &c
	case *KeyInsights:
		c := *x
		c.Meta = x.Meta.clone()
		c.Insights = make([]Insight, len(x.Insights))
		for i, in := range x.Insights {
			c.Insights[i] = Insight{Title: in.Title, Content: CloneAll(in.Content)}
		}
		return &c
	case *HomepageIntro:
		c := *x
		c.Meta = x.Meta.clone()
		c.FeaturedWork = append([]FeaturedWork(nil), x.FeaturedWork...)
		return &c
	case *HorizontalRule:
		c := *x
		c.Meta = x.Meta.clone()
		return &c
	case *Aside:
		c := *x
		c.Meta = x.Meta.clone()
		return &c
	case *Callout:
		c := *x
		c.Meta = x.Meta.clone()
		c.Content = CloneAll(x.Content)
		return &c
	case *ProminentLink:
		c := *x
		c.Meta = x.Meta.clone()
		return &c
	case *ExpandableParagraph:
		c := *x
		c.Meta = x.Meta.clone()
		c.Content = CloneAll(x.Content)
		return &c
	case *GraySection:
		c := *x
		c.Meta = x.Meta.clone()
		c.Content = CloneAll(x.Content)
		return &c
	case *Blockquote:
		c := *x
		c.Meta = x.Meta.clone()
		c.Content = CloneAll(x.Content)
		return &c
	case *Unknown:
		c := *x
		c.Meta = x.Meta.clone()
		return &c
	case *DocumentIssues:
		c := *x
		c.Meta = x.Meta.clone()
		return &c
	}
	return b
}

// CloneAll deep-copies a block sequence.
func CloneAll(bs Blocks) Blocks {
	if bs == nil {
		return nil
	}
	out := make(Blocks, len(bs))
	for i, b := range bs {
		out[i] = Clone(b)
	}
	return out
}

func (m Meta) clone() Meta {
	c := Meta{Path: m.Path}
	if m.ParseErrors != nil {
		c.ParseErrors = append([]ParseError(nil), m.ParseErrors...)
	}
	if m.SourceRange != nil {
		r := *m.SourceRange
		c.SourceRange = &r
	}
	return c
}

// CloneDocument deep-copies a document.
func CloneDocument(doc Document) Document {
	out := Document{Blocks: CloneAll(doc.Blocks)}
	if doc.Refs != nil {
		out.Refs = append([]Ref(nil), doc.Refs...)
	}
	return out
}

// WalkSpans visits every span of every span-bearing field of b and of its
// descendants, in document order.
func WalkSpans(b Block, fn func(span.Span) bool) {
	Walk([]Block{b}, func(x Block) bool {
		for _, spans := range OwnSpans(x) {
			span.Walk(spans, fn)
		}
		return true
	})
}
