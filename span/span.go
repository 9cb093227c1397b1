// Package span models inline rich text: text leaves, links, reference markers
// and formatting wrappers nested to any depth.
package span

import "strings"

// Span is one node of inline content. The set of implementations is closed:
// Text, Link, Ref and Formatted.
type Span interface {
	isSpan()
}

// Style names a formatting wrapper.
type Style string

const (
	Bold          Style = "bold"
	Italic        Style = "italic"
	Underline     Style = "underline"
	Strikethrough Style = "strikethrough"
	Superscript   Style = "superscript"
	Subscript     Style = "subscript"
)

// Styles lists every formatting style in nesting order, outermost first.
var Styles = []Style{Bold, Italic, Underline, Strikethrough, Superscript, Subscript}

// Text is a run of literal text.
type Text struct {
	Value string
}

// Link wraps children in a hyperlink.
type Link struct {
	URL      string
	Children []Span
}

// Ref marks a reference (footnote) citation. Number is zero until the
// reference is resolved to a display number.
type Ref struct {
	RawID  string
	Number int
}

// Formatted wraps children in a single formatting style.
type Formatted struct {
	Style    Style
	Children []Span
}

func (Text) isSpan()      {}
func (Link) isSpan()      {}
func (Ref) isSpan()       {}
func (Formatted) isSpan() {}

// Children returns the child spans of a wrapper, or nil for leaves.
func Children(s Span) []Span {
	switch v := s.(type) {
	case Link:
		return v.Children
	case Formatted:
		return v.Children
	default:
		return nil
	}
}

// Walk visits every span depth-first, parents before children, in document
// order. Returning false from fn skips the children of that span.
func Walk(spans []Span, fn func(Span) bool) {
	for _, s := range spans {
		if !fn(s) {
			continue
		}
		if children := Children(s); len(children) > 0 {
			Walk(children, fn)
		}
	}
}

// Map rebuilds spans bottom-up, replacing every leaf with fn(leaf). Wrappers
// are copied so the input is never modified.
func Map(spans []Span, fn func(Span) []Span) []Span {
	var out []Span
	for _, s := range spans {
		switch v := s.(type) {
		case Link:
			out = append(out, Link{URL: v.URL, Children: Map(v.Children, fn)})
		case Formatted:
			out = append(out, Formatted{Style: v.Style, Children: Map(v.Children, fn)})
		default:
			out = append(out, fn(s)...)
		}
	}
	return out
}

// PlainText concatenates the text leaves. Reference markers contribute nothing.
func PlainText(spans []Span) string {
	var sb strings.Builder
	Walk(spans, func(s Span) bool {
		if t, ok := s.(Text); ok {
			sb.WriteString(t.Value)
		}
		return true
	})
	return sb.String()
}

// Refs returns every reference marker in document order.
func Refs(spans []Span) []Ref {
	var refs []Ref
	Walk(spans, func(s Span) bool {
		if r, ok := s.(Ref); ok {
			refs = append(refs, r)
		}
		return true
	})
	return refs
}

// Equal reports whether two span lists are structurally identical. Nil and
// empty child lists compare equal.
func Equal(a, b []Span) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalSpan(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalSpan(a, b Span) bool {
	switch x := a.(type) {
	case Text:
		y, ok := b.(Text)
		return ok && x == y
	case Ref:
		y, ok := b.(Ref)
		return ok && x == y
	case Link:
		y, ok := b.(Link)
		return ok && x.URL == y.URL && Equal(x.Children, y.Children)
	case Formatted:
		y, ok := b.(Formatted)
		return ok && x.Style == y.Style && Equal(x.Children, y.Children)
	default:
		return false
	}
}
