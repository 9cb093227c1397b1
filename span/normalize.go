package span

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Normalize returns the canonical form of spans: adjacent text leaves are
// merged, empty leaves and wrappers are dropped, adjacent wrappers of the same
// kind are merged, and whitespace at the edges of a wrapper is moved outside
// it. Wrappers holding only whitespace disappear.
func Normalize(spans []Span) []Span {
	var out []Span
	for _, s := range spans {
		switch v := s.(type) {
		case Text:
			out = appendText(out, v.Value)
		case Ref:
			out = append(out, v)
		case Link, Formatted:
			lead, children, trail := hoistSpace(Normalize(Children(s)))
			out = appendText(out, lead)
			if len(children) > 0 {
				out = appendWrapper(out, withChildren(s, children))
			}
			out = appendText(out, trail)
		}
	}
	return out
}

func withChildren(s Span, children []Span) Span {
	switch v := s.(type) {
	case Link:
		return Link{URL: v.URL, Children: children}
	case Formatted:
		return Formatted{Style: v.Style, Children: children}
	}
	return s
}

func appendText(out []Span, value string) []Span {
	if value == "" {
		return out
	}
	if n := len(out); n > 0 {
		if last, ok := out[n-1].(Text); ok {
			out[n-1] = Text{Value: last.Value + value}
			return out
		}
	}
	return append(out, Text{Value: value})
}

func appendWrapper(out []Span, s Span) []Span {
	n := len(out)
	if n == 0 {
		return append(out, s)
	}
	switch v := s.(type) {
	case Link:
		if last, ok := out[n-1].(Link); ok && last.URL == v.URL {
			out[n-1] = Link{URL: v.URL, Children: Normalize(concat(last.Children, v.Children))}
			return out
		}
	case Formatted:
		if last, ok := out[n-1].(Formatted); ok && last.Style == v.Style {
			out[n-1] = Formatted{Style: v.Style, Children: Normalize(concat(last.Children, v.Children))}
			return out
		}
	}
	return append(out, s)
}

func concat(a, b []Span) []Span {
	out := make([]Span, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

// hoistSpace splits leading and trailing whitespace off normalized children.
func hoistSpace(children []Span) (string, []Span, string) {
	var lead, trail string
	if len(children) > 0 {
		if t, ok := children[0].(Text); ok {
			trimmed := strings.TrimLeftFunc(t.Value, unicode.IsSpace)
			lead = t.Value[:len(t.Value)-len(trimmed)]
			if trimmed == "" {
				children = children[1:]
			} else {
				children = append([]Span{Text{Value: trimmed}}, children[1:]...)
			}
		}
	}
	if n := len(children); n > 0 {
		if t, ok := children[n-1].(Text); ok {
			trimmed := strings.TrimRightFunc(t.Value, unicode.IsSpace)
			trail = t.Value[len(trimmed):]
			rest := append([]Span{}, children[:n-1]...)
			if trimmed != "" {
				rest = append(rest, Text{Value: trimmed})
			}
			children = rest
		}
	}
	return lead, children, trail
}

// TrimSpace normalizes spans and removes leading and trailing whitespace.
func TrimSpace(spans []Span) []Span {
	out := Normalize(spans)
	if len(out) > 0 {
		if t, ok := out[0].(Text); ok {
			t.Value = strings.TrimLeftFunc(t.Value, unicode.IsSpace)
			if t.Value == "" {
				out = out[1:]
			} else {
				out[0] = t
			}
		}
	}
	if n := len(out); n > 0 {
		if t, ok := out[n-1].(Text); ok {
			t.Value = strings.TrimRightFunc(t.Value, unicode.IsSpace)
			if t.Value == "" {
				out = out[:n-1]
			} else {
				out[n-1] = t
			}
		}
	}
	return out
}

// IsBlank reports whether spans carry no text and no reference markers.
func IsBlank(spans []Span) bool {
	return len(TrimSpace(spans)) == 0
}

// SliceFrom drops the first n runes of plain text, keeping the formatting of
// what remains. Reference markers inside the dropped prefix are dropped too.
func SliceFrom(spans []Span, n int) []Span {
	var out []Span
	for _, s := range spans {
		if n <= 0 {
			out = append(out, s)
			continue
		}
		switch v := s.(type) {
		case Text:
			count := utf8.RuneCountInString(v.Value)
			if count <= n {
				n -= count
				continue
			}
			out = append(out, Text{Value: string([]rune(v.Value)[n:])})
			n = 0
		case Ref:
			// zero width, inside the dropped prefix
		case Link, Formatted:
			children := Children(s)
			count := utf8.RuneCountInString(PlainText(children))
			if count <= n {
				n -= count
				continue
			}
			out = append(out, withChildren(s, SliceFrom(children, n)))
			n = 0
		}
	}
	return out
}
