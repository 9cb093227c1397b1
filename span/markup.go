package span

import (
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

var styleTags = map[Style]string{
	Bold:          "b",
	Italic:        "i",
	Underline:     "u",
	Strikethrough: "s",
	Superscript:   "sup",
	Subscript:     "sub",
}

var tagStyles = map[string]Style{
	"b":      Bold,
	"strong": Bold,
	"i":      Italic,
	"em":     Italic,
	"u":      Underline,
	"s":      Strikethrough,
	"del":    Strikethrough,
	"sup":    Superscript,
	"sub":    Subscript,
}

var (
	tagNameRe = regexp.MustCompile(`^<(/?)([A-Za-z][A-Za-z0-9-]*)`)
	hrefRe    = regexp.MustCompile(`(?i)\bhref\s*=\s*"([^"]*)"`)
	refIDRe   = regexp.MustCompile(`(?i)\bid\s*=\s*"([^"]*)"`)
	refNumRe  = regexp.MustCompile(`(?i)\bn\s*=\s*"(\d+)"`)
)

// Encode renders spans as inline markup. Backslashes and '<' in text are
// escaped with a backslash and newlines become <br>.
func Encode(spans []Span) string {
	var sb strings.Builder
	encodeTo(&sb, spans)
	return sb.String()
}

func encodeTo(sb *strings.Builder, spans []Span) {
	for _, s := range spans {
		switch v := s.(type) {
		case Text:
			sb.WriteString(EscapeText(v.Value))
		case Link:
			sb.WriteString(`<a href="`)
			sb.WriteString(html.EscapeString(v.URL))
			sb.WriteString(`">`)
			encodeTo(sb, v.Children)
			sb.WriteString("</a>")
		case Formatted:
			tag := styleTags[v.Style]
			sb.WriteString("<" + tag + ">")
			encodeTo(sb, v.Children)
			sb.WriteString("</" + tag + ">")
		case Ref:
			sb.WriteString(RefTag(v.RawID, v.Number))
		}
	}
}

// EscapeText escapes literal text for use inside markup.
func EscapeText(s string) string {
	if !strings.ContainsAny(s, "\\<\n") {
		return s
	}
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '\\', '<':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case '\n':
			sb.WriteString("<br>")
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// RefTag renders a reference marker. A zero number renders the unresolved form.
func RefTag(id string, number int) string {
	if number > 0 {
		return `<ref id="` + html.EscapeString(id) + `" n="` + strconv.Itoa(number) + `"></ref>`
	}
	return `<ref id="` + html.EscapeString(id) + `"></ref>`
}

var markupParser = parser.NewParser(
	parser.WithBlockParsers(util.Prioritized(parser.NewParagraphParser(), 100)),
	parser.WithInlineParsers(util.Prioritized(parser.NewRawHTMLParser(), 100)),
)

// ParseMarkup decodes inline markup back into normalized spans. Unknown or
// unbalanced tags degrade to literal text.
func ParseMarkup(markup string) []Span {
	if strings.TrimSpace(markup) == "" {
		return nil
	}
	source := []byte(markup)
	root := markupParser.Parse(text.NewReader(source))

	d := &decoder{source: source}
	d.push(frame{})
	for block := root.FirstChild(); block != nil; block = block.NextSibling() {
		for inline := block.FirstChild(); inline != nil; inline = inline.NextSibling() {
			d.inline(inline)
		}
	}
	for len(d.stack) > 1 {
		d.closeTop()
	}
	return Normalize(d.stack[0].children)
}

type frameKind int

const (
	frameRoot frameKind = iota
	frameStyle
	frameLink
)

type frame struct {
	kind     frameKind
	tag      string
	style    Style
	url      string
	children []Span
}

type decoder struct {
	source  []byte
	stack   []frame
	inRef   bool
	pending Ref
}

func (d *decoder) push(f frame) {
	d.stack = append(d.stack, f)
}

func (d *decoder) emit(s Span) {
	if d.inRef {
		return
	}
	top := &d.stack[len(d.stack)-1]
	top.children = append(top.children, s)
}

func (d *decoder) closeTop() {
	top := d.stack[len(d.stack)-1]
	d.stack = d.stack[:len(d.stack)-1]
	switch top.kind {
	case frameStyle:
		d.emit(Formatted{Style: top.style, Children: top.children})
	case frameLink:
		d.emit(Link{URL: top.url, Children: top.children})
	}
}

func (d *decoder) inline(n ast.Node) {
	switch v := n.(type) {
	case *ast.Text:
		d.emit(Text{Value: string(util.UnescapePunctuations(v.Segment.Value(d.source)))})
	case *ast.RawHTML:
		var sb strings.Builder
		for i := 0; i < v.Segments.Len(); i++ {
			seg := v.Segments.At(i)
			sb.Write(seg.Value(d.source))
		}
		d.tag(sb.String())
	default:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			d.inline(c)
		}
	}
}

func (d *decoder) tag(raw string) {
	m := tagNameRe.FindStringSubmatch(raw)
	if m == nil {
		d.emit(Text{Value: raw})
		return
	}
	closing := m[1] == "/"
	name := strings.ToLower(m[2])

	switch {
	case name == "br":
		d.emit(Text{Value: "\n"})
	case name == "ref" && !closing:
		if d.inRef {
			return
		}
		ref := Ref{}
		if id := refIDRe.FindStringSubmatch(raw); id != nil {
			ref.RawID = html.UnescapeString(id[1])
		}
		if num := refNumRe.FindStringSubmatch(raw); num != nil {
			ref.Number, _ = strconv.Atoi(num[1])
		}
		d.emit(ref)
		d.inRef = !strings.HasSuffix(strings.TrimSpace(raw), "/>")
	case name == "ref":
		d.inRef = false
	case name == "a" && !closing:
		url := ""
		if href := hrefRe.FindStringSubmatch(raw); href != nil {
			url = html.UnescapeString(href[1])
		}
		d.push(frame{kind: frameLink, tag: name, url: url})
	case tagStyles[name] != "" && !closing:
		d.push(frame{kind: frameStyle, tag: name, style: tagStyles[name]})
	case closing && (name == "a" || tagStyles[name] != ""):
		if !d.closeTag(name) {
			d.emit(Text{Value: raw})
		}
	default:
		d.emit(Text{Value: raw})
	}
}

// closeTag closes the innermost open frame for name, closing anything opened
// after it. It reports false when no such frame is open.
func (d *decoder) closeTag(name string) bool {
	for i := len(d.stack) - 1; i > 0; i-- {
		if d.stack[i].tag == name || (d.stack[i].kind == frameStyle && d.stack[i].style == tagStyles[name] && name != "a") {
			for len(d.stack) > i {
				d.closeTop()
			}
			return true
		}
	}
	return false
}
