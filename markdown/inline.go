package markdown

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rgonek/docblocks/span"
)

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
)

var (
	blockMarkerRe   = regexp.MustCompile(`^( {0,3})(#+|[-+=>]+)([ \t]|$)`)
	orderedMarkerRe = regexp.MustCompile(`^( {0,3})(\d{1,9})([.)])([ \t]|$)`)
)

// escapeBlockStart keeps each line of a paragraph from being read as a block
// marker.
func escapeBlockStart(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		switch {
		case blockMarkerRe.MatchString(line):
			lines[i] = blockMarkerRe.ReplaceAllString(line, `$1\$2$3`)
		case orderedMarkerRe.MatchString(line):
			lines[i] = orderedMarkerRe.ReplaceAllString(line, `$1$2\$3$4`)
		}
	}
	return strings.Join(lines, "\n")
}

// renderInline renders a span sequence as inline markdown. Newlines become
// backslash hard breaks.
func (s *state) renderInline(spans []span.Span) (string, error) {
	var sb strings.Builder
	for _, sp := range span.Normalize(spans) {
		out, err := s.renderSpan(sp)
		if err != nil {
			return "", err
		}
		sb.WriteString(out)
	}
	return strings.TrimSpace(sb.String()), nil
}

func (s *state) renderSpans(spans []span.Span) (string, error) {
	var sb strings.Builder
	for _, sp := range spans {
		out, err := s.renderSpan(sp)
		if err != nil {
			return "", err
		}
		sb.WriteString(out)
	}
	return sb.String(), nil
}

func (s *state) renderSpan(sp span.Span) (string, error) {
	switch x := sp.(type) {
	case span.Text:
		return escapeText(x.Value), nil
	case span.Ref:
		return s.renderRef(x), nil
	case span.Link:
		return s.renderLink(x)
	case span.Formatted:
		inner, err := s.renderSpans(x.Children)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(inner) == "" {
			return inner, nil
		}
		opening, closing := s.delimiters(x.Style)
		return opening + inner + closing, nil
	default:
		return "", nil
	}
}

func escapeText(v string) string {
	lines := strings.Split(v, "\n")
	for i, line := range lines {
		lines[i] = textEscaper.Replace(line)
	}
	return strings.Join(lines, "\\\n")
}

func (s *state) delimiters(style span.Style) (string, string) {
	switch style {
	case span.Bold:
		return "**", "**"
	case span.Italic:
		return "_", "_"
	case span.Strikethrough:
		return "~~", "~~"
	case span.Underline:
		if s.config.UnderlineStyle == UnderlineHTML {
			return "<u>", "</u>"
		}
	case span.Superscript:
		switch s.config.SubSupStyle {
		case SubSupHTML:
			return "<sup>", "</sup>"
		case SubSupCaret:
			return "^", "^"
		}
	case span.Subscript:
		switch s.config.SubSupStyle {
		case SubSupHTML:
			return "<sub>", "</sub>"
		case SubSupCaret:
			return "~", "~"
		}
	}
	return "", ""
}

func (s *state) renderRef(r span.Ref) string {
	if r.Number <= 0 {
		s.addWarning(WarningUnresolvedReference, s.blockType, fmt.Sprintf("reference %q has no content", r.RawID))
		return ""
	}
	if s.config.RefStyle == RefBracket {
		return fmt.Sprintf("[%d]", r.Number)
	}
	return fmt.Sprintf("[^%d]", r.Number)
}

func (s *state) renderLink(l span.Link) (string, error) {
	text, err := s.renderSpans(l.Children)
	if err != nil {
		return "", err
	}
	href, err := s.resolveLink(LinkRenderInput{
		BlockType: s.blockType,
		Href:      l.URL,
		Text:      span.PlainText(l.Children),
	})
	if err != nil {
		return "", err
	}

	if href == "" {
		return text, nil
	}
	if strings.TrimSpace(text) == "" {
		text = escapeText(href)
	}
	return "[" + text + "](" + escapeURL(href) + ")", nil
}

func escapeURL(u string) string {
	return strings.NewReplacer(" ", "%20", "(", "%28", ")", "%29").Replace(u)
}

// link renders a plain link for block-level fields holding URLs.
func (s *state) link(text, href string) (string, error) {
	return s.renderLink(span.Link{URL: href, Children: []span.Span{span.Text{Value: text}}})
}
