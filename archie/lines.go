package archie

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rgonek/docblocks/paragraph"
	"github.com/rgonek/docblocks/raw"
	"github.com/rgonek/docblocks/span"
)

var (
	headingRe  = regexp.MustCompile(`^(#{1,6}) (.*)$`)
	bulletRe   = regexp.MustCompile(`^\* (.*)$`)
	numberedRe = regexp.MustCompile(`^\d+\. (.*)$`)
)

// Serialize flattens paragraphs into archie text, one line per paragraph.
func Serialize(paragraphs []paragraph.Paragraph) []string {
	lines := make([]string, len(paragraphs))
	for i, p := range paragraphs {
		lines[i] = serializeParagraph(p)
	}
	return lines
}

// SerializeText is Serialize joined with newlines.
func SerializeText(paragraphs []paragraph.Paragraph) string {
	return strings.Join(Serialize(paragraphs), "\n")
}

func serializeParagraph(p paragraph.Paragraph) string {
	trimmed := span.TrimSpace(p.Spans)
	if len(trimmed) == 0 {
		return ""
	}

	prefix := ""
	switch p.Type {
	case paragraph.TypeHeading:
		prefix = strings.Repeat("#", p.HeadingLevel()) + " "
	case paragraph.TypeListItem:
		prefix = "* "
	case paragraph.TypeNumberedListItem:
		prefix = "1. "
	}

	plain := span.PlainText(trimmed)
	if c, ok := ParseControl(plain); ok {
		return prefix + c.Raw
	}

	if prefix != "" {
		return prefix + span.Encode(trimmed)
	}
	if key, rest, ok := SplitKey(trimmed); ok {
		return key + ": " + span.Encode(rest)
	}
	line := span.Encode(trimmed)
	if headingRe.MatchString(line) || bulletRe.MatchString(line) || numberedRe.MatchString(line) {
		return `\` + line
	}
	return line
}

// SplitKey reports whether the plain text of spans starts with "key:". It
// returns the key and the spans following the separator, so formatting on
// the key itself is dropped.
func SplitKey(spans []span.Span) (string, []span.Span, bool) {
	plain := span.PlainText(spans)
	loc := keyPrefixRe.FindStringSubmatchIndex(plain)
	if loc == nil {
		return "", nil, false
	}
	n := utf8.RuneCountInString(plain[:loc[1]])
	return plain[loc[2]:loc[3]], span.SliceFrom(spans, n), true
}

func unescapeLine(line string) string {
	if len(line) > 1 && line[0] == '\\' && (line[1] == '#' || line[1] == '*' || (line[1] >= '0' && line[1] <= '9')) {
		return line[1:]
	}
	return line
}

// LoadFromText parses archie text.
func LoadFromText(text string) raw.Document {
	return LoadFromLines(strings.Split(text, "\n"))
}

// LoadFromLines parses archie lines into a raw tree. Line i is attributed to
// paragraph i. Malformed lines are skipped with a warning on the innermost
// open block.
func LoadFromLines(lines []string) raw.Document {
	b := NewTreeBuilder()
	for i, line := range lines {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			b.Empty(i)
			continue
		}
		if c, ok := ParseControl(line); ok {
			b.Control(i, c, false)
			continue
		}
		if m := headingRe.FindStringSubmatch(line); m != nil {
			if c, ok := ParseControl(m[2]); ok {
				b.Control(i, c, true)
			} else {
				b.Heading(i, len(m[1]), m[2])
			}
			continue
		}
		if m := bulletRe.FindStringSubmatch(line); m != nil {
			b.listLine(i, false, m[1])
			continue
		}
		if m := numberedRe.FindStringSubmatch(line); m != nil {
			b.listLine(i, true, m[1])
			continue
		}
		b.Text(i, unescapeLine(line))
	}
	return b.Finish()
}

func (b *TreeBuilder) listLine(index int, ordered bool, value string) {
	if c, ok := ParseControl(value); ok {
		b.Control(index, c, true)
		return
	}
	b.ListItem(index, ordered, value)
}

// Legacy parses paragraphs through archie text.
type Legacy struct{}

// Parse serializes paragraphs and parses the resulting lines.
func (Legacy) Parse(paragraphs []paragraph.Paragraph) raw.Document {
	return LoadFromLines(Serialize(paragraphs))
}
