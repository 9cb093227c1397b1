package archie

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgonek/docblocks/paragraph"
	"github.com/rgonek/docblocks/raw"
	"github.com/rgonek/docblocks/span"
)

func TestParseControl(t *testing.T) {
	tests := []struct {
		in   string
		want Control
		ok   bool
	}{
		{in: "{.image}", want: Control{Kind: BlockOpen, Name: "image", Raw: "{.image}"}, ok: true},
		{in: "  { .sticky-left }  ", want: Control{Kind: BlockOpen, Name: "sticky-left", Raw: "{ .sticky-left }"}, ok: true},
		{in: "{}", want: Control{Kind: BlockClose, Raw: "{}"}, ok: true},
		{in: "[.links]", want: Control{Kind: ArrayOpen, Name: "links", Raw: "[.links]"}, ok: true},
		{in: "[.+left]", want: Control{Kind: ArrayOpen, Name: "left", Freeform: true, Raw: "[.+left]"}, ok: true},
		{in: "[]", want: Control{Kind: ArrayClose, Raw: "[]"}, ok: true},
		{in: ":end", want: Control{Kind: End, Raw: ":end"}, ok: true},
		{in: ":endskip", want: Control{Kind: EndSkip, Raw: ":endskip"}, ok: true},
		{in: ":IGNORE", want: Control{Kind: Ignore, Raw: ":IGNORE"}, ok: true},
		{in: ":unknown"},
		{in: "{.+image}"},
		{in: "{ref}"},
		{in: "{.image} trailing"},
		{in: "[links]"},
		{in: "plain text"},
		{in: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseControl(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func p(i int, typ paragraph.Type, level int, spans ...span.Span) paragraph.Paragraph {
	return paragraph.Paragraph{Index: i, Type: typ, Level: level, Spans: spans}
}

func txt(v string) span.Span { return span.Text{Value: v} }

func TestSerialize(t *testing.T) {
	paragraphs := []paragraph.Paragraph{
		p(0, paragraph.TypeHeading, 2, txt("Title "), span.Formatted{Style: span.Bold, Children: []span.Span{txt("bold")}}),
		p(1, paragraph.TypeParagraph, 0, txt("  ")),
		p(2, paragraph.TypeParagraph, 0, span.Formatted{Style: span.Bold, Children: []span.Span{txt("{.image}")}}),
		p(3, paragraph.TypeParagraph, 0, txt("filename: a.png")),
		p(4, paragraph.TypeListItem, 0, txt("item <one>")),
		p(5, paragraph.TypeNumberedListItem, 0, txt("step")),
		p(6, paragraph.TypeParagraph, 0, txt("# not a heading")),
		p(7, paragraph.TypeParagraph, 0, txt("2. not a list")),
		p(8, paragraph.TypeHeading, 1, txt("[]")),
		p(9, paragraph.TypeParagraph, 0, txt("line\nbreak")),
	}

	assert.Equal(t, []string{
		"## Title <b>bold</b>",
		"",
		"{.image}",
		"filename: a.png",
		`* item \<one>`,
		"1. step",
		`\# not a heading`,
		`\2. not a list`,
		"# []",
		"line<br>break",
	}, Serialize(paragraphs))
}

func TestLoadFromTextBuildsTree(t *testing.T) {
	text := strings.Join([]string{
		"## Intro",
		"First paragraph.",
		"",
		"{.image}",
		"filename: chart.png",
		"alt: A chart",
		"that continues",
		"{}",
		"* one",
		"* two",
		"1. first",
		"---",
		"{.sticky-left}",
		"[.+left]",
		"Left text",
		"[]",
		"[.+right]",
		"{.image}",
		"filename: r.png",
		"{}",
		"[]",
		"{}",
		"{.recirc}",
		"title: More",
		"[.links]",
		"url: https://a.test",
		"url: https://b.test",
		"[]",
		"{}",
	}, "\n")

	doc := LoadFromText(text)
	require.Empty(t, doc.Root.ParseErrors())

	want := raw.Object{
		"body": raw.List{
			raw.Object{"type": raw.Scalar("heading"), "text": raw.Scalar("Intro"), "level": raw.Scalar("2")},
			raw.Object{"type": raw.Scalar("text"), "value": raw.Scalar("First paragraph.")},
			raw.Object{"type": raw.Scalar("image"), "filename": raw.Scalar("chart.png"), "alt": raw.Scalar("A chart<br>that continues")},
			raw.Object{"type": raw.Scalar("list"), "items": raw.List{raw.Scalar("one"), raw.Scalar("two")}},
			raw.Object{"type": raw.Scalar("numbered-list"), "items": raw.List{raw.Scalar("first")}},
			raw.Object{"type": raw.Scalar("horizontal-rule")},
			raw.Object{
				"type": raw.Scalar("sticky-left"),
				"left": raw.List{raw.Object{"type": raw.Scalar("text"), "value": raw.Scalar("Left text")}},
				"right": raw.List{
					raw.Object{"type": raw.Scalar("image"), "filename": raw.Scalar("r.png")},
				},
			},
			raw.Object{
				"type":  raw.Scalar("recirc"),
				"title": raw.Scalar("More"),
				"links": raw.List{
					raw.Object{"url": raw.Scalar("https://a.test")},
					raw.Object{"url": raw.Scalar("https://b.test")},
				},
			},
		},
	}
	assert.True(t, raw.Equal(want, doc.Root), "got %#v", doc.Root)

	assert.Equal(t, paragraph.Range{Start: 3, End: 7}, doc.Ranges["body/2"])
	assert.Equal(t, paragraph.Range{Start: 8, End: 9}, doc.Ranges["body/3"])
	assert.Equal(t, paragraph.Range{Start: 12, End: 21}, doc.Ranges["body/6"])
	assert.Equal(t, paragraph.Range{Start: 14, End: 14}, doc.Ranges["body/6/left/0"])
	assert.Equal(t, paragraph.Range{Start: 17, End: 19}, doc.Ranges["body/6/right/0"])
}

func TestLoadToleratesMalformedLines(t *testing.T) {
	doc := LoadFromText(strings.Join([]string{
		"{}",
		"[]",
		"{.image}",
		"stray words",
		"{.chart}",
		"[.items]",
		"{}",
		"{.aside}",
		"caption: open",
	}, "\n"))

	assert.Equal(t, []string{
		"line 1: unexpected {}",
		"line 2: unexpected []",
	}, warnings(t, doc.Root))

	body := doc.Root.List("body")
	require.Len(t, body, 2)
	image := body[0].(raw.Object)
	assert.Equal(t, "image", image.Type())
	assert.Equal(t, []string{
		`line 4: stray text in {.image} block: "stray words"`,
		"line 5: {.chart} is only allowed in a freeform array",
		"line 7: [.items] closed by {}",
	}, warnings(t, image))

	aside := body[1].(raw.Object)
	assert.Equal(t, "aside", aside.Type())
	assert.Equal(t, []string{"end of document: unclosed {.aside}"}, warnings(t, aside))
	assert.Equal(t, paragraph.Range{Start: 7, End: 8}, doc.Ranges["body/1"])
}

func warnings(t *testing.T, obj raw.Object) []string {
	t.Helper()
	var messages []string
	for _, e := range obj.ParseErrors() {
		assert.True(t, e.IsWarning)
		messages = append(messages, e.Message)
	}
	return messages
}

func TestWarningsAttachToInnermostBlock(t *testing.T) {
	doc := LoadFromLines([]string{
		"{.aside}",
		"caption: hi",
		"",
		"stray words",
		"{.callout}",
		"[.+content]",
		"[.links]",
		"loose",
		"{}",
		"[.refs]",
	})

	body := doc.Root.List("body")
	require.Len(t, body, 1)
	aside := body[0].(raw.Object)
	assert.Equal(t, []string{
		`line 4: stray text in {.aside} block: "stray words"`,
		"line 5: {.callout} is only allowed in a freeform array",
		`line 8: stray text in [.links] array: "loose"`,
		"line 9: [.links] closed by {}",
		"line 9: [.content] closed by {}",
	}, warnings(t, aside))
	assert.Equal(t, "hi", aside.Text("caption"))

	// no block is open for the root-level array
	assert.Equal(t, []string{"end of document: unclosed [.refs]"}, warnings(t, doc.Root))
}

func TestUnclosedArrayWarnsOnEnclosingBlock(t *testing.T) {
	doc := LoadFromLines([]string{"{.recirc}", "[.links]", "* https://a.test"})

	body := doc.Root.List("body")
	require.Len(t, body, 1)
	recirc := body[0].(raw.Object)
	assert.Equal(t, []string{
		"end of document: unclosed [.links]",
		"end of document: unclosed {.recirc}",
	}, warnings(t, recirc))
	assert.Empty(t, doc.Root.ParseErrors())
}

func TestRootBodyArrayIsReserved(t *testing.T) {
	doc := LoadFromLines([]string{"[.+body]", "kept", "{.aside}", "[.+body]", "inner", "[]", "{}"})

	assert.Equal(t, []string{`line 1: array name "body" is reserved`}, warnings(t, doc.Root))
	body := doc.Root.List("body")
	require.Len(t, body, 2)
	assert.Equal(t, "kept", body[0].(raw.Object).Text("value"))

	aside := body[1].(raw.Object)
	assert.Empty(t, aside.ParseErrors())
	inner := aside.List("body")
	require.Len(t, inner, 1)
	assert.Equal(t, "inner", inner[0].(raw.Object).Text("value"))
}

func TestFreeformKeyLines(t *testing.T) {
	doc := LoadFromLines([]string{
		"{.callout}",
		"[.+content]",
		"text: hello",
		"note: kept",
		"continues separately",
		"type: nope",
		"[]",
		"{}",
	})

	body := doc.Root.List("body")
	require.Len(t, body, 1)
	callout := body[0].(raw.Object)
	want := raw.List{
		raw.Object{"type": raw.Scalar("text"), "value": raw.Scalar("hello")},
		raw.Object{"type": raw.Scalar("note"), "value": raw.Scalar("kept")},
		raw.Object{"type": raw.Scalar("text"), "value": raw.Scalar("continues separately")},
	}
	assert.True(t, raw.Equal(want, callout.List("content")), "got %#v", callout.List("content"))
	assert.Equal(t, []string{`line 6: key "type" is reserved`}, warnings(t, callout))
	assert.Equal(t, paragraph.Range{Start: 3, End: 3}, doc.Ranges["body/0/content/1"])
}

func TestSplitKey(t *testing.T) {
	key, rest, ok := SplitKey([]span.Span{span.Formatted{Style: span.Bold, Children: []span.Span{txt("caption:")}}, txt(" Hello")})
	require.True(t, ok)
	assert.Equal(t, "caption", key)
	assert.Equal(t, "Hello", span.PlainText(rest))

	key, rest, ok = SplitKey([]span.Span{txt("alt :"), span.Formatted{Style: span.Italic, Children: []span.Span{txt(" a chart")}}})
	require.True(t, ok)
	assert.Equal(t, "alt", key)
	assert.Equal(t, "<i>a chart</i>", span.Encode(rest))

	for _, in := range []string{"Caption: upper", "no key here", ": empty", "1st: digit"} {
		_, _, ok := SplitKey([]span.Span{txt(in)})
		assert.False(t, ok, in)
	}
}

func TestFormattedKeyIsRecognised(t *testing.T) {
	paragraphs := []paragraph.Paragraph{
		p(0, paragraph.TypeParagraph, 0, txt("{.aside}")),
		p(1, paragraph.TypeParagraph, 0, span.Formatted{Style: span.Bold, Children: []span.Span{txt("caption:")}}, txt(" Hello")),
		p(2, paragraph.TypeParagraph, 0, txt("{}")),
	}
	assert.Equal(t, "caption: Hello", Serialize(paragraphs)[1])

	doc := Legacy{}.Parse(paragraphs)
	assert.Empty(t, doc.Root.ParseErrors())
	body := doc.Root.List("body")
	require.Len(t, body, 1)
	aside := body[0].(raw.Object)
	assert.Equal(t, "Hello", aside.Text("caption"))
	assert.Empty(t, aside.ParseErrors())
}

func TestSkipAndIgnore(t *testing.T) {
	doc := LoadFromText(strings.Join([]string{
		"kept",
		":skip",
		"{.image}",
		":endskip",
		"also kept",
		":ignore",
		"{.chart}",
	}, "\n"))

	require.Empty(t, doc.Root.ParseErrors())
	body := doc.Root.List("body")
	require.Len(t, body, 2)
	assert.Equal(t, "kept", body[0].(raw.Object).Text("value"))
	assert.Equal(t, "also kept", body[1].(raw.Object).Text("value"))
}

func TestStyledControlLineIsFlagged(t *testing.T) {
	doc := LoadFromLines([]string{"## {.image}", "filename: x.png", "* {}"})

	body := doc.Root.List("body")
	require.Len(t, body, 1)
	image := body[0].(raw.Object)
	assert.Equal(t, "x.png", image.Text("filename"))
	assert.Equal(t, []string{`line 1: styled paragraph "{.image}" read as a control line`}, warnings(t, doc.Root))
	assert.Equal(t, []string{`line 3: styled paragraph "{}" read as a control line`}, warnings(t, image))
}

func TestLegacyRoundTripsSerializedParagraphs(t *testing.T) {
	paragraphs := []paragraph.Paragraph{
		p(0, paragraph.TypeParagraph, 0, txt("# literal hash")),
		p(1, paragraph.TypeParagraph, 0, txt(`back\slash`)),
	}
	doc := Legacy{}.Parse(paragraphs)
	body := doc.Root.List("body")
	require.Len(t, body, 2)
	assert.Equal(t, "# literal hash", body[0].(raw.Object).Text("value"))
	assert.Equal(t, `back\\slash`, body[1].(raw.Object).Text("value"))
}
