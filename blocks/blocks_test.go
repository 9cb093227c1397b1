package blocks

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgonek/docblocks/paragraph"
	"github.com/rgonek/docblocks/raw"
	"github.com/rgonek/docblocks/span"
)

func obj(kv ...string) raw.Object {
	o := raw.Object{}
	for i := 0; i+1 < len(kv); i += 2 {
		o[kv[i]] = raw.Scalar(kv[i+1])
	}
	return o
}

func text(v string) raw.Object { return obj("type", "text", "value", v) }

func newTestBuilder(t testing.TB, opts ...Option) *Builder {
	t.Helper()
	return NewBuilder(opts...)
}

func messages(b Block) []string {
	var out []string
	for _, e := range b.BlockMeta().ParseErrors {
		out = append(out, e.Message)
	}
	return out
}

func TestBuildBlockVariants(t *testing.T) {
	b := newTestBuilder(t)

	tests := []struct {
		name string
		in   raw.Object
		want Block
	}{
		{
			name: "paragraph",
			in:   text("Hello <b>world</b>."),
			want: &Paragraph{Meta: Meta{Path: "p"}, Spans: []span.Span{
				span.Text{Value: "Hello "},
				span.Formatted{Style: span.Bold, Children: []span.Span{span.Text{Value: "world"}}},
				span.Text{Value: "."},
			}},
		},
		{
			name: "heading default level",
			in:   obj("type", "heading", "text", "Intro"),
			want: &Heading{Meta: Meta{Path: "p"}, Text: []span.Span{span.Text{Value: "Intro"}}, Level: 2},
		},
		{
			name: "image defaults",
			in:   obj("type", "image", "filename", "<b>chart.png</b>", "alt", "A chart"),
			want: &Image{Meta: Meta{Path: "p"}, Filename: "chart.png", Alt: "A chart", Size: "wide"},
		},
		{
			name: "chart",
			in:   obj("type", "chart", "url", "https://example.test/grapher/x", "height", "400", "size", "Narrow"),
			want: &Chart{Meta: Meta{Path: "p"}, URL: "https://example.test/grapher/x", Height: 400, Size: "narrow"},
		},
		{
			name: "horizontal rule",
			in:   obj("type", "horizontal-rule"),
			want: &HorizontalRule{Meta: Meta{Path: "p"}},
		},
		{
			name: "prominent link relative url",
			in:   obj("type", "prominent-link", "url", "/energy", "title", "Energy"),
			want: &ProminentLink{Meta: Meta{Path: "p"}, URL: "/energy", Title: "Energy"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.BuildBlock("p", tt.in))
		})
	}
}

func TestBuildBlockValidation(t *testing.T) {
	b := newTestBuilder(t)

	tests := []struct {
		name string
		in   raw.Object
		want []string
	}{
		{
			name: "missing required field",
			in:   obj("type", "image"),
			want: []string{"missing required field: filename"},
		},
		{
			name: "invalid enum",
			in:   obj("type", "image", "filename", "a.png", "alt", "x", "size", "huge"),
			want: []string{`invalid size: "huge" (expected one of narrow, wide)`},
		},
		{
			name: "chart url and height",
			in:   obj("type", "chart", "url", "ftp://example.test/x", "height", "tall"),
			want: []string{
				`invalid height: "tall" is not a number`,
				`invalid url: "ftp://example.test/x" is not an http(s) URL`,
			},
		},
		{
			name: "heading level out of range",
			in:   obj("type", "heading", "text", "x", "level", "9"),
			want: []string{"invalid level: 9 is outside 1..6"},
		},
		{
			name: "columns need both sides",
			in:   raw.Object{"type": raw.Scalar("sticky-left"), "left": raw.List{text("a")}},
			want: []string{"missing required field: right"},
		},
		{
			name: "list of objects",
			in:   raw.Object{"type": raw.Scalar("list"), "items": raw.List{obj("a", "b")}},
			want: []string{"invalid items item 1: expected text"},
		},
		{
			name: "html balance",
			in:   obj("type", "html", "value", "<div><p>x</div></span>"),
			want: []string{"html: unclosed <p>", "html: unexpected </span>"},
		},
		{
			name: "carried raw diagnostics",
			in: raw.Object{
				"type":  raw.Scalar("text"),
				"value": raw.Scalar("x"),
				"parseErrors": raw.List{
					raw.Object{"message": raw.Scalar("line 3: stray text"), "severity": raw.Scalar("warning")},
				},
			},
			want: []string{"line 3: stray text"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, messages(b.BuildBlock("p", tt.in)))
		})
	}
}

func TestUnknownBlockType(t *testing.T) {
	in := obj("type", "bogus-type", "value", "x")
	got := newTestBuilder(t).BuildBlock("body/0", in)

	u, ok := got.(*Unknown)
	require.True(t, ok)
	assert.Equal(t, "bogus-type", u.BlockType())
	assert.Equal(t, []ParseError{{Message: "unknown block type: bogus-type", IsWarning: true}}, u.ParseErrors)
	assert.True(t, raw.Equal(in, u.Raw))
	assert.False(t, u.HasErrors())
}

func TestErrorsStayLocal(t *testing.T) {
	doc := raw.Document{Root: raw.Object{
		"body": raw.List{
			text("before"),
			raw.Object{
				"type":    raw.Scalar("callout"),
				"title":   raw.Scalar("Box"),
				"content": raw.List{obj("type", "image"), text("inside")},
			},
			text("after"),
		},
	}}

	out := newTestBuilder(t).Build(doc)
	require.Len(t, out.Blocks, 3)

	assert.Empty(t, out.Blocks[0].BlockMeta().ParseErrors)
	assert.Empty(t, out.Blocks[2].BlockMeta().ParseErrors)

	callout := out.Blocks[1].(*Callout)
	assert.Empty(t, callout.ParseErrors)
	require.Len(t, callout.Content, 2)
	assert.Equal(t, []string{"missing required field: filename"}, messages(callout.Content[0]))
	assert.Equal(t, "body/1/content/0", callout.Content[0].BlockMeta().Path)
	assert.Empty(t, callout.Content[1].BlockMeta().ParseErrors)

	diags := Diagnostics(out.Blocks)
	require.Len(t, diags, 1)
	assert.Equal(t, "image", diags[0].Type)
}

func TestBuildDocumentIssuesAndRefs(t *testing.T) {
	root := raw.Object{
		"body": raw.List{text(`See<ref id="a" n="1"></ref> and<ref id="b"></ref>`)},
		"refs": raw.List{
			raw.Object{"id": raw.Scalar("a"), "number": raw.Scalar("1"), "content": raw.Scalar("Source <i>A</i>")},
		},
	}
	root.AddParseError("line 9: unclosed {.aside}", true)

	out := newTestBuilder(t).Build(raw.Document{Root: root})
	require.Len(t, out.Blocks, 2)

	issues, ok := out.Blocks[0].(*DocumentIssues)
	require.True(t, ok)
	assert.Equal(t, []string{"line 9: unclosed {.aside}"}, messages(issues))

	assert.Equal(t, []string{"unresolved reference: b"}, messages(out.Blocks[1]))
	require.Len(t, out.Refs, 1)
	assert.Equal(t, "a", out.Refs[0].ID)
	assert.Equal(t, 1, out.Refs[0].Number)
	assert.Equal(t, "Source A", span.PlainText(out.Refs[0].Content))

	assert.Equal(t, []span.Ref{{RawID: "a", Number: 1}, {RawID: "b"}}, Refs(out.Blocks))
}

func TestNestedStructures(t *testing.T) {
	in := raw.Object{
		"type":    raw.Scalar("key-insights"),
		"heading": raw.Scalar("Insights"),
		"insights": raw.List{
			raw.Object{"title": raw.Scalar("One"), "content": raw.List{text("first")}},
			raw.Object{"content": raw.List{text("second")}},
		},
	}
	got := newTestBuilder(t).BuildBlock("body/2", in).(*KeyInsights)

	require.Len(t, got.Insights, 2)
	assert.Equal(t, "body/2/insights/1/content/0", got.Insights[1].Content[0].BlockMeta().Path)
	assert.Equal(t, []string{"missing required field: insights[1].title"}, messages(got))

	recirc := newTestBuilder(t).BuildBlock("r", raw.Object{
		"type":  raw.Scalar("recirc"),
		"title": raw.Scalar("More"),
		"links": raw.List{raw.Scalar("https://a.test"), raw.Object{"url": raw.Scalar("https://b.test")}},
	}).(*Recirc)
	assert.Equal(t, []RecircLink{{URL: "https://a.test"}, {URL: "https://b.test"}}, recirc.Links)
	assert.Empty(t, recirc.ParseErrors)
}

func TestEnrichers(t *testing.T) {
	intro := raw.Object{
		"type": raw.Scalar("homepage-intro"),
		"featured-work": raw.List{
			raw.Object{"type": raw.Scalar("article"), "url": raw.Scalar("https://example.test/life-expectancy")},
		},
	}

	t.Run("homepage", func(t *testing.T) {
		got := newTestBuilder(t, WithDocumentType(DocumentTypeHomepage)).BuildBlock("h", intro).(*HomepageIntro)
		require.Len(t, got.FeaturedWork, 1)
		assert.Equal(t, "Article", got.FeaturedWork[0].Kicker)
		assert.Equal(t, "Life expectancy", got.FeaturedWork[0].Title)
		assert.Equal(t, []string{"featured work without title: https://example.test/life-expectancy"}, messages(got))
	})

	t.Run("article leaves homepage intro alone", func(t *testing.T) {
		got := newTestBuilder(t, WithDocumentType(DocumentTypeArticle)).BuildBlock("h", intro).(*HomepageIntro)
		assert.Empty(t, got.FeaturedWork[0].Kicker)
	})

	t.Run("image alt from caption", func(t *testing.T) {
		img := obj("type", "image", "filename", "a.png", "caption", "Deaths by <i>cause</i>")
		got := newTestBuilder(t, WithDocumentType(DocumentTypeArticle)).BuildBlock("i", img).(*Image)
		assert.Equal(t, "Deaths by cause", got.Alt)
		assert.Empty(t, got.ParseErrors)
	})

	t.Run("override and disable", func(t *testing.T) {
		img := obj("type", "image", "filename", "a.png")
		b := newTestBuilder(t,
			WithDocumentType(DocumentTypeArticle),
			WithEnrichers(EnricherTable{"image": nil}),
		)
		assert.Empty(t, b.BuildBlock("i", img).BlockMeta().ParseErrors)

		custom := newTestBuilder(t, WithEnrichers(EnricherTable{
			"image": func(b Block) (Block, []ParseError) {
				return b, []ParseError{{Message: "custom"}}
			},
		}))
		got := custom.BuildBlock("i", img)
		assert.Equal(t, []string{"custom"}, messages(got))
		assert.True(t, got.BlockMeta().HasErrors())
	})
}

func TestAttachSourceRanges(t *testing.T) {
	doc := newTestBuilder(t).Build(raw.Document{Root: raw.Object{
		"body": raw.List{
			text("a"),
			raw.Object{"type": raw.Scalar("gray-section"), "content": raw.List{text("b")}},
		},
	}})
	ranges := map[string]paragraph.Range{
		"body/0":           {Start: 0, End: 0},
		"body/1":           {Start: 2, End: 5},
		"body/1/content/0": {Start: 3, End: 3},
	}

	out := AttachSourceRanges(doc, ranges)

	assert.Equal(t, &paragraph.Range{Start: 0, End: 0}, out.Blocks[0].BlockMeta().SourceRange)
	section := out.Blocks[1].(*GraySection)
	assert.Equal(t, &paragraph.Range{Start: 2, End: 5}, section.SourceRange)
	assert.Equal(t, &paragraph.Range{Start: 3, End: 3}, section.Content[0].BlockMeta().SourceRange)

	assert.Nil(t, doc.Blocks[0].BlockMeta().SourceRange, "input must not be modified")
}

func TestWalkSpans(t *testing.T) {
	b := newTestBuilder(t).BuildBlock("c", raw.Object{
		"type":    raw.Scalar("sticky-right"),
		"left":    raw.List{text("<b>left</b>")},
		"right":   raw.List{obj("type", "aside", "caption", "right")},
		"ignored": raw.Scalar("x"),
	})

	var texts []string
	WalkSpans(b, func(s span.Span) bool {
		if t, ok := s.(span.Text); ok {
			texts = append(texts, t.Value)
		}
		return true
	})
	assert.Equal(t, []string{"left", "right"}, texts)
	assert.Equal(t, "sticky-right", b.BlockType())
}

func TestMarshalBlock(t *testing.T) {
	b := newTestBuilder(t).BuildBlock("p", obj("type", "pull-quote", "text", "Quote", "align", "left"))
	data, err := json.Marshal(Blocks{b, &HorizontalRule{}})
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"type":"pull-quote","text":[{"text":"Quote"}],"align":"left"},
		{"type":"horizontal-rule"}
	]`, string(data))
}

func TestCloneIsDeep(t *testing.T) {
	orig := &Callout{Title: "t", Content: Blocks{&Paragraph{Spans: []span.Span{span.Text{Value: "x"}}}}}
	c := Clone(orig).(*Callout)
	c.Content[0].(*Paragraph).addWarning("changed")
	assert.Empty(t, orig.Content[0].BlockMeta().ParseErrors)
}
