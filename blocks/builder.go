package blocks

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rgonek/docblocks/raw"
	"github.com/rgonek/docblocks/span"
)

type parseFunc func(f *fields) Block

// parsers maps a block type tag to its builder.
var parsers map[string]parseFunc

func init() {
	parsers = map[string]parseFunc{
		"text":                 parseParagraph,
		"heading":              parseHeading,
		"image":                parseImage,
		"chart":                parseChart,
		"recirc":               parseRecirc,
		"sticky-left":          parseColumns,
		"sticky-right":         parseColumns,
		"side-by-side":         parseColumns,
		"pull-quote":           parsePullQuote,
		"list":                 parseList,
		"numbered-list":        parseNumberedList,
		"html":                 parseHTML,
		"key-insights":         parseKeyInsights,
		"homepage-intro":       parseHomepageIntro,
		"horizontal-rule":      func(*fields) Block { return &HorizontalRule{} },
		"aside":                parseAside,
		"callout":              parseCallout,
		"prominent-link":       parseProminentLink,
		"expandable-paragraph": func(f *fields) Block { return &ExpandableParagraph{Content: f.requiredBlocks("content")} },
		"gray-section":         func(f *fields) Block { return &GraySection{Content: f.requiredBlocks("content")} },
		"blockquote":           parseBlockquote,
	}
}

// KnownTypes returns the recognized block type tags.
func KnownTypes() []string {
	out := make([]string, 0, len(parsers))
	for k := range parsers {
		out = append(out, k)
	}
	return out
}

// Builder converts raw trees into enriched documents.
type Builder struct {
	documentType string
	overrides    EnricherTable
	enrichers    EnricherTable
}

// Option configures a Builder.
type Option func(*Builder)

// WithDocumentType selects the enricher strategy for a document type.
func WithDocumentType(documentType string) Option {
	return func(b *Builder) {
		b.documentType = documentType
	}
}

// WithEnrichers adds enrichers. Entries replace those of the document type;
// a nil entry disables enrichment for that block type.
func WithEnrichers(table EnricherTable) Option {
	return func(b *Builder) {
		for k, v := range table {
			b.overrides[k] = v
		}
	}
}

// NewBuilder returns a Builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{overrides: EnricherTable{}, enrichers: EnricherTable{}}
	for _, opt := range opts {
		opt(b)
	}
	for k, v := range EnrichersFor(b.documentType) {
		b.enrichers[k] = v
	}
	for k, v := range b.overrides {
		if v == nil {
			delete(b.enrichers, k)
			continue
		}
		b.enrichers[k] = v
	}
	return b
}

// DocumentType returns the document type the builder enriches for.
func (b *Builder) DocumentType() string { return b.documentType }

// Build converts a normalized raw document. Diagnostics on the root object
// become a leading DocumentIssues block.
func (b *Builder) Build(doc raw.Document) Document {
	var out Document
	if doc.Root == nil {
		return out
	}
	if errs := doc.Root.ParseErrors(); len(errs) > 0 {
		issues := &DocumentIssues{}
		for _, e := range errs {
			issues.ParseErrors = append(issues.ParseErrors, ParseError{Message: e.Message, IsWarning: e.IsWarning})
		}
		out.Blocks = append(out.Blocks, issues)
	}
	for i, v := range doc.Root.List(raw.KeyBody) {
		out.Blocks = append(out.Blocks, b.BuildBlock(fmt.Sprintf("%s/%d", raw.KeyBody, i), v))
	}
	for _, v := range doc.Root.List(raw.KeyRefs) {
		obj, ok := v.(raw.Object)
		if !ok {
			continue
		}
		n, _ := strconv.Atoi(obj.Text("number"))
		out.Refs = append(out.Refs, Ref{
			ID:      obj.Text("id"),
			Number:  n,
			Content: span.ParseMarkup(obj.Text("content")),
		})
	}
	return out
}

// BuildBlock converts one raw block. Problems are recorded on the returned
// block and never affect siblings.
func (b *Builder) BuildBlock(path string, v raw.Value) Block {
	obj, ok := v.(raw.Object)
	if !ok {
		u := &Unknown{Raw: raw.Clone(v)}
		u.Path = path
		u.addError("block is not an object")
		return u
	}

	tag := obj.Type()
	parse, ok := parsers[tag]
	if !ok {
		u := &Unknown{Tag: tag, Raw: raw.Clone(obj)}
		u.Path = path
		u.copyRaw(obj)
		u.addWarning("unknown block type: " + tag)
		return u
	}

	m := &Meta{Path: path}
	f := &fields{b: b, obj: obj, path: path, meta: m}
	block := parse(f)
	if c, ok := block.(*Columns); ok {
		c.Kind = tag
	}

	bm := block.meta()
	bm.Path = path
	for _, e := range obj.ParseErrors() {
		bm.ParseErrors = append(bm.ParseErrors, ParseError{Message: e.Message, IsWarning: e.IsWarning})
	}
	bm.ParseErrors = append(bm.ParseErrors, m.ParseErrors...)

	for _, r := range ownRefs(block) {
		if r.Number == 0 {
			bm.addWarning("unresolved reference: " + r.RawID)
		}
	}

	if enrich, ok := b.enrichers[tag]; ok {
		diagnostics := block.meta().ParseErrors
		enriched, errs := enrich(block)
		if enriched != nil {
			em := enriched.meta()
			em.Path = path
			em.ParseErrors = diagnostics
			for _, e := range errs {
				if e.IsWarning {
					em.addWarning(e.Message)
					continue
				}
				em.ParseErrors = append(em.ParseErrors, e)
			}
			block = enriched
		}
	}
	return block
}

func (u *Unknown) copyRaw(obj raw.Object) {
	for _, e := range obj.ParseErrors() {
		u.ParseErrors = append(u.ParseErrors, ParseError{Message: e.Message, IsWarning: e.IsWarning})
	}
}

func parseParagraph(f *fields) Block {
	return &Paragraph{Spans: f.requiredSpans("value")}
}

func parseHeading(f *fields) Block {
	h := &Heading{Text: f.requiredSpans("text"), Level: f.integer("level", 2)}
	if h.Level < 1 || h.Level > 6 {
		f.meta.addError(fmt.Sprintf("invalid level: %d is outside 1..6", h.Level))
		h.Level = min(max(h.Level, 1), 6)
	}
	return h
}

func parseImage(f *fields) Block {
	return &Image{
		Filename: f.requiredPlain("filename"),
		Alt:      f.plain("alt"),
		Caption:  f.spans("caption"),
		Size:     f.enum("size", "wide", "narrow", "wide"),
	}
}

func parseChart(f *fields) Block {
	c := &Chart{
		URL:     f.requiredPlain("url"),
		Caption: f.spans("caption"),
		Size:    f.enum("size", "wide", "narrow", "wide"),
		Height:  f.integer("height", 0),
	}
	if c.URL != "" {
		if err := validateURL(c.URL); err != nil {
			f.meta.addError(fmt.Sprintf("invalid url: %v", err))
		}
	}
	if c.Height < 0 {
		f.meta.addError(fmt.Sprintf("invalid height: %d must not be negative", c.Height))
		c.Height = 0
	}
	return c
}

func validateURL(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q is not an http(s) URL", s)
	}
	if u.Host == "" {
		return fmt.Errorf("%q has no host", s)
	}
	return nil
}

func parseRecirc(f *fields) Block {
	r := &Recirc{Title: f.requiredSpans("title")}
	items := f.objects("links", "url")
	if len(items) == 0 {
		f.missing("links")
	}
	for i, item := range items {
		link := RecircLink{URL: f.sub(item, fmt.Sprintf("%s/links/%d", f.path, i)).plain("url")}
		if link.URL == "" {
			f.meta.addError(fmt.Sprintf("missing required field: links[%d].url", i))
			continue
		}
		r.Links = append(r.Links, link)
	}
	return r
}

func parseColumns(f *fields) Block {
	return &Columns{Left: f.requiredBlocks("left"), Right: f.requiredBlocks("right")}
}

func parsePullQuote(f *fields) Block {
	return &PullQuote{Text: f.requiredSpans("text"), Align: f.enum("align", "", "left", "right")}
}

func listItems(f *fields) [][]span.Span {
	list := f.obj.List("items")
	if len(list) == 0 {
		f.missing("items")
		return nil
	}
	var out [][]span.Span
	for i, v := range list {
		s, ok := v.(raw.Scalar)
		if !ok {
			f.meta.addError(fmt.Sprintf("invalid items item %d: expected text", i+1))
			continue
		}
		out = append(out, span.ParseMarkup(string(s)))
	}
	return out
}

func parseList(f *fields) Block         { return &List{Items: listItems(f)} }
func parseNumberedList(f *fields) Block { return &NumberedList{Items: listItems(f)} }

func parseHTML(f *fields) Block {
	h := &HTML{Value: f.requiredPlain("value")}
	for _, problem := range checkHTML(h.Value) {
		f.meta.addWarning(problem)
	}
	return h
}

func parseKeyInsights(f *fields) Block {
	k := &KeyInsights{Heading: f.requiredPlain("heading")}
	items := f.objects("insights", "")
	if len(items) == 0 {
		f.missing("insights")
	}
	for i, item := range items {
		sub := f.sub(item, fmt.Sprintf("%s/insights/%d", f.path, i))
		insight := Insight{Title: sub.plain("title"), Content: sub.blocks("content")}
		if insight.Title == "" {
			f.meta.addError(fmt.Sprintf("missing required field: insights[%d].title", i))
		}
		if len(insight.Content) == 0 {
			f.meta.addError(fmt.Sprintf("missing required field: insights[%d].content", i))
		}
		k.Insights = append(k.Insights, insight)
	}
	return k
}

func parseHomepageIntro(f *fields) Block {
	h := &HomepageIntro{}
	for i, item := range f.objects("featured-work", "url") {
		sub := f.sub(item, fmt.Sprintf("%s/featured-work/%d", f.path, i))
		work := FeaturedWork{
			Type:        strings.ToLower(sub.plain("type")),
			URL:         sub.plain("url"),
			Title:       sub.plain("title"),
			Description: sub.plain("description"),
			Authors:     sub.plain("authors"),
			Filename:    sub.plain("filename"),
			Kicker:      sub.plain("kicker"),
		}
		if work.URL == "" {
			f.meta.addError(fmt.Sprintf("missing required field: featured-work[%d].url", i))
		}
		h.FeaturedWork = append(h.FeaturedWork, work)
	}
	return h
}

func parseAside(f *fields) Block {
	return &Aside{Caption: f.requiredSpans("caption"), Position: f.enum("position", "right", "left", "right")}
}

func parseCallout(f *fields) Block {
	return &Callout{Title: f.plain("title"), Content: f.requiredBlocks("content")}
}

func parseProminentLink(f *fields) Block {
	p := &ProminentLink{URL: f.requiredPlain("url"), Title: f.plain("title"), Description: f.plain("description")}
	if p.URL != "" && !strings.HasPrefix(p.URL, "/") {
		if err := validateURL(p.URL); err != nil {
			f.meta.addError(fmt.Sprintf("invalid url: %v", err))
		}
	}
	return p
}

func parseBlockquote(f *fields) Block {
	return &Blockquote{Content: f.requiredBlocks("content"), Citation: f.plain("citation")}
}
