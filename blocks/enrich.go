package blocks

import (
	"strings"

	"github.com/rgonek/docblocks/span"
)

// Document types with their own enricher strategy.
const (
	DocumentTypeArticle  = "article"
	DocumentTypeHomepage = "homepage"
)

// Enricher post-processes a built block. It returns the block to keep and
// any additional diagnostics for it.
type Enricher func(b Block) (Block, []ParseError)

// EnricherTable maps block type tags to enrichers.
type EnricherTable map[string]Enricher

// EnrichersFor returns the enricher strategy for a document type. Unknown
// types get an empty table.
func EnrichersFor(documentType string) EnricherTable {
	switch strings.ToLower(documentType) {
	case DocumentTypeArticle:
		return EnricherTable{
			"image": ImageAltEnricher,
			"chart": ChartCaptionEnricher,
		}
	case DocumentTypeHomepage:
		return EnricherTable{
			"homepage-intro": HomepageEnricher,
			"image":          ImageAltEnricher,
		}
	}
	return EnricherTable{}
}

var kickers = map[string]string{
	"article":           "Article",
	"topic-page":        "Topic page",
	"linear-topic-page": "Topic page",
	"data-insight":      "Data insight",
	"explorer":          "Data explorer",
	"chart":             "Chart",
}

// HomepageEnricher derives the kicker of each featured work from its type
// and falls back to the URL slug when the title is missing.
func HomepageEnricher(b Block) (Block, []ParseError) {
	h, ok := b.(*HomepageIntro)
	if !ok {
		return b, nil
	}
	var errs []ParseError
	for i := range h.FeaturedWork {
		w := &h.FeaturedWork[i]
		if w.Kicker == "" && w.Type != "" {
			k, known := kickers[w.Type]
			if !known {
				errs = append(errs, ParseError{Message: "unknown featured work type: " + w.Type, IsWarning: true})
			}
			w.Kicker = k
		}
		if w.Title == "" && w.URL != "" {
			w.Title = titleFromSlug(w.URL)
			errs = append(errs, ParseError{Message: "featured work without title: " + w.URL, IsWarning: true})
		}
	}
	return h, errs
}

func titleFromSlug(u string) string {
	u = strings.TrimRight(u, "/")
	if i := strings.LastIndexByte(u, '/'); i >= 0 {
		u = u[i+1:]
	}
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	words := strings.FieldsFunc(u, func(r rune) bool { return r == '-' || r == '_' })
	if len(words) == 0 {
		return ""
	}
	words[0] = strings.ToUpper(words[0][:1]) + words[0][1:]
	return strings.Join(words, " ")
}

// ImageAltEnricher fills a missing alt text from the caption.
func ImageAltEnricher(b Block) (Block, []ParseError) {
	img, ok := b.(*Image)
	if !ok || img.Alt != "" {
		return b, nil
	}
	if caption := strings.TrimSpace(span.PlainText(img.Caption)); caption != "" {
		img.Alt = caption
		return img, nil
	}
	return img, []ParseError{{Message: "image has no alt text: " + img.Filename, IsWarning: true}}
}

// ChartCaptionEnricher warns about charts published without a caption.
func ChartCaptionEnricher(b Block) (Block, []ParseError) {
	c, ok := b.(*Chart)
	if !ok || len(c.Caption) > 0 {
		return b, nil
	}
	return c, []ParseError{{Message: "chart has no caption: " + c.URL, IsWarning: true}}
}
