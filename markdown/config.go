package markdown

import (
	"fmt"
	"strings"
)

// OrderedListStyle controls ordered list numbering.
type OrderedListStyle string

const (
	OrderedIncremental OrderedListStyle = "incremental"
	OrderedLazy        OrderedListStyle = "lazy"
)

// RefStyle controls how reference markers are rendered.
type RefStyle string

const (
	RefFootnote RefStyle = "footnote"
	RefBracket  RefStyle = "bracket"
)

// HTMLStyle controls how html passthrough blocks are rendered.
type HTMLStyle string

const (
	HTMLKeep  HTMLStyle = "keep"
	HTMLStrip HTMLStyle = "strip"
)

// UnderlineStyle controls how underlined text is rendered.
type UnderlineStyle string

const (
	UnderlineIgnore UnderlineStyle = "ignore"
	UnderlineHTML   UnderlineStyle = "html"
)

// SubSupStyle controls how subscript/superscript text is rendered.
type SubSupStyle string

const (
	SubSupIgnore SubSupStyle = "ignore"
	SubSupHTML   SubSupStyle = "html"
	SubSupCaret  SubSupStyle = "caret"
)

// Config holds all projector configuration options.
type Config struct {
	BulletMarker     rune             `json:"bulletMarker,omitempty" yaml:"bulletMarker,omitempty"`
	OrderedListStyle OrderedListStyle `json:"orderedListStyle,omitempty" yaml:"orderedListStyle,omitempty"`
	HeadingOffset    int              `json:"headingOffset,omitempty" yaml:"headingOffset,omitempty"`
	RefStyle         RefStyle         `json:"refStyle,omitempty" yaml:"refStyle,omitempty"`
	HTMLStyle        HTMLStyle        `json:"htmlStyle,omitempty" yaml:"htmlStyle,omitempty"`
	UnderlineStyle   UnderlineStyle   `json:"underlineStyle,omitempty" yaml:"underlineStyle,omitempty"`
	SubSupStyle      SubSupStyle      `json:"subSupStyle,omitempty" yaml:"subSupStyle,omitempty"`
	ResolutionMode   ResolutionMode   `json:"resolutionMode,omitempty" yaml:"resolutionMode,omitempty"`
	LinkHook         LinkRenderHook   `json:"-" yaml:"-"`
}

func (c Config) applyDefaults() Config {
	if c.BulletMarker == 0 {
		c.BulletMarker = '-'
	}
	if c.OrderedListStyle == "" {
		c.OrderedListStyle = OrderedIncremental
	}
	if c.RefStyle == "" {
		c.RefStyle = RefFootnote
	}
	if c.HTMLStyle == "" {
		c.HTMLStyle = HTMLKeep
	}
	if c.UnderlineStyle == "" {
		c.UnderlineStyle = UnderlineIgnore
	}
	if c.SubSupStyle == "" {
		c.SubSupStyle = SubSupIgnore
	}
	if c.ResolutionMode == "" {
		c.ResolutionMode = ResolutionBestEffort
	}

	return c
}

func (c Config) clone() Config {
	cloned := c
	cloned.LinkHook = c.LinkHook
	return cloned
}

// Validate checks that config values are valid.
func (c Config) Validate() error {
	if c.BulletMarker != '-' && c.BulletMarker != '*' && c.BulletMarker != '+' {
		return fmt.Errorf("invalid bulletMarker %q: must be one of -, *, +", c.BulletMarker)
	}
	if c.OrderedListStyle != OrderedIncremental && c.OrderedListStyle != OrderedLazy {
		return fmt.Errorf("invalid orderedListStyle %q", c.OrderedListStyle)
	}
	if c.HeadingOffset < 0 || c.HeadingOffset > 5 {
		return fmt.Errorf("headingOffset must be between 0 and 5, got %d", c.HeadingOffset)
	}
	if c.RefStyle != RefFootnote && c.RefStyle != RefBracket {
		return fmt.Errorf("invalid refStyle %q", c.RefStyle)
	}
	if c.HTMLStyle != HTMLKeep && c.HTMLStyle != HTMLStrip {
		return fmt.Errorf("invalid htmlStyle %q", c.HTMLStyle)
	}
	if c.UnderlineStyle != UnderlineIgnore && c.UnderlineStyle != UnderlineHTML {
		return fmt.Errorf("invalid underlineStyle %q", c.UnderlineStyle)
	}
	if c.SubSupStyle != SubSupIgnore && c.SubSupStyle != SubSupHTML && c.SubSupStyle != SubSupCaret {
		return fmt.Errorf("invalid subSupStyle %q", c.SubSupStyle)
	}
	if c.ResolutionMode != ResolutionBestEffort && c.ResolutionMode != ResolutionStrict {
		return fmt.Errorf("invalid resolutionMode %q", c.ResolutionMode)
	}

	return nil
}

// Preset names.
const (
	PresetBalanced = "balanced"
	PresetPlain    = "plain"
	PresetReview   = "review"
)

// Preset returns the configuration registered under name. An empty name
// selects the balanced preset.
func Preset(name string) (Config, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PresetBalanced:
		return Config{}, nil
	case PresetPlain:
		return Config{
			RefStyle:       RefBracket,
			HTMLStyle:      HTMLStrip,
			UnderlineStyle: UnderlineIgnore,
			SubSupStyle:    SubSupIgnore,
		}, nil
	case PresetReview:
		return Config{
			HTMLStyle:      HTMLKeep,
			UnderlineStyle: UnderlineHTML,
			SubSupStyle:    SubSupHTML,
		}, nil
	default:
		return Config{}, fmt.Errorf("unknown preset %q (allowed: balanced, plain, review)", name)
	}
}
