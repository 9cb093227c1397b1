// Package config loads the docblocks CLI configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rgonek/docblocks/internal/yamlutil"
	"github.com/rgonek/docblocks/markdown"
)

// DefaultPath is read when no --config flag is given. A missing default
// file is not an error.
const DefaultPath = "docblocks.yaml"

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrInvalidConfig  = errors.New("invalid config")
)

// Config holds the CLI configuration. Flags override file values.
type Config struct {
	Preset       string         `yaml:"preset"`       // markdown preset name
	Path         string         `yaml:"path"`         // "paragraph" or "archie"
	DocumentType string         `yaml:"documentType"` // selects the enricher table
	Workers      int            `yaml:"workers"`      // 0 = derived from GOMAXPROCS
	Log          LogConfig      `yaml:"log"`
	Markdown     MarkdownConfig `yaml:"markdown"`
	Google       GoogleConfig   `yaml:"google"`
}

// LogConfig defines logging options.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// MarkdownConfig overrides individual options of the selected preset.
// Empty fields keep the preset value.
type MarkdownConfig struct {
	BulletMarker     string `yaml:"bulletMarker"`
	OrderedListStyle string `yaml:"orderedListStyle"`
	HeadingOffset    int    `yaml:"headingOffset"`
	RefStyle         string `yaml:"refStyle"`
	HTMLStyle        string `yaml:"htmlStyle"`
	UnderlineStyle   string `yaml:"underlineStyle"`
	SubSupStyle      string `yaml:"subSupStyle"`
	ResolutionMode   string `yaml:"resolutionMode"`
}

// GoogleConfig defines Google Docs API access.
type GoogleConfig struct {
	TokenEnv          string        `yaml:"tokenEnv"`          // env var holding the OAuth token (default DOCBLOCKS_TOKEN)
	RequestsPerSecond float64       `yaml:"requestsPerSecond"` // 0 = client default
	MaxAttempts       int           `yaml:"maxAttempts"`       // 0 = client default
	Timeout           time.Duration `yaml:"timeout"`           // per request, 0 = none
}

// Load reads the config at path. An empty path tries DefaultPath and returns
// an empty Config when that file does not exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			if !explicit {
				return &Config{}, nil
			}
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes and validates config data. Unknown fields are rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that can be verified without building a converter.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfig, c.Workers)
	}
	if len([]rune(c.Markdown.BulletMarker)) > 1 {
		return fmt.Errorf("%w: markdown.bulletMarker must be a single character, got %q", ErrInvalidConfig, c.Markdown.BulletMarker)
	}
	if c.Google.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: google.requestsPerSecond must not be negative", ErrInvalidConfig)
	}
	if c.Google.MaxAttempts < 0 {
		return fmt.Errorf("%w: google.maxAttempts must not be negative", ErrInvalidConfig)
	}
	if _, err := markdown.Preset(c.Preset); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// MarkdownConfig resolves the preset named by preset (or c.Preset when empty)
// and applies the file overrides on top.
func (c *Config) MarkdownConfig(preset string) (markdown.Config, error) {
	if strings.TrimSpace(preset) == "" {
		preset = c.Preset
	}
	cfg, err := markdown.Preset(preset)
	if err != nil {
		return markdown.Config{}, err
	}

	m := c.Markdown
	if r := []rune(m.BulletMarker); len(r) == 1 {
		cfg.BulletMarker = r[0]
	}
	if m.OrderedListStyle != "" {
		cfg.OrderedListStyle = markdown.OrderedListStyle(m.OrderedListStyle)
	}
	if m.HeadingOffset != 0 {
		cfg.HeadingOffset = m.HeadingOffset
	}
	if m.RefStyle != "" {
		cfg.RefStyle = markdown.RefStyle(m.RefStyle)
	}
	if m.HTMLStyle != "" {
		cfg.HTMLStyle = markdown.HTMLStyle(m.HTMLStyle)
	}
	if m.UnderlineStyle != "" {
		cfg.UnderlineStyle = markdown.UnderlineStyle(m.UnderlineStyle)
	}
	if m.SubSupStyle != "" {
		cfg.SubSupStyle = markdown.SubSupStyle(m.SubSupStyle)
	}
	if m.ResolutionMode != "" {
		cfg.ResolutionMode = markdown.ResolutionMode(m.ResolutionMode)
	}
	return cfg, nil
}

// TokenEnv returns the environment variable that holds the API token.
func (c *Config) TokenEnv() string {
	if c.Google.TokenEnv != "" {
		return c.Google.TokenEnv
	}
	return "DOCBLOCKS_TOKEN"
}
