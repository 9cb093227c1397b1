package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rgonek/docblocks/internal/config"
	"github.com/rgonek/docblocks/markdown"
	"github.com/rgonek/docblocks/pipeline"
)

// pipelineFlags are shared by convert and compare.
type pipelineFlags struct {
	preset       string
	path         string
	documentType string
	allowHTML    bool
	strict       bool
}

func (f *pipelineFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.preset, "preset", "", "Preset: balanced|plain|review")
	cmd.Flags().StringVar(&f.path, "path", "", "Parser path: paragraph|archie")
	cmd.Flags().StringVar(&f.documentType, "document-type", "", "Document type selecting the enrichers: article|homepage")
	cmd.Flags().BoolVar(&f.allowHTML, "allow-html", false, "Enable HTML output for underline and sub/superscript")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "Fail on unresolved links instead of warning")
}

// resolveOptions layers flags over the config file over the preset.
func resolveOptions(cfg *config.Config, f pipelineFlags) (pipeline.Options, error) {
	md, err := cfg.MarkdownConfig(f.preset)
	if err != nil {
		return pipeline.Options{}, err
	}
	if f.allowHTML {
		md.UnderlineStyle = markdown.UnderlineHTML
		md.SubSupStyle = markdown.SubSupHTML
		md.HTMLStyle = markdown.HTMLKeep
	}
	if f.strict {
		md.ResolutionMode = markdown.ResolutionStrict
	}

	path := cfg.Path
	if f.path != "" {
		path = f.path
	}
	if _, err := pipeline.ParserFor(pipeline.Path(path)); err != nil {
		return pipeline.Options{}, err
	}

	documentType := cfg.DocumentType
	if f.documentType != "" {
		documentType = f.documentType
	}

	return pipeline.Options{
		Path:         pipeline.Path(strings.ToLower(path)),
		DocumentType: documentType,
		Markdown:     md,
	}, nil
}

func validateFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return fmt.Errorf("unknown format %q (allowed: %s)", format, strings.Join(allowed, ", "))
}
