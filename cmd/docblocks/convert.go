package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rgonek/docblocks/blocks"
	"github.com/rgonek/docblocks/markdown"
	"github.com/rgonek/docblocks/pipeline"
	"github.com/rgonek/docblocks/raw"
)

const (
	formatMarkdown = "markdown"
	formatJSON     = "json"
	formatRaw      = "raw"
)

func newConvertCmd(a *app) *cobra.Command {
	var (
		flags  pipelineFlags
		docID  string
		token  string
		format string
	)

	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Compile one document to markdown or an enriched block tree",
		Long: `Compile a Google Docs JSON export, a YAML paragraph fixture (.yaml/.yml)
or, with --doc-id, a document fetched from the Docs API.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format, formatMarkdown, formatJSON, formatRaw); err != nil {
				return err
			}
			if (len(args) == 1) == (docID != "") {
				return errors.New("provide either a file argument or --doc-id")
			}
			opts, err := resolveOptions(a.cfg, flags)
			if err != nil {
				return err
			}
			opts.Logger = a.logger

			ctx := cmd.Context()
			var in pipeline.Input
			if docID != "" {
				in, err = a.fetchInput(ctx, docID, token)
			} else {
				in, err = loadInput(args[0], cmd.InOrStdin())
			}
			if err != nil {
				return err
			}

			out, err := pipeline.RunInput(ctx, in, opts)
			if err != nil {
				return err
			}
			for _, w := range out.Markdown.Warnings {
				a.logger.Warn("markdown warning", "input", in.Name, "type", w.Type, "block", w.BlockType, "message", w.Message)
			}
			return writeOutput(cmd, format, out)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&docID, "doc-id", "", "Fetch this Google Docs document instead of reading a file")
	cmd.Flags().StringVar(&token, "token", "", "OAuth access token (default from $DOCBLOCKS_TOKEN)")
	cmd.Flags().StringVar(&format, "format", formatMarkdown, "Output: markdown|json|raw")
	return cmd
}

// jsonOutput is the --format json document.
type jsonOutput struct {
	Blocks      blocks.Document     `json:"document"`
	Markdown    string              `json:"markdown"`
	Warnings    []markdown.Warning  `json:"warnings,omitempty"`
	Diagnostics []blocks.Diagnostic `json:"diagnostics,omitempty"`
}

func writeOutput(cmd *cobra.Command, format string, out pipeline.Output) error {
	w := cmd.OutOrStdout()
	switch format {
	case formatMarkdown:
		_, err := fmt.Fprintln(w, out.Markdown.Markdown)
		return err
	case formatRaw:
		return encodeJSON(cmd, raw.ToAny(out.Raw.Root))
	default:
		return encodeJSON(cmd, jsonOutput{
			Blocks:      out.Blocks,
			Markdown:    out.Markdown.Markdown,
			Warnings:    out.Markdown.Warnings,
			Diagnostics: out.Diagnostics,
		})
	}
}

func encodeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return nil
}
