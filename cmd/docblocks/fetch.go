package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newFetchCmd(a *app) *cobra.Command {
	var (
		docID  string
		token  string
		output string
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download a Google Docs document as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fetcher, err := a.fetcher(cmd.Context(), token)
			if err != nil {
				return err
			}
			doc, err := fetcher.Fetch(cmd.Context(), docID)
			if err != nil {
				return err
			}

			data, err := doc.MarshalJSON()
			if err != nil {
				return fmt.Errorf("encoding document: %w", err)
			}
			if output == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			a.logger.Info("document saved", "id", docID, "path", output, "bytes", len(data))
			return nil
		},
	}

	cmd.Flags().StringVar(&docID, "doc-id", "", "Google Docs document ID")
	cmd.Flags().StringVar(&token, "token", "", "OAuth access token (default from $DOCBLOCKS_TOKEN)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	_ = cmd.MarkFlagRequired("doc-id")
	return cmd
}
