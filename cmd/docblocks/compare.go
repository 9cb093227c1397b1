package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rgonek/docblocks/pipeline"
)

// errMismatch is returned when the parser paths disagree. The diffs are
// already printed, so main only sets the exit code.
var errMismatch = errors.New("parser paths disagree")

func newCompareCmd(a *app) *cobra.Command {
	var (
		flags   pipelineFlags
		workers int
	)

	cmd := &cobra.Command{
		Use:   "compare file...",
		Short: "Check that the archie and paragraph parser paths agree",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := resolveOptions(a.cfg, flags)
			if err != nil {
				return err
			}
			opts.Logger = a.logger

			inputs := make([]pipeline.Input, 0, len(args))
			for _, path := range args {
				in, err := loadInput(path, cmd.InOrStdin())
				if err != nil {
					return err
				}
				inputs = append(inputs, in)
			}

			n := a.cfg.Workers
			if cmd.Flags().Changed("workers") {
				n = workers
			}
			n = pipeline.ResolveWorkers(n)
			a.logger.Debug("comparing", "inputs", len(inputs), "workers", n)

			results := pipeline.CompareInputs(cmd.Context(), inputs, opts, n)

			w := cmd.OutOrStdout()
			var failed int
			for _, r := range results {
				name := inputs[r.Index].Name
				switch {
				case r.Err != nil:
					failed++
					fmt.Fprintf(w, "FAIL %s: %v\n", name, r.Err)
				case !r.Parity.Equal:
					failed++
					fmt.Fprintf(w, "DIFF %s\n", name)
					if r.Parity.RawDiff != "" {
						fmt.Fprintf(w, "raw tree (-archie +paragraph):\n%s\n", r.Parity.RawDiff)
					}
					if r.Parity.MarkdownDiff != "" {
						fmt.Fprintln(w, r.Parity.MarkdownDiff)
					}
				default:
					fmt.Fprintf(w, "ok   %s (%s)\n", name, r.Duration.Round(time.Microsecond))
				}
			}
			if failed > 0 {
				fmt.Fprintf(w, "%d of %d documents differ\n", failed, len(results))
				return errMismatch
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Parallel workers (0 = auto)")
	return cmd
}
