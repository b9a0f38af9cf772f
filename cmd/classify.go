package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"phishgraph/internal/config"
	"phishgraph/pkg/domain"

	"github.com/spf13/cobra"
)

func classifyCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify <url>",
		Short: "Classifies a single URL and prints its feature vector",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newScanner(cfg, nil)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.HTTP.RequestTimeout)
			defer cancel()

			c, err := s.Classify(ctx, args[0])
			if err != nil {
				return fmt.Errorf("could not classify %s: %w", args[0], err)
			}

			return printClassification(cmd.OutOrStdout(), c)
		},
	}

	return cmd
}

// printClassification writes the label followed by one line per feature.
func printClassification(out io.Writer, c *domain.Classification) error {
	if _, err := fmt.Fprintf(out, "%s\t%s\n\n", c.URL, c.Label); err != nil {
		return fmt.Errorf("could not write result: %w", err)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for i, name := range domain.Schema {
		sig := c.Signals[i]
		line := fmt.Sprintf("%s\t%d\t%s", name, c.Vector[i], sig.State())
		if sig.Cause() != nil && sig.State() == domain.SignalUnavailable {
			line += "\t" + sig.Cause().Error()
		}
		_, _ = fmt.Fprintln(tw, line)
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("could not write result: %w", err)
	}

	return nil
}

