package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"phishgraph/internal/config"
	"phishgraph/pkg/domain"

	"github.com/spf13/cobra"
)

const (
	formatJSON = "json"
	formatDOT  = "dot"
)

func graphCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph <url>",
		Short: "Classifies a URL and every link found on its page",
		Long: "Prints the labeled link graph as JSON, or as Graphviz DOT with legitimate\n" +
			"links in green, phishing links in red and failed links in grey.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			if format != formatJSON && format != formatDOT {
				return fmt.Errorf("unknown format %q, use %s or %s", format, formatJSON, formatDOT)
			}

			s, err := newScanner(cfg, nil)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.HTTP.RequestTimeout)
			defer cancel()

			g, err := s.Graph(ctx, args[0])
			if err != nil {
				return fmt.Errorf("could not build graph of %s: %w", args[0], err)
			}

			if format == formatDOT {
				return writeDOT(cmd.OutOrStdout(), g)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(g); err != nil {
				return fmt.Errorf("could not write graph: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().StringP("format", "f", formatJSON, "Output format: json or dot")

	return cmd
}

func labelColor(l domain.Label) string {
	switch l {
	case domain.LabelLegitimate:
		return "green"
	case domain.LabelPhishing:
		return "red"
	default:
		return "grey"
	}
}

// writeDOT renders g as a Graphviz digraph.
func writeDOT(w io.Writer, g *domain.LinkGraph) error {
	p := &dotPrinter{w: w}
	p.printf("digraph links {\n")
	p.printf("  label=%s;\n", strconv.Quote("URL Link Graph (green=Legitimate, red=Phishing, grey=Error)"))
	p.printf("  node [style=filled, shape=box];\n")
	for _, n := range g.Nodes {
		shape := ""
		if n.Root {
			shape = ", shape=doubleoctagon"
		}
		p.printf("  %s [fillcolor=%s, tooltip=%s%s];\n",
			strconv.Quote(n.URL), labelColor(n.Label), strconv.Quote(string(n.Label)), shape)
	}
	for _, e := range g.Edges {
		p.printf("  %s -> %s;\n", strconv.Quote(e.From), strconv.Quote(e.To))
	}
	p.printf("}\n")

	if p.err != nil {
		return fmt.Errorf("could not write graph: %w", p.err)
	}

	return nil
}

// dotPrinter keeps the first write error.
type dotPrinter struct {
	w   io.Writer
	err error
}

func (p *dotPrinter) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
