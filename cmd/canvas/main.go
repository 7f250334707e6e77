// Command canvas inspects composition documents and lowers them to source
// text from the command line.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-kratos/canvas"
	"github.com/go-kratos/canvas/codegen"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "canvas",
		Short: "Inspect and generate code from composition documents",
	}

	rootCmd.AddCommand(
		checkCmd(),
		genCmd(),
		exportCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadDocument reads a composition document, choosing the codec by file
// extension (.yaml/.yml, otherwise JSON).
func loadDocument(path string) (*canvas.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return canvas.DecodeDocumentYAML(data)
	default:
		return canvas.DecodeDocument(data)
	}
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <composition>",
		Short: "Validate every edge and report cycles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDocument(args[0])
			if err != nil {
				return err
			}
			nodes, edges := doc.Materialize()

			problems := 0
			for _, edge := range edges {
				others := withoutEdge(edges, edge)
				if err := canvas.ValidateConnection(edge.Connection(), nodes, others); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "edge %s: %v\n", edge.ID, err)
					problems++
				}
			}
			plan := canvas.Schedule(nodes, edges)
			if plan.HasCycle {
				fmt.Fprintf(cmd.ErrOrStderr(), "cycle: %d node(s) cannot be ordered\n",
					len(nodes)-len(plan.Order))
				problems++
			}
			if problems > 0 {
				return fmt.Errorf("%d problem(s) found", problems)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d nodes, %d edges\n", len(nodes), len(edges))
			return nil
		},
	}
}

// withoutEdge filters one edge out so its own presence does not trip the
// duplicate-connection check.
func withoutEdge(edges []*canvas.Edge, skip *canvas.Edge) []*canvas.Edge {
	out := make([]*canvas.Edge, 0, len(edges)-1)
	for _, e := range edges {
		if e != skip {
			out = append(out, e)
		}
	}
	return out
}

func genCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "gen <composition>",
		Short: "Generate source text for the runtime",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args[0], output, codegen.Generate)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write generated code to a file instead of stdout")
	return cmd
}

func exportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export <composition>",
		Short: "Generate self-contained source with stubbed runtime calls",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args[0], output, codegen.GenerateStandalone)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write generated code to a file instead of stdout")
	return cmd
}

func runGenerate(cmd *cobra.Command, path, output string,
	generate func([]*canvas.Node, []*canvas.Edge) *codegen.Result) error {
	doc, err := loadDocument(path)
	if err != nil {
		return err
	}
	nodes, edges := doc.Materialize()
	result := generate(nodes, edges)
	for _, w := range result.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}
	if output == "" {
		fmt.Fprint(cmd.OutOrStdout(), result.Code)
		return nil
	}
	return os.WriteFile(output, []byte(result.Code), 0o644)
}
