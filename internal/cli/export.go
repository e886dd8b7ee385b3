// Package cli provides network commands that go through the editor state.
package cli

import (
	"errors"
	"fmt"

	"github.com/opencode-ai/netforge/internal/documents"
	"github.com/opencode-ai/netforge/internal/graph"
	"github.com/opencode-ai/netforge/internal/models"
	"github.com/spf13/cobra"
)

var (
	netVars         string
	netSet          []string
	netFormat       string
	netOut          string
	netHierarchical bool
)

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(graphCmd)

	for _, cmd := range []*cobra.Command{exportCmd, validateCmd, graphCmd} {
		cmd.Flags().StringVar(&netVars, "vars", "", "variables document used to expand placeholders")
		cmd.Flags().StringArrayVar(&netSet, "set", nil, "extra binding name=value (repeatable, wins over --vars)")
	}
	exportCmd.Flags().StringVarP(&netFormat, "format", "f", "", "output format: hocon, json or yaml (default from config)")
	exportCmd.Flags().StringVarP(&netOut, "out", "o", "", "write to file instead of stdout")
	graphCmd.Flags().BoolVar(&netHierarchical, "hierarchical", false, "lay the graph out top to bottom")
}

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Import a network and export it again",
	Long: `Import a network document, check it, and write it back out. Placeholders
are expanded on the way in and bound values are collapsed back into
placeholders on the way out. Embedded functions are de-duplicated.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(netFormat)
		if err != nil {
			return err
		}

		step := startProgress("Loading network")
		st, err := loadNetwork(args[0], netVars, netSet)
		if err != nil {
			step.Fail(err)
			return err
		}
		step.Done()

		tree, err := documents.ExportNetwork(st)
		if err != nil {
			var invalid *documents.InvalidNetworkError
			if errors.As(err, &invalid) && !IsJSONOutput() {
				printViolations(cmd, invalid.Violations)
			}
			return err
		}
		return emitDocument(cmd.OutOrStdout(), tree, format, netOut)
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a network for violations",
	Long:  "Import a network document and list every invariant it breaks.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := loadNetwork(args[0], netVars, netSet)
		if err != nil {
			return err
		}
		violations := st.Validate()

		if IsJSONOutput() || IsJSONLOutput() {
			items := make([]any, len(violations))
			for i, v := range violations {
				items[i] = v
			}
			if err := WriteOutput(cmd.OutOrStdout(), items); err != nil {
				return err
			}
		} else if len(violations) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), styles.Success.Render("✓")+" "+args[0]+" is valid")
		} else {
			printViolations(cmd, violations)
		}

		if len(violations) > 0 {
			return fmt.Errorf("%s: %d violation(s)", args[0], len(violations))
		}
		return nil
	},
}

func printViolations(cmd *cobra.Command, violations []models.Violation) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, styles.Warning.Render(fmt.Sprintf("%d violation(s):", len(violations))))
	rows := make([][]string, 0, len(violations))
	for _, v := range violations {
		subject := v.Subject
		if subject == "" {
			subject = "-"
		}
		rows = append(rows, []string{string(v.Kind), subject, v.Message})
	}
	_ = writeTable(out, []string{"KIND", "SUBJECT", "MESSAGE"}, rows)
}

var graphCmd = &cobra.Command{
	Use:   "graph <file>",
	Short: "Print the tool graph as Graphviz DOT",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := loadNetwork(args[0], netVars, netSet)
		if err != nil {
			return err
		}
		g := graph.Build(st)
		if IsJSONOutput() {
			return WriteOutput(cmd.OutOrStdout(), g)
		}
		return graph.WriteDOT(cmd.OutOrStdout(), g, netHierarchical || st.Hierarchical)
	},
}
