package cli

import (
	"fmt"

	"github.com/opencode-ai/netforge/internal/documents"
	"github.com/opencode-ai/netforge/internal/hocon"
	"github.com/opencode-ai/netforge/internal/starters"
	"github.com/opencode-ai/netforge/internal/state"
	"github.com/opencode-ai/netforge/internal/subst"
	"github.com/spf13/cobra"
)

var (
	docFormat   string
	docOut      string
	docVars     string
	docSet      []string
	newFrontman string
	newStarter  string
)

func init() {
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(expandCmd)
	rootCmd.AddCommand(collapseCmd)
	rootCmd.AddCommand(convertCmd)

	for _, cmd := range []*cobra.Command{newCmd, expandCmd, collapseCmd, convertCmd} {
		cmd.Flags().StringVarP(&docFormat, "format", "f", "", "output format: hocon, json or yaml (default from config)")
	}
	for _, cmd := range []*cobra.Command{newCmd, expandCmd, collapseCmd} {
		cmd.Flags().StringVarP(&docOut, "out", "o", "", "write to file instead of stdout")
	}
	for _, cmd := range []*cobra.Command{expandCmd, collapseCmd} {
		cmd.Flags().StringVar(&docVars, "vars", "", "variables document")
		cmd.Flags().StringArrayVar(&docSet, "set", nil, "extra binding name=value (repeatable, wins over --vars)")
	}
	newCmd.Flags().StringVar(&newFrontman, "frontman", "frontman", "name of the first node")
	newCmd.Flags().StringVar(&newStarter, "starter", "", "instantiate a starter network (see 'netforge starters')")
	newCmd.Flags().StringArrayVar(&docSet, "set", nil, "starter variable name=value (repeatable)")
}

var newCmd = &cobra.Command{
	Use:   "new [file]",
	Short: "Write a fresh network document",
	Long: `Write a network with a single frontman node and the configured default model.

With --starter, the named starter network is instantiated instead. Its
variables are bound from --set pairs or their defaults and expanded into the
document; export collapses the bound values back into placeholders.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(docFormat)
		if err != nil {
			return err
		}

		st, err := newNetwork()
		if err != nil {
			return err
		}
		tree, err := documents.ExportNetwork(st)
		if err != nil {
			return err
		}

		out := docOut
		if len(args) == 1 {
			out = args[0]
		}
		return emitDocument(cmd.OutOrStdout(), tree, format, out)
	},
}

func newNetwork() (*state.AppState, error) {
	st := state.New(defaultLLM())
	if newStarter == "" {
		if len(docSet) > 0 {
			return nil, fmt.Errorf("--set requires --starter")
		}
		if err := st.RenameNode(st.Nodes[0].ID, newFrontman); err != nil {
			return nil, err
		}
		return st, nil
	}

	starter, err := findStarter(newStarter)
	if err != nil {
		return nil, err
	}
	values, err := parsePairs(docSet)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("starter", starter.Name).Str("source", starter.Source).Msg("instantiating starter")
	return starters.Instantiate(starter, st, values)
}

var expandCmd = &cobra.Command{
	Use:   "expand <file>",
	Short: "Replace placeholders with bound values",
	Long: `Replace every ${name} and $name placeholder in the string values of a
document with its bound value. Unbound placeholders are left as they are and
$$ is written as a single $.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransform(cmd, args[0], subst.DirectionExpand)
	},
}

var collapseCmd = &cobra.Command{
	Use:   "collapse <file>",
	Short: "Replace bound values with placeholders",
	Long: `Replace every occurrence of a bound value in the string values of a
document with a ${name} placeholder. Bindings are applied in order and text
produced by one replacement is not matched again.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransform(cmd, args[0], subst.DirectionCollapse)
	},
}

func runTransform(cmd *cobra.Command, path string, dir subst.Direction) error {
	format, err := outputFormat(docFormat)
	if err != nil {
		return err
	}
	vars, err := bindingsState(docVars, docSet)
	if err != nil {
		return err
	}
	text, err := readDocument(path)
	if err != nil {
		return err
	}

	m := vars.EffectiveMap()
	tree, err := documents.Transform(path, text, m, dir)
	if err != nil {
		return err
	}
	logger.Debug().Str("file", path).Str("direction", string(dir)).Int("bindings", m.Len()).Msg("document transformed")
	return emitDocument(cmd.OutOrStdout(), tree, format, docOut)
}

var convertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Re-encode a document",
	Long:  "Parse a HOCON or JSON document and write it as HOCON, JSON or YAML.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if docFormat == "" {
			return fmt.Errorf("--format is required")
		}
		format, err := hocon.ParseFormat(docFormat)
		if err != nil {
			return err
		}
		text, err := readDocument(args[0])
		if err != nil {
			return err
		}
		tree, err := hocon.ParseNamed(args[0], text)
		if err != nil {
			return err
		}
		return emitDocument(cmd.OutOrStdout(), tree, format, "")
	},
}
