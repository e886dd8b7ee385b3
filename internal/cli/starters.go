package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/opencode-ai/netforge/internal/config"
	"github.com/opencode-ai/netforge/internal/starters"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(startersCmd)
}

var startersCmd = &cobra.Command{
	Use:   "starters",
	Short: "List starter networks",
	Long: `List the starter networks available to 'netforge new --starter'.

Starters are read from .netforge/starters in the current directory, then from
the starters directory under the config dir, then from the built-in set. The
first starter found under a name wins.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := loadStarters()
		if err != nil {
			return err
		}

		if IsJSONOutput() || IsJSONLOutput() {
			items := make([]any, len(list))
			for i, s := range list {
				items[i] = s
			}
			return WriteOutput(cmd.OutOrStdout(), items)
		}

		rows := make([][]string, 0, len(list))
		for _, s := range list {
			rows = append(rows, []string{s.Name, starterVariables(s), s.Source, s.Description})
		}
		return writeTable(cmd.OutOrStdout(), []string{"NAME", "VARIABLES", "SOURCE", "DESCRIPTION"}, rows)
	},
}

func loadStarters() ([]*starters.Starter, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working directory: %w", err)
	}
	return starters.LoadAll(cwd, config.Dir())
}

func findStarter(name string) (*starters.Starter, error) {
	list, err := loadStarters()
	if err != nil {
		return nil, err
	}
	s := starters.Find(list, name)
	if s == nil {
		return nil, fmt.Errorf("unknown starter %q (run 'netforge starters' to list them)", name)
	}
	return s, nil
}

// starterVariables lists variable names, marking required ones with "*".
func starterVariables(s *starters.Starter) string {
	if len(s.Variables) == 0 {
		return "-"
	}
	names := make([]string, 0, len(s.Variables))
	for _, v := range s.Variables {
		name := v.Name
		if v.Required {
			name += "*"
		}
		names = append(names, name)
	}
	return strings.Join(names, ",")
}
