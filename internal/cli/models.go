package cli

import (
	"github.com/opencode-ai/netforge/internal/models"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(modelsCmd)
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List selectable language models",
	RunE: func(cmd *cobra.Command, args []string) error {
		if IsJSONOutput() || IsJSONLOutput() {
			items := make([]any, len(models.ModelCatalog))
			for i, entry := range models.ModelCatalog {
				items[i] = entry
			}
			return WriteOutput(cmd.OutOrStdout(), items)
		}

		current := defaultLLM().ModelName
		rows := make([][]string, 0, len(models.ModelCatalog))
		for _, entry := range models.ModelCatalog {
			rows = append(rows, []string{entry.Name, entry.ID, formatYesNo(entry.Name == current)})
		}
		return writeTable(cmd.OutOrStdout(), []string{"NAME", "ID", "DEFAULT"}, rows)
	},
}
