package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/opencode-ai/netforge/internal/config"
	"github.com/spf13/cobra"
)

var initForce bool

// configDirFunc is swapped out in tests.
var configDirFunc = config.Dir

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		result := createConfigFile()
		switch result.status {
		case "failed":
			return errors.New(result.message)
		case "skipped":
			fmt.Fprintln(cmd.OutOrStdout(), styles.Muted.Render(result.message))
		default:
			fmt.Fprintln(cmd.OutOrStdout(), styles.Success.Render("✓")+" "+result.message)
		}
		return nil
	},
}

type initResult struct {
	status  string
	message string
}

func createConfigFile() initResult {
	dir := configDirFunc()
	path, err := config.WriteTemplate(dir, initForce)
	if errors.Is(err, config.ErrConfigExists) {
		if !IsInteractive() || !confirm(fmt.Sprintf("%s exists. Overwrite?", path)) {
			return initResult{status: "skipped", message: fmt.Sprintf("config file already exists at %s (use --force to overwrite)", path)}
		}
		path, err = config.WriteTemplate(dir, true)
	}
	if err != nil {
		return initResult{status: "failed", message: err.Error()}
	}
	return initResult{status: "done", message: fmt.Sprintf("wrote %s", path)}
}

func confirm(prompt string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N] ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
