package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/opencode-ai/netforge/internal/editord"
	"github.com/opencode-ai/netforge/internal/state"
	"github.com/spf13/cobra"
)

var (
	serveHost    string
	servePort    int
	serveNetwork string
	serveVars    string
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveHost, "host", "", "listen host (default from config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (default from config)")
	serveCmd.Flags().StringVar(&serveNetwork, "network", "", "network document to start from")
	serveCmd.Flags().StringVar(&serveVars, "vars", "", "variables document to start from")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the editor API",
	Long:  "Serve the network editor as a JSON API until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var initial *state.AppState
		var err error
		switch {
		case serveNetwork != "":
			initial, err = loadNetwork(serveNetwork, serveVars, nil)
		case serveVars != "":
			initial, err = bindingsState(serveVars, nil)
		}
		if err != nil {
			return err
		}
		available, err := loadStarters()
		if err != nil {
			return err
		}

		daemon, err := editord.New(GetConfig(), logger, editord.Options{
			Hostname: serveHost,
			Port:     servePort,
			Version:  version,
			State:    initial,
			Starters: available,
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return daemon.Run(ctx)
	},
}
