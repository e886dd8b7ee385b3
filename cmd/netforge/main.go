// Command netforge edits agent network HOCON files.
package main

import (
	"os"

	"github.com/opencode-ai/netforge/internal/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		cli.PrintError(err)
		os.Exit(1)
	}
}
