package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tandem",
		Short: "Typed request/reply multiplexing between two peers",
		Long: `tandem multiplexes typed request/reply calls between exactly two
peers over one message-framed connection.

The CLI hosts and exercises the demo catalog (ping, echo, reverse,
stats, fail) over websocket:

  tandem serve                 host the demo catalog
  tandem call echo --payload x issue one typed call
  tandem bench -n 1000         measure round-trip latency`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		callCmd(),
		benchCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
