package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	rferrors "github.com/reflow-ui/reflow/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "reflow-bench",
		Short: "Benchmark and demo harness for the reflow update engine",
		Long: `reflow-bench exercises the reactive graph and the tree differ
under configurable load.

  run    execute YAML benchmark scenarios and print a timing report
  serve  run a live demo server with streaming SSR and a WebSocket
         patch feed`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		runCmd(),
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		var re *rferrors.ReflowError
		if errors.As(err, &re) {
			fmt.Fprintln(os.Stderr, rferrors.Format(re))
		} else {
			fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		}
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("reflow-bench %s (%s)\n", version, commit)
		},
	}
}
