package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gcnner",
	Short: "GCN named entity recognition on the Ascend NPU",
	Long: "Runs the GCN named entity recognition model on the Ascend NPU " +
		"via the CANN ACL runtime.  Supports dataset evaluation, model " +
		"querying and serving inference over HTTP.",
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(queryCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
