package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/acllite/go-acllite"
)

var queryFlags struct {
	model    string
	deviceID int32
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Dump a model's tensor attributes and the CANN version",
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&queryFlags.model, "model", "m",
		"data/gcn_ner.om", "compiled offline model file")
	queryCmd.Flags().Int32Var(&queryFlags.deviceID, "device", 0, "NPU device id")
}

func runQuery(cmd *cobra.Command, args []string) error {

	rt, err := acllite.NewRuntime(queryFlags.model, queryFlags.deviceID)

	if err != nil {
		return err
	}

	defer rt.Close()

	return rt.Query(os.Stdout)
}
