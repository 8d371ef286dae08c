package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/balei-miktzoa/draftgen/internal/model"
)

var describeShowFields bool

var describeCmd = &cobra.Command{
	Use:   "describe <worker.json>",
	Short: "Generate multi-tone descriptions for a worker record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrap(err, "read worker file")
		}

		var worker model.WorkerRecord
		if err := json.Unmarshal(data, &worker); err != nil {
			return eris.Wrap(err, "parse worker record")
		}

		e, err := initEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		desc := e.Describer.Describe(cmd.Context(), worker)

		var out any = desc.Styles
		if describeShowFields {
			out = desc
		}
		encoded, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return eris.Wrap(err, "marshal descriptions")
		}
		fmt.Println(string(encoded))
		return nil
	},
}

func init() {
	describeCmd.Flags().BoolVar(&describeShowFields, "used-fields", false, "include the source fields that fed the generation")
	rootCmd.AddCommand(describeCmd)
}
