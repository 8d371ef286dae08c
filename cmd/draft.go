package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/balei-miktzoa/draftgen/internal/model"
)

var draftCursor int

var draftCmd = &cobra.Command{
	Use:   "draft <worker.json>",
	Short: "Generate a bio draft for a worker record",
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
		if draftCursor > 0 {
			worker.AIVariantCursor = model.FlexIntPtr(draftCursor)
		}

		e, err := initEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		draft := e.Composer.GenerateDraft(worker)

		out, err := json.MarshalIndent(draft, "", "  ")
		if err != nil {
			return eris.Wrap(err, "marshal draft")
		}
		fmt.Println(string(out))

		if draft.Status == model.DraftStatusError {
			return eris.Errorf("draft generation failed: %s", draft.Error)
		}
		return nil
	},
}

func init() {
	draftCmd.Flags().IntVar(&draftCursor, "cursor", 0, "regeneration counter, rotates the phrasing variant")
	rootCmd.AddCommand(draftCmd)
}
