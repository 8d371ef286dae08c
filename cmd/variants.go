package main

import (
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/balei-miktzoa/draftgen/internal/variant"
)

var variantsCmd = &cobra.Command{
	Use:   "variants",
	Short: "Inspect and manage phrasing variant allocations",
}

var variantsListCmd = &cobra.Command{
	Use:   "list <trade>",
	Short: "List the variants of a trade and their current holders",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		field := variant.CanonField(args[0])
		listed := e.Registry.List(field)

		fmt.Printf("%s (%d variants)\n", field, len(listed))
		for _, lv := range listed {
			holder := ""
			if lv.InUseBy != "" {
				holder = fmt.Sprintf("  [in use by %s]", lv.InUseBy)
			}
			fmt.Printf("  %-14s %s%s\n", lv.Variant.ID, lv.Variant.Label, holder)
		}
		return nil
	},
}

var variantsAssignCmd = &cobra.Command{
	Use:   "assign <trade> <variant-id> <worker-id>",
	Short: "Allocate a variant to a worker",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		field := variant.CanonField(args[0])
		res := e.Registry.Assign(field, args[1], args[2])
		if !res.OK {
			return eris.Errorf("variant %s already held by %s", args[1], res.InUseBy)
		}

		out, _ := json.Marshal(map[string]string{
			"field":   field,
			"variant": args[1],
			"worker":  args[2],
			"status":  "assigned",
		})
		fmt.Println(string(out))
		return nil
	},
}

var variantsReleaseCmd = &cobra.Command{
	Use:   "release <trade> <worker-id>",
	Short: "Release a worker's variant allocation",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		field := variant.CanonField(args[0])
		e.Registry.Release(field, args[1])

		out, _ := json.Marshal(map[string]string{
			"field":  field,
			"worker": args[1],
			"status": "released",
		})
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	variantsCmd.AddCommand(variantsListCmd)
	variantsCmd.AddCommand(variantsAssignCmd)
	variantsCmd.AddCommand(variantsReleaseCmd)
	rootCmd.AddCommand(variantsCmd)
}
