package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"ember/internal/target"
)

var targetCmd = &cobra.Command{
	Use:   "target [triple]",
	Short: "Show built-in targets or dump one resolved target spec",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			for _, name := range target.Builtins() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		}
		tgt, err := target.Lookup(args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(tgt)
	},
}
