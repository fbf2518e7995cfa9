package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ember/internal/mangle"
)

// mangleCmd is a debugging aid: it shows the linker-level symbol a
// crate-path mangles to, which is what nm and objdump report.
var mangleCmd = &cobra.Command{
	Use:   "mangle [flags] <crate::path::item>",
	Short: "Show the mangled symbol for a crate path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := cmd.Flags().GetString("hash")
		if err != nil {
			return err
		}
		components := strings.Split(args[0], "::")
		for _, c := range components {
			if c == "" {
				return fmt.Errorf("empty path component in %q", args[0])
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), mangle.Mangle(components, hash))
		return nil
	},
}

func init() {
	mangleCmd.Flags().String("hash", "", "symbol hash suffix to append")
}
