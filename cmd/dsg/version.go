package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/dsg"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of dsg",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "dsg version %s\n", strings.TrimSpace(dsg.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
