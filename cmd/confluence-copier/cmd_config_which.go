/*
Copyright © 2024 paul <paul@denknerd.org>
*/

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// whichCmd represents the which command
var whichCmd = &cobra.Command{
	Use:   "which",
	Short: "Tell me the resolved settings path",
	Long: `
Output the filename that's being used to store your settings.
`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "Settings path: %s\n", SettingsActual)
	},
}

func init() {
	configCmd.AddCommand(whichCmd)
}
