/*
Copyright © 2024 paul <paul@denknerd.org>
*/

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

// showConfigCmd represents the config show command
var showConfigCmd = &cobra.Command{
	Use:   "show",
	Short: "Output current settings",
	Long: `
Is something not working for you?  Have a look whether your settings are as you expect.  Secrets
are masked.
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "# settings file: %s\n", SettingsActual)
		fmt.Fprintf(out, "# debug: %v\n", Debug)

		effective, err := yaml.Marshal(flagSettings().Redacted())
		if err != nil {
			return fmt.Errorf("config: couldn't marshal settings: %w", err)
		}
		fmt.Fprint(out, string(effective))

		if err := flagSettings().Validate(); err != nil && len(AuthTokenCmd) == 0 {
			fmt.Fprintf(out, "# incomplete: %v\n", err)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(showConfigCmd)
}
