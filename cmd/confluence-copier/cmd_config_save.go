/*
Copyright © 2024 paul <paul@denknerd.org>
*/

package main

import (
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/toothbrush/confluence-copier/settings"
)

var saveUsage = strings.TrimSpace(`
Write the current settings (the settings file with any flags you pass applied on top) back to the
settings file, e.g.

  confluence-copier config save --endpoint-url https://ORG.atlassian.net/wiki \
    --auth-mode token --auth-token-cmd pass,show,confluence

A credential coming from --auth-token-cmd is used to check the settings but isn't written out.
`)

var saveConfigCmd = &cobra.Command{
	Use:   "save",
	Short: "Save the current settings",
	Long:  saveUsage,
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		effective, err := effectiveSettings()
		if err != nil {
			return err
		}
		if err := effective.Validate(); err != nil {
			return err
		}

		store := settings.Store{Path: SettingsActual}
		if err := store.Save(flagSettings()); err != nil {
			return err
		}

		color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), "Settings saved successfully.")
		return nil
	},
}

func init() {
	configCmd.AddCommand(saveConfigCmd)
}
