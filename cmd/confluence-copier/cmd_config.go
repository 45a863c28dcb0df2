/*
Copyright © 2024 paul <paul@denknerd.org>
*/

package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var configUsage = strings.TrimSpace(`
Commands in this namespace are to help you configure the app.  Find out what the current settings
are, where they're read from, save them, or check that they actually get you into Confluence.
`)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Commands to work with the app settings",
	Long:  configUsage,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
