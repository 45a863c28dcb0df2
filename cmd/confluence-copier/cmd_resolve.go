/*
Copyright © 2024 paul <paul@denknerd.org>
*/

package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/toothbrush/confluence-copier/pageid"
)

var resolveUsage = strings.TrimSpace(`
Show which page ID a page reference resolves to, without talking to Confluence.  Handy to check
that a link you pasted will be understood.
`)

var resolveCmd = &cobra.Command{
	Use:   "resolve <page>...",
	Short: "Print the page ID for each page ID or URL given",
	Long:  resolveUsage,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0
		for _, arg := range args {
			id, err := pageid.Resolve(arg)
			if err != nil {
				failed++
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", arg, color.New(color.FgRed).Sprint(err))
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", arg, id)
		}

		if failed > 0 {
			return fmt.Errorf("resolve: %d of %d inputs couldn't be resolved", failed, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
