/*
Copyright © 2024 paul <paul@denknerd.org>
*/

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/toothbrush/confluence-copier/pageid"
	"github.com/toothbrush/confluence-copier/preview"
)

var pathUsage = strings.TrimSpace(`
Print where a page lives, as "Space > Parent > Page".
`)

var pathCmd = &cobra.Command{
	Use:   "path <page>",
	Short: "Print the breadcrumb of a page",
	Long:  pathUsage,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := pageid.Resolve(args[0])
		if err != nil {
			return err
		}

		api, _, stop, err := connect("path")
		if err != nil {
			return err
		}
		defer stop()

		page, err := api.GetPageWithAncestors(cmd.Context(), uint64(id))
		if err != nil {
			return fmt.Errorf("path: couldn't fetch page %s: %w", id, err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), preview.HierarchyPath(page))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pathCmd)
}
