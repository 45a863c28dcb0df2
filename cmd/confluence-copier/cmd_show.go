/*
Copyright © 2024 paul <paul@denknerd.org>
*/

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/toothbrush/confluence-copier/confluence"
	"github.com/toothbrush/confluence-copier/pageid"
	"github.com/toothbrush/confluence-copier/render"
)

var showUsage = strings.TrimSpace(`
Print a page as Markdown, with a YAML header describing where it lives.  Useful to double-check
the copy-from page before copying it somewhere.
`)

var showCmd = &cobra.Command{
	Use:   "show <page>",
	Short: "Print a page as Markdown",
	Long:  showUsage,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := pageid.Resolve(args[0])
		if err != nil {
			return err
		}

		api, _, stop, err := connect("show")
		if err != nil {
			return err
		}
		defer stop()

		page, err := api.GetContentByID(cmd.Context(), confluence.GetContentQuery{
			ID:     uint64(id),
			Expand: []string{"body.storage", "space", "version", "ancestors"},
		})
		if err != nil {
			return fmt.Errorf("show: couldn't fetch page %s: %w", id, err)
		}

		doc, err := render.Document(api.BaseURI, page)
		if err != nil {
			return fmt.Errorf("show: %w", err)
		}

		fmt.Fprint(cmd.OutOrStdout(), doc)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
