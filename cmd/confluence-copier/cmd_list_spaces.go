/*
Copyright © 2024 paul <paul@denknerd.org>
*/

package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/exp/maps"
)

var IncludePersonal bool

var listSpacesUsage = strings.TrimSpace(`
If you want to find out what spaces your Confluence wiki has, use this command.
`)

var listSpacesCmd = &cobra.Command{
	Use:   "spaces",
	Short: "Print list of spaces",
	Long:  listSpacesUsage,
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		api, s, stop, err := connect("list-spaces")
		if err != nil {
			return err
		}
		defer stop()

		logger.Info().Str("endpoint", s.BaseURL()).Msg("listing Confluence spaces")
		spaces, err := api.ListAllSpaces(cmd.Context(), IncludePersonal)
		if err != nil {
			return fmt.Errorf("list: couldn't list Confluence spaces: %w", err)
		}
		logger.Info().Int("count", len(spaces)).Msg("found spaces")

		spaceKeys := maps.Keys(spaces)
		sort.Strings(spaceKeys)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "spaces:\n")
		for _, key := range spaceKeys {
			fmt.Fprintf(out, "  - %s: %s\n", key, spaces[key].Name)
		}

		return nil
	},
}

func init() {
	listCmd.AddCommand(listSpacesCmd)

	listSpacesCmd.Flags().BoolVar(&IncludePersonal, "include-personal-spaces", false, "list individuals' personal spaces")
}
