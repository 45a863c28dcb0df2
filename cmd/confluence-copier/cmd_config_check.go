/*
Copyright © 2024 paul <paul@denknerd.org>
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/toothbrush/confluence-copier/confluence"
	"github.com/toothbrush/confluence-copier/settings"
)

var testConfigUsage = strings.TrimSpace(`
Log in to Confluence with the current settings and list the spaces you can see, to make sure the
settings work before you copy anything.
`)

var testConfigCmd = &cobra.Command{
	Use:   "test",
	Short: "Check the settings against Confluence",
	Long:  testConfigUsage,
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		api, s, stop, err := connect("config-test")
		if err != nil {
			return err
		}
		defer stop()

		user, err := testConnection(cmd.Context(), api, s.AuthMode)
		if err != nil {
			color.New(color.FgRed).Fprintf(cmd.ErrOrStderr(), "Connection failed: %v\n\nPlease check your settings and try again.\n", err)
			return fmt.Errorf("config: connection test failed: %w", err)
		}

		color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), "Connection successful! Your Confluence settings are valid.")
		if user.DisplayName != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", user.DisplayName)
		}
		return nil
	},
}

// connectionTester is what testConnection needs from *confluence.API.
type connectionTester interface {
	CurrentUser(ctx context.Context) (*confluence.User, error)
	ListAllSpaces(ctx context.Context, includePersonal bool) (map[string]confluence.Space, error)
}

// testConnection fetches the current user and the space list, turning failures into advice.
func testConnection(ctx context.Context, api connectionTester, mode settings.AuthMode) (*confluence.User, error) {
	user, err := api.CurrentUser(ctx)
	if err == nil && user == nil {
		err = &confluence.StatusError{StatusCode: http.StatusUnauthorized, Status: "401 Unauthorized"}
	}
	if err == nil {
		_, err = api.ListAllSpaces(ctx, false)
	}
	if err != nil {
		return nil, explainConnectionError(err, mode)
	}
	return user, nil
}

func explainConnectionError(err error, mode settings.AuthMode) error {
	credentials := "username and password"
	if mode == settings.AuthToken {
		credentials = "API key"
	}

	var statusErr *confluence.StatusError
	switch {
	case errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("Authentication failed. Please verify your %s is correct.", credentials)
	case errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusForbidden:
		return errors.New("Access denied. Your account may not have sufficient permissions.")
	case errors.Is(err, confluence.ErrNotFound):
		return errors.New("Confluence instance not found. Please verify the URL is correct.")
	case errors.Is(err, confluence.ErrNetwork):
		return fmt.Errorf("Network error: %w", err)
	default:
		return err
	}
}

func init() {
	configCmd.AddCommand(testConfigCmd)
}
