/*
Copyright © 2024 paul <paul@denknerd.org>
*/

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/toothbrush/confluence-copier/copier"
	"github.com/toothbrush/confluence-copier/internal/browser"
	"github.com/toothbrush/confluence-copier/internal/tui"
	"github.com/toothbrush/confluence-copier/preview"
)

var LogFile string

var interactiveUsage = strings.TrimSpace(`
Type or paste the copy-from and copy-to pages and watch where they live ("Space > Parent > Page")
update as you go, then press ctrl+s to copy.

Lookups start once you stop typing for a second.  Since the screen is taken over, logs only go to
--log-file.
`)

var interactiveCmd = &cobra.Command{
	Use:     "interactive [copy-from] [copy-to]",
	Aliases: []string{"ui"},
	Short:   "Pick pages with a live preview, then copy",
	Long:    interactiveUsage,
	Args:    cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tuiLogger, closeLog, err := interactiveLogger()
		if err != nil {
			return err
		}
		defer closeLog()

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		display := tui.NewDisplay()
		defer display.Close()

		coordinator := preview.New(display, preview.Options{Logger: &tuiLogger})
		config := tui.Config{
			Inputs:  coordinator,
			Display: display,
			Context: ctx,
		}
		if len(args) > 0 {
			config.From = args[0]
		}
		if len(args) > 1 {
			config.To = args[1]
		}

		c := &copier.Copier{Browser: browser.System{}, Logger: &tuiLogger}
		api, s, stop, err := connect("interactive")
		if err != nil {
			// Previews stay off; pressing copy reports what's missing.
			tuiLogger.Warn().Err(err).Msg("no connection to Confluence, previews disabled")
			c.Settings = flagSettings()
		} else {
			defer stop()
			coordinator.SetFetcher(api)
			c.Settings = s
			c.Pages = api
		}
		config.Copier = c

		go func() {
			if err := coordinator.Run(ctx); err != nil && ctx.Err() == nil {
				tuiLogger.Error().Err(err).Msg("preview stopped")
			}
		}()

		p := tea.NewProgram(tui.New(config), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("interactive: %w", err)
		}
		return nil
	},
}

func interactiveLogger() (zerolog.Logger, func(), error) {
	if LogFile == "" {
		return zerolog.New(io.Discard), func() {}, nil
	}

	path, err := homedir.Expand(LogFile)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("interactive: unable to expand homedir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("interactive: couldn't open log file: %w", err)
	}

	level := zerolog.InfoLevel
	if Debug {
		level = zerolog.DebugLevel
	}
	l := zerolog.New(f).With().Timestamp().Logger().Level(level)
	return l, func() { f.Close() }, nil
}

func init() {
	rootCmd.AddCommand(interactiveCmd)

	interactiveCmd.Flags().StringVar(&LogFile, "log-file", "", "append logs to this file")
}
