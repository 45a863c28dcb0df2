/*
Copyright © 2024 paul <paul@denknerd.org>
*/

package main

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync/atomic"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/toothbrush/confluence-copier/copier"
	"github.com/toothbrush/confluence-copier/internal/browser"
	"github.com/toothbrush/confluence-copier/render"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

var (
	DryRun    bool
	NoBrowser bool
)

var copyUsage = strings.TrimSpace(`
Replace the content of the copy-to page with the content of the copy-from page.

The copy-to page keeps its title and gets a new version, so nothing is lost: its version history
(which is opened in your browser afterwards) still has the old content.  Pages can be given as
page IDs or URLs.

  confluence-copier copy 123456 https://ORG.atlassian.net/wiki/spaces/ENG/pages/654321/Target
`)

var copyCmd = &cobra.Command{
	Use:   "copy <copy-from> <copy-to>",
	Short: "Copy the content of one page onto another",
	Long:  copyUsage,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		api, s, stop, err := connect("copy")
		if err != nil {
			return err
		}
		defer stop()

		c := &copier.Copier{
			Settings: s,
			Pages:    api,
			DryRun:   DryRun,
			Logger:   &logger,
		}
		if !NoBrowser {
			c.Browser = browser.System{}
		}

		total := copier.Steps
		if DryRun {
			total = int(copier.StepFetchDestination) + 1
		}

		var current atomic.Value
		current.Store(copier.StepResolve.String())

		p := mpb.New(mpb.WithWidth(64), mpb.WithOutput(os.Stderr))
		bar := p.AddBar(int64(total),
			mpb.PrependDecorators(
				decor.Name("copy:", decor.WC{C: decor.DindentRight | decor.DextraSpace}),
				decor.Any(func(decor.Statistics) string { return current.Load().(string) }, decor.WCSyncSpaceR),
			),
			mpb.AppendDecorators(
				decor.CountersNoUnit("(%d/%d) "),
				decor.NewPercentage("%d"),
			),
		)
		c.OnStep = func(step copier.Step) {
			current.Store(step.String())
			bar.SetCurrent(int64(step))
		}

		result, err := c.Copy(cmd.Context(), args[0], args[1])
		if err != nil {
			bar.Abort(false)
			p.Wait()
			color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
			return fmt.Errorf("copy: %w", err)
		}
		current.Store("done")
		bar.SetCurrent(int64(total))
		p.Wait()

		if result.DryRun {
			return printDryRun(api.BaseURI, result)
		}

		color.New(color.FgGreen).Println(result.Message())
		fmt.Printf("Version history: %s\n", result.HistoryURL)
		if result.BrowserErr != nil {
			color.New(color.FgYellow).Printf("Couldn't open your browser: %v\n", result.BrowserErr)
		}
		return nil
	},
}

func printDryRun(base *url.URL, result *copier.Result) error {
	color.New(color.FgCyan).Println(result.Message())

	body, _ := result.Source.StorageValue()
	markdown, err := render.ToMarkdown(base, body)
	if err != nil {
		return fmt.Errorf("copy: couldn't render source content: %w", err)
	}

	fmt.Println()
	fmt.Println(color.New(color.Faint).Sprint("--- content that would be written ---"))
	fmt.Println(markdown)
	return nil
}

func init() {
	rootCmd.AddCommand(copyCmd)

	copyCmd.Flags().BoolVar(&DryRun, "dry-run", false, "fetch both pages and show what would be written, without updating anything")
	copyCmd.Flags().BoolVar(&NoBrowser, "no-browser", false, "don't open the version history afterwards")
}
