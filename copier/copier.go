// Package copier replaces the body of one Confluence page with the body of another.
//
// A copy is a straight line: resolve both pages, read the source body, read the destination's
// version, write a new destination version, open its history in the browser.  The first failing
// step ends the copy; nothing is retried or rolled back.  Confluence only commits the update if
// it succeeds, so a failed copy leaves the destination as it was.
package copier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/toothbrush/confluence-copier/confluence"
	"github.com/toothbrush/confluence-copier/internal/browser"
	"github.com/toothbrush/confluence-copier/pageid"
	"github.com/toothbrush/confluence-copier/settings"
)

var (
	ErrSourceContentUnavailable = errors.New("copier: failed to fetch copy-from page content")
	ErrDestinationUnavailable   = errors.New("copier: failed to fetch copy-to page")
	ErrUpdateFailed             = errors.New("copier: failed to update copy-to page")
)

const MessageMissingInput = "Please enter both copy from and copy to page information."

// PageStore is the part of the Confluence client a copy needs.
type PageStore interface {
	GetPageWithBody(ctx context.Context, id uint64) (*confluence.Content, error)
	GetPage(ctx context.Context, id uint64) (*confluence.Content, error)
	UpdatePage(ctx context.Context, update confluence.UpdateContent) (*confluence.Content, error)
}

type Step int

const (
	StepResolve Step = iota
	StepFetchSource
	StepFetchDestination
	StepUpdate
	StepOpenHistory
)

// Steps is how many steps a full copy reports; a dry run stops after StepFetchDestination.
const Steps = int(StepOpenHistory) + 1

func (s Step) String() string {
	switch s {
	case StepResolve:
		return "Resolving pages..."
	case StepFetchSource:
		return "Fetching copy from page content..."
	case StepFetchDestination:
		return "Fetching copy to page info..."
	case StepUpdate:
		return "Updating copy to page..."
	case StepOpenHistory:
		return "Opening version history..."
	default:
		return fmt.Sprintf("step %d", int(s))
	}
}

type Copier struct {
	Settings settings.Settings
	Pages    PageStore

	// Opens the destination's history after a copy.  Optional.
	Browser browser.Opener

	// Called as each step starts.  Optional.
	OnStep func(Step)

	// Stop before writing anything.
	DryRun bool

	Logger *zerolog.Logger
}

type Result struct {
	SourceID      pageid.PageID
	DestinationID pageid.PageID

	Source *confluence.Content
	// After a real copy this is what Confluence returned from the update, after a dry run the
	// destination as it currently is.
	Destination *confluence.Content

	// Version the destination has (or would have) after the copy.
	NewVersion int
	HistoryURL string

	// Whether the history view was handed to the browser, and if not, why.  Neither makes the
	// copy a failure.
	HistoryOpened bool
	BrowserErr    error

	DryRun bool
}

func (r *Result) Message() string {
	if r.DryRun {
		return fmt.Sprintf("Would copy content from '%s' to '%s' (version %d to %d).",
			r.Source.Title, r.Destination.Title, r.NewVersion-1, r.NewVersion)
	}
	return fmt.Sprintf("Successfully copied content from '%s' to '%s'.", r.Source.Title, r.Destination.Title)
}

// Copy copies the body of page from onto page to.  Both take anything pageid.Resolve accepts.
//
// Settings or input problems come back as *settings.ValidationError before Confluence is
// contacted, unparseable input as the pageid error.  Later failures wrap
// ErrSourceContentUnavailable, ErrDestinationUnavailable or ErrUpdateFailed.
func (c *Copier) Copy(ctx context.Context, from, to string) (*Result, error) {
	log := c.logger()

	if err := c.Settings.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
		return nil, &settings.ValidationError{Message: MessageMissingInput}
	}
	if c.Pages == nil {
		return nil, fmt.Errorf("copier: no Confluence client")
	}

	c.step(StepResolve)
	sourceID, err := pageid.Resolve(from)
	if err != nil {
		return nil, err
	}
	destinationID, err := pageid.Resolve(to)
	if err != nil {
		return nil, err
	}
	log.Debug().Stringer("source", sourceID).Stringer("destination", destinationID).Msg("copier: resolved pages")

	c.step(StepFetchSource)
	source, err := c.Pages.GetPageWithBody(ctx, uint64(sourceID))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceContentUnavailable, err)
	}
	body, ok := source.StorageValue()
	if !ok {
		return nil, fmt.Errorf("%w: page %s came back without a body", ErrSourceContentUnavailable, sourceID)
	}

	c.step(StepFetchDestination)
	destination, err := c.Pages.GetPage(ctx, uint64(destinationID))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDestinationUnavailable, err)
	}
	if destination == nil {
		return nil, fmt.Errorf("%w: page %s", ErrDestinationUnavailable, destinationID)
	}
	// without the current version there's no next one to write
	if destination.VersionNumber() < 1 {
		return nil, fmt.Errorf("%w: page %s came back without a version", ErrDestinationUnavailable, destinationID)
	}

	result := &Result{
		SourceID:      sourceID,
		DestinationID: destinationID,
		Source:        source,
		Destination:   destination,
		NewVersion:    destination.VersionNumber() + 1,
		HistoryURL:    c.Settings.HistoryURL(destinationID),
		DryRun:        c.DryRun,
	}
	if c.DryRun {
		log.Info().Stringer("destination", destinationID).Int("version", result.NewVersion).Msg("copier: dry run, not updating")
		return result, nil
	}

	c.step(StepUpdate)
	updated, err := c.Pages.UpdatePage(ctx, confluence.UpdateContent{
		ID:    uint64(destinationID),
		Type:  "page",
		Title: destination.Title,
		Body: confluence.Body{
			Storage: &confluence.Storage{Value: body, Representation: "storage"},
		},
		Version: confluence.Version{Number: result.NewVersion},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpdateFailed, err)
	}
	if updated == nil {
		return nil, fmt.Errorf("%w: Confluence returned no page", ErrUpdateFailed)
	}
	result.Destination = updated
	if updated.Title == "" {
		// some servers answer with a bare id/version
		result.Destination.Title = destination.Title
	}
	log.Info().Stringer("destination", destinationID).Int("version", result.NewVersion).Msg("copier: destination updated")

	c.step(StepOpenHistory)
	if c.Browser != nil {
		if err := c.Browser.Open(result.HistoryURL); err != nil {
			log.Warn().Err(err).Str("url", result.HistoryURL).Msg("copier: couldn't open version history")
			result.BrowserErr = err
		} else {
			result.HistoryOpened = true
		}
	}

	return result, nil
}

func (c *Copier) step(s Step) {
	c.logger().Debug().Stringer("step", s).Msg("copier: step")
	if c.OnStep != nil {
		c.OnStep(s)
	}
}

func (c *Copier) logger() *zerolog.Logger {
	if c.Logger == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return c.Logger
}
