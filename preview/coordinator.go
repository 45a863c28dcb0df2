// Package preview keeps a breadcrumb ("Space > Parent > Page") for the copy-from and copy-to
// inputs up to date while the user is typing, without hammering Confluence.
//
// All state lives in one goroutine (Coordinator.Run) that handles one event at a time: input
// changes, timer expiries and finished fetches.  Input changes restart one shared debounce
// timer; when it fires a fetch cycle looks up both sides.  At most one cycle is in flight, and a
// cycle whose inputs have changed by the time it finishes is thrown away.
package preview

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/toothbrush/confluence-copier/confluence"
	"github.com/toothbrush/confluence-copier/pageid"
	"golang.org/x/sync/errgroup"
)

type Side int

const (
	Source Side = iota
	Destination
)

var sides = [...]Side{Source, Destination}

func (s Side) String() string {
	switch s {
	case Source:
		return "source"
	case Destination:
		return "destination"
	default:
		return "unknown"
	}
}

// State is what a breadcrumb label is showing.
type State int

const (
	Unset State = iota
	Invalid
	Resolved
)

const (
	MessageUnset   = "Select a page to see its path"
	MessageInvalid = "Invalid page or page not found"
	MessageUpdated = "Page information updated"
	MessageReady   = "Ready"

	fetchErrorPrefix = "Error fetching page info: "
)

// PathView is one side's breadcrumb label.  ID is only set when State is Resolved.
type PathView struct {
	Side  Side
	State State
	Text  string
	ID    pageid.PageID
}

type StatusKind int

const (
	StatusReady StatusKind = iota
	StatusInfo
	StatusSuccess
	StatusWarning
	StatusError
)

type Status struct {
	Kind StatusKind
	Text string
}

// Display receives everything the coordinator wants to show.  Calls come from the coordinator's
// goroutine, in order.
type Display interface {
	ShowPath(view PathView)
	ShowStatus(status Status)
}

// PageFetcher is the part of the Confluence client previews need.
type PageFetcher interface {
	GetPage(ctx context.Context, id uint64) (*confluence.Content, error)
	GetPageWithAncestors(ctx context.Context, id uint64) (*confluence.Content, error)
}

const (
	DefaultDebounce     = time.Second
	DefaultMinSpacing   = time.Second
	DefaultStatusRevert = 3 * time.Second
)

// Options tune a Coordinator; zero values get the defaults.
type Options struct {
	// Quiet period after the last keystroke before a fetch cycle starts.
	Debounce time.Duration
	// Minimum time between the end of one cycle that talked to Confluence and the start of
	// the next.  Cycles that come too early are dropped, not postponed.
	MinSpacing time.Duration
	// How long a fetch error stays in the status line before it goes back to "Ready".
	StatusRevert time.Duration

	Clock  Clock
	Logger *zerolog.Logger
}

type Coordinator struct {
	display Display
	clock   Clock
	log     zerolog.Logger

	debounce     time.Duration
	minSpacing   time.Duration
	statusRevert time.Duration

	events  chan any
	stopped chan struct{}

	// Everything below belongs to the Run goroutine.
	inputs      [2]string
	fetcher     PageFetcher
	timer       Timer
	timerGen    uint64
	inFlight    bool
	pending     bool
	lastCall    time.Time
	statusTimer Timer
	statusGen   uint64
}

type (
	inputChanged struct {
		side Side
		text string
	}
	timerFired struct {
		gen uint64
	}
	statusExpired struct {
		gen uint64
	}
	fetcherChanged struct {
		fetcher PageFetcher
	}
	fetchCompleted struct {
		snapshot [2]string
		views  [2]*PathView
		called bool
		err    error
	}
	// busyQuery is answered with inFlight once every earlier event has been handled.  Only
	// tests send it, to wait for the loop to go quiet.
	busyQuery struct {
		reply chan bool
	}
)

func New(display Display, opts Options) *Coordinator {
	c := &Coordinator{
		display:      display,
		clock:        opts.Clock,
		debounce:     opts.Debounce,
		minSpacing:   opts.MinSpacing,
		statusRevert: opts.StatusRevert,
		events:       make(chan any, 64),
		stopped:      make(chan struct{}),
	}
	if c.clock == nil {
		c.clock = SystemClock{}
	}
	if opts.Logger != nil {
		c.log = *opts.Logger
	} else {
		c.log = zerolog.Nop()
	}
	if c.debounce <= 0 {
		c.debounce = DefaultDebounce
	}
	if c.minSpacing <= 0 {
		c.minSpacing = DefaultMinSpacing
	}
	if c.statusRevert <= 0 {
		c.statusRevert = DefaultStatusRevert
	}
	return c
}

// InputChanged records the new text of one input and restarts the debounce timer.
func (c *Coordinator) InputChanged(side Side, text string) {
	c.send(inputChanged{side: side, text: text})
}

// SetFetcher replaces the client used for lookups, e.g. after the settings changed.  With a nil
// fetcher cycles are skipped.
func (c *Coordinator) SetFetcher(f PageFetcher) {
	c.send(fetcherChanged{fetcher: f})
}

// Run processes events until ctx is done.  It must only be called once.  Lookups still in flight
// when ctx is cancelled see a cancelled context and their results are dropped.
func (c *Coordinator) Run(ctx context.Context) error {
	defer close(c.stopped)
	defer c.stopTimers()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-c.events:
			c.handle(ctx, ev)
		}
	}
}

func (c *Coordinator) send(ev any) {
	select {
	case c.events <- ev:
	case <-c.stopped:
	}
}

func (c *Coordinator) handle(ctx context.Context, ev any) {
	switch ev := ev.(type) {
	case inputChanged:
		c.inputs[ev.side] = ev.text
		c.armTimer(c.debounce)

	case timerFired:
		if ev.gen != c.timerGen {
			// restarted after this one was already on its way
			return
		}
		c.timer = nil
		c.startCycle(ctx)

	case fetchCompleted:
		c.finishCycle(ev)

	case statusExpired:
		if ev.gen != c.statusGen {
			return
		}
		c.statusTimer = nil
		c.display.ShowStatus(Status{Kind: StatusReady, Text: MessageReady})

	case fetcherChanged:
		c.fetcher = ev.fetcher

	case busyQuery:
		ev.reply <- c.inFlight
	}
}

func (c *Coordinator) armTimer(d time.Duration) {
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timerGen++
	gen := c.timerGen
	c.timer = c.clock.AfterFunc(d, func() { c.send(timerFired{gen: gen}) })
}

func (c *Coordinator) stopTimers() {
	if c.timer != nil {
		c.timer.Stop()
	}
	if c.statusTimer != nil {
		c.statusTimer.Stop()
	}
}

func (c *Coordinator) startCycle(ctx context.Context) {
	if c.inFlight {
		c.log.Debug().Msg("preview: lookup still running, will go again when it's done")
		c.pending = true
		return
	}
	if c.fetcher == nil {
		c.log.Debug().Msg("preview: no connection configured, skipping lookup")
		return
	}
	if !c.lastCall.IsZero() {
		if since := c.clock.Now().Sub(c.lastCall); since < c.minSpacing {
			c.log.Debug().Dur("since_last_call", since).Msg("preview: too soon after the previous lookup, skipping")
			return
		}
	}

	c.inFlight = true
	snapshot := c.inputs
	fetcher := c.fetcher
	go func() {
		c.send(c.runCycle(ctx, fetcher, snapshot))
	}()
}

func (c *Coordinator) runCycle(ctx context.Context, fetcher PageFetcher, snapshot [2]string) fetchCompleted {
	result := fetchCompleted{snapshot: snapshot}

	var called atomic.Bool
	var g errgroup.Group
	for _, side := range sides {
		g.Go(func() error {
			view, remote, err := c.describe(ctx, fetcher, side, snapshot[side])
			if remote {
				called.Store(true)
			}
			result.views[side] = &view
			return err
		})
	}

	result.err = g.Wait()
	result.called = called.Load()
	return result
}

// describe works out one side's label.  remote reports whether Confluence was asked.  An error
// means the lookup itself broke (network, credentials), as opposed to the page not being there;
// the side is still labelled invalid so it never keeps a path for a page it no longer names.
func (c *Coordinator) describe(ctx context.Context, fetcher PageFetcher, side Side, text string) (view PathView, remote bool, err error) {
	if strings.TrimSpace(text) == "" {
		return PathView{Side: side, State: Unset, Text: MessageUnset}, false, nil
	}

	invalid := PathView{Side: side, State: Invalid, Text: MessageInvalid}

	id, err := pageid.Resolve(text)
	if err != nil {
		return invalid, false, nil
	}

	page, err := fetcher.GetPage(ctx, uint64(id))
	if err != nil {
		if errors.Is(err, confluence.ErrNetwork) || errors.Is(err, confluence.ErrAuthentication) {
			return invalid, true, err
		}
		c.log.Debug().Err(err).Stringer("side", side).Stringer("id", id).Msg("preview: page lookup failed")
		return invalid, true, nil
	}
	if page == nil {
		return invalid, true, nil
	}

	withPath := *page
	if ancestors, err := fetcher.GetPageWithAncestors(ctx, uint64(id)); err != nil {
		c.log.Debug().Err(err).Stringer("side", side).Stringer("id", id).Msg("preview: no ancestors, showing space and title only")
	} else if ancestors != nil {
		withPath.Ancestors = ancestors.Ancestors
	}

	return PathView{Side: side, State: Resolved, Text: HierarchyPath(&withPath), ID: id}, true, nil
}

func (c *Coordinator) finishCycle(done fetchCompleted) {
	c.inFlight = false
	if done.called {
		c.lastCall = c.clock.Now()
	}

	if done.snapshot != c.inputs {
		c.log.Debug().Msg("preview: inputs changed during lookup, dropping results")
	} else {
		for _, view := range done.views {
			if view != nil {
				c.display.ShowPath(*view)
			}
		}

		if done.err != nil {
			c.log.Warn().Err(done.err).Msg("preview: lookup failed")
			c.setStatus(Status{Kind: StatusWarning, Text: fetchErrorPrefix + done.err.Error()}, true)
		} else {
			c.setStatus(Status{Kind: StatusSuccess, Text: MessageUpdated}, false)
		}
	}

	if c.pending {
		c.pending = false
		// the rate gate would drop anything sooner
		c.armTimer(max(c.debounce, c.minSpacing))
	}
}

// setStatus shows s, cancelling any pending revert.  With revert set, s goes back to "Ready"
// after the revert delay unless something else is shown first.
func (c *Coordinator) setStatus(s Status, revert bool) {
	if c.statusTimer != nil {
		c.statusTimer.Stop()
		c.statusTimer = nil
	}
	c.statusGen++
	c.display.ShowStatus(s)

	if revert {
		gen := c.statusGen
		c.statusTimer = c.clock.AfterFunc(c.statusRevert, func() { c.send(statusExpired{gen: gen}) })
	}
}
