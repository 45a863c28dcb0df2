package preview

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/toothbrush/confluence-copier/confluence"
)

// fakeClock only moves when told to.  Due timers fire on the goroutine calling Advance.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock *fakeClock
	at    time.Time
	f     func()
	done  bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due, rest []*fakeTimer
	for _, t := range c.timers {
		switch {
		case t.done:
		case !t.at.After(c.now):
			t.done = true
			due = append(due, t)
		default:
			rest = append(rest, t)
		}
	}
	c.timers = rest
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		t.f()
	}
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	return true
}

type recordingDisplay struct {
	mu       sync.Mutex
	paths    []PathView
	statuses []Status
}

func (d *recordingDisplay) ShowPath(view PathView) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.paths = append(d.paths, view)
}

func (d *recordingDisplay) ShowStatus(status Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.statuses = append(d.statuses, status)
}

func (d *recordingDisplay) Paths() []PathView {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]PathView(nil), d.paths...)
}

func (d *recordingDisplay) Statuses() []Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Status(nil), d.statuses...)
}

// Last returns the latest view shown for side.
func (d *recordingDisplay) Last(side Side) (PathView, bool) {
	paths := d.Paths()
	for i := len(paths) - 1; i >= 0; i-- {
		if paths[i].Side == side {
			return paths[i], true
		}
	}
	return PathView{}, false
}

func (d *recordingDisplay) LastStatus() (Status, bool) {
	statuses := d.Statuses()
	if len(statuses) == 0 {
		return Status{}, false
	}
	return statuses[len(statuses)-1], true
}

type fakeFetcher struct {
	mu           sync.Mutex
	pages        map[uint64]*confluence.Content
	ancestors    map[uint64][]confluence.Content
	pageErr      error
	ancestorsErr error

	// When block is set every GetPage announces itself on started and then waits for block.
	block   chan struct{}
	started chan uint64

	calls     []uint64
	active    int
	maxActive int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		pages: map[uint64]*confluence.Content{
			100: {ID: "100", Title: "Child", Space: &confluence.Space{Key: "ENG", Name: "Engineering"}},
			111: {ID: "111", Title: "First", Space: &confluence.Space{Key: "ENG", Name: "Engineering"}},
			222: {ID: "222", Title: "Second", Space: &confluence.Space{Key: "OPS", Name: "Operations"}},
		},
		ancestors: map[uint64][]confluence.Content{
			100: {{ID: "1", Title: "Home"}, {ID: "2", Title: "Parent"}},
		},
	}
}

func (f *fakeFetcher) blocking() *fakeFetcher {
	f.block = make(chan struct{})
	f.started = make(chan uint64, 16)
	return f
}

func (f *fakeFetcher) GetPage(ctx context.Context, id uint64) (*confluence.Content, error) {
	f.mu.Lock()
	f.calls = append(f.calls, id)
	f.active++
	f.maxActive = max(f.maxActive, f.active)
	block := f.block
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.active--
		f.mu.Unlock()
	}()

	if block != nil {
		f.started <- id
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pageErr != nil {
		return nil, f.pageErr
	}
	page, ok := f.pages[id]
	if !ok {
		return nil, &confluence.StatusError{StatusCode: http.StatusNotFound, Status: "404 Not Found"}
	}
	return page, nil
}

func (f *fakeFetcher) GetPageWithAncestors(ctx context.Context, id uint64) (*confluence.Content, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ancestorsErr != nil {
		return nil, f.ancestorsErr
	}
	page, ok := f.pages[id]
	if !ok {
		return nil, &confluence.StatusError{StatusCode: http.StatusNotFound, Status: "404 Not Found"}
	}
	withAncestors := *page
	withAncestors.Ancestors = f.ancestors[id]
	return &withAncestors, nil
}

func (f *fakeFetcher) Calls() []uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uint64(nil), f.calls...)
}

func (f *fakeFetcher) MaxActive() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxActive
}

// release lets the next blocked GetPage through, after checking it is for id.
func (f *fakeFetcher) release(t *testing.T, id uint64) {
	t.Helper()
	select {
	case got := <-f.started:
		require.Equal(t, id, got)
	case <-time.After(2 * time.Second):
		t.Fatalf("GetPage(%d) was never called", id)
	}
	f.block <- struct{}{}
}

type harness struct {
	*Coordinator
	clock   *fakeClock
	display *recordingDisplay
}

func newHarness(t *testing.T, opts Options, fetcher PageFetcher) *harness {
	t.Helper()

	clock := newFakeClock()
	display := &recordingDisplay{}
	opts.Clock = clock
	c := New(display, opts)
	if fetcher != nil {
		c.SetFetcher(fetcher)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- c.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-errc
	})

	return &harness{Coordinator: c, clock: clock, display: display}
}

// settle waits until every event sent so far has been handled and no cycle is running.
func (h *harness) settle(t *testing.T) {
	t.Helper()
	require.Eventually(t, func() bool { return !h.busy() }, 2*time.Second, time.Millisecond)
}

func (h *harness) typeText(t *testing.T, side Side, text string) {
	t.Helper()
	h.InputChanged(side, text)
	h.settle(t)
}

func (h *harness) advance(t *testing.T, d time.Duration) {
	t.Helper()
	h.clock.Advance(d)
	h.settle(t)
}
