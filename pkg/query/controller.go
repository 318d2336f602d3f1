// Package query owns the state of a paginated job search and the single
// fetch routine that updates it.
package query

import (
	"context"
	"sync"
	"time"

	"jobboard/pkg/api"
	"jobboard/pkg/logger"
	"jobboard/pkg/roles"
)

// PageChange is emitted whenever Previous or Next moves the current page.
type PageChange struct {
	Keyword  string
	Page     int
	Previous int
}

// PageListener observes page changes. Listeners run on the goroutine that
// changed the page, after the controller lock is released.
type PageListener func(ctx context.Context, change PageChange)

type Option func(*Controller)

// WithAsyncFetch runs the fetch routine on its own goroutine so callers see
// the loading state while the request is in flight.
func WithAsyncFetch() Option {
	return func(c *Controller) {
		c.async = true
	}
}

// WithFetchTimeout bounds every fetch routine.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.fetchTimeout = d
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Controller) {
		c.log = l
	}
}

// Controller serializes every mutation of one State. The network call runs
// outside the lock; each fetch carries a generation number and only the
// newest generation may write its outcome back.
type Controller struct {
	mu         sync.Mutex
	state      State
	generation uint64
	listeners  []PageListener

	fetcher      api.JobsClient
	async        bool
	fetchTimeout time.Duration
	wg           sync.WaitGroup
	log          *logger.Logger
}

func NewController(fetcher api.JobsClient, opts ...Option) *Controller {
	c := &Controller{
		state:   newState(),
		fetcher: fetcher,
		log:     logger.GetLogger().WithField("component", "query_controller"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.OnPageChange(c.refetch)
	return c
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// OnPageChange subscribes listener to page changes.
func (c *Controller) OnPageChange(listener PageListener) {
	c.mu.Lock()
	c.listeners = append(c.listeners, listener)
	c.mu.Unlock()
}

// SelectKeyword stores the normalized form of rawLabel and resets the
// pagination. It never fetches. Any fetch still in flight is superseded.
func (c *Controller) SelectKeyword(rawLabel string) {
	keyword := roles.Normalize(rawLabel)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.state.Keyword = keyword
	c.state.Page = 1
	c.state.Jobs = []api.JobPosting{}
	c.state.Error = ""
	c.state.Loading = false

	c.log.WithField("keyword", keyword).Debug("Keyword selected")
}

// RequestFetch is the user-initiated fetch. Without a keyword it records a
// validation error and makes no request.
func (c *Controller) RequestFetch(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Keyword == "" {
		c.state.Error = MsgNoRoleSelected
		c.mu.Unlock()
		return &ValidationError{Err: ErrNoRoleSelected}
	}
	c.mu.Unlock()

	return c.dispatch(ctx)
}

// GoToPreviousPage moves one page back and reports whether it did.
func (c *Controller) GoToPreviousPage(ctx context.Context) bool {
	return c.movePage(ctx, -1)
}

// GoToNextPage moves one page forward and reports whether it did.
func (c *Controller) GoToNextPage(ctx context.Context) bool {
	return c.movePage(ctx, 1)
}

func (c *Controller) movePage(ctx context.Context, delta int) bool {
	c.mu.Lock()
	next := c.state.Page + delta
	if next < 1 || next > c.state.TotalPages {
		c.mu.Unlock()
		return false
	}

	change := PageChange{Keyword: c.state.Keyword, Page: next, Previous: c.state.Page}
	c.state.Page = next
	listeners := make([]PageListener, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, listener := range listeners {
		listener(ctx, change)
	}
	return true
}

// refetch is the controller's own page listener: one fetch per change, and
// only when a keyword is active.
func (c *Controller) refetch(ctx context.Context, change PageChange) {
	if change.Keyword == "" {
		return
	}
	if err := c.dispatch(ctx); err != nil {
		c.log.WithError(err).WithField("page", change.Page).Debug("Page refetch failed")
	}
}

// Wait blocks until every asynchronous fetch has completed.
func (c *Controller) Wait() {
	c.wg.Wait()
}

func (c *Controller) dispatch(ctx context.Context) error {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	keyword, page := c.state.Keyword, c.state.Page
	c.state.Loading = true
	c.state.Error = ""
	c.mu.Unlock()

	if !c.async {
		return c.fetch(ctx, gen, keyword, page)
	}

	// The caller's context may end with its request; keep its values only.
	detached := context.WithoutCancel(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		_ = c.fetch(detached, gen, keyword, page)
	}()
	return nil
}

func (c *Controller) fetch(ctx context.Context, gen uint64, keyword string, page int) error {
	if c.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.fetchTimeout)
		defer cancel()
	}

	resp, err := c.fetcher.FetchJobs(ctx, keyword, page)
	if err == nil && resp == nil {
		err = api.ErrMalformedPayload
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	log := c.log.WithFields(map[string]interface{}{
		"keyword":    keyword,
		"page":       page,
		"generation": gen,
	})

	if gen != c.generation {
		log.Debug("Discarding superseded fetch result")
		return nil
	}
	c.state.Loading = false

	if err != nil {
		c.state.Error = MsgFetchFailed
		log.WithError(err).Warn("Fetch failed")
		return &FetchError{Keyword: keyword, Page: page, Err: err}
	}

	jobs := make([]api.JobPosting, len(resp.Jobs))
	copy(jobs, resp.Jobs)
	c.state.Jobs = jobs

	if page == 1 {
		total := 1
		if resp.TotalPages != nil && *resp.TotalPages >= 1 {
			total = *resp.TotalPages
		}
		c.state.TotalPages = total
	}

	log.WithField("jobs", len(jobs)).Debug("Fetch applied")
	return nil
}
