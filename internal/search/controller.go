// Package search holds the view state of the incident search page and
// drives its query cycles against the incident service.
//
// A query cycle goes Idle -> Loading -> (Success | Failure) -> Idle. Every
// action that needs fresh results enters Loading synchronously and hands back
// a *Query; running the query performs the request and applies its outcome.
// Callers decide where the request runs: inline for the web shell, inside a
// bubbletea command for the terminal front-end.
package search

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/cragr/incident-search/internal/models"
)

// Searcher is the incident service operation the controller depends on.
type Searcher interface {
	SearchIncidents(ctx context.Context, filters models.SearchFilters) (*models.ResultPage, error)
}

// Observer receives the outcome of every finished query cycle.
type Observer interface {
	ObserveQuery(outcome string, elapsed time.Duration)
}

// Query cycle outcomes reported to an Observer.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeStale   = "stale"
)

// Pagination is the page metadata of the last successful query.
type Pagination struct {
	TotalElements int64
	TotalPages    int
	CurrentPage   int
	PageSize      int
	HasNext       bool
	HasPrevious   bool
}

// State is a point-in-time copy of everything the search page displays.
type State struct {
	Filters   models.SearchFilters
	Incidents []models.Incident
	Pagination

	Loading bool

	// LastQueryTime is the wall-clock duration of the last applied query
	// cycle. It is meaningful only when QueryTimed is set.
	LastQueryTime time.Duration
	QueryTimed    bool

	// ErrorMessage is the user-visible failure text; Err is the failure itself.
	ErrorMessage string
	Err          error
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces time.Now as the controller's clock.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithObserver reports finished query cycles to o.
func WithObserver(o Observer) Option {
	return func(c *Controller) {
		c.observer = o
	}
}

// WithErrorFormatter sets how a failure becomes the user-visible message.
func WithErrorFormatter(format func(error) string) Option {
	return func(c *Controller) {
		c.formatError = format
	}
}

type subscriber struct {
	id int
	fn func(State)
}

// Controller owns the search view state. All mutations go through its
// methods; it is safe for concurrent use.
type Controller struct {
	searcher    Searcher
	logger      *slog.Logger
	now         func() time.Time
	observer    Observer
	formatError func(error) string

	mu          sync.Mutex
	state       State
	generation  uint64
	subscribers []subscriber
	nextSubID   int
}

// NewController creates a controller with default filters and no results.
func NewController(searcher Searcher, logger *slog.Logger, opts ...Option) *Controller {
	c := &Controller{
		searcher:    searcher,
		logger:      logger,
		now:         time.Now,
		formatError: DefaultErrorMessage,
		state:       initialState(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DefaultErrorMessage is the failure message used when no formatter is set.
func DefaultErrorMessage(err error) string {
	return "search failed: " + err.Error()
}

func initialState() State {
	filters := models.DefaultFilters()
	return State{
		Filters:    filters,
		Incidents:  []models.Incident{},
		Pagination: Pagination{PageSize: filters.Size},
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() State {
	s := c.state
	s.Incidents = slices.Clone(c.state.Incidents)
	if s.Incidents == nil {
		s.Incidents = []models.Incident{}
	}
	return s
}

// Subscribe registers fn to be called with a fresh snapshot after every
// state change. The returned function removes the subscription.
func (c *Controller) Subscribe(fn func(State)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSubID
	c.nextSubID++
	c.subscribers = append(c.subscribers, subscriber{id: id, fn: fn})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.subscribers = slices.DeleteFunc(c.subscribers, func(s subscriber) bool {
			return s.id == id
		})
	}
}

// mutate applies fn under the lock and notifies subscribers afterwards.
func (c *Controller) mutate(fn func(s *State)) {
	c.apply(func(s *State) bool {
		fn(s)
		return true
	})
}

// apply runs fn under the lock and notifies subscribers only if fn reports
// a change.
func (c *Controller) apply(fn func(s *State) bool) {
	c.mu.Lock()
	if !fn(&c.state) {
		c.mu.Unlock()
		return
	}
	snapshot := c.snapshotLocked()
	subs := slices.Clone(c.subscribers)
	c.mu.Unlock()

	for _, sub := range subs {
		sub.fn(snapshot)
	}
}

// Filters returns the current filter snapshot.
func (c *Controller) Filters() models.SearchFilters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Filters
}

// UpdateFilter replaces one text filter without issuing a request. It
// reports false for an unknown key.
func (c *Controller) UpdateFilter(key, value string) bool {
	updated := false
	c.apply(func(s *State) bool {
		s.Filters, updated = s.Filters.With(key, value)
		return updated
	})
	return updated
}

// Restore rehydrates the controller from a previously rendered view: the
// filters that produced it and the pagination it showed.
func (c *Controller) Restore(filters models.SearchFilters, pagination Pagination) {
	filters = filters.Normalized()
	c.mutate(func(s *State) {
		s.Filters = filters
		s.Pagination = pagination
	})
}

// Search starts a query cycle with the current filters.
func (c *Controller) Search() *Query {
	return c.begin(nil)
}

// ChangePage starts a query cycle for the given zero-based page.
func (c *Controller) ChangePage(page int) *Query {
	if page < 0 {
		page = 0
	}
	return c.begin(func(f *models.SearchFilters) {
		f.Page = page
	})
}

// ChangePageSize starts a query cycle with a new page size, back on page zero.
func (c *Controller) ChangePageSize(size int) *Query {
	if size < 0 {
		size = 0
	}
	return c.begin(func(f *models.SearchFilters) {
		f.Size = size
		f.Page = 0
	})
}

// NextPage moves one page forward. It returns nil, and changes nothing,
// unless the last result reported a next page.
func (c *Controller) NextPage() *Query {
	c.mu.Lock()
	hasNext, current := c.state.HasNext, c.state.CurrentPage
	c.mu.Unlock()

	if !hasNext {
		return nil
	}
	return c.ChangePage(current + 1)
}

// PreviousPage moves one page back. It returns nil, and changes nothing,
// unless the last result reported a previous page.
func (c *Controller) PreviousPage() *Query {
	c.mu.Lock()
	hasPrevious, current := c.state.HasPrevious, c.state.CurrentPage
	c.mu.Unlock()

	if !hasPrevious {
		return nil
	}
	return c.ChangePage(current - 1)
}

// ChangeSort sorts by field. Reselecting the current field toggles the
// direction; a new field sorts ascending. Either way the page resets to zero.
func (c *Controller) ChangeSort(field string) *Query {
	return c.begin(func(f *models.SearchFilters) {
		if f.Sort == field {
			f.Direction = f.Direction.Toggle()
		} else {
			f.Sort = field
			f.Direction = models.SortAsc
		}
		f.Page = 0
	})
}

// ResetFilters restores the default filters and clears results, totals,
// timing and error without issuing a request. Outstanding queries are
// discarded when they resolve.
func (c *Controller) ResetFilters() {
	c.mutate(func(s *State) {
		c.generation++
		*s = initialState()
	})
}

// begin enters Loading: it applies edit to the filters, clears the error,
// records the start time and bumps the generation.
func (c *Controller) begin(edit func(f *models.SearchFilters)) *Query {
	q := &Query{c: c}
	c.mutate(func(s *State) {
		if edit != nil {
			edit(&s.Filters)
		}
		s.ErrorMessage = ""
		s.Err = nil
		s.Loading = true

		c.generation++
		q.generation = c.generation
		q.filters = s.Filters
		q.started = c.now()
	})
	return q
}

// finish applies the outcome of q unless a newer cycle has started since.
func (c *Controller) finish(q *Query, page *models.ResultPage, err error) {
	elapsed := c.now().Sub(q.started)
	if elapsed < 0 {
		elapsed = 0
	}

	var message string
	if err != nil {
		c.logger.Error("incident search failed",
			"generation", q.generation,
			"page", q.filters.Page,
			"error", err,
		)
		message = c.formatError(err)
	}

	outcome := OutcomeStale
	c.apply(func(s *State) bool {
		if q.generation != c.generation {
			return false
		}
		s.LastQueryTime = elapsed
		s.QueryTimed = true
		s.Loading = false

		if err != nil {
			outcome = OutcomeFailure
			s.ErrorMessage = message
			s.Err = err
			s.Incidents = []models.Incident{}
			return true
		}

		outcome = OutcomeSuccess
		s.Incidents = slices.Clone(page.Items)
		s.Pagination = Pagination{
			TotalElements: page.TotalElements,
			TotalPages:    page.TotalPages,
			CurrentPage:   page.CurrentPage,
			PageSize:      page.PageSize,
			HasNext:       page.HasNext,
			HasPrevious:   page.HasPrevious,
		}
		return true
	})

	if outcome == OutcomeStale {
		c.logger.Debug("discarding superseded search result",
			"generation", q.generation,
			"elapsed", elapsed,
		)
	}
	c.observe(outcome, elapsed)
}

func (c *Controller) observe(outcome string, elapsed time.Duration) {
	if c.observer != nil {
		c.observer.ObserveQuery(outcome, elapsed)
	}
}

// Query is one issued query cycle.
type Query struct {
	c          *Controller
	generation uint64
	filters    models.SearchFilters
	started    time.Time
}

// Filters returns the filter snapshot the query was issued with.
func (q *Query) Filters() models.SearchFilters {
	if q == nil {
		return models.SearchFilters{}
	}
	return q.filters
}

// Run performs the request and applies its outcome to the controller.
// Failures end up in the controller state, never in the caller. Running a
// nil Query does nothing.
func (q *Query) Run(ctx context.Context) {
	if q == nil {
		return
	}
	page, err := q.c.searcher.SearchIncidents(ctx, q.filters)
	if err == nil && page == nil {
		page = &models.ResultPage{}
	}
	q.c.finish(q, page, err)
}
