package search

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cragr/incident-search/internal/models"
)

// mockSearcher implements Searcher for testing.
type mockSearcher struct {
	searchFn func(ctx context.Context, filters models.SearchFilters) (*models.ResultPage, error)

	mu    sync.Mutex
	calls []models.SearchFilters
}

func (m *mockSearcher) SearchIncidents(ctx context.Context, filters models.SearchFilters) (*models.ResultPage, error) {
	m.mu.Lock()
	m.calls = append(m.calls, filters)
	m.mu.Unlock()
	if m.searchFn != nil {
		return m.searchFn(ctx, filters)
	}
	return &models.ResultPage{Items: []models.Incident{}, PageSize: filters.Size, CurrentPage: filters.Page}, nil
}

func (m *mockSearcher) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockSearcher) lastCall() models.SearchFilters {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[len(m.calls)-1]
}

// mockObserver records observed query outcomes.
type mockObserver struct {
	outcomes []string
}

func (m *mockObserver) ObserveQuery(outcome string, elapsed time.Duration) {
	m.outcomes = append(m.outcomes, outcome)
}

// stepClock advances by step on every call.
type stepClock struct {
	current time.Time
	step    time.Duration
}

func (c *stepClock) Now() time.Time {
	c.current = c.current.Add(c.step)
	return c.current
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

func threeIncidentPage() *models.ResultPage {
	return &models.ResultPage{
		Items: []models.Incident{
			{ID: 1, Title: "Server down", Severity: models.SeverityHigh},
			{ID: 2, Title: "Disk full", Severity: models.SeverityMedium},
			{ID: 3, Title: "Slow query", Severity: models.SeverityLow},
		},
		TotalElements: 23,
		TotalPages:    3,
		CurrentPage:   0,
		PageSize:      10,
		HasNext:       true,
		HasPrevious:   false,
	}
}

func TestController_InitialState(t *testing.T) {
	c := NewController(&mockSearcher{}, newTestLogger())
	s := c.Snapshot()

	if s.Filters != models.DefaultFilters() {
		t.Errorf("Filters = %+v, want defaults", s.Filters)
	}
	if len(s.Incidents) != 0 || s.Loading || s.QueryTimed || s.ErrorMessage != "" {
		t.Errorf("unexpected initial state %+v", s)
	}
}

func TestController_Search_Success(t *testing.T) {
	searcher := &mockSearcher{
		searchFn: func(ctx context.Context, filters models.SearchFilters) (*models.ResultPage, error) {
			return threeIncidentPage(), nil
		},
	}
	clock := &stepClock{current: time.Unix(0, 0), step: 250 * time.Millisecond}
	observer := &mockObserver{}
	c := NewController(searcher, newTestLogger(), WithClock(clock.Now), WithObserver(observer))

	q := c.Search()
	if !c.Snapshot().Loading {
		t.Error("expected Loading to be set before the query runs")
	}
	q.Run(context.Background())

	s := c.Snapshot()
	if s.Loading {
		t.Error("expected Loading to be cleared")
	}
	if len(s.Incidents) != 3 {
		t.Errorf("expected 3 incidents, got %d", len(s.Incidents))
	}
	if s.TotalElements != 23 || s.TotalPages != 3 || !s.HasNext || s.HasPrevious {
		t.Errorf("unexpected pagination %+v", s.Pagination)
	}
	if !s.QueryTimed || s.LastQueryTime != 250*time.Millisecond {
		t.Errorf("LastQueryTime = %v (timed=%v), want 250ms", s.LastQueryTime, s.QueryTimed)
	}
	if s.ErrorMessage != "" || s.Err != nil {
		t.Errorf("expected no error, got %q", s.ErrorMessage)
	}
	if len(observer.outcomes) != 1 || observer.outcomes[0] != OutcomeSuccess {
		t.Errorf("observer outcomes = %v", observer.outcomes)
	}
}

func TestController_Search_FailureScenarioC(t *testing.T) {
	searcher := &mockSearcher{
		searchFn: func(ctx context.Context, filters models.SearchFilters) (*models.ResultPage, error) {
			return nil, errors.New("Network Error")
		},
	}
	c := NewController(searcher, newTestLogger())
	c.Restore(models.DefaultFilters(), Pagination{TotalElements: 23, TotalPages: 3, PageSize: 10, HasNext: true})

	c.Search().Run(context.Background())

	s := c.Snapshot()
	if len(s.Incidents) != 0 {
		t.Errorf("expected empty incidents, got %d", len(s.Incidents))
	}
	if !strings.Contains(s.ErrorMessage, "Network Error") {
		t.Errorf("ErrorMessage = %q, want it to contain %q", s.ErrorMessage, "Network Error")
	}
	if !s.QueryTimed || s.LastQueryTime < 0 {
		t.Errorf("expected non-negative query time, got %v", s.LastQueryTime)
	}
	if s.Loading {
		t.Error("expected Loading to be cleared")
	}
	// Totals from the previous view are kept.
	if s.TotalElements != 23 || s.TotalPages != 3 {
		t.Errorf("expected stale totals to be kept, got %+v", s.Pagination)
	}
}

func TestController_Search_ClearsPreviousError(t *testing.T) {
	fail := true
	searcher := &mockSearcher{
		searchFn: func(ctx context.Context, filters models.SearchFilters) (*models.ResultPage, error) {
			if fail {
				return nil, errors.New("boom")
			}
			return threeIncidentPage(), nil
		},
	}
	c := NewController(searcher, newTestLogger())

	c.Search().Run(context.Background())
	if c.Snapshot().ErrorMessage == "" {
		t.Fatal("expected error after failed search")
	}

	fail = false
	q := c.Search()
	if c.Snapshot().ErrorMessage != "" {
		t.Error("expected error to be cleared on entry to Loading")
	}
	q.Run(context.Background())
	if c.Snapshot().ErrorMessage != "" {
		t.Error("expected no error after successful search")
	}
}

func TestController_ErrorFormatter(t *testing.T) {
	searcher := &mockSearcher{
		searchFn: func(ctx context.Context, filters models.SearchFilters) (*models.ResultPage, error) {
			return nil, errors.New("Network Error")
		},
	}
	c := NewController(searcher, newTestLogger(), WithErrorFormatter(func(err error) string {
		return "Erreur lors de la recherche : " + err.Error()
	}))

	c.Search().Run(context.Background())

	if got := c.Snapshot().ErrorMessage; got != "Erreur lors de la recherche : Network Error" {
		t.Errorf("ErrorMessage = %q", got)
	}
}

func TestController_NextPage_ScenarioB(t *testing.T) {
	searcher := &mockSearcher{
		searchFn: func(ctx context.Context, filters models.SearchFilters) (*models.ResultPage, error) {
			return threeIncidentPage(), nil
		},
	}
	c := NewController(searcher, newTestLogger())
	c.Search().Run(context.Background())

	q := c.NextPage()
	if q == nil {
		t.Fatal("expected NextPage to issue a query")
	}
	q.Run(context.Background())

	if searcher.callCount() != 2 {
		t.Fatalf("expected 2 requests, got %d", searcher.callCount())
	}
	if got := searcher.lastCall().Page; got != 1 {
		t.Errorf("next page request page = %d, want 1", got)
	}
}

func TestController_PagingGuards(t *testing.T) {
	searcher := &mockSearcher{}
	c := NewController(searcher, newTestLogger())
	c.Restore(models.DefaultFilters(), Pagination{CurrentPage: 0, HasNext: false, HasPrevious: false})

	var notified int
	c.Subscribe(func(State) { notified++ })
	before := c.Snapshot()

	if q := c.NextPage(); q != nil {
		t.Error("expected NextPage to be a no-op")
	}
	if q := c.PreviousPage(); q != nil {
		t.Error("expected PreviousPage to be a no-op")
	}
	c.NextPage().Run(context.Background())

	if searcher.callCount() != 0 {
		t.Errorf("expected no requests, got %d", searcher.callCount())
	}
	if notified != 0 {
		t.Errorf("expected no state change notifications, got %d", notified)
	}
	after := c.Snapshot()
	if after.Filters != before.Filters || after.Pagination != before.Pagination {
		t.Error("expected state to be unchanged")
	}
}

func TestController_PreviousPage(t *testing.T) {
	searcher := &mockSearcher{}
	c := NewController(searcher, newTestLogger())
	filters := models.DefaultFilters()
	filters.Page = 2
	c.Restore(filters, Pagination{CurrentPage: 2, TotalPages: 3, HasPrevious: true})

	c.PreviousPage().Run(context.Background())

	if searcher.callCount() != 1 {
		t.Fatalf("expected exactly 1 request, got %d", searcher.callCount())
	}
	if got := searcher.lastCall().Page; got != 1 {
		t.Errorf("page = %d, want 1", got)
	}
}

func TestController_ChangePageSize_ResetsPage(t *testing.T) {
	searcher := &mockSearcher{}
	c := NewController(searcher, newTestLogger())
	filters := models.DefaultFilters()
	filters.Page = 4
	c.Restore(filters, Pagination{})

	q := c.ChangePageSize(50)
	if got := q.Filters(); got.Page != 0 || got.Size != 50 {
		t.Errorf("query filters = %+v, want page 0 size 50", got)
	}
	q.Run(context.Background())

	if f := c.Snapshot().Filters; f.Page != 0 || f.Size != 50 {
		t.Errorf("filters = %+v, want page 0 size 50", f)
	}
}

func TestController_ChangeSort(t *testing.T) {
	tests := []struct {
		name          string
		startSort     string
		startDir      models.SortDirection
		field         string
		wantSort      string
		wantDirection models.SortDirection
	}{
		{"same field asc toggles to desc", "title", models.SortAsc, "title", "title", models.SortDesc},
		{"same field desc toggles to asc", "createdAt", models.SortDesc, "createdAt", "createdAt", models.SortAsc},
		{"new field sorts asc", "createdAt", models.SortDesc, "severity", "severity", models.SortAsc},
		{"new field from asc stays asc", "title", models.SortAsc, "ownerEmail", "ownerEmail", models.SortAsc},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searcher := &mockSearcher{}
			c := NewController(searcher, newTestLogger())
			filters := models.DefaultFilters()
			filters.Sort = tt.startSort
			filters.Direction = tt.startDir
			filters.Page = 3
			c.Restore(filters, Pagination{})

			c.ChangeSort(tt.field).Run(context.Background())

			sent := searcher.lastCall()
			if sent.Sort != tt.wantSort || sent.Direction != tt.wantDirection {
				t.Errorf("sent sort %q %q, want %q %q", sent.Sort, sent.Direction, tt.wantSort, tt.wantDirection)
			}
			if sent.Page != 0 {
				t.Errorf("sent page %d, want 0", sent.Page)
			}
			if searcher.callCount() != 1 {
				t.Errorf("expected 1 request, got %d", searcher.callCount())
			}
		})
	}
}

func TestController_ResetFilters(t *testing.T) {
	searcher := &mockSearcher{
		searchFn: func(ctx context.Context, filters models.SearchFilters) (*models.ResultPage, error) {
			return threeIncidentPage(), nil
		},
	}
	c := NewController(searcher, newTestLogger())
	c.UpdateFilter(models.FilterTitle, "server")
	c.UpdateFilter(models.FilterOwner, "doe")
	c.ChangePageSize(20).Run(context.Background())

	c.ResetFilters()

	s := c.Snapshot()
	if s.Filters != models.DefaultFilters() {
		t.Errorf("Filters = %+v, want defaults", s.Filters)
	}
	if len(s.Incidents) != 0 {
		t.Errorf("expected incidents cleared, got %d", len(s.Incidents))
	}
	if s.TotalElements != 0 || s.TotalPages != 0 || s.CurrentPage != 0 || s.HasNext || s.HasPrevious {
		t.Errorf("expected totals cleared, got %+v", s.Pagination)
	}
	if s.QueryTimed || s.LastQueryTime != 0 {
		t.Error("expected query time cleared")
	}
	if s.ErrorMessage != "" || s.Loading {
		t.Errorf("expected no error and not loading, got %+v", s)
	}
	if searcher.callCount() != 1 {
		t.Errorf("ResetFilters must not issue a request, got %d calls", searcher.callCount())
	}
}

func TestController_ResetFilters_DiscardsInFlight(t *testing.T) {
	c := NewController(&mockSearcher{
		searchFn: func(ctx context.Context, filters models.SearchFilters) (*models.ResultPage, error) {
			return threeIncidentPage(), nil
		},
	}, newTestLogger())

	q := c.Search()
	c.ResetFilters()
	q.Run(context.Background())

	if s := c.Snapshot(); len(s.Incidents) != 0 || s.QueryTimed {
		t.Errorf("expected in-flight result to be discarded after reset, got %+v", s)
	}
}

func TestController_UpdateFilter(t *testing.T) {
	searcher := &mockSearcher{}
	c := NewController(searcher, newTestLogger())

	if !c.UpdateFilter(models.FilterSeverity, "HIGH") {
		t.Error("expected severity to be accepted")
	}
	if c.UpdateFilter("colour", "blue") {
		t.Error("expected unknown key to be rejected")
	}
	if got := c.Filters().Severity; got != "HIGH" {
		t.Errorf("Severity = %q, want %q", got, "HIGH")
	}
	if searcher.callCount() != 0 {
		t.Errorf("UpdateFilter must not issue a request, got %d", searcher.callCount())
	}
}

func TestController_StaleResponseDiscarded(t *testing.T) {
	release := make(chan struct{})
	searcher := &mockSearcher{
		searchFn: func(ctx context.Context, filters models.SearchFilters) (*models.ResultPage, error) {
			if filters.Title == "slow" {
				<-release
				return &models.ResultPage{Items: []models.Incident{{ID: 99, Title: "stale"}}, TotalElements: 1}, nil
			}
			return threeIncidentPage(), nil
		},
	}
	observer := &mockObserver{}
	c := NewController(searcher, newTestLogger(), WithObserver(observer))

	c.UpdateFilter(models.FilterTitle, "slow")
	slow := c.Search()
	c.UpdateFilter(models.FilterTitle, "fast")
	fast := c.Search()

	done := make(chan struct{})
	go func() {
		slow.Run(context.Background())
		close(done)
	}()

	fast.Run(context.Background())
	close(release)
	<-done

	s := c.Snapshot()
	if len(s.Incidents) != 3 || s.TotalElements != 23 {
		t.Errorf("expected newest result to win, got %d incidents, total %d", len(s.Incidents), s.TotalElements)
	}
	if s.Loading {
		t.Error("expected Loading to be cleared")
	}
	if len(observer.outcomes) != 2 || observer.outcomes[1] != OutcomeStale {
		t.Errorf("observer outcomes = %v, want stale last", observer.outcomes)
	}
}

func TestController_Subscribe(t *testing.T) {
	c := NewController(&mockSearcher{}, newTestLogger())

	var states []State
	cancel := c.Subscribe(func(s State) { states = append(states, s) })

	c.Search().Run(context.Background())

	if len(states) != 2 {
		t.Fatalf("expected 2 notifications (loading, done), got %d", len(states))
	}
	if !states[0].Loading || states[1].Loading {
		t.Errorf("expected loading then idle, got %v then %v", states[0].Loading, states[1].Loading)
	}

	cancel()
	c.UpdateFilter(models.FilterTitle, "x")
	if len(states) != 2 {
		t.Errorf("expected no notification after cancel, got %d", len(states))
	}
}

func TestController_SnapshotIsCopy(t *testing.T) {
	c := NewController(&mockSearcher{
		searchFn: func(ctx context.Context, filters models.SearchFilters) (*models.ResultPage, error) {
			return threeIncidentPage(), nil
		},
	}, newTestLogger())
	c.Search().Run(context.Background())

	s := c.Snapshot()
	s.Incidents[0].Title = "mutated"

	if c.Snapshot().Incidents[0].Title == "mutated" {
		t.Error("Snapshot must not alias controller state")
	}
}

func TestQuery_NilRunIsNoop(t *testing.T) {
	var q *Query
	q.Run(context.Background())
	if q.Filters() != (models.SearchFilters{}) {
		t.Error("expected zero filters from nil query")
	}
}
