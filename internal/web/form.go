package web

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/cragr/incident-search/internal/models"
	"github.com/cragr/incident-search/internal/search"
)

// Actions a search page request can carry.
const (
	ActionNone     = ""
	ActionSearch   = "search"
	ActionReset    = "reset"
	ActionPage     = "page"
	ActionSize     = "size"
	ActionSort     = "sort"
	ActionNext     = "next"
	ActionPrevious = "previous"
)

// Query parameter names of the search page. Filter names match the
// incident service's own parameters.
const (
	paramAction      = "action"
	paramField       = "field"
	paramTitle       = "title"
	paramDescription = "description"
	paramSeverity    = "severity"
	paramOwner       = "owner"
	paramPage        = "page"
	paramSize        = "size"
	paramSort        = "sort"
	paramDirection   = "direction"
	paramCurrent     = "current"
	paramPages       = "pages"
	paramTotal       = "total"
	paramHasNext     = "has_next"
	paramHasPrevious = "has_previous"
	paramLang        = "lang"
)

// Form is a decoded search page request: the filter snapshot that produced
// the previous view, the pagination that view showed, and the action to apply.
type Form struct {
	Action     string
	Field      string // sort target for ActionSort
	Filters    models.SearchFilters
	Pagination search.Pagination
}

// ParseForm decodes query parameters. Missing or invalid numbers fall back
// to the defaults.
func ParseForm(values url.Values) Form {
	filters := models.DefaultFilters()
	filters.Title = values.Get(paramTitle)
	filters.Description = values.Get(paramDescription)
	filters.Severity = values.Get(paramSeverity)
	filters.Owner = values.Get(paramOwner)
	filters.Page = parseNonNegative(values.Get(paramPage), 0)
	filters.Size = parseNonNegative(values.Get(paramSize), models.DefaultPageSize)

	if values.Has(paramSort) {
		filters.Sort = strings.TrimSpace(values.Get(paramSort))
	}
	if direction, ok := models.ParseSortDirection(values.Get(paramDirection)); ok {
		filters.Direction = direction
	}

	return Form{
		Action:  strings.ToLower(strings.TrimSpace(values.Get(paramAction))),
		Field:   strings.TrimSpace(values.Get(paramField)),
		Filters: filters,
		Pagination: search.Pagination{
			TotalElements: int64(parseNonNegative(values.Get(paramTotal), 0)),
			TotalPages:    parseNonNegative(values.Get(paramPages), 0),
			CurrentPage:   parseNonNegative(values.Get(paramCurrent), filters.Page),
			PageSize:      filters.Size,
			HasNext:       parseBool(values.Get(paramHasNext)),
			HasPrevious:   parseBool(values.Get(paramHasPrevious)),
		},
	}
}

// filterValues encodes a filter snapshot as search page parameters.
func filterValues(filters models.SearchFilters) url.Values {
	values := url.Values{}
	setIfPresent(values, paramTitle, filters.Title)
	setIfPresent(values, paramDescription, filters.Description)
	setIfPresent(values, paramSeverity, filters.Severity)
	setIfPresent(values, paramOwner, filters.Owner)
	values.Set(paramPage, strconv.Itoa(filters.Page))
	values.Set(paramSize, strconv.Itoa(filters.Size))
	values.Set(paramSort, filters.Sort)
	setIfPresent(values, paramDirection, string(filters.Direction))
	return values
}

// stateValues encodes filters plus the pagination a view shows, so the
// next request can restore both.
func stateValues(state search.State) url.Values {
	values := filterValues(state.Filters)
	values.Set(paramCurrent, strconv.Itoa(state.CurrentPage))
	values.Set(paramPages, strconv.Itoa(state.TotalPages))
	values.Set(paramTotal, strconv.FormatInt(state.TotalElements, 10))
	values.Set(paramHasNext, strconv.FormatBool(state.HasNext))
	values.Set(paramHasPrevious, strconv.FormatBool(state.HasPrevious))
	return values
}

func setIfPresent(values url.Values, key, value string) {
	if value != "" {
		values.Set(key, value)
	}
}

func parseNonNegative(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func parseBool(value string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	return err == nil && b
}
