package models

import "strings"

// SortDirection represents ordering direction for sortable fields.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Toggle returns the opposite direction. Anything that is not desc toggles to desc.
func (d SortDirection) Toggle() SortDirection {
	if d == SortDesc {
		return SortAsc
	}
	return SortDesc
}

// ParseSortDirection accepts "asc" or "desc" in any case.
func ParseSortDirection(value string) (SortDirection, bool) {
	switch SortDirection(strings.ToLower(strings.TrimSpace(value))) {
	case SortAsc:
		return SortAsc, true
	case SortDesc:
		return SortDesc, true
	default:
		return "", false
	}
}

// Sort field names understood by the incident service.
const (
	SortFieldID             = "id"
	SortFieldTitle          = "title"
	SortFieldDescription    = "description"
	SortFieldSeverity       = "severity"
	SortFieldCreatedAt      = "createdAt"
	SortFieldOwnerLastName  = "ownerLastName"
	SortFieldOwnerFirstName = "ownerFirstName"
	SortFieldOwnerEmail     = "ownerEmail"
)

// SortFields returns the sortable columns in display order.
func SortFields() []string {
	return []string{
		SortFieldID,
		SortFieldTitle,
		SortFieldDescription,
		SortFieldSeverity,
		SortFieldCreatedAt,
		SortFieldOwnerLastName,
		SortFieldOwnerFirstName,
		SortFieldOwnerEmail,
	}
}

// Filter keys accepted by SearchFilters.Set.
const (
	FilterTitle       = "title"
	FilterDescription = "description"
	FilterSeverity    = "severity"
	FilterOwner       = "owner"
)

// Defaults applied to a fresh filter set.
const (
	DefaultPageSize  = 10
	DefaultSortField = SortFieldCreatedAt
	DefaultDirection = SortDesc
)

// PageSizes returns the page sizes offered to the user.
func PageSizes() []int {
	return []int{5, 10, 20, 50}
}

// SearchFilters is the complete set of search criteria sent to the incident
// service. Page and Size are never negative.
type SearchFilters struct {
	Title       string
	Description string
	Severity    string
	Owner       string

	Page int // zero-based
	Size int

	Sort      string
	Direction SortDirection
}

// DefaultFilters returns the filter set used on first load and after a reset.
func DefaultFilters() SearchFilters {
	return SearchFilters{
		Page:      0,
		Size:      DefaultPageSize,
		Sort:      DefaultSortField,
		Direction: DefaultDirection,
	}
}

// With returns a copy of f with the named text filter replaced. Unknown keys
// return f unchanged and false.
func (f SearchFilters) With(key, value string) (SearchFilters, bool) {
	switch key {
	case FilterTitle:
		f.Title = value
	case FilterDescription:
		f.Description = value
	case FilterSeverity:
		f.Severity = value
	case FilterOwner:
		f.Owner = value
	default:
		return f, false
	}
	return f, true
}

// Normalized clamps Page and Size to non-negative values and drops an
// invalid direction.
func (f SearchFilters) Normalized() SearchFilters {
	if f.Page < 0 {
		f.Page = 0
	}
	if f.Size < 0 {
		f.Size = 0
	}
	if f.Direction != "" {
		if d, ok := ParseSortDirection(string(f.Direction)); ok {
			f.Direction = d
		} else {
			f.Direction = ""
		}
	}
	return f
}
