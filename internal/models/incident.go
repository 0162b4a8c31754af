package models

// Incident represents a single incident record returned by the incident
// service, with its owner's attributes embedded.
type Incident struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	CreatedAt   string   `json:"createdAt"` // ISO-8601, rendered per locale

	OwnerID        int64  `json:"ownerId"`
	OwnerLastName  string `json:"ownerLastName"`
	OwnerFirstName string `json:"ownerFirstName"`
	OwnerEmail     string `json:"ownerEmail"`
}

// Severity is the incident severity as sent by the incident service. Values
// outside the known set are passed through untouched.
type Severity string

// Incident severity constants.
const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// Severities returns the known severities in ascending order.
func Severities() []Severity {
	return []Severity{SeverityLow, SeverityMedium, SeverityHigh}
}

// ResultPage represents one page of incidents returned by the incident service.
// The availability flags are taken as supplied by the server.
type ResultPage struct {
	Items         []Incident `json:"items"`
	TotalElements int64      `json:"totalElements"`
	TotalPages    int        `json:"totalPages"`
	CurrentPage   int        `json:"currentPage"`
	PageSize      int        `json:"pageSize"`
	HasNext       bool       `json:"hasNext"`
	HasPrevious   bool       `json:"hasPrevious"`
}
