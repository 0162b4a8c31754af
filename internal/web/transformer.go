// Package web serves the incident search page: layout shell, language
// switcher, routing table and the search form itself.
package web

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/cragr/incident-search/internal/i18n"
	"github.com/cragr/incident-search/internal/models"
	"github.com/cragr/incident-search/internal/search"
)

// PageView is everything the layout and search templates render.
type PageView struct {
	Locale    i18n.Locale
	Year      string
	Languages []LanguageOption

	Action  string
	Filters models.SearchFilters

	SeverityOptions []SelectOption
	SizeOptions     []SelectOption
	Columns         []Column
	Rows            []IncidentRow
	Hidden          []HiddenField

	Searched     bool // a query cycle ran for this view
	Loading      bool
	ErrorMessage string
	QueryTime    string
	TotalLabel   string
	PageLabel    string
	PreviousURL  string
	NextURL      string
}

// Empty reports whether a successful search returned no incidents.
func (v PageView) Empty() bool {
	return v.Searched && v.ErrorMessage == "" && len(v.Rows) == 0
}

// LanguageOption is one entry of the language switcher.
type LanguageOption struct {
	Code   string
	Label  string
	URL    string
	Active bool
}

// SelectOption is one entry of a select element.
type SelectOption struct {
	Value    string
	Label    string
	Selected bool
}

// Column is a sortable results table header.
type Column struct {
	Field     string
	Label     string
	URL       string
	Indicator string
	Active    bool
}

// HiddenField carries view state through a form submission.
type HiddenField struct {
	Name  string
	Value string
}

// IncidentRow is one rendered results table row.
type IncidentRow struct {
	ID             int64
	Title          string
	Description    string
	Severity       string
	SeverityLabel  string
	SeverityClass  string
	CreatedAt      string
	OwnerLastName  string
	OwnerFirstName string
	OwnerEmail     string
}

// Transformer converts controller state into a PageView.
type Transformer struct {
	basePath string
}

// NewTransformer creates a Transformer whose links point at basePath.
func NewTransformer(basePath string) *Transformer {
	return &Transformer{basePath: basePath}
}

// Transform builds the view of state in locale. searched tells whether a
// query cycle ran for this request.
func (t *Transformer) Transform(state search.State, locale i18n.Locale, action string, searched bool, year int) PageView {
	view := PageView{
		Locale:       locale,
		Year:         strconv.Itoa(year),
		Action:       action,
		Filters:      state.Filters,
		Searched:     searched,
		Loading:      state.Loading,
		ErrorMessage: state.ErrorMessage,
	}

	view.Languages = t.buildLanguages(state, locale, searched)
	view.SeverityOptions = t.buildSeverityOptions(state.Filters.Severity, locale)
	view.SizeOptions = t.buildSizeOptions(state.Filters.Size)
	view.Columns = t.buildColumns(state, locale)
	view.Rows = t.buildRows(state.Incidents, locale)
	view.Hidden = t.buildHidden(state)

	if state.QueryTimed {
		view.QueryTime = locale.QueryTime(state.LastQueryTime)
	}
	if searched || state.TotalPages > 0 {
		view.TotalLabel = locale.T("search.total", state.TotalElements)
		view.PageLabel = locale.T("search.page_of", displayPage(state), state.TotalPages)
	}
	if state.HasPrevious {
		view.PreviousURL = t.actionURL(state, ActionPrevious, nil)
	}
	if state.HasNext {
		view.NextURL = t.actionURL(state, ActionNext, nil)
	}

	return view
}

// displayPage is the one-based page shown to the user.
func displayPage(state search.State) int {
	if state.TotalPages == 0 {
		return 0
	}
	return state.CurrentPage + 1
}

// buildLanguages links every supported language. Links from a results view
// repeat the search so the results come back translated.
func (t *Transformer) buildLanguages(state search.State, locale i18n.Locale, searched bool) []LanguageOption {
	options := make([]LanguageOption, 0, len(i18n.Supported()))
	for _, code := range i18n.Supported() {
		values := stateValues(state)
		if searched {
			values.Set(paramAction, ActionSearch)
		}
		values.Set(paramLang, code)
		options = append(options, LanguageOption{
			Code:   code,
			Label:  locale.T("language." + code),
			URL:    t.basePath + "?" + values.Encode(),
			Active: code == locale.Code(),
		})
	}
	return options
}

func (t *Transformer) buildSeverityOptions(selected string, locale i18n.Locale) []SelectOption {
	options := []SelectOption{{
		Value:    "",
		Label:    locale.T("search.filters.any_severity"),
		Selected: strings.TrimSpace(selected) == "",
	}}
	for _, severity := range models.Severities() {
		options = append(options, SelectOption{
			Value:    string(severity),
			Label:    locale.T("search.severity." + string(severity)),
			Selected: strings.EqualFold(strings.TrimSpace(selected), string(severity)),
		})
	}
	return options
}

func (t *Transformer) buildSizeOptions(size int) []SelectOption {
	sizes := models.PageSizes()
	options := make([]SelectOption, 0, len(sizes)+1)
	found := false
	for _, s := range sizes {
		options = append(options, SelectOption{
			Value:    strconv.Itoa(s),
			Label:    strconv.Itoa(s),
			Selected: s == size,
		})
		found = found || s == size
	}
	if !found && size > 0 {
		options = append(options, SelectOption{Value: strconv.Itoa(size), Label: strconv.Itoa(size), Selected: true})
	}
	return options
}

func (t *Transformer) buildColumns(state search.State, locale i18n.Locale) []Column {
	fields := models.SortFields()
	columns := make([]Column, 0, len(fields))
	for _, field := range fields {
		column := Column{
			Field: field,
			Label: locale.T("search.columns." + field),
			URL:   t.actionURL(state, ActionSort, url.Values{paramField: {field}}),
		}
		if state.Filters.Sort == field {
			column.Active = true
			column.Indicator = "▲"
			if state.Filters.Direction == models.SortDesc {
				column.Indicator = "▼"
			}
		}
		columns = append(columns, column)
	}
	return columns
}

func (t *Transformer) buildRows(incidents []models.Incident, locale i18n.Locale) []IncidentRow {
	rows := make([]IncidentRow, 0, len(incidents))
	for _, incident := range incidents {
		severity := string(incident.Severity)
		rows = append(rows, IncidentRow{
			ID:             incident.ID,
			Title:          incident.Title,
			Description:    incident.Description,
			Severity:       severity,
			SeverityLabel:  severityLabel(severity, locale),
			SeverityClass:  severityClass(severity),
			CreatedAt:      locale.FormatDate(incident.CreatedAt),
			OwnerLastName:  incident.OwnerLastName,
			OwnerFirstName: incident.OwnerFirstName,
			OwnerEmail:     incident.OwnerEmail,
		})
	}
	return rows
}

// buildHidden lists the state the page-size form must carry besides size.
func (t *Transformer) buildHidden(state search.State) []HiddenField {
	values := stateValues(state)
	values.Del(paramSize)
	values.Del(paramPage)

	keys := []string{
		paramTitle, paramDescription, paramSeverity, paramOwner, paramSort, paramDirection,
		paramCurrent, paramPages, paramTotal, paramHasNext, paramHasPrevious,
	}
	hidden := make([]HiddenField, 0, len(keys))
	for _, key := range keys {
		if values.Has(key) {
			hidden = append(hidden, HiddenField{Name: key, Value: values.Get(key)})
		}
	}
	return hidden
}

// actionURL links to the search page with the current state, an action and
// any extra parameters.
func (t *Transformer) actionURL(state search.State, action string, extra url.Values) string {
	values := stateValues(state)
	values.Set(paramAction, action)
	for key, vals := range extra {
		values[key] = vals
	}
	return t.basePath + "?" + values.Encode()
}

// severityLabel translates known severities; other values are shown as sent.
func severityLabel(severity string, locale i18n.Locale) string {
	for _, known := range models.Severities() {
		if strings.EqualFold(severity, string(known)) {
			return locale.T("search.severity." + string(known))
		}
	}
	return severity
}

func severityClass(severity string) string {
	switch models.Severity(strings.ToUpper(severity)) {
	case models.SeverityHigh:
		return "severity-high"
	case models.SeverityMedium:
		return "severity-medium"
	case models.SeverityLow:
		return "severity-low"
	default:
		return "severity-unknown"
	}
}
