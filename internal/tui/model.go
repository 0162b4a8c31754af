// Package tui is the terminal front-end of the incident search. It drives
// the same search controller as the web page from a bubbletea program.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/cragr/incident-search/internal/i18n"
	"github.com/cragr/incident-search/internal/models"
	"github.com/cragr/incident-search/internal/search"
)

// filterKeys lists the filter inputs in display order.
var filterKeys = []string{
	models.FilterTitle,
	models.FilterDescription,
	models.FilterSeverity,
	models.FilterOwner,
}

// column is one results table column.
type column struct {
	field string
	width int
}

var columns = []column{
	{models.SortFieldID, 6},
	{models.SortFieldTitle, 24},
	{models.SortFieldDescription, 30},
	{models.SortFieldSeverity, 10},
	{models.SortFieldCreatedAt, 24},
	{models.SortFieldOwnerLastName, 14},
	{models.SortFieldOwnerFirstName, 14},
	{models.SortFieldOwnerEmail, 26},
}

// stateChangedMsg reports that the controller published a new state.
type stateChangedMsg struct{}

// Model is the bubbletea model of the incident search TUI.
type Model struct {
	ctx        context.Context
	controller *search.Controller
	bundle     *i18n.Bundle
	locale     i18n.Locale
	preference i18n.PreferenceStore
	logger     *slog.Logger
	keys       KeyMap
	styles     Styles

	inputs []textinput.Model
	// focus indexes inputs; len(inputs) means the results table.
	focus  int
	notice string
	width  int

	// updates coalesces controller notifications until the listener drains them.
	updates     chan struct{}
	unsubscribe func()
}

// NewModel creates the TUI model. The language comes from preference,
// falling back to defaultLanguage. Queries run with ctx.
func NewModel(ctx context.Context, controller *search.Controller, bundle *i18n.Bundle, preference i18n.PreferenceStore, defaultLanguage string, logger *slog.Logger) Model {
	model := Model{
		ctx:        ctx,
		controller: controller,
		bundle:     bundle,
		locale:     bundle.Locale(i18n.Resolve(preference, defaultLanguage)),
		preference: preference,
		logger:     logger,
		keys:       DefaultKeyMap,
		styles:     DefaultStyles(),
		inputs:     make([]textinput.Model, len(filterKeys)),
		updates:    make(chan struct{}, 1),
	}

	updates := model.updates
	model.unsubscribe = controller.Subscribe(func(search.State) {
		select {
		case updates <- struct{}{}:
		default:
		}
	})

	filters := controller.Filters()
	for i, name := range filterKeys {
		input := textinput.New()
		input.Prompt = ""
		input.CharLimit = 200
		input.Width = 40
		input.SetValue(filterValue(filters, name))
		model.inputs[i] = input
	}
	model.inputs[0].Focus()
	model.applyPlaceholders()

	return model
}

func filterValue(filters models.SearchFilters, name string) string {
	switch name {
	case models.FilterTitle:
		return filters.Title
	case models.FilterDescription:
		return filters.Description
	case models.FilterSeverity:
		return filters.Severity
	case models.FilterOwner:
		return filters.Owner
	}
	return ""
}

func (model *Model) applyPlaceholders() {
	for i, name := range filterKeys {
		switch name {
		case models.FilterSeverity:
			model.inputs[i].Placeholder = model.locale.T("search.filters.any_severity")
		default:
			model.inputs[i].Placeholder = model.locale.T("search.filters." + name + "_placeholder")
		}
	}
}

// Locale returns the active display locale.
func (model Model) Locale() i18n.Locale {
	return model.locale
}

// Init implements tea.Model.
func (model Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, listenForStateChange(model.updates))
}

// Close stops the controller subscription.
func (model Model) Close() {
	if model.unsubscribe != nil {
		model.unsubscribe()
	}
}

// listenForStateChange waits for the next controller notification.
func listenForStateChange(updates <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-updates
		return stateChangedMsg{}
	}
}

// runQuery returns a tea.Cmd that runs q. The result reaches the view through
// the controller subscription. A nil q yields no command.
func (model Model) runQuery(q *search.Query) tea.Cmd {
	if q == nil {
		return nil
	}
	ctx := model.ctx
	return func() tea.Msg {
		q.Run(ctx)
		return nil
	}
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		model.width = message.Width
		return model, nil

	case stateChangedMsg:
		return model, listenForStateChange(model.updates)

	case tea.KeyMsg:
		if key.Matches(message, model.keys.ForceQuit) {
			return model, tea.Quit
		}
		if model.filtersFocused() {
			return model.handleFilterKeys(message)
		}
		return model.handleResultKeys(message)
	}

	return model, nil
}

func (model Model) filtersFocused() bool {
	return model.focus < len(model.inputs)
}

// handleFilterKeys processes keystrokes when a filter input has focus.
func (model Model) handleFilterKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Search):
		return model.search()

	case key.Matches(message, model.keys.ResetFilter):
		return model.reset()

	case key.Matches(message, model.keys.NextField):
		return model.setFocus((model.focus + 1) % (len(model.inputs) + 1))

	case key.Matches(message, model.keys.PrevField):
		return model.setFocus((model.focus + len(model.inputs)) % (len(model.inputs) + 1))

	case key.Matches(message, model.keys.Blur):
		return model.setFocus(len(model.inputs))
	}

	var cmd tea.Cmd
	model.inputs[model.focus], cmd = model.inputs[model.focus].Update(message)
	model.controller.UpdateFilter(filterKeys[model.focus], model.inputs[model.focus].Value())
	return model, cmd
}

// handleResultKeys processes keystrokes when the results table has focus.
func (model Model) handleResultKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit

	case key.Matches(message, model.keys.Search):
		return model.search()

	case key.Matches(message, model.keys.Reset):
		return model.reset()

	case key.Matches(message, model.keys.Filters):
		return model.setFocus(0)

	case key.Matches(message, model.keys.NextPage):
		return model, model.runQuery(model.controller.NextPage())

	case key.Matches(message, model.keys.PrevPage):
		return model, model.runQuery(model.controller.PreviousPage())

	case key.Matches(message, model.keys.GrowPage):
		return model, model.runQuery(model.stepPageSize(1))

	case key.Matches(message, model.keys.ShrinkPage):
		return model, model.runQuery(model.stepPageSize(-1))

	case key.Matches(message, model.keys.Sort):
		index, err := strconv.Atoi(message.String())
		if err != nil || index < 1 || index > len(columns) {
			return model, nil
		}
		return model, model.runQuery(model.controller.ChangeSort(columns[index-1].field))

	case key.Matches(message, model.keys.Language):
		model.toggleLanguage()
		return model, nil
	}

	return model, nil
}

func (model Model) setFocus(index int) (tea.Model, tea.Cmd) {
	model.focus = index
	var cmd tea.Cmd
	for i := range model.inputs {
		if i == index {
			cmd = model.inputs[i].Focus()
		} else {
			model.inputs[i].Blur()
		}
	}
	return model, cmd
}

func (model Model) search() (tea.Model, tea.Cmd) {
	model.notice = ""
	for i, name := range filterKeys {
		model.controller.UpdateFilter(name, model.inputs[i].Value())
	}
	return model, model.runQuery(model.controller.ChangePage(0))
}

func (model Model) reset() (tea.Model, tea.Cmd) {
	model.notice = ""
	model.controller.ResetFilters()
	for i := range model.inputs {
		model.inputs[i].Reset()
	}
	return model, nil
}

// stepPageSize moves to the next offered page size in direction step. It
// returns nil at either end of the list.
func (model Model) stepPageSize(step int) *search.Query {
	sizes := models.PageSizes()
	current := model.controller.Filters().Size

	index := slices.Index(sizes, current)
	if index < 0 {
		// Unlisted size: land on the nearest offered size in that direction.
		index, _ = slices.BinarySearch(sizes, current)
		if step > 0 {
			index--
		}
	}
	next := index + step
	if next < 0 || next >= len(sizes) {
		return nil
	}
	return model.controller.ChangePageSize(sizes[next])
}

// toggleLanguage switches to the next supported language and persists it.
func (model *Model) toggleLanguage() {
	supported := i18n.Supported()
	next := supported[(slices.Index(supported, model.locale.Code())+1)%len(supported)]

	model.locale = model.bundle.Locale(next)
	model.applyPlaceholders()
	model.notice = ""

	if model.preference == nil {
		return
	}
	if err := model.preference.Save(next); err != nil {
		model.logger.Error("failed to persist language preference", "lang", next, "error", err)
		model.notice = err.Error()
		return
	}
	model.logger.Info("language switched", "lang", next)
}

// View implements tea.Model.
func (model Model) View() string {
	state := model.controller.Snapshot()
	locale := model.locale
	styles := model.styles

	var b strings.Builder

	b.WriteString(styles.Title.Render(locale.T("search.heading")))
	b.WriteString("  ")
	b.WriteString(styles.Muted.Render(locale.T("language.label") + ": " + locale.T("language."+locale.Code())))
	b.WriteString("\n\n")

	for i, name := range filterKeys {
		label := styles.Label.Render(locale.T("search.filters." + name))
		if i == model.focus {
			label = styles.Active.Width(14).Render(locale.T("search.filters." + name))
		}
		b.WriteString(label + model.inputs[i].View() + "\n")
	}
	b.WriteString("\n")

	switch {
	case state.Loading:
		b.WriteString(styles.Muted.Render(locale.T("search.loading")) + "\n")
	case state.Err != nil:
		b.WriteString(styles.Error.Render(locale.T("search.error", state.Err.Error())) + "\n")
	case state.QueryTimed && len(state.Incidents) == 0:
		b.WriteString(styles.Muted.Render(locale.T("search.empty")) + "\n")
	case !state.QueryTimed:
		b.WriteString(styles.Muted.Render(locale.T("search.idle")) + "\n")
	}
	if model.notice != "" {
		b.WriteString(styles.Error.Render(model.notice) + "\n")
	}

	b.WriteString(model.renderTable(state))
	b.WriteString("\n")
	b.WriteString(model.renderFooter(state))
	b.WriteString("\n")

	help := locale.T("tui.help_results")
	if model.filtersFocused() {
		help = locale.T("tui.help_filters")
	}
	b.WriteString(styles.Help.Render(help))

	return b.String()
}

func (model Model) renderTable(state search.State) string {
	styles := model.styles
	locale := model.locale

	headers := make([]string, len(columns))
	for i, c := range columns {
		label := fmt.Sprintf("%d %s", i+1, locale.T("search.columns."+c.field))
		if state.Filters.Sort == c.field {
			if state.Filters.Direction == models.SortDesc {
				label += " ▼"
			} else {
				label += " ▲"
			}
		}
		headers[i] = styles.Header.Render(cell(label, c.width))
	}

	lines := []string{lipgloss.JoinHorizontal(lipgloss.Top, headers...)}
	for _, incident := range state.Incidents {
		cells := make([]string, len(columns))
		for i, c := range columns {
			value := cell(model.columnValue(incident, c.field), c.width)
			if c.field == models.SortFieldSeverity {
				if style, ok := styles.Severity[strings.ToUpper(string(incident.Severity))]; ok {
					value = style.Render(value)
				}
			}
			cells[i] = value
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return strings.Join(lines, "\n")
}

func (model Model) columnValue(incident models.Incident, field string) string {
	switch field {
	case models.SortFieldID:
		return strconv.FormatInt(incident.ID, 10)
	case models.SortFieldTitle:
		return incident.Title
	case models.SortFieldDescription:
		return incident.Description
	case models.SortFieldSeverity:
		for _, known := range models.Severities() {
			if strings.EqualFold(string(incident.Severity), string(known)) {
				return model.locale.T("search.severity." + string(known))
			}
		}
		return string(incident.Severity)
	case models.SortFieldCreatedAt:
		return model.locale.FormatDate(incident.CreatedAt)
	case models.SortFieldOwnerLastName:
		return incident.OwnerLastName
	case models.SortFieldOwnerFirstName:
		return incident.OwnerFirstName
	case models.SortFieldOwnerEmail:
		return incident.OwnerEmail
	}
	return ""
}

func (model Model) renderFooter(state search.State) string {
	locale := model.locale
	parts := []string{}

	if state.QueryTimed || state.TotalPages > 0 {
		page := 0
		if state.TotalPages > 0 {
			page = state.CurrentPage + 1
		}
		parts = append(parts,
			locale.T("search.page_of", page, state.TotalPages),
			locale.T("search.total", state.TotalElements),
		)
	}
	parts = append(parts, locale.T("search.page_size")+": "+strconv.Itoa(state.Filters.Size))

	direction := locale.T("search.sort_asc")
	if state.Filters.Direction == models.SortDesc {
		direction = locale.T("search.sort_desc")
	}
	parts = append(parts, locale.T("tui.sort_by", locale.T("search.columns."+state.Filters.Sort), direction))

	if state.QueryTimed {
		parts = append(parts, locale.QueryTime(state.LastQueryTime))
	}
	return model.styles.Muted.Render(strings.Join(parts, " · "))
}

// cell pads or truncates s to exactly width terminal columns, leaving one
// column of spacing.
func cell(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if ansi.StringWidth(s) > width-1 {
		s = ansi.Truncate(s, width-1, "…")
	}
	return s + strings.Repeat(" ", max(0, width-ansi.StringWidth(s)))
}
