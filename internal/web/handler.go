package web

import (
	"bytes"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/cragr/incident-search/internal/i18n"
	"github.com/cragr/incident-search/internal/models"
	"github.com/cragr/incident-search/internal/search"
)

// SearchPath is the canonical path of the search page.
const SearchPath = "/incidents"

// Recorder receives the page-level measurements of the web shell.
type Recorder interface {
	search.Observer
	LanguageSwitched(lang string)
	PageRendered(action string)
}

// Handler serves the search page.
type Handler struct {
	searcher        search.Searcher
	bundle          *i18n.Bundle
	transformer     *Transformer
	recorder        Recorder
	defaultLanguage string
	logger          *slog.Logger
	now             func() time.Time
}

// NewHandler creates a search page handler. defaultLanguage applies when the
// browser carries no language preference.
func NewHandler(searcher search.Searcher, bundle *i18n.Bundle, recorder Recorder, defaultLanguage string, logger *slog.Logger) *Handler {
	return &Handler{
		searcher:        searcher,
		bundle:          bundle,
		transformer:     NewTransformer(SearchPath),
		recorder:        recorder,
		defaultLanguage: defaultLanguage,
		logger:          logger,
		now:             time.Now,
	}
}

// ServeHTTP renders the search page after applying the requested action.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	if query.Has(paramLang) {
		h.switchLanguage(w, r)
		return
	}

	locale := h.bundle.Locale(i18n.Resolve(i18n.CookiePreference{Request: r}, h.defaultLanguage))
	form := ParseForm(query)

	controller := search.NewController(h.searcher, h.logger,
		search.WithObserver(h.recorder),
		search.WithErrorFormatter(func(err error) string {
			return locale.T("search.error", err.Error())
		}),
	)
	controller.Restore(form.Filters, form.Pagination)

	var q *search.Query
	switch form.Action {
	case ActionNone:
	case ActionSearch:
		q = controller.Search()
	case ActionReset:
		controller.ResetFilters()
	case ActionPage:
		q = controller.ChangePage(form.Filters.Page)
	case ActionSize:
		q = controller.ChangePageSize(form.Filters.Size)
	case ActionSort:
		if !slices.Contains(models.SortFields(), form.Field) {
			http.Error(w, "Unknown sort field", http.StatusBadRequest)
			return
		}
		q = controller.ChangeSort(form.Field)
	case ActionNext:
		q = controller.NextPage()
	case ActionPrevious:
		q = controller.PreviousPage()
	default:
		http.Error(w, "Unknown action", http.StatusBadRequest)
		return
	}

	if q != nil {
		h.logger.Debug("running incident search",
			"action", form.Action,
			"page", q.Filters().Page,
			"size", q.Filters().Size,
			"sort", q.Filters().Sort,
			"lang", locale.Code(),
		)
		q.Run(r.Context())
	}

	view := h.transformer.Transform(controller.Snapshot(), locale, form.Action, q != nil, h.now().Year())
	h.render(w, view)
}

// switchLanguage persists the requested language and redirects to the same
// page without the lang parameter.
func (h *Handler) switchLanguage(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	code := h.bundle.Match(query.Get(paramLang))

	if err := (i18n.CookiePreference{Request: r, Writer: w}).Save(code); err != nil {
		h.logger.Error("failed to persist language preference", "lang", code, "error", err)
	}
	h.recorder.LanguageSwitched(code)
	h.logger.Info("language switched", "lang", code)

	query.Del(paramLang)
	target := r.URL.Path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, view PageView) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "layout.html", view); err != nil {
		h.logger.Error("failed to render search page", "error", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	action := view.Action
	if action == ActionNone {
		action = "view"
	}
	h.recorder.PageRendered(action)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Language", view.Locale.Code())
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
