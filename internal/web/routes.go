package web

import (
	"net/http"
)

// NewRouter wires the search page, the operational endpoints and the
// catch-all redirect. metricsHandler serves /metrics.
func NewRouter(search http.Handler, metricsHandler http.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("/{$}", search)
	mux.Handle(SearchPath, search)

	// Health and readiness probes
	mux.HandleFunc("/healthz", healthzHandler)
	mux.HandleFunc("/readyz", readyzHandler)

	mux.Handle("/metrics", metricsHandler)

	mux.HandleFunc("/", redirectToSearch)

	return mux
}

// redirectToSearch sends every unknown path to the search page, keeping the
// query string.
func redirectToSearch(w http.ResponseWriter, r *http.Request) {
	target := SearchPath
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// healthzHandler handles liveness probe requests.
func healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// readyzHandler handles readiness probe requests.
func readyzHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
