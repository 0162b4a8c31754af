// Command tui is the terminal front-end of the incident search.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/cragr/incident-search/internal/config"
	"github.com/cragr/incident-search/internal/i18n"
	"github.com/cragr/incident-search/internal/incidents"
	"github.com/cragr/incident-search/internal/logging"
	"github.com/cragr/incident-search/internal/search"
	"github.com/cragr/incident-search/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var backendURL, lang, logFile string

	flagSet := pflag.NewFlagSet("incident-search-tui", pflag.ContinueOnError)
	flagSet.StringVar(&backendURL, "backend-url", "", "incident service base URL (overrides BACKEND_URL)")
	flagSet.StringVar(&lang, "lang", "", "display language, en or fr (overrides the stored preference)")
	flagSet.StringVar(&logFile, "log-file", "", "write JSON log records to this file")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if backendURL != "" {
		cfg.BackendURL = strings.TrimRight(backendURL, "/")
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	// The alt-screen owns stdout, so logs go to a file or nowhere.
	logger := logging.Discard()
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logger = logging.NewLoggerTo(f, cfg.LogLevel)
	}

	bundle, err := i18n.LoadEmbedded()
	if err != nil {
		return fmt.Errorf("load translations: %w", err)
	}

	preference, err := i18n.DefaultFilePreference()
	if err != nil {
		logger.Warn("language preference will not persist", "error", err)
	}
	if lang != "" {
		if !i18n.IsSupported(lang) {
			return fmt.Errorf("unsupported language %q", lang)
		}
		if preference != nil {
			if err := preference.Save(lang); err != nil {
				logger.Warn("failed to persist language preference", "error", err)
			}
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := incidents.NewClient(cfg, logging.WithComponent(logger, "incidents"))
	controller := search.NewController(client, logging.WithComponent(logger, "search"))

	var store i18n.PreferenceStore = staticPreference(lang)
	if preference != nil {
		store = preference
	}
	model := tui.NewModel(ctx, controller, bundle, store, cfg.DefaultLanguage, logging.WithComponent(logger, "tui"))
	defer model.Close()

	logger.Info("starting incident search TUI", "backend_url", cfg.BackendURL, "lang", model.Locale().Code())

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = program.Run()
	if err != nil {
		logger.Error("TUI exited with error", "error", err)
		return err
	}
	return nil
}

// staticPreference serves a fixed language when no preference file is
// available. Saves are accepted and forgotten.
type staticPreference string

func (p staticPreference) Load() string { return string(p) }

func (p staticPreference) Save(string) error { return nil }
