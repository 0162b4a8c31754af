package i18n

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// PreferenceKey names the persisted language preference, both as the
// browser cookie and as the preference file.
const PreferenceKey = "userLanguage"

// PreferenceStore persists the chosen language outside the process lifetime.
type PreferenceStore interface {
	// Load returns the stored tag, or "" when nothing is stored.
	Load() string
	Save(tag string) error
}

// Resolve reads the stored preference, falling back when it is absent.
func Resolve(store PreferenceStore, fallback string) string {
	if store != nil {
		if tag := strings.TrimSpace(store.Load()); tag != "" {
			return tag
		}
	}
	if fallback == "" {
		return DefaultLanguage
	}
	return fallback
}

// CookiePreference stores the language in a browser cookie.
type CookiePreference struct {
	Request *http.Request
	Writer  http.ResponseWriter
}

// Load returns the cookie value, or "" when the cookie is absent.
func (p CookiePreference) Load() string {
	if p.Request == nil {
		return ""
	}
	cookie, err := p.Request.Cookie(PreferenceKey)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// Save sets the cookie on the response for one year.
func (p CookiePreference) Save(tag string) error {
	if p.Writer == nil {
		return errors.New("no response writer")
	}
	http.SetCookie(p.Writer, &http.Cookie{
		Name:     PreferenceKey,
		Value:    tag,
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// FilePreference stores the language as plain text in a file.
type FilePreference struct {
	Path string
}

// DefaultFilePreference stores the preference under the user config directory.
func DefaultFilePreference() (*FilePreference, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("locate config dir: %w", err)
	}
	return &FilePreference{Path: filepath.Join(dir, "incident-search", PreferenceKey)}, nil
}

// Load returns the stored tag, or "" when the file is missing or unreadable.
func (p *FilePreference) Load() string {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// Save writes the tag, creating parent directories as needed.
func (p *FilePreference) Save(tag string) error {
	if err := os.MkdirAll(filepath.Dir(p.Path), 0o755); err != nil {
		return fmt.Errorf("create preference dir: %w", err)
	}
	if err := os.WriteFile(p.Path, []byte(tag+"\n"), 0o600); err != nil {
		return fmt.Errorf("write preference: %w", err)
	}
	return nil
}
