package i18n

import (
	"strings"
	"time"
)

// Date/time layouts per language, mirroring what browsers print for
// toLocaleString in en-US and fr-FR.
var dateLayouts = map[string]string{
	"en": "1/2/2006, 3:04:05 PM",
	"fr": "02/01/2006 15:04:05",
}

// Layouts accepted for incident timestamps. Zone-less values are read in the
// locale's location.
var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
}

var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// FormatDate renders an ISO-8601 timestamp in the locale's date format.
// Input that cannot be parsed is returned unchanged.
func (l Locale) FormatDate(value string) string {
	t, ok := l.parseTime(value)
	if !ok {
		return value
	}
	return l.FormatTime(t)
}

// FormatTime renders t in the locale's date format and location.
func (l Locale) FormatTime(t time.Time) string {
	layout, ok := dateLayouts[l.code]
	if !ok {
		layout = dateLayouts[DefaultLanguage]
	}
	return t.In(l.loc()).Format(layout)
}

// QueryTime renders a query duration in seconds with the locale's decimal
// separator.
func (l Locale) QueryTime(d time.Duration) string {
	return l.T("search.query_time", d.Seconds())
}

func (l Locale) parseTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, l.loc()); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (l Locale) loc() *time.Location {
	if l.location == nil {
		return time.Local
	}
	return l.location
}
