// Package i18n loads the UI translations and resolves the display locale
// used for translation lookups and date formatting.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// DefaultLanguage is used when no preference is stored or the stored one is
// not supported.
const DefaultLanguage = "en"

var supportedTags = []language.Tag{
	language.English,
	language.French,
}

//go:embed locales/*.yaml
var embeddedLocalesFS embed.FS

// Bundle holds the translations of every supported language.
type Bundle struct {
	catalog  *catalog.Builder
	messages map[string]map[string]string
	matcher  language.Matcher
}

// LoadEmbedded loads the translation files compiled into the binary.
func LoadEmbedded() (*Bundle, error) {
	return LoadFromFS(embeddedLocalesFS)
}

// LoadFromFS loads locales/<lang>.yaml files for every supported language.
func LoadFromFS(localesFS fs.FS) (*Bundle, error) {
	b := &Bundle{
		catalog:  catalog.NewBuilder(catalog.Fallback(language.English)),
		messages: make(map[string]map[string]string, len(supportedTags)),
		matcher:  language.NewMatcher(supportedTags),
	}

	for _, tag := range supportedTags {
		code := baseCode(tag)
		file := path.Join("locales", code+".yaml")
		data, err := fs.ReadFile(localesFS, file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		messages, err := parseMessages(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		for key, value := range messages {
			if err := b.catalog.SetString(tag, key, value); err != nil {
				return nil, fmt.Errorf("register %s %q: %w", code, key, err)
			}
		}
		b.messages[code] = messages
	}

	want := b.keys(DefaultLanguage)
	for _, code := range Supported() {
		if got := b.keys(code); !slices.Equal(got, want) {
			return nil, fmt.Errorf("locales/%s.yaml: message keys differ from %s.yaml", code, DefaultLanguage)
		}
	}

	return b, nil
}

// parseMessages decodes a nested YAML mapping into dotted keys.
func parseMessages(data []byte) (map[string]string, error) {
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	if len(tree) == 0 {
		return nil, fmt.Errorf("no messages")
	}
	out := make(map[string]string)
	if err := flatten("", tree, out); err != nil {
		return nil, err
	}
	return out, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) error {
	for key, value := range node {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		switch v := value.(type) {
		case map[string]any:
			if err := flatten(full, v, out); err != nil {
				return err
			}
		case string:
			out[full] = v
		case nil:
			return fmt.Errorf("key %q has no value", full)
		default:
			out[full] = fmt.Sprint(v)
		}
	}
	return nil
}

// Supported returns the two-letter codes of the supported languages.
func Supported() []string {
	out := make([]string, 0, len(supportedTags))
	for _, tag := range supportedTags {
		out = append(out, baseCode(tag))
	}
	return out
}

// IsSupported reports whether code names a supported language exactly.
func IsSupported(code string) bool {
	for _, supported := range Supported() {
		if supported == code {
			return true
		}
	}
	return false
}

// keys returns the sorted message keys of a language.
func (b *Bundle) keys(code string) []string {
	messages := b.messages[code]
	keys := make([]string, 0, len(messages))
	for key := range messages {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Match maps any language tag to the closest supported two-letter code.
func (b *Bundle) Match(value string) string {
	tag, err := language.Parse(strings.TrimSpace(value))
	if err != nil {
		return DefaultLanguage
	}
	_, index, confidence := b.matcher.Match(tag)
	if confidence == language.No {
		return DefaultLanguage
	}
	return baseCode(supportedTags[index])
}

// Locale returns the display locale for a language tag. Unknown or blank
// tags resolve to English.
func (b *Bundle) Locale(value string) Locale {
	code := b.Match(value)
	tag := language.MustParse(code)
	return Locale{
		code:     code,
		printer:  message.NewPrinter(tag, message.Catalog(b.catalog)),
		bundle:   b,
		location: time.Local,
	}
}

func baseCode(tag language.Tag) string {
	base, _ := tag.Base()
	return base.String()
}

// Locale is the active display locale. The zero value is not usable; obtain
// one from Bundle.Locale.
type Locale struct {
	code     string
	printer  *message.Printer
	bundle   *Bundle
	location *time.Location
}

// Code returns the two-letter language code.
func (l Locale) Code() string {
	return l.code
}

// In returns a copy of l that renders dates in loc.
func (l Locale) In(loc *time.Location) Locale {
	l.location = loc
	return l
}

// T translates key with optional format arguments. Missing keys fall back to
// English and then to the key itself.
func (l Locale) T(key string, args ...any) string {
	if !l.has(key) {
		return key
	}
	return l.printer.Sprintf(key, args...)
}

func (l Locale) has(key string) bool {
	if l.bundle == nil {
		return false
	}
	if _, ok := l.bundle.messages[l.code][key]; ok {
		return true
	}
	_, ok := l.bundle.messages[DefaultLanguage][key]
	return ok
}
