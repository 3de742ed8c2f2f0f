package render

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-settings/pkg/schema"
)

// Translator resolves a message id for a locale. Message ids are the English
// strings themselves, so an untranslated page still reads correctly.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// MissingTranslationHandler returns the text used when a translation is
// missing or the translator fails.
type MissingTranslationHandler func(locale, key string, args []any, err error) string

// ErrMissingTranslator is passed to MissingTranslationHandler when no
// translator is configured.
var ErrMissingTranslator = errors.New("render: translator not configured")

// ErrMissingTranslation is returned by Catalog for unknown ids.
var ErrMissingTranslation = errors.New("render: missing translation")

func missingTranslationDefault(_ string, key string, args []any, _ error) string {
	if len(args) > 0 && strings.Contains(key, "%") {
		return fmt.Sprintf(key, args...)
	}
	return key
}

// Translate looks key up through opts.Translator, falling back through
// opts.OnMissing and then to the key itself.
func Translate(opts RenderOptions, key string, args ...any) string {
	if strings.TrimSpace(key) == "" {
		return key
	}
	onMissing := opts.OnMissing
	if onMissing == nil {
		onMissing = missingTranslationDefault
	}
	if opts.Translator == nil {
		return onMissing(opts.Locale, key, args, ErrMissingTranslator)
	}
	msg, err := opts.Translator.Translate(opts.Locale, key, args...)
	if err != nil || strings.TrimSpace(msg) == "" {
		return onMissing(opts.Locale, key, args, err)
	}
	return msg
}

// LocalizeSchema returns a copy of s with every user-visible string passed
// through Translate. Keys and ids stay untouched.
func LocalizeSchema(s schema.Schema, opts RenderOptions) schema.Schema {
	out := s.Clone()
	for i := range out.Sections {
		out.Sections[i] = LocalizeSection(out.Sections[i], opts)
	}
	return out
}

// LocalizeSection translates the title, description and fields of a copy of
// section.
func LocalizeSection(section schema.Section, opts RenderOptions) schema.Section {
	section.Title = Translate(opts, section.Title)
	section.Description = Translate(opts, section.Description)
	if section.Fields != nil {
		fields := make([]schema.Field, len(section.Fields))
		for i, field := range section.Fields {
			fields[i] = LocalizeField(field, opts)
		}
		section.Fields = fields
	}
	return section
}

// LocalizeField translates the label, description, placeholder and option
// labels of a copy of field.
func LocalizeField(field schema.Field, opts RenderOptions) schema.Field {
	field.Label = Translate(opts, field.Label)
	field.Description = Translate(opts, field.Description)
	field.Placeholder = Translate(opts, field.Placeholder)
	if field.Options != nil {
		options := make(schema.Options, len(field.Options))
		for i, option := range field.Options {
			option.Label = Translate(opts, option.Label)
			options[i] = option
		}
		field.Options = options
	}
	return field
}

// Catalog is an in-memory Translator keyed by locale then message id.
type Catalog struct {
	mu       sync.RWMutex
	messages map[string]map[string]string
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{messages: make(map[string]map[string]string)}
}

// Add stores translations for locale, replacing existing ids.
func (c *Catalog) Add(locale string, messages map[string]string) {
	locale = normaliseLocale(locale)
	c.mu.Lock()
	defer c.mu.Unlock()

	dest, ok := c.messages[locale]
	if !ok {
		dest = make(map[string]string, len(messages))
		c.messages[locale] = dest
	}
	for id, msg := range messages {
		dest[id] = msg
	}
}

// Translate implements Translator. A region-specific locale such as "ru-RU"
// falls back to its base language "ru".
func (c *Catalog) Translate(locale, key string, args ...any) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	locale = normaliseLocale(locale)
	for _, candidate := range []string{locale, baseLanguage(locale)} {
		if msg, ok := c.messages[candidate][key]; ok {
			if len(args) > 0 {
				return fmt.Sprintf(msg, args...), nil
			}
			return msg, nil
		}
	}
	return "", fmt.Errorf("%w: %s %q", ErrMissingTranslation, locale, key)
}

// Locales lists the loaded locales.
func (c *Catalog) Locales() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, 0, len(c.messages))
	for locale := range c.messages {
		out = append(out, locale)
	}
	return out
}

// LoadCatalog reads every <locale>.yaml (or .yml) file at the root of fsys.
// Each file is a flat mapping of English message id to translation.
func LoadCatalog(fsys fs.FS) (*Catalog, error) {
	catalog := NewCatalog()
	if fsys == nil {
		return catalog, nil
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("render: read locales: %w", err)
	}
	for _, entry := range entries {
		ext := path.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		data, err := fs.ReadFile(fsys, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("render: read %s: %w", entry.Name(), err)
		}
		var messages map[string]string
		if err := yaml.Unmarshal(data, &messages); err != nil {
			return nil, fmt.Errorf("render: parse %s: %w", entry.Name(), err)
		}
		catalog.Add(strings.TrimSuffix(entry.Name(), ext), messages)
	}
	return catalog, nil
}

func normaliseLocale(locale string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(locale)), "_", "-")
}

func baseLanguage(locale string) string {
	if idx := strings.IndexByte(locale, '-'); idx > 0 {
		return locale[:idx]
	}
	return locale
}
