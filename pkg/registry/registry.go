package registry

import (
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-settings/pkg/validation"
)

// PageEntry is a registered options page.
type PageEntry struct {
	Page   Page
	Render PageFunc
}

// SectionEntry is a registered settings section.
type SectionEntry struct {
	ID     string
	Title  string
	PageID string
	Render RenderFunc
}

// FieldEntry is a registered field row.
type FieldEntry struct {
	ID        string
	Label     string
	PageID    string
	SectionID string
	Args      FieldArgs
	Render    FieldFunc
}

// OptionEntry is a registered stored option.
type OptionEntry struct {
	Group     string
	Name      string
	Validator validation.Func
}

// Registry is an in-memory Host. Each table is keyed by id and keeps first
// registration order, so registering an id again replaces the entry in place.
type Registry struct {
	mu sync.RWMutex

	pages    map[string]PageEntry
	sections map[string]SectionEntry
	fields   map[string]FieldEntry
	options  map[string]OptionEntry

	sectionOrder []string
	fieldOrder   []string
	optionOrder  []string
}

var _ Host = (*Registry)(nil)

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		pages:    make(map[string]PageEntry),
		sections: make(map[string]SectionEntry),
		fields:   make(map[string]FieldEntry),
		options:  make(map[string]OptionEntry),
	}
}

func sectionKey(pageID, id string) string { return pageID + "\x00" + id }

// RegisterOptionsPage implements Host.
func (r *Registry) RegisterOptionsPage(page Page, render PageFunc) error {
	page = page.normalized()
	if page.Slug == "" {
		return fmt.Errorf("registry: page slug is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages[page.Slug] = PageEntry{Page: page, Render: render}
	return nil
}

// RegisterSettingsSection implements Host. The page must be registered
// first.
func (r *Registry) RegisterSettingsSection(id, title string, render RenderFunc, pageID string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("registry: section id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pages[pageID]; !ok {
		return fmt.Errorf("registry: section %q: unknown page %q", id, pageID)
	}
	key := sectionKey(pageID, id)
	if _, exists := r.sections[key]; !exists {
		r.sectionOrder = append(r.sectionOrder, key)
	}
	r.sections[key] = SectionEntry{ID: id, Title: title, PageID: pageID, Render: render}
	return nil
}

// RegisterSettingsField implements Host. The section must be registered
// first.
func (r *Registry) RegisterSettingsField(id, label string, render FieldFunc, pageID, sectionID string, args FieldArgs) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("registry: field id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sections[sectionKey(pageID, sectionID)]; !ok {
		return fmt.Errorf("registry: field %q: unknown section %q on page %q", id, sectionID, pageID)
	}
	key := sectionKey(pageID, id)
	if _, exists := r.fields[key]; !exists {
		r.fieldOrder = append(r.fieldOrder, key)
	}
	r.fields[key] = FieldEntry{ID: id, Label: label, PageID: pageID, SectionID: sectionID, Args: args, Render: render}
	return nil
}

// RegisterOption implements Host.
func (r *Registry) RegisterOption(group, name string, validator validation.Func) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("registry: option name is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.options[name]; !exists {
		r.optionOrder = append(r.optionOrder, name)
	}
	r.options[name] = OptionEntry{Group: group, Name: name, Validator: validator}
	return nil
}

// Page returns the page registered under slug.
func (r *Registry) Page(slug string) (PageEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.pages[slug]
	return entry, ok
}

// Sections lists the sections of a page in registration order.
func (r *Registry) Sections(pageID string) []SectionEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []SectionEntry
	for _, key := range r.sectionOrder {
		if entry := r.sections[key]; entry.PageID == pageID {
			out = append(out, entry)
		}
	}
	return out
}

// Fields lists the field rows of a section in registration order.
func (r *Registry) Fields(pageID, sectionID string) []FieldEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []FieldEntry
	for _, key := range r.fieldOrder {
		if entry := r.fields[key]; entry.PageID == pageID && entry.SectionID == sectionID {
			out = append(out, entry)
		}
	}
	return out
}

// Option returns the option registered under name.
func (r *Registry) Option(name string) (OptionEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.options[name]
	return entry, ok
}

// Options lists the options registered for group in registration order.
func (r *Registry) Options(group string) []OptionEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []OptionEntry
	for _, name := range r.optionOrder {
		if entry := r.options[name]; entry.Group == group {
			out = append(out, entry)
		}
	}
	return out
}
