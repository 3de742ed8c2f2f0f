package render

import (
	"context"

	"github.com/goliatone/go-settings/pkg/schema"
)

// Renderer turns a settings page into a byte representation (HTML, a
// terminal session, an API document).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, page Page, options RenderOptions) ([]byte, error)
}

// Page is the settings page a renderer draws: its schema plus whatever the
// store currently holds for it.
type Page struct {
	// Slug identifies the page and its option group (e.g. "plugin_settings").
	Slug  string
	Title string
	// Action is the URL the form posts to.
	Action    string
	Namespace string
	Schema    schema.Schema
	// Values holds stored options keyed by option name. A missing key means
	// nothing is stored and the field default applies.
	Values map[string]schema.Value
}

// OptionName returns the stored option name for field.
func (p Page) OptionName(field schema.Field) string {
	return schema.OptionName(p.Namespace, field.ID)
}

// Stored returns the stored value for field and whether one exists.
func (p Page) Stored(field schema.Field) (schema.Value, bool) {
	if p.Values == nil {
		return schema.Value{}, false
	}
	value, ok := p.Values[p.OptionName(field)]
	return value, ok
}

// Current resolves the value a control shows: the stored value when present,
// the field default otherwise.
func Current(field schema.Field, stored schema.Value, found bool) schema.Value {
	if found {
		return stored
	}
	return field.Default
}

// Section is a section whose intro and rows were already rendered, usually by
// the host walking its registered callbacks.
type Section struct {
	ID    string
	Title string
	Intro string
	Rows  []Row
}

// Row is one labelled field row inside a section table.
type Row struct {
	ID    string
	Label string
	// LabelFor is the control id the row label points at. Empty for
	// controls that group several inputs.
	LabelFor string
	HTML     string
}
