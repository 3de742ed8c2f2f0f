package html

import (
	"bytes"
	"fmt"
	"html"

	"github.com/goliatone/go-settings/pkg/render"
	rendertemplate "github.com/goliatone/go-settings/pkg/render/template"
	"github.com/goliatone/go-settings/pkg/renderers/html/components"
	"github.com/goliatone/go-settings/pkg/schema"
)

// FieldOptions configures RenderField. The zero value renders with the
// default components and untranslated strings.
type FieldOptions struct {
	Components *components.Registry
	Translate  func(string) string
	Template   rendertemplate.TemplateRenderer
	Partials   map[string]string
	AssetURL   func(string) string
	MediaURL   func(string) string
}

// RenderField draws the controls for field followed by its description.
// name is the option name the controls post under. The controls show stored
// when found is true and the field default otherwise.
func RenderField(field schema.Field, name string, stored schema.Value, found bool, opts FieldOptions) (string, error) {
	registry := opts.Components
	if registry == nil {
		registry = components.Default()
	}

	var buf bytes.Buffer
	err := registry.Render(&buf, field, components.ComponentData{
		Name:          name,
		Value:         render.Current(field, stored, found),
		Found:         found,
		Translate:     opts.Translate,
		Template:      opts.Template,
		ThemePartials: opts.Partials,
		AssetURL:      opts.AssetURL,
		MediaURL:      opts.MediaURL,
	})
	if err != nil {
		return "", fmt.Errorf("html renderer: field %q: %w", field.ID, err)
	}

	writeDescription(&buf, field)
	return buf.String(), nil
}

// Grouped controls get the description after all of their inputs; the rest
// wrap it in a label pointing at the control.
func writeDescription(buf *bytes.Buffer, field schema.Field) {
	description := SanitizeDescription(field.Description)
	if description == "" {
		return
	}
	if grouped(field.Type) {
		fmt.Fprintf(buf, `<br/><span class="description">%s</span>`, description)
		return
	}
	fmt.Fprintf(buf, `<label for="%s"><span class="description">%s</span></label>`+"\n", html.EscapeString(field.ID), description)
}

func grouped(kind schema.FieldType) bool {
	switch kind {
	case schema.TypeCheckboxMulti, schema.TypeRadio, schema.TypeSelectMulti:
		return true
	default:
		return false
	}
}

// LabelFor reports the control id a row label should point at. Option lists
// and image fields have no single control carrying the field id.
func LabelFor(field schema.Field) string {
	switch field.Type {
	case schema.TypeCheckboxMulti, schema.TypeRadio, schema.TypeImage:
		return ""
	default:
		return field.ID
	}
}
