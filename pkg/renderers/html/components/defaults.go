package components

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/goliatone/go-settings/pkg/schema"
)

// Asset handles shared between components and the page bundle.
const (
	HandleColorPicker = "color-picker"
	HandleMedia       = "media-upload"
	HandleSettings    = "settings-admin-js"

	// PlaceholderImage is shown by image fields with no attachment.
	PlaceholderImage = "img/no-img.png"

	partialPrefix = "fields."
)

// ColorPickerStyle and the other descriptors below point into the embedded
// asset bundle. Hrefs are relative to it.
var (
	ColorPickerStyle  = Stylesheet{Handle: HandleColorPicker, Href: "css/color-picker.css"}
	ColorPickerScript = Script{Handle: HandleColorPicker, Src: "js/color-picker.js"}
	MediaScript       = Script{Handle: HandleMedia, Src: "js/media-upload.js"}
	SettingsScript    = Script{
		Handle: HandleSettings,
		Src:    "js/settings.js",
		Deps:   []string{HandleColorPicker, HandleMedia},
	}
)

// NewDefaultRegistry constructs a registry with a component for every field
// type.
func NewDefaultRegistry() *Registry {
	registry := New()

	for _, kind := range []schema.FieldType{schema.TypeText, schema.TypePassword, schema.TypeNumber} {
		registry.MustRegister(kind, Descriptor{Renderer: themed(kind, inputRenderer)})
	}
	registry.MustRegister(schema.TypeTextSecret, Descriptor{Renderer: themed(schema.TypeTextSecret, secretRenderer)})
	registry.MustRegister(schema.TypeTextarea, Descriptor{Renderer: themed(schema.TypeTextarea, textareaRenderer)})
	registry.MustRegister(schema.TypeCheckbox, Descriptor{Renderer: themed(schema.TypeCheckbox, checkboxRenderer)})
	registry.MustRegister(schema.TypeCheckboxMulti, Descriptor{Renderer: themed(schema.TypeCheckboxMulti, choiceListRenderer("checkbox", true))})
	registry.MustRegister(schema.TypeRadio, Descriptor{Renderer: themed(schema.TypeRadio, choiceListRenderer("radio", false))})
	registry.MustRegister(schema.TypeSelect, Descriptor{Renderer: themed(schema.TypeSelect, selectRenderer(false))})
	registry.MustRegister(schema.TypeSelectMulti, Descriptor{Renderer: themed(schema.TypeSelectMulti, selectRenderer(true))})
	registry.MustRegister(schema.TypeImage, Descriptor{
		Renderer: themed(schema.TypeImage, imageRenderer),
		Scripts:  []Script{MediaScript},
	})
	registry.MustRegister(schema.TypeColor, Descriptor{
		Renderer:    themed(schema.TypeColor, colorRenderer),
		Stylesheets: []Stylesheet{ColorPickerStyle},
		Scripts:     []Script{ColorPickerScript},
	})

	return registry
}

var defaultRegistry = NewDefaultRegistry()

// Default returns the shared default registry. Clone it before registering
// overrides.
func Default() *Registry {
	return defaultRegistry
}

// themed renders the theme partial "fields.<type>" when the active theme
// provides one and falls back to the built-in markup otherwise.
func themed(kind schema.FieldType, fallback Renderer) Renderer {
	partialKey := partialPrefix + string(kind)
	return func(buf *bytes.Buffer, field schema.Field, data ComponentData) error {
		templateName := ""
		if data.ThemePartials != nil {
			templateName = strings.TrimSpace(data.ThemePartials[partialKey])
		}
		if templateName == "" || data.Template == nil {
			return fallback(buf, field, data)
		}

		options := make([]map[string]any, 0, len(field.Options))
		for _, option := range field.Options {
			options = append(options, map[string]any{"key": option.Key, "label": option.Label})
		}
		payload := map[string]any{
			"field": map[string]any{
				"id":          field.ID,
				"label":       field.Label,
				"type":        string(field.Type),
				"placeholder": field.Placeholder,
				"options":     options,
			},
			"name":  data.Name,
			"value": data.Value.String(),
			"items": data.Value.Items(),
		}
		rendered, err := data.Template.RenderTemplate(templateName, payload)
		if err != nil {
			return fmt.Errorf("components: render partial %q: %w", partialKey, err)
		}
		buf.WriteString(rendered)
		return nil
	}
}

func inputRenderer(buf *bytes.Buffer, field schema.Field, data ComponentData) error {
	writeInput(buf, field, string(field.Type), data.Name, data.Value.String())
	return nil
}

// secretRenderer never echoes the stored value back.
func secretRenderer(buf *bytes.Buffer, field schema.Field, data ComponentData) error {
	writeInput(buf, field, "text", data.Name, "")
	return nil
}

func writeInput(buf *bytes.Buffer, field schema.Field, inputType, name, value string) {
	fmt.Fprintf(buf, `<input id="%s" type="%s" name="%s" placeholder="%s" value="%s"/>`+"\n",
		esc(field.ID), esc(inputType), esc(name), esc(field.Placeholder), esc(value))
}

func textareaRenderer(buf *bytes.Buffer, field schema.Field, data ComponentData) error {
	fmt.Fprintf(buf, `<textarea id="%s" rows="5" cols="50" name="%s" placeholder="%s">%s</textarea><br/>`+"\n",
		esc(field.ID), esc(data.Name), esc(field.Placeholder), esc(data.Value.String()))
	return nil
}

// checkboxRenderer ticks the box only for a stored "on". The default is
// ignored.
func checkboxRenderer(buf *bytes.Buffer, field schema.Field, data ComponentData) error {
	fmt.Fprintf(buf, `<input id="%s" type="checkbox" name="%s"%s/>`+"\n",
		esc(field.ID), esc(data.Name), marker("checked", data.Found && data.Value.String() == schema.CheckboxOn))
	return nil
}

// choiceListRenderer draws one labelled input per option. Multi lists post
// under NAME[].
func choiceListRenderer(inputType string, multi bool) Renderer {
	return func(buf *bytes.Buffer, field schema.Field, data ComponentData) error {
		name := data.Name
		if multi {
			name += "[]"
		}
		for _, option := range field.Options {
			id := field.ID + "_" + option.Key
			fmt.Fprintf(buf, `<label for="%s"><input type="%s" name="%s" value="%s" id="%s"%s/> %s</label> `,
				esc(id), inputType, esc(name), esc(option.Key), esc(id),
				marker("checked", data.Value.Has(option.Key)), esc(option.Label))
		}
		return nil
	}
}

func selectRenderer(multi bool) Renderer {
	return func(buf *bytes.Buffer, field schema.Field, data ComponentData) error {
		name := data.Name
		extra := ""
		if multi {
			name += "[]"
			extra = ` multiple="multiple"`
		}
		fmt.Fprintf(buf, `<select name="%s" id="%s"%s>`, esc(name), esc(field.ID), extra)
		for _, option := range field.Options {
			fmt.Fprintf(buf, `<option value="%s"%s>%s</option>`,
				esc(option.Key), marker("selected", data.Value.Has(option.Key)), esc(option.Label))
		}
		buf.WriteString(`</select> `)
		return nil
	}
}

func imageRenderer(buf *bytes.Buffer, _ schema.Field, data ComponentData) error {
	id := data.Value.String()
	placeholder := data.Asset(PlaceholderImage)
	thumb := placeholder
	if id != "" && data.MediaURL != nil {
		if resolved := data.MediaURL(id); resolved != "" {
			thumb = resolved
		}
	}

	name := esc(data.Name)
	fmt.Fprintf(buf, `<img id="%s_preview" class="image_preview" src="%s" data-placeholder="%s"/><br/>`+"\n",
		name, esc(thumb), esc(placeholder))
	fmt.Fprintf(buf, `<input id="%s_button" type="button" data-uploader_title="%s" data-uploader_button_text="%s" class="image_upload_button button" value="%s"/>`+"\n",
		name, esc(data.T("Upload an image")), esc(data.T("Use image")), esc(data.T("Upload new image")))
	fmt.Fprintf(buf, `<input id="%s_delete" type="button" class="image_delete_button button" value="%s"/>`+"\n",
		name, esc(data.T("Remove image")))
	fmt.Fprintf(buf, `<input id="%s" class="image_data_field" type="hidden" name="%s" value="%s"/><br/>`+"\n",
		name, name, esc(id))
	return nil
}

func colorRenderer(buf *bytes.Buffer, field schema.Field, data ComponentData) error {
	buf.WriteString(`<div class="color-picker" style="position:relative;">`)
	fmt.Fprintf(buf, `<input type="text" id="%s" name="%s" class="color" value="%s"/>`,
		esc(field.ID), esc(data.Name), esc(data.Value.String()))
	buf.WriteString(`<div style="position:absolute;background:#FFF;z-index:99;border-radius:100%;" class="colorpicker"></div>`)
	buf.WriteString("</div>\n")
	return nil
}

func marker(attr string, on bool) string {
	if !on {
		return ""
	}
	return " " + attr + `="` + attr + `"`
}

func esc(s string) string {
	return html.EscapeString(s)
}
