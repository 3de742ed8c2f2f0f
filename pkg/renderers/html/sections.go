package html

import (
	"github.com/goliatone/go-settings/pkg/render"
	"github.com/goliatone/go-settings/pkg/schema"
)

// SectionIntro is the paragraph printed under a section heading.
func SectionIntro(section schema.Section) string {
	return "<p> " + SanitizeDescription(section.Description) + "</p>\n"
}

// Sections renders every section of page after applying the subset and the
// translations in opts.
func (r *Renderer) Sections(page render.Page, opts render.RenderOptions) ([]render.Section, error) {
	opts = r.localeOptions(opts)
	localized := render.LocalizeSchema(render.ApplySubset(page.Schema, opts.Subset), opts)
	fieldOpts := r.fieldOptions(opts)

	out := make([]render.Section, 0, len(localized.Sections))
	for _, section := range localized.Sections {
		rendered := render.Section{
			ID:    section.Key,
			Title: section.Title,
			Intro: SectionIntro(section),
			Rows:  make([]render.Row, 0, len(section.Fields)),
		}
		for _, field := range section.Fields {
			stored, found := page.Stored(field)
			markup, err := RenderField(field, page.OptionName(field), stored, found, fieldOpts)
			if err != nil {
				return nil, err
			}
			rendered.Rows = append(rendered.Rows, render.Row{
				ID:       field.ID,
				Label:    field.Label,
				LabelFor: LabelFor(field),
				HTML:     markup,
			})
		}
		out = append(out, rendered)
	}
	return out, nil
}
