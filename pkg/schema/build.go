package schema

import "fmt"

// Extension mutates a schema copy before it is registered. Extensions run in
// the order they are passed to Build.
type Extension interface {
	Extend(*Schema) error
}

// ExtensionFunc adapts a plain function to Extension.
type ExtensionFunc func(*Schema) error

// Extend implements Extension.
func (fn ExtensionFunc) Extend(s *Schema) error {
	if fn == nil {
		return nil
	}
	return fn(s)
}

// Sections returns an extension that upserts each section by key.
func Sections(sections ...Section) Extension {
	return ExtensionFunc(func(s *Schema) error {
		for _, section := range sections {
			s.Upsert(section)
		}
		return nil
	})
}

// Default returns the built-in schema: one post_types section with a
// checkbox_multi field.
func Default() Schema {
	return Schema{Sections: []Section{
		{
			Key:         "post_types",
			Title:       "Post types",
			Description: "Settings behavior maps for certain types of posts.",
			Fields: []Field{
				{
					ID:          "multiple_checkboxes",
					Label:       "Some Items",
					Description: "You can select multiple items and they will be stored as an array.",
					Type:        TypeCheckboxMulti,
					Options: Options{
						{Key: "square", Label: "Square"},
						{Key: "circle", Label: "Circle"},
						{Key: "rectangle", Label: "Rectangle"},
						{Key: "triangle", Label: "Triangle"},
					},
					Default: Set("circle", "triangle"),
				},
			},
		},
	}}
}

// ExtraSection holds the less common controls: number, color, image and a
// multi-select box.
func ExtraSection() Section {
	return Section{
		Key:         "extra",
		Title:       "Extra",
		Description: "These are some extra input fields that maybe aren't as common as the others.",
		Fields: []Field{
			{
				ID:          "number_field",
				Label:       "A Number",
				Description: "This is a standard number field - if this field contains anything other than numbers then the form will not be submitted.",
				Type:        TypeNumber,
				Placeholder: "42",
			},
			{
				ID:          "colour_picker",
				Label:       "Pick a colour",
				Description: "This uses the built-in colour picker - the option is stored as the colour's hex code.",
				Type:        TypeColor,
				Default:     Scalar("#21759B"),
			},
			{
				ID:          "an_image",
				Label:       "An Image",
				Description: "This will upload an image to your media library and store the attachment ID in the option field. Once you have uploaded an image the thumbnail will display above these buttons.",
				Type:        TypeImage,
			},
			{
				ID:          "multi_select_box",
				Label:       "A Multi-Select Box",
				Description: "A standard multi-select box - the saved data is stored as an array.",
				Type:        TypeSelectMulti,
				Options: Options{
					{Key: "linux", Label: "Linux"},
					{Key: "mac", Label: "Mac"},
					{Key: "windows", Label: "Windows"},
				},
				Default: Set("linux"),
			},
		},
	}
}

// Extra returns an extension that adds ExtraSection.
func Extra() Extension {
	return Sections(ExtraSection())
}

// Build starts from Default and applies every extension in order. A failing
// extension aborts the build.
func Build(exts ...Extension) (Schema, error) {
	s := Default()
	for idx, ext := range exts {
		if ext == nil {
			continue
		}
		if err := ext.Extend(&s); err != nil {
			return Schema{}, fmt.Errorf("schema: extension %d: %w", idx, err)
		}
	}
	return s, nil
}

// MustBuild is Build followed by Check and panics on either error. Use it
// where a broken schema is a programming mistake.
func MustBuild(exts ...Extension) Schema {
	s, err := Build(exts...)
	if err != nil {
		panic(err)
	}
	if err := Check(s); err != nil {
		panic(err)
	}
	return s
}
