package schema

import "strings"

// DefaultNamespace prefixes every stored option name.
const DefaultNamespace = "vp_yandex_maps"

// Schema is the ordered list of sections shown on a settings page.
type Schema struct {
	Sections []Section `json:"sections" yaml:"sections"`
}

// Section returns the section registered under key.
func (s Schema) Section(key string) (Section, bool) {
	for _, section := range s.Sections {
		if section.Key == key {
			return section, true
		}
	}
	return Section{}, false
}

// Upsert replaces the section with the same key in place, or appends it.
func (s *Schema) Upsert(section Section) {
	for i := range s.Sections {
		if s.Sections[i].Key == section.Key {
			s.Sections[i] = cloneSection(section)
			return
		}
	}
	s.Sections = append(s.Sections, cloneSection(section))
}

// Remove drops the section stored under key and reports whether it existed.
func (s *Schema) Remove(key string) bool {
	for i := range s.Sections {
		if s.Sections[i].Key == key {
			s.Sections = append(s.Sections[:i], s.Sections[i+1:]...)
			return true
		}
	}
	return false
}

// Field finds a field by id across all sections.
func (s Schema) Field(id string) (Field, Section, bool) {
	for _, section := range s.Sections {
		for _, field := range section.Fields {
			if field.ID == id {
				return field, section, true
			}
		}
	}
	return Field{}, Section{}, false
}

// Fields flattens the schema in render order.
func (s Schema) Fields() []Field {
	var out []Field
	for _, section := range s.Sections {
		out = append(out, section.Fields...)
	}
	return out
}

// Clone returns a deep copy that shares no slices with s.
func (s Schema) Clone() Schema {
	if s.Sections == nil {
		return Schema{}
	}
	out := Schema{Sections: make([]Section, len(s.Sections))}
	for i, section := range s.Sections {
		out.Sections[i] = cloneSection(section)
	}
	return out
}

// OptionName joins a namespace and field id into the stored option name.
func OptionName(namespace, fieldID string) string {
	return namespace + strings.TrimSpace(fieldID)
}

func cloneSection(section Section) Section {
	out := section
	if section.Fields != nil {
		out.Fields = make([]Field, len(section.Fields))
		for i, field := range section.Fields {
			out.Fields[i] = cloneField(field)
		}
	}
	return out
}

func cloneField(field Field) Field {
	out := field
	if field.Options != nil {
		out.Options = append(Options(nil), field.Options...)
	}
	if field.Default.set {
		out.Default = Value{items: append([]string{}, field.Default.items...), set: true}
	}
	return out
}
