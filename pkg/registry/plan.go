package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-settings/pkg/schema"
	"github.com/goliatone/go-settings/pkg/validation"
)

// ErrDuplicateField is returned when two fields share an id.
var ErrDuplicateField = errors.New("registry: duplicate field id")

// DefaultCapability is the capability required to view the page.
const DefaultCapability = "manage_options"

// Page describes the options page the settings are shown on. Slug doubles as
// the option group every field is registered under.
type Page struct {
	Slug       string
	Title      string
	MenuTitle  string
	Capability string
	Namespace  string
}

func (p Page) normalized() Page {
	p.Slug = strings.TrimSpace(p.Slug)
	if p.MenuTitle == "" {
		p.MenuTitle = p.Title
	}
	if p.Capability == "" {
		p.Capability = DefaultCapability
	}
	return p
}

// Registration binds one schema field to its stored option.
type Registration struct {
	Section   string
	Field     schema.Field
	Option    string
	Validator validation.Func
}

// Registrations is the output of Plan: everything Install hands to a host.
type Registrations struct {
	Page     Page
	Sections []schema.Section
	Fields   []Registration
}

// Field returns the registration for a field id.
func (r Registrations) Field(id string) (Registration, bool) {
	for _, reg := range r.Fields {
		if reg.Field.ID == id {
			return reg, true
		}
	}
	return Registration{}, false
}

// Options lists the stored option names in registration order.
func (r Registrations) Options() []string {
	out := make([]string, 0, len(r.Fields))
	for _, reg := range r.Fields {
		out = append(out, reg.Option)
	}
	return out
}

// Plan computes the registrations for s. Field validators are resolved
// through catalogue, which may be nil when no field names a callback.
func Plan(page Page, s schema.Schema, catalogue *validation.Catalogue) (Registrations, error) {
	page = page.normalized()
	if page.Slug == "" {
		return Registrations{}, fmt.Errorf("registry: page slug is required")
	}

	plan := Registrations{
		Page:     page,
		Sections: make([]schema.Section, 0, len(s.Sections)),
	}
	seen := make(map[string]string)
	for _, section := range s.Sections {
		plan.Sections = append(plan.Sections, section)
		for _, field := range section.Fields {
			if prev, dup := seen[field.ID]; dup {
				return Registrations{}, fmt.Errorf("%w: %q in sections %q and %q", ErrDuplicateField, field.ID, prev, section.Key)
			}
			seen[field.ID] = section.Key

			validator, err := catalogue.Resolve(field)
			if err != nil {
				return Registrations{}, fmt.Errorf("registry: %w", err)
			}
			plan.Fields = append(plan.Fields, Registration{
				Section:   section.Key,
				Field:     field,
				Option:    schema.OptionName(page.Namespace, field.ID),
				Validator: validator,
			})
		}
	}
	return plan, nil
}
