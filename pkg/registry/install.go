package registry

import "fmt"

// Install registers plan with host: the options page, every section, then
// the option and field row of each field in schema order.
func Install(host Host, plan Registrations, callbacks Callbacks) error {
	if host == nil {
		return fmt.Errorf("registry: host is nil")
	}
	page := plan.Page
	if err := host.RegisterOptionsPage(page, callbacks.Page); err != nil {
		return fmt.Errorf("registry: register page %q: %w", page.Slug, err)
	}

	for _, section := range plan.Sections {
		var render RenderFunc
		if callbacks.Section != nil {
			render = callbacks.Section(section)
		}
		if err := host.RegisterSettingsSection(section.Key, section.Title, render, page.Slug); err != nil {
			return fmt.Errorf("registry: register section %q: %w", section.Key, err)
		}
	}

	for _, reg := range plan.Fields {
		if err := host.RegisterOption(page.Slug, reg.Option, reg.Validator); err != nil {
			return fmt.Errorf("registry: register option %q: %w", reg.Option, err)
		}
		args := FieldArgs{Option: reg.Option, LabelFor: reg.Field.ID, Field: reg.Field}
		if callbacks.LabelFor != nil {
			args.LabelFor = callbacks.LabelFor(reg.Field)
		}
		if err := host.RegisterSettingsField(reg.Field.ID, reg.Field.Label, callbacks.Field, page.Slug, reg.Section, args); err != nil {
			return fmt.Errorf("registry: register field %q: %w", reg.Field.ID, err)
		}
	}
	return nil
}
