package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSchema is wrapped by every error Check returns.
var ErrInvalidSchema = errors.New("schema: invalid schema")

// Issue describes one contract break found by Check.
type Issue struct {
	Section string
	Field   string
	Message string
}

func (i Issue) String() string {
	switch {
	case i.Field != "":
		return fmt.Sprintf("%s.%s: %s", i.Section, i.Field, i.Message)
	case i.Section != "":
		return fmt.Sprintf("%s: %s", i.Section, i.Message)
	default:
		return i.Message
	}
}

// CheckError collects every issue found in a schema.
type CheckError struct {
	Issues []Issue
}

func (e *CheckError) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return ErrInvalidSchema.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.String())
	}
	return fmt.Sprintf("%s: %s", ErrInvalidSchema, strings.Join(parts, "; "))
}

func (e *CheckError) Unwrap() error {
	return ErrInvalidSchema
}

// Check validates the structural contract of a schema: section keys and field
// ids are present and unique, types are known, choice types declare options
// with unique keys, and multi-value defaults are sets of known keys.
func Check(s Schema) error {
	var issues []Issue
	sections := make(map[string]struct{}, len(s.Sections))
	fields := make(map[string]string)

	for _, section := range s.Sections {
		key := strings.TrimSpace(section.Key)
		if key == "" {
			issues = append(issues, Issue{Message: "section key is required"})
		} else if _, dup := sections[key]; dup {
			issues = append(issues, Issue{Section: key, Message: "duplicate section key"})
		}
		sections[key] = struct{}{}

		for _, field := range section.Fields {
			issues = append(issues, checkField(key, field)...)
			if field.ID == "" {
				continue
			}
			if owner, dup := fields[field.ID]; dup {
				issues = append(issues, Issue{
					Section: key,
					Field:   field.ID,
					Message: fmt.Sprintf("duplicate field id (first declared in %s)", owner),
				})
				continue
			}
			fields[field.ID] = key
		}
	}

	if len(issues) > 0 {
		return &CheckError{Issues: issues}
	}
	return nil
}

func checkField(section string, field Field) []Issue {
	var issues []Issue
	add := func(format string, args ...any) {
		issues = append(issues, Issue{Section: section, Field: field.ID, Message: fmt.Sprintf(format, args...)})
	}

	if strings.TrimSpace(field.ID) == "" {
		add("field id is required")
	} else if strings.ContainsAny(field.ID, " \t\n[]") {
		add("field id %q contains whitespace or brackets", field.ID)
	}
	if !field.Type.Valid() {
		add("unknown field type %q", field.Type)
		return issues
	}

	if field.Type.Choice() {
		if len(field.Options) == 0 {
			add("%s field requires options", field.Type)
		}
		seen := make(map[string]struct{}, len(field.Options))
		for _, option := range field.Options {
			if option.Key == "" {
				add("option key is required")
				continue
			}
			if _, dup := seen[option.Key]; dup {
				add("duplicate option key %q", option.Key)
			}
			seen[option.Key] = struct{}{}
		}
	} else if len(field.Options) > 0 {
		add("%s field does not use options", field.Type)
	}

	switch {
	case field.Type.Multi():
		if !field.Default.IsSet() && !field.Default.IsEmpty() {
			add("default must be a list of option keys")
		}
		for _, key := range field.Default.Items() {
			if !field.HasOption(key) {
				add("default %q is not an option key", key)
			}
		}
	case field.Default.IsSet():
		add("default must be a single value")
	case field.Type.Choice() && !field.Default.IsEmpty() && !field.HasOption(field.Default.String()):
		add("default %q is not an option key", field.Default.String())
	}

	return issues
}
