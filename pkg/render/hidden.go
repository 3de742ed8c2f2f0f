package render

import (
	"fmt"
	"sort"
	"strings"
)

// Hidden input names the host posts back with every settings form.
const (
	FieldOptionPage = "option_page"
	FieldAction     = "action"
	FieldNonce      = "_wpnonce"
	FieldReferer    = "_wp_http_referer"
)

// HiddenField is a hidden form input emitted before the visible sections.
type HiddenField struct {
	Name  string
	Value string
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{
		Name:  strings.TrimSpace(name),
		Value: fmt.Sprint(value),
	}
}

// SettingsFields returns the hidden inputs a settings form needs: the option
// group, the update action, the nonce and the referer, in that order.
func SettingsFields(group, nonce, referer string) []HiddenField {
	fields := []HiddenField{
		Hidden(FieldOptionPage, group),
		Hidden(FieldAction, "update"),
		Hidden(FieldNonce, nonce),
	}
	if strings.TrimSpace(referer) != "" {
		fields = append(fields, Hidden(FieldReferer, referer))
	}
	return fields
}

// MergeHiddenFields returns a copy of base with the provided fields applied.
// Empty names are ignored; later fields win on name collisions.
func MergeHiddenFields(base map[string]string, fields ...HiddenField) map[string]string {
	if len(base) == 0 && len(fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(fields))
	for key, value := range base {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			out[trimmed] = value
		}
	}
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			continue
		}
		out[name] = field.Value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SortedHiddenFields turns a name/value map into fields sorted by name.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	if len(fields) == 0 {
		return nil
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		if strings.TrimSpace(name) == "" {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)

	result := make([]HiddenField, 0, len(names))
	for _, name := range names {
		result = append(result, HiddenField{Name: strings.TrimSpace(name), Value: fields[name]})
	}
	return result
}
