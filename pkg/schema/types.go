package schema

import (
	"bytes"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// FieldType enumerates the controls a settings field can render as.
type FieldType string

const (
	TypeText          FieldType = "text"
	TypePassword      FieldType = "password"
	TypeNumber        FieldType = "number"
	TypeTextSecret    FieldType = "text_secret"
	TypeTextarea      FieldType = "textarea"
	TypeCheckbox      FieldType = "checkbox"
	TypeCheckboxMulti FieldType = "checkbox_multi"
	TypeRadio         FieldType = "radio"
	TypeSelect        FieldType = "select"
	TypeSelectMulti   FieldType = "select_multi"
	TypeImage         FieldType = "image"
	TypeColor         FieldType = "color"
)

// CheckboxOn is the value a checked single checkbox submits and stores.
const CheckboxOn = "on"

var fieldTypes = []FieldType{
	TypeText,
	TypePassword,
	TypeNumber,
	TypeTextSecret,
	TypeTextarea,
	TypeCheckbox,
	TypeCheckboxMulti,
	TypeRadio,
	TypeSelect,
	TypeSelectMulti,
	TypeImage,
	TypeColor,
}

// FieldTypes returns every supported field type in declaration order.
func FieldTypes() []FieldType {
	return append([]FieldType(nil), fieldTypes...)
}

// Valid reports whether t is one of the supported field types.
func (t FieldType) Valid() bool {
	for _, known := range fieldTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Multi reports whether the field stores a set of option keys.
func (t FieldType) Multi() bool {
	return t == TypeCheckboxMulti || t == TypeSelectMulti
}

// Choice reports whether the field renders from its Options.
func (t FieldType) Choice() bool {
	switch t {
	case TypeCheckboxMulti, TypeRadio, TypeSelect, TypeSelectMulti:
		return true
	default:
		return false
	}
}

// ValidateFunc normalises a submitted value before it is persisted. Returning
// an error rejects the submission for that field.
type ValidateFunc func(Value) (Value, error)

// Field is one configurable option and its rendering metadata.
type Field struct {
	ID          string    `json:"id" yaml:"id"`
	Label       string    `json:"label,omitempty" yaml:"label,omitempty"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Type        FieldType `json:"type" yaml:"type"`
	Options     Options   `json:"options,omitempty" yaml:"options,omitempty"`
	Default     Value     `json:"default,omitempty" yaml:"default,omitempty"`
	Placeholder string    `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	// Callback names a validator from the validation catalogue.
	Callback string `json:"callback,omitempty" yaml:"callback,omitempty"`
	// Validate takes precedence over Callback when set.
	Validate ValidateFunc `json:"-" yaml:"-"`
}

// HasOption reports whether key is one of the field's option keys.
func (f Field) HasOption(key string) bool {
	for _, option := range f.Options {
		if option.Key == key {
			return true
		}
	}
	return false
}

// Section groups fields under a titled heading.
type Section struct {
	Key         string  `json:"key" yaml:"key"`
	Title       string  `json:"title,omitempty" yaml:"title,omitempty"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      []Field `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Option is a single choice: the stored key and the label shown next to it.
type Option struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`
}

// Options keeps choices in declaration order. Documents may spell them as a
// mapping of key to label or as a list of {key, label} objects.
type Options []Option

// Keys returns the option keys in order.
func (o Options) Keys() []string {
	keys := make([]string, 0, len(o))
	for _, option := range o {
		keys = append(keys, option.Key)
	}
	return keys
}

// Label returns the label for key, if present.
func (o Options) Label(key string) (string, bool) {
	for _, option := range o {
		if option.Key == key {
			return option.Label, true
		}
	}
	return "", false
}

// UnmarshalJSON accepts either an object (order preserved) or an array.
func (o *Options) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*o = nil
		return nil
	}

	if trimmed[0] == '[' {
		var list []Option
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return fmt.Errorf("schema: options list: %w", err)
		}
		*o = list
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("schema: options: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("schema: options must be an object or array")
	}

	var out Options
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("schema: options key: %w", err)
		}
		key, _ := keyTok.(string)
		var label string
		if err := dec.Decode(&label); err != nil {
			return fmt.Errorf("schema: option %q label: %w", key, err)
		}
		out = append(out, Option{Key: key, Label: label})
	}
	*o = out
	return nil
}

// UnmarshalYAML accepts either a mapping (order preserved) or a sequence.
func (o *Options) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		out := make(Options, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			out = append(out, Option{
				Key:   node.Content[i].Value,
				Label: node.Content[i+1].Value,
			})
		}
		*o = out
		return nil
	case yaml.SequenceNode:
		var list []Option
		if err := node.Decode(&list); err != nil {
			return fmt.Errorf("schema: options list: %w", err)
		}
		*o = list
		return nil
	default:
		if strings.TrimSpace(node.Value) == "" || node.Tag == "!!null" {
			*o = nil
			return nil
		}
		return fmt.Errorf("schema: options must be a mapping or sequence (line %d)", node.Line)
	}
}
