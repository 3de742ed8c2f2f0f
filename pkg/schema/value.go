package schema

import (
	"bytes"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Value is what a field stores: either a scalar string or a set of option
// keys. The zero Value is the empty scalar.
type Value struct {
	scalar string
	items  []string
	set    bool
}

// Scalar wraps a single string value.
func Scalar(v string) Value {
	return Value{scalar: v}
}

// Set builds a set value from keys, dropping duplicates and keeping the first
// occurrence order. Set() is the empty set, which differs from the zero Value.
func Set(keys ...string) Value {
	items := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		items = append(items, key)
	}
	return Value{items: items, set: true}
}

// IsSet reports whether v holds a set of keys.
func (v Value) IsSet() bool {
	return v.set
}

// String returns the scalar value. Sets are joined with commas, which is only
// useful for display.
func (v Value) String() string {
	if v.set {
		return strings.Join(v.items, ",")
	}
	return v.scalar
}

// Items returns a copy of the set members. A scalar yields a one element
// slice unless it is empty.
func (v Value) Items() []string {
	if v.set {
		return append([]string{}, v.items...)
	}
	if v.scalar == "" {
		return []string{}
	}
	return []string{v.scalar}
}

// Has reports set membership, or equality for scalars.
func (v Value) Has(key string) bool {
	if !v.set {
		return v.scalar == key
	}
	for _, item := range v.items {
		if item == key {
			return true
		}
	}
	return false
}

// IsEmpty reports whether v is the empty scalar or the empty set.
func (v Value) IsEmpty() bool {
	if v.set {
		return len(v.items) == 0
	}
	return v.scalar == ""
}

// Equal compares shape and content. Set order is significant.
func (v Value) Equal(other Value) bool {
	if v.set != other.set {
		return false
	}
	if !v.set {
		return v.scalar == other.scalar
	}
	if len(v.items) != len(other.items) {
		return false
	}
	for i := range v.items {
		if v.items[i] != other.items[i] {
			return false
		}
	}
	return true
}

// Filter keeps the set members accepted by keep. Scalars are returned as-is.
func (v Value) Filter(keep func(string) bool) Value {
	if !v.set || keep == nil {
		return v
	}
	out := make([]string, 0, len(v.items))
	for _, item := range v.items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return Value{items: out, set: true}
}

// MarshalJSON encodes scalars as strings and sets as string arrays.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.set {
		items := v.items
		if items == nil {
			items = []string{}
		}
		return json.Marshal(items)
	}
	return json.Marshal(v.scalar)
}

// UnmarshalJSON decodes strings, arrays and bare literals (numbers, booleans).
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0, bytes.Equal(trimmed, []byte("null")):
		*v = Value{}
	case trimmed[0] == '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return fmt.Errorf("schema: value set: %w", err)
		}
		keys := make([]string, 0, len(raw))
		for _, item := range raw {
			keys = append(keys, literalString(item))
		}
		*v = Set(keys...)
	default:
		*v = Scalar(literalString(trimmed))
	}
	return nil
}

// MarshalYAML mirrors MarshalJSON.
func (v Value) MarshalYAML() (any, error) {
	if v.set {
		return v.Items(), nil
	}
	return v.scalar, nil
}

// UnmarshalYAML accepts scalars and sequences of scalars.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		keys := make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			keys = append(keys, item.Value)
		}
		*v = Set(keys...)
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*v = Value{}
			return nil
		}
		*v = Scalar(node.Value)
	default:
		return fmt.Errorf("schema: value must be a scalar or sequence (line %d)", node.Line)
	}
	return nil
}

func literalString(raw []byte) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "null" {
		return ""
	}
	return trimmed
}
