package store

import (
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-settings/pkg/schema"
)

// EncodeValue serialises a value for a text column: a JSON string for
// scalars and a JSON array for sets.
func EncodeValue(value schema.Value) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("store: encode value: %w", err)
	}
	return string(data), nil
}

// DecodeValue reverses EncodeValue.
func DecodeValue(raw string) (schema.Value, error) {
	var value schema.Value
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return schema.Value{}, fmt.Errorf("store: decode value: %w", err)
	}
	return value, nil
}
