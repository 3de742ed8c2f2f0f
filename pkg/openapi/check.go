package openapi

import (
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-settings/pkg/schema"
)

// Check validates payload against the document's payload schema. Only the
// options present in payload are checked.
func (d *Document) Check(payload map[string]any) error {
	return CheckPayload(d.payload, payload)
}

// CheckPayload validates payload against an object schema built by
// PayloadSchema.
func CheckPayload(s *openapi3.Schema, payload map[string]any) error {
	if s == nil {
		return fmt.Errorf("openapi: payload schema is nil")
	}
	if err := s.VisitJSON(normalize(payload)); err != nil {
		return fmt.Errorf("openapi: invalid payload: %w", err)
	}
	return nil
}

// Payload converts stored values to the JSON shape described by the
// payload schema.
func Payload(values map[string]schema.Value) map[string]any {
	out := make(map[string]any, len(values))
	for name, value := range values {
		out[name] = jsonValue(value)
	}
	return out
}

func jsonValue(v schema.Value) any {
	if !v.IsSet() {
		return v.String()
	}
	items := v.Items()
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	return out
}

// normalize rewrites typed slices and maps to the []any and map[string]any
// shapes VisitJSON walks.
func normalize(payload map[string]any) map[string]any {
	out := make(map[string]any, len(payload))
	for key, raw := range payload {
		out[key] = normalizeValue(raw)
	}
	return out
}

func normalizeValue(raw any) any {
	switch v := raw.(type) {
	case []string:
		out := make([]any, 0, len(v))
		for _, item := range v {
			out = append(out, item)
		}
		return out
	case []any:
		out := make([]any, 0, len(v))
		for _, item := range v {
			out = append(out, normalizeValue(item))
		}
		return out
	case map[string]any:
		return normalize(v)
	case schema.Value:
		return jsonValue(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return raw
	}
}
