// Package submission turns a posted settings form into stored option values.
// Parse maps form keys to typed values, Validate runs the type checks and the
// registered validators, and Apply persists the result.
package submission

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-settings/pkg/registry"
	"github.com/goliatone/go-settings/pkg/schema"
	"github.com/goliatone/go-settings/pkg/store"
	"github.com/goliatone/go-settings/pkg/validation"
)

// Values are parsed submissions keyed by option name. Options missing from
// the map were not submitted and keep what is stored.
type Values map[string]schema.Value

// Parse reads form for every registered field. Checkboxes and multi-value
// fields are always present since browsers omit unchecked controls. Unknown
// option keys are dropped. An empty text_secret keeps the stored secret.
func Parse(plan registry.Registrations, form url.Values) Values {
	out := make(Values, len(plan.Fields))
	for _, reg := range plan.Fields {
		field := reg.Field
		switch {
		case field.Type == schema.TypeCheckbox:
			if form.Get(reg.Option) == schema.CheckboxOn {
				out[reg.Option] = schema.Scalar(schema.CheckboxOn)
			} else {
				out[reg.Option] = schema.Scalar("")
			}

		case field.Type.Multi():
			raw := form[reg.Option+"[]"]
			if raw == nil {
				raw = form[reg.Option]
			}
			out[reg.Option] = schema.Set(raw...).Filter(field.HasOption)

		default:
			raw, ok := form[reg.Option]
			if !ok || len(raw) == 0 {
				continue
			}
			value := raw[0]
			if field.Type == schema.TypeTextSecret && value == "" {
				continue
			}
			if field.Type.Choice() && !field.HasOption(value) {
				value = ""
			}
			out[reg.Option] = schema.Scalar(value)
		}
	}
	return out
}

// ParseJSON decodes an object of option names to strings or string lists
// and parses it with the same rules as Parse.
func ParseJSON(plan registry.Registrations, r io.Reader) (Values, error) {
	var payload map[string]any
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("submission: decode json: %w", err)
	}
	form := url.Values{}
	for key, raw := range payload {
		switch v := raw.(type) {
		case string:
			form.Set(key, v)
		case bool:
			if v {
				form.Set(key, schema.CheckboxOn)
			}
		case float64:
			form.Set(key, fmt.Sprint(v))
		case []any:
			list := make([]string, 0, len(v))
			for _, item := range v {
				list = append(list, fmt.Sprint(item))
			}
			form[key+"[]"] = list
		case nil:
		default:
			return nil, fmt.Errorf("submission: option %q: unsupported value %T", key, raw)
		}
	}
	return Parse(plan, form), nil
}

// Validate runs the built-in type check and then the registered validator
// of every submitted field. The returned values hold validator output.
func Validate(plan registry.Registrations, values Values) (Values, Errors) {
	out := make(Values, len(values))
	var errs Errors
	for _, reg := range plan.Fields {
		value, ok := values[reg.Option]
		if !ok {
			continue
		}
		check := validation.Chain(typeCheck(reg.Field.Type), reg.Validator)
		normalized, err := check(value)
		if err != nil {
			errs = append(errs, ValidationError{Field: reg.Field.ID, Option: reg.Option, Message: err.Error()})
			continue
		}
		out[reg.Option] = normalizeShape(reg.Field, normalized)
	}
	return out, errs
}

func typeCheck(kind schema.FieldType) validation.Func {
	switch kind {
	case schema.TypeNumber:
		return validation.Number
	case schema.TypeColor:
		return validation.Color
	default:
		return nil
	}
}

// normalizeShape keeps multi fields as sets of known keys whatever a custom
// validator returned.
func normalizeShape(field schema.Field, v schema.Value) schema.Value {
	if !field.Type.Multi() {
		return v
	}
	if !v.IsSet() {
		v = schema.Set(v.Items()...)
	}
	return v.Filter(field.HasOption)
}

// Result reports what Apply persisted.
type Result struct {
	Saved  Values
	Errors Errors
}

// Apply validates values and, when every field passes, writes them to st.
// A submission with any invalid field persists nothing; its Errors are
// returned in the Result with a nil error.
func Apply(ctx context.Context, st store.Store, plan registry.Registrations, values Values) (Result, error) {
	if st == nil {
		return Result{}, errors.New("submission: store is nil")
	}
	validated, errs := Validate(plan, values)
	if len(errs) > 0 {
		return Result{Errors: errs}, nil
	}
	for _, reg := range plan.Fields {
		value, ok := validated[reg.Option]
		if !ok {
			continue
		}
		if err := st.Set(ctx, reg.Option, value); err != nil {
			return Result{}, fmt.Errorf("submission: save %q: %w", reg.Option, err)
		}
	}
	return Result{Saved: validated}, nil
}

// ApplyForm parses form and applies it.
func ApplyForm(ctx context.Context, st store.Store, plan registry.Registrations, form url.Values) (Result, error) {
	return Apply(ctx, st, plan, Parse(plan, form))
}

// OptionKeys lists the form keys a registered field posts under.
func OptionKeys(plan registry.Registrations) []string {
	keys := make([]string, 0, len(plan.Fields))
	for _, reg := range plan.Fields {
		key := reg.Option
		if reg.Field.Type.Multi() {
			key += "[]"
		}
		keys = append(keys, key)
	}
	return keys
}
