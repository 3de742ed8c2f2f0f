// Package validation holds the per-field validators run on submitted values
// before they are persisted.
package validation

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/goliatone/go-settings/pkg/schema"
)

// Func normalises or rejects a submitted value.
type Func = schema.ValidateFunc

// Slug lower-cases a scalar, replaces spaces with dashes and query-escapes
// the result. Empty values and sets are returned unchanged.
func Slug(v schema.Value) (schema.Value, error) {
	if v.IsSet() || v.IsEmpty() {
		return v, nil
	}
	slug := strings.ToLower(strings.ReplaceAll(v.String(), " ", "-"))
	return schema.Scalar(url.QueryEscape(slug)), nil
}

// Trim strips surrounding whitespace from scalars and set members.
func Trim(v schema.Value) (schema.Value, error) {
	if v.IsSet() {
		items := v.Items()
		for i := range items {
			items[i] = strings.TrimSpace(items[i])
		}
		return schema.Set(items...), nil
	}
	return schema.Scalar(strings.TrimSpace(v.String())), nil
}

// ErrNotNumber is returned by Number for values that do not parse as floats.
var ErrNotNumber = errors.New("must be a number")

// Number accepts empty values and anything strconv can parse as a float.
func Number(v schema.Value) (schema.Value, error) {
	raw := strings.TrimSpace(v.String())
	if raw == "" {
		return schema.Scalar(""), nil
	}
	if _, err := strconv.ParseFloat(raw, 64); err != nil {
		return v, ErrNotNumber
	}
	return schema.Scalar(raw), nil
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ErrNotColor is returned by Color for values that are not hex colours.
var ErrNotColor = errors.New("must be a hex colour such as #21759B")

// Color accepts empty values and #RGB or #RRGGBB hex codes.
func Color(v schema.Value) (schema.Value, error) {
	raw := strings.TrimSpace(v.String())
	if raw == "" {
		return schema.Scalar(""), nil
	}
	if !hexColor.MatchString(raw) {
		return v, ErrNotColor
	}
	return schema.Scalar(raw), nil
}

// Chain runs validators in order, feeding each the previous output.
func Chain(fns ...Func) Func {
	return func(v schema.Value) (schema.Value, error) {
		var err error
		for _, fn := range fns {
			if fn == nil {
				continue
			}
			if v, err = fn(v); err != nil {
				return v, err
			}
		}
		return v, nil
	}
}

// Catalogue maps callback names used in schema files to validators.
type Catalogue struct {
	mu    sync.RWMutex
	funcs map[string]Func
}

// NewCatalogue returns an empty catalogue.
func NewCatalogue() *Catalogue {
	return &Catalogue{funcs: make(map[string]Func)}
}

// DefaultCatalogue registers slug, trim, number and color.
func DefaultCatalogue() *Catalogue {
	c := NewCatalogue()
	c.MustRegister("slug", Slug)
	c.MustRegister("validate_field", Slug)
	c.MustRegister("trim", Trim)
	c.MustRegister("number", Number)
	c.MustRegister("color", Color)
	return c
}

// Register adds fn under name. Duplicate names return an error.
func (c *Catalogue) Register(name string, fn Func) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("validation: validator name is required")
	}
	if fn == nil {
		return fmt.Errorf("validation: validator %q is nil", name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.funcs[name]; exists {
		return fmt.Errorf("validation: validator %q already registered", name)
	}
	c.funcs[name] = fn
	return nil
}

// MustRegister panics on registration failure.
func (c *Catalogue) MustRegister(name string, fn Func) {
	if err := c.Register(name, fn); err != nil {
		panic(err)
	}
}

// Get returns the validator stored under name.
func (c *Catalogue) Get(name string) (Func, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	fn, ok := c.funcs[name]
	return fn, ok
}

// Names lists registered validators in sorted order.
func (c *Catalogue) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.funcs))
	for name := range c.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve picks the validator for a field: Field.Validate first, then the
// named Callback. A field with neither gets a nil Func. An unknown callback
// name is an error.
func (c *Catalogue) Resolve(field schema.Field) (Func, error) {
	if field.Validate != nil {
		return field.Validate, nil
	}
	name := strings.TrimSpace(field.Callback)
	if name == "" {
		return nil, nil
	}
	if c == nil {
		return nil, fmt.Errorf("validation: field %q uses validator %q but no catalogue is configured", field.ID, name)
	}
	fn, ok := c.Get(name)
	if !ok {
		return nil, fmt.Errorf("validation: field %q uses unknown validator %q", field.ID, name)
	}
	return fn, nil
}
