package prompt

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-settings/pkg/render"
	"github.com/goliatone/go-settings/pkg/schema"
	"github.com/goliatone/go-settings/pkg/validation"
)

// Name is the registry name of the prompt renderer.
const Name = "prompt"

// Renderer implements render.Renderer for terminal sessions. It asks for
// every field of the page and returns the answers as the form post the HTML
// page would have produced.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
	catalogue    *validation.Catalogue
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a prompt renderer with defaults (survey driver, form
// output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatForm,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	switch r.outputFormat {
	case OutputFormatForm, OutputFormatJSON:
	default:
		return nil, fmt.Errorf("prompt: unsupported output format %q", r.outputFormat)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return Name
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	if r.outputFormat == OutputFormatJSON {
		return "application/json"
	}
	return "application/x-www-form-urlencoded"
}

// Render prompts for each field in schema order. Hidden fields from opts
// are copied into the output unchanged.
func (r *Renderer) Render(ctx context.Context, page render.Page, opts render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, ErrNoDriver
	}

	answers := newAnswers()
	for _, hidden := range opts.Hidden {
		answers.set(hidden.Name, hidden.Value)
	}

	localized := render.LocalizeSchema(render.ApplySubset(page.Schema, opts.Subset), opts)
	for _, section := range localized.Sections {
		if section.Title != "" {
			if err := r.driver.Info(ctx, "== "+section.Title+" =="); err != nil {
				return nil, err
			}
		}
		for _, field := range section.Fields {
			stored, found := page.Stored(field)
			current := render.Current(field, stored, found)
			if field.Type == schema.TypeCheckbox && !found {
				current = schema.Value{}
			}
			if err := r.promptField(ctx, field, page.OptionName(field), current, answers); err != nil {
				return nil, err
			}
		}
	}

	return r.serialize(answers)
}

func (r *Renderer) promptField(ctx context.Context, field schema.Field, name string, current schema.Value, answers *answers) error {
	label := field.Label
	if label == "" {
		label = field.ID
	}
	help := plainText(field.Description)

	switch field.Type {
	case schema.TypeCheckbox:
		on, err := r.driver.Confirm(ctx, ConfirmConfig{Message: label, Help: help, Default: current.String() == schema.CheckboxOn})
		if err != nil {
			return err
		}
		if on {
			answers.set(name, schema.CheckboxOn)
		}
		return nil

	case schema.TypeCheckboxMulti, schema.TypeSelectMulti:
		var defaults []int
		for i, option := range field.Options {
			if current.Has(option.Key) {
				defaults = append(defaults, i)
			}
		}
		picked, err := r.driver.MultiSelect(ctx, SelectConfig{Message: label, Help: help, Options: optionLabels(field), Defaults: defaults})
		if err != nil {
			return err
		}
		for _, idx := range picked {
			if idx >= 0 && idx < len(field.Options) {
				answers.add(name+"[]", field.Options[idx].Key)
			}
		}
		return nil

	case schema.TypeRadio, schema.TypeSelect:
		if len(field.Options) == 0 {
			return nil
		}
		defaultIdx := slices.Index(field.Options.Keys(), current.String())
		idx, err := r.driver.Select(ctx, SelectConfig{Message: label, Help: help, Options: optionLabels(field), DefaultIndex: defaultIdx})
		if err != nil {
			return err
		}
		if idx >= 0 && idx < len(field.Options) {
			answers.set(name, field.Options[idx].Key)
		}
		return nil
	}

	check, err := r.check(field)
	if err != nil {
		return err
	}

	for {
		var response string
		switch field.Type {
		case schema.TypeTextarea:
			response, err = r.driver.TextArea(ctx, TextAreaConfig{Message: label, Help: help, Default: current.String()})
		case schema.TypePassword:
			response, err = r.driver.Password(ctx, InputConfig{Message: label, Help: help})
			if err == nil && response == "" {
				response = current.String()
			}
		case schema.TypeTextSecret:
			// An empty answer keeps the stored secret.
			response, err = r.driver.Password(ctx, InputConfig{Message: label, Help: help})
		default:
			response, err = r.driver.Input(ctx, InputConfig{Message: label, Help: help, Default: current.String()})
		}
		if err != nil {
			return err
		}

		if check != nil && response != "" {
			if _, verr := check(schema.Scalar(response)); verr != nil {
				if err := r.driver.Info(ctx, fmt.Sprintf("Invalid %s: %v", label, verr)); err != nil {
					return err
				}
				continue
			}
		}
		answers.set(name, response)
		return nil
	}
}

// check returns the validator answers are tried against before they are
// accepted. Number and color fields always get their type check.
func (r *Renderer) check(field schema.Field) (validation.Func, error) {
	var typed validation.Func
	switch field.Type {
	case schema.TypeNumber:
		typed = validation.Number
	case schema.TypeColor:
		typed = validation.Color
	}

	var custom validation.Func
	if field.Validate != nil {
		custom = field.Validate
	} else if r.catalogue != nil {
		fn, err := r.catalogue.Resolve(field)
		if err != nil {
			return nil, fmt.Errorf("prompt: %w", err)
		}
		custom = fn
	}

	if typed == nil {
		return custom, nil
	}
	return validation.Chain(typed, custom), nil
}

func (r *Renderer) serialize(a *answers) ([]byte, error) {
	if r.outputFormat == OutputFormatJSON {
		payload := make(map[string]any, len(a.order))
		for _, key := range a.order {
			values := a.values[key]
			if strings.HasSuffix(key, "[]") {
				payload[strings.TrimSuffix(key, "[]")] = values
				continue
			}
			payload[key] = values[0]
		}
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("prompt: encode answers: %w", err)
		}
		return data, nil
	}
	return []byte(a.values.Encode()), nil
}

var (
	strictOnce   sync.Once
	strictPolicy *bluemonday.Policy
)

// plainText strips markup from a description so it can be shown as help.
func plainText(raw string) string {
	strictOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(strictPolicy.Sanitize(raw))
}

func optionLabels(field schema.Field) []string {
	labels := make([]string, 0, len(field.Options))
	for _, option := range field.Options {
		label := option.Label
		if label == "" {
			label = option.Key
		}
		labels = append(labels, label)
	}
	return labels
}

// answers is a url.Values that remembers first insertion order.
type answers struct {
	values url.Values
	order  []string
}

func newAnswers() *answers {
	return &answers{values: url.Values{}}
}

func (a *answers) set(key, value string) {
	if key == "" {
		return
	}
	if _, ok := a.values[key]; !ok {
		a.order = append(a.order, key)
	}
	a.values.Set(key, value)
}

func (a *answers) add(key, value string) {
	if _, ok := a.values[key]; !ok {
		a.order = append(a.order, key)
	}
	a.values.Add(key, value)
}
