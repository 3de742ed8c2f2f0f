package openapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-settings/pkg/registry"
	"github.com/goliatone/go-settings/pkg/schema"
)

// Version is the OpenAPI version emitted by Build.
const Version = "3.0.3"

// Extension keys carried on every property.
const (
	ExtensionFieldType = "x-settings-type"
	ExtensionSection   = "x-settings-section"
)

// Patterns applied to string encoded number and color options. Both accept
// the empty string, which clears the option.
const (
	NumberPattern = `^(|[-+]?([0-9]+(\.[0-9]*)?|\.[0-9]+)([eE][-+]?[0-9]+)?)$`
	ColorPattern  = `^(|#([0-9a-fA-F]{3}|[0-9a-fA-F]{6}))$`
)

// Options configure Build.
type Options struct {
	// Path is the endpoint the payload is read from and posted to.
	Path    string
	Title   string
	Version string
}

// Document is a built OpenAPI description of one settings page.
type Document struct {
	spec    *openapi3.T
	payload *openapi3.Schema
}

// Build describes plan as an OpenAPI document with a GET and a POST on
// opts.Path, both carrying the payload schema.
func Build(plan registry.Registrations, opts Options) (*Document, error) {
	if strings.TrimSpace(plan.Page.Slug) == "" {
		return nil, errors.New("openapi: plan has no page")
	}
	path := opts.Path
	if path == "" {
		path = "/settings.json"
	}
	title := opts.Title
	if title == "" {
		title = plan.Page.Title
	}
	if title == "" {
		title = plan.Page.Slug
	}
	version := opts.Version
	if version == "" {
		version = "1.0.0"
	}

	payload := PayloadSchema(plan)

	get := &openapi3.Operation{
		OperationID: plan.Page.Slug + "_get",
		Summary:     "Read stored settings",
	}
	get.Responses = openapi3.NewResponses(
		openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription("Stored settings").WithJSONSchema(payload),
		}),
	)

	post := &openapi3.Operation{
		OperationID: plan.Page.Slug + "_update",
		Summary:     "Update settings",
	}
	post.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(payload),
	}
	post.Responses = openapi3.NewResponses(
		openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription("Saved settings").WithJSONSchema(payload),
		}),
		openapi3.WithStatus(http.StatusUnprocessableEntity, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription("Validation failed"),
		}),
	)

	spec := &openapi3.T{
		OpenAPI: Version,
		Info: &openapi3.Info{
			Title:   title,
			Version: version,
		},
		Paths: openapi3.NewPaths(openapi3.WithPath(path, &openapi3.PathItem{
			Get:  get,
			Post: post,
		})),
	}
	return &Document{spec: spec, payload: payload}, nil
}

// Validate runs kin-openapi's document validation.
func (d *Document) Validate(ctx context.Context) error {
	if err := d.spec.Validate(ctx); err != nil {
		return fmt.Errorf("openapi: validate document: %w", err)
	}
	return nil
}

// MarshalJSON encodes the document.
func (d *Document) MarshalJSON() ([]byte, error) {
	return d.spec.MarshalJSON()
}

// PayloadSchema returns the object schema of a settings payload: one
// property per option name, strings for scalars and arrays of option keys
// for multi-value fields.
func PayloadSchema(plan registry.Registrations) *openapi3.Schema {
	payload := openapi3.NewObjectSchema()
	payload.Title = plan.Page.Title
	payload.AdditionalProperties = openapi3.AdditionalProperties{Has: boolPtr(false)}
	for _, reg := range plan.Fields {
		property := FieldSchema(reg.Field)
		property.Extensions = map[string]any{
			ExtensionFieldType: string(reg.Field.Type),
			ExtensionSection:   reg.Section,
		}
		payload.WithProperty(reg.Option, property)
	}
	return payload
}

// FieldSchema returns the schema of one field's stored value.
func FieldSchema(field schema.Field) *openapi3.Schema {
	var s *openapi3.Schema
	switch field.Type {
	case schema.TypeCheckboxMulti, schema.TypeSelectMulti:
		items := openapi3.NewStringSchema().WithEnum(enumValues(field.Options.Keys())...)
		s = openapi3.NewArraySchema().WithItems(items).WithUniqueItems(true)
	case schema.TypeRadio, schema.TypeSelect:
		s = openapi3.NewStringSchema().WithEnum(enumValues(append([]string{""}, field.Options.Keys()...))...)
	case schema.TypeCheckbox:
		s = openapi3.NewStringSchema().WithEnum("", schema.CheckboxOn)
	case schema.TypeNumber:
		s = openapi3.NewStringSchema().WithPattern(NumberPattern)
	case schema.TypeColor:
		s = openapi3.NewStringSchema().WithPattern(ColorPattern)
	default:
		s = openapi3.NewStringSchema()
	}

	s.Title = field.Label
	s.Description = field.Description
	if !field.Default.IsEmpty() || field.Default.IsSet() {
		s.Default = jsonValue(field.Default)
	}
	return s
}

func enumValues(keys []string) []any {
	out := make([]any, 0, len(keys))
	for _, key := range keys {
		out = append(out, key)
	}
	return out
}

func boolPtr(v bool) *bool { return &v }
