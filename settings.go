// Package settings builds admin settings pages from a declarative schema.
// The root package re-exports the pieces a plugin needs: the schema types,
// the orchestrator and the default slug validator.
package settings

import (
	"context"

	"github.com/goliatone/go-settings/pkg/orchestrator"
	"github.com/goliatone/go-settings/pkg/render"
	"github.com/goliatone/go-settings/pkg/schema"
	"github.com/goliatone/go-settings/pkg/validation"
)

// Schema and the types below alias the schema package for callers that only
// import the root module.
type (
	Schema    = schema.Schema
	Section   = schema.Section
	Field     = schema.Field
	Option    = schema.Option
	Value     = schema.Value
	Extension = schema.Extension
)

// RenderOptions describes per-request overrides: notices, hidden fields and
// the locale.
type RenderOptions = render.RenderOptions

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// DefaultSchema returns the built-in settings schema.
func DefaultSchema() Schema {
	return schema.Default()
}

// RenderPage builds the schema from the given options and renders the page
// with the stored options.
func RenderPage(ctx context.Context, options ...orchestrator.Option) ([]byte, error) {
	return orchestrator.New(options...).RenderPage(ctx, orchestrator.Request{})
}

// ValidateField normalises a submitted value into a slug.
func ValidateField(v Value) (Value, error) {
	return validation.Slug(v)
}

// WithExtensions forwards schema extensions to the orchestrator.
func WithExtensions(exts ...Extension) orchestrator.Option {
	return orchestrator.WithExtensions(exts...)
}
