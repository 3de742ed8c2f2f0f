package registry

import (
	"context"

	"github.com/goliatone/go-settings/pkg/render"
	"github.com/goliatone/go-settings/pkg/schema"
	"github.com/goliatone/go-settings/pkg/validation"
)

// PageFunc draws the whole options page. The host supplies hidden fields,
// notices and the sections it rendered from its own tables in opts.
type PageFunc func(ctx context.Context, opts render.RenderOptions) ([]byte, error)

// RenderFunc draws a section intro.
type RenderFunc func(ctx context.Context) (string, error)

// FieldArgs are the static arguments a field row is registered with.
type FieldArgs struct {
	// Option is the stored option name the control posts under.
	Option string
	// LabelFor is the control id the row label points at, if any.
	LabelFor string
	Field    schema.Field
}

// FieldFunc draws a field row. The host passes the stored value it holds
// for args.Option.
type FieldFunc func(ctx context.Context, args FieldArgs, stored schema.Value, found bool) (string, error)

// Host is the settings subsystem the plugin registers into.
type Host interface {
	RegisterOptionsPage(page Page, render PageFunc) error
	RegisterSettingsSection(id, title string, render RenderFunc, pageID string) error
	RegisterSettingsField(id, label string, render FieldFunc, pageID, sectionID string, args FieldArgs) error
	RegisterOption(group, name string, validator validation.Func) error
}

// Callbacks supply the render functions Install registers.
type Callbacks struct {
	Page    PageFunc
	Section func(section schema.Section) RenderFunc
	Field   FieldFunc
	// LabelFor picks the row label target for a field. Defaults to the
	// field id.
	LabelFor func(field schema.Field) string
}
