package orchestrator

import (
	"io"
	"log/slog"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-settings/pkg/registry"
	"github.com/goliatone/go-settings/pkg/render"
	"github.com/goliatone/go-settings/pkg/renderers/html"
	"github.com/goliatone/go-settings/pkg/schema"
	"github.com/goliatone/go-settings/pkg/store"
	"github.com/goliatone/go-settings/pkg/validation"
)

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithPage sets the options page the settings live on.
func WithPage(page registry.Page) Option {
	return func(o *Orchestrator) {
		o.page = page
	}
}

// WithNamespace overrides the option name prefix.
func WithNamespace(namespace string) Option {
	return func(o *Orchestrator) {
		o.page.Namespace = namespace
	}
}

// WithExtensions registers schema extensions applied after the default
// schema, in order.
func WithExtensions(exts ...schema.Extension) Option {
	return func(o *Orchestrator) {
		o.extensions = append(o.extensions, exts...)
	}
}

// WithCatalogue sets the catalogue field callbacks are resolved against.
func WithCatalogue(catalogue *validation.Catalogue) Option {
	return func(o *Orchestrator) {
		if catalogue != nil {
			o.catalogue = catalogue
		}
	}
}

// WithStore sets the option store.
func WithStore(st store.Store) Option {
	return func(o *Orchestrator) {
		if st != nil {
			o.store = st
		}
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithHTMLOptions configures the HTML renderer created by default. It is
// also used for the field and section callbacks registered with the host.
func WithHTMLOptions(options ...html.Option) Option {
	return func(o *Orchestrator) {
		o.htmlOptions = append(o.htmlOptions, options...)
	}
}

// WithThemeSelector resolves name/variant through selector and applies the
// result to the HTML renderer.
func WithThemeSelector(selector theme.ThemeSelector, name, variant string) Option {
	return func(o *Orchestrator) {
		o.themeSelector = selector
		o.themeName = name
		o.themeVariant = variant
	}
}

// WithLogger sets the structured logger. Events are discarded by default.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
