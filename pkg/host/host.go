package host

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/goliatone/go-settings/pkg/registry"
	"github.com/goliatone/go-settings/pkg/render"
	"github.com/goliatone/go-settings/pkg/schema"
	"github.com/goliatone/go-settings/pkg/store"
	"github.com/goliatone/go-settings/pkg/submission"
	"github.com/goliatone/go-settings/pkg/validation"
)

// LinksFilter rewrites a plugin's action links.
type LinksFilter func(links []string) []string

// Host implements registry.Host on top of an option store, and renders and
// saves the registered pages generically from its tables.
type Host struct {
	*registry.Registry

	opts   Options
	store  store.Store
	nonces *Nonces
	queue  *Queue

	mu      sync.RWMutex
	filters map[string][]LinksFilter
	plugins []string
}

var _ registry.Host = (*Host)(nil)

// New constructs a host with default options plus any overrides.
func New(fns ...OptionFn) *Host {
	return NewWithOptions(NewOptions(fns...))
}

// NewWithOptions constructs a host from a pre-built Options value.
func NewWithOptions(opts Options) *Host {
	opts = NewOptions(func(o *Options) { *o = opts })
	return &Host{
		Registry: registry.New(),
		opts:     opts,
		store:    opts.Store,
		nonces:   NewNonces(opts.Secret, opts.NonceLifetime),
		queue:    NewQueue(),
		filters:  make(map[string][]LinksFilter),
	}
}

// Config returns a copy of the host configuration.
func (h *Host) Config() Options {
	return NewOptions(func(o *Options) { *o = h.opts })
}

// Store returns the option store.
func (h *Host) Store() store.Store { return h.store }

// Nonces returns the nonce issuer.
func (h *Host) Nonces() *Nonces { return h.nonces }

// Queue returns the asset queue.
func (h *Host) Queue() *Queue { return h.queue }

// EnqueueStyle queues a stylesheet for every admin page.
func (h *Host) EnqueueStyle(handle, src string, deps ...string) {
	h.queue.EnqueueStyle(handle, src, deps...)
}

// EnqueueScript queues a script for every admin page.
func (h *Host) EnqueueScript(handle, src string, deps ...string) {
	h.queue.EnqueueScript(handle, src, deps...)
}

// AddActionLinks registers a filter for plugin's action links.
func (h *Host) AddActionLinks(plugin string, filter LinksFilter) {
	if filter == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.filters[plugin]; !ok {
		h.plugins = append(h.plugins, plugin)
	}
	h.filters[plugin] = append(h.filters[plugin], filter)
}

// ActionLinks runs every filter registered for plugin over links.
func (h *Host) ActionLinks(plugin string, links []string) []string {
	h.mu.RLock()
	filters := append([]LinksFilter(nil), h.filters[plugin]...)
	h.mu.RUnlock()

	out := append([]string(nil), links...)
	for _, filter := range filters {
		out = filter(out)
	}
	return out
}

// Plugins lists plugins with registered action link filters.
func (h *Host) Plugins() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]string(nil), h.plugins...)
}

// Plan rebuilds the registrations of a page from the host tables.
func (h *Host) Plan(slug string) (registry.Registrations, error) {
	entry, ok := h.Page(slug)
	if !ok {
		return registry.Registrations{}, fmt.Errorf("%w: %q", ErrUnknownPage, slug)
	}
	plan := registry.Registrations{Page: entry.Page}
	for _, section := range h.Sections(slug) {
		rebuilt := schema.Section{Key: section.ID, Title: section.Title}
		for _, field := range h.Fields(slug, section.ID) {
			rebuilt.Fields = append(rebuilt.Fields, field.Args.Field)

			var validator validation.Func
			if option, ok := h.Option(field.Args.Option); ok {
				validator = option.Validator
			}
			plan.Fields = append(plan.Fields, registry.Registration{
				Section:   section.ID,
				Field:     field.Args.Field,
				Option:    field.Args.Option,
				Validator: validator,
			})
		}
		plan.Sections = append(plan.Sections, rebuilt)
	}
	return plan, nil
}

// RenderSections renders every registered section of a page, reading each field
// row's stored option.
func (h *Host) RenderSections(ctx context.Context, slug string, opts render.RenderOptions) ([]render.Section, error) {
	var out []render.Section
	for _, section := range h.Sections(slug) {
		rendered := render.Section{ID: section.ID, Title: render.Translate(opts, section.Title)}
		if section.Render != nil {
			intro, err := section.Render(ctx)
			if err != nil {
				return nil, fmt.Errorf("host: section %q: %w", section.ID, err)
			}
			rendered.Intro = intro
		}
		for _, field := range h.Fields(slug, section.ID) {
			row := render.Row{ID: field.ID, Label: render.Translate(opts, field.Label), LabelFor: field.Args.LabelFor}
			if field.Render != nil {
				stored, found, err := h.store.Get(ctx, field.Args.Option)
				if err != nil {
					return nil, fmt.Errorf("host: load option %q: %w", field.Args.Option, err)
				}
				if row.HTML, err = field.Render(ctx, field.Args, stored, found); err != nil {
					return nil, fmt.Errorf("host: field %q: %w", field.ID, err)
				}
			}
			rendered.Rows = append(rendered.Rows, row)
		}
		out = append(out, rendered)
	}
	return out, nil
}

// RenderPage draws a registered page with the settings form hidden fields,
// a fresh nonce and the host-rendered sections.
func (h *Host) RenderPage(ctx context.Context, slug, referer string, notices []render.Notice) ([]byte, error) {
	entry, ok := h.Page(slug)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPage, slug)
	}
	if entry.Render == nil {
		return nil, fmt.Errorf("host: page %q has no render callback", slug)
	}
	opts := render.RenderOptions{
		Locale:     h.opts.Locale,
		Translator: h.opts.Translator,
		Notices:    notices,
		Hidden:     render.SettingsFields(slug, h.nonces.Create(NonceAction(slug)), referer),
	}
	sections, err := h.RenderSections(ctx, slug, opts)
	if err != nil {
		return nil, err
	}
	if sections == nil {
		sections = []render.Section{}
	}
	opts.Sections = sections
	return entry.Render(ctx, opts)
}

// Save verifies the form nonce and applies the posted options of the
// form's option group.
func (h *Host) Save(ctx context.Context, form url.Values) (registry.Registrations, submission.Result, error) {
	group := form.Get(render.FieldOptionPage)
	if err := h.nonces.Verify(NonceAction(group), form.Get(render.FieldNonce)); err != nil {
		return registry.Registrations{}, submission.Result{}, err
	}
	plan, err := h.Plan(group)
	if err != nil {
		return registry.Registrations{}, submission.Result{}, err
	}
	result, err := submission.ApplyForm(ctx, h.store, plan, form)
	if err != nil {
		return plan, submission.Result{}, fmt.Errorf("host: %w", err)
	}
	return plan, result, nil
}
