package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-settings/pkg/openapi"
	"github.com/goliatone/go-settings/pkg/registry"
	"github.com/goliatone/go-settings/pkg/render"
	"github.com/goliatone/go-settings/pkg/renderers/html"
	"github.com/goliatone/go-settings/pkg/renderers/html/components"
	"github.com/goliatone/go-settings/pkg/schema"
	"github.com/goliatone/go-settings/pkg/store"
	"github.com/goliatone/go-settings/pkg/submission"
	"github.com/goliatone/go-settings/pkg/validation"
)

// DefaultSlug is the page slug and option group used when none is given.
const DefaultSlug = "plugin_settings"

const defaultRendererName = html.Name

// Orchestrator coordinates schema building, host registration, rendering and
// submission for one settings page. It applies the defaults of the original
// page (slug, namespace, HTML renderer, memory store) while remaining open to
// dependency injection.
type Orchestrator struct {
	page            registry.Page
	extensions      []schema.Extension
	catalogue       *validation.Catalogue
	store           store.Store
	registry        *render.Registry
	defaultRenderer string
	htmlOptions     []html.Option
	html            *html.Renderer
	themeSelector   theme.ThemeSelector
	themeName       string
	themeVariant    string
	translator      render.Translator
	locale          string
	logger          *slog.Logger
	initialiseErr   error
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		page: registry.Page{
			Slug:      DefaultSlug,
			Title:     html.DefaultTitle,
			Namespace: schema.DefaultNamespace,
		},
		catalogue:       validation.DefaultCatalogue(),
		defaultRenderer: defaultRendererName,
		logger:          discardLogger(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// WithTranslator sets the translator and locale used when a request does not
// carry its own.
func WithTranslator(translator render.Translator, locale string) Option {
	return func(o *Orchestrator) {
		o.translator = translator
		o.locale = locale
	}
}

func (o *Orchestrator) applyDefaults() {
	if o.store == nil {
		o.store = store.NewMemory()
	}
	if o.page.Slug == "" {
		o.page.Slug = DefaultSlug
	}

	htmlOptions := append([]html.Option{html.WithTranslator(o.translator)}, o.htmlOptions...)
	if o.themeSelector != nil {
		cfg, err := html.SelectTheme(o.themeSelector, o.themeName, o.themeVariant, nil)
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: %w", err)
			return
		}
		htmlOptions = append(htmlOptions, html.WithTheme(cfg))
	}

	renderer, err := html.New(htmlOptions...)
	if err != nil {
		o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
		return
	}
	o.html = renderer

	if o.registry == nil {
		o.registry = render.NewRegistry()
		o.registry.MustRegister(renderer)
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
}

// Page returns the options page configuration.
func (o *Orchestrator) Page() registry.Page {
	return o.page
}

// Store returns the option store submissions are written to.
func (o *Orchestrator) Store() store.Store {
	return o.store
}

// Renderers returns the renderer registry.
func (o *Orchestrator) Renderers() *render.Registry {
	return o.registry
}

// Schema builds the schema: the default section followed by every
// extension.
func (o *Orchestrator) Schema() (schema.Schema, error) {
	s, err := schema.Build(o.extensions...)
	if err != nil {
		return schema.Schema{}, fmt.Errorf("orchestrator: build schema: %w", err)
	}
	return s, nil
}

// Plan builds the schema and computes its registrations.
func (o *Orchestrator) Plan() (schema.Schema, registry.Registrations, error) {
	if err := o.initialiseErr; err != nil {
		return schema.Schema{}, registry.Registrations{}, err
	}
	s, err := o.Schema()
	if err != nil {
		return schema.Schema{}, registry.Registrations{}, err
	}
	plan, err := registry.Plan(o.page, s, o.catalogue)
	if err != nil {
		return schema.Schema{}, registry.Registrations{}, fmt.Errorf("orchestrator: %w", err)
	}
	return s, plan, nil
}

// Install registers the page, its sections, options and field rows with
// host. The registered page callback renders through RenderPage.
func (o *Orchestrator) Install(ctx context.Context, host registry.Host) (registry.Registrations, error) {
	if err := ctx.Err(); err != nil {
		return registry.Registrations{}, err
	}
	_, plan, err := o.Plan()
	if err != nil {
		return registry.Registrations{}, err
	}

	callbacks := registry.Callbacks{
		Page: func(ctx context.Context, opts render.RenderOptions) ([]byte, error) {
			return o.RenderPage(ctx, Request{RenderOptions: opts})
		},
		Section: func(section schema.Section) registry.RenderFunc {
			return func(context.Context) (string, error) {
				return o.html.SectionIntro(section, o.renderOptions(render.RenderOptions{})), nil
			}
		},
		Field: func(ctx context.Context, args registry.FieldArgs, stored schema.Value, found bool) (string, error) {
			if err := ctx.Err(); err != nil {
				return "", err
			}
			return o.html.RenderOption(args.Field, args.Option, stored, found, o.renderOptions(render.RenderOptions{}))
		},
		LabelFor: html.LabelFor,
	}
	if err := registry.Install(host, plan, callbacks); err != nil {
		return registry.Registrations{}, fmt.Errorf("orchestrator: install: %w", err)
	}

	o.logger.Info("settings installed",
		slog.String("page", plan.Page.Slug),
		slog.Int("sections", len(plan.Sections)),
		slog.Int("fields", len(plan.Fields)),
	)
	return plan, nil
}

// Values reads the stored value of every registered option. Options that
// were never stored are absent from the map.
func (o *Orchestrator) Values(ctx context.Context) (map[string]schema.Value, error) {
	_, plan, err := o.Plan()
	if err != nil {
		return nil, err
	}
	return o.values(ctx, plan)
}

func (o *Orchestrator) values(ctx context.Context, plan registry.Registrations) (map[string]schema.Value, error) {
	out := make(map[string]schema.Value, len(plan.Fields))
	for _, name := range plan.Options() {
		value, found, err := o.store.Get(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: load option %q: %w", name, err)
		}
		if found {
			out[name] = value
		}
	}
	return out, nil
}

// Request describes one page render.
type Request struct {
	// Renderer names the renderer to use. If empty, the orchestrator falls
	// back to the configured default renderer.
	Renderer string

	// Values replaces the stored options when non-nil.
	Values map[string]schema.Value

	RenderOptions render.RenderOptions
}

// RenderPage draws the settings page with the stored options.
func (o *Orchestrator) RenderPage(ctx context.Context, req Request) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s, plan, err := o.Plan()
	if err != nil {
		return nil, err
	}
	values := req.Values
	if values == nil {
		if values, err = o.values(ctx, plan); err != nil {
			return nil, err
		}
	}

	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return nil, err
	}

	page := render.Page{
		Slug:      plan.Page.Slug,
		Title:     plan.Page.Title,
		Namespace: plan.Page.Namespace,
		Schema:    s,
		Values:    values,
	}
	output, err := renderer.Render(ctx, page, o.renderOptions(req.RenderOptions))
	if err != nil {
		o.logger.Error("settings render failed",
			slog.String("page", plan.Page.Slug),
			slog.String("renderer", renderer.Name()),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

// RenderField draws a single field by id with its stored value.
func (o *Orchestrator) RenderField(ctx context.Context, id string) (string, error) {
	s, plan, err := o.Plan()
	if err != nil {
		return "", err
	}
	field, _, ok := s.Field(id)
	if !ok {
		return "", fmt.Errorf("orchestrator: unknown field %q", id)
	}
	name := schema.OptionName(plan.Page.Namespace, field.ID)
	stored, found, err := o.store.Get(ctx, name)
	if err != nil {
		return "", fmt.Errorf("orchestrator: load option %q: %w", name, err)
	}
	return o.html.RenderOption(field, name, stored, found, o.renderOptions(render.RenderOptions{}))
}

func (o *Orchestrator) renderOptions(opts render.RenderOptions) render.RenderOptions {
	if opts.Translator == nil {
		opts.Translator = o.translator
	}
	if opts.Locale == "" {
		opts.Locale = o.locale
	}
	return opts
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}

	if target != "" {
		renderer, err := o.registry.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
		}
	}

	names := o.registry.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}

	renderer, err := o.registry.Get(names[0])
	if err != nil {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", names[0], err)
	}
	return renderer, nil
}

// Submit parses a posted form, validates it and persists it. Validation
// failures are reported in the result, not as an error.
func (o *Orchestrator) Submit(ctx context.Context, form url.Values) (submission.Result, error) {
	_, plan, err := o.Plan()
	if err != nil {
		return submission.Result{}, err
	}
	return o.apply(ctx, plan, submission.Parse(plan, form))
}

// SubmitJSON is Submit for a JSON object of option names.
func (o *Orchestrator) SubmitJSON(ctx context.Context, r io.Reader) (submission.Result, error) {
	_, plan, err := o.Plan()
	if err != nil {
		return submission.Result{}, err
	}
	values, err := submission.ParseJSON(plan, r)
	if err != nil {
		return submission.Result{}, fmt.Errorf("orchestrator: %w", err)
	}
	return o.apply(ctx, plan, values)
}

func (o *Orchestrator) apply(ctx context.Context, plan registry.Registrations, values submission.Values) (submission.Result, error) {
	result, err := submission.Apply(ctx, o.store, plan, values)
	if err != nil {
		o.logger.Error("settings save failed", slog.String("page", plan.Page.Slug), slog.Any("error", err))
		return submission.Result{}, fmt.Errorf("orchestrator: %w", err)
	}
	if len(result.Errors) > 0 {
		o.logger.Warn("settings rejected",
			slog.String("page", plan.Page.Slug),
			slog.Int("errors", len(result.Errors)),
		)
		return result, nil
	}
	o.logger.Info("settings saved",
		slog.String("page", plan.Page.Slug),
		slog.Int("options", len(result.Saved)),
	)
	return result, nil
}

// Notices turns a submission result into the admin notices shown on the
// next render.
func (o *Orchestrator) Notices(result submission.Result) []render.Notice {
	if len(result.Errors) == 0 {
		return []render.Notice{render.Updated(render.Translate(o.renderOptions(render.RenderOptions{}), "Settings saved."))}
	}
	s, err := o.Schema()
	if err != nil {
		return nil
	}
	return render.FieldNotices(s, o.page.Namespace, result.Errors.Messages())
}

// ActionLinks appends the settings page link to a plugin's action links.
func (o *Orchestrator) ActionLinks(links []string) []string {
	label := render.Translate(o.renderOptions(render.RenderOptions{}), "Settings")
	return append(links, render.SettingsLink(o.page.Slug, label))
}

// Assets lists the stylesheets and scripts the page needs.
func (o *Orchestrator) Assets() ([]components.Stylesheet, []components.Script, error) {
	s, err := o.Schema()
	if err != nil {
		return nil, nil, err
	}
	if o.html == nil {
		return nil, nil, o.initialiseErr
	}
	styles, scripts := o.html.Assets(s)
	return styles, scripts, nil
}

// OpenAPI describes the settings payload.
func (o *Orchestrator) OpenAPI(opts openapi.Options) (*openapi.Document, error) {
	_, plan, err := o.Plan()
	if err != nil {
		return nil, err
	}
	doc, err := openapi.Build(plan, opts)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	return doc, nil
}
