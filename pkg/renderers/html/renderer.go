package html

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-settings/pkg/render"
	rendertemplate "github.com/goliatone/go-settings/pkg/render/template"
	gotemplate "github.com/goliatone/go-settings/pkg/render/template/gotemplate"
	"github.com/goliatone/go-settings/pkg/renderers/html/components"
	"github.com/goliatone/go-settings/pkg/schema"
)

// Name is the registry name of the HTML renderer.
const Name = "html"

// Defaults used when a page leaves them empty.
const (
	DefaultTitle     = "Plugin Settings"
	DefaultAction    = "options.php"
	DefaultAssetBase = "/assets/"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateDir      string
	templateRenderer rendertemplate.TemplateRenderer
	translator       render.Translator
	components       *components.Registry
	theme            *theme.RendererConfig
	assetBase        string
	mediaURL         func(string) string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk. Templates it
// does not provide still resolve from the template bundle.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		cfg.templateDir = strings.TrimSpace(path)
	}
}

// WithTranslator sets the translator behind the translate template helper.
// It is also used for Go-side strings when a render call carries none.
func WithTranslator(translator render.Translator) Option {
	return func(cfg *config) {
		cfg.translator = translator
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithComponents replaces the per-type component registry.
func WithComponents(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.components = registry
		}
	}
}

// WithTheme applies a resolved theme: partial overrides, CSS variables and
// asset URLs.
func WithTheme(selected *theme.RendererConfig) Option {
	return func(cfg *config) {
		cfg.theme = selected
	}
}

// WithAssetBase sets the URL prefix the embedded assets are served under.
func WithAssetBase(base string) Option {
	return func(cfg *config) {
		if base = strings.TrimSpace(base); base != "" {
			cfg.assetBase = base
		}
	}
}

// WithMediaURL sets the resolver image fields use to turn an attachment id
// into a thumbnail URL.
func WithMediaURL(fn func(id string) string) Option {
	return func(cfg *config) {
		cfg.mediaURL = fn
	}
}

// Renderer draws a settings page as HTML.
type Renderer struct {
	templates  rendertemplate.TemplateRenderer
	components *components.Registry
	theme      *theme.RendererConfig
	translator render.Translator
	assetBase  string
	mediaURL   func(string) string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS: TemplatesFS(),
		components: components.Default(),
		assetBase:  DefaultAssetBase,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithBaseDir(cfg.templateDir),
			gotemplate.WithExtension(".tmpl"),
			gotemplate.WithTemplateFunc(render.TemplateI18nFuncs(cfg.translator, render.TemplateI18nConfig{})),
		)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{
		templates:  renderer,
		components: cfg.components,
		theme:      cfg.theme,
		translator: cfg.translator,
		assetBase:  cfg.assetBase,
		mediaURL:   cfg.mediaURL,
	}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render draws the whole page: title, notices, section tabs, hidden fields,
// one table per section and the submit button. When opts.Sections is set
// the rows are taken from it instead of being rendered from the schema.
func (r *Renderer) Render(ctx context.Context, page render.Page, opts render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}
	opts = r.localeOptions(opts)

	sections := opts.Sections
	if sections == nil {
		var err error
		if sections, err = r.Sections(page, opts); err != nil {
			return nil, err
		}
	}

	result, err := r.templates.RenderTemplate(r.partial(PartialPage, PageTemplate), r.pageView(page, sections, opts))
	if err != nil {
		return nil, fmt.Errorf("html renderer: render template: %w", err)
	}
	return []byte(result), nil
}

// RenderField draws one translated field of page with the renderer's
// components, theme and asset configuration.
func (r *Renderer) RenderField(page render.Page, field schema.Field, opts render.RenderOptions) (string, error) {
	stored, found := page.Stored(field)
	return r.RenderOption(field, page.OptionName(field), stored, found, opts)
}

// RenderOption translates field and draws it posting under name with the
// given stored value, for hosts that look options up themselves.
func (r *Renderer) RenderOption(field schema.Field, name string, stored schema.Value, found bool, opts render.RenderOptions) (string, error) {
	opts = r.localeOptions(opts)
	return RenderField(render.LocalizeField(field, opts), name, stored, found, r.fieldOptions(opts))
}

// SectionIntro draws the translated intro paragraph of section.
func (r *Renderer) SectionIntro(section schema.Section, opts render.RenderOptions) string {
	return SectionIntro(render.LocalizeSection(section, r.localeOptions(opts)))
}

func (r *Renderer) localeOptions(opts render.RenderOptions) render.RenderOptions {
	if opts.Translator == nil {
		opts.Translator = r.translator
	}
	return opts
}

// AssetURL resolves a path inside the embedded asset bundle. Theme asset
// files take precedence.
func (r *Renderer) AssetURL(path string) string {
	if r.theme != nil && r.theme.AssetURL != nil {
		if resolved := r.theme.AssetURL(path); resolved != "" {
			return resolved
		}
	}
	return strings.TrimRight(r.assetBase, "/") + "/" + strings.TrimLeft(path, "/")
}

func (r *Renderer) fieldOptions(opts render.RenderOptions) FieldOptions {
	out := FieldOptions{
		Components: r.components,
		Translate:  func(msg string) string { return render.Translate(opts, msg) },
		Template:   r.templates,
		AssetURL:   r.AssetURL,
		MediaURL:   r.mediaURL,
	}
	if r.theme != nil {
		out.Partials = r.theme.Partials
	}
	return out
}

func (r *Renderer) partial(key, fallback string) string {
	if r.theme == nil {
		return fallback
	}
	if candidate := strings.TrimSpace(r.theme.Partials[key]); candidate != "" {
		return candidate
	}
	return fallback
}

type pageView struct {
	Page     pageInfo      `json:"page"`
	Locale   string        `json:"locale"`
	Notices  []noticeView  `json:"notices"`
	Hidden   []hiddenView  `json:"hidden"`
	Sections []sectionView `json:"sections"`
	Theme    themeView     `json:"theme"`
}

type pageInfo struct {
	Slug   string `json:"slug"`
	Title  string `json:"title"`
	Action string `json:"action"`
}

type noticeView struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type hiddenView struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type sectionView struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Intro string    `json:"intro"`
	Rows  []rowView `json:"rows"`
}

type rowView struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	LabelFor string `json:"label_for"`
	HTML     string `json:"html"`
}

type themeView struct {
	Name    string `json:"name"`
	Variant string `json:"variant"`
	Style   string `json:"style"`
}

func (r *Renderer) pageView(page render.Page, sections []render.Section, opts render.RenderOptions) pageView {
	title := page.Title
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}
	action := page.Action
	if strings.TrimSpace(action) == "" {
		action = DefaultAction
	}

	view := pageView{
		Page: pageInfo{
			Slug:   page.Slug,
			Title:  render.Translate(opts, title),
			Action: action,
		},
		Locale:   opts.Locale,
		Notices:  []noticeView{},
		Hidden:   []hiddenView{},
		Sections: make([]sectionView, 0, len(sections)),
	}
	for _, notice := range render.MergeNotices(opts.Notices) {
		view.Notices = append(view.Notices, noticeView{Type: notice.Type, Code: notice.Code, Message: notice.Message})
	}
	for _, field := range opts.Hidden {
		if field.Name == "" {
			continue
		}
		view.Hidden = append(view.Hidden, hiddenView{Name: field.Name, Value: field.Value})
	}
	for _, section := range sections {
		sv := sectionView{ID: section.ID, Title: section.Title, Intro: section.Intro, Rows: make([]rowView, 0, len(section.Rows))}
		for _, row := range section.Rows {
			sv.Rows = append(sv.Rows, rowView{ID: row.ID, Label: row.Label, LabelFor: row.LabelFor, HTML: row.HTML})
		}
		view.Sections = append(view.Sections, sv)
	}
	if r.theme != nil {
		view.Theme = themeView{Name: r.theme.Theme, Variant: r.theme.Variant, Style: cssVarsStyle(r.theme.CSSVars)}
	}

	return view
}
