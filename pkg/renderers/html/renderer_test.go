package html

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-settings/pkg/render"
	"github.com/goliatone/go-settings/pkg/renderers/html/components"
	"github.com/goliatone/go-settings/pkg/schema"
	"github.com/goliatone/go-settings/pkg/testsupport"
)

func newRenderer(t *testing.T, opts ...Option) *Renderer {
	t.Helper()
	r, err := New(opts...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func defaultPage(values map[string]schema.Value) render.Page {
	return render.Page{
		Slug:      "plugin_settings",
		Title:     "Plugin Settings",
		Action:    "options.php",
		Namespace: schema.DefaultNamespace,
		Schema:    schema.MustBuild(),
		Values:    values,
	}
}

func checked(t *testing.T, markup, id string) bool {
	t.Helper()
	if _, ok := testsupport.Attr(markup, "input", id, "type"); !ok {
		t.Fatalf("input %s not found in:\n%s", id, markup)
	}
	_, on := testsupport.Attr(markup, "input", id, "checked")
	return on
}

func TestRenderFieldNamesEveryType(t *testing.T) {
	options := schema.Options{{Key: "a", Label: "A"}, {Key: "b", Label: "B"}}
	for _, kind := range schema.FieldTypes() {
		field := schema.Field{ID: "f_" + string(kind), Type: kind, Description: "Help"}
		if kind.Choice() {
			field.Options = options
		}
		name := schema.OptionName("ns_", field.ID)
		markup, err := RenderField(field, name, schema.Value{}, false, FieldOptions{})
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		testsupport.MustBeWellFormed(t, markup)

		want := name
		if kind.Multi() {
			want += "[]"
		}
		if !strings.Contains(markup, `name="`+want+`"`) {
			t.Fatalf("%s: expected name %q in:\n%s", kind, want, markup)
		}
	}
}

func TestRenderFieldCheckboxMultiMembership(t *testing.T) {
	field := schema.Field{
		ID:      "shapes",
		Type:    schema.TypeCheckboxMulti,
		Options: schema.Options{{Key: "a", Label: "A"}, {Key: "b", Label: "B"}, {Key: "c", Label: "C"}},
		Default: schema.Set("a"),
	}
	markup, err := RenderField(field, "ns_shapes", schema.Set("b"), true, FieldOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	got := map[string]bool{}
	for _, key := range []string{"a", "b", "c"} {
		got[key] = checked(t, markup, "shapes_"+key)
	}
	if diff := cmp.Diff(map[string]bool{"a": false, "b": true, "c": false}, got); diff != "" {
		t.Fatalf("checked state mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderFieldUnknownStoredKeySelectsNothing(t *testing.T) {
	options := schema.Options{{Key: "a", Label: "A"}, {Key: "b", Label: "B"}}
	for _, kind := range []schema.FieldType{schema.TypeSelect, schema.TypeRadio} {
		field := schema.Field{ID: "pick", Type: kind, Options: options, Default: schema.Scalar("a")}
		markup, err := RenderField(field, "ns_pick", schema.Scalar("zzz"), true, FieldOptions{})
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		if strings.Contains(markup, "selected=") || strings.Contains(markup, "checked=") {
			t.Fatalf("%s: nothing should be marked:\n%s", kind, markup)
		}
	}
}

func TestRenderFieldDescriptionPlacement(t *testing.T) {
	text, err := RenderField(schema.Field{ID: "t", Type: schema.TypeText, Description: "Plain <b>bold</b> <script>x</script>"}, "ns_t", schema.Value{}, false, FieldOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasSuffix(text, `<label for="t"><span class="description">Plain <b>bold</b></span></label>`+"\n") {
		t.Fatalf("text description mismatch:\n%s", text)
	}

	radio, err := RenderField(schema.Field{ID: "r", Type: schema.TypeRadio, Options: schema.Options{{Key: "x", Label: "X"}}, Description: "Pick one"}, "ns_r", schema.Value{}, false, FieldOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasSuffix(radio, `<br/><span class="description">Pick one</span>`) {
		t.Fatalf("radio description mismatch:\n%s", radio)
	}

	bare, _ := RenderField(schema.Field{ID: "b", Type: schema.TypeText}, "ns_b", schema.Value{}, false, FieldOptions{})
	if strings.Contains(bare, "description") {
		t.Fatalf("empty description should be omitted:\n%s", bare)
	}
}

func TestRenderFieldTextRoundTrip(t *testing.T) {
	field := schema.Field{ID: "greeting", Type: schema.TypeText}
	markup, err := RenderField(field, "ns_greeting", schema.Scalar("Hello World"), true, FieldOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	value, ok := testsupport.Attr(markup, "input", "greeting", "value")
	if !ok || value != "Hello World" {
		t.Fatalf("expected rendered value to round trip, got %q", value)
	}
}

func TestRender_DefaultPage(t *testing.T) {
	r := newRenderer(t)
	out, err := r.Render(context.Background(), defaultPage(nil), render.RenderOptions{
		Hidden:  render.SettingsFields("plugin_settings", "abc123", "/wp-admin/options-general.php?page=plugin_settings"),
		Notices: []render.Notice{render.Updated("Settings saved.")},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	page := string(out)
	testsupport.MustBeWellFormed(t, page)

	for _, fragment := range []string{
		`<div class="wrap" id="plugin_settings">`,
		`<h2>Plugin Settings</h2>`,
		`<form method="post" action="options.php" enctype="multipart/form-data">`,
		`<ul id="settings-sections" class="subsubsub hide-if-no-js">`,
		`<li><a class="tab all current" href="#all">All</a></li>`,
		`<li>| <a class="tab" href="#post_types">Post types</a></li>`,
		`<div class="clear"></div>`,
		`<input type="hidden" name="option_page" value="plugin_settings"/>`,
		`<input type="hidden" name="_wpnonce" value="abc123"/>`,
		`<p> Settings behavior maps for certain types of posts.</p>`,
		`<input name="Submit" type="submit" class="button-primary" value="Save Settings"/>`,
		`class="updated settings-error notice"`,
		`Settings saved.`,
	} {
		if !strings.Contains(page, fragment) {
			t.Fatalf("expected %s in page:\n%s", fragment, page)
		}
	}

	got := map[string]bool{}
	for _, key := range []string{"square", "circle", "rectangle", "triangle"} {
		got[key] = checked(t, page, "multiple_checkboxes_"+key)
	}
	want := map[string]bool{"square": false, "circle": true, "rectangle": false, "triangle": true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("default checked state mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderField_CheckboxIgnoresDefault(t *testing.T) {
	field := schema.Field{ID: "enabled", Type: schema.TypeCheckbox, Default: schema.Scalar(schema.CheckboxOn)}

	for _, tc := range []struct {
		name   string
		stored schema.Value
		found  bool
		want   bool
	}{
		{name: "nothing stored", want: false},
		{name: "stored on", stored: schema.Scalar(schema.CheckboxOn), found: true, want: true},
		{name: "stored off", stored: schema.Scalar(""), found: true, want: false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			markup, err := RenderField(field, "ns_enabled", tc.stored, tc.found, FieldOptions{})
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			if got := checked(t, markup, "enabled"); got != tc.want {
				t.Fatalf("checked = %v, want %v in:\n%s", got, tc.want, markup)
			}
		})
	}
}

func TestRender_StoredValueWins(t *testing.T) {
	r := newRenderer(t)
	out, err := r.Render(context.Background(), defaultPage(map[string]schema.Value{
		"vp_yandex_mapsmultiple_checkboxes": schema.Set("square"),
	}), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	page := string(out)
	if !checked(t, page, "multiple_checkboxes_square") || checked(t, page, "multiple_checkboxes_circle") {
		t.Fatalf("stored value should replace default:\n%s", page)
	}
}

func TestRender_UsesPrerenderedSections(t *testing.T) {
	r := newRenderer(t)
	out, err := r.Render(context.Background(), defaultPage(nil), render.RenderOptions{
		Sections: []render.Section{{
			ID:    "host",
			Title: "From host",
			Intro: "<p> intro</p>\n",
			Rows:  []render.Row{{ID: "x", Label: "X <label>", LabelFor: "x", HTML: `<input id="x" name="x"/>`}},
		}},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	page := string(out)
	if strings.Contains(page, "post_types") {
		t.Fatalf("schema sections should not be drawn when sections are given:\n%s", page)
	}
	for _, fragment := range []string{
		`href="#host">From host</a>`,
		`<label for="x">X &lt;label&gt;</label>`,
		`<td><input id="x" name="x"/></td>`,
	} {
		if !strings.Contains(page, fragment) {
			t.Fatalf("expected %s in page:\n%s", fragment, page)
		}
	}
}

func TestRender_TranslatesChrome(t *testing.T) {
	catalog := render.NewCatalog()
	catalog.Add("ru", map[string]string{
		"Plugin Settings": "Настройки плагина",
		"All":             "Все",
		"Save Settings":   "Сохранить",
		"Post types":      "Типы записей",
	})
	r := newRenderer(t, WithTranslator(catalog))
	out, err := r.Render(context.Background(), defaultPage(nil), render.RenderOptions{Locale: "ru_RU"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	page := string(out)
	for _, fragment := range []string{"<h2>Настройки плагина</h2>", ">Все</a>", `value="Сохранить"`, ">Типы записей</a>"} {
		if !strings.Contains(page, fragment) {
			t.Fatalf("expected %s in page:\n%s", fragment, page)
		}
	}
}

func TestRender_TemplatesDirOverridesPage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, filepath.FromSlash(PageTemplate))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(`<main id="{{ page.slug }}">{{ translate(locale, "Save Settings") }}</main>`), 0o600); err != nil {
		t.Fatalf("write template: %v", err)
	}
	catalog := render.NewCatalog()
	catalog.Add("fr", map[string]string{"Save Settings": "Enregistrer"})

	r := newRenderer(t, WithTemplatesDir(dir), WithTranslator(catalog))
	out, err := r.Render(context.Background(), defaultPage(nil), render.RenderOptions{Locale: "fr"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got, want := string(out), `<main id="plugin_settings">Enregistrer</main>`; got != want {
		t.Fatalf("unexpected page\nwant: %q\n got: %q", want, got)
	}
}

func TestRender_Subset(t *testing.T) {
	r := newRenderer(t)
	page := defaultPage(nil)
	page.Schema = schema.MustBuild(schema.Extra())
	out, err := r.Render(context.Background(), page, render.RenderOptions{Subset: render.Subset{Sections: []string{"extra"}}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(string(out), "#post_types") || !strings.Contains(string(out), "#extra") {
		t.Fatalf("subset not applied:\n%s", out)
	}
}

func TestRender_UnknownFieldTypeFails(t *testing.T) {
	r := newRenderer(t)
	page := defaultPage(nil)
	page.Schema = schema.Schema{Sections: []schema.Section{{Key: "x", Fields: []schema.Field{{ID: "y", Type: "slider"}}}}}
	if _, err := r.Render(context.Background(), page, render.RenderOptions{}); err == nil {
		t.Fatalf("expected error for unknown field type")
	}
}

func TestRender_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newRenderer(t).Render(ctx, defaultPage(nil), render.RenderOptions{}); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestAssets(t *testing.T) {
	r := newRenderer(t, WithAssetBase("/wp-admin/assets"))

	styles, scripts := r.Assets(schema.MustBuild())
	if len(styles) != 0 {
		t.Fatalf("default schema needs no styles, got %v", styles)
	}
	if len(scripts) != 1 || scripts[0].Handle != components.HandleSettings || scripts[0].Src != "/wp-admin/assets/js/settings.js" {
		t.Fatalf("unexpected scripts: %#v", scripts)
	}

	styles, scripts = r.Assets(schema.MustBuild(schema.Extra()))
	var handles []string
	for _, script := range scripts {
		handles = append(handles, script.Handle)
	}
	if diff := cmp.Diff([]string{components.HandleColorPicker, components.HandleMedia, components.HandleSettings}, handles); diff != "" {
		t.Fatalf("script handles mismatch (-want +got):\n%s", diff)
	}
	if len(styles) != 1 || styles[0].Href != "/wp-admin/assets/css/color-picker.css" {
		t.Fatalf("unexpected styles: %#v", styles)
	}
}

func TestEmbeddedAssetsPresent(t *testing.T) {
	for _, path := range []string{"js/settings.js", "js/color-picker.js", "js/media-upload.js", "css/color-picker.css", components.PlaceholderImage} {
		data, err := fs.ReadFile(AssetsFS(), path)
		if err != nil || len(data) == 0 {
			t.Fatalf("asset %s missing: %v", path, err)
		}
	}
}

func TestThemeConfigAndRender(t *testing.T) {
	manifest := &theme.Manifest{
		Name:    "acme",
		Version: "1.0.0",
		Tokens:  map[string]string{"brand": "#123456"},
		Assets: theme.Assets{
			Prefix: "/themes/acme",
			Files:  map[string]string{components.PlaceholderImage: "blank.png"},
		},
		Variants: map[string]theme.Variant{
			"dark": {Tokens: map[string]string{"brand": "#654321"}},
		},
	}
	selector, err := NewManifests(manifest)
	if err != nil {
		t.Fatalf("manifests: %v", err)
	}

	cfg, err := SelectTheme(selector, "", "dark", map[string]string{"page": PageTemplate})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if cfg.Theme != "acme" || cfg.Variant != "dark" {
		t.Fatalf("unexpected selection %s/%s", cfg.Theme, cfg.Variant)
	}
	if cfg.Tokens["brand"] != "#654321" || cfg.CSSVars["--brand"] != "#654321" {
		t.Fatalf("variant tokens should win: %v %v", cfg.Tokens, cfg.CSSVars)
	}

	r := newRenderer(t, WithTheme(cfg))
	if got := r.AssetURL(components.PlaceholderImage); got != "/themes/acme/blank.png" {
		t.Fatalf("theme asset mismatch: %s", got)
	}
	if got := r.AssetURL("js/settings.js"); got != "/assets/js/settings.js" {
		t.Fatalf("fallback asset mismatch: %s", got)
	}

	page := defaultPage(nil)
	page.Schema = schema.MustBuild(schema.Extra())
	out, err := r.Render(context.Background(), page, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(string(out), `style="--brand: #654321;"`) {
		t.Fatalf("expected css vars on wrapper:\n%s", out)
	}
	if !strings.Contains(string(out), `src="/themes/acme/blank.png"`) {
		t.Fatalf("expected themed placeholder:\n%s", out)
	}

	if _, err := selector.Select("acme", "missing"); err == nil {
		t.Fatalf("expected unknown variant error")
	}
	if _, err := selector.Select("nope", ""); err == nil {
		t.Fatalf("expected unknown theme error")
	}
	if err := selector.Add(manifest); err == nil {
		t.Fatalf("expected duplicate manifest error")
	}
}
