package render_test

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-settings/pkg/render"
	"github.com/goliatone/go-settings/pkg/schema"
)

type stubRenderer string

func (s stubRenderer) Name() string        { return string(s) }
func (s stubRenderer) ContentType() string { return "text/plain" }
func (s stubRenderer) Render(context.Context, render.Page, render.RenderOptions) ([]byte, error) {
	return []byte(s), nil
}

type stubTranslator map[string]string

func (t stubTranslator) Translate(_ string, key string, _ ...any) (string, error) {
	if msg, ok := t[key]; ok {
		return msg, nil
	}
	return "", errors.New("missing translation")
}

func TestRegistry(t *testing.T) {
	registry := render.NewRegistry()
	if _, err := registry.Resolve(""); err == nil {
		t.Fatalf("empty registry should not resolve")
	}

	registry.MustRegister(stubRenderer("html"))
	registry.MustRegister(stubRenderer("prompt"))
	if err := registry.Register(stubRenderer("html")); err == nil {
		t.Fatalf("expected duplicate error")
	}

	got, err := registry.Resolve("")
	if err != nil || got.Name() != "html" {
		t.Fatalf("first renderer should be default, got %v %v", got, err)
	}
	if err := registry.SetDefault("prompt"); err != nil {
		t.Fatalf("set default: %v", err)
	}
	if got, _ := registry.Resolve(" "); got.Name() != "prompt" {
		t.Fatalf("default not updated: %s", got.Name())
	}
	if err := registry.SetDefault("nope"); err == nil {
		t.Fatalf("unknown default should fail")
	}
	if diff := cmp.Diff([]string{"html", "prompt"}, registry.List()); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
}

func TestSettingsFields(t *testing.T) {
	got := render.SettingsFields("plugin_settings", "n0nce", "/wp-admin/options-general.php?page=plugin_settings")
	want := []render.HiddenField{
		{Name: "option_page", Value: "plugin_settings"},
		{Name: "action", Value: "update"},
		{Name: "_wpnonce", Value: "n0nce"},
		{Name: "_wp_http_referer", Value: "/wp-admin/options-general.php?page=plugin_settings"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("hidden fields mismatch (-want +got):\n%s", diff)
	}
	if len(render.SettingsFields("g", "n", "")) != 3 {
		t.Fatalf("referer should be omitted when empty")
	}
}

func TestMergeAndSortHiddenFields(t *testing.T) {
	merged := render.MergeHiddenFields(map[string]string{" existing ": "keep", "": "ignored"},
		render.Hidden("_wpnonce", "abc"),
		render.Hidden("version", 4),
		render.Hidden("  ", "skip"),
	)
	want := []render.HiddenField{
		{Name: "_wpnonce", Value: "abc"},
		{Name: "existing", Value: "keep"},
		{Name: "version", Value: "4"},
	}
	if diff := cmp.Diff(want, render.SortedHiddenFields(merged)); diff != "" {
		t.Fatalf("sorted hidden fields mismatch (-want +got):\n%s", diff)
	}
}

func TestPageCurrentValue(t *testing.T) {
	field := schema.Field{ID: "multiple_checkboxes", Type: schema.TypeCheckboxMulti, Default: schema.Set("circle")}
	page := render.Page{Namespace: "ns_", Values: map[string]schema.Value{"ns_other": schema.Scalar("x")}}

	stored, found := page.Stored(field)
	if found {
		t.Fatalf("nothing stored for field")
	}
	if got := render.Current(field, stored, found); !got.Equal(schema.Set("circle")) {
		t.Fatalf("default expected, got %v", got)
	}

	page.Values["ns_multiple_checkboxes"] = schema.Set()
	stored, found = page.Stored(field)
	if got := render.Current(field, stored, found); !got.Equal(schema.Set()) {
		t.Fatalf("stored empty set should win over default, got %v", got)
	}
}

func TestTranslateFallbacks(t *testing.T) {
	opts := render.RenderOptions{Locale: "ru", Translator: stubTranslator{"All": "Все"}}
	if got := render.Translate(opts, "All"); got != "Все" {
		t.Fatalf("translation mismatch: %q", got)
	}
	if got := render.Translate(opts, "Save Settings"); got != "Save Settings" {
		t.Fatalf("missing translation should fall back to the id, got %q", got)
	}
	if got := render.Translate(render.RenderOptions{}, "%d items", 3); got != "3 items" {
		t.Fatalf("fallback should format args, got %q", got)
	}

	custom := render.RenderOptions{OnMissing: func(locale, key string, _ []any, err error) string {
		if !errors.Is(err, render.ErrMissingTranslator) {
			t.Fatalf("unexpected error: %v", err)
		}
		return "[" + key + "]"
	}}
	if got := render.Translate(custom, "Settings"); got != "[Settings]" {
		t.Fatalf("custom handler ignored: %q", got)
	}
}

func TestLocalizeSchema(t *testing.T) {
	translator := stubTranslator{
		"Post types": "Типы записей",
		"Some Items": "Элементы",
		"Circle":     "Круг",
	}
	original := schema.MustBuild()
	localized := render.LocalizeSchema(original, render.RenderOptions{Locale: "ru", Translator: translator})

	section := localized.Sections[0]
	if section.Title != "Типы записей" || section.Fields[0].Label != "Элементы" {
		t.Fatalf("strings not translated: %#v", section)
	}
	if label, _ := section.Fields[0].Options.Label("circle"); label != "Круг" {
		t.Fatalf("option label not translated: %q", label)
	}
	if original.Sections[0].Title != "Post types" {
		t.Fatalf("localize must not mutate the input schema")
	}
}

func TestLocalizeField_CopiesOptions(t *testing.T) {
	translator := stubTranslator{
		"Square":       "Квадрат",
		"Pick a shape": "Выберите фигуру",
		"42":           "сорок два",
	}
	field := schema.Field{
		ID:          "shape",
		Description: "Pick a shape",
		Placeholder: "42",
		Type:        schema.TypeRadio,
		Options:     schema.Options{{Key: "square", Label: "Square"}},
	}
	localized := render.LocalizeField(field, render.RenderOptions{Locale: "ru", Translator: translator})

	if localized.Description != "Выберите фигуру" || localized.Placeholder != "сорок два" {
		t.Fatalf("strings not translated: %#v", localized)
	}
	if localized.Options[0].Label != "Квадрат" || localized.Options[0].Key != "square" {
		t.Fatalf("option not translated: %#v", localized.Options[0])
	}
	if field.Options[0].Label != "Square" {
		t.Fatalf("localize must not mutate the input options")
	}

	section := render.LocalizeSection(schema.Section{Key: "shapes", Description: "Pick a shape", Fields: []schema.Field{field}}, render.RenderOptions{Translator: translator})
	if section.Description != "Выберите фигуру" || section.Fields[0].Options[0].Label != "Квадрат" {
		t.Fatalf("section not translated: %#v", section)
	}
}

func TestLoadCatalog(t *testing.T) {
	catalog, err := render.LoadCatalog(fstest.MapFS{
		"ru.yaml":   {Data: []byte("Save Settings: Сохранить\n\"%d items\": \"%d элементов\"\n")},
		"notes.txt": {Data: []byte("ignored")},
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got, err := catalog.Translate("ru_RU", "Save Settings"); err != nil || got != "Сохранить" {
		t.Fatalf("region fallback failed: %q %v", got, err)
	}
	if got, _ := catalog.Translate("ru", "%d items", 5); got != "5 элементов" {
		t.Fatalf("format failed: %q", got)
	}
	if _, err := catalog.Translate("de", "Save Settings"); !errors.Is(err, render.ErrMissingTranslation) {
		t.Fatalf("expected ErrMissingTranslation, got %v", err)
	}
}

func TestFieldNotices(t *testing.T) {
	s := schema.MustBuild(schema.Extra())
	notices := render.FieldNotices(s, "ns_", map[string][]string{
		"ns_colour_picker": {"must be a hex colour", " must be a hex colour "},
		"number_field":     {"must be a number"},
		"zz_unknown":       {"form level"},
	})
	want := []render.Notice{
		{Type: "error", Code: "number_field", Message: "A Number: must be a number"},
		{Type: "error", Code: "colour_picker", Message: "Pick a colour: must be a hex colour"},
		{Type: "error", Code: "zz_unknown", Message: "form level"},
	}
	if diff := cmp.Diff(want, notices); diff != "" {
		t.Fatalf("notices mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeNotices(t *testing.T) {
	got := render.MergeNotices(
		[]render.Notice{render.Updated("Settings saved.")},
		render.Notice{Message: "  "},
		render.Notice{Message: "bad"},
		render.Notice{Type: "error", Message: "bad "},
	)
	want := []render.Notice{
		{Type: "updated", Code: "settings_updated", Message: "Settings saved."},
		{Type: "error", Message: "bad"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("merge mismatch (-want +got):\n%s", diff)
	}
}

func TestApplySubset(t *testing.T) {
	s := schema.MustBuild(schema.Extra())

	bySection := render.ApplySubset(s, render.Subset{Sections: []string{"EXTRA"}})
	if len(bySection.Sections) != 1 || len(bySection.Sections[0].Fields) != 4 {
		t.Fatalf("section subset mismatch: %#v", bySection.Sections)
	}

	byField := render.ApplySubset(s, render.Subset{Fields: render.ParseTokenList("an_image, multiple_checkboxes,an_image")})
	var ids []string
	for _, field := range byField.Fields() {
		ids = append(ids, field.ID)
	}
	if diff := cmp.Diff([]string{"multiple_checkboxes", "an_image"}, ids); diff != "" {
		t.Fatalf("field subset mismatch (-want +got):\n%s", diff)
	}
	if len(s.Sections[1].Fields) != 4 {
		t.Fatalf("subset must not mutate the input schema")
	}
	if !(render.Subset{Sections: []string{" "}}).Empty() {
		t.Fatalf("blank tokens should count as empty")
	}
}
