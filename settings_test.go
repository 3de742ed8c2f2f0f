package settings

import (
	"context"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-settings/pkg/schema"
)

func TestAssetsFSContainsBundle(t *testing.T) {
	for _, name := range []string{"js/settings.js", "css/color-picker.css", "img/no-img.png"} {
		if _, err := fs.Stat(AssetsFS(), name); err != nil {
			t.Fatalf("expected %s in asset bundle: %v", name, err)
		}
	}
}

func TestEmbeddedTemplatesContainsPage(t *testing.T) {
	data, err := fs.ReadFile(EmbeddedTemplates(), "templates/page.tmpl")
	if err != nil {
		t.Fatalf("read page template: %v", err)
	}
	if !strings.Contains(string(data), "sections") {
		t.Fatalf("unexpected page template:\n%s", data)
	}
}

func TestValidateField(t *testing.T) {
	got, err := ValidateField(schema.Scalar("Some Value"))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got.String() != "some-value" {
		t.Fatalf("expected slug, got %q", got.String())
	}
}

func TestRenderPageWithLoadedSections(t *testing.T) {
	fsys := fstest.MapFS{
		"maps.yaml": {Data: []byte("sections:\n  - key: maps\n    title: Maps\n    fields:\n      - id: zoom\n        type: number\n")},
	}
	sections, err := LoadSections(fsys)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	page, err := RenderPage(context.Background(), WithExtensions(schema.Sections(sections...)))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(string(page), `name="vp_yandex_mapszoom"`) {
		t.Fatalf("expected loaded field in page:\n%s", page)
	}
}
