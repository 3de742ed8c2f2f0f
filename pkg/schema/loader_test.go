package schema_test

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-settings/pkg/schema"
)

const yamlDoc = `
sections:
  - key: maps
    title: Maps
    description: Map defaults.
    fields:
      - id: api_key
        label: API key
        type: text_secret
      - id: provider
        label: Provider
        type: radio
        options:
          yandex: Yandex
          osm: OpenStreetMap
        default: osm
      - id: layers
        type: checkbox_multi
        options:
          traffic: Traffic
          satellite: Satellite
        default: [traffic]
`

const hclDoc = `
section "markers" {
  title       = "Markers"
  description = "Marker appearance."

  field "marker_color" {
    label   = "Colour"
    type    = "color"
    default = "#FF0000"
  }

  field "marker_size" {
    type    = "number"
    default = 12
  }

  field "shapes" {
    type    = "select_multi"
    default = ["circle"]

    option "square" { label = "Square" }
    option "circle" { label = "Circle" }
    option "pin" {}
  }
}
`

const jsonDoc = `{"sections":[{"key":"zz","title":"Last","fields":[{"id":"note","type":"textarea","default":"x"}]}]}`

func TestLoadFS_AllFormats(t *testing.T) {
	fsys := fstest.MapFS{
		"a_maps.yaml":     {Data: []byte(yamlDoc)},
		"b_markers.hcl":   {Data: []byte(hclDoc)},
		"c_last.json":     {Data: []byte(jsonDoc)},
		"README.md":       {Data: []byte("ignored")},
		"nested/skip.txt": {Data: []byte("ignored")},
	}

	sections, err := schema.LoadFS(fsys)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	var keys []string
	for _, section := range sections {
		keys = append(keys, section.Key)
	}
	if diff := cmp.Diff([]string{"maps", "markers", "zz"}, keys); diff != "" {
		t.Fatalf("section order mismatch (-want +got):\n%s", diff)
	}

	provider := sections[0].Fields[1]
	if diff := cmp.Diff([]string{"yandex", "osm"}, provider.Options.Keys()); diff != "" {
		t.Fatalf("yaml option order mismatch (-want +got):\n%s", diff)
	}
	if !provider.Default.Equal(schema.Scalar("osm")) {
		t.Fatalf("provider default mismatch: %v", provider.Default)
	}
	if !sections[0].Fields[2].Default.Equal(schema.Set("traffic")) {
		t.Fatalf("layers default mismatch: %v", sections[0].Fields[2].Default)
	}

	markers := sections[1]
	want := []schema.Field{
		{ID: "marker_color", Label: "Colour", Type: schema.TypeColor, Default: schema.Scalar("#FF0000")},
		{ID: "marker_size", Type: schema.TypeNumber, Default: schema.Scalar("12")},
		{
			ID:   "shapes",
			Type: schema.TypeSelectMulti,
			Options: schema.Options{
				{Key: "square", Label: "Square"},
				{Key: "circle", Label: "Circle"},
				{Key: "pin", Label: "pin"},
			},
			Default: schema.Set("circle"),
		},
	}
	if diff := cmp.Diff(want, markers.Fields); diff != "" {
		t.Fatalf("hcl fields mismatch (-want +got):\n%s", diff)
	}
	if markers.Description != "Marker appearance." {
		t.Fatalf("hcl description mismatch: %q", markers.Description)
	}
}

func TestLoadFS_DuplicateSection(t *testing.T) {
	fsys := fstest.MapFS{
		"one.json": {Data: []byte(jsonDoc)},
		"two.json": {Data: []byte(jsonDoc)},
	}
	_, err := schema.LoadFS(fsys)
	if err == nil || !strings.Contains(err.Error(), `duplicate section "zz"`) {
		t.Fatalf("expected duplicate section error, got %v", err)
	}
}

func TestLoadFS_InvalidDocuments(t *testing.T) {
	cases := map[string]string{
		"empty.yaml": "   ",
		"bad.json":   "{",
		"bad.hcl":    `section "x" { field "y" { label = "missing type" } }`,
	}
	for name, data := range cases {
		_, err := schema.LoadFS(fstest.MapFS{name: {Data: []byte(data)}})
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadFS_Nil(t *testing.T) {
	sections, err := schema.LoadFS(nil)
	if err != nil || sections != nil {
		t.Fatalf("nil fs should yield nothing, got %v %v", sections, err)
	}
}

func TestFromFS_ExtendsDefault(t *testing.T) {
	override := `sections:
  - key: post_types
    title: Content types
    fields:
      - id: multiple_checkboxes
        type: checkbox_multi
        options: {page: Page, post: Post}
        default: [post]
`
	s, err := schema.Build(schema.FromFS(fstest.MapFS{
		"a.yaml": {Data: []byte(override)},
		"b.json": {Data: []byte(jsonDoc)},
	}))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(s.Sections) != 2 {
		t.Fatalf("expected overridden default plus one section, got %d", len(s.Sections))
	}
	if s.Sections[0].Title != "Content types" || s.Sections[1].Key != "zz" {
		t.Fatalf("unexpected sections: %#v", s.Sections)
	}
	if err := schema.Check(s); err != nil {
		t.Fatalf("check: %v", err)
	}
}
