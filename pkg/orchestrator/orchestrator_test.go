package orchestrator

import (
	"bytes"
	"log/slog"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-settings/pkg/openapi"
	"github.com/goliatone/go-settings/pkg/registry"
	"github.com/goliatone/go-settings/pkg/render"
	"github.com/goliatone/go-settings/pkg/schema"
	"github.com/goliatone/go-settings/pkg/store"
	"github.com/goliatone/go-settings/pkg/testsupport"
)

const ns = schema.DefaultNamespace

func checked(t *testing.T, page []byte, id string) bool {
	t.Helper()
	_, ok := testsupport.Attr(string(page), "input", id, "checked")
	return ok
}

func TestOrchestrator_DefaultThenSubmission(t *testing.T) {
	ctx := testsupport.Context()
	var logs bytes.Buffer
	mem := store.NewMemory()
	orch := New(
		WithStore(mem),
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
	)

	first, err := orch.RenderPage(ctx, Request{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for id, want := range map[string]bool{
		"multiple_checkboxes_square":    false,
		"multiple_checkboxes_circle":    true,
		"multiple_checkboxes_rectangle": false,
		"multiple_checkboxes_triangle":  true,
	} {
		if got := checked(t, first, id); got != want {
			t.Fatalf("default render: %s checked=%v, want %v", id, got, want)
		}
	}

	result, err := orch.Submit(ctx, url.Values{ns + "multiple_checkboxes[]": {"square", "hexagon"}})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	stored, found, err := mem.Get(ctx, ns+"multiple_checkboxes")
	if err != nil || !found {
		t.Fatalf("expected stored option, found=%v err=%v", found, err)
	}
	if !stored.Equal(schema.Set("square")) {
		t.Fatalf("unexpected stored value %v", stored.Items())
	}

	second, err := orch.RenderPage(ctx, Request{RenderOptions: render.RenderOptions{Notices: orch.Notices(result)}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !checked(t, second, "multiple_checkboxes_square") || checked(t, second, "multiple_checkboxes_circle") {
		t.Fatalf("stored value not rendered:\n%s", second)
	}
	if !strings.Contains(string(second), "Settings saved.") {
		t.Fatalf("expected updated notice in:\n%s", second)
	}
	if !strings.Contains(logs.String(), "settings saved") {
		t.Fatalf("expected save log, got %q", logs.String())
	}
}

func TestOrchestrator_RejectedSubmission(t *testing.T) {
	ctx := testsupport.Context()
	orch := New(WithExtensions(schema.Extra()))

	result, err := orch.Submit(ctx, url.Values{ns + "number_field": {"abc"}})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	notices := orch.Notices(result)
	want := []render.Notice{{Type: render.NoticeError, Code: "number_field", Message: "A Number: must be a number"}}
	if diff := cmp.Diff(want, notices); diff != "" {
		t.Fatalf("notices mismatch (-want +got):\n%s", diff)
	}
	values, err := orch.Values(ctx)
	if err != nil {
		t.Fatalf("values: %v", err)
	}
	if len(values) != 0 {
		t.Fatalf("expected nothing stored, got %v", values)
	}
}

func TestOrchestrator_InstallTwice(t *testing.T) {
	ctx := testsupport.Context()
	orch := New(WithExtensions(schema.Extra()))
	host := registry.New()

	first, err := orch.Install(ctx, host)
	if err != nil {
		t.Fatalf("install: %v", err)
	}
	if _, err := orch.Install(ctx, host); err != nil {
		t.Fatalf("second install: %v", err)
	}

	var names []string
	for _, option := range host.Options(DefaultSlug) {
		names = append(names, option.Name)
	}
	if diff := cmp.Diff(first.Options(), names); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}

	fields := host.Fields(DefaultSlug, "post_types")
	if len(fields) != 1 {
		t.Fatalf("expected one post_types field, got %d", len(fields))
	}
	row, err := fields[0].Render(ctx, fields[0].Args, schema.Set("rectangle"), true)
	if err != nil {
		t.Fatalf("field render: %v", err)
	}
	if _, ok := testsupport.Attr(row, "input", "multiple_checkboxes_rectangle", "checked"); !ok {
		t.Fatalf("expected rectangle checked in:\n%s", row)
	}
	if fields[0].Args.LabelFor != "" {
		t.Fatalf("checkbox_multi rows have no label target, got %q", fields[0].Args.LabelFor)
	}

	sections := host.Sections(DefaultSlug)
	intro, err := sections[1].Render(ctx)
	if err != nil {
		t.Fatalf("section render: %v", err)
	}
	if !strings.HasPrefix(intro, "<p> These are some extra input fields") {
		t.Fatalf("unexpected intro %q", intro)
	}

	page, ok := host.Page(DefaultSlug)
	if !ok {
		t.Fatal("expected page registration")
	}
	out, err := page.Render(ctx, render.RenderOptions{Hidden: render.SettingsFields(DefaultSlug, "n0nce", "")})
	if err != nil {
		t.Fatalf("page render: %v", err)
	}
	if value, _ := testsupport.Attr(string(out), "input", "_wpnonce", "value"); value != "n0nce" {
		t.Fatalf("expected nonce hidden field, got %q", value)
	}
}

func TestOrchestrator_ActionLinks(t *testing.T) {
	orch := New()
	got := orch.ActionLinks([]string{`<a href="#">Deactivate</a>`})
	want := []string{
		`<a href="#">Deactivate</a>`,
		`<a href="options-general.php?page=plugin_settings">Settings</a>`,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("links mismatch (-want +got):\n%s", diff)
	}
}

func TestOrchestrator_UnknownRenderer(t *testing.T) {
	orch := New()
	if _, err := orch.RenderPage(testsupport.Context(), Request{Renderer: "pdf"}); err == nil {
		t.Fatal("expected unknown renderer error")
	}
}

func TestOrchestrator_RenderField(t *testing.T) {
	ctx := testsupport.Context()
	mem := store.NewMemory(map[string]schema.Value{ns + "colour_picker": schema.Scalar("#000000")})
	orch := New(WithStore(mem), WithExtensions(schema.Extra()))

	out, err := orch.RenderField(ctx, "colour_picker")
	if err != nil {
		t.Fatalf("render field: %v", err)
	}
	if value, _ := testsupport.Attr(out, "input", "colour_picker", "value"); value != "#000000" {
		t.Fatalf("expected stored colour, got %q in %s", value, out)
	}
	if _, err := orch.RenderField(ctx, "missing"); err == nil {
		t.Fatal("expected unknown field error")
	}
}

func TestOrchestrator_AssetsAndOpenAPI(t *testing.T) {
	orch := New(WithExtensions(schema.Extra()))
	styles, scripts, err := orch.Assets()
	if err != nil {
		t.Fatalf("assets: %v", err)
	}
	if len(styles) != 1 || len(scripts) != 3 {
		t.Fatalf("unexpected assets: %d styles, %d scripts", len(styles), len(scripts))
	}

	doc, err := orch.OpenAPI(openapiOptions())
	if err != nil {
		t.Fatalf("openapi: %v", err)
	}
	if err := doc.Check(map[string]any{ns + "number_field": "12"}); err != nil {
		t.Fatalf("check: %v", err)
	}
}

func openapiOptions() openapi.Options {
	return openapi.Options{Path: "/settings.json"}
}
