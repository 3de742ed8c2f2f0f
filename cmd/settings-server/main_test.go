package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-settings/internal/config"
	"github.com/goliatone/go-settings/pkg/host"
	"github.com/goliatone/go-settings/pkg/schema"
	"github.com/goliatone/go-settings/pkg/testsupport"
)

const mapsSection = `
sections:
  - key: maps
    title: Maps
    fields:
      - id: zoom
        label: Zoom
        type: number
        default: "10"
`

const zoomOption = schema.DefaultNamespace + "zoom"

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	schemaDir := filepath.Join(dir, "schema")
	if err := os.Mkdir(schemaDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(schemaDir, "maps.yaml"), []byte(mapsSection), 0o600); err != nil {
		t.Fatalf("write schema: %v", err)
	}

	cfg := config.Default()
	cfg.Store = filepath.Join(dir, "options.db")
	cfg.SchemaDir = schemaDir
	cfg.Secret = "test"
	cfg.Capability = "manage_options"
	return cfg
}

func newTestApp(t *testing.T, cfg config.Config) (*app, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	a, err := newApp(context.Background(), cfg, slog.New(slog.NewTextHandler(&logs, nil)))
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a, &logs
}

func do(t *testing.T, client *http.Client, req *http.Request) (*http.Response, string) {
	t.Helper()
	req.Header.Set(host.CapabilityHeader, "manage_options")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(body)
}

func TestServer_PageAndSave(t *testing.T) {
	a, logs := newTestApp(t, testConfig(t))
	srv := httptest.NewServer(a.host.Handler())
	defer srv.Close()
	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}

	pageURL := srv.URL + a.host.PageURL("plugin_settings")
	req, _ := http.NewRequest(http.MethodGet, pageURL, nil)
	resp, page := do(t, client, req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	for _, fragment := range []string{
		`id="color-picker-css" href="/wp-admin/assets/css/color-picker.css"`,
		`id="settings-admin-js-js" src="/wp-admin/assets/js/settings.js"`,
		`name="vp_yandex_mapszoom"`,
	} {
		if !strings.Contains(page, fragment) {
			t.Fatalf("expected %s in page:\n%s", fragment, page)
		}
	}
	if strings.Index(page, `id="color-picker-js"`) > strings.Index(page, `id="settings-admin-js-js"`) {
		t.Fatalf("settings script must follow its dependencies:\n%s", page)
	}

	nonce, ok := testsupport.Attr(page, "input", "_wpnonce", "value")
	if !ok {
		t.Fatalf("missing nonce")
	}
	form := url.Values{
		"option_page": {"plugin_settings"},
		"_wpnonce":    {nonce},
		zoomOption:    {"14"},
	}
	req, _ = http.NewRequest(http.MethodPost, srv.URL+"/wp-admin/options.php", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, _ = do(t, client, req)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}

	stored, found, err := a.host.Store().Get(context.Background(), zoomOption)
	if err != nil || !found || stored.String() != "14" {
		t.Fatalf("unexpected stored zoom %q (found=%v, err=%v)", stored.String(), found, err)
	}
	if !strings.Contains(logs.String(), "settings saved") {
		t.Fatalf("expected save to be logged:\n%s", logs.String())
	}
}

func TestServer_GuardAndAssets(t *testing.T) {
	a, _ := newTestApp(t, testConfig(t))
	srv := httptest.NewServer(a.host.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + a.host.PageURL("plugin_settings"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 without capability, got %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/wp-admin/assets/css/color-picker.css", nil)
	resp, body := do(t, http.DefaultClient, req)
	if resp.StatusCode != http.StatusOK || body == "" {
		t.Fatalf("expected stylesheet, got %d", resp.StatusCode)
	}

	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/wp-admin/plugins.php", nil)
	_, body = do(t, http.DefaultClient, req)
	if !strings.Contains(body, "options-general.php?page=plugin_settings") {
		t.Fatalf("expected settings link in %s", body)
	}
}

func TestParseConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	if err := os.WriteFile(path, []byte("addr: \":9000\"\nlocale: fr\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := parseConfig([]string{"-config", path, "-addr", ":9001"}, io.Discard)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Addr != ":9001" || cfg.Locale != "fr" || cfg.BasePath != "/wp-admin" {
		t.Fatalf("unexpected config %+v", cfg)
	}

	if _, err := parseConfig([]string{"-base-path", "admin"}, io.Discard); err == nil {
		t.Fatal("expected invalid base path to fail")
	}
}

func TestLoadThemes(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "acme.yaml"), []byte("version: 1.0.0\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	selector, err := loadThemes(dir)
	if err != nil {
		t.Fatalf("load themes: %v", err)
	}
	selection, err := selector.Select("", "")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if selection.Theme != "acme" {
		t.Fatalf("expected manifest named after its file, got %q", selection.Theme)
	}
}
