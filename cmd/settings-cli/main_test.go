package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-settings/pkg/renderers/prompt"
	"github.com/goliatone/go-settings/pkg/schema"
	"github.com/goliatone/go-settings/pkg/store"
)

// answerDriver accepts every default except the inputs named in inputs.
type answerDriver struct {
	inputs map[string][]string
	infos  []string
}

func (d *answerDriver) Input(_ context.Context, cfg prompt.InputConfig) (string, error) {
	if queued := d.inputs[cfg.Message]; len(queued) > 0 {
		d.inputs[cfg.Message] = queued[1:]
		return queued[0], nil
	}
	return cfg.Default, nil
}

func (d *answerDriver) Password(context.Context, prompt.InputConfig) (string, error) {
	return "", nil
}

func (d *answerDriver) Confirm(_ context.Context, cfg prompt.ConfirmConfig) (bool, error) {
	return cfg.Default, nil
}

func (d *answerDriver) Select(_ context.Context, cfg prompt.SelectConfig) (int, error) {
	return cfg.DefaultIndex, nil
}

func (d *answerDriver) MultiSelect(_ context.Context, cfg prompt.SelectConfig) ([]int, error) {
	return cfg.Defaults, nil
}

func (d *answerDriver) TextArea(_ context.Context, cfg prompt.TextAreaConfig) (string, error) {
	return cfg.Default, nil
}

func (d *answerDriver) Info(_ context.Context, msg string) error {
	d.infos = append(d.infos, msg)
	return nil
}

func TestRun_HTML(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), []string{"-mode", "html"}, &stdout, &stderr, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	page := stdout.String()
	for _, fragment := range []string{`name="vp_yandex_mapsmultiple_checkboxes[]"`, `name="vp_yandex_mapsnumber_field"`} {
		if !strings.Contains(page, fragment) {
			t.Fatalf("expected %s in output:\n%s", fragment, page)
		}
	}
}

func TestRun_OpenAPIToFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "settings.json")
	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), []string{"-mode", "openapi", "-output", out, "-namespace", "demo_"}, &stdout, &stderr, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc["openapi"] != "3.0.3" {
		t.Fatalf("unexpected document version %v", doc["openapi"])
	}
	if !strings.Contains(string(raw), "demo_number_field") {
		t.Fatalf("expected namespaced property in %s", raw)
	}
	if !strings.Contains(stderr.String(), "output written") {
		t.Fatalf("expected log line, got %q", stderr.String())
	}
}

func TestRun_PromptSavesToSQLite(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "options.db")
	driver := &answerDriver{inputs: map[string][]string{"A Number": {"many", "7"}}}

	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), []string{"-mode", "prompt", "-store", dsn}, &stdout, &stderr, driver); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout.String(), "updated: Settings saved.") {
		t.Fatalf("expected saved notice, got %q", stdout.String())
	}
	if !strings.Contains(strings.Join(driver.infos, "\n"), "Invalid A Number") {
		t.Fatalf("expected the bad number to be re-prompted, got %v", driver.infos)
	}

	ctx := context.Background()
	st, closer, err := store.Open(ctx, dsn)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer closer.Close()
	number, found, err := st.Get(ctx, schema.DefaultNamespace+"number_field")
	if err != nil || !found || number.String() != "7" {
		t.Fatalf("unexpected number %q (found=%v, err=%v)", number.String(), found, err)
	}
	shapes, _, _ := st.Get(ctx, schema.DefaultNamespace+"multiple_checkboxes")
	if !shapes.Equal(schema.Set("circle", "triangle")) {
		t.Fatalf("expected default shapes to be stored, got %v", shapes.Items())
	}
}

func TestRun_RejectsUnknownMode(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-mode", "pdf"}, &stdout, &stderr, nil)
	if err == nil || !strings.Contains(err.Error(), `unknown mode "pdf"`) {
		t.Fatalf("expected unknown mode error, got %v", err)
	}
	if err := run(context.Background(), []string{"-h"}, &stdout, &stderr, nil); !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("expected help error, got %v", err)
	}
}
