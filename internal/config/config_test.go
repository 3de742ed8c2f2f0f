package config

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoad_MergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	doc := `
addr: ":9090"
store: /var/lib/settings.db
theme:
  name: admin
  variant: dark
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Default()
	want.Addr = ":9090"
	want.Store = "/var/lib/settings.db"
	want.Theme = Theme{Name: "admin", Variant: "dark"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	got, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(Default(), got); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_RejectsUnknownKeys(t *testing.T) {
	cfg := Default()
	err := cfg.Decode(strings.NewReader("adress: :80\n"))
	if err == nil || !strings.Contains(err.Error(), "adress") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestDecode_EmptyDocument(t *testing.T) {
	cfg := Default()
	if err := cfg.Decode(strings.NewReader("")); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestFlags_OverrideOnlyWhenSet(t *testing.T) {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	flags := BindFlags(set)
	if err := set.Parse([]string{"-addr", "127.0.0.1:8081", "-theme-variant", "", "-log-level", "debug"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	cfg := Default()
	cfg.Theme = Theme{Name: "admin", Variant: "dark"}
	flags.Apply(&cfg)

	want := Default()
	want.Addr = "127.0.0.1:8081"
	want.Theme = Theme{Name: "admin"}
	want.LogLevel = "debug"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "defaults"},
		{name: "base path", mutate: func(c *Config) { c.BasePath = "admin" }, want: "basePath"},
		{name: "namespace", mutate: func(c *Config) { c.Namespace = " " }, want: "namespace"},
		{name: "addr", mutate: func(c *Config) { c.Addr = "" }, want: "addr"},
		{name: "log level", mutate: func(c *Config) { c.LogLevel = "trace" }, want: "logLevel"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			if tc.mutate != nil {
				tc.mutate(&cfg)
			}
			err := cfg.Validate()
			if tc.want == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}
