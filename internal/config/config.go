// Package config loads the settings server configuration. Values start from
// Default, are replaced by a YAML file and finally by command line flags.
package config

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-settings/pkg/schema"
	"github.com/goliatone/go-settings/pkg/store"
)

// Theme selects a theme manifest and one of its variants.
type Theme struct {
	Name    string `yaml:"name"`
	Variant string `yaml:"variant"`
}

// Config is the server configuration. An empty Capability leaves the admin
// routes unguarded.
type Config struct {
	Addr       string `yaml:"addr"`
	BasePath   string `yaml:"basePath"`
	Namespace  string `yaml:"namespace"`
	Store      string `yaml:"store"`
	SchemaDir  string `yaml:"schemaDir"`
	ThemeDir   string `yaml:"themeDir"`
	Locale     string `yaml:"locale"`
	LocaleDir  string `yaml:"localeDir"`
	Secret     string `yaml:"secret"`
	Capability string `yaml:"capability"`
	Theme      Theme  `yaml:"theme"`
	LogLevel   string `yaml:"logLevel"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:      ":8080",
		BasePath:  "/wp-admin",
		Namespace: schema.DefaultNamespace,
		Store:     store.MemoryDSN,
		LogLevel:  "info",
	}
}

// Load reads path on top of Default. An empty path returns Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := cfg.Decode(bytes.NewReader(data)); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Decode merges a YAML document into c. Keys missing from the document keep
// their current value. Unknown keys are an error.
func (c *Config) Decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// Validate reports the first setting the server cannot start with.
func (c Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return errors.New("config: addr is required")
	case !strings.HasPrefix(c.BasePath, "/"):
		return fmt.Errorf("config: basePath %q must start with /", c.BasePath)
	case strings.TrimSpace(c.Namespace) == "":
		return errors.New("config: namespace is required")
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown logLevel %q", c.LogLevel)
	}
	return nil
}

// Flags overrides configuration values from the command line.
type Flags struct {
	set    *flag.FlagSet
	values map[string]*string
}

var flagTargets = map[string]func(*Config) *string{
	"addr":          func(c *Config) *string { return &c.Addr },
	"base-path":     func(c *Config) *string { return &c.BasePath },
	"namespace":     func(c *Config) *string { return &c.Namespace },
	"store":         func(c *Config) *string { return &c.Store },
	"schema":        func(c *Config) *string { return &c.SchemaDir },
	"themes":        func(c *Config) *string { return &c.ThemeDir },
	"locale":        func(c *Config) *string { return &c.Locale },
	"locales":       func(c *Config) *string { return &c.LocaleDir },
	"secret":        func(c *Config) *string { return &c.Secret },
	"capability":    func(c *Config) *string { return &c.Capability },
	"theme":         func(c *Config) *string { return &c.Theme.Name },
	"theme-variant": func(c *Config) *string { return &c.Theme.Variant },
	"log-level":     func(c *Config) *string { return &c.LogLevel },
}

var flagUsage = map[string]string{
	"addr":          "listen address",
	"base-path":     "admin mount path",
	"namespace":     "option name prefix",
	"store":         `option store: "memory" or a SQLite file`,
	"schema":        "directory of JSON, YAML or HCL schema extensions",
	"themes":        "directory of theme manifests",
	"locale":        "locale passed to the translator",
	"locales":       "directory of <locale>.yaml message catalogues",
	"secret":        "nonce signing secret (random when empty)",
	"capability":    "capability required by the admin routes",
	"theme":         "theme name",
	"theme-variant": "theme variant",
	"log-level":     "debug, info, warn or error",
}

// BindFlags registers one string flag per configuration key on set.
func BindFlags(set *flag.FlagSet) *Flags {
	f := &Flags{set: set, values: make(map[string]*string, len(flagTargets))}
	for name := range flagTargets {
		f.values[name] = set.String(name, "", flagUsage[name])
	}
	return f
}

// Apply copies the flags given on the command line into cfg. Flags left
// unset do not touch cfg, so an explicit empty value still overrides.
func (f *Flags) Apply(cfg *Config) {
	if f == nil || cfg == nil {
		return
	}
	f.set.Visit(func(fl *flag.Flag) {
		target, ok := flagTargets[fl.Name]
		if !ok {
			return
		}
		*target(cfg) = *f.values[fl.Name]
	})
}
