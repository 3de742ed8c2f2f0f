package html

import (
	"fmt"
	"maps"
	"sort"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
)

// Partial keys a theme may override.
const (
	PartialPage = "page"
)

// ThemeConfig derives the renderer configuration for a theme selection.
// Variant tokens, templates and asset files override the manifest's. Every
// token is also exposed as a CSS custom property named "--<token>".
func ThemeConfig(selection *theme.Selection, fallbacks map[string]string) *theme.RendererConfig {
	if selection == nil {
		return nil
	}

	cfg := &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: make(map[string]string, len(fallbacks)),
		Tokens:   make(map[string]string),
		CSSVars:  make(map[string]string),
	}
	maps.Copy(cfg.Partials, fallbacks)

	prefix := ""
	files := make(map[string]string)
	if manifest := selection.Manifest; manifest != nil {
		if cfg.Theme == "" {
			cfg.Theme = manifest.Name
		}
		maps.Copy(cfg.Tokens, manifest.Tokens)
		maps.Copy(cfg.Partials, manifest.Templates)
		prefix = manifest.Assets.Prefix
		maps.Copy(files, manifest.Assets.Files)

		if variant, ok := manifest.Variants[selection.Variant]; ok {
			maps.Copy(cfg.Tokens, variant.Tokens)
			maps.Copy(cfg.Partials, variant.Templates)
			if variant.Assets.Prefix != "" {
				prefix = variant.Assets.Prefix
			}
			maps.Copy(files, variant.Assets.Files)
		}
	}

	for key, value := range cfg.Tokens {
		cfg.CSSVars["--"+key] = value
	}

	cfg.AssetURL = func(key string) string {
		file, ok := files[key]
		if !ok || file == "" {
			return ""
		}
		if strings.Contains(file, "://") || strings.HasPrefix(file, "/") {
			return file
		}
		return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(file, "/")
	}
	return cfg
}

// SelectTheme asks selector for name/variant and derives the renderer
// configuration.
func SelectTheme(selector theme.ThemeSelector, name, variant string, fallbacks map[string]string) (*theme.RendererConfig, error) {
	if selector == nil {
		return nil, fmt.Errorf("html renderer: theme selector is nil")
	}
	selection, err := selector.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("html renderer: select theme %q: %w", name, err)
	}
	return ThemeConfig(selection, fallbacks), nil
}

// Manifests is a theme.ThemeSelector over a fixed set of manifests. An
// empty name selects the first registered manifest.
type Manifests struct {
	mu        sync.RWMutex
	manifests map[string]*theme.Manifest
	first     string
}

var _ theme.ThemeSelector = (*Manifests)(nil)

// NewManifests registers the given manifests.
func NewManifests(manifests ...*theme.Manifest) (*Manifests, error) {
	m := &Manifests{manifests: make(map[string]*theme.Manifest)}
	for _, manifest := range manifests {
		if err := m.Add(manifest); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Add registers manifest under its name. Duplicate names are an error.
func (m *Manifests) Add(manifest *theme.Manifest) error {
	if manifest == nil {
		return fmt.Errorf("html renderer: theme manifest is nil")
	}
	name := strings.TrimSpace(manifest.Name)
	if name == "" {
		return fmt.Errorf("html renderer: theme manifest name is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.manifests[name]; exists {
		return fmt.Errorf("html renderer: theme %q already registered", name)
	}
	m.manifests[name] = manifest
	if m.first == "" {
		m.first = name
	}
	return nil
}

// Select implements theme.ThemeSelector. An unknown variant is an error.
func (m *Manifests) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if name = strings.TrimSpace(name); name == "" {
		name = m.first
	}
	manifest, ok := m.manifests[name]
	if !ok {
		return nil, fmt.Errorf("html renderer: unknown theme %q", name)
	}
	variant = strings.TrimSpace(variant)
	if variant != "" {
		if _, ok := manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("html renderer: theme %q has no variant %q", name, variant)
		}
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

// cssVarsStyle renders CSS custom properties as an inline style, sorted by
// name.
func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(vars[name])
		b.WriteByte(';')
	}
	return b.String()
}
