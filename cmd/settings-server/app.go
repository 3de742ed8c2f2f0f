package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	theme "github.com/goliatone/go-theme"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-settings/internal/config"
	"github.com/goliatone/go-settings/pkg/host"
	"github.com/goliatone/go-settings/pkg/orchestrator"
	"github.com/goliatone/go-settings/pkg/registry"
	"github.com/goliatone/go-settings/pkg/render"
	"github.com/goliatone/go-settings/pkg/renderers/html"
	"github.com/goliatone/go-settings/pkg/schema"
	"github.com/goliatone/go-settings/pkg/store"
)

// pluginFile identifies the demo plugin in the action links table.
const pluginFile = "settings/settings.go"

type app struct {
	host   *host.Host
	orch   *orchestrator.Orchestrator
	closer io.Closer
}

func (a *app) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// newApp wires the option store, the host and the settings page from cfg.
func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	st, closer, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	logger.Info("store opened", slog.String("store", cfg.Store))

	a := &app{closer: closer}
	if err := a.wire(ctx, cfg, st, logger); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) wire(ctx context.Context, cfg config.Config, st store.Store, logger *slog.Logger) error {
	translator, err := loadCatalog(cfg.LocaleDir)
	if err != nil {
		return err
	}

	hostOpts := []host.OptionFn{
		host.WithBasePath(cfg.BasePath),
		host.WithSecret([]byte(cfg.Secret)),
		host.WithStore(st),
		host.WithAssets(html.AssetsFS()),
		host.WithLogger(logger),
	}
	if translator != nil {
		hostOpts = append(hostOpts, host.WithTranslator(translator, cfg.Locale))
	}
	if cfg.Capability != "" {
		hostOpts = append(hostOpts, host.WithGuard(host.RequireCapability(cfg.Capability, host.HeaderCapabilities)))
	}
	a.host = host.New(hostOpts...)

	extensions := []schema.Extension{schema.Extra()}
	if dir := strings.TrimSpace(cfg.SchemaDir); dir != "" {
		extensions = append(extensions, schema.FromFS(os.DirFS(dir)))
	}

	orchOpts := []orchestrator.Option{
		orchestrator.WithPage(registry.Page{
			Slug:       orchestrator.DefaultSlug,
			Title:      html.DefaultTitle,
			Namespace:  cfg.Namespace,
			Capability: cfg.Capability,
		}),
		orchestrator.WithExtensions(extensions...),
		orchestrator.WithStore(st),
		orchestrator.WithHTMLOptions(html.WithAssetBase(host.MountPath(cfg.BasePath, host.PathAssets))),
		orchestrator.WithLogger(logger),
	}
	if translator != nil {
		orchOpts = append(orchOpts, orchestrator.WithTranslator(translator, cfg.Locale))
	}
	if cfg.Theme.Name != "" || cfg.ThemeDir != "" {
		selector, err := loadThemes(cfg.ThemeDir)
		if err != nil {
			return err
		}
		orchOpts = append(orchOpts, orchestrator.WithThemeSelector(selector, cfg.Theme.Name, cfg.Theme.Variant))
	}
	a.orch = orchestrator.New(orchOpts...)

	if _, err := a.orch.Install(ctx, a.host); err != nil {
		return err
	}

	styles, scripts, err := a.orch.Assets()
	if err != nil {
		return err
	}
	for _, style := range styles {
		a.host.EnqueueStyle(style.Handle, style.Href, style.Deps...)
	}
	for _, script := range scripts {
		a.host.EnqueueScript(script.Handle, script.Src, script.Deps...)
	}
	a.host.AddActionLinks(pluginFile, a.orch.ActionLinks)
	return nil
}

func loadCatalog(dir string) (render.Translator, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, nil
	}
	catalog, err := render.LoadCatalog(os.DirFS(dir))
	if err != nil {
		return nil, err
	}
	return catalog, nil
}

// loadThemes registers every <name>.yaml manifest found in dir.
func loadThemes(dir string) (*html.Manifests, error) {
	selector, err := html.NewManifests()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(dir) == "" {
		return selector, nil
	}
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("themes: %w", err)
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("themes: read %s: %w", path, err)
		}
		var manifest theme.Manifest
		if err := yaml.Unmarshal(data, &manifest); err != nil {
			return nil, fmt.Errorf("themes: parse %s: %w", path, err)
		}
		if manifest.Name == "" {
			manifest.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		if err := selector.Add(&manifest); err != nil {
			return nil, err
		}
	}
	return selector, nil
}
