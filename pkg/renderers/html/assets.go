package html

import (
	"github.com/goliatone/go-settings/pkg/renderers/html/components"
	"github.com/goliatone/go-settings/pkg/schema"
)

// Assets lists the stylesheets and scripts a page for s needs, with URLs
// resolved through AssetURL. The page bundle is always last. Field types
// that are not in s contribute nothing.
func (r *Renderer) Assets(s schema.Schema) ([]components.Stylesheet, []components.Script) {
	var kinds []schema.FieldType
	seen := make(map[schema.FieldType]struct{})
	for _, field := range s.Fields() {
		if _, ok := seen[field.Type]; ok {
			continue
		}
		seen[field.Type] = struct{}{}
		kinds = append(kinds, field.Type)
	}

	styles, scripts := r.components.Assets(kinds)
	scripts = append(scripts, components.SettingsScript)

	for i := range styles {
		if styles[i].Href != "" {
			styles[i].Href = r.AssetURL(styles[i].Href)
		}
	}
	for i := range scripts {
		if scripts[i].Src != "" {
			scripts[i].Src = r.AssetURL(scripts[i].Src)
		}
	}
	return styles, scripts
}
