package components

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"sync"

	rendertemplate "github.com/goliatone/go-settings/pkg/render/template"
	"github.com/goliatone/go-settings/pkg/schema"
)

// Renderer writes the controls for one field into buf. The description that
// follows the controls is not part of a component.
type Renderer func(buf *bytes.Buffer, field schema.Field, data ComponentData) error

// ComponentData carries the per-field state and helpers a component needs.
type ComponentData struct {
	// Name is the option name the control posts under.
	Name string
	// Value is what the control shows: the stored value or the default.
	Value schema.Value
	// Found reports whether Value was read from the store.
	Found bool

	Translate     func(string) string
	Template      rendertemplate.TemplateRenderer
	ThemePartials map[string]string
	// AssetURL resolves a path inside the embedded asset bundle.
	AssetURL func(string) string
	// MediaURL resolves an attachment id to a thumbnail URL.
	MediaURL func(string) string
}

// T translates msg when a translator is configured.
func (d ComponentData) T(msg string) string {
	if d.Translate == nil {
		return msg
	}
	return d.Translate(msg)
}

// Asset returns the URL for an embedded asset path.
func (d ComponentData) Asset(path string) string {
	if d.AssetURL == nil {
		return path
	}
	return d.AssetURL(path)
}

// Stylesheet is a style the host enqueues under Handle.
type Stylesheet struct {
	Handle string
	Href   string
	Deps   []string
}

// Script is a script the host enqueues under Handle. Src is empty for
// widgets the host provides itself.
type Script struct {
	Handle string
	Src    string
	Deps   []string
	Inline string
}

// Descriptor bundles the renderer implementation with any asset dependencies.
type Descriptor struct {
	Type        schema.FieldType
	Renderer    Renderer
	Stylesheets []Stylesheet
	Scripts     []Script
}

// Registry tracks component descriptors keyed by field type. Callers can
// register new components or override defaults.
type Registry struct {
	mu         sync.RWMutex
	components map[schema.FieldType]Descriptor
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		components: make(map[schema.FieldType]Descriptor),
	}
}

// Clone returns a deep copy of the registry to allow isolated mutations.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cloned := New()
	for kind, descriptor := range r.components {
		cloned.components[kind] = cloneDescriptor(descriptor)
	}
	return cloned
}

// Register associates a descriptor with the field type. Existing entries are
// replaced.
func (r *Registry) Register(kind schema.FieldType, descriptor Descriptor) error {
	if kind = normalize(kind); kind == "" {
		return fmt.Errorf("components: field type is required")
	}
	if descriptor.Renderer == nil {
		return fmt.Errorf("components: renderer for %q is nil", kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	descriptor.Type = kind
	r.components[kind] = cloneDescriptor(descriptor)
	return nil
}

// MustRegister mirrors Register but panics on error.
func (r *Registry) MustRegister(kind schema.FieldType, descriptor Descriptor) {
	if err := r.Register(kind, descriptor); err != nil {
		panic(err)
	}
}

// Descriptor fetches a descriptor by field type.
func (r *Registry) Descriptor(kind schema.FieldType) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	descriptor, ok := r.components[normalize(kind)]
	if !ok {
		return Descriptor{}, false
	}
	return cloneDescriptor(descriptor), true
}

// Types returns the registered field types in sorted order.
func (r *Registry) Types() []schema.FieldType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]schema.FieldType, 0, len(r.components))
	for kind := range r.components {
		kinds = append(kinds, kind)
	}
	slices.Sort(kinds)
	return kinds
}

// Render writes the controls for field using the component registered for
// its type.
func (r *Registry) Render(buf *bytes.Buffer, field schema.Field, data ComponentData) error {
	descriptor, ok := r.Descriptor(field.Type)
	if !ok {
		return fmt.Errorf("components: no component registered for field type %q (field %q)", field.Type, field.ID)
	}
	return descriptor.Renderer(buf, field, data)
}

// Assets resolves the stylesheets and scripts needed by the given field
// types. Entries are deduplicated by handle, first occurrence wins.
func (r *Registry) Assets(kinds []schema.FieldType) (stylesheets []Stylesheet, scripts []Script) {
	if len(kinds) == 0 {
		return nil, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	seenStyles := make(map[string]struct{})
	seenScripts := make(map[string]struct{})

	for _, kind := range kinds {
		descriptor, ok := r.components[normalize(kind)]
		if !ok {
			continue
		}
		for _, style := range descriptor.Stylesheets {
			key := styleKey(style)
			if key == "" {
				continue
			}
			if _, exists := seenStyles[key]; exists {
				continue
			}
			seenStyles[key] = struct{}{}
			stylesheets = append(stylesheets, cloneStylesheet(style))
		}
		for _, script := range descriptor.Scripts {
			key := scriptKey(script)
			if _, exists := seenScripts[key]; exists {
				continue
			}
			seenScripts[key] = struct{}{}
			scripts = append(scripts, cloneScript(script))
		}
	}
	return stylesheets, scripts
}

func cloneDescriptor(src Descriptor) Descriptor {
	clone := Descriptor{
		Type:        src.Type,
		Renderer:    src.Renderer,
		Stylesheets: make([]Stylesheet, len(src.Stylesheets)),
		Scripts:     make([]Script, len(src.Scripts)),
	}
	for idx, style := range src.Stylesheets {
		clone.Stylesheets[idx] = cloneStylesheet(style)
	}
	for idx, script := range src.Scripts {
		clone.Scripts[idx] = cloneScript(script)
	}
	return clone
}

func cloneStylesheet(src Stylesheet) Stylesheet {
	return Stylesheet{Handle: src.Handle, Href: src.Href, Deps: slices.Clone(src.Deps)}
}

func cloneScript(src Script) Script {
	return Script{Handle: src.Handle, Src: src.Src, Deps: slices.Clone(src.Deps), Inline: src.Inline}
}

func styleKey(style Stylesheet) string {
	if style.Handle != "" {
		return style.Handle
	}
	return style.Href
}

func scriptKey(script Script) string {
	if script.Handle != "" {
		return "handle:" + script.Handle
	}
	if script.Src != "" {
		return "src:" + script.Src
	}
	return "inline:" + script.Inline
}

func normalize(kind schema.FieldType) schema.FieldType {
	return schema.FieldType(strings.ToLower(strings.TrimSpace(string(kind))))
}
