package schema

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

// Document is the on-disk shape of a schema file in JSON or YAML.
type Document struct {
	Sections []Section `json:"sections" yaml:"sections"`
}

// LoadFS walks fsys in lexical order and parses every .json, .yaml, .yml and
// .hcl file into sections. A section key declared by two files is an error.
// When fsys is nil the result is empty.
func LoadFS(fsys fs.FS) ([]Section, error) {
	if fsys == nil {
		return nil, nil
	}

	var out []Section
	owners := make(map[string]string)

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isSchemaFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("schema: read %s: %w", path, err)
		}

		sections, err := ParseFile(path, data)
		if err != nil {
			return err
		}

		for _, section := range sections {
			key := strings.TrimSpace(section.Key)
			if key == "" {
				return fmt.Errorf("schema: file %s defines a section without a key", path)
			}
			if owner, exists := owners[key]; exists {
				return fmt.Errorf("schema: duplicate section %q (file %s, first declared in %s)", key, path, owner)
			}
			owners[key] = path
			section.Key = key
			out = append(out, section)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FromFS returns an extension that upserts every section found by LoadFS.
func FromFS(fsys fs.FS) Extension {
	return ExtensionFunc(func(s *Schema) error {
		sections, err := LoadFS(fsys)
		if err != nil {
			return err
		}
		for _, section := range sections {
			s.Upsert(section)
		}
		return nil
	})
}

// ParseFile decodes a single schema document. The format is picked from the
// file extension.
func ParseFile(path string, data []byte) ([]Section, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("schema: file %s is empty", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		var doc Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("schema: parse %s: %w", path, err)
		}
		return doc.Sections, nil
	case ".yaml", ".yml":
		var doc Document
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("schema: parse %s: %w", path, err)
		}
		return doc.Sections, nil
	case ".hcl":
		return parseHCL(path, data)
	default:
		return nil, fmt.Errorf("schema: unsupported file %s", path)
	}
}

func isSchemaFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml", ".hcl":
		return true
	default:
		return false
	}
}

// HCL documents use labelled blocks so option order survives decoding:
//
//	section "extra" {
//	  title = "Extra"
//	  field "os" {
//	    type    = "select_multi"
//	    default = ["linux"]
//	    option "linux" { label = "Linux" }
//	  }
//	}
type hclDocument struct {
	Sections []*hclSection `hcl:"section,block"`
}

type hclSection struct {
	Key         string      `hcl:"key,label"`
	Title       string      `hcl:"title,optional"`
	Description string      `hcl:"description,optional"`
	Fields      []*hclField `hcl:"field,block"`
}

type hclField struct {
	ID          string       `hcl:"id,label"`
	Label       string       `hcl:"label,optional"`
	Description string       `hcl:"description,optional"`
	Type        string       `hcl:"type"`
	Placeholder string       `hcl:"placeholder,optional"`
	Callback    string       `hcl:"callback,optional"`
	Default     *cty.Value   `hcl:"default,optional"`
	Options     []*hclOption `hcl:"option,block"`
}

type hclOption struct {
	Key   string `hcl:"key,label"`
	Label string `hcl:"label,optional"`
}

func parseHCL(path string, data []byte) ([]Section, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("schema: parse %s: %w", path, diags)
	}

	var doc hclDocument
	if diags := gohcl.DecodeBody(file.Body, nil, &doc); diags.HasErrors() {
		return nil, fmt.Errorf("schema: decode %s: %w", path, diags)
	}

	sections := make([]Section, 0, len(doc.Sections))
	for _, raw := range doc.Sections {
		section := Section{Key: raw.Key, Title: raw.Title, Description: raw.Description}
		for _, rawField := range raw.Fields {
			field := Field{
				ID:          rawField.ID,
				Label:       rawField.Label,
				Description: rawField.Description,
				Type:        FieldType(rawField.Type),
				Placeholder: rawField.Placeholder,
				Callback:    rawField.Callback,
			}
			for _, option := range rawField.Options {
				label := option.Label
				if label == "" {
					label = option.Key
				}
				field.Options = append(field.Options, Option{Key: option.Key, Label: label})
			}
			if rawField.Default != nil {
				value, err := valueFromCty(*rawField.Default)
				if err != nil {
					return nil, fmt.Errorf("schema: %s field %q default: %w", path, rawField.ID, err)
				}
				field.Default = value
			}
			section.Fields = append(section.Fields, field)
		}
		sections = append(sections, section)
	}
	return sections, nil
}

func valueFromCty(v cty.Value) (Value, error) {
	if v.IsNull() {
		return Value{}, nil
	}
	if !v.IsKnown() {
		return Value{}, fmt.Errorf("value is not known")
	}

	t := v.Type()
	if t.IsTupleType() || t.IsListType() || t.IsSetType() {
		keys := make([]string, 0, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			_, elem := it.Element()
			s, err := ctyString(elem)
			if err != nil {
				return Value{}, err
			}
			keys = append(keys, s)
		}
		return Set(keys...), nil
	}

	s, err := ctyString(v)
	if err != nil {
		return Value{}, err
	}
	return Scalar(s), nil
}

func ctyString(v cty.Value) (string, error) {
	if v.IsNull() {
		return "", nil
	}
	switch v.Type() {
	case cty.String:
		return v.AsString(), nil
	case cty.Number:
		return v.AsBigFloat().Text('f', -1), nil
	case cty.Bool:
		if v.True() {
			return CheckboxOn, nil
		}
		return "", nil
	default:
		return "", fmt.Errorf("unsupported type %s", v.Type().FriendlyName())
	}
}
