package render

import (
	"strings"

	"github.com/goliatone/go-settings/pkg/schema"
)

// Subset narrows a page to some sections and/or fields. An empty subset keeps
// everything. A section is kept when it is listed or when at least one of
// its fields is.
type Subset struct {
	Sections []string
	Fields   []string
}

// Empty reports whether the subset filters nothing.
func (s Subset) Empty() bool {
	return len(normaliseTokens(s.Sections)) == 0 && len(normaliseTokens(s.Fields)) == 0
}

// ApplySubset returns a filtered copy of s. Listed sections keep all their
// fields; otherwise only listed fields survive, and sections left without
// fields are dropped.
func ApplySubset(s schema.Schema, subset Subset) schema.Schema {
	sections := normaliseTokens(subset.Sections)
	fields := normaliseTokens(subset.Fields)
	if len(sections) == 0 && len(fields) == 0 {
		return s.Clone()
	}

	var out schema.Schema
	for _, section := range s.Clone().Sections {
		if _, ok := sections[normaliseToken(section.Key)]; ok {
			out.Sections = append(out.Sections, section)
			continue
		}
		if len(fields) == 0 {
			continue
		}
		kept := section.Fields[:0]
		for _, field := range section.Fields {
			if _, ok := fields[normaliseToken(field.ID)]; ok {
				kept = append(kept, field)
			}
		}
		if len(kept) == 0 {
			continue
		}
		section.Fields = kept
		out.Sections = append(out.Sections, section)
	}
	return out
}

// ParseTokenList splits a comma separated flag value into trimmed tokens.
func ParseTokenList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' })
	tokens := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		token := strings.TrimSpace(part)
		if token == "" {
			continue
		}
		if _, exists := seen[token]; exists {
			continue
		}
		seen[token] = struct{}{}
		tokens = append(tokens, token)
	}
	return tokens
}

func normaliseTokens(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	result := make(map[string]struct{}, len(values))
	for _, value := range values {
		token := normaliseToken(value)
		if token == "" {
			continue
		}
		result[token] = struct{}{}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func normaliseToken(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
