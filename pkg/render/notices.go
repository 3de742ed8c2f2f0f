package render

import (
	"sort"
	"strings"

	"github.com/goliatone/go-settings/pkg/schema"
)

// Notice kinds match the admin notice classes the page template emits.
const (
	NoticeUpdated = "updated"
	NoticeError   = "error"
)

// Notice is an admin message shown above the settings form.
type Notice struct {
	Type    string
	Code    string
	Message string
}

// Updated returns the notice shown after a successful save.
func Updated(message string) Notice {
	return Notice{Type: NoticeUpdated, Code: "settings_updated", Message: message}
}

// MergeNotices concatenates notice slices, trimming messages and dropping
// duplicates while keeping the first occurrence.
func MergeNotices(existing []Notice, extras ...Notice) []Notice {
	combined := make([]Notice, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)

	out := make([]Notice, 0, len(combined))
	seen := make(map[string]struct{}, len(combined))
	for _, notice := range combined {
		notice.Message = strings.TrimSpace(notice.Message)
		if notice.Message == "" {
			continue
		}
		if notice.Type == "" {
			notice.Type = NoticeError
		}
		key := notice.Type + "\x00" + notice.Message
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, notice)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// FieldNotices turns per-field messages into error notices. Keys may be a
// field id or the namespaced option name; known fields are prefixed with
// their label and listed in schema order, unknown keys follow sorted.
func FieldNotices(s schema.Schema, namespace string, messages map[string][]string) []Notice {
	if len(messages) == 0 {
		return nil
	}

	used := make(map[string]struct{}, len(messages))
	var notices []Notice
	for _, field := range s.Fields() {
		for _, key := range []string{field.ID, schema.OptionName(namespace, field.ID)} {
			msgs, ok := messages[key]
			if !ok {
				continue
			}
			used[key] = struct{}{}
			label := strings.TrimSpace(field.Label)
			if label == "" {
				label = field.ID
			}
			for _, msg := range normalizeMessages(msgs) {
				notices = append(notices, Notice{Type: NoticeError, Code: field.ID, Message: label + ": " + msg})
			}
		}
	}

	var rest []string
	for key := range messages {
		if _, ok := used[key]; !ok {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		for _, msg := range normalizeMessages(messages[key]) {
			notices = append(notices, Notice{Type: NoticeError, Code: key, Message: msg})
		}
	}
	return MergeNotices(nil, notices...)
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}
