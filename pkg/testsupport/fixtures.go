package testsupport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"

	"github.com/goliatone/go-settings/pkg/schema"
)

// LoadSchema builds the default schema extended with every schema file under
// dir. Testing helpers fail the test on error to keep contract tests concise.
func LoadSchema(t *testing.T, dir string) schema.Schema {
	t.Helper()

	s, err := LoadSchemaFromDir(dir)
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}
	return s
}

// LoadSchemaFromDir is LoadSchema without testing.T for setup functions.
func LoadSchemaFromDir(dir string) (schema.Schema, error) {
	if dir == "" {
		return schema.Schema{}, errors.New("testsupport: schema dir is required")
	}
	s, err := schema.Build(schema.FromFS(os.DirFS(dir)))
	if err != nil {
		return schema.Schema{}, fmt.Errorf("testsupport: build schema: %w", err)
	}
	return s, nil
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// AssertGolden compares got with the golden file at path, rewriting the
// golden instead when UPDATE_GOLDENS is set.
func AssertGolden(t *testing.T, path string, got []byte) {
	t.Helper()
	if WriteMaybeGolden(t, path, got) {
		return
	}
	want := MustReadGoldenString(t, path)
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Fatalf("golden %s mismatch (-want +got):\n%s", path, diff)
	}
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}

var voidElements = map[string]struct{}{
	"area": {}, "base": {}, "br": {}, "col": {}, "embed": {}, "hr": {}, "img": {},
	"input": {}, "link": {}, "meta": {}, "source": {}, "track": {}, "wbr": {},
}

// WellFormed tokenizes fragment and reports the first unbalanced tag. Void
// elements may be written with or without a trailing slash.
func WellFormed(fragment string) error {
	tokenizer := html.NewTokenizer(strings.NewReader(fragment))
	var stack []string
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			if err := tokenizer.Err(); err != nil && !errors.Is(err, io.EOF) {
				return err
			}
			if len(stack) > 0 {
				return fmt.Errorf("unclosed <%s>", stack[len(stack)-1])
			}
			return nil
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if _, void := voidElements[string(name)]; !void {
				stack = append(stack, string(name))
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if _, void := voidElements[string(name)]; void {
				return fmt.Errorf("end tag for void element </%s>", name)
			}
			if len(stack) == 0 || stack[len(stack)-1] != string(name) {
				return fmt.Errorf("unexpected </%s>", name)
			}
			stack = stack[:len(stack)-1]
		}
	}
}

// MustBeWellFormed fails the test when WellFormed reports an error.
func MustBeWellFormed(t *testing.T, fragment string) {
	t.Helper()
	if err := WellFormed(fragment); err != nil {
		t.Fatalf("markup is not well-formed: %v\n%s", err, fragment)
	}
}

// Attr returns the value of the first attr attribute on the first element
// matching tag whose id (or name) equals key. It is enough for tests
// asserting on single controls.
func Attr(fragment, tag, key, attr string) (string, bool) {
	tokenizer := html.NewTokenizer(strings.NewReader(fragment))
	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			return "", false
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		token := tokenizer.Token()
		if token.Data != tag {
			continue
		}
		attrs := make(map[string]string, len(token.Attr))
		for _, a := range token.Attr {
			attrs[a.Key] = a.Val
		}
		if attrs["id"] != key && attrs["name"] != key && attrs["value"] != key {
			continue
		}
		value, ok := attrs[attr]
		return value, ok
	}
}
