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
	"gopkg.in/yaml.v3"

	"github.com/zipang/temples/pkg/render"
)

// MustCompile compiles markup or fails the test.
func MustCompile(t *testing.T, markup string, options ...render.Option) *render.Template {
	t.Helper()

	tpl, err := render.CompileString(markup, options...)
	if err != nil {
		t.Fatalf("compile template: %v", err)
	}
	return tpl
}

// MustRender renders data through tpl and returns the serialised output.
func MustRender(t *testing.T, tpl *render.Template, data any) string {
	t.Helper()

	out, err := tpl.RenderString(data)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	return out
}

// LoadData reads a YAML (or JSON) fixture into a generic map, returning an
// error for callers managing setup outside of *testing.T.
func LoadData(path string) (map[string]any, error) {
	if path == "" {
		return nil, errors.New("testsupport: data path is required")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read data: %w", err)
	}
	var out map[string]any
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("testsupport: unmarshal data: %w", err)
	}
	return out, nil
}

// MustLoadData is LoadData for tests.
func MustLoadData(t *testing.T, path string) map[string]any {
	t.Helper()

	data, err := LoadData(path)
	if err != nil {
		t.Fatalf("load data: %v", err)
	}
	return data
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// CompareMarkup diffs two markup strings after collapsing whitespace between
// tags, so goldens can be indented freely.
func CompareMarkup(want, got string) string {
	return cmp.Diff(NormalizeMarkup(want), NormalizeMarkup(got))
}

// NormalizeMarkup trims every line and drops blank ones.
func NormalizeMarkup(markup string) string {
	var b strings.Builder
	for _, line := range strings.Split(markup, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			b.WriteString(trimmed)
		}
	}
	return b.String()
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

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents. Tests can assert
// the renderer returns and writes the same payload without duplicating buffer
// setup.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
