package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseYAMLAndJSON(t *testing.T) {
	t.Parallel()

	yamlRaw := []byte(`
template: " pages/blog.html "
data: blog.yaml
select: "#articles"
sanitize: true
vocabulary:
  bind: tp-bind
  iterate: [tp-each, " ", tp-for]
`)
	want := Config{
		Template: "pages/blog.html",
		Data:     "blog.yaml",
		Select:   "#articles",
		Sanitize: true,
		Vocabulary: Vocabulary{
			Bind:    "tp-bind",
			Iterate: []string{"tp-each", "tp-for"},
		},
	}

	got, err := Parse(yamlRaw, "temples.yaml")
	if err != nil {
		t.Fatalf("parse yaml: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("yaml config mismatch (-want +got):\n%s", diff)
	}

	jsonRaw := []byte(`{"template":"pages/blog.html","data":"blog.yaml","select":"#articles","sanitize":true,"vocabulary":{"bind":"tp-bind","iterate":["tp-each","tp-for"]}}`)
	got, err = Parse(jsonRaw, "temples.json")
	if err != nil {
		t.Fatalf("parse json: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("json config mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRejectsEmptyAndInvalid(t *testing.T) {
	t.Parallel()

	if _, err := Parse([]byte("  \n"), "empty.yaml"); err == nil {
		t.Fatalf("expected error for empty config")
	}
	if _, err := Parse([]byte("template: [unclosed"), "bad.yaml"); err == nil {
		t.Fatalf("expected error for invalid yaml")
	}
}

func TestLoadReadsFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "temples.yaml")
	if err := os.WriteFile(path, []byte("template: page.html\nwatch: true\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Template != "page.html" || !cfg.Watch {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestMergeAndValidate(t *testing.T) {
	t.Parallel()

	base := Config{Template: "a.html", Data: "a.yaml", Vocabulary: Vocabulary{Bind: "x-bind"}}
	merged := base.Merge(Config{Data: "b.yaml", Verbose: true})

	want := Config{Template: "a.html", Data: "b.yaml", Verbose: true, Vocabulary: Vocabulary{Bind: "x-bind"}}
	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merge mismatch (-want +got):\n%s", diff)
	}
	if err := merged.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if err := (Config{}).Validate(); err == nil {
		t.Fatalf("expected missing template error")
	}
	if err := (Config{Template: "a.html", Select: "main"}).Validate(); err == nil {
		t.Fatalf("expected invalid select error")
	}
}
