package main

import (
	"flag"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/zipang/temples/internal/config"
)

func TestParseFlagsMergesConfigFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "temples.yaml")
	if err := os.WriteFile(configPath, []byte("template: page.html\ndata: page.yaml\nsanitize: true\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	fs := flag.NewFlagSet("temples", flag.ContinueOnError)
	cfg, err := parseFlags(fs, []string{"-config", configPath, "-data", "other.yaml", "-v"})
	if err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	want := config.Config{Template: "page.html", Data: "other.yaml", Sanitize: true, Verbose: true}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFlagsRequiresTemplate(t *testing.T) {
	fs := flag.NewFlagSet("temples", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if _, err := parseFlags(fs, nil); err == nil {
		t.Fatalf("expected missing template error")
	}
}

func TestRenderTemplateFragmentAndSelection(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	data := map[string]any{"title": "Hello", "tags": []any{"a", "b"}}

	out, err := renderTemplate(config.Config{Template: "page.html"}, logger, `<h1 data-bind="title"></h1>`, data)
	if err != nil {
		t.Fatalf("render fragment: %v", err)
	}
	if out != `<h1>Hello</h1>` {
		t.Fatalf("unexpected fragment output %q", out)
	}

	doc := `<html><body><header data-bind="title"></header><ul id="tags" data-each="tags"><li data-bind="tag"></li></ul></body></html>`
	out, err = renderTemplate(config.Config{Template: "page.html", Select: "#tags"}, logger, doc, data)
	if err != nil {
		t.Fatalf("render selection: %v", err)
	}
	if out != `<ul id="tags"><li>a</li><li>b</li></ul>` {
		t.Fatalf("unexpected selection output %q", out)
	}
}

func TestRenderOnceWritesOutputFile(t *testing.T) {
	dir := t.TempDir()
	template := filepath.Join(dir, "card.html")
	data := filepath.Join(dir, "card.yaml")
	output := filepath.Join(dir, "out.html")

	if err := os.WriteFile(template, []byte(`<div class="card" data-bind="class[new|old]=state,md=body"></div>`), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	if err := os.WriteFile(data, []byte("state: new\nbody: \"*hi*\"\n"), 0o644); err != nil {
		t.Fatalf("write data: %v", err)
	}

	cfg := config.Config{Template: template, Data: data, Output: output}
	if err := renderOnce(cfg, slog.New(slog.NewTextHandler(io.Discard, nil))); err != nil {
		t.Fatalf("render once: %v", err)
	}

	got, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	want := "<div class=\"card new\"><p><em>hi</em></p>\n</div>"
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}
