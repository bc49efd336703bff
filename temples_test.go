package temples_test

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/zipang/temples"
	"github.com/zipang/temples/pkg/dom"
	"github.com/zipang/temples/pkg/lookup"
	"github.com/zipang/temples/pkg/render"
)

func TestEngineCompileAndRender(t *testing.T) {
	t.Parallel()

	engine := temples.New()
	if _, err := engine.Compile("title", `<h1 data-bind="title"></h1>`); err != nil {
		t.Fatalf("compile: %v", err)
	}

	for _, title := range []string{"X", "Y"} {
		got, err := engine.Render("title", map[string]any{"title": title})
		if err != nil {
			t.Fatalf("render: %v", err)
		}
		if diff := cmp.Diff("<h1>"+title+"</h1>", got); diff != "" {
			t.Fatalf("output mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestEngineCompilesElementsOfTheDocument(t *testing.T) {
	t.Parallel()

	doc, err := dom.ParseDocument(`<html><head></head><body><h1 data-bind="title"></h1><div id="post"><p data-bind="body"></p></div></body></html>`)
	if err != nil {
		t.Fatalf("parse document: %v", err)
	}
	engine := temples.New(temples.WithDocument(doc))

	if _, err := engine.Compile("#post"); err != nil {
		t.Fatalf("compile #post: %v", err)
	}
	post, err := engine.Render("#post", map[string]any{"body": "B"})
	if err != nil {
		t.Fatalf("render #post: %v", err)
	}
	if diff := cmp.Diff(`<div id="post"><p>B</p></div>`, post); diff != "" {
		t.Fatalf("post mismatch (-want +got):\n%s", diff)
	}

	page, err := engine.RenderDocument(map[string]any{"title": "T", "body": "ignored"})
	if err != nil {
		t.Fatalf("render document: %v", err)
	}
	want := `<html><head></head><body><h1>T</h1><div id="post"><p>B</p></div></body></html>`
	if diff := cmp.Diff(want, page); diff != "" {
		t.Fatalf("document mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"#post", temples.DocumentName}, engine.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestEngineLoadsUnknownNamesOnRender(t *testing.T) {
	t.Parallel()

	engine := temples.New(temples.WithLoader(temples.NewFSLoader(fstest.MapFS{
		"greeting.html": {Data: []byte(`<p data-bind="name"></p>`)},
	})))

	got, err := engine.Render("greeting", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != `<p>Ada</p>` {
		t.Fatalf("unexpected output %q", got)
	}
	if _, err := engine.Template("greeting"); err != nil {
		t.Fatalf("loaded template should be registered: %v", err)
	}
}

func TestEngineErrors(t *testing.T) {
	t.Parallel()

	doc, err := dom.ParseDocument(`<html><body></body></html>`)
	if err != nil {
		t.Fatalf("parse document: %v", err)
	}

	cases := []struct {
		name   string
		engine *temples.Engine
		call   func(*temples.Engine) error
		want   error
	}{
		{"render unknown", temples.New(), func(e *temples.Engine) error {
			_, err := e.Render("missing", nil)
			return err
		}, temples.ErrTemplateNotFound},
		{"id without document", temples.New(), func(e *temples.Engine) error {
			_, err := e.Compile("#post")
			return err
		}, temples.ErrNoDocument},
		{"id not in document", temples.New(temples.WithDocument(doc)), func(e *temples.Engine) error {
			_, err := e.Compile("#post")
			return err
		}, temples.ErrElementNotFound},
		{"name without loader", temples.New(), func(e *temples.Engine) error {
			_, err := e.Compile("page")
			return err
		}, temples.ErrNoLoader},
		{"document without document", temples.New(), func(e *temples.Engine) error {
			_, err := e.RenderDocument(nil)
			return err
		}, temples.ErrNoDocument},
		{"compile error", temples.New(), func(e *temples.Engine) error {
			_, err := e.Compile("list", `<ul data-each="tags"></ul>`)
			return err
		}, render.ErrMissingItemTemplate},
	}

	for _, tc := range cases {
		if err := tc.call(tc.engine); !errors.Is(err, tc.want) {
			t.Errorf("%s: error = %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestEngineRenderErrorKeepsTemplateUsable(t *testing.T) {
	t.Parallel()

	engine := temples.New()
	if _, err := engine.Compile("tags", `<ul data-each="tags"><li data-bind="tag"></li></ul>`); err != nil {
		t.Fatalf("compile: %v", err)
	}

	_, err := engine.Render("tags", map[string]any{"tags": true})
	var notIterable *lookup.NotIterableError
	if !errors.As(err, &notIterable) {
		t.Fatalf("expected NotIterableError, got %v", err)
	}

	got, err := engine.Render("tags", map[string]any{"tags": []string{"a"}})
	if err != nil {
		t.Fatalf("render after failure: %v", err)
	}
	if got != `<ul><li>a</li></ul>` {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestEngineDestroy(t *testing.T) {
	t.Parallel()

	engine := temples.New()
	for _, name := range []string{"a", "b", "c"} {
		if _, err := engine.Compile(name, `<i data-bind="x"></i>`); err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
	}
	b, err := engine.Template("b")
	if err != nil {
		t.Fatalf("template b: %v", err)
	}

	engine.Destroy("b", "unknown")
	if diff := cmp.Diff([]string{"a", "c"}, engine.Names()); diff != "" {
		t.Fatalf("names after destroy mismatch (-want +got):\n%s", diff)
	}
	if _, err := b.Render(nil); !errors.Is(err, render.ErrDestroyed) {
		t.Fatalf("destroyed template should refuse to render, got %v", err)
	}

	engine.Destroy()
	if len(engine.Names()) != 0 {
		t.Fatalf("destroy without names should clear every template")
	}
}

func TestEngineRecompileReplacesTemplate(t *testing.T) {
	t.Parallel()

	engine := temples.New()
	first, err := engine.Compile("p", `<p data-bind="a"></p>`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if _, err := engine.Compile("p", `<b data-bind="a"></b>`); err != nil {
		t.Fatalf("recompile: %v", err)
	}
	if _, err := first.Render(nil); !errors.Is(err, render.ErrDestroyed) {
		t.Fatalf("replaced template should be destroyed, got %v", err)
	}
	got, err := engine.Render("p", map[string]any{"a": "A"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != `<b>A</b>` {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestEngineRecompileOfDocumentElementKeepsTemplate(t *testing.T) {
	t.Parallel()

	doc, err := dom.ParseDocument(`<html><body><div id="post"><p data-bind="body"></p></div></body></html>`)
	if err != nil {
		t.Fatalf("parse document: %v", err)
	}
	engine := temples.New(temples.WithDocument(doc))

	first, err := engine.Compile("#post")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if _, err := engine.Render("#post", map[string]any{"body": "one"}); err != nil {
		t.Fatalf("render: %v", err)
	}

	again, err := engine.Compile("#post")
	if err != nil {
		t.Fatalf("recompile: %v", err)
	}
	if again != first {
		t.Fatalf("recompiling a document element should return the registered template")
	}
	if len(again.Bindings()) != 1 {
		t.Fatalf("expected the template to keep its binding, got %d", len(again.Bindings()))
	}

	got, err := engine.Render("#post", map[string]any{"body": "two"})
	if err != nil {
		t.Fatalf("render after recompile: %v", err)
	}
	if diff := cmp.Diff(`<div id="post"><p>two</p></div>`, got); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}

	if _, err := engine.RenderDocument(map[string]any{"body": "ignored"}); err != nil {
		t.Fatalf("render document: %v", err)
	}
	if _, err := engine.Compile(temples.DocumentName); err != nil {
		t.Fatalf("recompile document: %v", err)
	}
	page, err := engine.RenderDocument(nil)
	if err != nil {
		t.Fatalf("render document again: %v", err)
	}
	if diff := cmp.Diff(`<html><head></head><body><div id="post"><p>two</p></div></body></html>`, page); diff != "" {
		t.Fatalf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestEngineRenderOptions(t *testing.T) {
	t.Parallel()

	engine := temples.New(temples.WithRenderOptions(render.WithUGCSanitizer()))
	if _, err := engine.Compile("body", `<div data-bind="html=body"></div>`); err != nil {
		t.Fatalf("compile: %v", err)
	}
	var b strings.Builder
	if err := engine.Execute(&b, "body", map[string]any{"body": `<i>x</i><script>bad()</script>`}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got := b.String(); got != `<div><i>x</i></div>` {
		t.Fatalf("unexpected output %q", got)
	}
}

func ExampleEngine() {
	engine := temples.New()
	if _, err := engine.Compile("tags", `<ul data-each="tags"><li data-bind="tag"></li></ul>`); err != nil {
		log.Fatal(err)
	}

	out, err := engine.Render("tags", map[string]any{"tags": []string{"go", "html"}})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(out)
	// Output: <ul><li>go</li><li>html</li></ul>
}
