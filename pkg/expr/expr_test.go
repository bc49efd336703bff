package expr

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestParseBindingTargets(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want Binding
	}{
		{"title", Binding{Raw: "title", Target: TargetAuto, Path: ParsePath("title")}},
		{"text=author.name", Binding{Raw: "text=author.name", Target: TargetText, Path: ParsePath("author.name")}},
		{"HTML = article.body", Binding{Raw: "HTML = article.body", Target: TargetHTML, Path: ParsePath("article.body")}},
		{"md=article.notes", Binding{Raw: "md=article.notes", Target: TargetMarkdown, Path: ParsePath("article.notes")}},
		{"value=user.email", Binding{Raw: "value=user.email", Target: TargetValue, Path: ParsePath("user.email")}},
		{"class=article.type", Binding{Raw: "class=article.type", Target: TargetClass, Path: ParsePath("article.type")}},
		{"href=article.source", Binding{Raw: "href=article.source", Target: TargetAttr, Attr: "href", Path: ParsePath("article.source")}},
		{
			"class[fiction|quote| tweet]=article.type",
			Binding{
				Raw:    "class[fiction|quote| tweet]=article.type",
				Target: TargetClassEnum,
				Enum:   []string{"fiction", "quote", "tweet"},
				Path:   ParsePath("article.type"),
			},
		},
		{
			"Class[isActive|isDone]=state",
			Binding{
				Raw:    "Class[isActive|isDone]=state",
				Target: TargetClassEnum,
				Enum:   []string{"isActive", "isDone"},
				Path:   ParsePath("state"),
			},
		},
	}

	for _, tc := range cases {
		got, err := ParseBinding(tc.raw)
		if err != nil {
			t.Fatalf("ParseBinding(%q) returned error: %v", tc.raw, err)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("ParseBinding(%q) mismatch (-want +got):\n%s", tc.raw, diff)
		}
	}
}

func TestParseBindingsSplitsOnCommas(t *testing.T) {
	t.Parallel()

	got, err := ParseBindings("article.content , class[fiction|quote]=article.type,,")
	if err != nil {
		t.Fatalf("ParseBindings returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 bindings, got %d", len(got))
	}
	if got[0].Target != TargetAuto || got[1].Target != TargetClassEnum {
		t.Fatalf("unexpected targets %v, %v", got[0].Target, got[1].Target)
	}
}

func TestParseBindingErrors(t *testing.T) {
	t.Parallel()

	cases := map[string]error{
		"":                ErrEmptyExpression,
		"href=":           ErrEmptyExpression,
		"class[]=a":       ErrInvalidTarget,
		"class[a|b=type":  ErrInvalidTarget,
		"on click=handle": ErrInvalidTarget,
	}
	for raw, want := range cases {
		_, err := ParseBinding(raw)
		if !errors.Is(err, want) {
			t.Errorf("ParseBinding(%q) error = %v, want %v", raw, err, want)
		}
	}
}

func TestParseLoopForms(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw        string
		wantVar    string
		wantSteps  []string
		wantRawCol string
	}{
		{"tags", "tag", []string{"tags"}, "tags"},
		{"blog.articles", "article", []string{"blog", "articles"}, "blog.articles"},
		{"tag : articles.tags", "tag", []string{"articles", "tags"}, "articles.tags"},
		{"t:tags", "t", []string{"tags"}, "tags"},
		{"child from family.children", "child", []string{"family", "children"}, "family.children"},
		{"series", "serie", []string{"series"}, "series"},
	}

	for _, tc := range cases {
		loop, err := ParseLoop(tc.raw)
		if err != nil {
			t.Fatalf("ParseLoop(%q) returned error: %v", tc.raw, err)
		}
		if loop.Var != tc.wantVar {
			t.Errorf("ParseLoop(%q) var = %q, want %q", tc.raw, loop.Var, tc.wantVar)
		}
		if diff := cmp.Diff(tc.wantSteps, loop.Collection.Steps); diff != "" {
			t.Errorf("ParseLoop(%q) steps mismatch (-want +got):\n%s", tc.raw, diff)
		}
		if loop.Collection.Raw != tc.wantRawCol {
			t.Errorf("ParseLoop(%q) collection = %q, want %q", tc.raw, loop.Collection.Raw, tc.wantRawCol)
		}
	}
}

func TestParseLoopRequiresDerivableVariable(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"family.children", "s", " : tags"} {
		if _, err := ParseLoop(raw); !errors.Is(err, ErrMissingLoopVar) {
			t.Errorf("ParseLoop(%q) error = %v, want ErrMissingLoopVar", raw, err)
		}
	}
	if _, err := ParseLoop("   "); !errors.Is(err, ErrEmptyExpression) {
		t.Errorf("blank loop should fail with ErrEmptyExpression, got %v", err)
	}
}

func TestGuardTruthyAndNot(t *testing.T) {
	t.Parallel()

	data := map[string]any{
		"article": map[string]any{"resume": "The Last Man on (...)"},
		"draft":   false,
	}

	cases := map[string]bool{
		"article.resume":  true,
		"article.missing": false,
		"!draft":          true,
		"!article.resume": false,
		"":                true,
	}
	for raw, want := range cases {
		guard, err := ParseGuard(raw)
		if err != nil {
			t.Fatalf("ParseGuard(%q) returned error: %v", raw, err)
		}
		got, err := guard.Eval(data, nil)
		if err != nil {
			t.Fatalf("Eval(%q) returned error: %v", raw, err)
		}
		if got != want {
			t.Errorf("Eval(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestGuardComparisonsAndComposition(t *testing.T) {
	t.Parallel()

	data := map[string]any{
		"type":    "quote",
		"count":   3,
		"enabled": true,
		"role":    "admin",
	}

	cases := map[string]bool{
		`type == "quote"`:                    true,
		`type == 'fiction'`:                  false,
		`type != fiction`:                    true,
		`count == 3`:                         true,
		`count != 3`:                         false,
		`owner == null`:                      true,
		`enabled == true && role == "admin"`: true,
		`enabled == false || role == "user"`: false,
		`!(enabled && count == 4)`:           true,
	}
	for raw, want := range cases {
		guard, err := ParseGuard(raw)
		if err != nil {
			t.Fatalf("ParseGuard(%q) returned error: %v", raw, err)
		}
		got, err := guard.Eval(data, nil)
		if err != nil {
			t.Fatalf("Eval(%q) returned error: %v", raw, err)
		}
		if got != want {
			t.Errorf("Eval(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestGuardSyntaxErrors(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"a = b", "a & b", "a | b", `a == "open`, "(a", "a ==", "&& a"} {
		if _, err := ParseGuard(raw); err == nil {
			t.Errorf("ParseGuard(%q) expected error", raw)
		}
	}
}

func TestPathHelpers(t *testing.T) {
	t.Parallel()

	p := ParsePath(" article.author.name ")
	want := Path{Raw: " article.author.name ", Steps: []string{"article", "author", "name"}}
	if diff := cmp.Diff(want, p, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("path mismatch (-want +got):\n%s", diff)
	}
	if p.Last() != "name" {
		t.Fatalf("last step mismatch: %q", p.Last())
	}
	if !ParsePath("").IsEmpty() {
		t.Fatalf("blank path should be empty")
	}
}
