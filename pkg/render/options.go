package render

import (
	"io"
	"log/slog"
	"strings"

	"github.com/yuin/goldmark"
)

// Vocabulary names the attributes the compiler recognises.
type Vocabulary struct {
	// Bind carries one or more comma separated binding expressions.
	Bind string
	// RenderIf carries the guard of a conditional section.
	RenderIf string
	// Iterate lists synonyms carrying a loop expression; the first one present
	// on a node wins.
	Iterate []string
}

// DefaultVocabulary returns the data-bind / data-render-if /
// data-iterate / data-each attribute set.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Bind:     "data-bind",
		RenderIf: "data-render-if",
		Iterate:  []string{"data-iterate", "data-each"},
	}
}

func (v Vocabulary) attributes() []string {
	out := make([]string, 0, len(v.Iterate)+2)
	out = append(out, v.Bind, v.RenderIf)
	out = append(out, v.Iterate...)
	return out
}

// Sanitizer cleans markup before it is written through html= and markdown=
// bindings. *bluemonday.Policy satisfies it.
type Sanitizer interface {
	Sanitize(markup string) string
}

// Option configures compilation.
type Option func(*config)

type config struct {
	logger     *slog.Logger
	sanitizer  Sanitizer
	markdown   goldmark.Markdown
	vocabulary Vocabulary
}

// WithLogger routes compile and render diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithSanitizer cleans html= and markdown= output with sanitizer. Nil
// disables sanitising, which is the default.
func WithSanitizer(sanitizer Sanitizer) Option {
	return func(cfg *config) {
		cfg.sanitizer = sanitizer
	}
}

// WithUGCSanitizer cleans html= and markdown= output with bluemonday's user
// generated content policy.
func WithUGCSanitizer() Option {
	return func(cfg *config) {
		cfg.sanitizer = ugcSanitizer()
	}
}

// WithMarkdown overrides the converter used by markdown= bindings.
func WithMarkdown(md goldmark.Markdown) Option {
	return func(cfg *config) {
		if md != nil {
			cfg.markdown = md
		}
	}
}

// WithVocabulary overrides the recognised attribute names. Blank fields keep
// their defaults.
func WithVocabulary(vocabulary Vocabulary) Option {
	return func(cfg *config) {
		if name := strings.TrimSpace(vocabulary.Bind); name != "" {
			cfg.vocabulary.Bind = name
		}
		if name := strings.TrimSpace(vocabulary.RenderIf); name != "" {
			cfg.vocabulary.RenderIf = name
		}
		var iterate []string
		for _, name := range vocabulary.Iterate {
			if trimmed := strings.TrimSpace(name); trimmed != "" {
				iterate = append(iterate, trimmed)
			}
		}
		if len(iterate) > 0 {
			cfg.vocabulary.Iterate = iterate
		}
	}
}

func newConfig(options ...Option) *config {
	cfg := &config{
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		markdown:   goldmark.New(),
		vocabulary: DefaultVocabulary(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}
	return cfg
}
