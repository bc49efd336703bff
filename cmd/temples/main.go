package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zipang/temples"
	"github.com/zipang/temples/internal/config"
	"github.com/zipang/temples/internal/loader"
	"github.com/zipang/temples/pkg/dom"
	"github.com/zipang/temples/pkg/render"
)

func main() {
	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("invalid arguments: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if cfg.Verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	if err := renderOnce(cfg, logger); err != nil {
		log.Fatalf("Failed to render template: %v", err)
	}
	if !cfg.Watch {
		return
	}
	if err := watch(cfg, logger); err != nil {
		log.Fatalf("Failed to watch: %v", err)
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (config.Config, error) {
	var flags config.Config
	configPath := fs.String("config", "", "YAML or JSON config file")
	fs.StringVar(&flags.Template, "template", "", "template file (HTML fragment, or document with -select)")
	fs.StringVar(&flags.Data, "data", "", "YAML or JSON data file")
	fs.StringVar(&flags.Name, "name", "", "template name (defaults to the file name)")
	fs.StringVar(&flags.Select, "select", "", "render only the element with this #id of the template document")
	fs.StringVar(&flags.Output, "output", "", "output file (stdout if empty)")
	fs.BoolVar(&flags.Sanitize, "sanitize", false, "sanitize html= and markdown= bindings")
	fs.BoolVar(&flags.Watch, "watch", false, "re-render when the template or data file is written")
	fs.BoolVar(&flags.Verbose, "v", false, "log compile and render diagnostics to stderr")
	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}

	cfg := config.Config{}
	if *configPath != "" {
		fromFile, err := config.Load(*configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = fromFile
	}
	cfg = cfg.Merge(flags)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func renderOnce(cfg config.Config, logger *slog.Logger) error {
	data, err := loadData(cfg.Data)
	if err != nil {
		return err
	}
	markup, err := os.ReadFile(cfg.Template)
	if err != nil {
		return fmt.Errorf("read template: %w", err)
	}

	out, err := renderTemplate(cfg, logger, string(markup), data)
	if err != nil {
		return err
	}

	if cfg.Output == "" {
		fmt.Println(out)
		return nil
	}
	if err := os.WriteFile(cfg.Output, []byte(out), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	logger.Info("temples: rendered", "template", cfg.Template, "output", cfg.Output)
	return nil
}

func renderTemplate(cfg config.Config, logger *slog.Logger, markup string, data any) (string, error) {
	options := []temples.Option{
		temples.WithLogger(logger),
		temples.WithRenderOptions(renderOptions(cfg)...),
	}

	if cfg.Select != "" {
		doc, err := dom.ParseDocument(markup)
		if err != nil {
			return "", err
		}
		engine := temples.New(append(options, temples.WithDocument(doc))...)
		defer engine.Destroy()
		return engine.Render(cfg.Select, data)
	}

	name := cfg.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(cfg.Template), filepath.Ext(cfg.Template))
	}
	engine := temples.New(options...)
	defer engine.Destroy()
	if _, err := engine.Compile(name, markup); err != nil {
		return "", err
	}
	return engine.Render(name, data)
}

func renderOptions(cfg config.Config) []render.Option {
	options := []render.Option{
		render.WithVocabulary(render.Vocabulary{
			Bind:     cfg.Vocabulary.Bind,
			RenderIf: cfg.Vocabulary.RenderIf,
			Iterate:  cfg.Vocabulary.Iterate,
		}),
	}
	if cfg.Sanitize {
		options = append(options, render.WithUGCSanitizer())
	}
	return options
}

func loadData(path string) (map[string]any, error) {
	if path == "" {
		return map[string]any{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	var data map[string]any
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse data %s: %w", path, err)
	}
	return data, nil
}

func watch(cfg config.Config, logger *slog.Logger) error {
	watcher, err := loader.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, file := range []string{cfg.Template, cfg.Data} {
		if file == "" {
			continue
		}
		if err := watcher.Add(file); err != nil {
			return fmt.Errorf("watch %s: %w", file, err)
		}
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	log.Printf("Watching %s for changes", cfg.Template)
	for {
		select {
		case name := <-watcher.Changed():
			logger.Debug("temples: changed", "file", name)
			if err := renderOnce(cfg, logger); err != nil {
				log.Printf("Failed to render template: %v", err)
			}
		case err := <-watcher.Errors():
			log.Printf("Watcher error: %v", err)
		case <-interrupt:
			return nil
		}
	}
}
