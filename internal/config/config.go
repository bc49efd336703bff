package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the CLI settings that can live in a file. Flags given on the
// command line take precedence (see Merge).
type Config struct {
	Template   string     `json:"template" yaml:"template"`
	Data       string     `json:"data" yaml:"data"`
	Name       string     `json:"name" yaml:"name"`
	Select     string     `json:"select" yaml:"select"`
	Output     string     `json:"output" yaml:"output"`
	Sanitize   bool       `json:"sanitize" yaml:"sanitize"`
	Watch      bool       `json:"watch" yaml:"watch"`
	Verbose    bool       `json:"verbose" yaml:"verbose"`
	Vocabulary Vocabulary `json:"vocabulary" yaml:"vocabulary"`
}

// Vocabulary overrides the attribute names the compiler recognises. Blank
// fields keep the defaults.
type Vocabulary struct {
	Bind     string   `json:"bind" yaml:"bind"`
	RenderIf string   `json:"renderIf" yaml:"renderIf"`
	Iterate  []string `json:"iterate" yaml:"iterate"`
}

// Load reads a JSON or YAML config file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes raw as JSON, falling back to YAML. source names the input in
// error messages.
func Parse(raw []byte, source string) (Config, error) {
	var cfg Config
	if len(strings.TrimSpace(string(raw))) == 0 {
		return Config{}, fmt.Errorf("config: file %s is empty", source)
	}

	if err := json.Unmarshal(raw, &cfg); err == nil {
		return cfg.normalise(), nil
	}

	cfg = Config{}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", source, err)
	}
	return cfg.normalise(), nil
}

// Merge returns c with every non-zero field of override applied on top.
func (c Config) Merge(override Config) Config {
	out := c
	if override.Template != "" {
		out.Template = override.Template
	}
	if override.Data != "" {
		out.Data = override.Data
	}
	if override.Name != "" {
		out.Name = override.Name
	}
	if override.Select != "" {
		out.Select = override.Select
	}
	if override.Output != "" {
		out.Output = override.Output
	}
	out.Sanitize = out.Sanitize || override.Sanitize
	out.Watch = out.Watch || override.Watch
	out.Verbose = out.Verbose || override.Verbose
	if override.Vocabulary.Bind != "" {
		out.Vocabulary.Bind = override.Vocabulary.Bind
	}
	if override.Vocabulary.RenderIf != "" {
		out.Vocabulary.RenderIf = override.Vocabulary.RenderIf
	}
	if len(override.Vocabulary.Iterate) > 0 {
		out.Vocabulary.Iterate = append([]string(nil), override.Vocabulary.Iterate...)
	}
	return out
}

// Validate reports settings the CLI cannot run with.
func (c Config) Validate() error {
	if c.Template == "" {
		return fmt.Errorf("config: template is required")
	}
	if c.Select != "" && !strings.HasPrefix(c.Select, "#") {
		return fmt.Errorf("config: select %q must be an #id", c.Select)
	}
	return nil
}

func (c Config) normalise() Config {
	c.Template = strings.TrimSpace(c.Template)
	c.Data = strings.TrimSpace(c.Data)
	c.Name = strings.TrimSpace(c.Name)
	c.Select = strings.TrimSpace(c.Select)
	c.Output = strings.TrimSpace(c.Output)
	var iterate []string
	for _, name := range c.Vocabulary.Iterate {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			iterate = append(iterate, trimmed)
		}
	}
	c.Vocabulary.Iterate = iterate
	return c
}
