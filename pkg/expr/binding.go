package expr

import (
	"fmt"
	"strings"
)

// Target identifies which aspect of a node a binding writes.
type Target int

const (
	// TargetAuto lets the node kind decide: form controls bind their value,
	// everything else its content.
	TargetAuto Target = iota
	TargetText
	TargetHTML
	TargetMarkdown
	TargetValue
	// TargetClass adds the resolved value as a class token.
	TargetClass
	// TargetClassEnum applies exactly one class out of Binding.Enum.
	TargetClassEnum
	// TargetAttr replaces the value of Binding.Attr.
	TargetAttr
)

func (t Target) String() string {
	switch t {
	case TargetAuto:
		return "auto"
	case TargetText:
		return "text"
	case TargetHTML:
		return "html"
	case TargetMarkdown:
		return "markdown"
	case TargetValue:
		return "value"
	case TargetClass:
		return "class"
	case TargetClassEnum:
		return "class[]"
	case TargetAttr:
		return "attr"
	default:
		return "unknown"
	}
}

// Binding describes one `target=path` expression.
type Binding struct {
	Raw    string
	Target Target
	Attr   string
	Enum   []string
	Path   Path
}

// InEnum reports whether value is one of the enumerated class names.
func (b Binding) InEnum(value string) bool {
	for _, name := range b.Enum {
		if name == value {
			return true
		}
	}
	return false
}

// ParseBindings parses a comma separated list of binding expressions. Empty
// parts are skipped.
func ParseBindings(raw string) ([]Binding, error) {
	parts := SplitBindings(raw)
	if len(parts) == 0 {
		return nil, nil
	}
	out := make([]Binding, 0, len(parts))
	for _, part := range parts {
		binding, err := ParseBinding(part)
		if err != nil {
			return nil, err
		}
		out = append(out, binding)
	}
	return out, nil
}

// SplitBindings returns the trimmed, non-empty comma separated parts of raw.
func SplitBindings(raw string) []string {
	var parts []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

// ParseBinding parses a single `[target=]path` expression.
func ParseBinding(raw string) (Binding, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Binding{}, ErrEmptyExpression
	}

	left, right, explicit := strings.Cut(trimmed, "=")
	if !explicit {
		return Binding{Raw: trimmed, Target: TargetAuto, Path: ParsePath(trimmed)}, nil
	}

	path := strings.TrimSpace(right)
	if path == "" {
		return Binding{}, fmt.Errorf("%w: %q has no path", ErrEmptyExpression, trimmed)
	}
	binding := Binding{Raw: trimmed, Path: ParsePath(path)}

	left = strings.TrimSpace(left)
	target := strings.ToLower(left)
	switch target {
	case "":
		binding.Target = TargetAuto
	case "text":
		binding.Target = TargetText
	case "html":
		binding.Target = TargetHTML
	case "markdown", "md":
		binding.Target = TargetMarkdown
	case "value":
		binding.Target = TargetValue
	case "class":
		binding.Target = TargetClass
	default:
		if strings.HasPrefix(target, "class[") {
			enum, err := parseEnum(left)
			if err != nil {
				return Binding{}, fmt.Errorf("%w: %q: %v", ErrInvalidTarget, trimmed, err)
			}
			binding.Target = TargetClassEnum
			binding.Enum = enum
			break
		}
		if !validAttrName(target) {
			return Binding{}, fmt.Errorf("%w: %q", ErrInvalidTarget, left)
		}
		binding.Target = TargetAttr
		binding.Attr = target
	}
	return binding, nil
}

func parseEnum(target string) ([]string, error) {
	if !strings.HasSuffix(target, "]") {
		return nil, fmt.Errorf("missing closing ']'")
	}
	// Class tokens are case-sensitive; only the keyword is matched loosely.
	inner := strings.TrimSuffix(target[len("class["):], "]")
	var enum []string
	for _, name := range strings.Split(inner, "|") {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			enum = append(enum, trimmed)
		}
	}
	if len(enum) == 0 {
		return nil, fmt.Errorf("empty class enumeration")
	}
	return enum, nil
}

func validAttrName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_', r == ':', r == '.':
		default:
			return false
		}
	}
	return true
}
