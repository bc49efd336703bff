package lookup

import (
	"reflect"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
)

var (
	nodeType  = reflect.TypeOf((*html.Node)(nil))
	errorType = reflect.TypeOf((*error)(nil)).Elem()
)

// Split breaks a dotted path into its steps. Surrounding whitespace and empty
// segments are dropped, so "" and " " yield no steps.
func Split(path string) []string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil
	}
	parts := strings.Split(trimmed, ".")
	steps := make([]string, 0, len(parts))
	for _, part := range parts {
		if step := strings.TrimSpace(part); step != "" {
			steps = append(steps, step)
		}
	}
	return steps
}

// Resolve evaluates path against data. Missing values and nil results yield
// the empty string so callers can render them as blanks; false and 0 are
// returned unchanged.
func Resolve(path string, data any, node *html.Node) any {
	return ResolveSteps(Split(path), data, node)
}

// ResolveSteps is Resolve over pre-split steps.
func ResolveSteps(steps []string, data any, node *html.Node) any {
	value, ok := LookupSteps(steps, data, node)
	if !ok || value == nil {
		return ""
	}
	return value
}

// Lookup evaluates path against data and reports whether every step was
// found.
func Lookup(path string, data any, node *html.Node) (any, bool) {
	return LookupSteps(Split(path), data, node)
}

// LookupSteps walks steps left to right. Callables met along the way (method
// values, func fields, func map entries) are invoked with no argument or with
// node when they accept one, and their first result is used. An empty step
// list yields data itself.
func LookupSteps(steps []string, data any, node *html.Node) (any, bool) {
	current := data
	for _, step := range steps {
		next, ok := stepInto(current, step)
		if !ok {
			return nil, false
		}
		current, ok = invoke(next, node)
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func stepInto(value any, name string) (any, bool) {
	switch typed := value.(type) {
	case nil:
		return nil, false
	case *Scope:
		return typed.lookup(name)
	case map[string]any:
		next, ok := typed[name]
		return next, ok
	case map[string]string:
		next, ok := typed[name]
		return next, ok
	}

	rv := reflect.ValueOf(value)
	if method, ok := findMethod(rv, name); ok {
		return method.Interface(), true
	}
	rv = indirect(rv)
	if !rv.IsValid() {
		return nil, false
	}
	if method, ok := findMethod(rv, name); ok {
		return method.Interface(), true
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		next := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if next.IsValid() {
			return next.Interface(), true
		}
		if name == "length" {
			return rv.Len(), true
		}
	case reflect.Struct:
		if field, ok := findField(rv, name); ok {
			return field.Interface(), true
		}
	case reflect.Slice, reflect.Array:
		if index, err := strconv.Atoi(name); err == nil {
			if index < 0 || index >= rv.Len() {
				return nil, false
			}
			return rv.Index(index).Interface(), true
		}
		if name == "length" {
			return rv.Len(), true
		}
	case reflect.String:
		if name == "length" {
			return utf8.RuneCountInString(rv.String()), true
		}
	}
	return nil, false
}

func indirect(rv reflect.Value) reflect.Value {
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}
	return rv
}

func findMethod(rv reflect.Value, name string) (reflect.Value, bool) {
	if !rv.IsValid() || rv.NumMethod() == 0 {
		return reflect.Value{}, false
	}
	for _, candidate := range nameCandidates(name) {
		method := rv.MethodByName(candidate)
		if method.IsValid() {
			return method, true
		}
	}
	return reflect.Value{}, false
}

func findField(rv reflect.Value, name string) (reflect.Value, bool) {
	rt := rv.Type()
	for _, candidate := range nameCandidates(name) {
		if field, ok := rt.FieldByName(candidate); ok && field.IsExported() {
			value, err := rv.FieldByIndexErr(field.Index)
			if err != nil {
				return reflect.Value{}, false
			}
			return value, true
		}
	}
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		if strings.EqualFold(field.Name, name) || tagName(field, "json") == name || tagName(field, "yaml") == name {
			return rv.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func tagName(field reflect.StructField, key string) string {
	tag := field.Tag.Get(key)
	if tag == "" || tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	return name
}

// nameCandidates maps a template step such as "fullName" onto the Go
// identifiers it may refer to.
func nameCandidates(name string) []string {
	first, size := utf8.DecodeRuneInString(name)
	if first == utf8.RuneError || unicode.IsUpper(first) {
		return []string{name}
	}
	return []string{name, string(unicode.ToUpper(first)) + name[size:]}
}

func invoke(value any, node *html.Node) (any, bool) {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || rv.Kind() != reflect.Func {
		return value, true
	}
	if rv.IsNil() {
		return nil, false
	}

	fnType := rv.Type()
	var args []reflect.Value
	switch {
	case fnType.IsVariadic():
		if fnType.NumIn() > 1 {
			return nil, false
		}
	case fnType.NumIn() == 0:
	case fnType.NumIn() == 1 && nodeType.AssignableTo(fnType.In(0)):
		if node == nil {
			args = []reflect.Value{reflect.Zero(fnType.In(0))}
		} else {
			args = []reflect.Value{reflect.ValueOf(node)}
		}
	default:
		return nil, false
	}

	out := rv.Call(args)
	if len(out) == 0 {
		return nil, true
	}
	last := out[len(out)-1]
	if last.Type() == errorType && !last.IsNil() {
		return nil, false
	}
	if len(out) == 1 && last.Type() == errorType {
		return nil, true
	}
	return out[0].Interface(), true
}
