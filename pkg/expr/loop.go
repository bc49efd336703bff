package expr

import (
	"fmt"
	"strings"
)

// Loop describes a repeat expression: the collection to iterate and the name
// each item is bound to while its sub-template renders.
type Loop struct {
	Raw        string
	Var        string
	Collection Path
}

// ParseLoop parses "collection", "item : collection" or "item from
// collection". Without an explicit variable the name is the last collection
// step minus one trailing "s" ("articles.tags" binds "tag"). This is a plain
// suffix rule ("series" binds "serie"); a name that does not end in "s", such
// as "children", is rejected with ErrMissingLoopVar.
func ParseLoop(raw string) (Loop, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Loop{}, ErrEmptyExpression
	}

	varName, collection := "", trimmed
	if fields := strings.Fields(trimmed); len(fields) == 3 && fields[1] == "from" {
		varName, collection = fields[0], fields[2]
	} else if left, right, ok := strings.Cut(trimmed, ":"); ok {
		varName, collection = strings.TrimSpace(left), strings.TrimSpace(right)
		if varName == "" {
			return Loop{}, fmt.Errorf("%w: %q names no variable before ':'", ErrMissingLoopVar, trimmed)
		}
	}

	path := ParsePath(collection)
	if path.IsEmpty() {
		return Loop{}, fmt.Errorf("%w: %q has no collection path", ErrEmptyExpression, trimmed)
	}

	if varName == "" {
		derived, err := singular(path.Last())
		if err != nil {
			return Loop{}, fmt.Errorf("%w from %q: %v", ErrMissingLoopVar, trimmed, err)
		}
		varName = derived
	}
	if strings.ContainsAny(varName, ". \t") {
		return Loop{}, fmt.Errorf("expr: invalid loop variable %q in %q", varName, trimmed)
	}

	return Loop{Raw: trimmed, Var: varName, Collection: path}, nil
}

func singular(name string) (string, error) {
	if !strings.HasSuffix(name, "s") {
		return "", fmt.Errorf("%q does not end in a plural 's'; use \"item : %s\"", name, name)
	}
	stem := strings.TrimSuffix(name, "s")
	if stem == "" {
		return "", fmt.Errorf("%q is too short to derive a name from", name)
	}
	return stem, nil
}
