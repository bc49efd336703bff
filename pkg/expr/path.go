package expr

import (
	"golang.org/x/net/html"

	"github.com/zipang/temples/pkg/lookup"
)

// Path is a compiled dotted property path.
type Path struct {
	Raw   string
	Steps []string
}

// ParsePath splits raw into steps once so renders never re-parse it.
func ParsePath(raw string) Path {
	return Path{Raw: raw, Steps: lookup.Split(raw)}
}

// Lookup resolves the path against data, reporting whether it was found.
func (p Path) Lookup(data any, node *html.Node) (any, bool) {
	return lookup.LookupSteps(p.Steps, data, node)
}

// Resolve resolves the path against data, yielding "" for misses.
func (p Path) Resolve(data any, node *html.Node) any {
	return lookup.ResolveSteps(p.Steps, data, node)
}

// Last returns the final step, or "" for an empty path.
func (p Path) Last() string {
	if len(p.Steps) == 0 {
		return ""
	}
	return p.Steps[len(p.Steps)-1]
}

// IsEmpty reports whether the path has no steps and therefore yields the data
// object itself.
func (p Path) IsEmpty() bool {
	return len(p.Steps) == 0
}

func (p Path) String() string {
	return p.Raw
}
