// Package dom adapts golang.org/x/net/html node trees to the small capability
// set the template engine needs: attribute and class access, content writes,
// deep cloning, placeholder swaps and serialisation. Parsed fragments live
// under a detached holder node so every top-level node has a parent and can be
// swapped out like any other.
package dom
