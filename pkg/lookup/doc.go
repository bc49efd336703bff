// Package lookup resolves dotted property paths such as "article.author.name"
// against arbitrary data: maps with string keys, structs (by field name or
// json/yaml tag), methods, slices by index and Scope overlays. A missing step
// is not an error; it resolves to a blank so templates render what they can.
package lookup
