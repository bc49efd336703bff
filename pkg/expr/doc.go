// Package expr parses the compact expressions carried by template attributes:
//
//	data-bind       "title", "href=article.url", "class[fiction|quote]=article.type"
//	data-each       "articles", "tag : article.tags", "child from family.children"
//	data-render-if  "article.resume", "!draft", `role == "admin" && enabled`
//
// Parsing happens once at compile time; the descriptors returned here are
// immutable and are evaluated against data on every render.
package expr
