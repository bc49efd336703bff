// Package temples compiles HTML annotated with data-* attributes into
// reusable templates and renders data through them.
//
//	<article id="post">
//	  <h1 data-bind="title"></h1>
//	  <p data-render-if="author" data-bind="author.fullName"></p>
//	  <ul data-each="tags"><li data-bind="tag"></li></ul>
//	</article>
//
// data-bind lists comma separated bindings: a bare path writes the content of
// the node (the value of form controls), "html=", "markdown=", "value=" and
// "text=" pick the aspect explicitly, "class=" adds a class token,
// "class[a|b]=" applies exactly one of the listed classes, and any other
// "attr=" sets that attribute. data-render-if hides the node behind a comment
// while its guard is falsy. data-each (or data-iterate) repeats the first
// child element once per item, binding the item as "tag" for "tags" or under
// the name given with "item : path" or "item from path".
//
// Engine keeps compiled templates by name; the render package exposes the
// compiler directly.
package temples
