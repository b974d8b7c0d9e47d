// Package render emits HTML for committed trees. StreamRenderer consumes
// the pre-order Insert sequence of an initial mount and writes markup as
// each patch arrives, so the first bytes go out before the whole tree has
// been walked. RenderTree walks an already committed subtree for
// non-streaming use.
package render
