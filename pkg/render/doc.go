// Package render draws filters as diagrams.
//
// The [nodelink] subpackage turns a compiled filter into a Graphviz
// node-link diagram: one box per stage in execution order, with the
// stage's rules in its label, framed by the input and output text nodes.
// `talklike explain --dot` and `--svg` are built on it.
package render
