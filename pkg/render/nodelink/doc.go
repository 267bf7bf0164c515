// Package nodelink renders a filter's stage chain as a node-link diagram.
//
// # Usage
//
//	dot := nodelink.ToDOT("pirate", f.Describe(), nodelink.Options{MaxRules: 5})
//	svg, err := nodelink.RenderSVG(dot)
//
// The DOT source flows left to right from an "input" node through each
// stage to an "output" node. Prefix and suffix text, when present, are
// drawn as extra nodes before and after the stages.
//
// # Dependencies
//
// SVG rendering runs in-process through [github.com/goccy/go-graphviz].
package nodelink
