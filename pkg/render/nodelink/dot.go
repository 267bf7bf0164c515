package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/talklike/pkg/core/filter"
	"github.com/matzehuels/talklike/pkg/core/stage"
)

// Options configures diagram generation.
type Options struct {
	// MaxRules caps the rules listed per stage. Zero lists none.
	MaxRules int
	// PrefixText and SuffixText are drawn around the stages when set.
	PrefixText string
	SuffixText string
}

var stageColors = map[stage.Kind]string{
	stage.KindSubstitution: "#dbeafe",
	stage.KindCharacters:   "#e0e7ff",
	stage.KindTranslation:  "#ede9fe",
	stage.KindSuffixes:     "#fce7f3",
	stage.KindPrefixes:     "#fce7f3",
	stage.KindAugmentation: "#fef3c7",
	stage.KindGlitch:       "#fee2e2",
	stage.KindScript:       "#dcfce7",
}

// ToDOT converts a stage chain to Graphviz DOT source.
func ToDOT(name string, stages []filter.StageInfo, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  label=%q;\n", name)
	buf.WriteString("  labelloc=t;\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	ids := []string{"input"}
	buf.WriteString("  \"input\" [shape=ellipse, label=\"input\"];\n")
	if opts.PrefixText != "" {
		fmt.Fprintf(&buf, "  \"prefix\" [shape=note, label=%q];\n", "prefix\n"+opts.PrefixText)
		ids = append(ids, "prefix")
	}
	for i, s := range stages {
		id := fmt.Sprintf("stage%d", i)
		fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(fmtAttrs(s, opts.MaxRules), ", "))
		ids = append(ids, id)
	}
	if opts.SuffixText != "" {
		fmt.Fprintf(&buf, "  \"suffix\" [shape=note, label=%q];\n", "suffix\n"+opts.SuffixText)
		ids = append(ids, "suffix")
	}
	buf.WriteString("  \"output\" [shape=ellipse, label=\"output\"];\n")
	ids = append(ids, "output")

	buf.WriteString("\n")
	for i := 1; i < len(ids); i++ {
		fmt.Fprintf(&buf, "  %q -> %q;\n", ids[i-1], ids[i])
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(s filter.StageInfo, maxRules int) string {
	lines := []string{string(s.Kind)}
	n := min(maxRules, len(s.Rules))
	lines = append(lines, s.Rules[:n]...)
	if more := len(s.Rules) - n; more > 0 && maxRules > 0 {
		lines = append(lines, fmt.Sprintf("(+%d more)", more))
	}
	return strings.Join(lines, "\n")
}

func fmtAttrs(s filter.StageInfo, maxRules int) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(s, maxRules))}
	if c, ok := stageColors[s.Kind]; ok {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", c))
	}
	return attrs
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one
// that scales in a browser.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
