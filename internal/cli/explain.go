package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/talklike/pkg/core/filter"
	"github.com/matzehuels/talklike/pkg/render/nodelink"
)

// explainCommand creates the explain command.
func (c *CLI) explainCommand() *cobra.Command {
	var (
		dot      bool
		svgPath  string
		maxRules int
	)

	cmd := &cobra.Command{
		Use:   "explain FILTER",
		Short: "Show the stage chain of a filter",
		Long: `Show the stages a filter runs, in execution order, with their rules.

With --dot the chain is printed as Graphviz DOT source; with --svg it is
rendered to an SVG file.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeFilters,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := c.newRunner()
			if err != nil {
				return err
			}
			defer runner.Close()

			compiled, err := c.compile(cmd.Context(), runner, args[0])
			if err != nil {
				return err
			}
			f := compiled.Filter

			if dot || svgPath != "" {
				src := nodelink.ToDOT(f.Name(), f.Describe(), nodelink.Options{
					MaxRules:   maxRules,
					PrefixText: f.PrefixText(),
					SuffixText: f.SuffixText(),
				})
				if dot {
					_, err := io.WriteString(cmd.OutOrStdout(), src)
					return err
				}
				svg, err := nodelink.RenderSVG(cmd.Context(), src)
				if err != nil {
					return err
				}
				if err := os.WriteFile(svgPath, svg, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", svgPath, err)
				}
				printSuccess("Rendered %s", f.Name())
				printFile(svgPath)
				return nil
			}

			writeExplanation(cmd.OutOrStdout(), f, maxRules)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dot, "dot", false, "print Graphviz DOT source")
	cmd.Flags().StringVar(&svgPath, "svg", "", "render the chain to an SVG file")
	cmd.Flags().IntVar(&maxRules, "max-rules", 10, "rules listed per stage (0 lists none)")
	cmd.MarkFlagsMutuallyExclusive("dot", "svg")

	return cmd
}

// writeExplanation prints the stage chain as an indented outline.
func writeExplanation(w io.Writer, f *filter.Filter, maxRules int) {
	fmt.Fprintln(w, StyleTitle.Render(f.Name()))
	if p := f.PrefixText(); p != "" {
		fmt.Fprintf(w, "  %s %q\n", StyleDim.Render("prefix"), p)
	}
	infos := f.Describe()
	if len(infos) == 0 {
		fmt.Fprintln(w, StyleDim.Render("  (no stages)"))
	}
	for i, s := range infos {
		fmt.Fprintf(w, "  %s %s %s\n", StyleNumber.Render(fmt.Sprintf("%d.", i+1)), StyleHighlight.Render(string(s.Kind)), StyleDim.Render(fmt.Sprintf("(%d rules)", len(s.Rules))))
		n := min(maxRules, len(s.Rules))
		for _, r := range s.Rules[:n] {
			fmt.Fprintf(w, "     %s\n", r)
		}
		if more := len(s.Rules) - n; more > 0 && maxRules > 0 {
			fmt.Fprintln(w, StyleDim.Render(fmt.Sprintf("     ... %d more", more)))
		}
	}
	if s := f.SuffixText(); s != "" {
		fmt.Fprintf(w, "  %s %q\n", StyleDim.Render("suffix"), strings.TrimRight(s, "\n"))
	}
}
