package cli

import (
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/talklike/pkg/catalog"
	"github.com/matzehuels/talklike/pkg/definition"
	tio "github.com/matzehuels/talklike/pkg/io"
)

// lintTarget is one definition to lint. Path is empty for filters that do
// not live in a file, such as built-ins.
type lintTarget struct {
	Name string
	Path string
}

// lintCommand creates the lint command.
func (c *CLI) lintCommand() *cobra.Command {
	var fix bool

	cmd := &cobra.Command{
		Use:   "lint [FILTER|FILE...]",
		Short: "Check filter definitions for rules that never apply",
		Long: `Check filter definitions for rules that can never have an effect or
behave surprisingly: keys that map to themselves, keys that differ only in
case, affixes whose word boundary cannot match, augmentations that cascade
and keys repeated in a JSON document.

Without arguments every definition in the filter directories is checked.
With --fix, fixable issues are removed and the file is written back.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			targets, err := c.lintTargets(args)
			if err != nil {
				return err
			}
			if len(targets) == 0 {
				printInfo("No filter definitions to lint")
				return nil
			}

			runner, err := c.newRunner()
			if err != nil {
				return err
			}
			defer runner.Close()

			prog := newProgress(c.Logger)
			remaining := 0
			for _, t := range targets {
				def, err := loadTarget(cmd, runner.Source, t)
				if err != nil {
					printError("%s: %v", t.Name, err)
					remaining++
					continue
				}
				n, err := lintOne(cmd.OutOrStdout(), t, def, fix)
				if err != nil {
					return err
				}
				remaining += n
			}
			prog.done(fmt.Sprintf("Linted %d definitions", len(targets)))

			if remaining > 0 {
				return fmt.Errorf("%d issues found", remaining)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "remove fixable issues and rewrite the files")

	return cmd
}

// lintTargets resolves args to files where possible. Without args it
// returns every definition file in the filter directories.
func (c *CLI) lintTargets(args []string) ([]lintTarget, error) {
	dirs := catalog.NewDirSource(c.dirs()...)
	if len(args) == 0 {
		paths, err := dirs.Paths()
		if err != nil {
			return nil, err
		}
		targets := make([]lintTarget, 0, len(paths))
		for _, id := range slices.Sorted(maps.Keys(paths)) {
			targets = append(targets, lintTarget{Name: id, Path: paths[id]})
		}
		return targets, nil
	}

	targets := make([]lintTarget, len(args))
	for i, arg := range args {
		switch {
		case isDefinitionFile(arg):
			targets[i] = lintTarget{Name: arg, Path: arg}
		default:
			path, err := dirs.Find(arg)
			if err != nil {
				path = ""
			}
			targets[i] = lintTarget{Name: catalog.NormalizeID(arg), Path: path}
		}
	}
	return targets, nil
}

func loadTarget(cmd *cobra.Command, src catalog.Source, t lintTarget) (*definition.Definition, error) {
	if t.Path == "" {
		return src.Load(cmd.Context(), t.Name)
	}
	return tio.Import(t.Path)
}

// lintOne prints the issues for one definition and returns how many remain.
func lintOne(w io.Writer, t lintTarget, def *definition.Definition, fix bool) (int, error) {
	issues := catalog.Lint(def)
	if t.Path != "" && strings.EqualFold(filepath.Ext(t.Path), ".json") {
		raw, err := os.ReadFile(t.Path)
		if err != nil {
			return 0, err
		}
		dups, err := catalog.DuplicateJSONKeys(raw)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", t.Path, err)
		}
		issues = append(dups, issues...)
	}

	if fix && t.Path != "" {
		fixed, removed := catalog.Fix(def)
		if len(removed) > 0 || hasDuplicateKeys(issues) {
			if err := writeBack(fixed, t.Path); err != nil {
				return 0, err
			}
			printSuccess("%s: fixed %d issues", t.Name, len(removed))
			issues = remainingIssues(issues)
		}
	}

	if len(issues) == 0 {
		printSuccess("%s", t.Name)
		return 0, nil
	}
	printWarning("%s: %d issues", t.Name, len(issues))
	for _, is := range issues {
		fmt.Fprintf(w, "  %s %s\n", StyleDim.Render(string(is.Kind)), is)
	}
	return len(issues), nil
}

// writeBack rewrites path in its own format. An inlined script.file is
// written back as the reference.
func writeBack(def *definition.Definition, path string) error {
	if def.Script != nil && def.Script.File != "" {
		script := *def.Script
		script.Lua = ""
		def.Script = &script
	}
	return tio.Export(def, path)
}

func hasDuplicateKeys(issues []catalog.Issue) bool {
	return slices.ContainsFunc(issues, func(is catalog.Issue) bool { return is.Kind == catalog.IssueDuplicateKey })
}

// remainingIssues drops what Fix and a rewrite remove. Re-encoding a JSON
// document collapses its duplicate keys.
func remainingIssues(issues []catalog.Issue) []catalog.Issue {
	return slices.DeleteFunc(slices.Clone(issues), func(is catalog.Issue) bool {
		return is.Fixable || is.Kind == catalog.IssueDuplicateKey
	})
}

// convertCommand creates the convert command.
func (c *CLI) convertCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "convert IN OUT",
		Short: "Convert a filter definition between JSON, YAML and TOML",
		Long: `Convert a filter definition between JSON, YAML and TOML. Formats follow
the file extensions. A script file reference is kept when both files share
a directory and inlined otherwise.`,
		Example: "  talklike convert filters/pirate.json filters/pirate.yaml",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, out := args[0], args[1]
			if _, err := tio.FormatFromPath(out); err != nil {
				return err
			}
			def, err := tio.Import(in)
			if err != nil {
				return err
			}
			if err := def.Validate(); err != nil {
				return err
			}
			if def.Script != nil && def.Script.File != "" && filepath.Dir(in) != filepath.Dir(out) {
				script := *def.Script
				script.File = ""
				def.Script = &script
			}
			if err := writeBack(def, out); err != nil {
				return err
			}
			printSuccess("Converted %s", filepath.Base(in))
			printFile(out)
			return nil
		},
	}
}
