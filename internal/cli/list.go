package cli

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/talklike/pkg/catalog"
)

// listCommand creates the list command.
func (c *CLI) listCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List available filters",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := c.newRunner()
			if err != nil {
				return err
			}
			defer runner.Close()

			var spinner *Spinner
			if c.remote() != "" && !asJSON {
				spinner = newSpinnerWithContext(cmd.Context(), "Fetching catalog...")
				spinner.Start()
			}
			entries, err := runner.List(cmd.Context())
			if spinner != nil {
				spinner.Stop()
			}
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}
			if len(entries) == 0 {
				printInfo("No filters found")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderFilterTable(entries))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the catalog as JSON")

	return cmd
}

// renderFilterTable lays entries out as a bordered table. Entries whose
// definition fails to load are dimmed and show the error.
func renderFilterTable(entries []catalog.Entry) string {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		desc := e.Description
		if e.Error != "" {
			desc = e.Error
		}
		rows[i] = []string{e.ID, e.Name, e.Source, desc}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "Source", "Description").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle.Padding(0, 1)
			}
			if entries[row].Error != "" {
				return cell.Foreground(colorRed)
			}
			switch col {
			case 0:
				return cell.Foreground(colorCyan)
			case 2:
				return cell.Foreground(colorDim)
			}
			return cell
		})
	return t.Render()
}
