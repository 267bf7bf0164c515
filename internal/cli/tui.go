package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/talklike/pkg/catalog"
	"github.com/matzehuels/talklike/pkg/errors"
	"github.com/matzehuels/talklike/pkg/pipeline"
)

// Preview styles
var (
	tabActiveStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Padding(0, 1)
	tabStyle       = lipgloss.NewStyle().Foreground(colorDim).Padding(0, 1)
	outputStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
	listDimStyle   = lipgloss.NewStyle().Foreground(colorDim)
)

// interactiveCommand creates the interactive command.
func (c *CLI) interactiveCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "interactive [FILTER]",
		Aliases:           []string{"i"},
		Short:             "Type text and watch it transform as you type",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: c.completeFilters,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := c.newRunner()
			if err != nil {
				return err
			}
			defer runner.Close()

			entries, err := runner.List(cmd.Context())
			if err != nil {
				return err
			}
			initial := c.profile.DefaultFilter
			if len(args) == 1 {
				initial = args[0]
			}

			m := newPreviewModel(cmd.Context(), runner, entries, initial)
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
}

// =============================================================================
// PreviewModel - live transform preview
// =============================================================================

// PreviewModel is the bubbletea model for the live preview. Tab and
// shift+tab switch filters; every edit re-renders the output with a fresh
// session so the preview never depends on typing history.
type PreviewModel struct {
	ctx     context.Context
	runner  *pipeline.Runner
	entries []catalog.Entry
	cursor  int

	input    textarea.Model
	compiled *pipeline.Compiled
	output   string
	err      error
	width    int
}

func newPreviewModel(ctx context.Context, runner *pipeline.Runner, entries []catalog.Entry, initial string) PreviewModel {
	ta := textarea.New()
	ta.Placeholder = "Type something..."
	ta.ShowLineNumbers = false
	ta.SetHeight(5)
	ta.Focus()

	m := PreviewModel{ctx: ctx, runner: runner, entries: entries, input: ta, width: 80}
	id := catalog.NormalizeID(initial)
	for i, e := range entries {
		if e.ID == id {
			m.cursor = i
		}
	}
	m.selectFilter()
	return m
}

// Filter returns the id of the selected filter.
func (m PreviewModel) Filter() string {
	if len(m.entries) == 0 {
		return ""
	}
	return m.entries[m.cursor].ID
}

// Output returns the current preview.
func (m PreviewModel) Output() string { return m.output }

func (m *PreviewModel) selectFilter() {
	m.compiled, m.err = nil, nil
	if len(m.entries) == 0 {
		m.err = errors.New(errors.ErrCodeNotFound, "no filters available")
		return
	}
	m.compiled, m.err = m.runner.Compile(m.ctx, m.Filter())
	m.refresh()
}

func (m *PreviewModel) refresh() {
	if m.compiled == nil {
		m.output = ""
		return
	}
	m.output = m.compiled.Filter.Transform(m.input.Value())
}

func (m PreviewModel) Init() tea.Cmd {
	return textarea.Blink
}

func (m PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			if len(m.entries) > 0 {
				m.cursor = (m.cursor + 1) % len(m.entries)
				m.selectFilter()
			}
			return m, nil
		case "shift+tab":
			if len(m.entries) > 0 {
				m.cursor = (m.cursor + len(m.entries) - 1) % len(m.entries)
				m.selectFilter()
			}
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.SetWidth(max(msg.Width-4, 20))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.refresh()
	return m, cmd
}

func (m PreviewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("talklike"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("tab/shift+tab switch filter  esc quit"))
	b.WriteString("\n\n")

	tabs := make([]string, len(m.entries))
	for i, e := range m.entries {
		if i == m.cursor {
			tabs[i] = tabActiveStyle.Render(e.Name)
		} else {
			tabs[i] = tabStyle.Render(e.Name)
		}
	}
	b.WriteString(lipgloss.NewStyle().Width(m.width).Render(strings.Join(tabs, "")))
	b.WriteString("\n\n")

	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(StyleWarning.Render(errors.UserMessage(m.err)))
	} else {
		b.WriteString(outputStyle.Width(max(m.width-4, 20)).Render(m.output))
	}
	b.WriteString("\n")
	if m.compiled != nil {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d stages", len(m.compiled.Filter.Stages()))))
	}
	return b.String()
}
