package cli

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/lifetree/lifetree/pkg/graph"
	"github.com/lifetree/lifetree/pkg/pipeline"
	"github.com/lifetree/lifetree/pkg/selection"
	"github.com/lifetree/lifetree/pkg/timeline"
)

// browseCommand creates the browse command, an interactive view of the
// moments of a timeline.
func (c *CLI) browseCommand() *cobra.Command {
	var flags layoutFlags

	cmd := &cobra.Command{
		Use:   "browse [snapshot.json]",
		Short: "Step through a timeline in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			input := inputArg(args)
			opts := c.pipelineOptions(cmd, &flags, input)
			opts.Formats = []string{pipeline.FormatJSON}

			runner, err := c.newRunner(ctx, input, flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			res, err := runner.Execute(ctx, opts)
			if err != nil {
				return err
			}
			if len(res.Layout.Moments()) == 0 {
				printInfo("Timeline is empty")
				return nil
			}

			m := newBrowseModel(res.Layout, res.Snapshot)
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		},
	}
	flags.register(cmd)
	return cmd
}

// =============================================================================
// BrowseModel - Interactive moment browser
// =============================================================================

var (
	browseSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	browseNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	browseDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	browsePanelStyle    = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1).
				Width(44)
)

// browseModel is the bubbletea model for the browse command. Moments are
// listed top to bottom in row order; the panel shows the selected one.
type browseModel struct {
	layout  graph.Layout
	moments []graph.Node
	sources map[string][]timeline.Source
	cursor  int
	offset  int
	height  int
}

func newBrowseModel(l graph.Layout, snap *timeline.Snapshot) browseModel {
	sources := make(map[string][]timeline.Source)
	if snap != nil {
		for _, n := range snap.Nodes {
			if len(n.Sources) > 0 {
				sources[n.ID] = n.Sources
			}
		}
	}
	moments := l.Moments()
	sort.SliceStable(moments, func(i, j int) bool { return moments[i].Y < moments[j].Y })
	return browseModel{
		layout:  l,
		moments: moments,
		sources: sources,
		height:  15,
	}
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.moments)-1 {
				m.cursor++
			}
		case "home", "g":
			m.cursor = 0
		case "end", "G":
			m.cursor = len(m.moments) - 1
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-6, 5)
	}

	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
	return m, nil
}

func (m browseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Timeline"))
	b.WriteString("\n")
	b.WriteString(browseDimStyle.Render("↑/↓ move  g/G first/last  q quit"))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.moments))
	var list strings.Builder
	for i := m.offset; i < end; i++ {
		list.WriteString(m.line(i))
		list.WriteString("\n")
	}

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, list.String(), "  ", m.panel()))
	b.WriteString("\n")
	b.WriteString(browseDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.moments))))
	return b.String()
}

// line draws one moment. Side-branch moments are indented to the left of
// the trunk column.
func (m browseModel) line(i int) string {
	n := m.moments[i]
	dot := lipgloss.NewStyle().
		Foreground(lipgloss.Color(selection.Hex(selection.FillToken(n.Role)))).
		Render("●")

	lane := "    " + dot + " "
	if n.Side == graph.SideLeft {
		lane = dot + "    "
	}

	cursor := "  "
	style := browseNormalStyle
	if i == m.cursor {
		cursor = "▸ "
		style = browseSelectedStyle
	}
	return cursor + lane + style.Render(truncate(n.DisplayLabel(), 32))
}

// panel renders the detail of the selected moment.
func (m browseModel) panel() string {
	if len(m.moments) == 0 {
		return ""
	}
	d, err := selection.Select(m.layout, m.moments[m.cursor].ID)
	if err != nil {
		return browsePanelStyle.Render(err.Error())
	}

	title := lipgloss.NewStyle().
		Bold(true).
		Underline(true).
		Foreground(lipgloss.Color(selection.Hex(d.Underline))).
		Render(d.Label)

	lines := []string{title}
	if d.Date != "" {
		lines = append(lines, browseDimStyle.Render(d.Date))
	}
	if d.Description != "" {
		lines = append(lines, "", d.Description)
	}
	lines = append(lines, "", browseDimStyle.Render(d.Role+" · "+d.BranchID))
	for _, s := range m.sources[d.ID] {
		lines = append(lines, browseDimStyle.Render("↳ "+s.Kind+" "+s.Item))
	}
	return browsePanelStyle.Render(strings.Join(lines, "\n"))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
