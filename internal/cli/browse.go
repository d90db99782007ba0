package cli

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/DELAxGithub/wordmiro/pkg/graph"
	"github.com/DELAxGithub/wordmiro/pkg/store"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// browseCommand creates the browse command for interactive graph exploration.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse [graph.json]",
		Short: "Interactively explore a vocabulary graph",
		Long: `Interactively explore a vocabulary graph.

The browse command opens a scrollable list of every term in the graph with its
part of speech, relation count, and explanation. Selecting an unexpanded term
suggests the expand command to grow the graph from it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBrowse(args[0])
		},
	}
}

// runBrowse loads the graph and runs the interactive term list.
func (c *CLI) runBrowse(input string) error {
	g, err := store.ImportJSON(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}
	if g.NodeCount() == 0 {
		printInfo("Graph is empty")
		return nil
	}

	model := NewTermListModel(g)
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return fmt.Errorf("run browser: %w", err)
	}

	m, ok := final.(TermListModel)
	if !ok || m.Selected == nil {
		return nil
	}

	printInfo("Selected %q", m.Selected.Lemma)
	if m.Selected.Explanation != "" {
		printDetail("%s", m.Selected.Explanation)
	}
	if !m.Selected.Expanded {
		printNewline()
		printNextStep("Expand", fmt.Sprintf("wordmiro expand %s %s", m.Selected.Lemma, input))
	}
	return nil
}

// =============================================================================
// TermListModel - Interactive term selection
// =============================================================================

// termEntry is one row of the term list.
type termEntry struct {
	node      *graph.Node
	relations int
}

// TermListModel is the bubbletea model for interactive term selection.
type TermListModel struct {
	Entries  []termEntry
	Cursor   int
	Selected *graph.Node
	Height   int
	Offset   int
}

// NewTermListModel builds the model from a graph, terms sorted by lemma.
func NewTermListModel(g *graph.Graph) TermListModel {
	counts := make(map[string]int)
	for _, e := range g.Edges() {
		counts[e.From]++
		counts[e.To]++
	}

	entries := make([]termEntry, 0, g.NodeCount())
	for _, n := range g.Nodes() {
		entries = append(entries, termEntry{node: n, relations: counts[n.ID]})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].node.Lemma < entries[j].node.Lemma
	})

	return TermListModel{
		Entries: entries,
		Height:  15,
	}
}

func (m TermListModel) Init() tea.Cmd {
	return nil
}

func (m TermListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Entries)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			m.Selected = m.Entries[m.Cursor].node
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m TermListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Browse Terms"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Entries) {
		end = len(m.Entries)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		e := m.Entries[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		expanded := ""
		if e.node.Expanded {
			expanded = "✓"
		}

		pos := e.node.POS
		if pos == "" {
			pos = "—"
		}

		rows = append(rows, []string{
			cursor,
			e.node.Lemma,
			pos,
			fmt.Sprintf("%d", e.relations),
			expanded,
			truncate(e.node.Explanation, 40),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Term", "POS", "Links", "Expanded", "Explanation").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			actualIdx := m.Offset + row
			if actualIdx >= len(m.Entries) {
				return lipgloss.NewStyle()
			}
			e := m.Entries[actualIdx]

			base := lipgloss.NewStyle()
			if actualIdx == m.Cursor {
				return listSelectedStyle
			}
			if e.node.Expanded {
				return base.Foreground(colorDim)
			}
			return base.Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Entries))))

	return b.String()
}

// truncate shortens s to at most n runes, appending an ellipsis when cut.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
