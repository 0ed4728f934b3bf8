package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/spantower/pkg/messages"
	"github.com/matzehuels/spantower/pkg/render/spans/layout"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// browseCommand creates the interactive row browser.
func (c *CLI) browseCommand() *cobra.Command {
	var flags sessionFlags

	cmd := &cobra.Command{
		Use:   "browse [doc.json|doc.layout.json]",
		Short: "Browse the rows of a layout interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var msgs []messages.Message
			var m *layout.Model
			if strings.HasSuffix(args[0], modelSuffix) {
				var err error
				if m, err = c.loadModel(cmd, &flags, args[0]); err != nil {
					return err
				}
			} else {
				sess, err := flags.session()
				if err != nil {
					return err
				}
				res, err := c.layout(cmd.Context(), flags.options(cmd, args[0], sess), flags.noCache)
				if err != nil {
					return err
				}
				m, msgs = res.Model, res.Messages
			}
			p := tea.NewProgram(NewRowBrowser(m, msgs), tea.WithContext(cmd.Context()), tea.WithOutput(cmd.OutOrStdout()))
			_, err := p.Run()
			return err
		},
	}

	flags.register(cmd)
	return cmd
}

// =============================================================================
// RowBrowser - Interactive row list
// =============================================================================

// RowBrowser is the bubbletea model for browsing the rows of a layout.
// Enter expands the selected row into its spans and arcs; tab switches
// to the message list.
type RowBrowser struct {
	Model        *layout.Model
	Messages     []messages.Message
	Cursor       int
	Offset       int
	Height       int
	Expanded     bool
	ShowMessages bool
}

// NewRowBrowser creates a browser over the rows of m.
func NewRowBrowser(m *layout.Model, msgs []messages.Message) RowBrowser {
	return RowBrowser{Model: m, Messages: msgs, Height: 15}
}

func (m RowBrowser) Init() tea.Cmd {
	return nil
}

func (m RowBrowser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			m.ShowMessages = !m.ShowMessages
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				m.Expanded = false
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Model.Rows)-1 {
				m.Cursor++
				m.Expanded = false
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Model.Rows) > 0 {
				m.Expanded = !m.Expanded
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m RowBrowser) View() string {
	var b strings.Builder

	if m.ShowMessages {
		b.WriteString(StyleTitle.Render(fmt.Sprintf("Messages (%d)", len(m.Messages))))
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render("tab rows  q quit"))
		b.WriteString("\n\n")
		if len(m.Messages) == 0 {
			b.WriteString(listDimStyle.Render("  no messages"))
			b.WriteString("\n")
		}
		for _, msg := range m.Messages {
			b.WriteString("  " + formatMessage(msg) + "\n")
		}
		return b.String()
	}

	b.WriteString(StyleTitle.Render("Rows"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ expand  tab messages  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Model.Rows))
	for i := m.Offset; i < end; i++ {
		r := m.Model.Rows[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		line := fmt.Sprintf("%s%3d  %s", cursor, r.Index, truncate(rowText(r), 60))
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
		if i == m.Cursor && m.Expanded {
			b.WriteString(m.rowDetail(r))
		}
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(m.Model.Rows)), len(m.Model.Rows))))
	return b.String()
}

// rowDetail lists the spans placed on r and the arc segments drawn above it.
func (m RowBrowser) rowDetail(r layout.Row) string {
	var b strings.Builder
	for _, s := range m.Model.Spans {
		if s.Row != r.Index {
			continue
		}
		fmt.Fprintf(&b, "       %s %s %s\n", listDimStyle.Render("span"), s.ID, listDimStyle.Render(s.Type+" "+quoted(s.Text)))
	}
	for _, l := range r.Lines {
		fmt.Fprintf(&b, "       %s %s %s %s %s\n", listDimStyle.Render("arc "), l.Origin, iconArrow, l.Target, listDimStyle.Render(l.Label))
	}
	return b.String()
}

func quoted(s string) string {
	return fmt.Sprintf("%q", truncate(s, 30))
}
