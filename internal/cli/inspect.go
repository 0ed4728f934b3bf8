package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	spanio "github.com/matzehuels/spantower/pkg/io"
	"github.com/matzehuels/spantower/pkg/render/spans/layout"
)

// modelSuffix marks files that already hold a layout model.
const modelSuffix = ".layout.json"

// inspectCommand creates the inspect command, which prints a layout as tables.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		flags sessionFlags
		only  string
	)

	cmd := &cobra.Command{
		Use:   "inspect [doc.json|doc.layout.json]",
		Short: "Print the rows, spans and arcs of a layout",
		Long: `Print the rows, spans and arcs of a layout as tables.

The argument is either a document payload, which is laid out first, or a
model written by 'layout'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := c.loadModel(cmd, &flags, args[0])
			if err != nil {
				return err
			}
			return printTables(cmd.OutOrStdout(), m, only)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&only, "only", "", "print a single table: rows, spans or arcs")

	return cmd
}

// loadModel reads a stored model or lays out a document.
func (c *CLI) loadModel(cmd *cobra.Command, flags *sessionFlags, path string) (*layout.Model, error) {
	if strings.HasSuffix(path, modelSuffix) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read model %s: %w", path, err)
		}
		return spanio.UnmarshalModel(data)
	}
	sess, err := flags.session()
	if err != nil {
		return nil, err
	}
	res, err := c.layout(cmd.Context(), flags.options(cmd, path, sess), flags.noCache)
	if err != nil {
		return nil, err
	}
	printMessages(cmd.ErrOrStderr(), res.Messages)
	return res.Model, nil
}

func printTables(w io.Writer, m *layout.Model, only string) error {
	tables := []struct {
		name  string
		title string
		build func(*layout.Model) *table.Table
	}{
		{"rows", "Rows", rowTable},
		{"spans", "Spans", spanTable},
		{"arcs", "Arcs", arcTable},
	}
	printed := false
	for _, t := range tables {
		if only != "" && only != t.name {
			continue
		}
		fmt.Fprintln(w, StyleTitle.Render(t.title))
		fmt.Fprintln(w, t.build(m).Render())
		fmt.Fprintln(w)
		printed = true
	}
	if !printed {
		return fmt.Errorf("unknown table %q (rows, spans, arcs)", only)
	}
	fmt.Fprintln(w, StyleDim.Render(fmt.Sprintf("canvas %.0f×%.0f", m.CanvasWidth, m.CanvasHeight)))
	return nil
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

func rowTable(m *layout.Model) *table.Table {
	t := newTable("#", "Y", "Height", "Sentence", "Text")
	for _, r := range m.Rows {
		t.Row(
			fmt.Sprint(r.Index),
			fmtFloat(r.Y),
			fmtFloat(r.Height),
			fmt.Sprint(r.Sentence),
			truncate(rowText(r), 40),
		)
	}
	return t
}

func spanTable(m *layout.Model) *table.Table {
	t := newTable("ID", "Type", "Label", "Row", "X", "Y", "Width", "Text")
	for _, s := range m.Spans {
		t.Row(
			s.ID,
			s.Type,
			s.Label,
			fmt.Sprint(s.Row),
			fmtFloat(s.Box.X),
			fmtFloat(s.Box.Y),
			fmtFloat(s.Box.W),
			truncate(s.Text, 24),
		)
	}
	return t
}

func arcTable(m *layout.Model) *table.Table {
	t := newTable("Arc", "Origin", "Target", "Label", "Row", "From", "To")
	for _, r := range m.Rows {
		for _, l := range r.Lines {
			t.Row(
				l.Arc,
				l.Origin,
				l.Target,
				l.Label,
				fmt.Sprint(r.Index),
				fmtFloat(l.From),
				fmtFloat(l.To),
			)
		}
	}
	return t
}

// rowText joins the chunk texts of r.
func rowText(r layout.Row) string {
	var b strings.Builder
	for _, c := range r.Chunks {
		b.WriteString(c.Text)
		b.WriteString(c.NextSpace)
	}
	return strings.TrimSpace(b.String())
}

func fmtFloat(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
