package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/specialistvlad/launchgrid/internal/launch"
	"gopkg.in/yaml.v3"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
)

type renderer func(w io.Writer, plan *launch.Plan) error

var renderers = map[string]renderer{
	"json":  renderJSON,
	"yaml":  renderYAML,
	"table": renderTable,
}

func renderJSON(w io.Writer, plan *launch.Plan) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(plan)
}

func renderYAML(w io.Writer, plan *launch.Plan) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(plan); err != nil {
		return err
	}
	return enc.Close()
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func renderTable(w io.Writer, plan *launch.Plan) error {
	t := newTable("#", "PROCESS", "EXECUTABLE", "OUTPUT", "PARAMS", "ARGS")
	for i, r := range plan.Requests {
		t.Row(strconv.Itoa(i+1), r.FullName(), r.Executable.String(), string(r.Output), strconv.Itoa(len(r.Parameters)), strings.Join(r.Args, " "))
	}
	fmt.Fprintln(w, t.Render())

	for _, g := range plan.Lifecycle {
		state := "active"
		if !g.Active {
			state = "inactive"
		}
		fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("lifecycle %s (%s, autostart=%t): %s", g.Name, state, g.Autostart, strings.Join(g.NodeNames, ", "))))
	}
	for _, f := range plan.Failures {
		fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("excluded %s: %s", f.Name, f.Error)))
	}
	fmt.Fprintln(w, dimStyle.Render("plan "+plan.ID))
	return nil
}

func renderArguments(w io.Writer, decls []launch.ArgumentDeclaration) error {
	t := newTable("ARGUMENT", "DEFAULT", "DESCRIPTION")
	for _, d := range decls {
		def := "(required)"
		if d.Default != nil {
			def = describe(d.Default)
		}
		desc := d.Description
		if len(d.Choices) > 0 {
			desc = strings.TrimSpace(desc + " [" + strings.Join(d.Choices, "|") + "]")
		}
		t.Row(d.Name, def, desc)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func describe(s launch.Substitution) string {
	if str, ok := s.(fmt.Stringer); ok {
		return str.String()
	}
	return fmt.Sprintf("%T", s)
}
