package shell

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"alaqsa/pkg/module"
)

var (
	marker   = color.New(color.FgRed, color.Bold)
	keyText  = color.New(color.FgGreen, color.Bold)
	descText = color.New(color.FgBlue, color.Bold)
	pathText = color.New(color.FgGreen, color.Bold)
	bold     = color.New(color.Bold)
)

func printError(out io.Writer, err error) {
	fmt.Fprintf(out, "%s %v\n", marker.Sprint("Error:"), err)
}

func printLoaded(out io.Writer, path string) {
	fmt.Fprintf(out, "%s %s %s\n", marker.Sprint("*"), bold.Sprint("loaded module"), pathText.Sprint(path))
}

func printNoModule(out io.Writer) {
	fmt.Fprintln(out, "no modules loaded.")
}

func printHelp(out io.Writer, m module.Module) {
	fmt.Fprintf(out, "Module info:\n%s\n", m.Describe())
}

// renderOptions печатает опции в порядке объявления; обязательные помечены "*".
func renderOptions(out io.Writer, m module.Module) {
	fmt.Fprintln(out, "Options:")
	opts := m.Options()
	if len(opts) == 0 {
		fmt.Fprintln(out, "  no configurable options.")
		return
	}
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"", "KEY", "VALUE", "DESCRIPTION"})
	for _, opt := range opts {
		mark := " "
		if !opt.Optional {
			mark = marker.Sprint("*")
		}
		t.AppendRow(table.Row{
			mark,
			keyText.Sprint(opt.Key),
			bold.Sprint(module.Display(m, opt.Key)),
			descText.Sprint(opt.Description),
		})
	}
	fmt.Fprintln(out, t.Render())
}
