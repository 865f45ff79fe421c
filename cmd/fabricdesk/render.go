package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"fabric-desk/internal/app"
	"fabric-desk/internal/config"
)

// printer writes structured results in the format picked by --output, or
// through --template when one is given.
type printer struct {
	out      io.Writer
	format   string
	template string
	app      *app.App
}

func newPrinter(cmd *cobra.Command, a *app.App) *printer {
	tmpl, _ := cmd.Flags().GetString("template")
	return &printer{out: cmd.OutOrStdout(), format: a.Config.Output, template: tmpl, app: a}
}

// print renders data. headers and rows describe the table form of data.
func (p *printer) print(data any, headers []string, rows [][]string) error {
	if p.template != "" {
		rendered, err := p.app.Renderer.Load(p.template, data)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(p.out, rendered)
		return err
	}

	switch p.format {
	case config.OutputJSON:
		enc := json.NewEncoder(p.out)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case config.OutputYAML:
		enc := yaml.NewEncoder(p.out)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	default:
		return p.table(headers, rows)
	}
}

func (p *printer) table(headers []string, rows [][]string) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(p.out, text.FgYellow.Sprint("No results"))
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(p.out)
	t.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = text.FgHiCyan.Sprint(h)
	}
	t.AppendHeader(header)

	for _, r := range rows {
		row := make(table.Row, len(r))
		for i, cell := range r {
			row[i] = cell
		}
		t.AppendRow(row)
	}
	t.Render()
	return nil
}

// lines prints one value per line, or the structured form for yaml/json.
func (p *printer) lines(header string, values []string) error {
	if p.template == "" && p.format == config.OutputTable {
		for _, v := range values {
			if _, err := fmt.Fprintln(p.out, v); err != nil {
				return err
			}
		}
		return nil
	}
	rows := make([][]string, len(values))
	for i, v := range values {
		rows[i] = []string{v}
	}
	return p.print(values, []string{header}, rows)
}

// startSpinner shows a busy indicator on stderr when it is a terminal. The
// returned function stops it.
func startSpinner(suffix string) func() {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + suffix
	s.Start()
	return s.Stop
}
