package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/catalognav/internal/cli/output"
	"github.com/leapstack-labs/catalognav/internal/tabledata"
	"github.com/leapstack-labs/catalognav/pkg/core"
)

func renderView(r *output.Renderer, view *core.TableView, format string) error {
	switch format {
	case "json":
		return r.JSON(view)
	case "yaml":
		return r.YAML(view)
	case "csv":
		return renderViewCSV(r, view)
	case "md", "markdown":
		return renderViewMarkdown(r, view)
	case "table", "":
		return renderViewTable(r, view)
	default:
		return fmt.Errorf("unknown format %q (want table, json, csv, md or yaml)", format)
	}
}

func renderViewTable(r *output.Renderer, view *core.TableView) error {
	styles := r.Styles()
	r.Println(styles.Header.Render(view.Database + "." + view.Table))

	if len(view.Rows) == 0 {
		r.Println("(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.Out())
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(view.Columns))
	for i, col := range view.Columns {
		name := col.Name
		switch {
		case col.IsLink:
			name = styles.Link.Render(name)
		case col.IsArray:
			name = styles.Array.Render(name + "[]")
		}
		header[i] = name
	}
	t.AppendHeader(header)

	for _, cells := range tabledata.Cells(view) {
		row := make(table.Row, len(cells))
		for i, cell := range cells {
			row[i] = cell
		}
		t.AppendRow(row)
	}

	t.Render()
	r.Printf("(%d rows)\n", len(view.Rows))
	return nil
}

func renderViewCSV(r *output.Renderer, view *core.TableView) error {
	headers := tabledata.Headers(view)
	for i, h := range headers {
		headers[i] = escapeCSV(h)
	}
	r.Println(strings.Join(headers, ","))

	for _, cells := range tabledata.Cells(view) {
		for i, cell := range cells {
			cells[i] = escapeCSV(cell)
		}
		r.Println(strings.Join(cells, ","))
	}
	return nil
}

func renderViewMarkdown(r *output.Renderer, view *core.TableView) error {
	r.Println(output.FormatHeader(1, view.Database+"."+view.Table))
	r.Println("")

	if len(view.Rows) == 0 {
		r.Println("(0 rows)")
		return nil
	}

	headers := tabledata.Headers(view)
	r.Printf("| %s |\n", strings.Join(headers, " | "))
	seps := make([]string, len(headers))
	for i := range seps {
		seps[i] = "---"
	}
	r.Printf("| %s |\n", strings.Join(seps, " | "))

	for _, cells := range tabledata.Cells(view) {
		for i, cell := range cells {
			cells[i] = strings.ReplaceAll(cell, "|", `\|`)
		}
		r.Printf("| %s |\n", strings.Join(cells, " | "))
	}
	return nil
}

func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
