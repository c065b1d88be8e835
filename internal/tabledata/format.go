package tabledata

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/catalognav/pkg/core"
)

// FormatCell renders the value of col in row as display text. Link cells
// show the link column name for rows that can be followed and are empty
// otherwise.
func FormatCell(row core.Row, col core.Column) string {
	if col.IsLink {
		if _, ok := row.ID(); ok {
			return col.Name
		}
		return ""
	}
	return FormatValue(row[col.Key])
}

// FormatValue renders a decoded JSON value.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = FormatValue(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Headers returns the display names of the view's columns.
func Headers(view *core.TableView) []string {
	headers := make([]string, len(view.Columns))
	for i, col := range view.Columns {
		headers[i] = col.Name
	}
	return headers
}

// Cells returns the view's rows rendered with FormatCell.
func Cells(view *core.TableView) [][]string {
	cells := make([][]string, len(view.Rows))
	for i, row := range view.Rows {
		line := make([]string, len(view.Columns))
		for j, col := range view.Columns {
			line[j] = FormatCell(row, col)
		}
		cells[i] = line
	}
	return cells
}
