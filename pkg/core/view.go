package core

import "fmt"

// Link identifies the rows a table view should show. When LinkName and
// LinkRow are both set, the view shows the rows of the related table
// reachable from row LinkRow of Table through LinkName.
type Link struct {
	Database string `json:"db_name" yaml:"db_name"`
	Table    string `json:"table_name" yaml:"table_name"`
	LinkName string `json:"link_name,omitempty" yaml:"link_name,omitempty"`
	LinkRow  string `json:"link_row,omitempty" yaml:"link_row,omitempty"`
}

// IsRelated reports whether the link follows a relationship.
func (l Link) IsRelated() bool {
	return l.LinkName != "" && l.LinkRow != ""
}

// Title is the "db.table" label used for views of this link.
func (l Link) Title() string {
	return l.Database + "." + l.Table
}

// Column is one display column of a TableView.
type Column struct {
	Key     string `json:"key" yaml:"key"`
	Name    string `json:"name" yaml:"name"`
	IsLink  bool   `json:"is_link" yaml:"is_link"`
	IsArray bool   `json:"is_array" yaml:"is_array"`
}

// LinkColumnName is the display name of the generated column for a relationship.
func LinkColumnName(linkName string) string {
	return "<" + linkName + ">"
}

// Row is one record as returned by the extraction tool, keyed by field name.
type Row map[string]any

// RowIDKey is the key under which the extraction tool reports a row's identifier.
const RowIDKey = "row_id"

// ID returns the row identifier used when following links from this row.
// Rows without a row_id fall back to an "id" field.
func (r Row) ID() (string, bool) {
	for _, key := range []string{RowIDKey, "id"} {
		if v, ok := r[key]; ok && v != nil {
			return fmt.Sprint(v), true
		}
	}
	return "", false
}

// TableView is a display-ready, never cached, snapshot of one table's rows.
type TableView struct {
	Database string   `json:"db_name" yaml:"db_name"`
	Table    string   `json:"table_name" yaml:"table_name"`
	Columns  []Column `json:"columns" yaml:"columns"`
	Rows     []Row    `json:"rows" yaml:"rows"`
}

// Follow returns the link that shows the rows related to row through linkName.
func (v *TableView) Follow(row Row, linkName string) (Link, error) {
	id, ok := row.ID()
	if !ok {
		return Link{}, fmt.Errorf("row has no identifier")
	}
	return Link{Database: v.Database, Table: v.Table, LinkName: linkName, LinkRow: id}, nil
}

// LinkColumns returns the link columns of the view in display order.
func (v *TableView) LinkColumns() []Column {
	var cols []Column
	for _, c := range v.Columns {
		if c.IsLink {
			cols = append(cols, c)
		}
	}
	return cols
}
