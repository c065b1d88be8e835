// Package pages holds the templ components of the catalog browser page.
package pages

// DatastarScript is the datastar client bundle the page loads.
const DatastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.6/bundles/datastar.js"

// Element ids patched by the SSE handlers.
const (
	TreeID   = "catalog-tree"
	GridID   = "table-grid"
	StatusID = "status"
)

// TreeData is the catalog tree of the sidebar.
type TreeData struct {
	Databases []DatabaseNode
}

// DatabaseNode is one database and its tables.
type DatabaseNode struct {
	Name   string
	Tables []TableNode
}

// TableNode is one table of the tree. RecordsURL loads its rows into the grid.
type TableNode struct {
	Name          string
	RecordsURL    string
	Relationships []RelationshipNode
	Fields        []FieldNode
}

// RelationshipNode is a link leading out of a table.
type RelationshipNode struct {
	LinkName string
	Target   string
}

// FieldNode is a declared column. Type carries a "[]" suffix for arrays.
type FieldNode struct {
	Name string
	Type string
}

// GridData is the table view shown in the main pane. A zero GridData
// renders an empty pane.
type GridData struct {
	Title     string
	Via       string
	BackURL   string
	BackLabel string
	Headers   []HeaderCell
	Rows      [][]GridCell
}

// HeaderCell is one column header.
type HeaderCell struct {
	Name    string
	IsLink  bool
	IsArray bool
}

// GridCell is one rendered value. Cells with a FollowURL open the related rows.
type GridCell struct {
	Text      string
	FollowURL string
}

// StatusKind selects how the status line is styled.
type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusNotice
	StatusError
)

// StatusData is the message shown above the grid.
type StatusData struct {
	Kind    StatusKind
	Message string
}

func get(url string) string {
	return "@get('" + url + "')"
}

func post(url string) string {
	return "@post('" + url + "')"
}
