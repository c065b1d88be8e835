package catalog

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/catalognav/internal/tabledata"
	"github.com/leapstack-labs/catalognav/internal/ui/features/catalog/pages"
	"github.com/leapstack-labs/catalognav/pkg/core"
)

// RecordsURL is the browser endpoint that patches the grid with link's rows.
func RecordsURL(link core.Link) string {
	u := "/ui/records/" + url.PathEscape(link.Database) + "/" + url.PathEscape(link.Table)
	if link.IsRelated() {
		q := url.Values{}
		q.Set("link_name", link.LinkName)
		q.Set("link_row", link.LinkRow)
		u += "?" + q.Encode()
	}
	return u
}

// linkFromRequest reads the link addressed by a records URL.
func linkFromRequest(r *http.Request) core.Link {
	q := r.URL.Query()
	return core.Link{
		Database: pathName(r, "db"),
		Table:    pathName(r, "table"),
		LinkName: q.Get("link_name"),
		LinkRow:  q.Get("link_row"),
	}
}

// pathName returns a URL parameter. chi matches on the raw path when the
// request path carries escapes, so the parameter is unescaped then.
func pathName(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v
	}
	if unescaped, err := url.PathUnescape(v); err == nil {
		return unescaped
	}
	return v
}

// buildTree turns the catalog into the sidebar tree.
func buildTree(cat *core.Catalog) pages.TreeData {
	var tree pages.TreeData
	if cat == nil {
		return tree
	}
	for _, db := range cat.Databases {
		node := pages.DatabaseNode{Name: db.Name}
		for _, t := range db.Tables {
			table := pages.TableNode{
				Name:       t.Name,
				RecordsURL: RecordsURL(core.Link{Database: db.Name, Table: t.Name}),
			}
			for _, rel := range t.Relationships {
				table.Relationships = append(table.Relationships, pages.RelationshipNode{
					LinkName: rel.LinkName,
					Target:   rel.TableName,
				})
			}
			for _, f := range t.Fields {
				typ := f.Type
				if f.IsArray() {
					typ += "[]"
				}
				table.Fields = append(table.Fields, pages.FieldNode{Name: f.Name, Type: typ})
			}
			node.Tables = append(node.Tables, table)
		}
		tree.Databases = append(tree.Databases, node)
	}
	return tree
}

// buildGrid turns a table view into the grid. link is the request that
// produced view; for related rows it names the table the link started from.
func buildGrid(link core.Link, view *core.TableView) pages.GridData {
	grid := pages.GridData{Title: view.Database + "." + view.Table}
	if link.IsRelated() {
		grid.Via = fmt.Sprintf("%s of row %s in %s", core.LinkColumnName(link.LinkName), link.LinkRow, link.Title())
		grid.BackURL = RecordsURL(core.Link{Database: link.Database, Table: link.Table})
		grid.BackLabel = link.Title()
	}

	for _, col := range view.Columns {
		grid.Headers = append(grid.Headers, pages.HeaderCell{Name: col.Name, IsLink: col.IsLink, IsArray: col.IsArray})
	}

	for _, row := range view.Rows {
		cells := make([]pages.GridCell, len(view.Columns))
		for i, col := range view.Columns {
			cells[i] = pages.GridCell{Text: tabledata.FormatCell(row, col)}
			if !col.IsLink {
				continue
			}
			if next, err := view.Follow(row, col.Key); err == nil {
				cells[i].FollowURL = RecordsURL(next)
			}
		}
		grid.Rows = append(grid.Rows, cells)
	}
	return grid
}
