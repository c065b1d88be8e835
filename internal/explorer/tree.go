package explorer

import (
	"fmt"

	"github.com/leapstack-labs/catalognav/pkg/core"
)

type nodeKind int

const (
	nodeDatabase nodeKind = iota
	nodeTable
	nodeField
	nodeRelationship
)

// node is one visible line of the catalog tree.
type node struct {
	kind     nodeKind
	depth    int
	label    string
	database string
	table    string
	key      string
}

// tree is the flattened, partially expanded view of a catalog.
type tree struct {
	catalog  *core.Catalog
	expanded map[string]bool
	nodes    []node
	cursor   int
}

func newTree() *tree {
	return &tree{expanded: make(map[string]bool)}
}

func dbKey(db string) string       { return db }
func tableKey(db, t string) string { return db + "\x00" + t }

// setCatalog replaces the catalog and keeps expansion state for names that
// still exist.
func (t *tree) setCatalog(cat *core.Catalog) {
	t.catalog = cat
	t.rebuild()
}

func (t *tree) rebuild() {
	t.nodes = t.nodes[:0]
	if t.catalog == nil {
		t.cursor = 0
		return
	}

	for _, db := range t.catalog.Databases {
		key := dbKey(db.Name)
		t.nodes = append(t.nodes, node{kind: nodeDatabase, label: db.Name, database: db.Name, key: key})
		if !t.expanded[key] {
			continue
		}
		for _, tbl := range db.Tables {
			tkey := tableKey(db.Name, tbl.Name)
			t.nodes = append(t.nodes, node{
				kind:     nodeTable,
				depth:    1,
				label:    tbl.Name,
				database: db.Name,
				table:    tbl.Name,
				key:      tkey,
			})
			if !t.expanded[tkey] {
				continue
			}
			for _, f := range tbl.Fields {
				label := fmt.Sprintf("%s %s", f.Name, f.Type)
				if f.IsArray() {
					label += "[]"
				}
				t.nodes = append(t.nodes, node{kind: nodeField, depth: 2, label: label, database: db.Name, table: tbl.Name})
			}
			for _, rel := range tbl.Relationships {
				t.nodes = append(t.nodes, node{
					kind:     nodeRelationship,
					depth:    2,
					label:    core.LinkColumnName(rel.LinkName) + " → " + rel.TableName,
					database: db.Name,
					table:    tbl.Name,
				})
			}
		}
	}

	if t.cursor >= len(t.nodes) {
		t.cursor = len(t.nodes) - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
}

func (t *tree) selected() (node, bool) {
	if t.cursor < 0 || t.cursor >= len(t.nodes) {
		return node{}, false
	}
	return t.nodes[t.cursor], true
}

func (t *tree) move(delta int) {
	t.cursor += delta
	if t.cursor >= len(t.nodes) {
		t.cursor = len(t.nodes) - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
}

// toggle expands or collapses the selected database or table.
func (t *tree) toggle() {
	n, ok := t.selected()
	if !ok || n.key == "" {
		return
	}
	t.expanded[n.key] = !t.expanded[n.key]
	t.rebuild()
}
