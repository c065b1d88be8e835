package core

// Catalog is a snapshot of every database known to the extraction tool.
// A Catalog is never updated in place; a refresh produces a new one.
type Catalog struct {
	Databases []Database `json:"databases" yaml:"databases"`
}

// Database is a named collection of tables. Its identifier is its
// position in Catalog.Databases.
type Database struct {
	Name   string  `json:"name" yaml:"name"`
	Tables []Table `json:"tables" yaml:"tables"`
}

// Table describes one table and the links leading out of it.
type Table struct {
	Name          string         `json:"name" yaml:"name"`
	Type          string         `json:"type,omitempty" yaml:"type,omitempty"`
	Fields        []Field        `json:"fields" yaml:"fields"`
	Relationships []Relationship `json:"relationships" yaml:"relationships"`
}

// Field is a declared column of a table.
type Field struct {
	Name          string `json:"name" yaml:"name"`
	Type          string `json:"type" yaml:"type"`
	Position      int    `json:"position" yaml:"position"`
	RepeatedCount int    `json:"repeated_count" yaml:"repeated_count"`
}

// IsArray reports whether the field holds a variable-length array.
// The extraction tool encodes this as a repeated count of zero.
func (f Field) IsArray() bool {
	return f.RepeatedCount == 0
}

// Relationship is a named link from a table to another table of the same database.
type Relationship struct {
	LinkName  string `json:"link_name" yaml:"link_name"`
	TableName string `json:"table_name" yaml:"table_name"`
}

// Database returns the database at index id.
func (c *Catalog) Database(id int) (*Database, bool) {
	if c == nil || id < 0 || id >= len(c.Databases) {
		return nil, false
	}
	return &c.Databases[id], true
}

// Table returns the table at index tableID of database dbID.
func (c *Catalog) Table(dbID, tableID int) (*Table, bool) {
	db, ok := c.Database(dbID)
	if !ok || tableID < 0 || tableID >= len(db.Tables) {
		return nil, false
	}
	return &db.Tables[tableID], true
}

// FindDatabase returns the first database named name.
func (c *Catalog) FindDatabase(name string) (int, *Database, bool) {
	if c == nil {
		return -1, nil, false
	}
	for i := range c.Databases {
		if c.Databases[i].Name == name {
			return i, &c.Databases[i], true
		}
	}
	return -1, nil, false
}

// FindTable returns the first table named tableName in a database named
// dbName. Databases sharing a name are searched in order. Matching is exact
// and case-sensitive.
func (c *Catalog) FindTable(dbName, tableName string) (*Table, bool) {
	if c == nil {
		return nil, false
	}
	for i := range c.Databases {
		db := &c.Databases[i]
		if db.Name != dbName {
			continue
		}
		for j := range db.Tables {
			if db.Tables[j].Name == tableName {
				return &db.Tables[j], true
			}
		}
	}
	return nil, false
}

// Relationship returns the relationship of t named linkName.
func (t *Table) Relationship(linkName string) (*Relationship, bool) {
	for i := range t.Relationships {
		if t.Relationships[i].LinkName == linkName {
			return &t.Relationships[i], true
		}
	}
	return nil, false
}
