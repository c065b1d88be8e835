package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() *Catalog {
	return &Catalog{Databases: []Database{
		{Name: "campus", Tables: []Table{
			{Name: "person", Relationships: []Relationship{{LinkName: "events", TableName: "event"}}},
			{Name: "event"},
			{Name: "person"},
		}},
		{Name: "Campus"},
		{Name: "campus", Tables: []Table{{Name: "shadow"}}},
	}}
}

func TestField_IsArray(t *testing.T) {
	assert.True(t, Field{RepeatedCount: 0}.IsArray())
	assert.False(t, Field{RepeatedCount: 1}.IsArray())
	assert.False(t, Field{RepeatedCount: 4}.IsArray())
}

func TestCatalog_Database(t *testing.T) {
	c := testCatalog()

	db, ok := c.Database(1)
	require.True(t, ok)
	assert.Equal(t, "Campus", db.Name)

	for _, id := range []int{-1, 3} {
		_, ok := c.Database(id)
		assert.False(t, ok, "id %d", id)
	}

	var nilCatalog *Catalog
	_, ok = nilCatalog.Database(0)
	assert.False(t, ok)
}

func TestCatalog_Table(t *testing.T) {
	c := testCatalog()

	table, ok := c.Table(0, 1)
	require.True(t, ok)
	assert.Equal(t, "event", table.Name)

	_, ok = c.Table(0, 3)
	assert.False(t, ok)
	_, ok = c.Table(1, 0)
	assert.False(t, ok, "database without tables")
	_, ok = c.Table(5, 0)
	assert.False(t, ok)
}

func TestCatalog_FindTable(t *testing.T) {
	c := testCatalog()

	table, ok := c.FindTable("campus", "person")
	require.True(t, ok)
	assert.Same(t, &c.Databases[0].Tables[0], table, "first match wins")

	table, ok = c.FindTable("campus", "shadow")
	require.True(t, ok, "later databases with the same name are searched")
	assert.Same(t, &c.Databases[2].Tables[0], table)

	_, ok = c.FindTable("CAMPUS", "person")
	assert.False(t, ok, "matching is case-sensitive")

	_, ok = c.FindTable("campus", "nope")
	assert.False(t, ok)

	var nilCatalog *Catalog
	_, ok = nilCatalog.FindTable("campus", "person")
	assert.False(t, ok)
}

func TestCatalog_FindDatabase(t *testing.T) {
	c := testCatalog()

	id, db, ok := c.FindDatabase("Campus")
	require.True(t, ok)
	assert.Equal(t, 1, id)
	assert.Equal(t, "Campus", db.Name)

	id, _, ok = c.FindDatabase("missing")
	assert.False(t, ok)
	assert.Equal(t, -1, id)
}

func TestTable_Relationship(t *testing.T) {
	table := testCatalog().Databases[0].Tables[0]

	rel, ok := table.Relationship("events")
	require.True(t, ok)
	assert.Equal(t, "event", rel.TableName)

	_, ok = table.Relationship("Events")
	assert.False(t, ok)
}
