package testutil

// SchoolCatalogJSON is a catalog dump with one database and one table.
const SchoolCatalogJSON = `{"databases":[{"name":"school","tables":[{"name":"students","fields":[{"name":"id","type":"int","position":0,"repeated_count":1}],"relationships":[]}]}]}`

// CampusCatalogJSON is a catalog dump with two databases, relationships,
// an array field and a table without fields.
const CampusCatalogJSON = `{
  "databases": [
    {
      "name": "campus",
      "tables": [
        {
          "name": "person",
          "type": "table",
          "fields": [
            {"name": "first_name", "type": "string", "position": 0, "repeated_count": 1},
            {"name": "nicknames", "type": "string", "position": 1, "repeated_count": 0}
          ],
          "relationships": [
            {"link_name": "events", "table_name": "event"}
          ]
        },
        {
          "name": "event",
          "type": "table",
          "fields": [
            {"name": "title", "type": "string", "position": 0, "repeated_count": 1}
          ],
          "relationships": [
            {"link_name": "owner", "table_name": "person"},
            {"link_name": "room", "table_name": "room"}
          ]
        },
        {
          "name": "marker",
          "type": "table",
          "fields": [],
          "relationships": [
            {"link_name": "events", "table_name": "event"}
          ]
        }
      ]
    },
    {
      "name": "catalog",
      "tables": [
        {"name": "gaia_table", "type": "system", "fields": [{"name": "name", "type": "string", "position": 0, "repeated_count": 1}], "relationships": []}
      ]
    }
  ]
}`
