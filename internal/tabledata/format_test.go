package tabledata

import (
	"encoding/json"
	"testing"

	"github.com/leapstack-labs/catalognav/pkg/core"
	"github.com/stretchr/testify/assert"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "Ada", "Ada"},
		{"number", json.Number("12345678901234567890"), "12345678901234567890"},
		{"bool", true, "true"},
		{"array", []any{"a", json.Number("2"), nil}, "[a, 2, ]"},
		{"empty array", []any{}, "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatValue(tt.in))
		})
	}
}

func TestFormatCell(t *testing.T) {
	link := core.Column{Key: "events", Name: "<events>", IsLink: true}
	field := core.Column{Key: "first_name", Name: "first_name"}

	withID := core.Row{"row_id": json.Number("7"), "first_name": "Ada"}
	withoutID := core.Row{"first_name": "Bob"}

	assert.Equal(t, "<events>", FormatCell(withID, link))
	assert.Equal(t, "", FormatCell(withoutID, link))
	assert.Equal(t, "Ada", FormatCell(withID, field))
	assert.Equal(t, "", FormatCell(core.Row{}, field))
}

func TestHeadersAndCells(t *testing.T) {
	view := &core.TableView{
		Columns: []core.Column{
			{Key: "events", Name: "<events>", IsLink: true},
			{Key: "first_name", Name: "first_name"},
			{Key: "nicknames", Name: "nicknames", IsArray: true},
		},
		Rows: []core.Row{
			{"row_id": json.Number("1"), "first_name": "Ada", "nicknames": []any{"A"}},
		},
	}

	assert.Equal(t, []string{"<events>", "first_name", "nicknames"}, Headers(view))
	assert.Equal(t, [][]string{{"<events>", "Ada", "[A]"}}, Cells(view))
}
