package tabledata

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/leapstack-labs/catalognav/internal/catalog"
	"github.com/leapstack-labs/catalognav/internal/extractor"
	"github.com/leapstack-labs/catalognav/internal/testutil"
	"github.com/leapstack-labs/catalognav/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher(t *testing.T, catalogJSON string) (*Fetcher, *extractor.FakeRunner) {
	t.Helper()
	logger := testutil.NewTestLogger(t)
	runner := extractor.NewFakeRunner(catalogJSON)
	cache := catalog.New(runner, catalog.WithLogger(logger))
	return NewFetcher(cache, runner, logger), runner
}

func TestGetTableData_SchoolScenario(t *testing.T) {
	fetcher, runner := newTestFetcher(t, testutil.SchoolCatalogJSON)
	link := core.Link{Database: "school", Table: "students"}
	runner.SetTable(extractor.TableArgs(link), extractor.Result{Stdout: []byte(`{"rows":[{"id":1},{"id":2}]}`)})

	view, err := fetcher.GetTableData(context.Background(), link)
	require.NoError(t, err)

	assert.Equal(t, "school", view.Database)
	assert.Equal(t, "students", view.Table)
	assert.Equal(t, []core.Column{{Key: "id", Name: "id", IsLink: false, IsArray: false}}, view.Columns)
	require.Len(t, view.Rows, 2)
	assert.Equal(t, json.Number("1"), view.Rows[0]["id"])
	assert.Equal(t, json.Number("2"), view.Rows[1]["id"])
}

func TestGetTableData_ColumnOrder(t *testing.T) {
	catalogJSON := `{"databases":[{"name":"d","tables":[
		{"name":"t","fields":[
			{"name":"a","type":"int","position":0,"repeated_count":1},
			{"name":"b","type":"int","position":1,"repeated_count":0}
		],"relationships":[{"link_name":"r","table_name":"other"}]},
		{"name":"other","fields":[{"name":"x","type":"int","position":0,"repeated_count":1}],"relationships":[]}
	]}]}`
	fetcher, _ := newTestFetcher(t, catalogJSON)

	view, err := fetcher.GetTableData(context.Background(), core.Link{Database: "d", Table: "t"})
	require.NoError(t, err)

	want := []core.Column{
		{Key: "r", Name: "<r>", IsLink: true, IsArray: false},
		{Key: "a", Name: "a", IsLink: false, IsArray: false},
		{Key: "b", Name: "b", IsLink: false, IsArray: true},
	}
	assert.Equal(t, want, view.Columns)
	assert.Empty(t, view.Rows)
	assert.NotNil(t, view.Rows, "missing rows default to an empty list")
}

func TestGetTableData_FollowsLink(t *testing.T) {
	fetcher, runner := newTestFetcher(t, testutil.CampusCatalogJSON)
	link := core.Link{Database: "campus", Table: "person", LinkName: "events", LinkRow: "42"}
	runner.SetTable(extractor.TableArgs(link), extractor.Result{Stdout: []byte(`{"rows":[{"row_id":9,"title":"standup"}]}`)})

	view, err := fetcher.GetTableData(context.Background(), link)
	require.NoError(t, err)

	assert.Equal(t, "event", view.Table, "the view describes the related table")
	require.Len(t, view.Rows, 1)
	assert.Equal(t, "standup", view.Rows[0]["title"])

	calls := runner.Calls()
	last := calls[len(calls)-1]
	assert.Equal(t, []string{"--database=campus", "--table=person", "--link-name=events", "--link-row=42"}, last.Args)

	keys := make([]string, len(view.Columns))
	for i, c := range view.Columns {
		keys[i] = c.Key
	}
	assert.Equal(t, []string{"owner", "room", "title"}, keys)
}

func TestGetTableData_UnknownLink(t *testing.T) {
	fetcher, runner := newTestFetcher(t, testutil.CampusCatalogJSON)

	view, err := fetcher.GetTableData(context.Background(), core.Link{
		Database: "campus", Table: "person", LinkName: "nope", LinkRow: "1",
	})
	assert.Nil(t, view)
	require.ErrorIs(t, err, ErrLinkNotFound)

	for _, call := range runner.Calls() {
		assert.False(t, call.HasArg("--link-name="), "no row dump may be requested for an unknown link")
	}
}

func TestGetTableData_DanglingLinkTarget(t *testing.T) {
	fetcher, _ := newTestFetcher(t, testutil.CampusCatalogJSON)

	_, err := fetcher.GetTableData(context.Background(), core.Link{
		Database: "campus", Table: "event", LinkName: "room", LinkRow: "1",
	})
	assert.ErrorIs(t, err, ErrLinkNotFound)
}

func TestGetTableData_LinkNameWithoutRow(t *testing.T) {
	fetcher, runner := newTestFetcher(t, testutil.CampusCatalogJSON)

	view, err := fetcher.GetTableData(context.Background(), core.Link{
		Database: "campus", Table: "person", LinkName: "events",
	})
	require.NoError(t, err)
	assert.Equal(t, "person", view.Table)

	calls := runner.Calls()
	assert.False(t, calls[len(calls)-1].HasArg("--link-name="))
}

func TestGetTableData_TableNotFound(t *testing.T) {
	fetcher, runner := newTestFetcher(t, testutil.SchoolCatalogJSON)

	_, err := fetcher.GetTableData(context.Background(), core.Link{Database: "school", Table: "teachers"})
	require.ErrorIs(t, err, ErrTableNotFound)
	assert.Contains(t, err.Error(), "'teachers'")
	assert.Len(t, runner.Calls(), 1, "only the catalog dump may run")
}

func TestGetTableData_ToolError(t *testing.T) {
	fetcher, runner := newTestFetcher(t, testutil.SchoolCatalogJSON)
	link := core.Link{Database: "school", Table: "students"}
	runner.SetTable(extractor.TableArgs(link), extractor.Result{
		Stdout: []byte("{ this is not json"),
		Stderr: []byte("table not found"),
	})

	view, err := fetcher.GetTableData(context.Background(), link)
	assert.Nil(t, view)

	var toolErr *extractor.ToolError
	require.ErrorAs(t, err, &toolErr, "stderr wins; stdout is never parsed")
	assert.Equal(t, "table not found", toolErr.Message)
}

func TestGetTableData_NoColumns(t *testing.T) {
	fetcher, _ := newTestFetcher(t, testutil.CampusCatalogJSON)

	_, err := fetcher.GetTableData(context.Background(), core.Link{Database: "campus", Table: "marker"})
	require.ErrorIs(t, err, ErrNoColumns)
	assert.Contains(t, err.Error(), "'marker'")
}

func TestGetTableData_CatalogError(t *testing.T) {
	fetcher, runner := newTestFetcher(t, "")
	runner.SetCatalog(extractor.Result{Stderr: []byte("no database server")})

	_, err := fetcher.GetTableData(context.Background(), core.Link{Database: "school", Table: "students"})

	var toolErr *extractor.ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.NotErrorIs(t, err, ErrTableNotFound)
}

func TestGetTableData_MalformedRows(t *testing.T) {
	fetcher, runner := newTestFetcher(t, testutil.SchoolCatalogJSON)
	link := core.Link{Database: "school", Table: "students"}
	runner.SetTable(extractor.TableArgs(link), extractor.Result{Stdout: []byte(`{"rows": [`)})

	_, err := fetcher.GetTableData(context.Background(), link)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode rows")
}

func TestGetTableData_NeverCached(t *testing.T) {
	fetcher, runner := newTestFetcher(t, testutil.SchoolCatalogJSON)
	link := core.Link{Database: "school", Table: "students"}

	for i := 0; i < 3; i++ {
		_, err := fetcher.GetTableData(context.Background(), link)
		require.NoError(t, err)
	}
	assert.Len(t, runner.Calls(), 4, "one catalog dump and one row dump per fetch")
}
