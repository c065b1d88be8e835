package commands

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/catalognav/internal/catalog"
	"github.com/leapstack-labs/catalognav/internal/cli/output"
	clitest "github.com/leapstack-labs/catalognav/internal/cli/testutil"
	"github.com/leapstack-labs/catalognav/internal/extractor"
	"github.com/leapstack-labs/catalognav/internal/testutil"
	"github.com/leapstack-labs/catalognav/pkg/core"
	"github.com/spf13/cobra"
)

func run(t *testing.T, runner extractor.Runner, mode output.Mode, cmd *cobra.Command, args ...string) clitest.Result {
	t.Helper()
	ctx := clitest.CommandContext(t, clitest.TestConfig(mode), runner)
	return clitest.Execute(ctx, cmd, args...)
}

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{NewDatabasesCommand(), "databases", []string{"refresh"}},
		{NewTablesCommand(), "tables <database>", []string{"refresh"}},
		{NewFieldsCommand(), "fields <database> <table>", []string{"refresh"}},
		{NewRecordsCommand(), "records <database> <table>", []string{"link-name", "link-row", "format"}},
		{NewRefreshCommand(), "refresh", nil},
		{NewDoctorCommand(), "doctor", []string{"format"}},
		{NewExploreCommand(), "explore", nil},
		{NewServeCommand(), "serve", []string{"port", "watch", "open"}},
		{NewShellCommand(), "shell", []string{"format"}},
	}

	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			for _, flag := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(flag), "flag %q should exist", flag)
			}
		})
	}
}

func TestDatabasesCommand_JSON(t *testing.T) {
	runner := extractor.NewFakeRunner(testutil.CampusCatalogJSON)

	res := run(t, runner, output.ModeJSON, NewDatabasesCommand())
	require.NoError(t, res.Err)

	var got []DatabaseSummary
	require.NoError(t, json.Unmarshal([]byte(res.Out), &got))
	assert.Equal(t, []DatabaseSummary{
		{ID: 0, Name: "campus", Tables: 3},
		{ID: 1, Name: "catalog", Tables: 1},
	}, got)
	assert.Equal(t, 1, runner.CatalogCalls())
}

func TestDatabasesCommand_Markdown(t *testing.T) {
	runner := extractor.NewFakeRunner(testutil.CampusCatalogJSON)

	res := run(t, runner, output.ModeMarkdown, NewDatabasesCommand())
	require.NoError(t, res.Err)

	assert.Contains(t, res.Out, "# Databases")
	assert.Contains(t, res.Out, "| 0 | campus | 3 |")
	clitest.AssertNoANSI(t, res.Out)
	clitest.AssertValidMarkdown(t, res.Out)
}

func TestDatabasesCommand_ToolError(t *testing.T) {
	runner := extractor.NewFakeRunner("")
	runner.SetCatalog(extractor.Result{Stderr: []byte("cannot open database\n")})

	res := run(t, runner, output.ModeJSON, NewDatabasesCommand())
	require.Error(t, res.Err)

	var toolErr *extractor.ToolError
	require.ErrorAs(t, res.Err, &toolErr)
	assert.Equal(t, "cannot open database", toolErr.Message)
	assert.Empty(t, res.Out)
}

func TestTablesCommand(t *testing.T) {
	for _, arg := range []string{"campus", "0"} {
		t.Run(arg, func(t *testing.T) {
			runner := extractor.NewFakeRunner(testutil.CampusCatalogJSON)

			res := run(t, runner, output.ModeJSON, NewTablesCommand(), arg)
			require.NoError(t, res.Err)

			var got []TableSummary
			require.NoError(t, json.Unmarshal([]byte(res.Out), &got))
			require.Len(t, got, 3)
			assert.Equal(t, "person", got[0].Name)
			assert.Equal(t, 2, got[0].Fields)
			assert.Equal(t, []core.Relationship{{LinkName: "events", TableName: "event"}}, got[0].Relationships)
			assert.Equal(t, "marker", got[2].Name)
			assert.Equal(t, 0, got[2].Fields)
		})
	}
}

func TestTablesCommand_UnknownDatabase(t *testing.T) {
	runner := extractor.NewFakeRunner(testutil.CampusCatalogJSON)

	res := run(t, runner, output.ModeJSON, NewTablesCommand(), "nowhere")
	require.Error(t, res.Err)
	assert.True(t, errors.Is(res.Err, catalog.ErrNotFound))
}

func TestFieldsCommand_MarksArrays(t *testing.T) {
	runner := extractor.NewFakeRunner(testutil.CampusCatalogJSON)

	res := run(t, runner, output.ModeMarkdown, NewFieldsCommand(), "campus", "person")
	require.NoError(t, res.Err)

	assert.Contains(t, res.Out, "first_name")
	assert.Contains(t, res.Out, "string[]")
}

func TestFieldsCommand_NoFields(t *testing.T) {
	runner := extractor.NewFakeRunner(testutil.CampusCatalogJSON)

	res := run(t, runner, output.ModeMarkdown, NewFieldsCommand(), "campus", "marker")
	require.NoError(t, res.Err)
	assert.Contains(t, res.ErrOut, "has no fields")
}

func TestRecordsCommand_SchoolScenario(t *testing.T) {
	runner := extractor.NewFakeRunner(testutil.SchoolCatalogJSON)
	link := core.Link{Database: "school", Table: "students"}
	runner.SetTable(extractor.TableArgs(link), extractor.Result{Stdout: []byte(`{"rows":[{"id":1},{"id":2}]}`)})

	res := run(t, runner, output.ModeJSON, NewRecordsCommand(), "school", "students")
	require.NoError(t, res.Err)

	var view core.TableView
	require.NoError(t, json.Unmarshal([]byte(res.Out), &view))
	assert.Equal(t, "school", view.Database)
	assert.Equal(t, "students", view.Table)
	assert.Equal(t, []core.Column{{Key: "id", Name: "id"}}, view.Columns)
	assert.Len(t, view.Rows, 2)
}

func TestRecordsCommand_Formats(t *testing.T) {
	tests := []struct {
		format string
		want   []string
	}{
		{"csv", []string{"<events>,first_name,nicknames", "<events>,\"Ada, the first\",\"[A, Countess]\""}},
		{"md", []string{"# campus.person", "| <events> | first_name | nicknames |", "| <events> | Ada, the first | [A, Countess] |"}},
		{"table", []string{"campus.person", "Ada, the first", "(1 rows)"}},
		{"yaml", []string{"db_name: campus", "table_name: person", "first_name: Ada, the first"}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			runner := extractor.NewFakeRunner(testutil.CampusCatalogJSON)
			link := core.Link{Database: "campus", Table: "person"}
			runner.SetTable(extractor.TableArgs(link), extractor.Result{
				Stdout: []byte(`{"rows":[{"row_id":7,"first_name":"Ada, the first","nicknames":["A","Countess"]}]}`),
			})

			res := run(t, runner, output.ModeAuto, NewRecordsCommand(), "campus", "person", "--format", tt.format)
			require.NoError(t, res.Err)
			for _, want := range tt.want {
				assert.Contains(t, res.Out, want)
			}
		})
	}
}

func TestRecordsCommand_UnknownFormat(t *testing.T) {
	runner := extractor.NewFakeRunner(testutil.SchoolCatalogJSON)

	res := run(t, runner, output.ModeAuto, NewRecordsCommand(), "school", "students", "--format", "xml")
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "unknown format")
}

func TestRecordsCommand_FollowsLink(t *testing.T) {
	runner := extractor.NewFakeRunner(testutil.CampusCatalogJSON)
	link := core.Link{Database: "campus", Table: "person", LinkName: "events", LinkRow: "7"}
	runner.SetTable(extractor.TableArgs(link), extractor.Result{Stdout: []byte(`{"rows":[{"row_id":3,"title":"Graduation"}]}`)})

	res := run(t, runner, output.ModeJSON, NewRecordsCommand(), "campus", "person", "--link-name", "events", "--link-row", "7")
	require.NoError(t, res.Err)

	var view core.TableView
	require.NoError(t, json.Unmarshal([]byte(res.Out), &view))
	assert.Equal(t, "event", view.Table)
	require.Len(t, view.Rows, 1)
	assert.Equal(t, "Graduation", view.Rows[0]["title"])

	calls := runner.Calls()
	require.Len(t, calls, 2)
	assert.True(t, calls[1].HasArg("--link-name=events"))
	assert.True(t, calls[1].HasArg("--link-row=7"))
}

func TestRecordsCommand_LinkFlagsTogether(t *testing.T) {
	runner := extractor.NewFakeRunner(testutil.CampusCatalogJSON)

	res := run(t, runner, output.ModeJSON, NewRecordsCommand(), "campus", "person", "--link-name", "events")
	require.Error(t, res.Err)
	assert.Empty(t, runner.Calls())
}

func TestRecordsCommand_NoColumnsIsInformational(t *testing.T) {
	runner := extractor.NewFakeRunner(testutil.CampusCatalogJSON)

	res := run(t, runner, output.ModeJSON, NewRecordsCommand(), "campus", "marker")
	require.NoError(t, res.Err)
	assert.Contains(t, res.ErrOut, "table has no columns")
	assert.Empty(t, res.Out)
}

func TestRecordsCommand_ToolErrorNotParsed(t *testing.T) {
	runner := extractor.NewFakeRunner(testutil.SchoolCatalogJSON)
	link := core.Link{Database: "school", Table: "students"}
	runner.SetTable(extractor.TableArgs(link), extractor.Result{
		Stdout: []byte(`not json`),
		Stderr: []byte("table not found"),
	})

	res := run(t, runner, output.ModeJSON, NewRecordsCommand(), "school", "students")
	require.Error(t, res.Err)
	assert.Equal(t, "table not found", res.Err.Error())
}

func TestRefreshCommand(t *testing.T) {
	runner := extractor.NewFakeRunner(testutil.CampusCatalogJSON)

	res := run(t, runner, output.ModeJSON, NewRefreshCommand())
	require.NoError(t, res.Err)

	var got RefreshOutput
	require.NoError(t, json.Unmarshal([]byte(res.Out), &got))
	assert.Equal(t, RefreshOutput{Databases: 2, Tables: 4}, got)
	assert.Equal(t, 1, runner.CatalogCalls())
}
