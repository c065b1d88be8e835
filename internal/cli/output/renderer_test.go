package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := map[string]Mode{
		"":         ModeAuto,
		"auto":     ModeAuto,
		"TEXT":     ModeText,
		"markdown": ModeMarkdown,
		"md":       ModeMarkdown,
		"json":     ModeJSON,
		"yaml":     ModeYAML,
		"xml":      ModeAuto,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseMode(in), "ParseMode(%q)", in)
	}
}

func TestRenderer_AutoIsMarkdownWhenPiped(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewRenderer(&out, &errOut, ModeAuto)

	assert.Equal(t, ModeMarkdown, r.EffectiveMode())

	r.Header(2, "Databases")
	assert.Contains(t, out.String(), "## Databases")
}

func TestRenderer_TableMarkdown(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, &out, ModeMarkdown)

	r.Table([]string{"ID", "Name"}, [][]string{{"0", "campus"}})

	s := out.String()
	assert.Contains(t, s, "| ID | Name |")
	assert.Contains(t, s, "| 0 | campus |")
}

func TestRenderer_TableText(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, &out, ModeText)

	r.Table([]string{"ID", "Name"}, [][]string{{"0", "campus"}})

	s := out.String()
	assert.Contains(t, s, "campus")
	assert.Contains(t, s, "┌", "text tables use the light box style")
}

func TestRenderer_Structured(t *testing.T) {
	v := map[string]any{"name": "campus"}

	var jsonOut bytes.Buffer
	ok, err := NewRenderer(&jsonOut, &jsonOut, ModeJSON).Structured(v)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"name":"campus"}`, jsonOut.String())

	var yamlOut bytes.Buffer
	ok, err = NewRenderer(&yamlOut, &yamlOut, ModeYAML).Structured(v)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "name: campus\n", yamlOut.String())

	var textOut bytes.Buffer
	ok, err = NewRenderer(&textOut, &textOut, ModeText).Structured(v)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, textOut.String())
}

func TestRenderer_Diagnostics(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewRenderer(&out, &errOut, ModeText)

	r.Error("table not found")
	r.Info("table has no columns")
	r.Warning("stale snapshot")

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "Error: table not found")
	assert.Contains(t, errOut.String(), "table has no columns")
	assert.Contains(t, errOut.String(), "Warning: stale snapshot")
}
