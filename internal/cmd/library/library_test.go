package library

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iron-Ham/gamedex/internal/library"
	"github.com/Iron-Ham/gamedex/internal/testutil"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return testutil.ExecuteCommand(testutil.NewRoot(Register), args...)
}

// reset restores flag variables, which cobra keeps between executions.
func reset(t *testing.T) string {
	t.Helper()
	dirs := testutil.Isolate(t)
	libraryFile, addPlatform, addQuantity = "", "", 1
	exportFormat, exportOutput = "yaml", ""
	return filepath.Join(dirs.Data, "gamedex", "library.yaml")
}

func load(t *testing.T, path string) []library.Game {
	t.Helper()
	svc := library.NewService(library.Options{})
	require.NoError(t, svc.Load(path))
	return svc.Games().Items()
}

func TestAddRoundsToPack(t *testing.T) {
	path := reset(t)

	out, err := run(t, "library", "add", "Celeste", "--platform", "Switch", "--quantity", "15")
	require.NoError(t, err)
	assert.Contains(t, out, "Added Celeste")
	assert.Contains(t, out, "quantity 20")

	games := load(t, path)
	require.Len(t, games, 1)
	assert.Equal(t, "Switch", games[0].Platform)
	assert.Equal(t, 20, games[0].Quantity)
}

func TestAddRejectsEmptyName(t *testing.T) {
	path := reset(t)

	_, err := run(t, "library", "add", "  ")
	require.Error(t, err)
	assert.Empty(t, load(t, path))
}

func TestListFiltersByQuery(t *testing.T) {
	path := reset(t)
	for _, name := range []string{"Hades", "Celeste", "Hollow Knight"} {
		_, err := run(t, "library", "add", name, "--file", path)
		require.NoError(t, err)
	}

	out, err := run(t, "library", "list", "ho", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Hollow Knight")
	assert.NotContains(t, out, "Celeste")
	assert.NotContains(t, out, "Hades")

	out, err = run(t, "library", "list", "zelda", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "No games found.")
}

func TestRemove(t *testing.T) {
	path := reset(t)
	_, err := run(t, "library", "add", "Hades")
	require.NoError(t, err)
	games := load(t, path)
	require.Len(t, games, 1)

	out, err := run(t, "library", "rm", games[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed Hades")
	assert.Empty(t, load(t, path))

	_, err = run(t, "library", "rm", games[0].ID)
	assert.Error(t, err)
}

func TestExportFormats(t *testing.T) {
	reset(t)
	_, err := run(t, "library", "add", "Hades", "--quantity", "3")
	require.NoError(t, err)

	out, err := run(t, "library", "export", "--format", "json")
	require.NoError(t, err)
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "Hades", decoded[0]["Name"])

	out, err = run(t, "library", "export", "--format", "csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,name,platform,quantity,added", lines[0])
	assert.Contains(t, lines[1], ",Hades,,10,")

	out, err = run(t, "library", "export", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "name: Hades")

	_, err = run(t, "library", "export", "--format", "xml")
	assert.Error(t, err)
}

func TestImportAddsGamesWithNewIDs(t *testing.T) {
	path := reset(t)
	other := filepath.Join(t.TempDir(), "other.yaml")

	_, err := run(t, "library", "add", "Hades", "--file", other)
	require.NoError(t, err)
	_, err = run(t, "library", "add", "Celeste", "--file", path)
	require.NoError(t, err)

	out, err := run(t, "library", "import", other, "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 games")

	games := load(t, path)
	require.Len(t, games, 2)
	assert.NotEqual(t, load(t, other)[0].ID, games[1].ID)

	_, err = run(t, "library", "import", filepath.Join(t.TempDir(), "missing.yaml"), "--file", path)
	assert.Error(t, err)
}
