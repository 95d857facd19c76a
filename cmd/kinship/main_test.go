package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/kinship/internal/archive"
	"github.com/dusk-indust/kinship/internal/export"
)

func fixturePath(t *testing.T, name string) string {
	t.Helper()
	abs, err := filepath.Abs(filepath.Join("..", "..", "testdata", "archives", name))
	require.NoError(t, err)
	return abs
}

// runCLI runs the CLI against a fresh project directory.
func runCLI(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(append([]string{"-project-root", dir}, args...), &out)
	return out.String(), err
}

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"-version"}, &out))
	assert.Equal(t, "dev\n", out.String())
}

func TestRun_Usage(t *testing.T) {
	out, err := runCLI(t, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, out, "usage: kinship")

	_, err = runCLI(t, t.TempDir(), "frobnicate")
	require.ErrorContains(t, err, "unknown command")
}

func TestRun_Roles(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "roles", fixturePath(t, "ivanovs.json"))
	require.NoError(t, err)

	assert.Contains(t, out, "Ивановы (Иван)")
	for _, want := range []string{"Дедушка", "Бабушка", "Мать", "Сестра", "Я"} {
		assert.Contains(t, out, want)
	}
	assert.Contains(t, out, "1 member(s) not connected to the root")
}

func TestRun_RolesEnglish(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "-locale", "en", "roles", fixturePath(t, "ivanovs.json"))
	require.NoError(t, err)
	assert.Contains(t, out, "Grandmother")
	assert.Contains(t, out, "Sister")
}

func TestRun_RolesArgs(t *testing.T) {
	_, err := runCLI(t, t.TempDir(), "roles")
	require.ErrorContains(t, err, "usage: kinship roles")

	_, err = runCLI(t, t.TempDir(), "-store", "memory", "roles", "nobody")
	require.ErrorContains(t, err, `"nobody"`)
}

func TestRun_Diagram(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "diagram", fixturePath(t, "ivanovs.json"))
	require.NoError(t, err)
	assert.Contains(t, out, "graph TD\n")
	assert.Contains(t, out, `N1["Анна<br/>Бабушка"]`)
	assert.Contains(t, out, "  N3 -.- N4\n")
	assert.Contains(t, out, "  subgraph B1")
}

func TestRun_Export(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "export", fixturePath(t, "ivanovs.json"))
	require.NoError(t, err)

	var exp export.ArchiveExport
	require.NoError(t, json.Unmarshal([]byte(out), &exp))
	assert.Equal(t, "ivanovs", exp.ID)
	assert.Equal(t, "ru", exp.Locale)
	require.Len(t, exp.Members, 6)
	assert.Equal(t, "Дедушка", exp.Members[0].Role)
	assert.Equal(t, []string{"cousin"}, exp.Unreachable)
}

func TestRun_ImportThenUseSlug(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, dir, "import", fixturePath(t, "ivanovs.json"))
	require.NoError(t, err)
	assert.Equal(t, "imported ivanovs: 6 members, 5 relations\n", out)
	assert.FileExists(t, filepath.Join(dir, ".kinship", "kinship.db"))

	out, err = runCLI(t, dir, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ivanovs")
	assert.Contains(t, out, "2024-02-01")

	out, err = runCLI(t, dir, "roles", "ivanovs")
	require.NoError(t, err)
	assert.Contains(t, out, "Бабушка")
}

func TestRun_ImportAssignsRelationIDs(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, dir, "import", fixturePath(t, "no_relation_ids.json"))
	require.NoError(t, err)
	assert.Equal(t, "imported petrovs: 3 members, 2 relations\n", out)

	out, err = runCLI(t, dir, "roles", "petrovs")
	require.NoError(t, err)
	assert.Contains(t, out, "Сын")
	assert.Contains(t, out, "Дочь")
}

func TestRun_ImportInvalid(t *testing.T) {
	_, err := runCLI(t, t.TempDir(), "-store", "memory", "import", fixturePath(t, "dangling.json"))
	require.ErrorIs(t, err, archive.ErrDanglingRelation)

	_, err = runCLI(t, t.TempDir(), "-store", "memory", "import")
	require.ErrorContains(t, err, "usage: kinship import")
}

func TestRun_ListEmpty(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "-store", "memory", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No archives found.")
}

func TestRun_BadStoreFlag(t *testing.T) {
	_, err := runCLI(t, t.TempDir(), "-store", "postgres", "list")
	require.ErrorContains(t, err, "unknown store")
}

func TestRun_Init(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, dir, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "created kinship.yml")
	assert.Contains(t, out, "created .mcp.json")

	data, err := os.ReadFile(filepath.Join(dir, ".mcp.json"))
	require.NoError(t, err)
	var cfg mcpConfig
	require.NoError(t, json.Unmarshal(data, &cfg))
	assert.Contains(t, cfg.MCPServers, "kinship")

	out, err = runCLI(t, dir, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "skipped kinship.yml")
	assert.Contains(t, out, "skipped .mcp.json kinship entry")

	out, err = runCLI(t, dir, "init", "-force")
	require.NoError(t, err)
	assert.Contains(t, out, "created kinship.yml")
	assert.Contains(t, out, "updated .mcp.json")
}
