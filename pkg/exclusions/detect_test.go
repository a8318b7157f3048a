package exclusions

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
}

func TestDetectProjectMarkers(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "Cargo.toml", "go.mod", "README.md")

	engine := newTestEngine(t, nil)
	require.NoError(t, engine.DetectProject(dir))

	assert.Equal(t, []string{"go", "rust"}, engine.Enabled())
}

func TestDetectProjectWildcardMarker(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "App.csproj")

	engine := newTestEngine(t, nil)
	require.NoError(t, engine.DetectProject(dir))

	assert.Equal(t, []string{"csharp"}, engine.Enabled())
}

func TestDetectProjectIsAdditive(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "go.mod", "package.json")

	engine := newTestEngine(t, nil)
	engine.Disable("node")
	require.NoError(t, engine.DetectProject(dir))

	// Detection never overrides an explicit disable.
	assert.Equal(t, []string{"go"}, engine.Enabled())
}

func TestDetectProjectMissingRoot(t *testing.T) {
	engine := newTestEngine(t, nil)
	err := engine.DetectProject(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
