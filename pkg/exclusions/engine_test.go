package exclusions

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"flatten/pkg/templates"
)

// newTestEngine builds an engine over a manager loaded from a pre-written
// template store.
func newTestEngine(t *testing.T, store map[string]templates.Template) *Engine {
	t.Helper()
	dir := t.TempDir()
	data, err := json.Marshal(store)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "templates.json"), data, 0o644))

	manager := templates.NewManager(dir, templates.NewClient(nil, "http://127.0.0.1:0"), zap.NewNop())
	require.NoError(t, manager.Load())
	return NewEngine(manager, zap.NewNop())
}

func TestSetExtractsPatterns(t *testing.T) {
	engine := newTestEngine(t, map[string]templates.Template{
		"python": {Key: "python", Name: "Python", Contents: `
# Byte-compiled / optimized / DLL files
__pycache__/
*.pyc
*.py[cod]
!keep.pyc
build/lib/
dist
`},
	})
	engine.Enable("python")
	set := engine.Set()

	assert.True(t, set.SkipFolder("__pycache__"))
	assert.True(t, set.SkipFolder("dist"))
	assert.True(t, set.SkipExtension("pyc"))

	// Comments, negations and non-trivial globs stay inert.
	assert.False(t, set.SkipFolder("# Byte-compiled / optimized / DLL files"))
	assert.False(t, set.SkipFolder("build/lib"))
	assert.False(t, set.SkipExtension("py[cod]"))
	assert.False(t, set.SkipExtension("pyc]"))
}

func TestSetIncludesUserOverrides(t *testing.T) {
	engine := newTestEngine(t, nil)
	engine.AddFolders([]string{"node_modules", "vendor/", " "})
	engine.AddExtensions([]string{"exe", ".dll", "*.so", ""})
	set := engine.Set()

	assert.True(t, set.SkipFolder("node_modules"))
	assert.True(t, set.SkipFolder("vendor"))
	assert.True(t, set.SkipExtension("exe"))
	assert.True(t, set.SkipExtension("dll"))
	assert.True(t, set.SkipExtension("so"))
	assert.False(t, set.SkipFolder(""))
	assert.False(t, set.SkipExtension(""))
}

func TestSetIgnoresMissingTemplates(t *testing.T) {
	engine := newTestEngine(t, nil)
	engine.Enable("nonexistent")
	set := engine.Set()
	assert.Empty(t, set.Folders)
	assert.Empty(t, set.Extensions)
}

func TestSetIsReproducible(t *testing.T) {
	engine := newTestEngine(t, map[string]templates.Template{
		"go":   {Key: "go", Name: "Go", Contents: "*.exe\nvendor\n"},
		"rust": {Key: "rust", Name: "Rust", Contents: "target/\n*.rlib\n"},
	})
	engine.Enable("go")
	engine.Enable("rust")
	engine.AddFolders([]string{"dist"})

	first := engine.Set()
	second := engine.Set()
	assert.Equal(t, first.Folders, second.Folders)
	assert.Equal(t, first.Extensions, second.Extensions)
}

func TestEnableDisable(t *testing.T) {
	engine := newTestEngine(t, nil)
	engine.Enable("go")
	engine.Enable("rust")
	engine.Disable("go")

	assert.Equal(t, []string{"rust"}, engine.Enabled())

	engine.Enable("go")
	assert.Equal(t, []string{"go", "rust"}, engine.Enabled())
}
