package exclusions

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// projectMarkers maps a template key to the marker files whose presence in
// a project root enables it. Markers containing a wildcard are matched
// against actual directory entries, never checked as literal paths.
var projectMarkers = map[string][]string{
	"rust":     {"Cargo.toml"},
	"node":     {"package.json"},
	"python":   {"requirements.txt", "pyproject.toml"},
	"java":     {"pom.xml"},
	"gradle":   {"build.gradle", "build.gradle.kts"},
	"csharp":   {"*.csproj", "*.sln"},
	"go":       {"go.mod"},
	"ruby":     {"Gemfile"},
	"composer": {"composer.json"},
	"dart":     {"pubspec.yaml"},
	"angular":  {"angular.json"},
}

// DetectProject enables templates whose marker files exist in root.
// Detection is advisory-additive: it only enables keys, and never touches
// keys the user explicitly enabled or disabled.
func (e *Engine) DetectProject(root string) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("failed to read project root %s: %w", root, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}

	for key, markers := range projectMarkers {
		if _, ok := e.disabled[key]; ok {
			continue
		}
		if _, ok := e.enabled[key]; ok {
			continue
		}
		if markerPresent(root, markers, names) {
			e.enabled[key] = struct{}{}
			e.logger.Debug("Auto-detected project template",
				zap.String("key", key), zap.String("root", root))
		}
	}
	return nil
}

func markerPresent(root string, markers, entryNames []string) bool {
	for _, marker := range markers {
		if strings.ContainsAny(marker, "*?") {
			for _, name := range entryNames {
				if ok, _ := path.Match(marker, name); ok {
					return true
				}
			}
			continue
		}
		if _, err := os.Stat(filepath.Join(root, marker)); err == nil {
			return true
		}
	}
	return false
}
