// Package exclusions derives the run-scoped exclusion rules: the folder
// names to prune and the file extensions to skip, computed from enabled
// templates, project auto-detection, and user overrides.
package exclusions

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"flatten/pkg/templates"
)

// Set is the immutable pair of exclusion sets for one run. It is computed
// once before ingestion begins; rule changes never apply mid-walk.
type Set struct {
	Folders    map[string]struct{}
	Extensions map[string]struct{}
}

// SkipFolder reports whether a directory name is excluded.
func (s Set) SkipFolder(name string) bool {
	_, ok := s.Folders[name]
	return ok
}

// SkipExtension reports whether a file extension (without the leading dot)
// is excluded.
func (s Set) SkipExtension(ext string) bool {
	_, ok := s.Extensions[ext]
	return ok
}

// Engine accumulates the run configuration that Set is derived from:
// enabled template keys and user overrides, on top of a loaded template
// manager snapshot.
type Engine struct {
	manager  *templates.Manager
	logger   *zap.Logger
	enabled  map[string]struct{}
	disabled map[string]struct{}
	folders  map[string]struct{}
	exts     map[string]struct{}
}

// NewEngine creates an engine over the given template manager.
func NewEngine(manager *templates.Manager, logger *zap.Logger) *Engine {
	return &Engine{
		manager:  manager,
		logger:   logger,
		enabled:  make(map[string]struct{}),
		disabled: make(map[string]struct{}),
		folders:  make(map[string]struct{}),
		exts:     make(map[string]struct{}),
	}
}

// Enable enables a template key explicitly.
func (e *Engine) Enable(key string) {
	delete(e.disabled, key)
	e.enabled[key] = struct{}{}
}

// Disable disables a template key explicitly. Auto-detection never
// re-enables a disabled key.
func (e *Engine) Disable(key string) {
	delete(e.enabled, key)
	e.disabled[key] = struct{}{}
}

// Enabled returns the enabled template keys, sorted.
func (e *Engine) Enabled() []string {
	keys := make([]string, 0, len(e.enabled))
	for key := range e.enabled {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// AddFolders adds user-supplied folder names to skip.
func (e *Engine) AddFolders(names []string) {
	for _, name := range names {
		name = strings.TrimSpace(strings.TrimSuffix(name, "/"))
		if name != "" {
			e.folders[name] = struct{}{}
		}
	}
}

// AddExtensions adds user-supplied extensions to skip. Accepted forms are
// "ext", ".ext" and "*.ext".
func (e *Engine) AddExtensions(exts []string) {
	for _, ext := range exts {
		ext = strings.TrimSpace(ext)
		ext = strings.TrimPrefix(ext, "*.")
		ext = strings.TrimPrefix(ext, ".")
		if ext != "" {
			e.exts[ext] = struct{}{}
		}
	}
}

// Set computes the exclusion sets for the run: patterns extracted from every
// enabled template plus the user overrides. Pure for a fixed manager
// snapshot and enabled-key set.
func (e *Engine) Set() Set {
	set := Set{
		Folders:    make(map[string]struct{}),
		Extensions: make(map[string]struct{}),
	}

	for key := range e.enabled {
		tmpl, ok := e.manager.Get(key)
		if !ok {
			e.logger.Warn("Enabled template not present in cache", zap.String("key", key))
			continue
		}
		extractPatterns(tmpl.Contents, &set)
	}

	for name := range e.folders {
		set.Folders[name] = struct{}{}
	}
	for ext := range e.exts {
		set.Extensions[ext] = struct{}{}
	}
	return set
}

// extractPatterns classifies each line of a template into the folder or
// extension set. Blank lines, comments and negations are dropped; a line
// with no wildcard and no dot is a folder name; "*.<ext>" is an extension.
// Everything else is deliberately inert: this is not full gitignore glob
// matching.
func extractPatterns(contents string, set *Set) {
	for _, line := range strings.Split(contents, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		line = strings.TrimSuffix(line, "/")
		if line == "" {
			continue
		}

		if ext, ok := extensionPattern(line); ok {
			set.Extensions[ext] = struct{}{}
			continue
		}
		if folderPattern(line) {
			set.Folders[line] = struct{}{}
		}
	}
}

// extensionPattern matches the exact "*.<ext>" shape.
func extensionPattern(line string) (string, bool) {
	if !strings.HasPrefix(line, "*.") {
		return "", false
	}
	ext := line[2:]
	if ext == "" || strings.ContainsAny(ext, "*?[]/\\. ") {
		return "", false
	}
	return ext, true
}

// folderPattern matches bare names without wildcards, dots or separators.
func folderPattern(line string) bool {
	return !strings.ContainsAny(line, "*?[].\\/ ")
}
