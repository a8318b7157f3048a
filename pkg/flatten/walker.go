package flatten

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"flatten/pkg/exclusions"
)

// Options controls the directory walk. Symlinks are never followed.
type Options struct {
	IncludeHidden bool
	MaxDepth      int // 0 means unbounded
	ShowSkipped   bool
}

// CollectFiles walks root and returns every file path in walk order. Pruned
// directories are never descended into, so their contents are not
// enumerated. Extension-excluded files stay in the list; they become
// Skipped records downstream.
func CollectFiles(root string, set exclusions.Set, opts Options, logger *zap.Logger) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("Error accessing path during walk", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if path == root {
			return nil
		}

		depth := pathDepth(root, path)
		if d.IsDir() {
			if skipDir(d.Name(), set, opts) {
				return fs.SkipDir
			}
			if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
				return fs.SkipDir
			}
			return nil
		}

		if opts.MaxDepth > 0 && depth > opts.MaxDepth {
			return nil
		}
		if hiddenName(d.Name()) && !opts.IncludeHidden {
			return nil
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

// skipDir is the pruning rule, evaluated once per directory before descent.
func skipDir(name string, set exclusions.Set, opts Options) bool {
	if hiddenName(name) && !opts.IncludeHidden {
		return true
	}
	return set.SkipFolder(name)
}

func hiddenName(name string) bool {
	return strings.HasPrefix(name, ".")
}

// fileExt returns the extension without the leading dot, empty when absent.
func fileExt(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimPrefix(ext, ".")
}

// pathDepth returns how many levels below root a path sits; direct children
// are depth 1.
func pathDepth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(os.PathSeparator)) + 1
}
