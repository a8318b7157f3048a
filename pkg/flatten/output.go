package flatten

import (
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"flatten/pkg/exclusions"
)

// Stats aggregates run counters across all folders.
type Stats struct {
	files atomic.Int64
	bytes atomic.Int64
}

// TotalFiles returns the number of files that produced a record.
func (s *Stats) TotalFiles() int64 { return s.files.Load() }

// TotalBytes returns the byte total. TooLarge files report their true
// on-disk size; other placeholder outcomes contribute nothing.
func (s *Stats) TotalBytes() int64 { return s.bytes.Load() }

// Summary returns a humanized stats block.
func (s *Stats) Summary() string {
	var b strings.Builder
	total := s.TotalFiles()
	fmt.Fprintf(&b, "Total files processed: %d\n", total)
	fmt.Fprintf(&b, "Total bytes processed: %s\n", formatBytes(s.TotalBytes()))
	if total > 0 {
		fmt.Fprintf(&b, "Average file size: %s\n", formatBytes(s.TotalBytes()/total))
	}
	return b.String()
}

func formatBytes(n int64) string {
	const (
		kb = 1024
		mb = 1024 * 1024
	)
	switch {
	case n >= mb:
		return fmt.Sprintf("%.2f MB", float64(n)/mb)
	case n >= kb:
		return fmt.Sprintf("%.2f KB", float64(n)/kb)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}

// WriteStructure emits the folder structure block for root: a marker line,
// one indented line per visited entry, and the repeated marker line. Pruned
// directories and extension-skipped files appear only when ShowSkipped is
// set, annotated as skipped.
func WriteStructure(w io.Writer, root string, set exclusions.Set, opts Options, logger *zap.Logger) error {
	if _, err := fmt.Fprintf(w, "### DIRECTORY %s FOLDER STRUCTURE ###\n", root); err != nil {
		return err
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("Error accessing path during structure walk", zap.String("path", path), zap.Error(err))
			return nil
		}
		if path == root {
			return nil
		}

		depth := pathDepth(root, path)
		if opts.MaxDepth > 0 && depth > opts.MaxDepth {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		indent := strings.Repeat("    ", depth-1)
		name := d.Name()

		if d.IsDir() {
			if skipDir(name, set, opts) {
				if opts.ShowSkipped {
					if _, err := fmt.Fprintf(w, "%s[SKIP] %s/ (skipped)\n", indent, name); err != nil {
						return err
					}
				}
				return fs.SkipDir
			}
			if _, err := fmt.Fprintf(w, "%s[DIR] %s/\n", indent, name); err != nil {
				return err
			}
			if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
				return fs.SkipDir
			}
			return nil
		}

		if hiddenName(name) && !opts.IncludeHidden {
			return nil
		}
		if set.SkipExtension(fileExt(name)) {
			if opts.ShowSkipped {
				if _, err := fmt.Fprintf(w, "%s[SKIP] %s (skipped)\n", indent, name); err != nil {
					return err
				}
			}
			return nil
		}
		_, err = fmt.Fprintf(w, "%s[FILE] %s\n", indent, name)
		return err
	})
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "### DIRECTORY %s FOLDER STRUCTURE ###\n\n", root)
	return err
}

// WriteContents emits the flattened content block for one folder: every
// record in walk order, each framed by BEGIN and END marker lines carrying
// the identical path string so the artifact can be mechanically re-split.
func WriteContents(w io.Writer, folder string, records []FileRecord, stats *Stats, logger *zap.Logger) error {
	if _, err := fmt.Fprintf(w, "### DIRECTORY %s FLATTENED CONTENT ###\n", folder); err != nil {
		return err
	}

	for _, r := range records {
		if _, err := fmt.Fprintf(w, "### %s BEGIN ###\n", r.Path); err != nil {
			return err
		}
		if _, err := io.WriteString(w, outcomeText(r)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "\n### %s END ###\n\n", r.Path); err != nil {
			return err
		}
		tally(r, stats)
	}

	_, err := fmt.Fprintf(w, "### DIRECTORY %s FLATTENED CONTENT ###\n", folder)
	return err
}

// outcomeText resolves a record to the text written between its markers:
// the content itself or a bracketed placeholder.
func outcomeText(r FileRecord) string {
	switch r.Outcome {
	case OutcomeContent:
		return r.Content
	case OutcomeTooLarge:
		return fmt.Sprintf("[File too large: %d bytes]", r.Size)
	case OutcomeSkipped:
		return fmt.Sprintf("[Binary file skipped: %s]", r.Reason)
	default:
		return fmt.Sprintf("[Error reading file: %s]", r.Reason)
	}
}

// tally applies the stats rule: every record counts as a file; only real
// content and oversized files contribute bytes, the latter with their true
// on-disk size.
func tally(r FileRecord, stats *Stats) {
	stats.files.Add(1)
	switch r.Outcome {
	case OutcomeContent, OutcomeTooLarge:
		stats.bytes.Add(r.Size)
	}
}
