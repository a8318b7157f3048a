// Package flatten turns directory trees into a single structured text
// artifact: a pruning walk collects files in a deterministic order, a
// bounded worker pool reads them, and an assembler writes per-folder
// structure and content blocks to the sink.
package flatten

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"flatten/pkg/exclusions"
)

// Arguments are the run inputs consumed by Run. The exclusion set is passed
// separately as a snapshot taken after the configuration phase.
type Arguments struct {
	Folders       []string
	Output        string
	ShowSkipped   bool
	Workers       int   // 0 means all available parallelism
	MaxFileSize   int64 // 0 means no cap
	IncludeHidden bool
	MaxDepth      int // 0 means unbounded
	DryRun        bool
}

// Run processes every folder sequentially: structure pass, file collection,
// parallel ingestion, content pass. Missing folders are warnings; the run
// continues with the rest. Returns the aggregated stats.
func Run(args Arguments, set exclusions.Set, logger *zap.Logger) (*Stats, error) {
	startTime := time.Now()
	opts := Options{
		IncludeHidden: args.IncludeHidden,
		MaxDepth:      args.MaxDepth,
		ShowSkipped:   args.ShowSkipped,
	}
	stats := &Stats{}

	var out *bufio.Writer
	if !args.DryRun {
		f, err := os.Create(args.Output)
		if err != nil {
			return stats, fmt.Errorf("failed to create output file %s: %w", args.Output, err)
		}
		defer f.Close()
		out = bufio.NewWriter(f)
	}

	anyFolderFound := false
	for _, folder := range args.Folders {
		info, err := os.Stat(folder)
		if err != nil || !info.IsDir() {
			logger.Warn("Folder does not exist, skipping", zap.String("folder", folder))
			continue
		}
		anyFolderFound = true
		logger.Info("Processing folder", zap.String("folder", folder))

		if err := processFolder(out, folder, set, opts, args, stats, logger); err != nil {
			return stats, err
		}
	}

	if !anyFolderFound {
		logger.Warn("None of the requested folders exist")
	}
	if out != nil {
		if err := out.Flush(); err != nil {
			return stats, fmt.Errorf("failed to flush output: %w", err)
		}
	}

	logger.Info("Flatten completed",
		zap.Int64("totalFiles", stats.TotalFiles()),
		zap.Int64("totalBytes", stats.TotalBytes()),
		zap.Duration("elapsed", time.Since(startTime)))
	return stats, nil
}

func processFolder(out *bufio.Writer, folder string, set exclusions.Set, opts Options, args Arguments, stats *Stats, logger *zap.Logger) error {
	if args.DryRun {
		if err := WriteStructure(os.Stdout, folder, set, opts, logger); err != nil {
			return err
		}
	} else {
		if err := WriteStructure(out, folder, set, opts, logger); err != nil {
			return err
		}
	}

	files, err := CollectFiles(folder, set, opts, logger)
	if err != nil {
		return fmt.Errorf("failed to collect files in %s: %w", folder, err)
	}
	if len(files) == 0 {
		logger.Info("No files found", zap.String("folder", folder))
		return nil
	}

	records := Ingest(files, set, args.MaxFileSize, args.Workers, logger)

	if args.DryRun {
		writeDryRun(os.Stdout, folder, records, stats)
		return nil
	}
	return WriteContents(out, folder, records, stats, logger)
}

// writeDryRun prints what a real run would do with each file, without
// producing the artifact. Counters advance exactly as in a real run.
func writeDryRun(w *os.File, folder string, records []FileRecord, stats *Stats) {
	fmt.Fprintf(w, "Files to process from %s:\n", folder)
	for _, r := range records {
		switch r.Outcome {
		case OutcomeContent:
			fmt.Fprintf(w, "  ok   %s (%d bytes)\n", r.Path, r.Size)
		case OutcomeTooLarge:
			fmt.Fprintf(w, "  big  %s (%d bytes)\n", r.Path, r.Size)
		case OutcomeSkipped:
			fmt.Fprintf(w, "  skip %s\n", r.Path)
		default:
			fmt.Fprintf(w, "  err  %s (%s)\n", r.Path, r.Reason)
		}
		tally(r, stats)
	}
}
