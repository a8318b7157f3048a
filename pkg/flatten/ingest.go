package flatten

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"go.uber.org/zap"

	"flatten/pkg/exclusions"
)

// Outcome says what happened to one file during ingestion. Exactly one
// variant applies per file.
type Outcome int

const (
	// OutcomeContent means the file was read successfully.
	OutcomeContent Outcome = iota
	// OutcomeTooLarge means the file exceeded the size cap.
	OutcomeTooLarge
	// OutcomeSkipped means the file's extension is excluded.
	OutcomeSkipped
	// OutcomeReadError means the file could not be opened or read.
	OutcomeReadError
)

// FileRecord is the result of ingesting one discovered path.
type FileRecord struct {
	Path    string
	Size    int64
	Outcome Outcome
	Content string // set for OutcomeContent
	Reason  string // file name for OutcomeSkipped, message for OutcomeReadError
}

// Ingest reads every file across a bounded worker pool and returns records
// in the same order as the input list, regardless of completion order.
// Each worker writes results through the input index, so no reordering
// queue is needed. workers <= 0 uses all available parallelism.
func Ingest(files []string, set exclusions.Set, sizeCap int64, workers int, logger *zap.Logger) []FileRecord {
	records := make([]FileRecord, len(files))
	if len(files) == 0 {
		return records
	}

	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(files) {
		workers = len(files)
	}

	type job struct {
		index int
		path  string
	}
	jobs := make(chan job)
	var processed atomic.Int64
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				records[j.index] = ingestFile(j.path, set, sizeCap)
				processed.Add(1)
			}
		}()
	}

	for i, path := range files {
		jobs <- job{index: i, path: path}
	}
	close(jobs)
	wg.Wait()

	logger.Debug("Ingestion finished",
		zap.Int64("files", processed.Load()),
		zap.Int("workers", workers))
	return records
}

// ingestFile produces the record for a single path.
func ingestFile(path string, set exclusions.Set, sizeCap int64) FileRecord {
	if set.SkipExtension(fileExt(path)) {
		return FileRecord{
			Path:    path,
			Outcome: OutcomeSkipped,
			Reason:  filepath.Base(path),
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return FileRecord{Path: path, Outcome: OutcomeReadError, Reason: err.Error()}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return FileRecord{Path: path, Outcome: OutcomeReadError, Reason: err.Error()}
	}
	size := info.Size()

	if sizeCap > 0 && size > sizeCap {
		return FileRecord{Path: path, Size: size, Outcome: OutcomeTooLarge}
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return FileRecord{Path: path, Outcome: OutcomeReadError, Reason: err.Error()}
	}

	return FileRecord{
		Path:    path,
		Size:    size,
		Outcome: OutcomeContent,
		Content: decodeText(data),
	}
}

// decodeText returns the bytes as text, substituting the replacement rune
// for invalid UTF-8 rather than failing.
func decodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	return strings.ToValidUTF8(string(data), string(utf8.RuneError))
}
