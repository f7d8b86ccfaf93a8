package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/schedule-ingest/constants"
	"github.com/joseph-ayodele/schedule-ingest/internal/async"
	"github.com/joseph-ayodele/schedule-ingest/internal/entity"
	"github.com/joseph-ayodele/schedule-ingest/internal/pipeline"
)

// ScheduleParser is the part of the pipeline the importer drives.
type ScheduleParser interface {
	ParseSchedule(ctx context.Context, in pipeline.RawInput) (entity.ParseResult, error)
	ImportSchedule(ctx context.Context, scheduleID string, in pipeline.RawInput) (entity.ParseResult, int, error)
}

// FileResult is the per-file import outcome.
type FileResult struct {
	Path         string
	ScheduleID   string
	HashHex      string
	Status       constants.ImportStatus
	Classes      int
	Saved        int
	Deduplicated bool
	Err          string
}

// DirStats summarizes a directory import. Degraded files are also counted as
// succeeded.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Degraded     uint32
	Deduplicated uint32
	Failed       uint32
}

// Importer parses local files and, when Save is set, stores their classes. It
// is the job processor behind the batch queue.
type Importer struct {
	parser ScheduleParser
	logger *slog.Logger
	save   bool

	mu      sync.Mutex
	results []FileResult
}

func NewImporter(parser ScheduleParser, save bool, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{parser: parser, logger: logger, save: save}
}

// ProcessFile implements async.JobProcessor.
func (im *Importer) ProcessFile(ctx context.Context, job async.Job) error {
	res, err := im.ImportFile(ctx, job.Path, job.ScheduleID)
	im.record(res)
	return err
}

// ImportFile parses one file. An empty scheduleID is derived from the content.
func (im *Importer) ImportFile(ctx context.Context, path, scheduleID string) (FileResult, error) {
	out := FileResult{Path: path, ScheduleID: scheduleID, Status: constants.ImportStatusFailed}

	up, err := ReadUpload(path)
	if err != nil {
		out.Err = err.Error()
		return out, err
	}
	out.HashHex = up.HashHex
	if out.ScheduleID == "" {
		out.ScheduleID = ScheduleIDForHash(up.HashHex)
	}

	var res entity.ParseResult
	if im.save {
		res, out.Saved, err = im.parser.ImportSchedule(ctx, out.ScheduleID, up.Input)
	} else {
		res, err = im.parser.ParseSchedule(ctx, up.Input)
	}
	if err != nil {
		out.Err = err.Error()
		return out, err
	}

	out.Classes = len(res.Classes)
	switch {
	case pipeline.Strategy(res) == constants.StrategyHeuristic:
		out.Status = constants.ImportStatusDegraded
	case im.save:
		out.Status = constants.ImportStatusSaved
	default:
		out.Status = constants.ImportStatusParsed
	}
	im.logger.Info("ingest.file.ok",
		"path", path,
		"schedule_id", out.ScheduleID,
		"status", out.Status,
		"classes", out.Classes,
		"saved", out.Saved,
	)
	return out, nil
}

func (im *Importer) record(r FileResult) {
	im.mu.Lock()
	im.results = append(im.results, r)
	im.mu.Unlock()
}

// DrainResults returns and clears the results gathered by ProcessFile.
func (im *Importer) DrainResults() []FileResult {
	im.mu.Lock()
	defer im.mu.Unlock()
	out := im.results
	im.results = nil
	return out
}

// ImportDirectory walks root, skips hidden entries if requested, enqueues
// every accepted file on q and waits for q to drain. Files whose content was
// already seen in this walk are reported as deduplicated and not parsed
// again. q is shut down on return.
func (im *Importer) ImportDirectory(ctx context.Context, q async.Queue, root string, skipHidden bool) ([]FileResult, DirStats, error) {
	var stats DirStats
	if strings.TrimSpace(root) == "" {
		q.Shutdown(ctx)
		return nil, stats, errors.New("root path is required")
	}

	var results []FileResult
	seen := map[string]string{}
	traceID := uuid.NewString()

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			results = append(results, FileResult{Path: path, Status: constants.ImportStatusFailed, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++

		hashHex, err := hashFile(path)
		if err != nil {
			results = append(results, FileResult{Path: path, Status: constants.ImportStatusFailed, Err: err.Error()})
			stats.Failed++
			return nil
		}
		if first, dup := seen[hashHex]; dup {
			im.logger.Info("ingest.file.duplicate", "path", path, "same_as", first)
			results = append(results, FileResult{
				Path:         path,
				ScheduleID:   ScheduleIDForHash(hashHex),
				HashHex:      hashHex,
				Status:       constants.ImportStatusSkipped,
				Deduplicated: true,
			})
			stats.Deduplicated++
			return nil
		}
		seen[hashHex] = path

		job := async.Job{Path: path, ScheduleID: ScheduleIDForHash(hashHex), TraceID: traceID}
		if err := q.Enqueue(ctx, job); err != nil {
			return err
		}
		return nil
	})

	q.Shutdown(ctx)
	for _, r := range im.DrainResults() {
		results = append(results, r)
		switch r.Status {
		case constants.ImportStatusFailed:
			stats.Failed++
		case constants.ImportStatusDegraded:
			stats.Succeeded++
			stats.Degraded++
		default:
			stats.Succeeded++
		}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Path < results[j].Path })

	im.logger.Info("ingest.dir.done",
		"root", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"degraded", stats.Degraded,
		"deduplicated", stats.Deduplicated,
		"failed", stats.Failed,
	)
	if walkErr != nil {
		return results, stats, fmt.Errorf("walk: %w", walkErr)
	}
	return results, stats, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
