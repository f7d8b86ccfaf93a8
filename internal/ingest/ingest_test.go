package ingest

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/schedule-ingest/constants"
	"github.com/joseph-ayodele/schedule-ingest/internal/async"
	"github.com/joseph-ayodele/schedule-ingest/internal/entity"
	"github.com/joseph-ayodele/schedule-ingest/internal/heuristic"
	"github.com/joseph-ayodele/schedule-ingest/internal/pipeline"
)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

type fakeParser struct {
	mu     sync.Mutex
	saved  map[string]int
	failOn string
}

func (f *fakeParser) ParseSchedule(_ context.Context, in pipeline.RawInput) (entity.ParseResult, error) {
	if *in.FileName == f.failOn {
		return entity.ParseResult{}, errors.New("hard failure")
	}
	res := entity.NewParseResult()
	res.Classes = heuristic.Parse(*in.FileContent)
	if *in.FileName == "ai.txt" {
		res.Warnings = append(res.Warnings, pipeline.ModelWarning("gpt-4o"))
	} else {
		res.Warnings = append(res.Warnings, pipeline.WarnNotConfigured)
	}
	return res, nil
}

func (f *fakeParser) ImportSchedule(ctx context.Context, scheduleID string, in pipeline.RawInput) (entity.ParseResult, int, error) {
	res, err := f.ParseSchedule(ctx, in)
	if err != nil {
		return res, 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saved == nil {
		f.saved = map[string]int{}
	}
	f.saved[scheduleID] = len(res.Classes)
	return res, len(res.Classes), nil
}

const schedule = "CS101 Intro to Programming\nMonday Wednesday\n09:00-10:30\n"

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestReadUploadText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fall.txt")
	writeFile(t, path, schedule)

	up, err := ReadUpload(path)
	require.NoError(t, err)
	assert.Equal(t, "fall.txt", *up.Input.FileName)
	assert.Equal(t, schedule, *up.Input.FileContent)
	assert.Equal(t, "text/plain", up.Input.FileType)
	assert.Empty(t, up.Input.FileBase64)
	assert.Len(t, up.HashHex, 64)
}

func TestReadUploadFlattensCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fall.csv")
	writeFile(t, path, "Course,Days,Time\nCS101 Intro,Monday Wednesday,09:00-10:30\n")

	up, err := ReadUpload(path)
	require.NoError(t, err)
	assert.Equal(t, "Course | Days | Time\nCS101 Intro | Monday Wednesday | 09:00-10:30", *up.Input.FileContent)
	assert.Equal(t, "text/plain", up.Input.FileType)
}

func TestReadUploadRendersHTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fall.html")
	writeFile(t, path, "<html><body><p>Biology 110</p><p>Tuesday Thursday</p><p>11:00-12:15</p></body></html>")

	up, err := ReadUpload(path)
	require.NoError(t, err)
	assert.NotContains(t, *up.Input.FileContent, "<p>")
	assert.Equal(t, "text/markdown", up.Input.FileType)

	classes := heuristic.Parse(*up.Input.FileContent)
	require.Len(t, classes, 1)
	assert.Equal(t, "Biology 110", classes[0].CourseName)
	assert.Equal(t, []string{"Tuesday", "Thursday"}, classes[0].DaysOfWeek)
}

func TestReadUploadPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fall.pdf")
	writeFile(t, path, "%PDF-1.4 body")

	up, err := ReadUpload(path)
	require.NoError(t, err)
	assert.Equal(t, "", *up.Input.FileContent)
	assert.Equal(t, constants.MimePDF, up.Input.FileType)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 body")), up.Input.FileBase64)

	_, err = pipeline.ValidateInput(up.Input)
	assert.NoError(t, err)
}

func TestReadUploadRejectsUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.png")
	writeFile(t, path, "x")
	_, err := ReadUpload(path)
	assert.Error(t, err)
}

func TestImportDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "ai.txt"), schedule+"extra line\n")
	writeFile(t, filepath.Join(root, "fall.txt"), schedule)
	writeFile(t, filepath.Join(root, "nested", "copy.md"), schedule)
	writeFile(t, filepath.Join(root, "broken.txt"), "Math\n10:00-11:00\n")
	writeFile(t, filepath.Join(root, "image.png"), "not a schedule")
	writeFile(t, filepath.Join(root, ".hidden", "secret.txt"), "Secret\n08:00-09:00\n")

	fp := &fakeParser{failOn: "broken.txt"}
	im := NewImporter(fp, true, quiet())
	q := async.NewProcessorQueue(im, quiet(), async.WithWorkers(2))

	results, stats, err := im.ImportDirectory(context.Background(), q, root, true)
	require.NoError(t, err)

	assert.EqualValues(t, 4, stats.Matched)
	assert.EqualValues(t, 2, stats.Succeeded)
	assert.EqualValues(t, 1, stats.Degraded)
	assert.EqualValues(t, 1, stats.Deduplicated)
	assert.EqualValues(t, 1, stats.Failed)
	require.Len(t, results, 4)

	byName := map[string]FileResult{}
	for _, r := range results {
		byName[filepath.Base(r.Path)] = r
	}
	assert.Equal(t, constants.ImportStatusSaved, byName["ai.txt"].Status)
	assert.Equal(t, constants.ImportStatusFailed, byName["broken.txt"].Status)
	assert.Equal(t, "hard failure", byName["broken.txt"].Err)

	// fall.txt and nested/copy.md share content; only the first walked is parsed.
	fall, dup := byName["fall.txt"], byName["copy.md"]
	assert.True(t, dup.Deduplicated)
	assert.Equal(t, constants.ImportStatusSkipped, dup.Status)
	assert.Equal(t, constants.ImportStatusDegraded, fall.Status)
	assert.Equal(t, 1, fall.Saved)
	assert.Equal(t, ScheduleIDForHash(fall.HashHex), fall.ScheduleID)
	assert.Equal(t, fall.ScheduleID, dup.ScheduleID)

	assert.Len(t, fp.saved, 2)
	_, hidden := byName["secret.txt"]
	assert.False(t, hidden)
}

func TestImportDirectoryRequiresRoot(t *testing.T) {
	im := NewImporter(&fakeParser{}, false, quiet())
	q := async.NewProcessorQueue(im, quiet())
	_, _, err := im.ImportDirectory(context.Background(), q, " ", false)
	assert.Error(t, err)
}

func TestImportFileParsesWithoutSaving(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ai.txt")
	writeFile(t, path, schedule)

	fp := &fakeParser{}
	res, err := NewImporter(fp, false, quiet()).ImportFile(context.Background(), path, "s1")
	require.NoError(t, err)
	assert.Equal(t, constants.ImportStatusParsed, res.Status)
	assert.Equal(t, "s1", res.ScheduleID)
	assert.Equal(t, 1, res.Classes)
	assert.Zero(t, res.Saved)
	assert.Empty(t, fp.saved)
}

func TestWatcherEmitsInitialAndNewFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "existing.txt"), schedule)
	writeFile(t, filepath.Join(root, "ignored.png"), "x")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}, InitialScan: true, Logger: quiet()})
	require.NoError(t, err)

	next := func() string {
		select {
		case p := <-events:
			return p
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for watcher event")
			return ""
		}
	}
	assert.Equal(t, filepath.Join(root, "existing.txt"), next())

	added := filepath.Join(root, "added.md")
	writeFile(t, added, schedule)
	assert.Equal(t, added, next())

	cancel()
	for range events {
	}
}

func TestWatcherRequiresRoots(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{})
	assert.Error(t, err)
}
