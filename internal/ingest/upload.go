package ingest

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/joseph-ayodele/schedule-ingest/constants"
	"github.com/joseph-ayodele/schedule-ingest/internal/extract"
	"github.com/joseph-ayodele/schedule-ingest/internal/pipeline"
)

var preparer = sync.OnceValue(func() *extract.Preparer { return extract.NewPreparer(nil) })

// preparedMime is the fileType reported once a document has been rewritten
// to plain lines.
var preparedMime = map[string]string{
	"html-markdown": "text/markdown",
	"csv-rows":      "text/plain",
}

// Upload is a local file turned into a parse request.
type Upload struct {
	Input   pipeline.RawInput
	HashHex string
	Size    int
}

// ReadUpload reads path into the request shape the parse endpoint accepts:
// PDFs travel as base64 with an empty text layer, everything else as text.
// HTML and CSV files are rendered to line-oriented text first, since the
// service reads fileContent as is.
func ReadUpload(path string) (Upload, error) {
	ext := constants.NormalizeExt(filepath.Ext(path))
	if !AllowedExt(ext) {
		return Upload{}, fmt.Errorf("unsupported or missing extension %q", ext)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Upload{}, err
	}

	name := filepath.Base(path)
	in := pipeline.RawInput{FileName: &name, FileType: mimeByExt[ext]}
	if ext == "pdf" {
		empty := ""
		in.FileContent = &empty
		in.FileBase64 = base64.StdEncoding.EncodeToString(data)
	} else {
		prep := preparer().PrepareText(extract.Document{FileName: name, FileType: in.FileType, Content: string(data)})
		if mt, ok := preparedMime[prep.Method]; ok {
			in.FileType = mt
		}
		content := prep.Text
		in.FileContent = &content
	}

	sum := sha256.Sum256(data)
	return Upload{Input: in, HashHex: hex.EncodeToString(sum[:]), Size: len(data)}, nil
}

// ScheduleIDForHash derives a stable schedule id from file content, so the
// same file imported twice lands on the same schedule.
func ScheduleIDForHash(hashHex string) string {
	if len(hashHex) > 16 {
		hashHex = hashHex[:16]
	}
	return "file-" + hashHex
}
