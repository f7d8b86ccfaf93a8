package extract

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/schedule-ingest/constants"
)

// Document is an uploaded schedule after input validation.
type Document struct {
	FileName string
	FileType string // MIME type, may be empty
	Content  string
	PDF      []byte
}

func (d Document) HasPDF() bool { return len(d.PDF) > 0 }

// Format resolves the document format from its MIME type, falling back to the
// file extension.
func (d Document) Format() constants.FileFormat {
	if d.HasPDF() {
		return constants.PDF
	}
	mt := strings.ToLower(strings.TrimSpace(d.FileType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	switch mt {
	case constants.MimePDF:
		return constants.PDF
	case "text/csv", "application/csv":
		return constants.CSV
	case "text/html", "application/xhtml+xml":
		return constants.HTML
	}
	return constants.MapExtToFormat(filepath.Ext(d.FileName))
}

// TextExtractor turns a binary document into plain text lines.
type TextExtractor interface {
	Extract(ctx context.Context, doc Document) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Text       string
	Pages      int
	SourceType constants.FileFormat
	Method     string // "pdf-text" | "html-markdown" | "csv-rows" | "plain"
	Duration   time.Duration
	Warnings   []string
}
