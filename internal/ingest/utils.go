package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/schedule-ingest/constants"
)

// AllowedExt checks if a file extension is in the accepted upload set.
func AllowedExt(ext string) bool {
	ext = constants.NormalizeExt(ext)
	_, ok := constants.AllowedExtensions[ext]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return base != "." && strings.HasPrefix(base, ".")
}

// mimeByExt is the fileType sent along with each upload.
var mimeByExt = map[string]string{
	"txt":  "text/plain",
	"md":   "text/markdown",
	"csv":  "text/csv",
	"html": "text/html",
	"htm":  "text/html",
	"pdf":  constants.MimePDF,
}
