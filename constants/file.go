package constants

import "strings"

const (
	// MaxFileContentBytes caps the text payload accepted for one parse request.
	MaxFileContentBytes = 1 << 20
	MaxFileNameLength   = 255

	MimePDF = "application/pdf"
)

type FileFormat string

const (
	TEXT FileFormat = "TEXT"
	CSV  FileFormat = "CSV"
	HTML FileFormat = "HTML"
	PDF  FileFormat = "PDF"
)

// AllowedExtensions holds the upload extensions accepted by the batch importer.
var AllowedExtensions = map[string]struct{}{
	"txt":  {},
	"csv":  {},
	"md":   {},
	"html": {},
	"htm":  {},
	"pdf":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

func MapExtToFormat(ext string) FileFormat {
	switch NormalizeExt(ext) {
	case "csv":
		return CSV
	case "html", "htm":
		return HTML
	case "pdf":
		return PDF
	default:
		return TEXT
	}
}
