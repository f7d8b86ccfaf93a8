package llm

import (
	"encoding/base64"

	"github.com/joseph-ayodele/schedule-ingest/constants"
)

// PDFDataURL encodes a PDF as an RFC 2397 data URL.
func PDFDataURL(pdf []byte) string {
	return "data:" + constants.MimePDF + ";base64," + base64.StdEncoding.EncodeToString(pdf)
}

// TruncateForLog shortens model output before it is attached to a log line.
func TruncateForLog(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
