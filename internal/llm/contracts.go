package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ExtractRequest is one document handed to an extraction model.
type ExtractRequest struct {
	FileName string
	Content  string // text layer; may be empty for PDF uploads
	PDF      []byte // decoded PDF bytes, sent inline when present
}

// HasPDF reports whether the request carries a binary PDF.
func (r ExtractRequest) HasPDF() bool { return len(r.PDF) > 0 }

// ScheduleExtractor is the interface the cascade depends on. Extract runs the
// named model once and returns its raw text output.
type ScheduleExtractor interface {
	Provider() string
	Extract(ctx context.Context, model string, req ExtractRequest) (string, error)
}

// ErrMalformedResponse marks a successful HTTP exchange whose payload carried
// no usable completion text.
var ErrMalformedResponse = errors.New("malformed extraction response")

// StatusError is a non-2xx answer from the extraction service.
type StatusError struct {
	Provider string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 512 {
		body = body[:512] + "..."
	}
	if body == "" {
		return fmt.Sprintf("%s status %d", e.Provider, e.Code)
	}
	return fmt.Sprintf("%s status %d: %s", e.Provider, e.Code, body)
}

func (e *StatusError) RateLimited() bool { return e.Code == http.StatusTooManyRequests }

func (e *StatusError) BadRequest() bool { return e.Code == http.StatusBadRequest }
