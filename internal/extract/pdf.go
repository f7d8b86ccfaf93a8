package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/joseph-ayodele/schedule-ingest/constants"
)

// PDFTextExtractor reads the embedded text layer of a PDF. Scanned pages
// without text yield nothing; there is no OCR fallback.
type PDFTextExtractor struct {
	logger   *slog.Logger
	maxPages int
}

func NewPDFTextExtractor(logger *slog.Logger) *PDFTextExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFTextExtractor{logger: logger, maxPages: 50}
}

func (e *PDFTextExtractor) Extract(ctx context.Context, doc Document) (TextExtractionResult, error) {
	start := time.Now()
	res := TextExtractionResult{SourceType: constants.PDF, Method: "pdf-text"}
	if !doc.HasPDF() {
		return res, fmt.Errorf("no pdf payload")
	}

	pctx, err := api.ReadValidateAndOptimize(bytes.NewReader(doc.PDF), model.NewDefaultConfiguration())
	if err != nil {
		e.logger.Warn("extract.pdf.read_failed", "file", doc.FileName, "error", err)
		return res, fmt.Errorf("pdfcpu read: %w", err)
	}
	res.Pages = pctx.PageCount

	var pages []string
	for pageNr := 1; pageNr <= pctx.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if pageNr > e.maxPages {
			res.Warnings = append(res.Warnings, fmt.Sprintf("only the first %d pages were read", e.maxPages))
			break
		}
		r, err := pdfcpu.ExtractPageContent(pctx, pageNr)
		if err != nil || r == nil {
			continue
		}
		data, err := io.ReadAll(r)
		if err != nil || len(data) == 0 {
			continue
		}
		if text := TextFromContentStream(data); text != "" {
			pages = append(pages, text)
		}
	}
	res.Text = strings.Join(pages, "\n")
	res.Duration = time.Since(start)

	if res.Text == "" {
		res.Warnings = append(res.Warnings, "PDF has no extractable text layer")
	}
	e.logger.Info("extract.pdf.ok",
		"file", doc.FileName,
		"pages", res.Pages,
		"chars", len(res.Text),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}
