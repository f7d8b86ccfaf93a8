package extract

import (
	"encoding/csv"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"

	"github.com/joseph-ayodele/schedule-ingest/constants"
)

// Preparer converts local HTML and CSV files into line-oriented plain text
// before they are uploaded. The service never rewrites fileContent.
type Preparer struct {
	md     *converter.Converter
	logger *slog.Logger
}

func NewPreparer(logger *slog.Logger) *Preparer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Preparer{
		md: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
		logger: logger,
	}
}

// PrepareText returns the text layer of doc. PDFs return their accompanying
// text content unchanged; the binary goes to the model as is.
func (p *Preparer) PrepareText(doc Document) TextExtractionResult {
	start := time.Now()
	res := TextExtractionResult{SourceType: doc.Format(), Method: "plain", Text: doc.Content}

	switch res.SourceType {
	case constants.HTML:
		md, err := p.md.ConvertString(doc.Content)
		if err != nil {
			p.logger.Warn("extract.html.convert_failed", "file", doc.FileName, "error", err)
			res.Warnings = append(res.Warnings, "HTML could not be converted; using raw content")
			break
		}
		res.Text, res.Method = md, "html-markdown"
	case constants.CSV:
		flat, err := FlattenCSV(doc.Content)
		if err != nil {
			p.logger.Warn("extract.csv.parse_failed", "file", doc.FileName, "error", err)
			break
		}
		res.Text, res.Method = flat, "csv-rows"
	}

	res.Duration = time.Since(start)
	p.logger.Debug("extract.prepare.ok",
		"file", doc.FileName,
		"format", res.SourceType,
		"method", res.Method,
		"in_bytes", len(doc.Content),
		"out_bytes", len(res.Text),
	)
	return res
}

// FlattenCSV renders each record as one line with cells joined by " | ".
// Empty cells and empty rows are skipped.
func FlattenCSV(content string) (string, error) {
	r := csv.NewReader(strings.NewReader(content))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var lines []string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		cells := make([]string, 0, len(rec))
		for _, c := range rec {
			if c = strings.TrimSpace(c); c != "" {
				cells = append(cells, c)
			}
		}
		if len(cells) > 0 {
			lines = append(lines, strings.Join(cells, " | "))
		}
	}
	return strings.Join(lines, "\n"), nil
}
